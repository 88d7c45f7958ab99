package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"golang.org/x/sync/errgroup"

	"FractalAnimator/animation"
	"FractalAnimator/coordinator"
	"FractalAnimator/misc"
	"FractalAnimator/rpc"
)

// Worker renders frames for a coordinator. It rebuilds the run from the coordinator's settings, so
// only frame indexes travel to it.
type Worker struct {
	frames        animation.Frames
	jobsCompleted int
	logger        bslogger.Logger
	mutex         sync.Mutex
	myAddress     string
	settings      Settings

	Client            rpc.Client
	Server            rpc.Server
	HeartBeatInterval time.Duration
	RollCallInterval  time.Duration
}

func NewWorker(settings Settings) *Worker {
	return &Worker{
		logger:            misc.NewLogger("Worker", settings.Verbosity, nil),
		settings:          settings,
		HeartBeatInterval: 30 * time.Second,
		RollCallInterval:  time.Minute,
	}
}

// Run registers with the coordinator and processes jobs until the coordinator runs out of them,
// the coordinator goes away, or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	// Find a free port to use for this worker
	port, err := misc.GetFreePort()
	if err != nil {
		return fmt.Errorf("unable to find a free port: %w", err)
	}
	w.logger.Debugf("Found free port: %d", port)

	w.Server, err = rpc.NewServer(w.settings.Transport, w, fmt.Sprintf("%s:%d", w.settings.Address, port), "WorkerServer")
	if err != nil {
		return err
	}
	if err := w.Server.Run(); err != nil {
		return err
	}
	defer func() {
		misc.CheckError(w.Server.Stop(), w.logger, misc.Warning)
	}()
	w.myAddress = w.Server.Addr()
	w.logger = misc.NewLogger(fmt.Sprintf("Worker %s", w.myAddress), w.settings.Verbosity, nil)

	// Register with the coordinator
	w.Client, err = rpc.NewClient(w.settings.Transport, w.settings.CoordinatorAddress, "CoordinatorClient")
	if err != nil {
		return err
	}
	if err := w.Client.Connect(); err != nil {
		return err
	}
	defer func() {
		misc.CheckError(w.Client.Disconnect(), w.logger, misc.Warning)
	}()
	var nothing misc.Nothing
	if err := w.Client.Call("Coordinator.RegisterWorker", w.myAddress, &nothing); err != nil {
		return fmt.Errorf("unable to register with the coordinator: %w", err)
	}

	err = w.work(ctx)

	w.logger.Info("Shutting down")
	misc.CheckError(w.Client.Call("Coordinator.DeRegisterWorker", w.myAddress, &nothing), w.logger, misc.Warning)
	return err
}

func (w *Worker) work(ctx context.Context) error {
	// Get the render settings from the coordinator
	var settings animation.Settings
	var nothing misc.Nothing
	if err := w.Client.Call("Coordinator.GetSettings", nothing, &settings); err != nil {
		return fmt.Errorf("unable to get settings: %w", err)
	}
	frames, err := settings.Frames()
	if err != nil {
		return fmt.Errorf("unable to build the run: %w", err)
	}
	w.frames = frames

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go w.tickers(ctx, cancel)

	w.logger.Info("Processing jobs")
	startTime := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.settings.Concurrency; i++ {
		g.Go(func() error {
			return w.processJobs(gctx)
		})
	}
	err = g.Wait()

	w.mutex.Lock()
	w.logger.Infof("Processed %d jobs in %s", w.jobsCompleted, time.Since(startTime))
	w.mutex.Unlock()
	return err
}

func (w *Worker) processJobs(ctx context.Context) error {
	var nothing misc.Nothing
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var job coordinator.Job
		err := w.Client.Call("Coordinator.GetJob", w.myAddress, &job)
		if rpc.IsDone(err) {
			// This is an expected error. No more work to do
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to get a job: %w", err)
		}

		img, err := w.frames.Render(ctx, job.Frame)
		if ctx.Err() != nil {
			// Keep the job checked out. The coordinator requeues it when this worker deregisters.
			return ctx.Err()
		}
		if err != nil {
			w.logger.Warningf("Frame %d failed: %s", job.Frame, err)
		}
		result := coordinator.NewJobResult(job, img, err)
		if err := w.Client.Call("Coordinator.ReturnJob", result, &nothing); err != nil {
			return fmt.Errorf("unable to return frame %d: %w", job.Frame, err)
		}

		w.mutex.Lock()
		w.jobsCompleted++
		w.mutex.Unlock()
	}
}

func (w *Worker) tickers(ctx context.Context, cancel context.CancelFunc) {
	rollCall := time.NewTicker(w.RollCallInterval)
	heartBeat := time.NewTicker(w.HeartBeatInterval)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-rollCall.C:
			w.logger.Debug("Roll call ticker")
			var junk misc.Nothing
			var reply bool
			err := w.Client.Call("Coordinator.RollCall", junk, &reply)
			if err != nil {
				// Cannot communicate with the coordinator so we should shut down
				w.logger.Warningf("Coordinator missed roll call: %s", err)
				cancel()
				return
			}

		case <-heartBeat.C:
			w.logger.Debug("Heart beat ticker")
			w.mutex.Lock()
			w.logger.Infof("Jobs [Completed: %d]", w.jobsCompleted)
			w.mutex.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) RollCall(request misc.Nothing, reply *bool) error {
	*reply = true
	return nil
}

// JobsCompleted is the number of frames returned to the coordinator so far.
func (w *Worker) JobsCompleted() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.jobsCompleted
}
