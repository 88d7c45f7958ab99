package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"FractalAnimator/animation"
	"FractalAnimator/misc"
	"FractalAnimator/progress"
	"FractalAnimator/rpc"
	"FractalAnimator/sink"
)

type Coordinator struct {
	clients       map[string]rpc.Client
	done          chan struct{}
	doneOnce      sync.Once
	err           error
	ext           string
	finished      map[int]bool
	frames        animation.Frames
	handedOutAt   map[int]time.Time
	jobsHandedOut map[string]map[int]Job // keep track of all jobs workers have
	jobsTodo      chan Job
	logFile       *os.File
	logger        bslogger.Logger
	mutex         sync.Mutex
	remaining     int
	reporter      progress.Reporter
	settings      Settings
	sink          sink.ImageSink
	startTime     time.Time
	stopProgress  context.CancelFunc
	summary       animation.Summary
	websocket     *progress.WebsocketReporter
	workerWait    *sync.WaitGroup

	HeartBeatInterval time.Duration
	RollCallInterval  time.Duration
	Server            rpc.Server
	WorkerGrace       time.Duration // how long Wait gives workers to leave once the run is over
}

// NewCoordinator prepares the run directory: it holds the frames, a copy of the settings so the run
// can be reproduced, and the coordinator log.
func NewCoordinator(settings Settings) (*Coordinator, error) {
	frames, err := settings.Frames()
	if err != nil {
		return nil, err
	}
	if settings.StartFrame > frames.Len() {
		return nil, misc.NewConfigError("startFrame", "must be in [0, %d], got %d", frames.Len(), settings.StartFrame)
	}
	ext, err := sink.ParseFormat(settings.ImageFormat)
	if err != nil {
		return nil, err
	}

	// Create directory to store files for this run
	runDir := settings.RunDir()
	if err := (sink.DirEnsurer{}).Ensure(runDir); err != nil {
		return nil, err
	}

	// Copy the settings to the directory so the run can be duplicated in the future
	copyBytes, err := settings.Marshal()
	if err != nil {
		return nil, fmt.Errorf("unable to encode settings: %w", err)
	}
	bytesWritten, err := misc.WriteFile(filepath.Join(runDir, settings.CopyName()), copyBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to make a backup copy of the settings: %w", err)
	}
	if bytesWritten == 0 {
		return nil, errors.New("unable to make a backup copy of the settings: nothing written")
	}

	c := &Coordinator{
		clients:           make(map[string]rpc.Client),
		done:              make(chan struct{}),
		ext:               ext,
		finished:          make(map[int]bool),
		frames:            frames,
		handedOutAt:       make(map[int]time.Time),
		jobsHandedOut:     make(map[string]map[int]Job),
		jobsTodo:          make(chan Job, frames.Len()),
		settings:          settings,
		sink:              sink.NewFileSink(runDir),
		workerWait:        &sync.WaitGroup{},
		HeartBeatInterval: 30 * time.Second,
		RollCallInterval:  time.Minute,
		WorkerGrace:       time.Minute,
	}

	// Create a log file to record the run
	c.logger = misc.NewLogger("Coordinator", settings.Verbosity, nil)
	logFile, err := os.Create(filepath.Join(runDir, "coordinator.log"))
	misc.CheckError(err, c.logger, misc.Warning)
	if err == nil {
		c.logFile = logFile
		c.logger = misc.NewLogger("Coordinator", settings.Verbosity, logFile)
	}
	c.logger.Debug(settings.String())

	reporters := []progress.Reporter{progress.NewLogReporter(misc.NewLogger("Progress", settings.Verbosity, c.logFile))}
	if settings.Console {
		reporters = append(reporters, progress.NewConsoleReporter(os.Stdout))
	}
	if settings.ProgressAddress != "" {
		c.websocket = progress.NewWebsocketReporter(misc.NewLogger("ProgressFeed", settings.Verbosity, c.logFile))
		reporters = append(reporters, c.websocket)
	}
	c.reporter = progress.Multi(reporters...)

	return c, nil
}

// Close releases the run log.
func (c *Coordinator) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

func (c *Coordinator) serveProgress() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopProgress = cancel
	if c.websocket == nil {
		return
	}
	go func() {
		misc.CheckError(c.websocket.ListenAndServe(ctx, c.settings.ProgressAddress), c.logger, misc.Warning)
	}()
}

// RunLocal renders every frame in this process.
func (c *Coordinator) RunLocal(ctx context.Context) (animation.Summary, error) {
	c.serveProgress()
	defer c.stopProgress()

	runner := animation.NewRunner(c.frames, c.sink, sink.DirEnsurer{}, c.reporter)
	runner.Logger = c.logger
	runner.Dir = c.settings.RunDir()
	runner.Name = c.settings.RunName
	runner.Extension = c.ext
	runner.StartFrame = c.settings.StartFrame
	runner.Concurrency = c.settings.Concurrency
	runner.ContinueOnError = c.settings.ContinueOnError

	c.logger.Infof("Rendering %d frames locally into %s", c.frames.Len()-c.settings.StartFrame, runner.Dir)
	return runner.Run(ctx)
}

// Serve hands every frame to workers and returns once all of them are persisted.
func (c *Coordinator) Serve(ctx context.Context) (animation.Summary, error) {
	if err := c.Start(); err != nil {
		return animation.Summary{}, err
	}
	return c.Wait(ctx)
}

// Start opens the rpc server and queues a job per frame.
func (c *Coordinator) Start() error {
	// Start up the rpc server to allow workers to communicate with the coordinator
	server, err := rpc.NewServer(c.settings.Transport, c, c.settings.ServerAddress, "CoordinatorServer")
	if err != nil {
		return err
	}
	if err := server.Run(); err != nil {
		return err
	}
	c.Server = server
	c.serveProgress()

	c.startTime = time.Now()
	total := c.frames.Len()
	c.summary.Skipped = c.settings.StartFrame
	c.remaining = total - c.settings.StartFrame
	for i := c.settings.StartFrame; i < total; i++ {
		c.jobsTodo <- Job{Frame: i}
	}
	c.logger.Infof("Queued %d jobs", c.remaining)
	if c.remaining == 0 {
		c.finish(nil)
	}

	go c.tickers()
	return nil
}

func (c *Coordinator) Addr() string {
	if c.Server == nil {
		return c.settings.ServerAddress
	}
	return c.Server.Addr()
}

// Wait blocks until every frame is persisted, the run is aborted, or ctx is done. Workers then get
// WorkerGrace to leave before the server stops.
func (c *Coordinator) Wait(ctx context.Context) (animation.Summary, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		c.finish(ctx.Err())
	}

	workersLeft := make(chan struct{})
	go func() {
		c.workerWait.Wait()
		close(workersLeft)
	}()
	c.mutex.Lock()
	c.logger.Infof("Waiting for %d workers to disconnect", len(c.clients))
	c.mutex.Unlock()
	select {
	case <-workersLeft:
	case <-time.After(c.WorkerGrace):
		c.logger.Warning("Workers did not disconnect in time")
	}

	misc.CheckError(c.Server.Stop(), c.logger, misc.Warning)
	c.stopProgress()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.summary.Elapsed = time.Since(c.startTime)
	c.logger.Info(c.summary.String())
	return c.summary, c.err
}

func (c *Coordinator) finish(err error) {
	c.doneOnce.Do(func() {
		c.mutex.Lock()
		c.err = err
		c.mutex.Unlock()
		close(c.done)
	})
}

func (c *Coordinator) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) tickers() {
	rollCall := time.NewTicker(c.RollCallInterval)
	heartBeat := time.NewTicker(c.HeartBeatInterval)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-rollCall.C:
			c.logger.Debug("Roll call ticker")
			c.rollCall()

		case <-heartBeat.C:
			c.logger.Debug("Heart beat ticker")
			c.mutex.Lock()
			c.logger.Infof("Jobs [Saved: %d] [Failed: %d] [Todo: %d] | Workers: %d", c.summary.Saved, c.summary.Failed, c.remaining, len(c.clients))
			c.mutex.Unlock()

		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) rollCall() {
	c.mutex.Lock()
	clients := make(map[string]rpc.Client, len(c.clients))
	for address, client := range c.clients {
		clients[address] = client
	}
	c.mutex.Unlock()

	var junk misc.Nothing
	for address, client := range clients {
		var reply bool
		err := client.Call("Worker.RollCall", junk, &reply)
		if err != nil {
			// Cannot communicate with the worker
			c.logger.Warningf("Worker %s missed roll call: %s", address, err)

			// Remove worker from pool
			var nothing misc.Nothing
			misc.CheckError(c.DeRegisterWorker(address, &nothing), c.logger, misc.Warning)
		}
	}
}

func (c *Coordinator) RegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	if c.isDone() {
		return rpc.ErrDone
	}

	// Create a client to communicate with this worker
	client, err := rpc.NewClient(c.settings.Transport, workerServerAddress, workerServerAddress)
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("unable to reach worker %s: %w", workerServerAddress, err)
	}

	c.mutex.Lock()
	_, registered := c.clients[workerServerAddress]
	if registered || c.isDone() {
		c.mutex.Unlock()
		misc.CheckError(client.Disconnect(), c.logger, misc.Warning)
		if registered {
			return fmt.Errorf("worker %s is already registered", workerServerAddress)
		}
		return rpc.ErrDone
	}
	c.clients[workerServerAddress] = client
	// Track all jobs this worker checks out
	c.jobsHandedOut[workerServerAddress] = make(map[int]Job)
	c.workerWait.Add(1)
	c.mutex.Unlock()

	c.logger.Infof("Worker joined: %s", workerServerAddress)
	return nil
}

func (c *Coordinator) DeRegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	c.mutex.Lock()
	client, ok := c.clients[workerServerAddress]
	if !ok {
		c.mutex.Unlock()
		return fmt.Errorf("worker %s is not registered", workerServerAddress)
	}
	jobs := c.jobsHandedOut[workerServerAddress]
	delete(c.jobsHandedOut, workerServerAddress)
	delete(c.clients, workerServerAddress)

	// Put jobs this worker has not returned yet back into the todo queue
	requeued := 0
	for _, job := range jobs {
		if !c.finished[job.Frame] {
			c.jobsTodo <- Job{Frame: job.Frame}
			requeued++
		}
	}
	c.mutex.Unlock()

	// Disconnect from worker
	misc.CheckError(client.Disconnect(), c.logger, misc.Warning)

	c.logger.Infof("Worker left: %s (requeued %d jobs)", workerServerAddress, requeued)
	c.workerWait.Done()
	return nil
}

func (c *Coordinator) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

func (c *Coordinator) GetSettings(nothing misc.Nothing, settings *animation.Settings) error {
	*settings = c.settings.Settings
	return nil
}

// GetJob blocks until a job is available. Once the run is over it returns rpc.ErrDone.
func (c *Coordinator) GetJob(workerAddress string, job *Job) error {
	if c.isDone() {
		return rpc.ErrDone
	}

	var todo Job
	select {
	case todo = <-c.jobsTodo:
	case <-c.done:
		c.logger.Info("Telling worker that all jobs are handed out")
		return rpc.ErrDone
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	handedOut, ok := c.jobsHandedOut[workerAddress]
	if !ok {
		c.jobsTodo <- todo
		return fmt.Errorf("worker %s is not registered", workerAddress)
	}
	todo.Worker = workerAddress
	handedOut[todo.Frame] = todo
	*job = todo
	c.handedOutAt[todo.Frame] = time.Now()
	return nil
}

// ReturnJob persists a rendered frame. Results for frames that are already finished, or that
// arrive after the run is over, are dropped.
func (c *Coordinator) ReturnJob(result JobResult, nothing *misc.Nothing) error {
	c.mutex.Lock()
	if handedOut, ok := c.jobsHandedOut[result.Worker]; ok {
		delete(handedOut, result.Frame)
	}
	if c.finished[result.Frame] || c.isDone() {
		c.mutex.Unlock()
		return nil
	}
	c.finished[result.Frame] = true
	var elapsed time.Duration
	if at, ok := c.handedOutAt[result.Frame]; ok {
		elapsed = time.Since(at)
		delete(c.handedOutAt, result.Frame)
	}
	c.mutex.Unlock()

	total := c.frames.Len()
	e := progress.Event{
		Run:     c.settings.RunName,
		Index:   result.Frame,
		Name:    sink.FrameName(result.Frame, total, c.ext),
		Total:   total,
		Elapsed: elapsed,
	}

	var err error
	if result.Error != "" {
		err = errors.New(result.Error)
	} else {
		img, imgErr := result.Image()
		err = imgErr
		if err == nil {
			err = c.sink.Save(e.Name, img)
		}
	}

	c.mutex.Lock()
	if err != nil {
		e.Error = err.Error()
		c.summary.Failed++
	} else {
		c.summary.Saved++
	}
	c.remaining--
	e.Completed = c.summary.Saved + c.summary.Failed + c.summary.Skipped
	remaining := c.remaining
	c.mutex.Unlock()
	c.reporter.Report(e)

	if err != nil && !c.settings.ContinueOnError {
		c.finish(fmt.Errorf("frame %d: %w", result.Frame, err))
		return nil
	}
	if remaining == 0 {
		c.finish(nil)
	}
	return nil
}
