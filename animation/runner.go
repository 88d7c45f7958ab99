package animation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"golang.org/x/sync/errgroup"

	"FractalAnimator/misc"
	"FractalAnimator/progress"
	"FractalAnimator/sink"
)

// Runner renders the frames of an animation and hands them to a sink. Frames are computed
// concurrently and saved as they finish; their names carry the frame index so completion order
// does not matter.
type Runner struct {
	Frames   Frames
	Sink     sink.ImageSink
	Ensurer  sink.PathEnsurer
	Reporter progress.Reporter
	Logger   bslogger.Logger

	Dir             string // ensured before the first frame is saved
	Name            string // run name reported with every event
	Extension       string
	StartFrame      int
	Concurrency     int
	ContinueOnError bool
}

func NewRunner(frames Frames, imageSink sink.ImageSink, ensurer sink.PathEnsurer, reporter progress.Reporter) *Runner {
	return &Runner{
		Frames:      frames,
		Sink:        imageSink,
		Ensurer:     ensurer,
		Reporter:    reporter,
		Logger:      bslogger.NewLogger("Runner", bslogger.Normal, nil),
		Extension:   ".png",
		Concurrency: 1,
	}
}

// Summary counts what a run did.
type Summary struct {
	Saved   int
	Failed  int
	Skipped int // frames before StartFrame
	Elapsed time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("Frames [Saved: %d] [Failed: %d] [Skipped: %d] in %s", s.Saved, s.Failed, s.Skipped, s.Elapsed.Round(time.Millisecond))
}

// Run renders frames StartFrame..Len-1. Without ContinueOnError the first failed frame stops the
// run and is returned; frames saved before that stay saved, so the run can resume from any index.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	total := r.Frames.Len()
	if r.StartFrame < 0 || r.StartFrame > total {
		return Summary{}, misc.NewConfigError("startFrame", "must be in [0, %d], got %d", total, r.StartFrame)
	}
	ext := r.Extension
	if ext == "" {
		ext = ".png"
	}
	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if r.Ensurer != nil {
		if err := r.Ensurer.Ensure(r.Dir); err != nil {
			return Summary{}, err
		}
	}

	var (
		mutex   sync.Mutex
		summary = Summary{Skipped: r.StartFrame}
		start   = time.Now()
	)
	finish := func(e progress.Event) {
		mutex.Lock()
		if e.Failed() {
			summary.Failed++
		} else {
			summary.Saved++
		}
		e.Completed = summary.Saved + summary.Failed + summary.Skipped
		mutex.Unlock()
		if r.Reporter != nil {
			r.Reporter.Report(e)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := r.StartFrame; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			frameStart := time.Now()
			name := sink.FrameName(i, total, ext)
			err := r.frame(gctx, i, name)
			e := progress.Event{Run: r.Name, Index: i, Name: name, Total: total, Elapsed: time.Since(frameStart)}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.Error = err.Error()
				finish(e)
				if r.ContinueOnError {
					return nil
				}
				return fmt.Errorf("frame %d: %w", i, err)
			}
			finish(e)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary.Elapsed = time.Since(start)
	r.Logger.Info(summary.String())
	return summary, err
}

func (r *Runner) frame(ctx context.Context, index int, name string) error {
	img, err := r.Frames.Render(ctx, index)
	if err != nil {
		return err
	}
	return r.Sink.Save(name, img)
}
