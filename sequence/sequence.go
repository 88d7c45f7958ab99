package sequence

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
)

// Easing maps the linear progress t in [0, 1] onto the eased progress.
type Easing func(t float64) float64

func ParseEasing(name string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return func(t float64) float64 { return t }, nil
	case "ease-in-expo":
		return misc.EaseInExpo, nil
	case "ease-out-expo":
		return misc.EaseOutExpo, nil
	}
	return nil, misc.NewConfigError("centerEasing", "unknown easing %q", name)
}

// Sequence is a finite, index addressable list of frame requests. Every request is computed from
// the frame index alone, so a sequence can be restarted at any frame.
type Sequence struct {
	settings    Settings
	kernel      fractal.Kernel
	easing      Easing
	progressive bool
}

// New checks s and builds the sequence. Unlike Settings.Verify it fills in no defaults.
func New(s Settings) (*Sequence, error) {
	if s.FrameCount <= 0 {
		return nil, misc.NewConfigError("frameCount", "must be > 0, got %d", s.FrameCount)
	}
	if !misc.IsFinite(s.ScaleStart) || s.ScaleStart <= 0 {
		return nil, misc.NewConfigError("scaleStart", "must be a finite value > 0, got %g", s.ScaleStart)
	}
	if !misc.IsFinite(s.ScaleEnd) || s.ScaleEnd <= 0 {
		return nil, misc.NewConfigError("scaleEnd", "must be a finite value > 0, got %g", s.ScaleEnd)
	}
	if (s.CenterStart == nil) != (s.CenterEnd == nil) {
		return nil, misc.NewConfigError("center", "centerStart and centerEnd must be set together")
	}

	kernel, err := fractal.ParseKernel(s.Kernel)
	if err != nil {
		return nil, err
	}
	easing, err := ParseEasing(s.CenterEasing)
	if err != nil {
		return nil, err
	}

	seq := &Sequence{
		settings: s,
		kernel:   kernel,
		easing:   easing,
	}
	switch strings.ToLower(s.Iterations) {
	case "", Fixed:
	case Progressive:
		seq.progressive = true
	default:
		return nil, misc.NewConfigError("iterations", "unknown iteration policy %q", s.Iterations)
	}

	// The first and last frames bound every derived value, so checking them checks the run.
	for _, i := range []int{0, s.FrameCount - 1} {
		req, _ := seq.At(i)
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (s *Sequence) Len() int {
	return s.settings.FrameCount
}

func (s *Sequence) Settings() Settings {
	return s.settings
}

// At returns the request for frame i.
func (s *Sequence) At(i int) (fractal.Request, error) {
	n := s.settings.FrameCount
	if i < 0 || i >= n {
		return fractal.Request{}, fmt.Errorf("frame %d is outside of [0, %d)", i, n)
	}

	center := s.settings.Center
	if s.settings.CenterStart != nil && s.settings.CenterEnd != nil {
		t := 0.0
		if n > 1 {
			t = s.easing(float64(i) / float64(n-1))
		}
		center = fractal.Complex{
			Re: misc.LerpFloat64(s.settings.CenterStart.Re, s.settings.CenterEnd.Re, t),
			Im: misc.LerpFloat64(s.settings.CenterStart.Im, s.settings.CenterEnd.Im, t),
		}
		if i == n-1 {
			center = *s.settings.CenterEnd
		}
	}

	maxIterations := s.settings.MaxIterations
	if s.progressive {
		maxIterations = i
	}

	return fractal.Request{
		Kernel:        s.kernel,
		Center:        center,
		Constant:      s.settings.Constant,
		Scale:         Geometric(s.settings.ScaleStart, s.settings.ScaleEnd, n, i),
		Width:         s.settings.Width,
		Height:        s.settings.Height,
		MaxIterations: maxIterations,
	}, nil
}

// Requests yields (index, request) for every frame from start to the end of the sequence.
func (s *Sequence) Requests(start int) iter.Seq2[int, fractal.Request] {
	return func(yield func(int, fractal.Request) bool) {
		for i := max(start, 0); i < s.settings.FrameCount; i++ {
			req, err := s.At(i)
			if err != nil {
				return
			}
			if !yield(i, req) {
				return
			}
		}
	}
}

// Geometric returns the i-th of n values spaced evenly on a log scale from start to end.
// The last value is end exactly.
func Geometric(start float64, end float64, n int, i int) float64 {
	if n <= 1 || i <= 0 {
		return start
	}
	if i >= n-1 {
		return end
	}
	return start * math.Pow(end/start, float64(i)/float64(n-1))
}

// Linear returns the i-th of n values spaced evenly from start to end.
func Linear(start float64, end float64, n int, i int) float64 {
	if n <= 1 || i <= 0 {
		return start
	}
	if i >= n-1 {
		return end
	}
	return misc.LerpFloat64(start, end, float64(i)/float64(n-1))
}
