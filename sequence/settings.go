package sequence

import (
	"fmt"
	"strings"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
)

const (
	Fixed       = "fixed"
	Progressive = "progressive"
)

// Settings describes one sweep of frames. Scale always ramps geometrically from ScaleStart to
// ScaleEnd. The view center moves from CenterStart to CenterEnd when both are set and stays on
// Center otherwise.
type Settings struct {
	Kernel        string           `json:"kernel" yaml:"kernel"`
	Constant      fractal.Complex  `json:"constant" yaml:"constant"`
	Center        fractal.Complex  `json:"center" yaml:"center"`
	CenterStart   *fractal.Complex `json:"centerStart,omitempty" yaml:"centerStart,omitempty"`
	CenterEnd     *fractal.Complex `json:"centerEnd,omitempty" yaml:"centerEnd,omitempty"`
	CenterEasing  string           `json:"centerEasing" yaml:"centerEasing"`
	FrameCount    int              `json:"frameCount" yaml:"frameCount"`
	Height        int              `json:"height" yaml:"height"`
	Iterations    string           `json:"iterations" yaml:"iterations"`
	MaxIterations int              `json:"maxIterations" yaml:"maxIterations"`
	ScaleEnd      float64          `json:"scaleEnd" yaml:"scaleEnd"`
	ScaleStart    float64          `json:"scaleStart" yaml:"scaleStart"`
	Width         int              `json:"width" yaml:"width"`
}

func (s *Settings) String() string {
	output := "\nSequence settings\n"
	output += fmt.Sprintf("Kernel: %s\n", s.Kernel)
	output += fmt.Sprintf("Frames: %d\n", s.FrameCount)
	output += fmt.Sprintf("Size: %dx%d\n", s.Width, s.Height)
	output += fmt.Sprintf("Scale: %g -> %g\n", s.ScaleStart, s.ScaleEnd)
	if s.CenterStart != nil && s.CenterEnd != nil {
		output += fmt.Sprintf("Center: %s -> %s (%s)\n", s.CenterStart, s.CenterEnd, s.CenterEasing)
	} else {
		output += fmt.Sprintf("Center: %s\n", s.Center)
	}
	output += fmt.Sprintf("Iterations: %s %d", s.Iterations, s.MaxIterations)
	return output
}

// Verify fills in defaults for unset values. Values that are set but can never render are
// reported as a ConfigError.
func (s *Settings) Verify() error {
	if s.Kernel == "" {
		s.Kernel = "mandelbrot"
	}
	if s.FrameCount < 0 {
		return misc.NewConfigError("frameCount", "must be > 0, got %d", s.FrameCount)
	}
	if s.FrameCount == 0 {
		s.FrameCount = 1
	}
	if s.Width < 0 || s.Height < 0 {
		return misc.NewConfigError("size", "raster dimensions must be > 0, got %dx%d", s.Width, s.Height)
	}
	if s.Width == 0 {
		s.Width = 1920
	}
	if s.Height == 0 {
		s.Height = 1080
	}
	if s.ScaleStart == 0 {
		s.ScaleStart = 3.0 / float64(s.Height)
	}
	if s.ScaleEnd == 0 {
		s.ScaleEnd = s.ScaleStart
	}
	s.Iterations = strings.ToLower(strings.TrimSpace(s.Iterations))
	if s.Iterations == "" {
		s.Iterations = Fixed
	}
	if s.MaxIterations < 0 {
		return misc.NewConfigError("maxIterations", "must be >= 0, got %d", s.MaxIterations)
	}
	if s.MaxIterations == 0 && s.Iterations == Fixed {
		s.MaxIterations = 1000
	}
	if s.CenterEasing == "" {
		s.CenterEasing = "linear"
	}
	if (s.CenterStart == nil) != (s.CenterEnd == nil) {
		return misc.NewConfigError("center", "centerStart and centerEnd must be set together")
	}
	return nil
}
