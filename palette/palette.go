// Package palette builds gradient color lookup tables from a handful of control colors and maps
// escape-time iteration counts onto them.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"FractalAnimator/misc"
)

const (
	Linear Interpolation = iota
	Cubic
	HCL
)

// Interpolation selects how the color between two control points is computed.
type Interpolation int

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	case HCL:
		return "hcl"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "", "cubic":
		return Cubic, nil
	case "hcl":
		return HCL, nil
	}
	return 0, misc.NewConfigError("interpolation", "unknown interpolation %q", name)
}

const (
	// SampleOpen samples t = k/N, so the last control color itself is never reached.
	SampleOpen Sampling = iota
	// SampleClosed samples t = k/(N-1), so the first and last entries are the end control colors.
	SampleClosed
)

type Sampling int

func ParseSampling(name string) (Sampling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "open":
		return SampleOpen, nil
	case "closed":
		return SampleClosed, nil
	}
	return 0, misc.NewConfigError("sampling", "unknown sampling %q", name)
}

// RGB is a control color. Channels are ints so out of range input can be reported instead of
// silently wrapping.
type RGB struct {
	R, G, B int
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func (c RGB) valid() bool {
	return inByte(c.R) && inByte(c.G) && inByte(c.B)
}

func inByte(v int) bool {
	return v >= 0 && v <= 255
}

// RGBA converts a validated control color to an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// Palette is an immutable color lookup table. The zero value is empty and unusable.
type Palette struct {
	colors []color.RGBA
}

func (p Palette) Len() int {
	return len(p.colors)
}

func (p Palette) At(i int) color.RGBA {
	return p.colors[i]
}

// Colors returns a copy of the table.
func (p Palette) Colors() []color.RGBA {
	out := make([]color.RGBA, len(p.colors))
	copy(out, p.colors)
	return out
}

type buildOptions struct {
	sampling Sampling
}

type Option func(*buildOptions)

func WithSampling(s Sampling) Option {
	return func(o *buildOptions) {
		o.sampling = s
	}
}

// Build interpolates the control colors, placed evenly on [0, 1], into a table of length colors.
// Cubic needs at least 4 control colors and fails otherwise; it never degrades to linear.
func Build(controls []RGB, kind Interpolation, length int, opts ...Option) (Palette, error) {
	options := buildOptions{sampling: SampleOpen}
	for _, opt := range opts {
		opt(&options)
	}

	if len(controls) < 2 {
		return Palette{}, misc.NewConfigError("colors", "need at least 2 control colors, got %d", len(controls))
	}
	for i, c := range controls {
		if !c.valid() {
			return Palette{}, misc.NewConfigError("colors", "control color %d %s has a channel outside [0,255]", i, c)
		}
	}
	if length <= 0 {
		return Palette{}, misc.NewConfigError("length", "palette length must be > 0, got %d", length)
	}
	if options.sampling != SampleOpen && options.sampling != SampleClosed {
		return Palette{}, misc.NewConfigError("sampling", "unknown sampling %d", int(options.sampling))
	}

	sample, err := newSampler(controls, kind)
	if err != nil {
		return Palette{}, err
	}

	colors := make([]color.RGBA, length)
	for k := range colors {
		colors[k] = sample(position(k, length, options.sampling))
	}
	return Palette{colors: colors}, nil
}

func position(k int, length int, sampling Sampling) float64 {
	if sampling == SampleClosed {
		if length == 1 {
			return 0
		}
		return float64(k) / float64(length-1)
	}
	return float64(k) / float64(length)
}

// knots places n control points evenly on [0, 1].
func knots(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1)
	}
	xs[n-1] = 1
	return xs
}

func channels(controls []RGB) [3][]float64 {
	var ys [3][]float64
	for c := range ys {
		ys[c] = make([]float64, len(controls))
	}
	for i, control := range controls {
		ys[0][i] = float64(control.R)
		ys[1][i] = float64(control.G)
		ys[2][i] = float64(control.B)
	}
	return ys
}
