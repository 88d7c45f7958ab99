package fractal

import (
	"fmt"
	"strings"

	"FractalAnimator/misc"
)

const (
	Mandelbrot Kernel = iota
	Julia
)

type Kernel int

func (k Kernel) String() string {
	switch k {
	case Mandelbrot:
		return "Mandelbrot"
	case Julia:
		return "Julia"
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

func ParseKernel(name string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mandelbrot":
		return Mandelbrot, nil
	case "julia":
		return Julia, nil
	}
	return 0, misc.NewConfigError("kernel", "unknown kernel %q", name)
}

// Complex is a point on the complex plane.
type Complex struct {
	Re float64 `json:"re" yaml:"re"`
	Im float64 `json:"im" yaml:"im"`
}

func (c Complex) String() string {
	return fmt.Sprintf("(%g%+gi)", c.Re, c.Im)
}

// Request describes one raster. Center is the complex value under the middle of the raster and
// Constant is the Julia constant; Mandelbrot requests ignore Constant.
type Request struct {
	Kernel        Kernel
	Center        Complex
	Constant      Complex
	Scale         float64 // complex units per pixel
	Width         int
	Height        int
	MaxIterations int
}

func (r Request) String() string {
	output := "{Request "
	output += fmt.Sprintf("Kernel: %s ", r.Kernel)
	output += fmt.Sprintf("Center: %s ", r.Center)
	if r.Kernel == Julia {
		output += fmt.Sprintf("Constant: %s ", r.Constant)
	}
	output += fmt.Sprintf("Scale: %g ", r.Scale)
	output += fmt.Sprintf("Size: %dx%d ", r.Width, r.Height)
	output += fmt.Sprintf("MaxIterations: %d}", r.MaxIterations)
	return output
}

// Validate rejects every request that could feed NaN or infinity into EscapeTime or that has
// nothing to render.
func (r Request) Validate() error {
	if r.Kernel != Mandelbrot && r.Kernel != Julia {
		return misc.NewConfigError("kernel", "unknown kernel %d", int(r.Kernel))
	}
	if !misc.IsFinite(r.Scale) || r.Scale <= 0 {
		return misc.NewConfigError("scale", "must be a finite value > 0, got %g", r.Scale)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return misc.NewConfigError("size", "raster dimensions must be > 0, got %dx%d", r.Width, r.Height)
	}
	if r.MaxIterations < 0 {
		return misc.NewConfigError("maxIterations", "must be >= 0, got %d", r.MaxIterations)
	}
	if !misc.IsFinite(r.Center.Re) || !misc.IsFinite(r.Center.Im) {
		return misc.NewConfigError("center", "must be finite, got %s", r.Center)
	}
	if !misc.IsFinite(r.Constant.Re) || !misc.IsFinite(r.Constant.Im) {
		return misc.NewConfigError("constant", "must be finite, got %s", r.Constant)
	}
	return nil
}

// Point converts the (column, row) pixel to its value on the complex plane.
func (r Request) Point(column int, row int) Complex {
	return r.SubPoint(column, row, 0, 0)
}

// SubPoint is Point shifted by a sub-pixel offset in [-0.5, 0.5).
//
// Pixels are indexed from the top left, so the half width and half height are subtracted to center
// the raster on Center, and the imaginary axis grows upwards.
func (r Request) SubPoint(column int, row int, xOffset float64, yOffset float64) Complex {
	return Complex{
		Re: r.Center.Re + r.Scale*(float64(column)+xOffset-float64(r.Width)/2.0),
		Im: r.Center.Im + r.Scale*(float64(r.Height)/2.0-(float64(row)+yOffset)),
	}
}

// Evaluate runs the escape-time loop for the pixel at (column, row).
func (r Request) Evaluate(column int, row int) (int, bool) {
	return EscapeTime(r.Kernel, r.Point(column, row), r.Constant, r.MaxIterations)
}
