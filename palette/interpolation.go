package palette

import (
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"FractalAnimator/misc"
)

// sampler returns the palette color at t in [0, 1].
type sampler func(t float64) color.RGBA

func newSampler(controls []RGB, kind Interpolation) (sampler, error) {
	xs := knots(len(controls))
	switch kind {
	case Linear:
		ys := channels(controls)
		return func(t float64) color.RGBA {
			return color.RGBA{
				R: misc.ClampUint8(linearAt(xs, ys[0], t)),
				G: misc.ClampUint8(linearAt(xs, ys[1], t)),
				B: misc.ClampUint8(linearAt(xs, ys[2], t)),
				A: 255,
			}
		}, nil

	case Cubic:
		if len(controls) < 4 {
			return nil, misc.NewConfigError("colors", "cubic interpolation needs at least 4 control colors, got %d", len(controls))
		}
		ys := channels(controls)
		var splines [3]spline
		for c := range splines {
			s, err := newSpline(xs, ys[c])
			if err != nil {
				return nil, err
			}
			splines[c] = s
		}
		return func(t float64) color.RGBA {
			return color.RGBA{
				R: misc.ClampUint8(splines[0].at(t)),
				G: misc.ClampUint8(splines[1].at(t)),
				B: misc.ClampUint8(splines[2].at(t)),
				A: 255,
			}
		}, nil

	case HCL:
		stops := make([]colorful.Color, len(controls))
		for i, c := range controls {
			stops[i] = colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		}
		return func(t float64) color.RGBA {
			k, local := segment(xs, t)
			blended := stops[k].BlendHcl(stops[k+1], local)
			return color.RGBA{
				R: misc.ClampUint8(blended.R * 255),
				G: misc.ClampUint8(blended.G * 255),
				B: misc.ClampUint8(blended.B * 255),
				A: 255,
			}
		}, nil
	}
	return nil, misc.NewConfigError("interpolation", "unknown interpolation %d", int(kind))
}

// segment finds the interval [xs[k], xs[k+1]] holding t and the position of t inside it.
func segment(xs []float64, t float64) (int, float64) {
	k := sort.SearchFloat64s(xs, t) - 1
	if k < 0 {
		k = 0
	}
	if k > len(xs)-2 {
		k = len(xs) - 2
	}
	return k, (t - xs[k]) / (xs[k+1] - xs[k])
}

func linearAt(xs []float64, ys []float64, t float64) float64 {
	k, local := segment(xs, t)
	return misc.LerpFloat64(ys[k], ys[k+1], local)
}
