package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"

	"golang.org/x/sync/errgroup"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
	"FractalAnimator/palette"
	"FractalAnimator/task"
)

type options struct {
	generation    task.Generation
	concurrency   int
	superSampling int
}

type Option func(*options)

// WithGeneration picks how the raster is cut into independent pieces of work.
func WithGeneration(g task.Generation) Option {
	return func(o *options) {
		o.generation = g
	}
}

// WithConcurrency bounds the number of pieces evaluated at once. Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithSuperSampling evaluates an n x n grid of sub-pixels and averages their colors.
func WithSuperSampling(n int) Option {
	return func(o *options) {
		o.superSampling = n
	}
}

func newOptions(opts []Option) options {
	o := options{
		generation:    task.Row,
		concurrency:   runtime.GOMAXPROCS(0),
		superSampling: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}

// RenderRaster renders req with the default options.
func RenderRaster(req fractal.Request, c palette.Colorizer) (*image.RGBA, error) {
	return Render(context.Background(), req, c)
}

// Render evaluates every pixel of req and colors it with c. Pieces of the raster are evaluated in
// parallel; each goroutine only writes the pixels of its own piece.
func Render(ctx context.Context, req fractal.Request, c palette.Colorizer, opts ...Option) (*image.RGBA, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	if o.superSampling < 1 {
		return nil, misc.NewConfigError("superSampling", "must be >= 1, got %d", o.superSampling)
	}
	if c.Palette().Len() == 0 {
		return nil, misc.NewConfigError("palette", "colorizer has no palette")
	}

	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	subPixels := subPixelOffsets(o.superSampling)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, piece := range task.Split(img.Bounds(), o.generation) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fill(img, piece, req, c, subPixels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render %s: %w", req, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

// Grid super sampling: n evenly spaced offsets inside the pixel, centered on it.
func subPixelOffsets(n int) []float64 {
	offsets := make([]float64, n)
	if n > 1 {
		for i := 0; i < n; i++ {
			offsets[i] = ((0.5 + float64(i)) / float64(n)) - 0.5
		}
	}
	return offsets
}

func fill(img *image.RGBA, piece image.Rectangle, req fractal.Request, c palette.Colorizer, subPixels []float64) {
	for y := piece.Min.Y; y < piece.Max.Y; y++ {
		for x := piece.Min.X; x < piece.Max.X; x++ {
			img.SetRGBA(x, y, pixelColor(x, y, req, c, subPixels))
		}
	}
}

func pixelColor(x int, y int, req fractal.Request, c palette.Colorizer, subPixels []float64) color.RGBA {
	if len(subPixels) == 1 {
		iterations, member := req.Evaluate(x, y)
		return c.Color(iterations, member)
	}

	samples := make([]color.RGBA, 0, len(subPixels)*len(subPixels))
	for _, sx := range subPixels {
		for _, sy := range subPixels {
			point := req.SubPoint(x, y, sx, sy)
			iterations, member := fractal.EscapeTime(req.Kernel, point, req.Constant, req.MaxIterations)
			samples = append(samples, c.Color(iterations, member))
		}
	}
	return average(samples)
}

// average rounds each channel mean to the nearest integer.
func average(samples []color.RGBA) color.RGBA {
	var r, g, b int
	for _, sample := range samples {
		r += int(sample.R)
		g += int(sample.G)
		b += int(sample.B)
	}
	divisor := len(samples)
	return color.RGBA{
		R: uint8((r + divisor/2) / divisor),
		G: uint8((g + divisor/2) / divisor),
		B: uint8((b + divisor/2) / divisor),
		A: 255,
	}
}
