package grid

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
)

// Spec lays a GridSize x GridSize lattice of fractals over a Width x Height output. Each cell gets
// a tile ScaleFactor times the size of the cell, centered as a block in the output. The lattice spans
// the complex window [RealMin, RealMax] x [ImagMin, ImagMax].
type Spec struct {
	GridSize      int
	Width         int
	Height        int
	ScaleFactor   float64
	RealMin       float64
	RealMax       float64
	ImagMin       float64
	ImagMax       float64
	Kernel        fractal.Kernel
	MaxIterations int
	Zoom          float64    // multiplies the per-tile scale, 0 means 1
	Background    color.RGBA // outside of every tile, the zero value means opaque black
}

// Tile is one lattice cell: where it lands in the output and what it renders.
type Tile struct {
	Row     int
	Column  int
	Rect    image.Rectangle
	Request fractal.Request
}

func (s Spec) zoom() float64 {
	if s.Zoom == 0 {
		return 1
	}
	return s.Zoom
}

func (s Spec) background() color.RGBA {
	if s.Background == (color.RGBA{}) {
		return color.RGBA{A: 255}
	}
	return s.Background
}

func (s Spec) Validate() error {
	if s.GridSize <= 0 {
		return misc.NewConfigError("gridSize", "must be > 0, got %d", s.GridSize)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return misc.NewConfigError("size", "output dimensions must be > 0, got %dx%d", s.Width, s.Height)
	}
	if !misc.IsFinite(s.ScaleFactor) || s.ScaleFactor <= 0 || s.ScaleFactor > 1 {
		return misc.NewConfigError("scaleFactor", "must be in (0, 1], got %g", s.ScaleFactor)
	}
	for _, v := range []float64{s.RealMin, s.RealMax, s.ImagMin, s.ImagMax} {
		if !misc.IsFinite(v) {
			return misc.NewConfigError("window", "bounds must be finite")
		}
	}
	if s.RealMax <= s.RealMin || s.ImagMax <= s.ImagMin {
		return misc.NewConfigError("window", "empty window [%g, %g] x [%g, %g]", s.RealMin, s.RealMax, s.ImagMin, s.ImagMax)
	}
	if !misc.IsFinite(s.Zoom) || s.Zoom < 0 {
		return misc.NewConfigError("zoom", "must be > 0, got %g", s.Zoom)
	}
	if s.MaxIterations < 0 {
		return misc.NewConfigError("maxIterations", "must be >= 0, got %d", s.MaxIterations)
	}
	if s.tileSize(s.Width) < 1 || s.tileSize(s.Height) < 1 {
		return misc.NewConfigError("gridSize", "tiles would be smaller than one pixel")
	}
	return nil
}

func (s Spec) tileSize(side int) float64 {
	return float64(side) / float64(s.GridSize) * s.ScaleFactor
}

// edges returns the G+1 pixel boundaries of the tiles along one axis. Tile j covers
// [edges[j], edges[j+1]), so neighbours share a boundary but never a pixel.
func (s Spec) edges(side int) []int {
	tile := s.tileSize(side)
	margin := (float64(side) - tile*float64(s.GridSize)) / 2
	edges := make([]int, s.GridSize+1)
	for j := range edges {
		// j*side*s/G keeps the s=1 edges on exact integers
		offset := margin + float64(j)*float64(side)*s.ScaleFactor/float64(s.GridSize)
		edges[j] = int(math.Floor(offset + 1e-9))
	}
	return edges
}

// Tiles lays out the lattice. Row 0 is the top of the output and holds the largest imaginary
// values. For Julia tiles the lattice value is the constant and the view is centered on the
// origin; for Mandelbrot tiles it is the view center.
func Tiles(s Spec) ([]Tile, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g := s.GridSize
	realStep := (s.RealMax - s.RealMin) / float64(g)
	imagStep := (s.ImagMax - s.ImagMin) / float64(g)
	scale := (s.RealMax - s.RealMin) / s.tileSize(s.Width) * s.zoom()
	xs := s.edges(s.Width)
	ys := s.edges(s.Height)

	tiles := make([]Tile, 0, g*g)
	for i := 0; i < g; i++ {
		for j := 0; j < g; j++ {
			value := fractal.Complex{
				Re: s.RealMin + realStep/2 + float64(j)*realStep,
				Im: s.ImagMax - imagStep/2 - float64(i)*imagStep,
			}
			rect := image.Rect(xs[j], ys[i], xs[j+1], ys[i+1])
			req := fractal.Request{
				Kernel:        s.Kernel,
				Scale:         scale,
				Width:         rect.Dx(),
				Height:        rect.Dy(),
				MaxIterations: s.MaxIterations,
			}
			if s.Kernel == fractal.Julia {
				req.Constant = value
			} else {
				req.Center = value
			}
			if err := req.Validate(); err != nil {
				return nil, fmt.Errorf("tile (%d, %d): %w", i, j, err)
			}
			tiles = append(tiles, Tile{Row: i, Column: j, Rect: rect, Request: req})
		}
	}
	return tiles, nil
}

// RenderFunc renders one tile request.
type RenderFunc func(ctx context.Context, req fractal.Request) (*image.RGBA, error)

type options struct {
	concurrency int
}

type Option func(*options)

// WithConcurrency bounds the number of tiles rendered at once. Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// Compose renders every tile of s with render and draws it into a single output raster. Tiles are
// rendered concurrently; their rectangles are disjoint so they are drawn without locking.
func Compose(ctx context.Context, s Spec, render RenderFunc, opts ...Option) (*image.RGBA, error) {
	tiles, err := Tiles(s)
	if err != nil {
		return nil, err
	}
	o := options{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}

	out := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(s.background()), image.Point{}, draw.Src)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			img, err := render(gctx, tile.Request)
			if err != nil {
				return fmt.Errorf("tile (%d, %d): %w", tile.Row, tile.Column, err)
			}
			draw.Draw(out, tile.Rect, img, img.Bounds().Min, draw.Src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
