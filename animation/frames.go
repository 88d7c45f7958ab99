package animation

import (
	"context"
	"image"

	"FractalAnimator/fractal"
	"FractalAnimator/grid"
	"FractalAnimator/misc"
	"FractalAnimator/palette"
	"FractalAnimator/raster"
	"FractalAnimator/sequence"
	"FractalAnimator/task"
)

// Frames renders any frame of an animation by index. Frames have no dependency on each other.
type Frames interface {
	Len() int
	Render(ctx context.Context, index int) (*image.RGBA, error)
}

// SequenceFrames renders every frame of a sequence as one raster.
type SequenceFrames struct {
	seq       *sequence.Sequence
	colorizer palette.Colorizer
	options   []raster.Option
}

func NewSequenceFrames(seq *sequence.Sequence, c palette.Colorizer, opts ...raster.Option) SequenceFrames {
	return SequenceFrames{seq: seq, colorizer: c, options: opts}
}

func (sf SequenceFrames) Len() int {
	return sf.seq.Len()
}

func (sf SequenceFrames) Render(ctx context.Context, index int) (*image.RGBA, error) {
	req, err := sf.seq.At(index)
	if err != nil {
		return nil, err
	}
	return raster.Render(ctx, req, sf.colorizer, sf.options...)
}

// MosaicFrames renders every frame as a grid of tiles, zooming all tiles in step.
type MosaicFrames struct {
	spec       grid.Spec
	frames     int
	zoomStart  float64
	zoomEnd    float64
	colorizer  palette.Colorizer
	options    []raster.Option
	gridOption []grid.Option
}

func NewMosaicFrames(spec grid.Spec, frames int, zoomStart float64, zoomEnd float64, c palette.Colorizer, opts ...raster.Option) (MosaicFrames, error) {
	if frames <= 0 {
		return MosaicFrames{}, misc.NewConfigError("frameCount", "must be > 0, got %d", frames)
	}
	if !misc.IsFinite(zoomStart) || !misc.IsFinite(zoomEnd) || zoomStart <= 0 || zoomEnd <= 0 {
		return MosaicFrames{}, misc.NewConfigError("zoom", "must be a finite value > 0, got %g -> %g", zoomStart, zoomEnd)
	}
	mf := MosaicFrames{
		spec:      spec,
		frames:    frames,
		zoomStart: zoomStart,
		zoomEnd:   zoomEnd,
		colorizer: c,
		options:   opts,
	}
	// the zoom only scales the tiles, so the first and last frames bound the whole run
	for _, i := range []int{0, frames - 1} {
		if _, err := grid.Tiles(mf.Spec(i)); err != nil {
			return MosaicFrames{}, err
		}
	}
	return mf, nil
}

func (mf MosaicFrames) Len() int {
	return mf.frames
}

// Spec is the grid of frame index.
func (mf MosaicFrames) Spec(index int) grid.Spec {
	spec := mf.spec
	spec.Zoom = sequence.Geometric(mf.zoomStart, mf.zoomEnd, mf.frames, index)
	return spec
}

func (mf MosaicFrames) Render(ctx context.Context, index int) (*image.RGBA, error) {
	render := func(ctx context.Context, req fractal.Request) (*image.RGBA, error) {
		// a tile is small, one piece of work per tile keeps the goroutine count down
		opts := append([]raster.Option{raster.WithGeneration(task.Image)}, mf.options...)
		return raster.Render(ctx, req, mf.colorizer, opts...)
	}
	return grid.Compose(ctx, mf.Spec(index), render, mf.gridOption...)
}

// Frames builds the frame source described by verified settings.
func (s Settings) Frames() (Frames, error) {
	c, err := s.Palette.Colorizer()
	if err != nil {
		return nil, err
	}
	generation, err := task.ParseGeneration(s.Raster.Generation)
	if err != nil {
		return nil, err
	}
	opts := []raster.Option{
		raster.WithGeneration(generation),
		raster.WithSuperSampling(s.Raster.SuperSampling),
		raster.WithConcurrency(s.Raster.Concurrency),
	}

	if s.Animation != nil {
		seq, err := sequence.New(*s.Animation)
		if err != nil {
			return nil, err
		}
		return NewSequenceFrames(seq, c, opts...), nil
	}

	m := s.Mosaic
	kernel, err := fractal.ParseKernel(m.Kernel)
	if err != nil {
		return nil, err
	}
	background, err := palette.ParseColor(m.Background)
	if err != nil {
		return nil, err
	}
	spec := grid.Spec{
		GridSize:      m.GridSize,
		Width:         m.Width,
		Height:        m.Height,
		ScaleFactor:   m.ScaleFactor,
		RealMin:       m.RealMin,
		RealMax:       m.RealMax,
		ImagMin:       m.ImagMin,
		ImagMax:       m.ImagMax,
		Kernel:        kernel,
		MaxIterations: m.MaxIterations,
		Background:    background.RGBA(),
	}
	mf, err := NewMosaicFrames(spec, m.FrameCount, m.ZoomStart, m.ZoomEnd, c, raster.WithSuperSampling(s.Raster.SuperSampling))
	if err != nil {
		return nil, err
	}
	if s.Raster.Concurrency > 0 {
		mf.gridOption = []grid.Option{grid.WithConcurrency(s.Raster.Concurrency)}
	}
	return mf, nil
}
