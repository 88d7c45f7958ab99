package animation

import (
	"fmt"
	"math"
	"strings"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
	"FractalAnimator/palette"
	"FractalAnimator/sequence"
	"FractalAnimator/task"
)

// Settings is everything needed to render any frame of a run. It is shared between the local
// runner and every worker of a distributed run.
type Settings struct {
	Palette   PaletteSettings    `json:"palette" yaml:"palette"`
	Raster    RasterSettings     `json:"raster" yaml:"raster"`
	Animation *sequence.Settings `json:"animation,omitempty" yaml:"animation,omitempty"`
	Mosaic    *MosaicSettings    `json:"mosaic,omitempty" yaml:"mosaic,omitempty"`
}

type PaletteSettings struct {
	Colors          []string `json:"colors" yaml:"colors"`
	Interpolation   string   `json:"interpolation" yaml:"interpolation"`
	Length          int      `json:"length" yaml:"length"`
	Sampling        string   `json:"sampling" yaml:"sampling"`
	MembershipColor string   `json:"membershipColor" yaml:"membershipColor"`
	Offset          int      `json:"offset" yaml:"offset"`
}

type RasterSettings struct {
	Generation    string `json:"generation" yaml:"generation"`
	SuperSampling int    `json:"superSampling" yaml:"superSampling"`
	Concurrency   int    `json:"concurrency" yaml:"concurrency"`
}

// MosaicSettings animates a grid of fractals. The per-tile zoom ramps geometrically from ZoomStart
// to ZoomEnd across the frames.
type MosaicSettings struct {
	Kernel        string  `json:"kernel" yaml:"kernel"`
	GridSize      int     `json:"gridSize" yaml:"gridSize"`
	Width         int     `json:"width" yaml:"width"`
	Height        int     `json:"height" yaml:"height"`
	ScaleFactor   float64 `json:"scaleFactor" yaml:"scaleFactor"`
	RealMin       float64 `json:"realMin" yaml:"realMin"`
	RealMax       float64 `json:"realMax" yaml:"realMax"`
	ImagMin       float64 `json:"imagMin" yaml:"imagMin"`
	ImagMax       float64 `json:"imagMax" yaml:"imagMax"`
	MaxIterations int     `json:"maxIterations" yaml:"maxIterations"`
	FrameCount    int     `json:"frameCount" yaml:"frameCount"`
	ZoomStart     float64 `json:"zoomStart" yaml:"zoomStart"`
	ZoomEnd       float64 `json:"zoomEnd" yaml:"zoomEnd"`
	Background    string  `json:"background" yaml:"background"`
}

func (s *Settings) String() string {
	output := "\nRender settings\n"
	output += fmt.Sprintf("Palette: %d colors %s x%d (%s, offset %d)\n", len(s.Palette.Colors), s.Palette.Interpolation, s.Palette.Length, s.Palette.Sampling, s.Palette.Offset)
	output += fmt.Sprintf("Raster: %s, super sampling %d\n", s.Raster.Generation, s.Raster.SuperSampling)
	if s.Animation != nil {
		output += s.Animation.String()
	}
	if s.Mosaic != nil {
		output += fmt.Sprintf("Mosaic: %s %dx%d grid on %dx%d, %d frames, zoom %g -> %g", s.Mosaic.Kernel, s.Mosaic.GridSize, s.Mosaic.GridSize, s.Mosaic.Width, s.Mosaic.Height, s.Mosaic.FrameCount, s.Mosaic.ZoomStart, s.Mosaic.ZoomEnd)
	}
	return output
}

// Verify fills in defaults and checks that exactly one kind of animation is configured.
func (s *Settings) Verify() error {
	if (s.Animation == nil) == (s.Mosaic == nil) {
		return misc.NewConfigError("animation", "exactly one of animation or mosaic must be set")
	}

	kernel := "mandelbrot"
	if s.Animation != nil {
		if err := s.Animation.Verify(); err != nil {
			return err
		}
		kernel = s.Animation.Kernel
	} else {
		if err := s.Mosaic.Verify(); err != nil {
			return err
		}
		kernel = s.Mosaic.Kernel
	}

	if err := s.Palette.Verify(kernel); err != nil {
		return err
	}
	return s.Raster.Verify()
}

// Verify defaults the gradient to black, lavender, red, black.
// Mandelbrot members are drawn black and Julia members white unless a color is given.
func (ps *PaletteSettings) Verify(kernel string) error {
	if len(ps.Colors) == 0 {
		ps.Colors = []string{"0,0,0", "204,179,255", "255,0,0", "0,0,0"}
	}
	if ps.Interpolation == "" {
		ps.Interpolation = "cubic"
	}
	if ps.Length < 0 {
		return misc.NewConfigError("palette.length", "must be > 0, got %d", ps.Length)
	}
	if ps.Length == 0 {
		ps.Length = 256
	}
	if ps.Sampling == "" {
		ps.Sampling = "open"
	}
	if ps.MembershipColor == "" {
		ps.MembershipColor = "0,0,0"
		if strings.EqualFold(kernel, "julia") {
			ps.MembershipColor = "255,255,255"
		}
	}
	return nil
}

// Colorizer builds the palette and the colorizer described by ps.
func (ps PaletteSettings) Colorizer() (palette.Colorizer, error) {
	controls, err := palette.ParseColors(ps.Colors)
	if err != nil {
		return palette.Colorizer{}, err
	}
	kind, err := palette.ParseInterpolation(ps.Interpolation)
	if err != nil {
		return palette.Colorizer{}, err
	}
	sampling, err := palette.ParseSampling(ps.Sampling)
	if err != nil {
		return palette.Colorizer{}, err
	}
	membership, err := palette.ParseColor(ps.MembershipColor)
	if err != nil {
		return palette.Colorizer{}, err
	}
	p, err := palette.Build(controls, kind, ps.Length, palette.WithSampling(sampling))
	if err != nil {
		return palette.Colorizer{}, err
	}
	return palette.NewColorizer(p, membership.RGBA(), ps.Offset)
}

func (rs *RasterSettings) Verify() error {
	if rs.Generation == "" {
		rs.Generation = "row"
	}
	if _, err := task.ParseGeneration(rs.Generation); err != nil {
		return err
	}
	if rs.SuperSampling < 0 {
		return misc.NewConfigError("raster.superSampling", "must be >= 1, got %d", rs.SuperSampling)
	}
	if rs.SuperSampling == 0 {
		rs.SuperSampling = 1
	}
	if rs.Concurrency < 0 {
		return misc.NewConfigError("raster.concurrency", "must be >= 0, got %d", rs.Concurrency)
	}
	return nil
}

// Verify defaults to a 31x31 lattice of Julia sets over [-2, 2] x [-2, 2] on a 2160x2160 output,
// tiles at 99% of their cell.
func (ms *MosaicSettings) Verify() error {
	if ms.Kernel == "" {
		ms.Kernel = "julia"
	}
	if _, err := fractal.ParseKernel(ms.Kernel); err != nil {
		return err
	}
	if ms.GridSize < 0 || ms.Width < 0 || ms.Height < 0 || ms.FrameCount < 0 || ms.MaxIterations < 0 {
		return misc.NewConfigError("mosaic", "gridSize, width, height, frameCount and maxIterations must not be negative")
	}
	if ms.GridSize == 0 {
		ms.GridSize = 31
	}
	if ms.Width == 0 {
		ms.Width = 2160
	}
	if ms.Height == 0 {
		ms.Height = ms.Width
	}
	if ms.ScaleFactor == 0 {
		ms.ScaleFactor = 0.99
	}
	if ms.RealMin == 0 && ms.RealMax == 0 {
		ms.RealMin, ms.RealMax = -2, 2
	}
	if ms.ImagMin == 0 && ms.ImagMax == 0 {
		ms.ImagMin, ms.ImagMax = -2, 2
	}
	if ms.MaxIterations == 0 {
		ms.MaxIterations = 1000
	}
	if ms.FrameCount == 0 {
		ms.FrameCount = 1
	}
	if ms.ZoomStart == 0 {
		ms.ZoomStart = 1
	}
	if ms.ZoomEnd == 0 {
		ms.ZoomEnd = ms.ZoomStart
	}
	if !misc.IsFinite(ms.ZoomStart) || !misc.IsFinite(ms.ZoomEnd) || ms.ZoomStart < 0 || ms.ZoomEnd < 0 {
		return misc.NewConfigError("mosaic.zoom", "zoom must be a finite value > 0, got %g -> %g", ms.ZoomStart, ms.ZoomEnd)
	}
	if ms.Background == "" {
		ms.Background = "0,0,0"
	}
	return nil
}

// ZoomPerFrame returns the ZoomEnd that multiplies the zoom by factor on every frame after the
// first, as in a "zoom *= factor" loop.
func ZoomPerFrame(start float64, factor float64, frames int) float64 {
	return start * math.Pow(factor, float64(max(frames-1, 0)))
}
