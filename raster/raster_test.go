package raster

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"FractalAnimator/fractal"
	"FractalAnimator/misc"
	"FractalAnimator/palette"
	"FractalAnimator/task"
)

func testColorizer(t *testing.T) palette.Colorizer {
	t.Helper()
	p, err := palette.Build([]palette.RGB{{R: 0, G: 0, B: 255}, {R: 255, G: 255, B: 0}}, palette.Linear, 16)
	if err != nil {
		t.Fatalf("building palette: %v", err)
	}
	c, err := palette.NewColorizer(p, palette.Black, 0)
	if err != nil {
		t.Fatalf("building colorizer: %v", err)
	}
	return c
}

func testRequest() fractal.Request {
	return fractal.Request{
		Kernel:        fractal.Mandelbrot,
		Center:        fractal.Complex{Re: -0.5, Im: 0},
		Scale:         3.0 / 48,
		Width:         64,
		Height:        48,
		MaxIterations: 50,
	}
}

func TestRenderZeroBudgetIsAllMembership(t *testing.T) {
	req := testRequest()
	req.MaxIterations = 0
	img, err := RenderRaster(req, testColorizer(t))
	if err != nil {
		t.Fatalf("RenderRaster: %v", err)
	}
	for y := 0; y < req.Height; y++ {
		for x := 0; x < req.Width; x++ {
			if got := img.RGBAAt(x, y); got != palette.Black {
				t.Fatalf("pixel (%d,%d) = %v, want membership color", x, y, got)
			}
		}
	}
}

func TestRenderMatchesEvaluator(t *testing.T) {
	req := testRequest()
	c := testColorizer(t)
	img, err := RenderRaster(req, c)
	if err != nil {
		t.Fatalf("RenderRaster: %v", err)
	}
	if b := img.Bounds(); b.Dx() != req.Width || b.Dy() != req.Height {
		t.Fatalf("bounds %v, want %dx%d", b, req.Width, req.Height)
	}
	for y := 0; y < req.Height; y++ {
		for x := 0; x < req.Width; x++ {
			want := c.Color(req.Evaluate(x, y))
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	// the raster center maps to -0.5+0i which is inside the set
	if got := img.RGBAAt(req.Width/2, req.Height/2); got != palette.Black {
		t.Errorf("center pixel = %v, want membership color", got)
	}
}

func TestRenderGenerationsAgree(t *testing.T) {
	req := testRequest()
	req.Width, req.Height = 150, 70
	c := testColorizer(t)
	want, err := Render(context.Background(), req, c, WithConcurrency(1))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, g := range []task.Generation{task.Row, task.Column, task.Image, task.Grid} {
		got, err := Render(context.Background(), req, c, WithGeneration(g), WithConcurrency(4))
		if err != nil {
			t.Fatalf("%s: %v", g, err)
		}
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("%s: raster differs from the sequential render", g)
		}
	}
}

func TestRenderSuperSampling(t *testing.T) {
	req := testRequest()
	c := testColorizer(t)
	plain, err := RenderRaster(req, c)
	if err != nil {
		t.Fatalf("RenderRaster: %v", err)
	}
	one, err := Render(context.Background(), req, c, WithSuperSampling(1))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(plain.Pix, one.Pix) {
		t.Errorf("super sampling 1 should match the plain render")
	}

	req.MaxIterations = 0
	three, err := Render(context.Background(), req, c, WithSuperSampling(3))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := three.RGBAAt(10, 10); got != (color.RGBA{A: 255}) {
		t.Errorf("averaging identical samples changed the color: %v", got)
	}

	if _, err := Render(context.Background(), req, c, WithSuperSampling(0)); err == nil {
		t.Errorf("expected an error for super sampling 0")
	}
}

func TestAverageRounds(t *testing.T) {
	tests := []struct {
		samples []color.RGBA
		want    color.RGBA
	}{
		{[]color.RGBA{{R: 10, G: 20, B: 30}}, color.RGBA{R: 10, G: 20, B: 30, A: 255}},
		{[]color.RGBA{{R: 0}, {R: 1}}, color.RGBA{R: 1, A: 255}},
		{[]color.RGBA{{G: 0}, {G: 0}, {G: 1}, {G: 1}}, color.RGBA{G: 1, A: 255}},
		{[]color.RGBA{{B: 255}, {B: 254}, {B: 254}}, color.RGBA{B: 254, A: 255}},
		{[]color.RGBA{{R: 255, G: 255, B: 255}, {R: 255, G: 255, B: 255}}, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := average(tt.samples); got != tt.want {
			t.Errorf("average(%v) = %v, want %v", tt.samples, got, tt.want)
		}
	}
}

func TestRenderRejectsInvalidRequests(t *testing.T) {
	c := testColorizer(t)
	tests := map[string]func(*fractal.Request){
		"zero scale":     func(r *fractal.Request) { r.Scale = 0 },
		"zero width":     func(r *fractal.Request) { r.Width = 0 },
		"negative iters": func(r *fractal.Request) { r.MaxIterations = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := testRequest()
			mutate(&req)
			img, err := RenderRaster(req, c)
			var configErr *misc.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected a ConfigError, got %v", err)
			}
			if img != nil {
				t.Errorf("expected no raster on error")
			}
		})
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, testRequest(), testColorizer(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
