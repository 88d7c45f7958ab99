package fractal

import (
	"errors"
	"math"
	"testing"

	"FractalAnimator/misc"
)

func TestEscapeTimeKnownPoints(t *testing.T) {
	tests := []struct {
		name       string
		kernel     Kernel
		point      Complex
		constant   Complex
		max        int
		iterations int
		member     bool
	}{
		{"origin is in the set", Mandelbrot, Complex{0, 0}, Complex{}, 100, 100, true},
		{"-1 cycles forever", Mandelbrot, Complex{-1, 0}, Complex{}, 50, 50, true},
		{"c=1 escapes on the third step", Mandelbrot, Complex{1, 0}, Complex{}, 100, 3, false},
		{"c=2 escapes on the second step", Mandelbrot, Complex{2, 0}, Complex{}, 100, 2, false},
		{"far away escapes at once", Mandelbrot, Complex{3, 0}, Complex{}, 100, 1, false},
		{"julia start outside radius", Julia, Complex{3, 0}, Complex{-0.5, 0.5}, 100, 0, false},
		{"julia c=0 unit circle is bounded", Julia, Complex{0.6, 0.8}, Complex{0, 0}, 40, 40, true},
		{"julia c=0 outside unit circle escapes", Julia, Complex{1.5, 0}, Complex{0, 0}, 40, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iterations, member := EscapeTime(tt.kernel, tt.point, tt.constant, tt.max)
			if iterations != tt.iterations || member != tt.member {
				t.Fatalf("EscapeTime = (%d, %t), want (%d, %t)", iterations, member, tt.iterations, tt.member)
			}
		})
	}
}

func TestEscapeTimeZeroBudgetIsMember(t *testing.T) {
	for _, kernel := range []Kernel{Mandelbrot, Julia} {
		for _, p := range []Complex{{0, 0}, {5, 5}, {-2.5, 1}} {
			iterations, member := EscapeTime(kernel, p, Complex{0.3, 0.2}, 0)
			if iterations != 0 || !member {
				t.Fatalf("%s %s: got (%d, %t), want (0, true)", kernel, p, iterations, member)
			}
		}
	}
}

func TestEscapeTimeStaysInRange(t *testing.T) {
	for _, max := range []int{0, 1, 7, 64} {
		for re := -2.5; re <= 1.5; re += 0.173 {
			for im := -1.5; im <= 1.5; im += 0.211 {
				for _, kernel := range []Kernel{Mandelbrot, Julia} {
					iterations, member := EscapeTime(kernel, Complex{re, im}, Complex{-0.8, 0.156}, max)
					if iterations < 0 || iterations > max {
						t.Fatalf("iterations %d outside [0, %d]", iterations, max)
					}
					if member != (iterations == max) {
						t.Fatalf("member=%t for iterations=%d max=%d", member, iterations, max)
					}
				}
			}
		}
	}
}

func TestRequestPointMapping(t *testing.T) {
	r := Request{Center: Complex{-1.19, -0.25}, Scale: 0.5, Width: 4, Height: 2}
	top := r.Point(0, 0)
	if top.Re != -1.19-1.0 || top.Im != -0.25+0.5 {
		t.Fatalf("top left maps to %s", top)
	}
	mid := r.Point(2, 1)
	if mid != r.Center {
		t.Fatalf("middle pixel maps to %s, want %s", mid, r.Center)
	}
	odd := Request{Scale: 1, Width: 3, Height: 3}
	if p := odd.Point(0, 0); p.Re != -1.5 || p.Im != 1.5 {
		t.Fatalf("half sizes must use real division, got %s", p)
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{Kernel: Julia, Scale: 0.01, Width: 10, Height: 10, MaxIterations: 0}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name  string
		field string
		edit  func(*Request)
	}{
		{"zero scale", "scale", func(r *Request) { r.Scale = 0 }},
		{"negative scale", "scale", func(r *Request) { r.Scale = -1 }},
		{"nan scale", "scale", func(r *Request) { r.Scale = math.NaN() }},
		{"infinite scale", "scale", func(r *Request) { r.Scale = math.Inf(1) }},
		{"zero width", "size", func(r *Request) { r.Width = 0 }},
		{"negative height", "size", func(r *Request) { r.Height = -3 }},
		{"negative iterations", "maxIterations", func(r *Request) { r.MaxIterations = -1 }},
		{"nan center", "center", func(r *Request) { r.Center.Re = math.NaN() }},
		{"infinite constant", "constant", func(r *Request) { r.Constant.Im = math.Inf(-1) }},
		{"unknown kernel", "kernel", func(r *Request) { r.Kernel = Kernel(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.edit(&r)
			var ce *misc.ConfigError
			if err := r.Validate(); !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Fatalf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestParseKernel(t *testing.T) {
	if k, err := ParseKernel(" Julia "); err != nil || k != Julia {
		t.Fatalf("ParseKernel(Julia) = %v, %v", k, err)
	}
	if k, err := ParseKernel(""); err != nil || k != Mandelbrot {
		t.Fatalf("empty kernel should default to Mandelbrot, got %v, %v", k, err)
	}
	if _, err := ParseKernel("burning-ship"); err == nil {
		t.Fatalf("expected an error for an unsupported kernel")
	}
}
