package palette

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"FractalAnimator/misc"
)

var (
	black  = RGB{0, 0, 0}
	red    = RGB{255, 0, 0}
	white  = RGB{255, 255, 255}
	purple = RGB{204, 179, 255}
)

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		controls []RGB
		kind     Interpolation
		length   int
	}{
		{"no colors", nil, Linear, 10},
		{"one color", []RGB{red}, Linear, 10},
		{"channel above range", []RGB{red, {256, 0, 0}}, Linear, 10},
		{"channel below range", []RGB{{0, -1, 0}, red}, Linear, 10},
		{"zero length", []RGB{black, red}, Linear, 0},
		{"negative length", []RGB{black, red}, Linear, -4},
		{"cubic with three colors", []RGB{black, red, white}, Cubic, 10},
		{"unknown kind", []RGB{black, red}, Interpolation(7), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.controls, tt.kind, tt.length)
			var ce *misc.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestBuildLinear(t *testing.T) {
	p, err := Build([]RGB{black, white}, Linear, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 64, 128, 191} // 0, 63.75, 127.5, 191.25 rounded
	for k, v := range want {
		if got := p.At(k); got.R != v || got.G != v || got.B != v || got.A != 255 {
			t.Fatalf("palette[%d] = %v, want gray %d", k, got, v)
		}
	}
}

func TestBuildLinearThroughMiddleStop(t *testing.T) {
	p, err := Build([]RGB{black, red, white}, Linear, 4)
	if err != nil {
		t.Fatal(err)
	}
	// t = 0.5 lands on red exactly
	if got := p.At(2); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("palette[2] = %v, want red", got)
	}
}

func TestBuildCubicReproducesCubic(t *testing.T) {
	// 243 * t^3 sampled at t = 0, 1/3, 2/3, 1
	controls := []RGB{{0, 0, 0}, {9, 9, 9}, {72, 72, 72}, {243, 243, 243}}
	const n = 27
	p, err := Build(controls, Cubic, n)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < n; k++ {
		x := float64(k) / n
		want := math.Round(243 * x * x * x)
		if got := float64(p.At(k).R); math.Abs(got-want) > 1 {
			t.Fatalf("palette[%d] = %v, want about %v", k, got, want)
		}
	}
}

func TestBuildCubicClampsOvershoot(t *testing.T) {
	// this curve overshoots both below 0 and above 255 between the stops
	p, err := Build([]RGB{black, purple, black, red, RGB{255, 140, 0}, black}, Cubic, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1000 {
		t.Fatalf("len = %d", p.Len())
	}
	if got := p.At(0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("palette[0] = %v, want the first control color", got)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	controls := []RGB{white, black, red, black}
	a, err := Build(controls, Cubic, 300)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(controls, Cubic, 300)
	if err != nil {
		t.Fatal(err)
	}
	ac, bc := a.Colors(), b.Colors()
	for i := range ac {
		if ac[i] != bc[i] {
			t.Fatalf("entry %d differs: %v vs %v", i, ac[i], bc[i])
		}
	}
}

func TestBuildSamplingEndpoints(t *testing.T) {
	controls := []RGB{white, purple, red, {10, 20, 30}}

	closed, err := Build(controls, Cubic, 256, WithSampling(SampleClosed))
	if err != nil {
		t.Fatal(err)
	}
	if got := closed.At(0); got != white.RGBA() {
		t.Fatalf("closed palette[0] = %v, want %v", got, white.RGBA())
	}
	if got := closed.At(255); got != (RGB{10, 20, 30}).RGBA() {
		t.Fatalf("closed palette[N-1] = %v, want the last control color", got)
	}

	open, err := Build(controls, Cubic, 256)
	if err != nil {
		t.Fatal(err)
	}
	if got := open.At(0); got != white.RGBA() {
		t.Fatalf("open palette[0] = %v, want %v", got, white.RGBA())
	}
	last := open.At(255)
	if diff := math.Abs(float64(last.B) - 30); diff > 8 {
		t.Fatalf("open palette[N-1] = %v, too far from the last control color", last)
	}
}

func TestBuildHCLEndpoints(t *testing.T) {
	p, err := Build([]RGB{red, white}, HCL, 5, WithSampling(SampleClosed))
	if err != nil {
		t.Fatal(err)
	}
	if p.At(0) != red.RGBA() || p.At(4) != white.RGBA() {
		t.Fatalf("hcl endpoints = %v .. %v", p.At(0), p.At(4))
	}
}

func TestColorsReturnsCopy(t *testing.T) {
	p, err := Build([]RGB{black, white}, Linear, 2)
	if err != nil {
		t.Fatal(err)
	}
	c := p.Colors()
	c[0] = color.RGBA{1, 2, 3, 4}
	if p.At(0) == c[0] {
		t.Fatalf("Colors leaked the backing array")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"#ff8c00", RGB{255, 140, 0}, true},
		{"204, 179, 255", RGB{204, 179, 255}, true},
		{"0,0,0", RGB{0, 0, 0}, true},
		{"256,0,0", RGB{}, false},
		{"-1,0,0", RGB{}, false},
		{"1,2", RGB{}, false},
		{"a,b,c", RGB{}, false},
		{"#zzzzzz", RGB{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseColor(%q) should fail", tt.in)
		}
	}
}

func TestParseInterpolation(t *testing.T) {
	for name, want := range map[string]Interpolation{"linear": Linear, "CUBIC": Cubic, "": Cubic, "hcl": HCL} {
		got, err := ParseInterpolation(name)
		if err != nil || got != want {
			t.Errorf("ParseInterpolation(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseInterpolation("quadratic"); err == nil {
		t.Errorf("expected an error for quadratic")
	}
}
