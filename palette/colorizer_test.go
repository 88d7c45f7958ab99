package palette

import (
	"image/color"
	"testing"
)

func grayPalette(t *testing.T, n int) Palette {
	t.Helper()
	p, err := Build([]RGB{{0, 0, 0}, {255, 255, 255}}, Linear, n)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestColorizerWrapsModulo(t *testing.T) {
	p := grayPalette(t, 4)
	c, err := NewColorizer(p, Black, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 12; i++ {
		if got, want := c.Color(i, false), p.At(i%4); got != want {
			t.Fatalf("Color(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestColorizerOffsetMinusOne(t *testing.T) {
	p := grayPalette(t, 4)
	c, err := NewColorizer(p, Black, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{3, 0, 1, 2, 3, 0}
	for i, idx := range want {
		if got := c.Index(i); got != idx {
			t.Fatalf("Index(%d) = %d, want %d", i, got, idx)
		}
	}
}

func TestColorizerMembershipIgnoresPalette(t *testing.T) {
	magenta := color.RGBA{255, 0, 255, 255}
	for _, n := range []int{1, 3, 256} {
		c, err := NewColorizer(grayPalette(t, n), magenta, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, i := range []int{0, 1, 255, 6000} {
			if got := c.Color(i, true); got != magenta {
				t.Fatalf("member pixel got %v", got)
			}
		}
	}
}

func TestNewColorizerEmptyPalette(t *testing.T) {
	if _, err := NewColorizer(Palette{}, White, 0); err == nil {
		t.Fatalf("expected an error for an empty palette")
	}
}
