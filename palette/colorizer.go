package palette

import (
	"errors"
	"image/color"
)

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Colorizer maps escape-time results to colors. Escaped pixels cycle through the palette by
// iteration count (banding past the palette length is intended); members of the set always get the
// membership color.
type Colorizer struct {
	palette    Palette
	membership color.RGBA
	offset     int
}

// NewColorizer shifts every palette lookup by offset entries. An offset of -1 reproduces the
// "palette[i % N - 1]" indexing some renders were made with.
func NewColorizer(p Palette, membership color.RGBA, offset int) (Colorizer, error) {
	if p.Len() == 0 {
		return Colorizer{}, errors.New("colorizer needs a non empty palette")
	}
	return Colorizer{
		palette:    p,
		membership: membership,
		offset:     offset,
	}, nil
}

func (c Colorizer) Palette() Palette {
	return c.palette
}

func (c Colorizer) Membership() color.RGBA {
	return c.membership
}

// Index is the palette entry used for an escaped pixel.
func (c Colorizer) Index(iterations int) int {
	n := c.palette.Len()
	i := (iterations%n + c.offset%n) % n
	if i < 0 {
		i += n
	}
	return i
}

func (c Colorizer) Color(iterations int, member bool) color.RGBA {
	if member {
		return c.membership
	}
	return c.palette.At(c.Index(iterations))
}
