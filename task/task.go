package task

import (
	"fmt"
	"image"
	"strings"

	"FractalAnimator/misc"
)

/*
	Ways to cut a raster into independent pieces of work
	row: each piece is one row of the raster
	column: each piece is one column of the raster
	image: the whole raster is one piece (useful when many frames are rendered at once)
	grid: square cells of GridCellSize pixels, edge cells are smaller
*/

const (
	Row Generation = iota
	Column
	Image
	Grid
)

// GridCellSize is the side of a Grid piece in pixels.
const GridCellSize = 64

type Generation int

func (g Generation) String() string {
	if g < Row || g > Grid {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return []string{
		"Row", "Column", "Image", "Grid",
	}[g]
}

func ParseGeneration(name string) (Generation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "row":
		return Row, nil
	case "column":
		return Column, nil
	case "image":
		return Image, nil
	case "grid":
		return Grid, nil
	}
	return Row, misc.NewConfigError("generation", "unknown task generation %q", name)
}

// Split cuts bounds into pieces that are pairwise disjoint and together cover bounds exactly.
func Split(bounds image.Rectangle, generation Generation) []image.Rectangle {
	if bounds.Empty() {
		return nil
	}

	var pieces []image.Rectangle
	switch generation {
	case Column:
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pieces = append(pieces, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y))
		}
	case Image:
		pieces = append(pieces, bounds)
	case Grid:
		for y := bounds.Min.Y; y < bounds.Max.Y; y += GridCellSize {
			for x := bounds.Min.X; x < bounds.Max.X; x += GridCellSize {
				// Intersect trims the right and bottom edge cells
				pieces = append(pieces, image.Rect(x, y, x+GridCellSize, y+GridCellSize).Intersect(bounds))
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			pieces = append(pieces, image.Rect(bounds.Min.X, y, bounds.Max.X, y+1))
		}
	}
	return pieces
}
