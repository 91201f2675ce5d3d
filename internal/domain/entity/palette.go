package entity

import (
	"fmt"
	"image/color"
)

// Palette maps a class id (the slice index) to its display color.
type Palette []color.RGBA

// Len returns the number of classes the palette covers.
func (p Palette) Len() int {
	return len(p)
}

// Color returns the color of class id.
func (p Palette) Color(id int) (color.RGBA, error) {
	if id < 0 || id >= len(p) {
		return color.RGBA{}, fmt.Errorf("class %d outside palette of %d: %w", id, len(p), ErrClassMismatch)
	}
	return p[id], nil
}

// PaletteFromTriples builds a palette from raw RGB triples.
func PaletteFromTriples(triples [][3]uint8) Palette {
	p := make(Palette, len(triples))
	for i, t := range triples {
		p[i] = color.RGBA{R: t[0], G: t[1], B: t[2], A: 255}
	}
	return p
}
