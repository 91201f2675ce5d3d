//go:build !gocv
// +build !gocv

package vision

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Codec decodes and encodes images in pure Go.
type Codec struct{}

// NewCodec creates the pure Go codec (no OpenCV).
func NewCodec() *Codec {
	return &Codec{}
}

// Read decodes the file at path. EXIF orientation is ignored so pixels keep
// their stored layout.
func (c *Codec) Read(path string) (*entity.Image, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img := FromImage(src)
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Write encodes img; the format follows the file extension (PNG for outputs).
func (c *Codec) Write(path string, img *entity.Image) error {
	rgba, err := ToImage(img)
	if err != nil {
		return err
	}
	if err := imaging.Save(rgba, path); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// Resizer scales with the nfnt/resize bilinear filter.
type Resizer struct{}

// NewResizer creates the pure Go resizer.
func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize returns img scaled to height x width.
func (r *Resizer) Resize(img *entity.Image, height, width int) (*entity.Image, error) {
	if height <= 0 || width <= 0 {
		return nil, &entity.ShapeError{Op: "resize", Got: []int{height, width}, Want: "positive size"}
	}
	rgba, err := ToImage(img)
	if err != nil {
		return nil, err
	}
	return FromImage(resize.Resize(uint(width), uint(height), rgba, resize.Bilinear)), nil
}

var (
	_ port.ImageCodec = (*Codec)(nil)
	_ port.Resizer    = (*Resizer)(nil)
)
