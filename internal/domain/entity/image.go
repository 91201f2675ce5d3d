package entity

import "fmt"

// RGBChannels is the channel count of every image the pipeline handles.
const RGBChannels = 3

// Image is an 8-bit channel-first (CHW) pixel grid.
// It is used for raw inputs, color maps and the written output.
type Image struct {
	Channels int
	Height   int
	Width    int
	Pix      []uint8 // index: c*Height*Width + y*Width + x
}

// NewImage allocates a zeroed image of the given shape.
func NewImage(channels, height, width int) (*Image, error) {
	img := &Image{Channels: channels, Height: height, Width: width}
	if err := img.checkDims(); err != nil {
		return nil, err
	}
	img.Pix = make([]uint8, channels*height*width)
	return img, nil
}

// Shape returns (channels, height, width).
func (img *Image) Shape() []int {
	return []int{img.Channels, img.Height, img.Width}
}

// At returns the value of channel c at (y, x).
func (img *Image) At(c, y, x int) uint8 {
	return img.Pix[img.offset(c, y, x)]
}

// Set stores v in channel c at (y, x).
func (img *Image) Set(c, y, x int, v uint8) {
	img.Pix[img.offset(c, y, x)] = v
}

func (img *Image) offset(c, y, x int) int {
	return c*img.Height*img.Width + y*img.Width + x
}

// Validate checks that the image is a 3-channel grid with two positive
// spatial dimensions and a pixel buffer of matching length.
func (img *Image) Validate() error {
	if img == nil {
		return &ShapeError{Op: "validate", Want: "3xHxW image"}
	}
	if err := img.checkDims(); err != nil {
		return err
	}
	if img.Channels != RGBChannels {
		return &ShapeError{Op: "validate", Got: img.Shape(), Want: "3 channels"}
	}
	if want := img.Channels * img.Height * img.Width; len(img.Pix) != want {
		return &ShapeError{
			Op:   "validate",
			Got:  img.Shape(),
			Want: fmt.Sprintf("%d pixel values, have %d", want, len(img.Pix)),
		}
	}
	return nil
}

func (img *Image) checkDims() error {
	if img.Channels <= 0 || img.Height <= 0 || img.Width <= 0 {
		return &ShapeError{Op: "validate", Got: img.Shape(), Want: "positive dimensions"}
	}
	return nil
}

// ClassMap holds one class id per pixel at the original resolution.
type ClassMap struct {
	Height  int
	Width   int
	Classes []int // index: y*Width + x
}

// At returns the class id at (y, x).
func (m *ClassMap) At(y, x int) int {
	return m.Classes[y*m.Width+x]
}
