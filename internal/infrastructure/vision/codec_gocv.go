//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Codec decodes and encodes images with OpenCV.
type Codec struct{}

// NewCodec creates the OpenCV-backed codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Read decodes the file at path as a 3-channel color image.
func (c *Codec) Read(path string) (*entity.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", path)
	}
	return matToEntity(mat)
}

// Write encodes img; the format follows the file extension (PNG for outputs).
func (c *Codec) Write(path string, img *entity.Image) error {
	mat, err := entityToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("encode %s: imwrite failed", path)
	}
	return nil
}

// Resizer scales with cv::resize INTER_LINEAR.
type Resizer struct{}

// NewResizer creates the OpenCV resizer.
func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize returns img scaled to height x width.
func (r *Resizer) Resize(img *entity.Image, height, width int) (*entity.Image, error) {
	if height <= 0 || width <= 0 {
		return nil, &entity.ShapeError{Op: "resize", Got: []int{height, width}, Want: "positive size"}
	}
	src, err := entityToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	return matToEntity(dst)
}

// matToEntity reads a BGR Mat through ToImage so channel order matches the pure Go path.
func matToEntity(mat gocv.Mat) (*entity.Image, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

func entityToMat(img *entity.Image) (gocv.Mat, error) {
	rgba, err := ToImage(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.ImageToMatRGB(rgba)
	if err != nil {
		return gocv.NewMat(), errors.New("failed to convert image to mat")
	}
	return mat, nil
}

var (
	_ port.ImageCodec = (*Codec)(nil)
	_ port.Resizer    = (*Resizer)(nil)
)
