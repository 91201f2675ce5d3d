package app

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// DefaultStride is the downsampling factor of the supported models.
const DefaultStride = 32

// ImageNet statistics the models were trained with. Not configurable.
var (
	normMean = [entity.RGBChannels]float32{0.485, 0.456, 0.406}
	normStd  = [entity.RGBChannels]float32{0.229, 0.224, 0.225}
)

// Preprocessor turns a raw image into the normalized batch tensor the model expects.
type Preprocessor struct {
	shortSide int
	stride    int
	resizer   port.Resizer
}

// NewPreprocessor scales the short image side to shortSide before stride alignment.
func NewPreprocessor(shortSide int, resizer port.Resizer) *Preprocessor {
	return &Preprocessor{
		shortSide: shortSide,
		stride:    DefaultStride,
		resizer:   resizer,
	}
}

// AlignedSize scales (height, width) so the short side becomes shortSide and
// rounds both results up to the next multiple of stride.
func AlignedSize(height, width, shortSide, stride int) (int, int, error) {
	if height <= 0 || width <= 0 {
		return 0, 0, &entity.ShapeError{Op: "resize", Got: []int{height, width}, Want: "positive dimensions"}
	}
	if shortSide <= 0 || stride <= 0 {
		return 0, 0, fmt.Errorf("resize: short side %d and stride %d must be positive", shortSide, stride)
	}

	scale := float64(shortSide) / float64(min(height, width))
	nh := int(math.RoundToEven(float64(height) * scale))
	nw := int(math.RoundToEven(float64(width) * scale))

	return ceilMultiple(nh, stride), ceilMultiple(nw, stride), nil
}

func ceilMultiple(n, m int) int {
	return (n + m - 1) / m * m
}

// Resize scales img to its stride-aligned size with bilinear interpolation.
func (p *Preprocessor) Resize(img *entity.Image) (*entity.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	nh, nw, err := AlignedSize(img.Height, img.Width, p.shortSide, p.stride)
	if err != nil {
		return nil, err
	}
	return p.resizer.Resize(img, nh, nw)
}

// Normalize maps pixels to [0,1], standardizes each channel and adds the batch
// dimension, giving a (1,3,H,W) float32 tensor. Device placement happens in
// the model backend.
func (p *Preprocessor) Normalize(img *entity.Image) (*tensor.Dense, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	plane := img.Height * img.Width
	data := make([]float32, len(img.Pix))
	for c := 0; c < entity.RGBChannels; c++ {
		mean, std := normMean[c], normStd[c]
		off := c * plane
		for i, v := range img.Pix[off : off+plane] {
			data[off+i] = (float32(v)/255 - mean) / std
		}
	}

	return tensor.New(
		tensor.WithShape(1, entity.RGBChannels, img.Height, img.Width),
		tensor.WithBacking(data),
	), nil
}

// Preprocess runs Resize then Normalize.
func (p *Preprocessor) Preprocess(img *entity.Image) (*tensor.Dense, error) {
	resized, err := p.Resize(img)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	return p.Normalize(resized)
}
