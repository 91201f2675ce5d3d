package port

import "segmap/internal/domain/entity"

// ImageCodec reads and writes images as 3-channel CHW pixel grids.
type ImageCodec interface {
	// Read decodes the file at path into RGB channel order.
	Read(path string) (*entity.Image, error)

	// Write encodes img losslessly (PNG) to path.
	Write(path string, img *entity.Image) error
}

// Resizer scales an image with bilinear interpolation.
type Resizer interface {
	Resize(img *entity.Image, height, width int) (*entity.Image, error)
}
