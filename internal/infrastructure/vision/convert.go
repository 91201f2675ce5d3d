package vision

import (
	"image"

	"github.com/disintegration/imaging"

	"segmap/internal/domain/entity"
)

// FromImage copies any decoded image into a CHW RGB grid. Alpha is dropped.
func FromImage(src image.Image) *entity.Image {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	h, w := b.Dy(), b.Dx()
	plane := h * w

	out := &entity.Image{
		Channels: entity.RGBChannels,
		Height:   h,
		Width:    w,
		Pix:      make([]uint8, entity.RGBChannels*plane),
	}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			out.Pix[i] = row[x*4]
			out.Pix[plane+i] = row[x*4+1]
			out.Pix[2*plane+i] = row[x*4+2]
		}
	}
	return out
}

// ToImage converts a CHW RGB grid into an opaque RGBA image.
func ToImage(img *entity.Image) (*image.RGBA, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	h, w := img.Height, img.Width
	plane := h * w

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			o := y*dst.Stride + x*4
			dst.Pix[o] = img.Pix[i]
			dst.Pix[o+1] = img.Pix[plane+i]
			dst.Pix[o+2] = img.Pix[2*plane+i]
			dst.Pix[o+3] = 0xff
		}
	}
	return dst, nil
}
