package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"segmap/internal/domain/entity"
)

// stubSegmenter scores class c at each pixel as c times the red channel of the
// input, so bright pixels pick the last class and dark ones class 0.
type stubSegmenter struct {
	classes    int
	lastShape  []int
	forwardErr error
}

func (s *stubSegmenter) Forward(_ context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	if s.forwardErr != nil {
		return nil, s.forwardErr
	}
	shape := input.Shape()
	s.lastShape = append([]int(nil), shape...)
	h, w := shape[2], shape[3]
	in := input.Data().([]float32)

	out := make([]float32, s.classes*h*w)
	for c := 0; c < s.classes; c++ {
		for i := 0; i < h*w; i++ {
			out[c*h*w+i] = float32(c) * in[i]
		}
	}
	return tensor.New(tensor.WithShape(1, s.classes, h, w), tensor.WithBacking(out)), nil
}

func (s *stubSegmenter) NumClasses() int { return s.classes }
func (s *stubSegmenter) Close() error    { return nil }

// identityResizer returns a nearest-neighbour copy; enough to exercise shapes.
type identityResizer struct{}

func (identityResizer) Resize(img *entity.Image, height, width int) (*entity.Image, error) {
	out, err := entity.NewImage(img.Channels, height, width)
	if err != nil {
		return nil, err
	}
	for c := 0; c < img.Channels; c++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(c, y, x, img.At(c, y*img.Height/height, x*img.Width/width))
			}
		}
	}
	return out, nil
}

var testPalette = entity.PaletteFromTriples([][3]uint8{
	{0, 0, 0},
	{128, 64, 128},
	{250, 170, 30},
})

// stripes builds an image whose left half is dark and right half bright.
func stripes(t *testing.T, h, w int, seed uint8) *entity.Image {
	t.Helper()
	img, err := entity.NewImage(entity.RGBChannels, h, w)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(10)
			if x >= w/2 {
				v = 240
			}
			img.Set(0, y, x, v)
			img.Set(1, y, x, uint8(x)+seed)
			img.Set(2, y, x, uint8(y)^seed)
		}
	}
	return img
}

func logitsTensor(k, h, w int, data []float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(1, k, h, w), tensor.WithBacking(data))
}
