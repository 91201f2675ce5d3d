package app

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"segmap/internal/domain/entity"
	"segmap/internal/infrastructure/vision"
)

func TestAlignedSize_StrideMultiples(t *testing.T) {
	const stride = 32
	for _, s := range []int{1, 31, 32, 64, 100, 512, 1024} {
		for _, h := range []int{1, 7, 100, 333, 480, 1080} {
			for _, w := range []int{1, 13, 150, 640, 1920} {
				nh, nw, err := AlignedSize(h, w, s, stride)
				require.NoError(t, err)
				require.Zero(t, nh%stride, "h=%d w=%d s=%d", h, w, s)
				require.Zero(t, nw%stride, "h=%d w=%d s=%d", h, w, s)

				floor := int(math.Ceil(float64(s)/stride)) * stride
				require.GreaterOrEqual(t, min(nh, nw), floor, "h=%d w=%d s=%d", h, w, s)
			}
		}
	}
}

func TestAlignedSize_Example(t *testing.T) {
	nh, nw, err := AlignedSize(100, 150, 64, DefaultStride)
	require.NoError(t, err)
	require.Equal(t, 64, nh)
	require.Equal(t, 96, nw)

	nh, nw, err = AlignedSize(1080, 1920, 512, DefaultStride)
	require.NoError(t, err)
	require.Equal(t, 512, nh)
	require.Equal(t, 928, nw) // 910.2 -> 910 -> 928
}

func TestAlignedSize_Invalid(t *testing.T) {
	_, _, err := AlignedSize(0, 10, 64, 32)
	var shapeErr *entity.ShapeError
	require.True(t, errors.As(err, &shapeErr))

	_, _, err = AlignedSize(10, 10, 0, 32)
	require.Error(t, err)
}

func TestPreprocess_Shape(t *testing.T) {
	pre := NewPreprocessor(64, vision.NewResizer())

	input, err := pre.Preprocess(stripes(t, 100, 150, 3))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 64, 96}, []int(input.Shape()))
}

func TestPreprocess_Deterministic(t *testing.T) {
	pre := NewPreprocessor(64, vision.NewResizer())
	img := stripes(t, 50, 70, 9)

	a, err := pre.Preprocess(img)
	require.NoError(t, err)
	b, err := pre.Preprocess(img)
	require.NoError(t, err)
	require.Equal(t, a.Data(), b.Data())
}

func TestPreprocess_ShapeError(t *testing.T) {
	pre := NewPreprocessor(64, identityResizer{})
	gray := &entity.Image{Channels: 1, Height: 4, Width: 4, Pix: make([]uint8, 16)}

	_, err := pre.Preprocess(gray)
	var shapeErr *entity.ShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
}

func TestNormalize_Invert(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img, err := entity.NewImage(3, 8, 12)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	out, err := NewPreprocessor(8, identityResizer{}).Normalize(img)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 8, 12}, []int(out.Shape()))

	data := out.Data().([]float32)
	plane := img.Height * img.Width
	for c := 0; c < 3; c++ {
		for i := 0; i < plane; i++ {
			restored := float64(data[c*plane+i]*normStd[c] + normMean[c])
			require.InDelta(t, float64(img.Pix[c*plane+i])/255, restored, 1e-5)
		}
	}
}
