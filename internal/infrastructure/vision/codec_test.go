package vision

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"segmap/internal/domain/entity"
)

func gradient(t *testing.T, h, w int) *entity.Image {
	t.Helper()
	img, err := entity.NewImage(3, h, w)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(0, y, x, uint8(x*7))
			img.Set(1, y, x, uint8(y*11))
			img.Set(2, y, x, uint8(x+y))
		}
	}
	return img
}

func TestToImageFromImage_RoundTrip(t *testing.T) {
	img := gradient(t, 5, 9)

	rgba, err := ToImage(img)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 9, 5), rgba.Bounds())
	require.Equal(t, color.RGBA{R: img.At(0, 2, 3), G: img.At(1, 2, 3), B: img.At(2, 2, 3), A: 255}, rgba.RGBAAt(3, 2))

	back := FromImage(rgba)
	require.Equal(t, img, back)
}

func TestFromImage_Gray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(1, 0, color.Gray{Y: 90})

	img := FromImage(g)
	require.Equal(t, []int{3, 1, 2}, img.Shape())
	for c := 0; c < 3; c++ {
		require.Equal(t, uint8(90), img.At(c, 0, 1))
	}
}

func TestCodec_WriteRead(t *testing.T) {
	codec := NewCodec()
	path := filepath.Join(t.TempDir(), "out.png")
	img := gradient(t, 6, 4)

	require.NoError(t, codec.Write(path, img))

	back, err := codec.Read(path)
	require.NoError(t, err)
	require.Equal(t, img.Pix, back.Pix)
}

func TestCodec_ReadMissing(t *testing.T) {
	_, err := NewCodec().Read(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestResizer_Resize(t *testing.T) {
	img := gradient(t, 10, 15)

	out, err := NewResizer().Resize(img, 64, 96)
	require.NoError(t, err)
	require.Equal(t, []int{3, 64, 96}, out.Shape())

	_, err = NewResizer().Resize(img, 0, 96)
	require.Error(t, err)
}
