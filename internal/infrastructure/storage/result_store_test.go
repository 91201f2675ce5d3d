package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"segmap/internal/domain/entity"
	"segmap/internal/infrastructure/vision"
)

func TestFileResultStore_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	store := NewFileResultStore(root, vision.NewCodec())

	img, err := entity.NewImage(3, 4, 4)
	require.NoError(t, err)
	img.Set(1, 2, 3, 77)

	path, err := store.SaveResult("street", img)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "test_results", "street.png"), path)
	require.Equal(t, filepath.Join(root, "test_results"), store.ResultDir())

	back, err := store.LoadResult("street")
	require.NoError(t, err)
	require.Equal(t, img.Pix, back.Pix)
}

func TestFileResultStore_MissingFiles(t *testing.T) {
	store := NewFileResultStore(t.TempDir(), vision.NewCodec())

	_, err := store.LoadReference("street")
	require.ErrorIs(t, err, ErrReferenceMissing)

	_, err = store.LoadResult("street")
	require.ErrorIs(t, err, ErrResultMissing)
}

func TestFileResultStore_Paths(t *testing.T) {
	store := NewFileResultStore("/srv/out", vision.NewCodec())
	require.Equal(t, filepath.Join("/srv/out", "reference_test_results", "a.png"), store.ReferencePath("a"))
	require.Equal(t, filepath.Join("/srv/out", "test_results", "a.png"), store.ResultPath("a"))
}
