package port

import "segmap/internal/domain/entity"

// ResultStore persists output images and reads them back next to their references.
type ResultStore interface {
	// ResultDir is the directory outputs are written to.
	ResultDir() string

	// SaveResult writes the output for stem and returns its path.
	SaveResult(stem string, img *entity.Image) (string, error)

	// LoadResult reads a previously written output.
	LoadResult(stem string) (*entity.Image, error)

	// LoadReference reads the reference output for stem.
	LoadReference(stem string) (*entity.Image, error)
}
