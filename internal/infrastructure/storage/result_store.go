package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Directory names under the save root.
const (
	ResultsDirName   = "test_results"
	ReferenceDirName = "reference_test_results"
	outputExt        = ".png"
)

// ErrReferenceMissing is returned when a stem has no reference image.
var ErrReferenceMissing = errors.New("reference image not found")

// ErrResultMissing is returned when a stem has no written output.
var ErrResultMissing = errors.New("result image not found")

// FileResultStore keeps outputs in <root>/test_results and reads references
// from <root>/reference_test_results.
type FileResultStore struct {
	codec     port.ImageCodec
	resultDir string
	refDir    string
}

// NewFileResultStore creates a store rooted at saveDir.
func NewFileResultStore(saveDir string, codec port.ImageCodec) *FileResultStore {
	return &FileResultStore{
		codec:     codec,
		resultDir: filepath.Join(saveDir, ResultsDirName),
		refDir:    filepath.Join(saveDir, ReferenceDirName),
	}
}

// ResultDir returns <root>/test_results.
func (s *FileResultStore) ResultDir() string {
	return s.resultDir
}

// ResultPath returns the output path for stem.
func (s *FileResultStore) ResultPath(stem string) string {
	return filepath.Join(s.resultDir, stem+outputExt)
}

// ReferencePath returns the reference path for stem.
func (s *FileResultStore) ReferencePath(stem string) string {
	return filepath.Join(s.refDir, stem+outputExt)
}

// SaveResult writes img as <root>/test_results/<stem>.png, creating the directory if needed.
func (s *FileResultStore) SaveResult(stem string, img *entity.Image) (string, error) {
	if err := os.MkdirAll(s.resultDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := s.ResultPath(stem)
	if err := s.codec.Write(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// LoadResult reads <root>/test_results/<stem>.png.
func (s *FileResultStore) LoadResult(stem string) (*entity.Image, error) {
	return s.load(s.ResultPath(stem), ErrResultMissing)
}

// LoadReference reads <root>/reference_test_results/<stem>.png.
func (s *FileResultStore) LoadReference(stem string) (*entity.Image, error) {
	return s.load(s.ReferencePath(stem), ErrReferenceMissing)
}

func (s *FileResultStore) load(path string, missing error) (*entity.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, missing)
		}
		return nil, err
	}
	return s.codec.Read(path)
}

// Compile-time interface check.
var _ port.ResultStore = (*FileResultStore)(nil)
