package entity

import (
	"path/filepath"
	"strings"
	"time"
)

// Stage is how far a single file got through the pipeline.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageLoaded        Stage = "loaded"
	StagePreprocessed  Stage = "preprocessed"
	StageInferred      Stage = "inferred"
	StagePostprocessed Stage = "postprocessed"
	StageSaved         Stage = "saved"
)

// FileResult records the outcome of one input file.
type FileResult struct {
	Path     string
	Output   string // written image, empty until StageSaved
	Stage    Stage
	Err      error
	Duration time.Duration
}

// NewFileResult starts tracking path in the idle stage.
func NewFileResult(path string) *FileResult {
	return &FileResult{
		Path:  path,
		Stage: StageIdle,
	}
}

// SetStage records the stage the file has reached.
func (r *FileResult) SetStage(stage Stage) {
	r.Stage = stage
}

// Stem is the file name without directory and last extension.
func (r *FileResult) Stem() string {
	return Stem(r.Path)
}

// OK reports whether the file was fully processed.
func (r *FileResult) OK() bool {
	return r.Err == nil && r.Stage == StageSaved
}

// Stem strips the directory and the last extension from path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
