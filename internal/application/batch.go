package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// DefaultGlob matches every file with an extension, as the directory mode expects.
const DefaultGlob = "*.*"

// BatchOptions controls input discovery and the failure policy.
type BatchOptions struct {
	Glob string
	// ContinueOnError records a failed file and moves on instead of aborting the batch.
	ContinueOnError bool
}

// BatchRunner processes one file or every matching file of a directory, in order.
type BatchRunner struct {
	predictor *Predictor
	codec     port.ImageCodec
	store     port.ResultStore
	opts      BatchOptions
	logger    *zap.Logger
}

// NewBatchRunner creates a runner. An empty Glob falls back to DefaultGlob.
func NewBatchRunner(predictor *Predictor, codec port.ImageCodec, store port.ResultStore, opts BatchOptions, logger *zap.Logger) *BatchRunner {
	if opts.Glob == "" {
		opts.Glob = DefaultGlob
	}
	return &BatchRunner{
		predictor: predictor,
		codec:     codec,
		store:     store,
		opts:      opts,
		logger:    logger,
	}
}

// Discover lists the inputs behind path: the file itself, or the regular
// files of a directory matching the glob in lexical order.
func (r *BatchRunner) Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, r.opts.Glob))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", r.opts.Glob, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		if fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

// Run processes every input under path. Unless ContinueOnError is set, the
// first failing file stops the batch and its error is returned together with
// the partial report.
func (r *BatchRunner) Run(ctx context.Context, path string) (*entity.BatchReport, error) {
	files, err := r.Discover(path)
	if err != nil {
		return nil, err
	}

	report := &entity.BatchReport{SaveDir: r.store.ResultDir()}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r.logger.Info("inferencing", zap.String("file", file))
		result := r.processFile(ctx, file)
		report.Files = append(report.Files, result)

		if result.Err != nil {
			if !r.opts.ContinueOnError {
				return report, fmt.Errorf("%s: %w", file, result.Err)
			}
			r.logger.Warn("file failed",
				zap.String("file", file),
				zap.String("stage", string(result.Stage)),
				zap.Error(result.Err),
			)
		}
	}

	r.logger.Info("results saved",
		zap.String("dir", report.SaveDir),
		zap.Int("files", len(report.Files)),
		zap.Int("failed", len(report.Failed())),
	)
	return report, nil
}

func (r *BatchRunner) processFile(ctx context.Context, file string) *entity.FileResult {
	start := time.Now()
	result := entity.NewFileResult(file)
	defer func() { result.Duration = time.Since(start) }()

	raw, err := r.codec.Read(file)
	if err != nil {
		result.Err = fmt.Errorf("read: %w", err)
		return result
	}
	result.SetStage(entity.StageLoaded)

	out, err := r.predictor.Predict(ctx, raw, result)
	if err != nil {
		result.Err = err
		return result
	}

	saved, err := r.store.SaveResult(result.Stem(), out)
	if err != nil {
		result.Err = fmt.Errorf("save: %w", err)
		return result
	}
	result.Output = saved
	result.SetStage(entity.StageSaved)

	return result
}
