package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"go.uber.org/zap"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Validator compares written outputs with the reference set by exact content hash.
// There is no pixel tolerance: any differing byte is a mismatch.
type Validator struct {
	store    port.ResultStore
	notifier port.ReportNotifier
	logger   *zap.Logger
}

// NewValidator creates a validator. notifier may be nil.
func NewValidator(store port.ResultStore, notifier port.ReportNotifier, logger *zap.Logger) *Validator {
	return &Validator{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// ContentHash is the hex SHA-256 digest of the decoded pixel buffer.
func ContentHash(img *entity.Image) string {
	sum := sha256.Sum256(img.Pix)
	return hex.EncodeToString(sum[:])
}

// Validate checks every stem against its reference. A missing reference or
// result is an error; a mismatch is only recorded.
func (v *Validator) Validate(ctx context.Context, stems []string) (*entity.ValidationReport, error) {
	report := &entity.ValidationReport{Matches: make([]entity.MatchResult, 0, len(stems))}
	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ref, err := v.store.LoadReference(stem)
		if err != nil {
			return report, fmt.Errorf("reference %s: %w", stem, err)
		}
		res, err := v.store.LoadResult(stem)
		if err != nil {
			return report, fmt.Errorf("result %s: %w", stem, err)
		}

		m := entity.MatchResult{
			Name:          stem + ".png",
			ReferenceHash: ContentHash(ref),
			ResultHash:    ContentHash(res),
		}
		m.Equal = m.ReferenceHash == m.ResultHash
		report.Matches = append(report.Matches, m)

		v.logger.Debug("compared",
			zap.String("image", m.Name),
			zap.Bool("equal", m.Equal),
			zap.String("result_sha256", m.ResultHash),
		)
	}

	if v.notifier != nil {
		if err := v.notifier.Notify(ctx, report); err != nil {
			v.logger.Warn("notify failed", zap.Error(err))
		}
	}
	return report, nil
}

// WriteReport prints the per-file verdicts and "Ok!" when everything matched.
func WriteReport(w io.Writer, report *entity.ValidationReport) error {
	if _, err := fmt.Fprintln(w, "Matching the results:"); err != nil {
		return err
	}
	for _, m := range report.Matches {
		verdict := "equal"
		if !m.Equal {
			verdict = "not equal"
		}
		if _, err := fmt.Fprintf(w, " image %s: results are %s\n", m.Name, verdict); err != nil {
			return err
		}
	}
	if report.AllEqual() {
		_, err := fmt.Fprintln(w, "Ok!")
		return err
	}
	return nil
}
