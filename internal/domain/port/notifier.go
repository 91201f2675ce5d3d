package port

import (
	"context"

	"segmap/internal/domain/entity"
)

// ReportNotifier delivers a validation summary to an operator channel.
type ReportNotifier interface {
	Notify(ctx context.Context, report *entity.ValidationReport) error
}
