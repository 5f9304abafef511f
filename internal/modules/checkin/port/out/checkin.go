package out

import (
	"context"

	"leverlab/internal/modules/checkin/domain"
	"leverlab/internal/platform/day"
)

// MetricStore persists one row per (user, date). Get returns
// apperrors.ErrNotFound for a date without a row.
type MetricStore interface {
	Get(ctx context.Context, userID string, date day.Date) (domain.DailyMetricRow, error)
	Upsert(ctx context.Context, row domain.DailyMetricRow) error
	Range(ctx context.Context, userID string, from, to day.Date) ([]domain.DailyMetricRow, error)
}
