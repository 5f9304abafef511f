package out

import (
	"context"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/focus/domain"
	"leverlab/internal/platform/day"
)

type SignalReader interface {
	Rows(ctx context.Context, userID string, from, to day.Date) ([]checkindomain.DailyMetricRow, error)
	// CorrelationN is the largest pairwise sample size in the trailing
	// correlation window ending at asOf.
	CorrelationN(ctx context.Context, userID string, asOf day.Date) (int, error)
}

type UsageReader interface {
	Usage(ctx context.Context, userID string) (domain.Usage, error)
}

// SnapshotCache holds computed insights for a while. Get reports ok=false
// on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (insight domain.Insight, ok bool, err error)
	Put(ctx context.Context, key string, insight domain.Insight) error
}
