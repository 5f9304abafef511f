package out

import (
	"context"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/experiment/domain"
	"leverlab/internal/platform/day"
)

// ExperimentStore persists experiments. Get returns apperrors.ErrNotFound
// when id does not exist for userID; FindActive returns
// apperrors.ErrNoActiveExperiment when the user has no open experiment.
type ExperimentStore interface {
	Insert(ctx context.Context, experiment domain.Experiment) error
	Get(ctx context.Context, userID, id string) (domain.Experiment, error)
	FindActive(ctx context.Context, userID string) (domain.Experiment, error)
	// Swap writes next only if the stored row still has prev's version,
	// status and end date, and bumps the version. It reports whether the
	// row was updated.
	Swap(ctx context.Context, prev, next domain.Experiment) (bool, error)
	List(ctx context.Context, userID string, statuses []domain.Status, limit, offset int) ([]domain.Experiment, error)
	ListStartedSince(ctx context.Context, userID string, since day.Date) ([]domain.Experiment, error)
}

// ReviewStore keeps one review per experiment.
type ReviewStore interface {
	// InsertOnce stores review unless one exists for the experiment and
	// returns whichever row is persisted afterwards.
	InsertOnce(ctx context.Context, review domain.Review) (domain.Review, error)
	Get(ctx context.Context, userID, experimentID string) (domain.Review, error)
}

type EventLog interface {
	Append(ctx context.Context, event domain.Event) error
}

type MetricReader interface {
	FetchRange(ctx context.Context, userID string, from, to day.Date) ([]checkindomain.DailyMetricRow, error)
}

// Phraser turns outcome facts into one sentence. Callers bound it in time
// and tolerate any failure.
type Phraser interface {
	Phrase(ctx context.Context, facts domain.Facts) (string, error)
}

// ReviewNoteWriter renders a finalized review as a markdown note and returns
// its path.
type ReviewNoteWriter interface {
	WriteReview(ctx context.Context, experiment domain.Experiment, review domain.Review) (string, error)
}
