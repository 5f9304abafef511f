package in

import (
	"context"

	"leverlab/internal/modules/experiment/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	End(ctx context.Context, input dto.EndInput) (dto.EndOutput, error)
	Resume(ctx context.Context, input dto.RefInput) (dto.ExperimentOutput, error)
	Review(ctx context.Context, input dto.ReviewInput) (dto.ExperimentOutput, error)
	Finalize(ctx context.Context, input dto.ReviewInput) (dto.FinalizeOutput, error)
	Recompute(ctx context.Context, input dto.RefInput) (dto.ExperimentOutput, error)

	Get(ctx context.Context, input dto.RefInput) (dto.ExperimentOutput, error)
	GetActive(ctx context.Context, userID string) (dto.ExperimentOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.ExperimentOutput, error)
	GetReview(ctx context.Context, input dto.RefInput) (dto.ReviewViewOutput, error)
	Preview(ctx context.Context, input dto.PreviewInput) (dto.PreviewOutput, error)
	LeverStats(ctx context.Context, input dto.LeverStatsInput) (dto.LeverStatsOutput, error)
	LeverSummary(ctx context.Context, input dto.LeverSummaryInput) (dto.LeverSummaryOutput, error)
}
