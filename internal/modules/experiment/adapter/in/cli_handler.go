package in

import (
	"context"

	experimentdto "leverlab/internal/modules/experiment/dto"
	experimentin "leverlab/internal/modules/experiment/port/in"
)

type CLIHandler struct {
	usecase experimentin.Usecase
}

func NewCLIHandler(usecase experimentin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input experimentdto.StartInput) (experimentdto.StartOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) End(ctx context.Context, userID, id, endDate string) (experimentdto.EndOutput, error) {
	return h.usecase.End(ctx, experimentdto.EndInput{UserID: userID, ID: id, EndDate: endDate})
}

func (h CLIHandler) Resume(ctx context.Context, userID, id string) (experimentdto.ExperimentOutput, error) {
	return h.usecase.Resume(ctx, experimentdto.RefInput{UserID: userID, ID: id})
}

func (h CLIHandler) Review(ctx context.Context, input experimentdto.ReviewInput) (experimentdto.ExperimentOutput, error) {
	return h.usecase.Review(ctx, input)
}

func (h CLIHandler) Finalize(ctx context.Context, input experimentdto.ReviewInput) (experimentdto.FinalizeOutput, error) {
	return h.usecase.Finalize(ctx, input)
}

func (h CLIHandler) Recompute(ctx context.Context, userID, id string) (experimentdto.ExperimentOutput, error) {
	return h.usecase.Recompute(ctx, experimentdto.RefInput{UserID: userID, ID: id})
}

func (h CLIHandler) Show(ctx context.Context, userID, id string) (experimentdto.ExperimentOutput, error) {
	return h.usecase.Get(ctx, experimentdto.RefInput{UserID: userID, ID: id})
}

func (h CLIHandler) Active(ctx context.Context, userID string) (experimentdto.ExperimentOutput, error) {
	return h.usecase.GetActive(ctx, userID)
}

func (h CLIHandler) History(ctx context.Context, userID string, limit, offset int, includePending bool) ([]experimentdto.ExperimentOutput, error) {
	return h.usecase.History(ctx, experimentdto.HistoryInput{UserID: userID, Limit: limit, Offset: offset, IncludePending: includePending})
}

func (h CLIHandler) ReviewView(ctx context.Context, userID, id string) (experimentdto.ReviewViewOutput, error) {
	return h.usecase.GetReview(ctx, experimentdto.RefInput{UserID: userID, ID: id})
}

func (h CLIHandler) LeverSummary(ctx context.Context, userID, since, metric, groupBy string) (experimentdto.LeverSummaryOutput, error) {
	return h.usecase.LeverSummary(ctx, experimentdto.LeverSummaryInput{UserID: userID, Since: since, MetricKey: metric, GroupBy: groupBy})
}

func (h CLIHandler) Preview(ctx context.Context, userID, id, asOf string) (experimentdto.PreviewOutput, error) {
	return h.usecase.Preview(ctx, experimentdto.PreviewInput{UserID: userID, ID: id, AsOf: asOf})
}
