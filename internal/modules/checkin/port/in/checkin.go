package in

import (
	"context"

	"leverlab/internal/modules/checkin/dto"
)

type Usecase interface {
	Log(ctx context.Context, input dto.LogInput) (dto.RowOutput, error)
	Range(ctx context.Context, input dto.RangeInput) ([]dto.RowOutput, error)
	Correlations(ctx context.Context, input dto.CorrelationInput) (dto.CorrelationOutput, error)
}
