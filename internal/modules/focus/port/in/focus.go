package in

import (
	"context"

	"leverlab/internal/modules/focus/dto"
)

type Usecase interface {
	Next(ctx context.Context, input dto.NextInput) (dto.NextOutput, error)
	Catalog(ctx context.Context) ([]dto.PresetOutput, error)
}
