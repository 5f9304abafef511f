package in

import (
	"context"

	focusdto "leverlab/internal/modules/focus/dto"
	focusin "leverlab/internal/modules/focus/port/in"
)

type CLIHandler struct {
	usecase focusin.Usecase
}

func NewCLIHandler(usecase focusin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Next(ctx context.Context, userID, date string, refresh bool) (focusdto.NextOutput, error) {
	return h.usecase.Next(ctx, focusdto.NextInput{UserID: userID, Date: date, Refresh: refresh})
}

func (h CLIHandler) Catalog(ctx context.Context) ([]focusdto.PresetOutput, error) {
	return h.usecase.Catalog(ctx)
}
