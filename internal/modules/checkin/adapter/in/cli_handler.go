package in

import (
	"context"

	checkindto "leverlab/internal/modules/checkin/dto"
	checkinin "leverlab/internal/modules/checkin/port/in"
)

type CLIHandler struct {
	usecase checkinin.Usecase
}

func NewCLIHandler(usecase checkinin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Log(ctx context.Context, input checkindto.LogInput) (checkindto.RowOutput, error) {
	return h.usecase.Log(ctx, input)
}

func (h CLIHandler) Show(ctx context.Context, userID, from, to string) ([]checkindto.RowOutput, error) {
	return h.usecase.Range(ctx, checkindto.RangeInput{UserID: userID, From: from, To: to})
}

func (h CLIHandler) Correlations(ctx context.Context, userID, asOf string, days int) (checkindto.CorrelationOutput, error) {
	return h.usecase.Correlations(ctx, checkindto.CorrelationInput{UserID: userID, AsOf: asOf, Days: days})
}
