package usecase

import (
	"context"
	"fmt"

	"leverlab/internal/modules/checkin/domain"
	checkindto "leverlab/internal/modules/checkin/dto"
	checkinin "leverlab/internal/modules/checkin/port/in"
	"leverlab/internal/modules/checkin/service"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
)

type Interactor struct {
	svc *service.CheckinService
}

func NewInteractor(svc *service.CheckinService) checkinin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Log(ctx context.Context, input checkindto.LogInput) (checkindto.RowOutput, error) {
	if err := input.Validate(); err != nil {
		return checkindto.RowOutput{}, err
	}
	date, err := optionalDate(input.Date)
	if err != nil {
		return checkindto.RowOutput{}, err
	}
	values := map[domain.MetricKey]float64{}
	for key, ptr := range map[domain.MetricKey]*float64{
		domain.Energy:         input.Energy,
		domain.Stress:         input.Stress,
		domain.Mood:           input.Mood,
		domain.SleepHours:     input.SleepHours,
		domain.Steps:          input.Steps,
		domain.WaterLiters:    input.WaterLiters,
		domain.OutdoorMinutes: input.OutdoorMinutes,
	} {
		if ptr != nil {
			values[key] = *ptr
		}
	}
	row, err := i.svc.Log(ctx, input.UserID, date, values)
	if err != nil {
		return checkindto.RowOutput{}, err
	}
	return toOutput(row), nil
}

func (i *Interactor) Range(ctx context.Context, input checkindto.RangeInput) ([]checkindto.RowOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	from, err := day.Parse(input.From)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	to, err := day.Parse(input.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	rows, err := i.svc.Range(ctx, input.UserID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]checkindto.RowOutput, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOutput(row))
	}
	return out, nil
}

func (i *Interactor) Correlations(ctx context.Context, input checkindto.CorrelationInput) (checkindto.CorrelationOutput, error) {
	if err := input.Validate(); err != nil {
		return checkindto.CorrelationOutput{}, err
	}
	asOf, err := optionalDate(input.AsOf)
	if err != nil {
		return checkindto.CorrelationOutput{}, err
	}
	from, to, corrs, err := i.svc.Correlations(ctx, input.UserID, asOf, input.Days)
	if err != nil {
		return checkindto.CorrelationOutput{}, err
	}
	out := checkindto.CorrelationOutput{From: from.String(), To: to.String(), MaxN: domain.MaxN(corrs)}
	for _, c := range corrs {
		out.Pairs = append(out.Pairs, checkindto.CorrelationPair{X: string(c.X), Y: string(c.Y), N: c.N, R: c.R})
	}
	return out, nil
}

func optionalDate(raw string) (day.Date, error) {
	if raw == "" {
		return day.Date{}, nil
	}
	d, err := day.Parse(raw)
	if err != nil {
		return day.Date{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return d, nil
}

func toOutput(row domain.DailyMetricRow) checkindto.RowOutput {
	values := make(map[string]float64, len(row.Values))
	for k, v := range row.Values {
		values[string(k)] = v
	}
	return checkindto.RowOutput{Date: row.Date.String(), Values: values}
}
