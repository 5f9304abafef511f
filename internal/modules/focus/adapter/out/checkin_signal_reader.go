package out

import (
	"context"
	"fmt"

	checkindomain "leverlab/internal/modules/checkin/domain"
	checkindto "leverlab/internal/modules/checkin/dto"
	checkinin "leverlab/internal/modules/checkin/port/in"
	focusout "leverlab/internal/modules/focus/port/out"
	"leverlab/internal/platform/day"
)

// CheckinSignalReader feeds the ranker from the check-in module.
type CheckinSignalReader struct {
	checkins checkinin.Usecase
}

var _ focusout.SignalReader = (*CheckinSignalReader)(nil)

func NewCheckinSignalReader(checkins checkinin.Usecase) *CheckinSignalReader {
	return &CheckinSignalReader{checkins: checkins}
}

func (r *CheckinSignalReader) Rows(ctx context.Context, userID string, from, to day.Date) ([]checkindomain.DailyMetricRow, error) {
	out, err := r.checkins.Range(ctx, checkindto.RangeInput{UserID: userID, From: from.String(), To: to.String()})
	if err != nil {
		return nil, err
	}
	rows := make([]checkindomain.DailyMetricRow, 0, len(out))
	for _, o := range out {
		date, err := day.Parse(o.Date)
		if err != nil {
			return nil, fmt.Errorf("check-in row date: %w", err)
		}
		row := checkindomain.NewRow(userID, date)
		for raw, v := range o.Values {
			if key, err := checkindomain.ParseMetricKey(raw); err == nil {
				row.Values[key] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *CheckinSignalReader) CorrelationN(ctx context.Context, userID string, asOf day.Date) (int, error) {
	out, err := r.checkins.Correlations(ctx, checkindto.CorrelationInput{UserID: userID, AsOf: asOf.String()})
	if err != nil {
		return 0, err
	}
	return out.MaxN, nil
}
