package out

import (
	"context"
	"fmt"

	checkindomain "leverlab/internal/modules/checkin/domain"
	checkindto "leverlab/internal/modules/checkin/dto"
	checkinin "leverlab/internal/modules/checkin/port/in"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/day"
)

// CheckinMetricReader reads daily rows through the check-in usecase.
type CheckinMetricReader struct {
	checkins checkinin.Usecase
}

func NewCheckinMetricReader(checkins checkinin.Usecase) *CheckinMetricReader {
	return &CheckinMetricReader{checkins: checkins}
}

var _ experimentout.MetricReader = (*CheckinMetricReader)(nil)

func (r *CheckinMetricReader) FetchRange(ctx context.Context, userID string, from, to day.Date) ([]checkindomain.DailyMetricRow, error) {
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
			key, err := checkindomain.ParseMetricKey(raw)
			if err != nil {
				continue
			}
			row.Values[key] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
