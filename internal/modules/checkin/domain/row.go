package domain

import (
	"fmt"
	"math"

	"leverlab/internal/platform/day"
)

// DailyMetricRow is one user's self-report for one calendar date. A metric
// missing from Values was not recorded that day.
type DailyMetricRow struct {
	UserID string
	Date   day.Date
	Values map[MetricKey]float64
}

func NewRow(userID string, date day.Date) DailyMetricRow {
	return DailyMetricRow{UserID: userID, Date: date, Values: map[MetricKey]float64{}}
}

// Value returns the recorded value of key; ok is false for nulls and for
// anything that is not a finite number.
func (r DailyMetricRow) Value(key MetricKey) (float64, bool) {
	v, ok := r.Values[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (r DailyMetricRow) Empty() bool {
	return len(r.Values) == 0
}

// Merge overwrites r with every value present in update and keeps the rest.
func (r DailyMetricRow) Merge(update map[MetricKey]float64) DailyMetricRow {
	merged := make(map[MetricKey]float64, len(r.Values)+len(update))
	for k, v := range r.Values {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	r.Values = merged
	return r
}

func (r DailyMetricRow) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	for key, v := range r.Values {
		meta, ok := metricTable[key]
		if !ok {
			return fmt.Errorf("unknown metric %q", key)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", key)
		}
		if v < meta.Min || v > meta.Max {
			return fmt.Errorf("%s must be between %g and %g, got %g", key, meta.Min, meta.Max, v)
		}
	}
	return nil
}
