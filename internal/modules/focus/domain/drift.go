package domain

import (
	"math"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/platform/day"
)

const (
	DriftDays   = 7
	driftWindow = 2 * DriftDays
)

// DriftKeys are the metrics watched for week-over-week drift, in tie-break
// order.
var DriftKeys = []checkindomain.MetricKey{
	checkindomain.SleepHours,
	checkindomain.Mood,
	checkindomain.Energy,
	checkindomain.Stress,
}

type Drift struct {
	Start   day.Date                            `json:"start"`
	End     day.Date                            `json:"end"`
	Deltas  map[checkindomain.MetricKey]float64 `json:"deltas"`
	Primary checkindomain.MetricKey             `json:"primary,omitempty"`
}

// DriftRange is the [date-13, date] window drift reads.
func DriftRange(date day.Date) (day.Date, day.Date) {
	return date.AddDays(-(driftWindow - 1)), date
}

// ComputeDrift compares the last seven days ending at date with the seven
// before. A metric without values on either side has no delta.
func ComputeDrift(rows []checkindomain.DailyMetricRow, date day.Date) Drift {
	start, end := DriftRange(date)
	lastStart := date.AddDays(-(DriftDays - 1))

	d := Drift{Start: start, End: end, Deltas: map[checkindomain.MetricKey]float64{}}
	for _, key := range DriftKeys {
		var last, prev []float64
		for _, r := range rows {
			if r.Date.Before(start) || r.Date.After(end) {
				continue
			}
			v, ok := r.Value(key)
			if !ok {
				continue
			}
			if r.Date.Before(lastStart) {
				prev = append(prev, v)
			} else {
				last = append(last, v)
			}
		}
		if len(last) == 0 || len(prev) == 0 {
			continue
		}
		d.Deltas[key] = round(mean(last)-mean(prev), 3)
	}

	best := -1.0
	for _, key := range DriftKeys {
		v, ok := d.Deltas[key]
		if ok && math.Abs(v) > best {
			best = math.Abs(v)
			d.Primary = key
		}
	}
	return d
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
