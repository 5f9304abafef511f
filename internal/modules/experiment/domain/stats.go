package domain

import (
	"math"

	checkindomain "leverlab/internal/modules/checkin/domain"
)

// Thresholds are the review constants. MinSignal and AlignDelta are two
// separate gates on purpose and must not be unified.
type Thresholds struct {
	MinSignal         float64
	AlignDelta        float64
	VariabilityPct    float64
	MinPoints         int
	MinBaselineRows   int
	MinExperimentRows int
	NotesCap          int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSignal:         0.2,
		AlignDelta:        0.3,
		VariabilityPct:    5,
		MinPoints:         4,
		MinBaselineRows:   10,
		MinExperimentRows: 4,
		NotesCap:          10,
	}
}

const pctEpsilon = 1e-9

// MetricStats compares one metric across the baseline and treatment rows.
// Nil pointers mean "no data", never zero.
type MetricStats struct {
	Key           checkindomain.MetricKey `json:"key"`
	DirectionGood checkindomain.Direction `json:"direction_good"`
	MeanBaseline  *float64                `json:"mean_baseline"`
	MeanTreatment *float64                `json:"mean_treatment"`
	Delta         *float64                `json:"delta"`
	DeltaPct      *float64                `json:"delta_pct"`
	NBaseline     int                     `json:"n_baseline"`
	NTreatment    int                     `json:"n_treatment"`
	StdBaseline   *float64                `json:"std_baseline"`
	StdTreatment  *float64                `json:"std_treatment"`
	VolDeltaPct   *float64                `json:"vol_delta_pct"`
	Signal        bool                    `json:"signal"`
}

// Improvement reports whether the delta moved in the good direction. It is
// nil without a delta.
func (m MetricStats) Improvement() *bool {
	if m.Delta == nil {
		return nil
	}
	improved := *m.Delta > 0
	if m.DirectionGood == checkindomain.Down {
		improved = *m.Delta < 0
	}
	return &improved
}

// GoodwardDelta is the delta signed so that positive always means better.
func (m MetricStats) GoodwardDelta() (float64, bool) {
	if m.Delta == nil {
		return 0, false
	}
	if m.DirectionGood == checkindomain.Down {
		return -*m.Delta, true
	}
	return *m.Delta, true
}

// Mean averages the finite values; nil when there are none.
func Mean(values []float64) *float64 {
	finite := finiteOnly(values)
	if len(finite) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range finite {
		sum += v
	}
	m := sum / float64(len(finite))
	return &m
}

// StdDev is the sample standard deviation (n-1); nil below two values.
func StdDev(values []float64) *float64 {
	finite := finiteOnly(values)
	if len(finite) < 2 {
		return nil
	}
	m := *Mean(finite)
	acc := 0.0
	for _, v := range finite {
		acc += (v - m) * (v - m)
	}
	sd := math.Sqrt(acc / float64(len(finite)-1))
	return &sd
}

// Delta is treatment minus baseline; nil when either side is nil.
func Delta(baseline, treatment *float64) *float64 {
	if baseline == nil || treatment == nil {
		return nil
	}
	d := *treatment - *baseline
	return &d
}

func percentOf(delta, base *float64) *float64 {
	if delta == nil || base == nil {
		return nil
	}
	p := *delta / math.Max(math.Abs(*base), pctEpsilon) * 100
	return &p
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func columnOf(rows []checkindomain.DailyMetricRow, key checkindomain.MetricKey) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Value(key); ok {
			values = append(values, v)
		}
	}
	return values
}

// ComputeMetricStats runs the comparison for one metric. Signal is judged on
// raw values.
func ComputeMetricStats(key checkindomain.MetricKey, baseline, treatment []checkindomain.DailyMetricRow, th Thresholds) MetricStats {
	before := columnOf(baseline, key)
	during := columnOf(treatment, key)

	stats := MetricStats{
		Key:           key,
		DirectionGood: key.Good(),
		MeanBaseline:  Mean(before),
		MeanTreatment: Mean(during),
		NBaseline:     len(before),
		NTreatment:    len(during),
		StdBaseline:   StdDev(before),
		StdTreatment:  StdDev(during),
	}
	stats.Delta = Delta(stats.MeanBaseline, stats.MeanTreatment)
	stats.DeltaPct = percentOf(stats.Delta, stats.MeanBaseline)
	stats.VolDeltaPct = percentOf(Delta(stats.StdBaseline, stats.StdTreatment), stats.StdBaseline)
	stats.Signal = stats.Delta != nil &&
		stats.NBaseline >= th.MinPoints &&
		stats.NTreatment >= th.MinPoints &&
		math.Abs(*stats.Delta) >= th.MinSignal
	return stats
}

// ComputeAllStats covers every tracked metric, which always includes the
// target.
func ComputeAllStats(baseline, treatment []checkindomain.DailyMetricRow, th Thresholds) []MetricStats {
	keys := checkindomain.AllMetrics()
	out := make([]MetricStats, 0, len(keys))
	for _, key := range keys {
		out = append(out, ComputeMetricStats(key, baseline, treatment, th))
	}
	return out
}

type Sample struct {
	BaselineRows  int `json:"baseline_rows"`
	TreatmentRows int `json:"treatment_rows"`
	BaselineDays  int `json:"baseline_days"`
}

const ReasonInsufficientData = "insufficient_data"

// Sufficiency is the typed verdict on whether a window pair carries enough
// rows to review. It is a result, not an error.
type Sufficiency struct {
	OK                 bool   `json:"ok"`
	Reason             string `json:"reason,omitempty"`
	BaselineShortfall  int    `json:"baseline_shortfall,omitempty"`
	TreatmentShortfall int    `json:"treatment_shortfall,omitempty"`
	MinBaselineRows    int    `json:"min_baseline_rows"`
	MinTreatmentRows   int    `json:"min_treatment_rows"`
}

func EvaluateSufficiency(sample Sample, th Thresholds) Sufficiency {
	s := Sufficiency{OK: true, MinBaselineRows: th.MinBaselineRows, MinTreatmentRows: th.MinExperimentRows}
	if sample.BaselineRows < th.MinBaselineRows {
		s.BaselineShortfall = th.MinBaselineRows - sample.BaselineRows
	}
	if sample.TreatmentRows < th.MinExperimentRows {
		s.TreatmentShortfall = th.MinExperimentRows - sample.TreatmentRows
	}
	if s.BaselineShortfall > 0 || s.TreatmentShortfall > 0 {
		s.OK = false
		s.Reason = ReasonInsufficientData
	}
	return s
}

// Round1 rounds for display only.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
