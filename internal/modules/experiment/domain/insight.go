package domain

import (
	"fmt"
	"math"
	"sort"

	checkindomain "leverlab/internal/modules/checkin/domain"
)

// LeverGrouping picks the bucket a lever summary folds experiments into.
type LeverGrouping string

const (
	GroupByLeverType LeverGrouping = "lever_type"
	GroupByLeverRef  LeverGrouping = "lever_ref"
)

func ParseLeverGrouping(raw string) (LeverGrouping, error) {
	switch g := LeverGrouping(raw); g {
	case "":
		return GroupByLeverType, nil
	case GroupByLeverType, GroupByLeverRef:
		return g, nil
	}
	return "", fmt.Errorf("unknown grouping %q", raw)
}

// LeverEffect is the pooled effect of one lever bucket on one metric.
type LeverEffect struct {
	Group         string
	TargetMetric  checkindomain.MetricKey
	MetricKey     checkindomain.MetricKey
	N             int
	AvgDelta      float64
	ImprovedCount int
	// ImprovedRate is the share of improved deltas as a whole percentage.
	ImprovedRate int
	Confidence   ConfidenceLabel
}

// SummarizeEffects pools per-metric deltas of ended experiments computed
// with the current method. An empty metric keeps every metric.
func SummarizeEffects(experiments []Experiment, groupBy LeverGrouping, metric checkindomain.MetricKey) []LeverEffect {
	type bucket struct {
		effect LeverEffect
		sum    float64
	}
	buckets := map[string]*bucket{}
	var order []string
	for _, e := range experiments {
		if !countsTowardsEffects(e) {
			continue
		}
		group := string(e.LeverType)
		if groupBy == GroupByLeverRef {
			group = e.LeverRef
		}
		if group == "" {
			continue
		}
		for _, m := range e.Outcome.Metrics {
			if m.Delta == nil || math.IsNaN(*m.Delta) || math.IsInf(*m.Delta, 0) {
				continue
			}
			if metric != "" && m.Key != metric {
				continue
			}
			key := group + "\x00" + string(e.TargetMetric) + "\x00" + string(m.Key)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{effect: LeverEffect{Group: group, TargetMetric: e.TargetMetric, MetricKey: m.Key}}
				buckets[key] = b
				order = append(order, key)
			}
			b.effect.N++
			b.sum += *m.Delta
			if improved := m.Improvement(); improved != nil && *improved {
				b.effect.ImprovedCount++
			}
		}
	}

	out := make([]LeverEffect, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		eff := b.effect
		eff.AvgDelta = math.Round(b.sum/float64(eff.N)*100) / 100
		eff.ImprovedRate = int(math.Round(float64(eff.ImprovedCount) / float64(eff.N) * 100))
		eff.Confidence = effectConfidence(eff.N)
		out = append(out, eff)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ImprovedRate != b.ImprovedRate {
			return a.ImprovedRate > b.ImprovedRate
		}
		if a.N != b.N {
			return a.N > b.N
		}
		return math.Abs(a.AvgDelta) > math.Abs(b.AvgDelta)
	})
	return out
}

func countsTowardsEffects(e Experiment) bool {
	switch e.Status {
	case StatusCompleted, StatusEndedPendingReview, StatusAbandoned:
	default:
		return false
	}
	return e.Outcome.MethodVersion == MethodVersion && len(e.Outcome.Metrics) > 0
}

// effectConfidence grades a pooled effect by how many experiments back it.
func effectConfidence(n int) ConfidenceLabel {
	switch {
	case n >= 6:
		return ConfidenceHigh
	case n >= 3:
		return ConfidenceMedium
	}
	return ConfidenceLow
}
