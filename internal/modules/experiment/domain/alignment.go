package domain

import (
	"fmt"
	"math"
	"strings"
)

// Rating is the user's subjective verdict on the experiment.
type Rating string

const (
	RatingMoreStable     Rating = "more_stable"
	RatingSlightlyBetter Rating = "slightly_better"
	RatingNoChange       Rating = "no_change"
	RatingHardToMaintain Rating = "hard_to_maintain"
	RatingWorse          Rating = "worse"
)

func ParseRating(raw string) (Rating, error) {
	r := Rating(strings.TrimSpace(raw))
	switch r {
	case "", RatingMoreStable, RatingSlightlyBetter, RatingNoChange, RatingHardToMaintain, RatingWorse:
		return r, nil
	}
	return "", fmt.Errorf("unknown rating %q", raw)
}

// Polarity is +1, -1 or 0 (neutral or absent).
func (r Rating) Polarity() int {
	switch r {
	case RatingMoreStable, RatingSlightlyBetter:
		return 1
	case RatingWorse:
		return -1
	}
	return 0
}

type Alignment string

const (
	AlignmentAligned  Alignment = "aligned"
	AlignmentMismatch Alignment = "mismatch"
	AlignmentUnclear  Alignment = "unclear"
)

// Align compares the signs of the objective and subjective readings.
func Align(objective, subjective int) Alignment {
	if objective == 0 || subjective == 0 {
		return AlignmentUnclear
	}
	if objective == subjective {
		return AlignmentAligned
	}
	return AlignmentMismatch
}

// ObjectivePolarity reads the target metric. A mean move of at least
// AlignDelta in either direction decides; only below that does the change in
// variability get a say.
func ObjectivePolarity(target MetricStats, th Thresholds) int {
	if goodward, ok := target.GoodwardDelta(); ok {
		switch {
		case goodward >= th.AlignDelta:
			return 1
		case goodward <= -th.AlignDelta:
			return -1
		}
	}
	if target.VolDeltaPct != nil {
		switch {
		case *target.VolDeltaPct <= -th.VariabilityPct:
			return 1
		case *target.VolDeltaPct >= th.VariabilityPct:
			return -1
		}
	}
	return 0
}

type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// Legacy maps to the older low/moderate/strong scale.
func (l ConfidenceLabel) Legacy() string {
	switch l {
	case ConfidenceHigh:
		return "strong"
	case ConfidenceMedium:
		return "moderate"
	}
	return "low"
}

func LabelFor(score float64) ConfidenceLabel {
	switch {
	case score >= 0.75:
		return ConfidenceHigh
	case score >= 0.55:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// ConfidenceScore is driven by sample sufficiency first, then effect size.
func ConfidenceScore(target MetricStats, th Thresholds) float64 {
	if target.NBaseline < th.MinPoints || target.NTreatment < th.MinPoints || target.Delta == nil {
		return 0.25
	}
	magnitude := math.Abs(*target.Delta)
	switch {
	case magnitude >= 0.6:
		return 0.8
	case magnitude >= 0.3:
		return 0.65
	}
	return 0.5
}

type Verdict struct {
	Alignment       Alignment
	ConfidenceScore float64
	ConfidenceLabel ConfidenceLabel
}

func Evaluate(target MetricStats, rating Rating, th Thresholds) Verdict {
	score := ConfidenceScore(target, th)
	return Verdict{
		Alignment:       Align(ObjectivePolarity(target, th), rating.Polarity()),
		ConfidenceScore: score,
		ConfidenceLabel: LabelFor(score),
	}
}

type Pill struct {
	Tone string
	Text string
}

func SummaryPill(alignment Alignment, label ConfidenceLabel) Pill {
	tone := "neutral"
	switch alignment {
	case AlignmentAligned:
		tone = "good"
	case AlignmentMismatch:
		tone = "bad"
	}
	name := string(alignment)
	if name == "" {
		name = string(AlignmentUnclear)
	}
	return Pill{Tone: tone, Text: fmt.Sprintf("%s • %s confidence", strings.ToUpper(name[:1])+name[1:], label)}
}
