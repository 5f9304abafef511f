package domain

import (
	"fmt"

	checkindomain "leverlab/internal/modules/checkin/domain"
	experimentdomain "leverlab/internal/modules/experiment/domain"
)

// Preset is a ready-made experiment the ranker can suggest. Starting one
// maps field for field onto an experiment start.
type Preset struct {
	Title           string                     `json:"title"`
	LeverType       experimentdomain.LeverType `json:"lever_type"`
	LeverRef        string                     `json:"lever_ref"`
	TargetMetric    checkindomain.MetricKey    `json:"target_metric"`
	Effort          experimentdomain.Level     `json:"effort"`
	Impact          experimentdomain.Level     `json:"impact"`
	RecommendedDays int                        `json:"recommended_days"`
	BaselineDays    int                        `json:"baseline_days"`
}

func (p Preset) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("preset title is required")
	}
	if !p.TargetMetric.Valid() {
		return fmt.Errorf("preset %q: unknown target metric %q", p.Title, p.TargetMetric)
	}
	ref, err := experimentdomain.NormalizeLeverRef(p.LeverType, p.LeverRef)
	if err != nil {
		return fmt.Errorf("preset %q: %w", p.Title, err)
	}
	if ref == "" {
		return fmt.Errorf("preset %q: lever ref is required", p.Title)
	}
	if effortRank(p.Effort) < 0 || effortRank(p.Impact) < 0 {
		return fmt.Errorf("preset %q: effort and impact must be low, moderate or high", p.Title)
	}
	return nil
}

// WithDefaults fills the plan and levels the way an experiment start would.
func (p Preset) WithDefaults() Preset {
	if p.RecommendedDays == 0 {
		p.RecommendedDays = experimentdomain.DefaultRecommendedDays
	}
	if p.BaselineDays == 0 {
		p.BaselineDays = experimentdomain.DefaultBaselineDays
	}
	if p.Effort == "" {
		p.Effort = experimentdomain.LevelLow
	}
	if p.Impact == "" {
		p.Impact = experimentdomain.LevelModerate
	}
	if ref, err := experimentdomain.NormalizeLeverRef(p.LeverType, p.LeverRef); err == nil {
		p.LeverRef = ref
	}
	return p
}

func DefaultCatalog() []Preset {
	return []Preset{
		{
			Title: "Sleep consistency (same bedtime)", LeverType: experimentdomain.LeverHabit, LeverRef: "sleep_consistency",
			TargetMetric: checkindomain.SleepHours, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Daily decompression (10 min)", LeverType: experimentdomain.LeverHabit, LeverRef: "decompression_10m",
			TargetMetric: checkindomain.Stress, Effort: experimentdomain.LevelModerate, Impact: experimentdomain.LevelHigh,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Outdoor walk (15-20 min)", LeverType: experimentdomain.LeverHabit, LeverRef: "outdoor_walk_20m",
			TargetMetric: checkindomain.OutdoorMinutes, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Earlier wind-down for energy", LeverType: experimentdomain.LeverMetric, LeverRef: "sleep_hours",
			TargetMetric: checkindomain.Energy, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelHigh,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Gentle movement (10-15 min walk)", LeverType: experimentdomain.LeverHabit, LeverRef: "gentle_movement",
			TargetMetric: checkindomain.Mood, Effort: experimentdomain.LevelModerate, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
	}
}

// FallbackPool tops up the selection when the catalog cannot supply two
// distinct levers.
func FallbackPool() []Preset {
	return []Preset{
		{
			Title: "Downshift your nervous system (90 s)", LeverType: experimentdomain.LeverHabit, LeverRef: "stress_downshift",
			TargetMetric: checkindomain.Stress, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Make hydration effortless", LeverType: experimentdomain.LeverMetric, LeverRef: "water_liters",
			TargetMetric: checkindomain.Energy, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
		{
			Title: "Get light and air daily", LeverType: experimentdomain.LeverMetric, LeverRef: "outdoor_minutes",
			TargetMetric: checkindomain.Mood, Effort: experimentdomain.LevelLow, Impact: experimentdomain.LevelModerate,
			RecommendedDays: 7, BaselineDays: 30,
		},
	}
}

func effortRank(l experimentdomain.Level) int {
	switch l {
	case experimentdomain.LevelLow:
		return 0
	case experimentdomain.LevelModerate:
		return 1
	case experimentdomain.LevelHigh:
		return 2
	}
	return -1
}
