package dto

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "leverlab/internal/platform/errors"
)

var validate = validator.New()

type StartInput struct {
	UserID           string `validate:"required"`
	Title            string `validate:"required,max=200"`
	Hypothesis       string `validate:"max=1000"`
	LeverType        string `validate:"required,oneof=metric habit custom"`
	LeverRef         string `validate:"max=200"`
	TargetMetric     string `validate:"required,oneof=energy stress mood sleep_hours steps water_liters outdoor_minutes"`
	StartDate        string `validate:"omitempty,datetime=2006-01-02"`
	BaselineDays     int    `validate:"omitempty,min=7,max=90"`
	RecommendedDays  int    `validate:"omitempty,min=3,max=60"`
	Effort           string `validate:"omitempty,oneof=low moderate high"`
	Impact           string `validate:"omitempty,oneof=low moderate high"`
	StatedConfidence string `validate:"omitempty,oneof=low moderate strong"`
	ReplaceActive    bool
}

func (in StartInput) Validate() error { return check(in) }

type StartOutput struct {
	Experiment ExperimentOutput
	ReplacedID string
}

type EndInput struct {
	UserID  string `validate:"required"`
	ID      string `validate:"required,uuid"`
	EndDate string `validate:"omitempty,datetime=2006-01-02"`
}

func (in EndInput) Validate() error { return check(in) }

type EndOutput struct {
	Experiment   ExperimentOutput
	AlreadyEnded bool
}

// RefInput addresses one experiment of one user.
type RefInput struct {
	UserID string `validate:"required"`
	ID     string `validate:"required,uuid"`
}

func (in RefInput) Validate() error { return check(in) }

// ReviewInput updates notes and rating. A nil list keeps the stored one; an
// empty non-nil list clears it.
type ReviewInput struct {
	UserID     string   `validate:"required"`
	ID         string   `validate:"required,uuid"`
	WhatWorked []string `validate:"omitempty,max=50,dive,max=280"`
	TryNext    []string `validate:"omitempty,max=50,dive,max=280"`
	Rating     string   `validate:"omitempty,oneof=more_stable slightly_better no_change hard_to_maintain worse"`
}

func (in ReviewInput) Validate() error { return check(in) }

type FinalizeOutput struct {
	Review           ReviewOutput
	AlreadyCompleted bool
	NotePath         string
}

type HistoryInput struct {
	UserID         string `validate:"required"`
	Limit          int    `validate:"omitempty,min=1,max=50"`
	Offset         int    `validate:"min=0"`
	IncludePending bool
}

func (in HistoryInput) Validate() error { return check(in) }

type PreviewInput struct {
	UserID string `validate:"required"`
	ID     string `validate:"required,uuid"`
	AsOf   string `validate:"omitempty,datetime=2006-01-02"`
}

func (in PreviewInput) Validate() error { return check(in) }

type LeverStatsInput struct {
	UserID string `validate:"required"`
	Since  string `validate:"omitempty,datetime=2006-01-02"`
}

func (in LeverStatsInput) Validate() error { return check(in) }

type LeverStatsOutput struct {
	ActiveLeverRef    string
	LastUsed          map[string]string
	MaxExperimentRows int
}

type LeverSummaryInput struct {
	UserID    string `validate:"required"`
	Since     string `validate:"omitempty,datetime=2006-01-02"`
	MetricKey string `validate:"omitempty,oneof=energy stress mood sleep_hours steps water_liters outdoor_minutes"`
	GroupBy   string `validate:"omitempty,oneof=lever_type lever_ref"`
}

func (in LeverSummaryInput) Validate() error { return check(in) }

type LeverSummaryOutput struct {
	Since     string
	GroupBy   string
	MetricKey string
	Items     []LeverEffectOutput
}

type LeverEffectOutput struct {
	Group         string
	TargetMetric  string
	MetricKey     string
	N             int
	AvgDelta      float64
	ImprovedCount int
	ImprovedRate  int
	Confidence    string
}

type ExperimentOutput struct {
	ID               string
	UserID           string
	Title            string
	Hypothesis       string
	LeverType        string
	LeverRef         string
	LeverLabel       string
	TargetMetric     string
	StartDate        string
	EndDate          string
	BaselineDays     int
	RecommendedDays  int
	Effort           string
	Impact           string
	StatedConfidence string
	Status           string
	Outcome          OutcomeOutput
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OutcomeOutput struct {
	Windows         *WindowsOutput
	Sample          *SampleOutput
	Sufficiency     *SufficiencyOutput
	Alignment       string
	ConfidenceScore float64
	ConfidenceLabel string
	// LegacyConfidence is the label on the older low/moderate/strong scale.
	LegacyConfidence string
	Rating           string
	WhatWorked       []string
	TryNext          []string
	Conclusion       string
}

type WindowOutput struct {
	Start string
	End   string
	Days  int
}

type WindowsOutput struct {
	Baseline  WindowOutput
	Treatment WindowOutput
}

type SampleOutput struct {
	BaselineRows  int
	TreatmentRows int
	BaselineDays  int
}

type SufficiencyOutput struct {
	OK                 bool
	Reason             string
	BaselineShortfall  int
	TreatmentShortfall int
	MinBaselineRows    int
	MinTreatmentRows   int
}

// MetricView is a display-ready metric comparison; averages and delta are
// rounded to one decimal.
type MetricView struct {
	Key           string
	Label         string
	Unit          string
	DirectionGood string
	BaselineAvg   *float64
	TreatmentAvg  *float64
	Delta         *float64
	DeltaText     string
	NBaseline     int
	NTreatment    int
	IsSignal      bool
	IsImprovement *bool
}

type PillOutput struct {
	Tone string
	Text string
}

type ReviewOutput struct {
	ExperimentID     string
	Rating           string
	Alignment        string
	ConfidenceScore  float64
	ConfidenceLabel  string
	LegacyConfidence string
	Windows          WindowsOutput
	Sample           SampleOutput
	Metrics          []MetricView
	WhatWorked       []string
	TryNext          []string
	Conclusion       string
	CreatedAt        time.Time
}

// ReviewViewOutput is the read model of an experiment's review page.
type ReviewViewOutput struct {
	Experiment ExperimentOutput
	Target     MetricView
	Others     []MetricView
	Pill       PillOutput
	Finalized  bool
	Conclusion string
	WhatWorked []string
	TryNext    []string
}

type PreviewOutput struct {
	Windows         WindowsOutput
	Sample          SampleOutput
	Sufficiency     SufficiencyOutput
	Target          MetricView
	Others          []MetricView
	Alignment       string
	ConfidenceScore float64
	ConfidenceLabel string
	Pill            PillOutput
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}
