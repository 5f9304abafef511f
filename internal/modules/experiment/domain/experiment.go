package domain

import (
	"strings"
	"time"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/slug"
)

type Status string

const (
	StatusActive             Status = "active"
	StatusEndedPendingReview Status = "ended_pending_review"
	StatusCompleted          Status = "completed"
	StatusAbandoned          Status = "abandoned"
)

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusAbandoned: {},
}

func (s Status) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusEndedPendingReview, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

type LeverType string

const (
	LeverMetric LeverType = "metric"
	LeverHabit  LeverType = "habit"
	LeverCustom LeverType = "custom"
)

// Level grades effort and expected impact.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// StatedConfidence is how sure the user was when starting.
type StatedConfidence string

const (
	StatedLow      StatedConfidence = "low"
	StatedModerate StatedConfidence = "moderate"
	StatedStrong   StatedConfidence = "strong"
)

const (
	DefaultBaselineDays    = 30
	MinBaselineDays        = 7
	MaxBaselineDays        = 90
	DefaultRecommendedDays = 7
	MinRecommendedDays     = 3
	MaxRecommendedDays     = 60
)

type Experiment struct {
	ID               string
	UserID           string
	Title            string
	Hypothesis       string
	LeverType        LeverType
	LeverRef         string
	TargetMetric     checkindomain.MetricKey
	StartDate        day.Date
	EndDate          day.Date
	BaselineDays     int
	RecommendedDays  int
	Effort           Level
	Impact           Level
	StatedConfidence StatedConfidence
	Status           Status
	Outcome          Outcome
	// Version counts committed writes to the row. Swap compares it so a
	// stale read cannot overwrite a newer one.
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Open reports whether e holds the user's single active slot.
func (e Experiment) Open() bool {
	return e.Status == StatusActive && e.EndDate.IsZero()
}

func (e Experiment) Ended() bool {
	return !e.EndDate.IsZero()
}

// NormalizeLeverRef checks ref against the lever type and returns its
// canonical form.
func NormalizeLeverRef(leverType LeverType, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch leverType {
	case LeverMetric:
		key, err := checkindomain.ParseMetricKey(ref)
		if err != nil {
			return "", apperrors.Invalid("metric lever must reference a metric key: %v", err)
		}
		return string(key), nil
	case LeverHabit:
		key := slug.Key(ref)
		if key == "" {
			return "", apperrors.Invalid("habit lever requires a habit reference")
		}
		return key, nil
	case LeverCustom:
		return ref, nil
	default:
		return "", apperrors.Invalid("unknown lever type %q", leverType)
	}
}

func (e Experiment) GuardEnd() error {
	if e.Status != StatusActive {
		return conflict(apperrors.PreconditionNotActive, e.Status)
	}
	return nil
}

// GuardResume accepts ended_pending_review and the legacy shape of an
// active experiment that already carries an end date.
func (e Experiment) GuardResume() error {
	if e.Status.Terminal() {
		return conflict(apperrors.PreconditionTerminal, e.Status)
	}
	if !e.Ended() {
		return conflict(apperrors.PreconditionNotEnded, e.Status)
	}
	return nil
}

func (e Experiment) GuardReview() error {
	if e.Status.Terminal() {
		return conflict(apperrors.PreconditionTerminal, e.Status)
	}
	return nil
}

func (e Experiment) GuardFinalize() error {
	if e.Status != StatusEndedPendingReview {
		if e.Status.Terminal() {
			return conflict(apperrors.PreconditionTerminal, e.Status)
		}
		return conflict(apperrors.PreconditionNotPendingReview, e.Status)
	}
	if !e.Outcome.HasComputation() {
		return conflict(apperrors.PreconditionMissingWindows, e.Status)
	}
	return nil
}

func conflict(precondition string, status Status) error {
	return apperrors.Conflict(precondition, string(status))
}

var leverLabels = map[string]string{
	"cold_shower":           "Cold shower",
	"evening_walk":          "Evening walk",
	"morning_walk":          "Morning walk",
	"no_caffeine_after_2pm": "No caffeine after 2pm",
	"screens_off_1h":        "Screens off 1h before bed",
	"meditation_10m":        "Meditation (10 min)",
	"decompression_10m":     "Decompression (10 min)",
	"hydration_2l":          "Drink 2L of water",
}

// LeverLabel is a display name for ref, falling back to ref itself.
func LeverLabel(ref string) string {
	if label, ok := leverLabels[ref]; ok {
		return label
	}
	if key, err := checkindomain.ParseMetricKey(ref); err == nil {
		return key.DisplayLabel()
	}
	return ref
}
