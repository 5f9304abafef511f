package dto

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "leverlab/internal/platform/errors"
)

var validate = validator.New()

// NextInput asks for the next-focus suggestions of one user. Refresh skips
// the snapshot cache.
type NextInput struct {
	UserID  string `validate:"required"`
	Date    string `validate:"omitempty,datetime=2006-01-02"`
	Refresh bool
}

func (in NextInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

type PresetOutput struct {
	Title           string
	LeverType       string
	LeverRef        string
	TargetMetric    string
	Effort          string
	Impact          string
	RecommendedDays int
	BaselineDays    int
}

type OptionOutput struct {
	ID             string
	Title          string
	Preset         PresetOutput
	Why            []string
	Confidence     string
	Mode           string
	Score          float64
	CorrN          int
	ExperimentRows int
	DriftDelta     *float64
	NoveltyPenalty float64
	Source         string
}

type NextOutput struct {
	WeekKey        string
	Date           string
	Mode           string
	Confidence     string
	Reasons        []string
	DriftFrom      string
	DriftTo        string
	Deltas         map[string]float64
	PrimaryDrift   string
	ActiveLeverRef string
	Options        []OptionOutput
	Cached         bool
	ComputedAt     time.Time
}
