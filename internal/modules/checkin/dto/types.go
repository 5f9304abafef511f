package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "leverlab/internal/platform/errors"
)

var validate = validator.New()

// LogInput records (or merges into) one day's row. Nil fields are left as
// they were.
type LogInput struct {
	UserID         string   `validate:"required"`
	Date           string   `validate:"omitempty,datetime=2006-01-02"`
	Energy         *float64 `validate:"omitempty,min=1,max=5"`
	Stress         *float64 `validate:"omitempty,min=1,max=5"`
	Mood           *float64 `validate:"omitempty,min=1,max=5"`
	SleepHours     *float64 `validate:"omitempty,min=0,max=24"`
	Steps          *float64 `validate:"omitempty,min=0,max=200000"`
	WaterLiters    *float64 `validate:"omitempty,min=0,max=20"`
	OutdoorMinutes *float64 `validate:"omitempty,min=0,max=1440"`
}

func (in LogInput) Validate() error {
	return check(in)
}

type RangeInput struct {
	UserID string `validate:"required"`
	From   string `validate:"required,datetime=2006-01-02"`
	To     string `validate:"required,datetime=2006-01-02"`
}

func (in RangeInput) Validate() error {
	return check(in)
}

type CorrelationInput struct {
	UserID string `validate:"required"`
	AsOf   string `validate:"omitempty,datetime=2006-01-02"`
	Days   int    `validate:"omitempty,min=7,max=3650"`
}

func (in CorrelationInput) Validate() error {
	return check(in)
}

// RowOutput carries a row with metric keys as plain strings.
type RowOutput struct {
	Date   string
	Values map[string]float64
}

type CorrelationPair struct {
	X string
	Y string
	N int
	R *float64
}

type CorrelationOutput struct {
	From  string
	To    string
	Pairs []CorrelationPair
	MaxN  int
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}
