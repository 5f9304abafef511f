package domain

import (
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
)

// Window is an inclusive date range.
type Window struct {
	Start day.Date `json:"start"`
	End   day.Date `json:"end"`
	Days  int      `json:"days"`
}

func NewWindow(start, end day.Date) Window {
	return Window{Start: start, End: end, Days: day.InclusiveDays(start, end)}
}

func (w Window) Contains(d day.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

type Windows struct {
	Baseline  Window `json:"baseline"`
	Treatment Window `json:"treatment"`
}

// ComputeWindows places the baseline immediately before start and the
// treatment over [start, end]. Callers pass today's date for open
// experiments.
func ComputeWindows(start day.Date, baselineDays int, end day.Date) (Windows, error) {
	if start.IsZero() || end.IsZero() {
		return Windows{}, apperrors.Invalid("window needs both a start and an end date")
	}
	if baselineDays < 1 {
		return Windows{}, apperrors.Invalid("baseline days must be positive, got %d", baselineDays)
	}
	if end.Before(start) {
		return Windows{}, apperrors.Invalid("end date %s is before start date %s", end, start)
	}
	return Windows{
		Baseline:  NewWindow(start.AddDays(-baselineDays), start.AddDays(-1)),
		Treatment: NewWindow(start, end),
	}, nil
}
