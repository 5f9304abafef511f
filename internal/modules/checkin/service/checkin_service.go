package service

import (
	"context"
	"errors"
	"fmt"

	"leverlab/internal/modules/checkin/domain"
	checkinout "leverlab/internal/modules/checkin/port/out"
	"leverlab/internal/platform/clock"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
)

// DefaultCorrelationDays is the trailing window correlations are computed over.
const DefaultCorrelationDays = 30

type CheckinService struct {
	clock clock.Clock
	store checkinout.MetricStore
}

func NewCheckinService(clock clock.Clock, store checkinout.MetricStore) *CheckinService {
	return &CheckinService{clock: clock, store: store}
}

// Log merges values into the row for date (today when zero) and stores it.
func (s *CheckinService) Log(ctx context.Context, userID string, date day.Date, values map[domain.MetricKey]float64) (domain.DailyMetricRow, error) {
	if date.IsZero() {
		date = clock.Today(s.clock)
	}
	if len(values) == 0 {
		return domain.DailyMetricRow{}, apperrors.Invalid("at least one metric value is required")
	}
	update := domain.NewRow(userID, date).Merge(values)
	if err := update.Validate(); err != nil {
		return domain.DailyMetricRow{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	existing, err := s.store.Get(ctx, userID, date)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		existing = domain.NewRow(userID, date)
	case err != nil:
		return domain.DailyMetricRow{}, err
	}
	row := existing.Merge(values)
	if err := s.store.Upsert(ctx, row); err != nil {
		return domain.DailyMetricRow{}, err
	}
	return row, nil
}

func (s *CheckinService) Range(ctx context.Context, userID string, from, to day.Date) ([]domain.DailyMetricRow, error) {
	if to.Before(from) {
		return nil, apperrors.Invalid("range end %s is before start %s", to, from)
	}
	return s.store.Range(ctx, userID, from, to)
}

// Correlations computes pairwise coefficients over the days trailing asOf.
func (s *CheckinService) Correlations(ctx context.Context, userID string, asOf day.Date, days int) (day.Date, day.Date, []domain.Correlation, error) {
	if asOf.IsZero() {
		asOf = clock.Today(s.clock)
	}
	if days <= 0 {
		days = DefaultCorrelationDays
	}
	from := asOf.AddDays(-(days - 1))
	rows, err := s.store.Range(ctx, userID, from, asOf)
	if err != nil {
		return day.Date{}, day.Date{}, nil, err
	}
	return from, asOf, domain.Correlations(rows), nil
}
