package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/clock"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/id"
)

type ExperimentService struct {
	clock   clock.Clock
	idGen   id.Generator
	metrics experimentout.MetricReader
	th      domain.Thresholds
}

func NewExperimentService(clock clock.Clock, idGen id.Generator, metrics experimentout.MetricReader, th domain.Thresholds) *ExperimentService {
	return &ExperimentService{clock: clock, idGen: idGen, metrics: metrics, th: th}
}

func (s *ExperimentService) Thresholds() domain.Thresholds {
	return s.th
}

func (s *ExperimentService) Now() time.Time {
	return s.clock.Now()
}

func (s *ExperimentService) Today() day.Date {
	return clock.Today(s.clock)
}

func (s *ExperimentService) NewEventID() string {
	return s.idGen.New()
}

// StartParams are already shape-validated; NewExperiment applies the lever
// rules and defaults.
type StartParams struct {
	UserID           string
	Title            string
	Hypothesis       string
	LeverType        domain.LeverType
	LeverRef         string
	TargetMetric     checkindomain.MetricKey
	StartDate        day.Date
	BaselineDays     int
	RecommendedDays  int
	Effort           domain.Level
	Impact           domain.Level
	StatedConfidence domain.StatedConfidence
}

func (s *ExperimentService) NewExperiment(p StartParams) (domain.Experiment, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return domain.Experiment{}, apperrors.Invalid("title is required")
	}
	if !p.TargetMetric.Valid() {
		return domain.Experiment{}, apperrors.Invalid("unknown target metric %q", p.TargetMetric)
	}
	ref, err := domain.NormalizeLeverRef(p.LeverType, p.LeverRef)
	if err != nil {
		return domain.Experiment{}, err
	}

	baselineDays := p.BaselineDays
	if baselineDays == 0 {
		baselineDays = domain.DefaultBaselineDays
	}
	if baselineDays < domain.MinBaselineDays || baselineDays > domain.MaxBaselineDays {
		return domain.Experiment{}, apperrors.Invalid("baseline days must be within %d..%d", domain.MinBaselineDays, domain.MaxBaselineDays)
	}
	recommended := p.RecommendedDays
	if recommended == 0 {
		recommended = domain.DefaultRecommendedDays
	}
	if recommended < domain.MinRecommendedDays || recommended > domain.MaxRecommendedDays {
		return domain.Experiment{}, apperrors.Invalid("recommended days must be within %d..%d", domain.MinRecommendedDays, domain.MaxRecommendedDays)
	}

	start := p.StartDate
	if start.IsZero() {
		start = s.Today()
	}
	now := s.clock.Now()
	return domain.Experiment{
		ID:               s.idGen.New(),
		UserID:           p.UserID,
		Title:            title,
		Hypothesis:       strings.TrimSpace(p.Hypothesis),
		LeverType:        p.LeverType,
		LeverRef:         ref,
		TargetMetric:     p.TargetMetric,
		StartDate:        start,
		BaselineDays:     baselineDays,
		RecommendedDays:  recommended,
		Effort:           orLevel(p.Effort),
		Impact:           orLevel(p.Impact),
		StatedConfidence: orStated(p.StatedConfidence),
		Status:           domain.StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ComputeOutcome compares the baseline and treatment windows ending at end.
// User notes and rating on e are carried over; the sufficiency verdict is
// part of the result, never an error.
func (s *ExperimentService) ComputeOutcome(ctx context.Context, e domain.Experiment, end day.Date) (domain.Outcome, error) {
	windows, err := domain.ComputeWindows(e.StartDate, e.BaselineDays, end)
	if err != nil {
		return domain.Outcome{}, err
	}

	var baseline, treatment []checkindomain.DailyMetricRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.metrics.FetchRange(gctx, e.UserID, windows.Baseline.Start, windows.Baseline.End)
		if err != nil {
			return fmt.Errorf("fetch baseline window: %w", err)
		}
		baseline = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.metrics.FetchRange(gctx, e.UserID, windows.Treatment.Start, windows.Treatment.End)
		if err != nil {
			return fmt.Errorf("fetch treatment window: %w", err)
		}
		treatment = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Outcome{}, err
	}

	sample := domain.Sample{
		BaselineRows:  len(baseline),
		TreatmentRows: len(treatment),
		BaselineDays:  e.BaselineDays,
	}
	sufficiency := domain.EvaluateSufficiency(sample, s.th)
	computedAt := s.clock.Now()

	outcome := e.Outcome.ClearComputation()
	outcome.Windows = &windows
	outcome.Sample = &sample
	outcome.Sufficiency = &sufficiency
	outcome.Metrics = domain.ComputeAllStats(baseline, treatment, s.th)
	outcome.ComputedAt = &computedAt
	outcome.MethodVersion = domain.MethodVersion
	return outcome.Reevaluate(e.TargetMetric, s.th), nil
}

func orLevel(l domain.Level) domain.Level {
	if l == "" {
		return domain.LevelModerate
	}
	return l
}

func orStated(c domain.StatedConfidence) domain.StatedConfidence {
	if c == "" {
		return domain.StatedLow
	}
	return c
}
