package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/focus/domain"
	focusdto "leverlab/internal/modules/focus/dto"
	focusin "leverlab/internal/modules/focus/port/in"
	focusout "leverlab/internal/modules/focus/port/out"
	"leverlab/internal/modules/focus/service"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/telemetry"
)

// Deps wires the interactor. Cache is optional.
type Deps struct {
	Service *service.FocusService
	Signals focusout.SignalReader
	Usage   focusout.UsageReader
	Cache   focusout.SnapshotCache
}

type Interactor struct {
	svc     *service.FocusService
	signals focusout.SignalReader
	usage   focusout.UsageReader
	cache   focusout.SnapshotCache
}

func NewInteractor(deps Deps) focusin.Usecase {
	return &Interactor{svc: deps.Service, signals: deps.Signals, usage: deps.Usage, cache: deps.Cache}
}

func (i *Interactor) Next(ctx context.Context, input focusdto.NextInput) (focusdto.NextOutput, error) {
	if err := input.Validate(); err != nil {
		return focusdto.NextOutput{}, err
	}
	date := i.svc.Today()
	if input.Date != "" {
		parsed, err := day.Parse(input.Date)
		if err != nil {
			return focusdto.NextOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		date = parsed
	}

	usage, err := i.usage.Usage(ctx, input.UserID)
	if err != nil {
		return focusdto.NextOutput{}, fmt.Errorf("load lever usage: %w", err)
	}
	key := domain.SnapshotKey(input.UserID, date, usage.ActiveLeverRef)

	if i.cache != nil && !input.Refresh {
		insight, ok, err := i.cache.Get(ctx, key)
		switch {
		case err != nil:
			telemetry.BestEffortFailures.WithLabelValues("focus_cache").Inc()
			log.Warn().Err(err).Str("key", key).Msg("focus snapshot read failed")
		case ok:
			telemetry.FocusCache.WithLabelValues("hit").Inc()
			out := toNextOutput(insight)
			out.Cached = true
			return out, nil
		default:
			telemetry.FocusCache.WithLabelValues("miss").Inc()
		}
	}

	var (
		rows  []checkindomain.DailyMetricRow
		corrN int
	)
	from, to := domain.DriftRange(date)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = i.signals.Rows(gctx, input.UserID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		corrN, err = i.signals.CorrelationN(gctx, input.UserID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return focusdto.NextOutput{}, fmt.Errorf("load focus signals: %w", err)
	}

	insight := i.svc.Rank(domain.Signals{Date: date, Rows: rows, CorrN: corrN, Usage: usage})
	telemetry.FocusModes.WithLabelValues(string(insight.Gate.Mode)).Inc()
	log.Debug().
		Str("user", input.UserID).
		Str("date", date.String()).
		Str("mode", string(insight.Gate.Mode)).
		Int("options", len(insight.Options)).
		Msg("focus ranked")

	if i.cache != nil {
		if err := i.cache.Put(ctx, key, insight); err != nil {
			telemetry.BestEffortFailures.WithLabelValues("focus_cache").Inc()
			log.Warn().Err(err).Str("key", key).Msg("focus snapshot write failed")
		}
	}
	return toNextOutput(insight), nil
}

func (i *Interactor) Catalog(context.Context) ([]focusdto.PresetOutput, error) {
	catalog := i.svc.Catalog()
	out := make([]focusdto.PresetOutput, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, toPresetOutput(p))
	}
	return out, nil
}

func toNextOutput(in domain.Insight) focusdto.NextOutput {
	out := focusdto.NextOutput{
		WeekKey:        in.WeekKey,
		Date:           in.Date.String(),
		Mode:           string(in.Gate.Mode),
		Confidence:     string(in.Gate.Label),
		Reasons:        append([]string(nil), in.Gate.Reasons...),
		DriftFrom:      in.Drift.Start.String(),
		DriftTo:        in.Drift.End.String(),
		Deltas:         make(map[string]float64, len(in.Drift.Deltas)),
		PrimaryDrift:   string(in.Drift.Primary),
		ActiveLeverRef: in.ActiveLeverRef,
		Options:        make([]focusdto.OptionOutput, 0, len(in.Options)),
		ComputedAt:     in.ComputedAt,
	}
	for k, v := range in.Drift.Deltas {
		out.Deltas[string(k)] = v
	}
	for _, o := range in.Options {
		out.Options = append(out.Options, focusdto.OptionOutput{
			ID:             o.ID,
			Title:          o.Title,
			Preset:         toPresetOutput(o.Preset),
			Why:            append([]string(nil), o.Why...),
			Confidence:     string(o.Confidence),
			Mode:           string(o.Mode),
			Score:          o.Score,
			CorrN:          o.Evidence.CorrN,
			ExperimentRows: o.Evidence.ExperimentRows,
			DriftDelta:     o.Evidence.DriftDelta,
			NoveltyPenalty: o.Evidence.NoveltyPenalty,
			Source:         string(o.Source),
		})
	}
	return out
}

func toPresetOutput(p domain.Preset) focusdto.PresetOutput {
	return focusdto.PresetOutput{
		Title:           p.Title,
		LeverType:       string(p.LeverType),
		LeverRef:        p.LeverRef,
		TargetMetric:    string(p.TargetMetric),
		Effort:          string(p.Effort),
		Impact:          string(p.Impact),
		RecommendedDays: p.RecommendedDays,
		BaselineDays:    p.BaselineDays,
	}
}
