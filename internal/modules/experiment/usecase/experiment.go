package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/experiment/domain"
	experimentdto "leverlab/internal/modules/experiment/dto"
	experimentin "leverlab/internal/modules/experiment/port/in"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/modules/experiment/service"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/telemetry"
	"leverlab/internal/platform/tx"
)

const (
	defaultHistoryLimit = 20
	leverStatsLookback  = 365
	leverEffectLookback = 180
)

// Deps wires the interactor. Events and Notes are optional best-effort
// sinks.
type Deps struct {
	Service     *service.ExperimentService
	Conclusions *service.ConclusionService
	Store       experimentout.ExperimentStore
	Reviews     experimentout.ReviewStore
	Events      experimentout.EventLog
	Notes       experimentout.ReviewNoteWriter
	Tx          tx.Manager
}

type Interactor struct {
	svc         *service.ExperimentService
	conclusions *service.ConclusionService
	store       experimentout.ExperimentStore
	reviews     experimentout.ReviewStore
	events      experimentout.EventLog
	notes       experimentout.ReviewNoteWriter
	tx          tx.Manager
	finalizing  singleflight.Group
}

func NewInteractor(deps Deps) experimentin.Usecase {
	txm := deps.Tx
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Interactor{
		svc:         deps.Service,
		conclusions: deps.Conclusions,
		store:       deps.Store,
		reviews:     deps.Reviews,
		events:      deps.Events,
		notes:       deps.Notes,
		tx:          txm,
	}
}

func (i *Interactor) Start(ctx context.Context, input experimentdto.StartInput) (out experimentdto.StartOutput, err error) {
	defer observe("start", &err)
	if err := input.Validate(); err != nil {
		return experimentdto.StartOutput{}, err
	}
	start, err := optionalDate(input.StartDate)
	if err != nil {
		return experimentdto.StartOutput{}, err
	}
	e, err := i.svc.NewExperiment(service.StartParams{
		UserID:           input.UserID,
		Title:            input.Title,
		Hypothesis:       input.Hypothesis,
		LeverType:        domain.LeverType(input.LeverType),
		LeverRef:         input.LeverRef,
		TargetMetric:     checkindomain.MetricKey(input.TargetMetric),
		StartDate:        start,
		BaselineDays:     input.BaselineDays,
		RecommendedDays:  input.RecommendedDays,
		Effort:           domain.Level(input.Effort),
		Impact:           domain.Level(input.Impact),
		StatedConfidence: domain.StatedConfidence(input.StatedConfidence),
	})
	if err != nil {
		return experimentdto.StartOutput{}, err
	}

	var replaced domain.Experiment
	err = i.tx.Within(ctx, func(ctx context.Context) error {
		active, err := i.store.FindActive(ctx, input.UserID)
		switch {
		case errors.Is(err, apperrors.ErrNoActiveExperiment):
		case err != nil:
			return err
		case !input.ReplaceActive:
			return &apperrors.ConflictError{
				Precondition: apperrors.PreconditionActiveExists,
				Status:       string(active.Status),
				RelatedID:    active.ID,
			}
		default:
			abandoned := active
			abandoned.Status = domain.StatusAbandoned
			abandoned.EndDate = i.svc.Today()
			abandoned.UpdatedAt = i.svc.Now()
			ok, err := i.store.Swap(ctx, active, abandoned)
			if err != nil {
				return err
			}
			if !ok {
				return &apperrors.ConflictError{Precondition: apperrors.PreconditionActiveExists, RelatedID: active.ID}
			}
			replaced = abandoned
		}
		return i.store.Insert(ctx, e)
	})
	if err != nil {
		return experimentdto.StartOutput{}, err
	}

	if replaced.ID != "" {
		i.audit(ctx, replaced, domain.EventAbandoned, map[string]any{"replaced_by": e.ID})
	}
	i.audit(ctx, e, domain.EventStarted, map[string]any{
		"lever_type":    string(e.LeverType),
		"lever_ref":     e.LeverRef,
		"target_metric": string(e.TargetMetric),
	})
	log.Info().Str("experiment", e.ID).Str("lever", e.LeverRef).Msg("experiment started")
	return experimentdto.StartOutput{Experiment: toExperimentOutput(e), ReplacedID: replaced.ID}, nil
}

func (i *Interactor) End(ctx context.Context, input experimentdto.EndInput) (out experimentdto.EndOutput, err error) {
	defer observe("end", &err)
	if err := input.Validate(); err != nil {
		return experimentdto.EndOutput{}, err
	}
	endDate, err := optionalDate(input.EndDate)
	if err != nil {
		return experimentdto.EndOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.EndOutput{}, err
	}
	if e.Ended() {
		return experimentdto.EndOutput{Experiment: toExperimentOutput(e), AlreadyEnded: true}, nil
	}
	if err := e.GuardEnd(); err != nil {
		return experimentdto.EndOutput{}, err
	}
	if endDate.IsZero() {
		endDate = i.svc.Today()
	}

	outcome, err := i.svc.ComputeOutcome(ctx, e, endDate)
	if err != nil {
		return experimentdto.EndOutput{}, err
	}
	next := e
	next.EndDate = endDate
	next.Status = domain.StatusEndedPendingReview
	next.Outcome = outcome
	next.UpdatedAt = i.svc.Now()

	ok, err := i.store.Swap(ctx, e, next)
	if err != nil {
		return experimentdto.EndOutput{}, err
	}
	if !ok {
		current, err := i.store.Get(ctx, input.UserID, input.ID)
		if err != nil {
			return experimentdto.EndOutput{}, err
		}
		if current.Ended() {
			return experimentdto.EndOutput{Experiment: toExperimentOutput(current), AlreadyEnded: true}, nil
		}
		return experimentdto.EndOutput{}, current.GuardEnd()
	}

	i.audit(ctx, next, domain.EventEnded, map[string]any{
		"end_date":       endDate.String(),
		"sufficient":     outcome.Sufficiency != nil && outcome.Sufficiency.OK,
		"baseline_rows":  outcome.Sample.BaselineRows,
		"treatment_rows": outcome.Sample.TreatmentRows,
	})
	return experimentdto.EndOutput{Experiment: toExperimentOutput(next)}, nil
}

func (i *Interactor) Resume(ctx context.Context, input experimentdto.RefInput) (out experimentdto.ExperimentOutput, err error) {
	defer observe("resume", &err)
	if err := input.Validate(); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	if err := e.GuardResume(); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	active, err := i.store.FindActive(ctx, input.UserID)
	switch {
	case errors.Is(err, apperrors.ErrNoActiveExperiment):
	case err != nil:
		return experimentdto.ExperimentOutput{}, err
	case active.ID != e.ID:
		return experimentdto.ExperimentOutput{}, &apperrors.ConflictError{
			Precondition: apperrors.PreconditionAnotherActive,
			Status:       string(e.Status),
			RelatedID:    active.ID,
		}
	}

	next := e
	next.EndDate = day.Date{}
	next.Status = domain.StatusActive
	next.Outcome = e.Outcome.ClearComputation()
	next.UpdatedAt = i.svc.Now()
	if err := i.swapOrConflict(ctx, e, next, (domain.Experiment).GuardResume); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	i.audit(ctx, next, domain.EventResumed, map[string]any{"previous_end_date": e.EndDate.String()})
	return toExperimentOutput(next), nil
}

func (i *Interactor) Review(ctx context.Context, input experimentdto.ReviewInput) (out experimentdto.ExperimentOutput, err error) {
	defer observe("review", &err)
	update, err := notesUpdate(input)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	if err := e.GuardReview(); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	next := i.withNotes(e, update)
	if err := i.swapOrConflict(ctx, e, next, (domain.Experiment).GuardReview); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	i.audit(ctx, next, domain.EventReviewUpdated, notesPayload(update))
	return toExperimentOutput(next), nil
}

// Finalize is collapsed per experiment so concurrent callers share one
// phraser call and one review row. Only the caller that ran the shared call
// has its notes and rating applied. Callers that joined it replay against
// the settled row, so they see the same outcome as a later sequential
// finalize: AlreadyCompleted, or their own error.
func (i *Interactor) Finalize(ctx context.Context, input experimentdto.ReviewInput) (out experimentdto.FinalizeOutput, err error) {
	defer observe("finalize", &err)
	update, err := notesUpdate(input)
	if err != nil {
		return experimentdto.FinalizeOutput{}, err
	}
	ran := false
	v, err, shared := i.finalizing.Do(input.UserID+"/"+input.ID, func() (any, error) {
		ran = true
		return i.finalize(ctx, input.UserID, input.ID, update)
	})
	if shared && !ran {
		return i.finalize(ctx, input.UserID, input.ID, update)
	}
	if err != nil {
		return experimentdto.FinalizeOutput{}, err
	}
	return v.(experimentdto.FinalizeOutput), nil
}

func (i *Interactor) finalize(ctx context.Context, userID, id string, update domain.NotesUpdate) (experimentdto.FinalizeOutput, error) {
	e, err := i.store.Get(ctx, userID, id)
	if err != nil {
		return experimentdto.FinalizeOutput{}, err
	}
	if e.Status == domain.StatusCompleted {
		review, err := i.existingReview(ctx, e)
		if err != nil {
			return experimentdto.FinalizeOutput{}, err
		}
		return experimentdto.FinalizeOutput{Review: toReviewOutput(review), AlreadyCompleted: true}, nil
	}
	if err := e.GuardFinalize(); err != nil {
		return experimentdto.FinalizeOutput{}, err
	}

	next := i.withNotes(e, update)
	review, err := i.reviews.Get(ctx, userID, id)
	switch {
	case err == nil:
		log.Debug().Str("experiment", id).Msg("reusing review left by an earlier finalize")
	case errors.Is(err, apperrors.ErrNotFound):
		next.Outcome.Conclusion = i.conclusions.Conclude(ctx, domain.FactsFor(next))
		review, err = i.reviews.InsertOnce(ctx, domain.NewReview(next, i.svc.Now()))
		if err != nil {
			return experimentdto.FinalizeOutput{}, err
		}
	default:
		return experimentdto.FinalizeOutput{}, err
	}
	next.Outcome.Conclusion = review.Conclusion
	next.Status = domain.StatusCompleted

	ok, err := i.store.Swap(ctx, e, next)
	if err != nil {
		return experimentdto.FinalizeOutput{}, err
	}
	if !ok {
		current, err := i.store.Get(ctx, userID, id)
		if err != nil {
			return experimentdto.FinalizeOutput{}, err
		}
		if current.Status == domain.StatusCompleted {
			return experimentdto.FinalizeOutput{Review: toReviewOutput(review), AlreadyCompleted: true}, nil
		}
		return experimentdto.FinalizeOutput{}, current.GuardFinalize()
	}

	out := experimentdto.FinalizeOutput{Review: toReviewOutput(review)}
	if i.notes != nil {
		path, err := i.notes.WriteReview(ctx, next, review)
		if err != nil {
			telemetry.BestEffortFailures.WithLabelValues("review_note").Inc()
			log.Warn().Err(err).Str("experiment", id).Msg("review note not written")
		} else {
			out.NotePath = path
		}
	}
	payload := notesPayload(update)
	payload["has_conclusion"] = review.Conclusion != ""
	i.audit(ctx, next, domain.EventReviewFinalized, payload)
	return out, nil
}

// existingReview returns the review of a completed experiment, writing one
// from the stored snapshot when an older completion never produced it.
func (i *Interactor) existingReview(ctx context.Context, e domain.Experiment) (domain.Review, error) {
	review, err := i.reviews.Get(ctx, e.UserID, e.ID)
	if err == nil {
		return review, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Review{}, err
	}
	return i.reviews.InsertOnce(ctx, domain.NewReview(e, i.svc.Now()))
}

func (i *Interactor) Recompute(ctx context.Context, input experimentdto.RefInput) (out experimentdto.ExperimentOutput, err error) {
	defer observe("recompute", &err)
	if err := input.Validate(); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	guard := func(x domain.Experiment) error {
		if x.Status != domain.StatusEndedPendingReview || !x.Ended() {
			return apperrors.Conflict(apperrors.PreconditionNotPendingReview, string(x.Status))
		}
		return nil
	}
	if err := guard(e); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	outcome, err := i.svc.ComputeOutcome(ctx, e, e.EndDate)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	next := e
	next.Outcome = outcome
	next.UpdatedAt = i.svc.Now()
	if err := i.swapOrConflict(ctx, e, next, guard); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	i.audit(ctx, next, domain.EventRecomputed, map[string]any{"method_version": domain.MethodVersion})
	return toExperimentOutput(next), nil
}

func (i *Interactor) Get(ctx context.Context, input experimentdto.RefInput) (experimentdto.ExperimentOutput, error) {
	if err := input.Validate(); err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	return toExperimentOutput(e), nil
}

func (i *Interactor) GetActive(ctx context.Context, userID string) (experimentdto.ExperimentOutput, error) {
	if userID == "" {
		return experimentdto.ExperimentOutput{}, apperrors.Invalid("user id is required")
	}
	e, err := i.store.FindActive(ctx, userID)
	if err != nil {
		return experimentdto.ExperimentOutput{}, err
	}
	return toExperimentOutput(e), nil
}

func (i *Interactor) History(ctx context.Context, input experimentdto.HistoryInput) ([]experimentdto.ExperimentOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	statuses := []domain.Status{domain.StatusCompleted, domain.StatusAbandoned}
	if input.IncludePending {
		statuses = append(statuses, domain.StatusEndedPendingReview)
	}
	list, err := i.store.List(ctx, input.UserID, statuses, limit, input.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]experimentdto.ExperimentOutput, 0, len(list))
	for _, e := range list {
		out = append(out, toExperimentOutput(e))
	}
	return out, nil
}

func (i *Interactor) GetReview(ctx context.Context, input experimentdto.RefInput) (experimentdto.ReviewViewOutput, error) {
	if err := input.Validate(); err != nil {
		return experimentdto.ReviewViewOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.ReviewViewOutput{}, err
	}

	view := experimentdto.ReviewViewOutput{
		Experiment: toExperimentOutput(e),
		Conclusion: e.Outcome.Conclusion,
		WhatWorked: e.Outcome.WhatWorked,
		TryNext:    e.Outcome.TryNext,
	}
	stats := e.Outcome.Metrics
	alignment, label := e.Outcome.Alignment, e.Outcome.ConfidenceLabel
	if e.Status == domain.StatusCompleted {
		review, err := i.reviews.Get(ctx, e.UserID, e.ID)
		switch {
		case err == nil:
			view.Finalized = true
			stats = review.Metrics
			alignment, label = review.Alignment, review.ConfidenceLabel
			view.Conclusion = review.Conclusion
			view.WhatWorked = review.WhatWorked
			view.TryNext = review.TryNext
		case !errors.Is(err, apperrors.ErrNotFound):
			return experimentdto.ReviewViewOutput{}, err
		}
	}
	if alignment == "" {
		alignment = domain.AlignmentUnclear
	}
	if label == "" {
		label = domain.ConfidenceLow
	}
	view.Target, view.Others = metricViews(e.TargetMetric, stats)
	view.Pill = toPill(domain.SummaryPill(alignment, label))
	return view, nil
}

// Preview runs the comparison as of a date without persisting anything.
func (i *Interactor) Preview(ctx context.Context, input experimentdto.PreviewInput) (experimentdto.PreviewOutput, error) {
	if err := input.Validate(); err != nil {
		return experimentdto.PreviewOutput{}, err
	}
	asOf, err := optionalDate(input.AsOf)
	if err != nil {
		return experimentdto.PreviewOutput{}, err
	}
	e, err := i.store.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return experimentdto.PreviewOutput{}, err
	}
	if asOf.IsZero() {
		asOf = e.EndDate
	}
	if asOf.IsZero() {
		asOf = i.svc.Today()
	}
	outcome, err := i.svc.ComputeOutcome(ctx, e, asOf)
	if err != nil {
		return experimentdto.PreviewOutput{}, err
	}
	target, others := metricViews(e.TargetMetric, outcome.Metrics)
	return experimentdto.PreviewOutput{
		Windows:         toWindowsOutput(*outcome.Windows),
		Sample:          toSampleOutput(*outcome.Sample),
		Sufficiency:     toSufficiencyOutput(*outcome.Sufficiency),
		Target:          target,
		Others:          others,
		Alignment:       string(outcome.Alignment),
		ConfidenceScore: outcome.ConfidenceScore,
		ConfidenceLabel: string(outcome.ConfidenceLabel),
		Pill:            toPill(domain.SummaryPill(outcome.Alignment, outcome.ConfidenceLabel)),
	}, nil
}

func (i *Interactor) LeverStats(ctx context.Context, input experimentdto.LeverStatsInput) (experimentdto.LeverStatsOutput, error) {
	if err := input.Validate(); err != nil {
		return experimentdto.LeverStatsOutput{}, err
	}
	since, err := optionalDate(input.Since)
	if err != nil {
		return experimentdto.LeverStatsOutput{}, err
	}
	if since.IsZero() {
		since = i.svc.Today().AddDays(-leverStatsLookback)
	}
	list, err := i.store.ListStartedSince(ctx, input.UserID, since)
	if err != nil {
		return experimentdto.LeverStatsOutput{}, err
	}
	usage := domain.SummarizeLevers(list)
	if active, err := i.store.FindActive(ctx, input.UserID); err == nil {
		usage.ActiveLeverRef = active.LeverRef
	} else if !errors.Is(err, apperrors.ErrNoActiveExperiment) {
		return experimentdto.LeverStatsOutput{}, err
	}

	out := experimentdto.LeverStatsOutput{
		ActiveLeverRef:    usage.ActiveLeverRef,
		LastUsed:          make(map[string]string, len(usage.LastUsed)),
		MaxExperimentRows: usage.MaxExperimentRows,
	}
	for ref, d := range usage.LastUsed {
		out.LastUsed[ref] = d.String()
	}
	return out, nil
}

// LeverSummary pools the per-metric deltas of ended experiments by lever.
func (i *Interactor) LeverSummary(ctx context.Context, input experimentdto.LeverSummaryInput) (experimentdto.LeverSummaryOutput, error) {
	if err := input.Validate(); err != nil {
		return experimentdto.LeverSummaryOutput{}, err
	}
	since, err := optionalDate(input.Since)
	if err != nil {
		return experimentdto.LeverSummaryOutput{}, err
	}
	if since.IsZero() {
		since = i.svc.Today().AddDays(-leverEffectLookback)
	}
	groupBy, err := domain.ParseLeverGrouping(input.GroupBy)
	if err != nil {
		return experimentdto.LeverSummaryOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	list, err := i.store.ListStartedSince(ctx, input.UserID, since)
	if err != nil {
		return experimentdto.LeverSummaryOutput{}, err
	}
	effects := domain.SummarizeEffects(list, groupBy, checkindomain.MetricKey(input.MetricKey))

	out := experimentdto.LeverSummaryOutput{
		Since:     since.String(),
		GroupBy:   string(groupBy),
		MetricKey: input.MetricKey,
		Items:     make([]experimentdto.LeverEffectOutput, 0, len(effects)),
	}
	for _, eff := range effects {
		out.Items = append(out.Items, toLeverEffectOutput(eff))
	}
	return out, nil
}

// swapOrConflict applies a conditional update. When the row moved underneath
// us the fresh state is run through guard to name the failed precondition.
func (i *Interactor) swapOrConflict(ctx context.Context, prev, next domain.Experiment, guard func(domain.Experiment) error) error {
	ok, err := i.store.Swap(ctx, prev, next)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	current, err := i.store.Get(ctx, prev.UserID, prev.ID)
	if err != nil {
		return err
	}
	if err := guard(current); err != nil {
		return err
	}
	return apperrors.Conflict(apperrors.PreconditionConcurrentUpdate, string(current.Status))
}

func (i *Interactor) withNotes(e domain.Experiment, update domain.NotesUpdate) domain.Experiment {
	th := i.svc.Thresholds()
	next := e
	next.Outcome = e.Outcome.ApplyNotes(update, th.NotesCap)
	if update.Rating != nil {
		next.Outcome = next.Outcome.Reevaluate(e.TargetMetric, th)
	}
	next.UpdatedAt = i.svc.Now()
	return next
}

// audit appends an event; failures are logged and counted, never returned.
func (i *Interactor) audit(ctx context.Context, e domain.Experiment, kind domain.EventType, payload map[string]any) {
	if i.events == nil {
		return
	}
	event := domain.Event{
		ID:           i.svc.NewEventID(),
		UserID:       e.UserID,
		ExperimentID: e.ID,
		Type:         kind,
		Payload:      payload,
		CreatedAt:    i.svc.Now(),
	}
	if err := i.events.Append(ctx, event); err != nil {
		telemetry.BestEffortFailures.WithLabelValues("audit").Inc()
		log.Warn().Err(err).Str("experiment", e.ID).Str("event", string(kind)).Msg("audit event dropped")
	}
}

func notesUpdate(input experimentdto.ReviewInput) (domain.NotesUpdate, error) {
	if err := input.Validate(); err != nil {
		return domain.NotesUpdate{}, err
	}
	update := domain.NotesUpdate{WhatWorked: input.WhatWorked, TryNext: input.TryNext}
	if input.Rating != "" {
		rating, err := domain.ParseRating(input.Rating)
		if err != nil {
			return domain.NotesUpdate{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		update.Rating = &rating
	}
	return update, nil
}

func notesPayload(update domain.NotesUpdate) map[string]any {
	payload := map[string]any{}
	if update.WhatWorked != nil {
		payload["what_worked_count"] = len(update.WhatWorked)
	}
	if update.TryNext != nil {
		payload["try_next_count"] = len(update.TryNext)
	}
	if update.Rating != nil {
		payload["rating"] = string(*update.Rating)
	}
	return payload
}

func optionalDate(raw string) (day.Date, error) {
	if raw == "" {
		return day.Date{}, nil
	}
	d, err := day.Parse(raw)
	if err != nil {
		return day.Date{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return d, nil
}

func observe(op string, errp *error) {
	result := telemetry.ResultOK
	if err := *errp; err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			result = telemetry.ResultConflict
		case errors.Is(err, apperrors.ErrInvalidInput):
			result = telemetry.ResultInvalid
		case errors.Is(err, apperrors.ErrNotFound):
			result = telemetry.ResultNotFound
		default:
			result = telemetry.ResultError
		}
	}
	telemetry.Transitions.WithLabelValues(op, result).Inc()
}
