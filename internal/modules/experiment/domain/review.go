package domain

import (
	"time"

	"leverlab/internal/platform/day"
)

// Review is written once per experiment at finalize and never updated.
type Review struct {
	ExperimentID    string
	UserID          string
	Rating          Rating
	Metrics         []MetricStats
	Sample          Sample
	Windows         Windows
	Alignment       Alignment
	ConfidenceScore float64
	ConfidenceLabel ConfidenceLabel
	WhatWorked      []string
	TryNext         []string
	Conclusion      string
	CreatedAt       time.Time
}

func NewReview(e Experiment, now time.Time) Review {
	r := Review{
		ExperimentID:    e.ID,
		UserID:          e.UserID,
		Rating:          e.Outcome.Rating,
		Metrics:         e.Outcome.Metrics,
		Alignment:       e.Outcome.Alignment,
		ConfidenceScore: e.Outcome.ConfidenceScore,
		ConfidenceLabel: e.Outcome.ConfidenceLabel,
		WhatWorked:      e.Outcome.WhatWorked,
		TryNext:         e.Outcome.TryNext,
		Conclusion:      e.Outcome.Conclusion,
		CreatedAt:       now,
	}
	if e.Outcome.Windows != nil {
		r.Windows = *e.Outcome.Windows
	}
	if e.Outcome.Sample != nil {
		r.Sample = *e.Outcome.Sample
	}
	return r
}

type EventType string

const (
	EventStarted         EventType = "started"
	EventAbandoned       EventType = "abandoned"
	EventEnded           EventType = "ended"
	EventResumed         EventType = "resumed"
	EventReviewUpdated   EventType = "review_updated"
	EventReviewFinalized EventType = "review_finalized"
	EventRecomputed      EventType = "recomputed"
)

// Event is an append-only audit record.
type Event struct {
	ID           string
	UserID       string
	ExperimentID string
	Type         EventType
	Payload      map[string]any
	CreatedAt    time.Time
}

// LeverUsage summarises how a user has used levers, for the ranker.
type LeverUsage struct {
	ActiveLeverRef    string
	LastUsed          map[string]day.Date
	MaxExperimentRows int
}

// SummarizeLevers folds a user's experiments into LeverUsage. Only completed
// experiments count towards MaxExperimentRows.
func SummarizeLevers(experiments []Experiment) LeverUsage {
	usage := LeverUsage{LastUsed: map[string]day.Date{}}
	for _, e := range experiments {
		if e.Open() {
			usage.ActiveLeverRef = e.LeverRef
		}
		last := e.StartDate
		if e.EndDate.After(last) {
			last = e.EndDate
		}
		if prev, ok := usage.LastUsed[e.LeverRef]; !ok || last.After(prev) {
			usage.LastUsed[e.LeverRef] = last
		}
		if e.Status == StatusCompleted && e.Outcome.Sample != nil && e.Outcome.Sample.TreatmentRows > usage.MaxExperimentRows {
			usage.MaxExperimentRows = e.Outcome.Sample.TreatmentRows
		}
	}
	return usage
}
