package domain

import (
	"strings"
	"time"

	checkindomain "leverlab/internal/modules/checkin/domain"
)

const MethodVersion = 1

// Outcome is the snapshot stored on the experiment. Windows, Sample,
// Sufficiency and Metrics are the computed part; notes and rating belong to
// the user and survive a resume.
type Outcome struct {
	Windows         *Windows        `json:"windows,omitempty"`
	Sample          *Sample         `json:"sample,omitempty"`
	Sufficiency     *Sufficiency    `json:"sufficiency,omitempty"`
	Metrics         []MetricStats   `json:"metrics,omitempty"`
	Alignment       Alignment       `json:"alignment,omitempty"`
	ConfidenceScore float64         `json:"confidence_score,omitempty"`
	ConfidenceLabel ConfidenceLabel `json:"confidence_label,omitempty"`
	Rating          Rating          `json:"rating,omitempty"`
	WhatWorked      []string        `json:"what_worked,omitempty"`
	TryNext         []string        `json:"try_next,omitempty"`
	Conclusion      string          `json:"conclusion,omitempty"`
	ComputedAt      *time.Time      `json:"computed_at,omitempty"`
	MethodVersion   int             `json:"method_version,omitempty"`
}

func (o Outcome) HasComputation() bool {
	return o.Windows != nil && len(o.Metrics) > 0
}

func (o Outcome) Stats(key checkindomain.MetricKey) (MetricStats, bool) {
	for _, m := range o.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricStats{}, false
}

// ClearComputation drops everything derived from the metric rows.
func (o Outcome) ClearComputation() Outcome {
	return Outcome{
		Rating:     o.Rating,
		WhatWorked: o.WhatWorked,
		TryNext:    o.TryNext,
	}
}

// Reevaluate recomputes alignment and confidence from the stored target
// stats, e.g. after the rating changed.
func (o Outcome) Reevaluate(target checkindomain.MetricKey, th Thresholds) Outcome {
	stats, ok := o.Stats(target)
	if !ok {
		return o
	}
	v := Evaluate(stats, o.Rating, th)
	o.Alignment = v.Alignment
	o.ConfidenceScore = v.ConfidenceScore
	o.ConfidenceLabel = v.ConfidenceLabel
	return o
}

// CleanBullets trims entries, drops empties and keeps at most max.
func CleanBullets(in []string, max int) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(out) == max {
			break
		}
		out = append(out, s)
	}
	return out
}

// NotesUpdate carries optional replacements; a nil list leaves the stored
// one untouched.
type NotesUpdate struct {
	WhatWorked []string
	TryNext    []string
	Rating     *Rating
}

func (o Outcome) ApplyNotes(update NotesUpdate, max int) Outcome {
	if update.WhatWorked != nil {
		o.WhatWorked = CleanBullets(update.WhatWorked, max)
	}
	if update.TryNext != nil {
		o.TryNext = CleanBullets(update.TryNext, max)
	}
	if update.Rating != nil {
		o.Rating = *update.Rating
	}
	return o
}
