package domain

import (
	"errors"
	"fmt"
	"strings"

	checkindomain "leverlab/internal/modules/checkin/domain"
)

// MaxConclusionWords caps the one-sentence conclusion.
const MaxConclusionWords = 22

var (
	ErrEmptyConclusion   = errors.New("empty conclusion")
	ErrVerboseConclusion = errors.New("conclusion exceeds word limit")
)

// Facts is everything a phraser may see. It carries no user identity.
type Facts struct {
	Alignment       Alignment               `json:"alignment"`
	ConfidenceScore float64                 `json:"confidence_score"`
	ConfidenceLabel ConfidenceLabel         `json:"confidence_label"`
	TargetMetric    checkindomain.MetricKey `json:"target_metric"`
	TargetDelta     *float64                `json:"target_delta"`
	WhatWorked      []string                `json:"what_worked"`
	TryNext         []string                `json:"try_next"`
}

func FactsFor(e Experiment) Facts {
	f := Facts{
		Alignment:       e.Outcome.Alignment,
		ConfidenceScore: e.Outcome.ConfidenceScore,
		ConfidenceLabel: e.Outcome.ConfidenceLabel,
		TargetMetric:    e.TargetMetric,
		WhatWorked:      e.Outcome.WhatWorked,
		TryNext:         e.Outcome.TryNext,
	}
	if stats, ok := e.Outcome.Stats(e.TargetMetric); ok {
		f.TargetDelta = stats.Delta
	}
	return f
}

// Tone is the register a conclusion is written in.
type Tone string

const (
	ToneDecisive Tone = "decisive"
	ToneBalanced Tone = "balanced"
	ToneHedged   Tone = "hedged"
)

func ToneFor(label ConfidenceLabel) Tone {
	switch label {
	case ConfidenceHigh:
		return ToneDecisive
	case ConfidenceMedium:
		return ToneBalanced
	}
	return ToneHedged
}

// TemplateConclusion phrases facts without any external call.
func TemplateConclusion(f Facts) string {
	metric := strings.ToLower(f.TargetMetric.Meta().Label)
	if metric == "" {
		metric = string(f.TargetMetric)
	}
	move := "barely moved"
	if f.TargetDelta != nil {
		move = fmt.Sprintf("moved %s", FormatDelta(f.TargetDelta, f.TargetMetric.Meta().Unit))
	}

	var sentence string
	switch ToneFor(f.ConfidenceLabel) {
	case ToneDecisive:
		switch f.Alignment {
		case AlignmentAligned:
			sentence = fmt.Sprintf("Your %s %s and it matched how you felt, so keep this lever", metric, move)
		case AlignmentMismatch:
			sentence = fmt.Sprintf("Your %s %s but that clashes with how you felt, so recheck what changed", metric, move)
		default:
			sentence = fmt.Sprintf("Your %s %s with solid data, yet your own read is still open", metric, move)
		}
	case ToneBalanced:
		switch f.Alignment {
		case AlignmentAligned:
			sentence = fmt.Sprintf("Your %s %s and it likely helped, so another round should confirm it", metric, move)
		case AlignmentMismatch:
			sentence = fmt.Sprintf("Your %s %s but it may not match your experience, so give it another week", metric, move)
		default:
			sentence = fmt.Sprintf("Your %s %s, which may point somewhere, so keep observing", metric, move)
		}
	default:
		sentence = fmt.Sprintf("It is too early to tell: your %s %s on limited data", metric, move)
	}
	if len(f.TryNext) > 0 && ToneFor(f.ConfidenceLabel) != ToneHedged {
		if next := strings.TrimSpace(f.TryNext[0]); next != "" && len(strings.Fields(sentence))+len(strings.Fields(next)) < MaxConclusionWords {
			sentence += "; next: " + strings.TrimSuffix(next, ".")
		}
	}
	return sentence + "."
}

// SanitizeConclusion keeps the first sentence of raw and rejects empty or
// overlong output.
func SanitizeConclusion(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, "\"'` ")
	for i := 0; i < len(s)-1; i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') && s[i+1] == ' ' {
			s = s[:i+1]
			break
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyConclusion
	}
	if n := len(strings.Fields(s)); n > MaxConclusionWords {
		return "", fmt.Errorf("%w: %d words", ErrVerboseConclusion, n)
	}
	return s, nil
}

// FormatDelta renders a rounded signed delta with its unit, or "n/a".
func FormatDelta(delta *float64, unit string) string {
	if delta == nil {
		return "n/a"
	}
	v := Round1(*delta)
	sign := ""
	if v > 0 {
		sign = "+"
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return fmt.Sprintf("%s%.1f%s", sign, v, unit)
}
