package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	checkindomain "leverlab/internal/modules/checkin/domain"
	experimentdomain "leverlab/internal/modules/experiment/domain"
	"leverlab/internal/platform/day"
)

// OptionCount is how many suggestions a ranking always yields.
const OptionCount = 2

type Source string

const (
	SourceRanked   Source = "ranked"
	SourceFallback Source = "fallback"
)

type Evidence struct {
	CorrN          int      `json:"corr_n"`
	ExperimentRows int      `json:"experiment_rows"`
	DriftDelta     *float64 `json:"drift_delta,omitempty"`
	NoveltyPenalty float64  `json:"novelty_penalty"`
}

// Option is one next-focus suggestion. Score only orders options.
type Option struct {
	ID         string                           `json:"id"`
	Title      string                           `json:"title"`
	Preset     Preset                           `json:"preset"`
	Why        []string                         `json:"why"`
	Confidence experimentdomain.ConfidenceLabel `json:"confidence"`
	Mode       Mode                             `json:"mode"`
	Score      float64                          `json:"score"`
	Evidence   Evidence                         `json:"evidence"`
	Source     Source                           `json:"source"`
}

// Usage is what the ranker knows about past experiments.
type Usage struct {
	ActiveLeverRef    string
	LastUsed          map[string]day.Date
	MaxExperimentRows int
}

// Signals are the inputs of one ranking.
type Signals struct {
	Date  day.Date
	Rows  []checkindomain.DailyMetricRow
	CorrN int
	Usage Usage
}

// Insight is a full ranking for one user and date.
type Insight struct {
	WeekKey        string    `json:"week_key"`
	Date           day.Date  `json:"date"`
	Drift          Drift     `json:"drift"`
	Gate           Gate      `json:"gate"`
	Options        []Option  `json:"options"`
	ActiveLeverRef string    `json:"active_lever_ref,omitempty"`
	ComputedAt     time.Time `json:"computed_at"`
}

func ImpactWeight(l experimentdomain.Level) float64 {
	switch l {
	case experimentdomain.LevelHigh:
		return 1.2
	case experimentdomain.LevelModerate:
		return 1.0
	case experimentdomain.LevelLow:
		return 0.85
	}
	return 0.9
}

func ConfidenceWeight(l experimentdomain.ConfidenceLabel) float64 {
	switch l {
	case experimentdomain.ConfidenceHigh:
		return 1
	case experimentdomain.ConfidenceMedium:
		return 0.8
	}
	return 0.6
}

func DriftWeight(target, primary checkindomain.MetricKey) float64 {
	if primary != "" && target == primary {
		return 1.2
	}
	return 1.0
}

func Score(p Preset, label experimentdomain.ConfidenceLabel, novelty float64, primary checkindomain.MetricKey) float64 {
	return round(ImpactWeight(p.Impact)*ConfidenceWeight(label)*(1-novelty)*DriftWeight(p.TargetMetric, primary), 4)
}

// Ranker turns signals into exactly two suggestions.
type Ranker struct {
	catalog  []Preset
	fallback []Preset
	settings Settings
}

func NewRanker(catalog, fallback []Preset, settings Settings) Ranker {
	norm := func(in []Preset) []Preset {
		out := make([]Preset, 0, len(in))
		for _, p := range in {
			out = append(out, p.WithDefaults())
		}
		return out
	}
	return Ranker{catalog: norm(catalog), fallback: norm(fallback), settings: settings}
}

func (r Ranker) Rank(sig Signals, now time.Time) Insight {
	drift := ComputeDrift(sig.Rows, sig.Date)
	gate := EvaluateGate(sig.Usage.MaxExperimentRows, sig.CorrN, r.settings)
	weekKey := sig.Date.ISOWeekKey()

	build := func(p Preset, source Source) Option {
		last, known := sig.Usage.LastUsed[p.LeverRef]
		novelty := r.settings.NoveltyPenalty(sig.Date.DaysSince(last), known)
		opt := Option{
			ID:         fmt.Sprintf("%s:%s:%s", weekKey, p.TargetMetric, p.LeverRef),
			Title:      p.Title,
			Preset:     p,
			Confidence: gate.Label,
			Mode:       gate.Mode,
			Score:      Score(p, gate.Label, novelty, drift.Primary),
			Evidence: Evidence{
				CorrN:          sig.CorrN,
				ExperimentRows: sig.Usage.MaxExperimentRows,
				NoveltyPenalty: novelty,
			},
			Source: source,
		}
		if delta, ok := drift.Deltas[p.TargetMetric]; ok {
			opt.Evidence.DriftDelta = &delta
		}
		opt.Why = why(opt, drift, gate)
		return opt
	}

	ranked := make([]Option, 0, len(r.catalog))
	for _, p := range r.catalog {
		if p.LeverRef == sig.Usage.ActiveLeverRef {
			continue
		}
		ranked = append(ranked, build(p, SourceRanked))
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	options := Select(ranked, sig.Usage.ActiveLeverRef)
	for _, p := range r.fallback {
		if len(options) == OptionCount {
			break
		}
		if p.LeverRef == sig.Usage.ActiveLeverRef || hasLever(options, p.LeverRef) {
			continue
		}
		options = append(options, build(p, SourceFallback))
	}

	return Insight{
		WeekKey:        weekKey,
		Date:           sig.Date,
		Drift:          drift,
		Gate:           gate,
		Options:        options,
		ActiveLeverRef: sig.Usage.ActiveLeverRef,
		ComputedAt:     now,
	}
}

// Select picks option A as the lowest-effort candidate and option B as the
// best-scoring one on another lever. ranked must be ordered by score with
// catalog order for ties.
func Select(ranked []Option, activeLever string) []Option {
	out := make([]Option, 0, OptionCount)
	a := -1
	for i, o := range ranked {
		if o.Preset.LeverRef == activeLever {
			continue
		}
		if a < 0 || effortRank(o.Preset.Effort) < effortRank(ranked[a].Preset.Effort) {
			a = i
		}
	}
	if a < 0 {
		return out
	}
	out = append(out, ranked[a])
	for _, o := range ranked {
		if o.Preset.LeverRef != activeLever && !hasLever(out, o.Preset.LeverRef) {
			out = append(out, o)
			break
		}
	}
	return out
}

func hasLever(opts []Option, ref string) bool {
	for _, o := range opts {
		if o.Preset.LeverRef == ref {
			return true
		}
	}
	return false
}

func why(o Option, drift Drift, gate Gate) []string {
	target := o.Preset.TargetMetric
	label := strings.ToLower(target.Meta().Label)
	lines := []string{}
	if drift.Primary != "" && target == drift.Primary {
		if gate.Mode == ModeClaim {
			lines = append(lines, fmt.Sprintf("Your %s drifted the most this week, so prioritize it.", label))
		} else {
			lines = append(lines, fmt.Sprintf("Your %s moved the most this week; it may be worth a look.", label))
		}
	}
	if o.Evidence.DriftDelta != nil {
		lines = append(lines, fmt.Sprintf("Weekly change in %s: %s", label, signed(*o.Evidence.DriftDelta)))
	}
	if o.Evidence.NoveltyPenalty > 0 {
		lines = append(lines, "You tried this lever recently.")
	}
	if gate.Mode == ModeClaim {
		lines = append(lines, "Enough data for stronger claims.")
	} else {
		lines = append(lines, "Exploration mode while data is still sparse.")
	}
	return lines
}

func signed(v float64) string {
	s := fmt.Sprintf("%g", v)
	if v > 0 {
		return "+" + s
	}
	return s
}
