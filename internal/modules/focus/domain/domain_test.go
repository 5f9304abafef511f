package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkindomain "leverlab/internal/modules/checkin/domain"
	experimentdomain "leverlab/internal/modules/experiment/domain"
	"leverlab/internal/platform/day"
)

var now = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

func weekRows(start day.Date, days int, values map[checkindomain.MetricKey]float64) []checkindomain.DailyMetricRow {
	rows := make([]checkindomain.DailyMetricRow, 0, days)
	for i := 0; i < days; i++ {
		row := checkindomain.NewRow("u1", start.AddDays(i))
		row = row.Merge(values)
		rows = append(rows, row)
	}
	return rows
}

func driftFixture() []checkindomain.DailyMetricRow {
	prev := weekRows(day.MustParse("2024-03-01"), 7, map[checkindomain.MetricKey]float64{
		checkindomain.SleepHours: 6, checkindomain.Mood: 3, checkindomain.Stress: 3,
	})
	last := weekRows(day.MustParse("2024-03-08"), 7, map[checkindomain.MetricKey]float64{
		checkindomain.SleepHours: 7.5, checkindomain.Mood: 2.5, checkindomain.Stress: 3,
	})
	// Outside the window, must be ignored.
	stale := weekRows(day.MustParse("2024-02-20"), 3, map[checkindomain.MetricKey]float64{
		checkindomain.Energy: 1,
	})
	return append(append(prev, last...), stale...)
}

func levers(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Preset.LeverRef)
	}
	return out
}

func TestComputeDrift(t *testing.T) {
	t.Parallel()
	d := ComputeDrift(driftFixture(), day.MustParse("2024-03-14"))
	assert.Equal(t, "2024-03-01", d.Start.String())
	assert.Equal(t, "2024-03-14", d.End.String())
	assert.Equal(t, 1.5, d.Deltas[checkindomain.SleepHours])
	assert.Equal(t, -0.5, d.Deltas[checkindomain.Mood])
	assert.Equal(t, 0.0, d.Deltas[checkindomain.Stress])
	_, ok := d.Deltas[checkindomain.Energy]
	assert.False(t, ok, "energy has no values on either side")
	assert.Equal(t, checkindomain.SleepHours, d.Primary)

	empty := ComputeDrift(nil, day.MustParse("2024-03-14"))
	assert.Empty(t, empty.Deltas)
	assert.Equal(t, checkindomain.MetricKey(""), empty.Primary)
}

func TestDriftTiesKeepKeyOrder(t *testing.T) {
	t.Parallel()
	rows := append(
		weekRows(day.MustParse("2024-03-01"), 7, map[checkindomain.MetricKey]float64{checkindomain.Mood: 3, checkindomain.Energy: 3}),
		weekRows(day.MustParse("2024-03-08"), 7, map[checkindomain.MetricKey]float64{checkindomain.Mood: 4, checkindomain.Energy: 2})...,
	)
	d := ComputeDrift(rows, day.MustParse("2024-03-14"))
	assert.Equal(t, checkindomain.Mood, d.Primary)
}

func TestEvaluateGate(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()

	claim := EvaluateGate(4, 14, s)
	assert.Equal(t, ModeClaim, claim.Mode)
	assert.Equal(t, experimentdomain.ConfidenceHigh, claim.Label)
	assert.Empty(t, claim.Reasons)

	explore := EvaluateGate(3, 13, s)
	assert.Equal(t, ModeExplore, explore.Mode)
	assert.Equal(t, experimentdomain.ConfidenceLow, explore.Label)
	assert.Equal(t, []string{ReasonExperimentRows, ReasonCorrelationN}, explore.Reasons)

	assert.Equal(t, []string{ReasonCorrelationN}, EvaluateGate(10, 2, s).Reasons)
}

func TestNoveltyPenalty(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()
	cases := []struct {
		days  int
		known bool
		want  float64
	}{
		{-20, true, 0.35},
		{-1, true, 0.35},
		{0, true, 0.35},
		{14, true, 0.35},
		{15, true, 0.20},
		{30, true, 0.20},
		{60, true, 0.10},
		{61, true, 0},
		{3, false, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.NoveltyPenalty(tc.days, tc.known), "days=%d known=%v", tc.days, tc.known)
	}
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultSettings().Validate())
	bad := DefaultSettings()
	bad.Novelty = []NoveltyStep{{Days: 30, Penalty: 0.2}, {Days: 14, Penalty: 0.35}}
	assert.Error(t, bad.Validate())
	bad.Novelty = []NoveltyStep{{Days: 14, Penalty: 1}}
	assert.Error(t, bad.Validate())
}

func TestScore(t *testing.T) {
	t.Parallel()
	p := Preset{Impact: experimentdomain.LevelHigh, TargetMetric: checkindomain.Stress}
	assert.Equal(t, 0.72, Score(p, experimentdomain.ConfidenceLow, 0, checkindomain.SleepHours))
	assert.Equal(t, 1.44, Score(p, experimentdomain.ConfidenceHigh, 0, checkindomain.Stress))
	assert.Equal(t, 0.624, Score(p, experimentdomain.ConfidenceMedium, 0.35, checkindomain.Mood))

	low := Preset{Impact: experimentdomain.LevelLow, TargetMetric: checkindomain.Mood}
	assert.Equal(t, 0.51, Score(low, experimentdomain.ConfidenceLow, 0, ""))
}

func TestRankExploreWithoutHistory(t *testing.T) {
	t.Parallel()
	r := NewRanker(DefaultCatalog(), FallbackPool(), DefaultSettings())
	in := r.Rank(Signals{Date: day.MustParse("2024-03-14")}, now)

	assert.Equal(t, "2024-W11", in.WeekKey)
	assert.Equal(t, ModeExplore, in.Gate.Mode)
	require.Len(t, in.Options, OptionCount)

	a, b := in.Options[0], in.Options[1]
	assert.Equal(t, "sleep_hours", a.Preset.LeverRef, "lowest effort with the best score")
	assert.Equal(t, experimentdomain.LevelLow, a.Preset.Effort)
	assert.Equal(t, "2024-W11:energy:sleep_hours", a.ID)
	assert.Equal(t, "decompression_10m", b.Preset.LeverRef)
	assert.Equal(t, 0.72, b.Score)
	for _, o := range in.Options {
		assert.Equal(t, SourceRanked, o.Source)
		assert.Equal(t, experimentdomain.ConfidenceLow, o.Confidence)
		assert.Contains(t, o.Why, "Exploration mode while data is still sparse.")
	}
}

func TestRankExcludesActiveLever(t *testing.T) {
	t.Parallel()
	r := NewRanker(DefaultCatalog(), FallbackPool(), DefaultSettings())
	for _, active := range []string{"sleep_hours", "decompression_10m", "sleep_consistency", "outdoor_walk_20m", "gentle_movement"} {
		in := r.Rank(Signals{Date: day.MustParse("2024-03-14"), Usage: Usage{ActiveLeverRef: active}}, now)
		require.Len(t, in.Options, OptionCount, active)
		got := levers(in.Options)
		assert.NotContains(t, got, active)
		assert.NotEqual(t, got[0], got[1])
	}

	in := r.Rank(Signals{Date: day.MustParse("2024-03-14"), Usage: Usage{ActiveLeverRef: "sleep_hours"}}, now)
	assert.Equal(t, []string{"sleep_consistency", "decompression_10m"}, levers(in.Options))
}

func TestRankClaimUsesDriftAndNovelty(t *testing.T) {
	t.Parallel()
	date := day.MustParse("2024-03-14")
	r := NewRanker(DefaultCatalog(), FallbackPool(), DefaultSettings())
	in := r.Rank(Signals{
		Date:  date,
		Rows:  driftFixture(),
		CorrN: 20,
		Usage: Usage{
			MaxExperimentRows: 5,
			LastUsed:          map[string]day.Date{"sleep_consistency": date.AddDays(-10)},
		},
	}, now)

	assert.Equal(t, ModeClaim, in.Gate.Mode)
	assert.Equal(t, checkindomain.SleepHours, in.Drift.Primary)
	require.Len(t, in.Options, OptionCount)

	// sleep_consistency targets the drifting metric but was used ten days ago:
	// 1.0 * 1 * 0.65 * 1.2.
	// The energy lever scores 1.2 and has the same low effort.
	a, b := in.Options[0], in.Options[1]
	assert.Equal(t, "sleep_hours", a.Preset.LeverRef)
	assert.Equal(t, 1.2, a.Score)
	assert.Equal(t, "decompression_10m", b.Preset.LeverRef)
	assert.Equal(t, 1.2, b.Score)
	assert.Contains(t, a.Why, "Enough data for stronger claims.")

	alone := NewRanker(DefaultCatalog()[:1], nil, DefaultSettings()).Rank(Signals{
		Date: date, Rows: driftFixture(), CorrN: 20,
		Usage: Usage{MaxExperimentRows: 5, LastUsed: map[string]day.Date{"sleep_consistency": date.AddDays(-10)}},
	}, now)
	require.Len(t, alone.Options, 1)
	o := alone.Options[0]
	assert.Equal(t, 0.78, o.Score)
	assert.Equal(t, 0.35, o.Evidence.NoveltyPenalty)

	scheduled := NewRanker(DefaultCatalog()[:1], nil, DefaultSettings()).Rank(Signals{
		Date: date, Rows: driftFixture(), CorrN: 20,
		Usage: Usage{MaxExperimentRows: 5, LastUsed: map[string]day.Date{"sleep_consistency": date.AddDays(90)}},
	}, now)
	require.Len(t, scheduled.Options, 1)
	assert.Equal(t, 0.35, scheduled.Options[0].Evidence.NoveltyPenalty)
	assert.Equal(t, o.Score, scheduled.Options[0].Score)
	require.NotNil(t, o.Evidence.DriftDelta)
	assert.Equal(t, 1.5, *o.Evidence.DriftDelta)
	assert.Equal(t, []string{
		"Your sleep drifted the most this week, so prioritize it.",
		"Weekly change in sleep: +1.5",
		"You tried this lever recently.",
		"Enough data for stronger claims.",
	}, o.Why)
}

func TestRankFillsFromFallbackPool(t *testing.T) {
	t.Parallel()
	date := day.MustParse("2024-03-14")

	single := NewRanker(DefaultCatalog()[:1], FallbackPool(), DefaultSettings()).Rank(Signals{Date: date}, now)
	require.Len(t, single.Options, OptionCount)
	assert.Equal(t, SourceRanked, single.Options[0].Source)
	assert.Equal(t, SourceFallback, single.Options[1].Source)
	assert.Equal(t, "stress_downshift", single.Options[1].Preset.LeverRef)

	none := NewRanker(nil, FallbackPool(), DefaultSettings()).Rank(Signals{
		Date: date, Usage: Usage{ActiveLeverRef: "stress_downshift"},
	}, now)
	assert.Equal(t, []string{"water_liters", "outdoor_minutes"}, levers(none.Options))
}

func TestPresetValidate(t *testing.T) {
	t.Parallel()
	for _, p := range append(DefaultCatalog(), FallbackPool()...) {
		assert.NoError(t, p.Validate(), p.Title)
	}
	bad := DefaultCatalog()[0]
	bad.TargetMetric = "focus"
	assert.Error(t, bad.Validate())
	bad = DefaultCatalog()[0]
	bad.Effort = "extreme"
	assert.Error(t, bad.Validate())
}
