package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
)

func f(v float64) *float64 { return &v }

func rowsOf(start day.Date, key checkindomain.MetricKey, values ...float64) []checkindomain.DailyMetricRow {
	rows := make([]checkindomain.DailyMetricRow, 0, len(values))
	for i, v := range values {
		row := checkindomain.NewRow("u1", start.AddDays(i))
		row.Values[key] = v
		rows = append(rows, row)
	}
	return rows
}

func TestComputeWindowsScenario(t *testing.T) {
	t.Parallel()
	w, err := ComputeWindows(day.MustParse("2024-03-10"), 7, day.MustParse("2024-03-17"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", w.Baseline.Start.String())
	assert.Equal(t, "2024-03-09", w.Baseline.End.String())
	assert.Equal(t, 7, w.Baseline.Days)
	assert.Equal(t, "2024-03-10", w.Treatment.Start.String())
	assert.Equal(t, "2024-03-17", w.Treatment.End.String())
	assert.Equal(t, 8, w.Treatment.Days)

	same, err := ComputeWindows(day.MustParse("2024-03-10"), 7, day.MustParse("2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, same.Treatment.Days)

	_, err = ComputeWindows(day.MustParse("2024-03-10"), 7, day.MustParse("2024-03-09"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestMeanAndDeltaNilRules(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Mean(nil))
	require.NotNil(t, Mean([]float64{1, 2, 6}))
	assert.InDelta(t, 3.0, *Mean([]float64{1, 2, 6}), 1e-9)

	assert.Nil(t, Delta(nil, f(1)))
	assert.Nil(t, Delta(f(1), nil))
	assert.InDelta(t, -0.5, *Delta(f(3), f(2.5)), 1e-9)

	assert.Nil(t, StdDev([]float64{4}))
	assert.InDelta(t, 1.0, *StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestSignalNeedsFourPointsOnBothSides(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()
	start := day.MustParse("2024-03-01")
	baseline := rowsOf(start, checkindomain.Mood, 2, 2, 2)
	treatment := rowsOf(start.AddDays(10), checkindomain.Mood, 4, 4, 4, 4, 4)

	stats := ComputeMetricStats(checkindomain.Mood, baseline, treatment, th)
	require.NotNil(t, stats.Delta)
	assert.InDelta(t, 2.0, *stats.Delta, 1e-9)
	assert.Equal(t, 3, stats.NBaseline)
	assert.False(t, stats.Signal)

	baseline = rowsOf(start, checkindomain.Mood, 3, 3, 3, 3)
	treatment = rowsOf(start.AddDays(10), checkindomain.Mood, 3.2, 3.2, 3.2, 3.2)
	stats = ComputeMetricStats(checkindomain.Mood, baseline, treatment, th)
	assert.True(t, stats.Signal, "0.2 raw delta reaches the threshold")

	empty := ComputeMetricStats(checkindomain.Steps, baseline, treatment, th)
	assert.Nil(t, empty.MeanBaseline)
	assert.Nil(t, empty.Delta)
	assert.False(t, empty.Signal)
	assert.Len(t, ComputeAllStats(baseline, treatment, th), len(checkindomain.AllMetrics()))
}

func TestAlignmentTruthTable(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()
	up := MetricStats{Key: checkindomain.Mood, DirectionGood: checkindomain.Up, Delta: f(0.5), NBaseline: 10, NTreatment: 5}
	small := MetricStats{Key: checkindomain.Mood, DirectionGood: checkindomain.Up, Delta: f(0.05), NBaseline: 10, NTreatment: 5}
	stressDown := MetricStats{Key: checkindomain.Stress, DirectionGood: checkindomain.Down, Delta: f(-0.5), NBaseline: 10, NTreatment: 5}
	steadier := small
	steadier.VolDeltaPct = f(-12)
	conflicting := up
	conflicting.VolDeltaPct = f(40)

	cases := []struct {
		name   string
		target MetricStats
		rating Rating
		want   Alignment
	}{
		{"improved and felt better", up, RatingSlightlyBetter, AlignmentAligned},
		{"improved but felt worse", up, RatingWorse, AlignmentMismatch},
		{"small delta", small, RatingSlightlyBetter, AlignmentUnclear},
		{"small delta worse", small, RatingWorse, AlignmentUnclear},
		{"neutral rating", up, RatingNoChange, AlignmentUnclear},
		{"hard to maintain", up, RatingHardToMaintain, AlignmentUnclear},
		{"no rating", up, "", AlignmentUnclear},
		{"lower stress is good", stressDown, RatingMoreStable, AlignmentAligned},
		{"variability decides below threshold", steadier, RatingMoreStable, AlignmentAligned},
		{"mean verdict wins over variability", conflicting, RatingSlightlyBetter, AlignmentAligned},
	}
	for _, tc := range cases {
		got := Evaluate(tc.target, tc.rating, th).Alignment
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestConfidenceScoreAndLabels(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()
	assert.Equal(t, 0.25, ConfidenceScore(MetricStats{Delta: f(2), NBaseline: 3, NTreatment: 9}, th))
	assert.Equal(t, 0.8, ConfidenceScore(MetricStats{Delta: f(-0.7), NBaseline: 4, NTreatment: 4}, th))
	assert.Equal(t, 0.65, ConfidenceScore(MetricStats{Delta: f(0.3), NBaseline: 4, NTreatment: 4}, th))
	assert.Equal(t, 0.5, ConfidenceScore(MetricStats{Delta: f(0.1), NBaseline: 4, NTreatment: 4}, th))

	assert.Equal(t, ConfidenceHigh, LabelFor(0.8))
	assert.Equal(t, "strong", LabelFor(0.8).Legacy())
	assert.Equal(t, ConfidenceMedium, LabelFor(0.6))
	assert.Equal(t, "moderate", LabelFor(0.6).Legacy())
	assert.Equal(t, ConfidenceLow, LabelFor(0.3))

	pill := SummaryPill(AlignmentAligned, ConfidenceHigh)
	assert.Equal(t, "good", pill.Tone)
	assert.Equal(t, "Aligned • high confidence", pill.Text)
	assert.Equal(t, "neutral", SummaryPill(AlignmentUnclear, ConfidenceLow).Tone)
}

func TestSufficiencyReportsShortfall(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()
	ok := EvaluateSufficiency(Sample{BaselineRows: 10, TreatmentRows: 4}, th)
	assert.True(t, ok.OK)

	short := EvaluateSufficiency(Sample{BaselineRows: 6, TreatmentRows: 2}, th)
	assert.False(t, short.OK)
	assert.Equal(t, ReasonInsufficientData, short.Reason)
	assert.Equal(t, 4, short.BaselineShortfall)
	assert.Equal(t, 2, short.TreatmentShortfall)
}

func TestCleanBulletsAndNotes(t *testing.T) {
	t.Parallel()
	in := []string{"  walk early ", "", "   "}
	for i := 0; i < 15; i++ {
		in = append(in, "x")
	}
	cleaned := CleanBullets(in, 10)
	assert.Len(t, cleaned, 10)
	assert.Equal(t, "walk early", cleaned[0])

	o := Outcome{WhatWorked: []string{"kept"}, TryNext: []string{"old"}}
	o = o.ApplyNotes(NotesUpdate{TryNext: []string{" new "}}, 10)
	assert.Equal(t, []string{"kept"}, o.WhatWorked)
	assert.Equal(t, []string{"new"}, o.TryNext)
	o = o.ApplyNotes(NotesUpdate{TryNext: []string{}}, 10)
	assert.Empty(t, o.TryNext)
}

func TestGuards(t *testing.T) {
	t.Parallel()
	e := Experiment{Status: StatusActive}
	require.NoError(t, e.GuardEnd())
	require.NoError(t, e.GuardReview())
	pre, _ := apperrors.PreconditionOf(e.GuardResume())
	assert.Equal(t, apperrors.PreconditionNotEnded, pre)

	e.EndDate = day.MustParse("2024-03-17")
	require.NoError(t, e.GuardResume(), "legacy active with end date")

	e.Status = StatusEndedPendingReview
	pre, _ = apperrors.PreconditionOf(e.GuardFinalize())
	assert.Equal(t, apperrors.PreconditionMissingWindows, pre)

	for _, status := range []Status{StatusCompleted, StatusAbandoned} {
		done := Experiment{Status: status, EndDate: e.EndDate}
		assert.True(t, errors.Is(done.GuardResume(), apperrors.ErrConflict))
		assert.True(t, errors.Is(done.GuardReview(), apperrors.ErrConflict))
		assert.True(t, errors.Is(done.GuardEnd(), apperrors.ErrConflict))
	}
}

func TestNormalizeLeverRef(t *testing.T) {
	t.Parallel()
	ref, err := NormalizeLeverRef(LeverMetric, "sleep_hours")
	require.NoError(t, err)
	assert.Equal(t, "sleep_hours", ref)

	_, err = NormalizeLeverRef(LeverMetric, "caffeine")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	ref, err = NormalizeLeverRef(LeverHabit, "Evening Walk")
	require.NoError(t, err)
	assert.Equal(t, "evening_walk", ref)

	_, err = NormalizeLeverRef(LeverHabit, "  ")
	assert.Error(t, err)

	ref, err = NormalizeLeverRef(LeverCustom, " anything goes ")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", ref)
}

func TestSanitizeConclusion(t *testing.T) {
	t.Parallel()
	got, err := SanitizeConclusion("\"Sleep rose by 0.6h. Keep going!\"\nSecond line")
	require.NoError(t, err)
	assert.Equal(t, "Sleep rose by 0.6h.", got)

	exact, err := SanitizeConclusion(strings.TrimSpace(strings.Repeat("word ", MaxConclusionWords)))
	require.NoError(t, err)
	assert.Len(t, strings.Fields(exact), 22)

	_, err = SanitizeConclusion("   ")
	assert.ErrorIs(t, err, ErrEmptyConclusion)

	_, err = SanitizeConclusion(strings.Repeat("word ", MaxConclusionWords+1))
	assert.ErrorIs(t, err, ErrVerboseConclusion)
}

func TestTemplateConclusionVariesWithConfidence(t *testing.T) {
	t.Parallel()
	base := Facts{Alignment: AlignmentAligned, TargetMetric: checkindomain.SleepHours, TargetDelta: f(0.64)}

	high := base
	high.ConfidenceLabel = ConfidenceHigh
	low := base
	low.ConfidenceLabel = ConfidenceLow

	decisive := TemplateConclusion(high)
	hedged := TemplateConclusion(low)
	assert.Contains(t, decisive, "+0.6h")
	assert.Contains(t, decisive, "keep this lever")
	assert.Contains(t, hedged, "too early")
	assert.NotEqual(t, decisive, hedged)

	for _, s := range []string{decisive, hedged} {
		clean, err := SanitizeConclusion(s)
		require.NoError(t, err)
		assert.Equal(t, s, clean)
	}
}

func TestSummarizeLevers(t *testing.T) {
	t.Parallel()
	usage := SummarizeLevers([]Experiment{
		{LeverRef: "evening_walk", Status: StatusCompleted, StartDate: day.MustParse("2024-01-01"), EndDate: day.MustParse("2024-01-08"), Outcome: Outcome{Sample: &Sample{TreatmentRows: 6}}},
		{LeverRef: "evening_walk", Status: StatusAbandoned, StartDate: day.MustParse("2024-02-01"), EndDate: day.MustParse("2024-02-03"), Outcome: Outcome{Sample: &Sample{TreatmentRows: 9}}},
		{LeverRef: "sleep_hours", Status: StatusActive, StartDate: day.MustParse("2024-03-01")},
	})
	assert.Equal(t, "sleep_hours", usage.ActiveLeverRef)
	assert.Equal(t, "2024-02-03", usage.LastUsed["evening_walk"].String())
	assert.Equal(t, 6, usage.MaxExperimentRows)
}

func TestSummarizeEffects(t *testing.T) {
	t.Parallel()
	ended := func(leverType LeverType, ref string, status Status, sleep, stress float64) Experiment {
		return Experiment{
			LeverType: leverType, LeverRef: ref, TargetMetric: checkindomain.SleepHours, Status: status,
			Outcome: Outcome{MethodVersion: MethodVersion, Metrics: []MetricStats{
				{Key: checkindomain.SleepHours, DirectionGood: checkindomain.Up, Delta: f(sleep)},
				{Key: checkindomain.Stress, DirectionGood: checkindomain.Down, Delta: f(stress)},
			}},
		}
	}
	list := []Experiment{
		ended(LeverHabit, "walk", StatusCompleted, 0.5, -1),
		ended(LeverHabit, "read", StatusEndedPendingReview, -0.25, 0.5),
		ended(LeverMetric, "steps", StatusAbandoned, 1, -0.5),
		{LeverType: LeverHabit, LeverRef: "walk", TargetMetric: checkindomain.SleepHours, Status: StatusActive},
		{LeverType: LeverHabit, LeverRef: "nap", TargetMetric: checkindomain.SleepHours, Status: StatusCompleted,
			Outcome: Outcome{MethodVersion: MethodVersion + 1, Metrics: []MetricStats{{Key: checkindomain.SleepHours, Delta: f(9)}}}},
	}

	byType := SummarizeEffects(list, GroupByLeverType, checkindomain.SleepHours)
	require.Len(t, byType, 2)
	assert.Equal(t, LeverEffect{Group: "metric", TargetMetric: checkindomain.SleepHours, MetricKey: checkindomain.SleepHours,
		N: 1, AvgDelta: 1, ImprovedCount: 1, ImprovedRate: 100, Confidence: ConfidenceLow}, byType[0])
	assert.Equal(t, "habit", byType[1].Group)
	assert.Equal(t, 2, byType[1].N)
	assert.InDelta(t, 0.13, byType[1].AvgDelta, 1e-9)
	assert.Equal(t, 50, byType[1].ImprovedRate)

	// lower stress counts as improvement
	stress := SummarizeEffects(list, GroupByLeverRef, checkindomain.Stress)
	require.Len(t, stress, 3)
	assert.Equal(t, []string{"walk", "steps", "read"}, []string{stress[0].Group, stress[1].Group, stress[2].Group})
	assert.Equal(t, 0, stress[2].ImprovedCount)

	assert.Len(t, SummarizeEffects(list, GroupByLeverRef, ""), 6)

	g, err := ParseLeverGrouping("")
	require.NoError(t, err)
	assert.Equal(t, GroupByLeverType, g)
	_, err = ParseLeverGrouping("title")
	assert.Error(t, err)
}
