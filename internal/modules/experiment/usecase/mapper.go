package usecase

import (
	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/experiment/domain"
	experimentdto "leverlab/internal/modules/experiment/dto"
)

// reviewOrder lists the metrics shown first after the target.
var reviewOrder = []checkindomain.MetricKey{
	checkindomain.SleepHours,
	checkindomain.Mood,
	checkindomain.Energy,
	checkindomain.Stress,
}

func toExperimentOutput(e domain.Experiment) experimentdto.ExperimentOutput {
	return experimentdto.ExperimentOutput{
		ID:               e.ID,
		UserID:           e.UserID,
		Title:            e.Title,
		Hypothesis:       e.Hypothesis,
		LeverType:        string(e.LeverType),
		LeverRef:         e.LeverRef,
		LeverLabel:       domain.LeverLabel(e.LeverRef),
		TargetMetric:     string(e.TargetMetric),
		StartDate:        e.StartDate.String(),
		EndDate:          e.EndDate.String(),
		BaselineDays:     e.BaselineDays,
		RecommendedDays:  e.RecommendedDays,
		Effort:           string(e.Effort),
		Impact:           string(e.Impact),
		StatedConfidence: string(e.StatedConfidence),
		Status:           string(e.Status),
		Outcome:          toOutcomeOutput(e.Outcome),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toOutcomeOutput(o domain.Outcome) experimentdto.OutcomeOutput {
	out := experimentdto.OutcomeOutput{
		Alignment:       string(o.Alignment),
		ConfidenceScore: o.ConfidenceScore,
		ConfidenceLabel: string(o.ConfidenceLabel),
		Rating:          string(o.Rating),
		WhatWorked:      o.WhatWorked,
		TryNext:         o.TryNext,
		Conclusion:      o.Conclusion,
	}
	if o.ConfidenceLabel != "" {
		out.LegacyConfidence = o.ConfidenceLabel.Legacy()
	}
	if o.Windows != nil {
		w := toWindowsOutput(*o.Windows)
		out.Windows = &w
	}
	if o.Sample != nil {
		s := toSampleOutput(*o.Sample)
		out.Sample = &s
	}
	if o.Sufficiency != nil {
		s := toSufficiencyOutput(*o.Sufficiency)
		out.Sufficiency = &s
	}
	return out
}

func toWindowsOutput(w domain.Windows) experimentdto.WindowsOutput {
	return experimentdto.WindowsOutput{
		Baseline:  experimentdto.WindowOutput{Start: w.Baseline.Start.String(), End: w.Baseline.End.String(), Days: w.Baseline.Days},
		Treatment: experimentdto.WindowOutput{Start: w.Treatment.Start.String(), End: w.Treatment.End.String(), Days: w.Treatment.Days},
	}
}

func toSampleOutput(s domain.Sample) experimentdto.SampleOutput {
	return experimentdto.SampleOutput{BaselineRows: s.BaselineRows, TreatmentRows: s.TreatmentRows, BaselineDays: s.BaselineDays}
}

func toSufficiencyOutput(s domain.Sufficiency) experimentdto.SufficiencyOutput {
	return experimentdto.SufficiencyOutput{
		OK:                 s.OK,
		Reason:             s.Reason,
		BaselineShortfall:  s.BaselineShortfall,
		TreatmentShortfall: s.TreatmentShortfall,
		MinBaselineRows:    s.MinBaselineRows,
		MinTreatmentRows:   s.MinTreatmentRows,
	}
}

func rounded(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := domain.Round1(*v)
	return &r
}

func toMetricView(m domain.MetricStats) experimentdto.MetricView {
	meta := m.Key.Meta()
	view := experimentdto.MetricView{
		Key:           string(m.Key),
		Label:         meta.Label,
		Unit:          meta.Unit,
		DirectionGood: string(m.Key.Good()),
		BaselineAvg:   rounded(m.MeanBaseline),
		TreatmentAvg:  rounded(m.MeanTreatment),
		Delta:         rounded(m.Delta),
		DeltaText:     domain.FormatDelta(m.Delta, meta.Unit),
		NBaseline:     m.NBaseline,
		NTreatment:    m.NTreatment,
		IsSignal:      m.Signal,
	}
	if m.Signal {
		view.IsImprovement = m.Improvement()
	}
	return view
}

// metricViews splits stats into the target view and the others in review
// order. A metric with no stats still gets an empty view.
func metricViews(target checkindomain.MetricKey, stats []domain.MetricStats) (experimentdto.MetricView, []experimentdto.MetricView) {
	byKey := make(map[checkindomain.MetricKey]domain.MetricStats, len(stats))
	for _, s := range stats {
		byKey[s.Key] = s
	}
	viewOf := func(key checkindomain.MetricKey) experimentdto.MetricView {
		s, ok := byKey[key]
		if !ok {
			s = domain.MetricStats{Key: key, DirectionGood: key.Good()}
		}
		return toMetricView(s)
	}

	seen := map[checkindomain.MetricKey]bool{target: true}
	others := []experimentdto.MetricView{}
	for _, key := range reviewOrder {
		if !seen[key] {
			seen[key] = true
			others = append(others, viewOf(key))
		}
	}
	for _, s := range stats {
		if !seen[s.Key] {
			seen[s.Key] = true
			others = append(others, toMetricView(s))
		}
	}
	return viewOf(target), others
}

func toReviewOutput(r domain.Review) experimentdto.ReviewOutput {
	views := make([]experimentdto.MetricView, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		views = append(views, toMetricView(m))
	}
	return experimentdto.ReviewOutput{
		ExperimentID:     r.ExperimentID,
		Rating:           string(r.Rating),
		Alignment:        string(r.Alignment),
		ConfidenceScore:  r.ConfidenceScore,
		ConfidenceLabel:  string(r.ConfidenceLabel),
		LegacyConfidence: r.ConfidenceLabel.Legacy(),
		Windows:          toWindowsOutput(r.Windows),
		Sample:           toSampleOutput(r.Sample),
		Metrics:          views,
		WhatWorked:       r.WhatWorked,
		TryNext:          r.TryNext,
		Conclusion:       r.Conclusion,
		CreatedAt:        r.CreatedAt,
	}
}

func toPill(p domain.Pill) experimentdto.PillOutput {
	return experimentdto.PillOutput{Tone: p.Tone, Text: p.Text}
}

func toLeverEffectOutput(e domain.LeverEffect) experimentdto.LeverEffectOutput {
	return experimentdto.LeverEffectOutput{
		Group:         e.Group,
		TargetMetric:  string(e.TargetMetric),
		MetricKey:     string(e.MetricKey),
		N:             e.N,
		AvgDelta:      e.AvgDelta,
		ImprovedCount: e.ImprovedCount,
		ImprovedRate:  e.ImprovedRate,
		Confidence:    string(e.Confidence),
	}
}
