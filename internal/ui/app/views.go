package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	experimentdto "leverlab/internal/modules/experiment/dto"
	focusdto "leverlab/internal/modules/focus/dto"
	"leverlab/internal/ui/theme"
)

func renderToday(active *experimentdto.ExperimentOutput, preview *experimentdto.PreviewOutput) string {
	var b strings.Builder
	if active == nil {
		b.WriteString(theme.Title.Render("No active experiment") + "\n")
		b.WriteString(theme.Muted.Render("Pick one from Next focus with 1 or 2."))
		return b.String()
	}
	b.WriteString(theme.Title.Render(active.Title) + "\n")
	fmt.Fprintf(&b, "%s  lever %s → %s\n", theme.Muted.Render("since "+active.StartDate), active.LeverLabel, active.TargetMetric)
	if active.Hypothesis != "" {
		b.WriteString(theme.Muted.Render(active.Hypothesis) + "\n")
	}
	if preview == nil {
		return b.String()
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "baseline %s..%s (%d rows)   so far %s..%s (%d rows)\n",
		preview.Windows.Baseline.Start, preview.Windows.Baseline.End, preview.Sample.BaselineRows,
		preview.Windows.Treatment.Start, preview.Windows.Treatment.End, preview.Sample.TreatmentRows)
	if !preview.Sufficiency.OK {
		b.WriteString(theme.Hot.Render("not enough data yet: "+preview.Sufficiency.Reason) + "\n")
	}
	b.WriteString(pill(preview.Pill) + "\n\n")
	b.WriteString(metricTable(preview.Target, preview.Others))
	return b.String()
}

func renderFocus(next focusdto.NextOutput) string {
	var b strings.Builder
	if len(next.Options) == 0 {
		return theme.Muted.Render("No suggestions yet.")
	}
	header := fmt.Sprintf("Week %s · %s mode", next.WeekKey, next.Mode)
	if next.Cached {
		header += " · cached"
	}
	b.WriteString(theme.Title.Render(header) + "\n")
	if len(next.Reasons) > 0 {
		b.WriteString(theme.Muted.Render(strings.Join(next.Reasons, ", ")) + "\n")
	}
	for i, o := range next.Options {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s\n", theme.Hot.Render(fmt.Sprintf("[%d]", i+1)), o.Title)
		fmt.Fprintf(&b, "    %s effort · %s impact · %d days · %s confidence\n",
			o.Preset.Effort, o.Preset.Impact, o.Preset.RecommendedDays, o.Confidence)
		for _, w := range o.Why {
			b.WriteString(theme.Muted.Render("    · "+w) + "\n")
		}
	}
	return b.String()
}

func renderHistory(list []experimentdto.ExperimentOutput, cursor int) string {
	if len(list) == 0 {
		return theme.Muted.Render("No experiments yet.")
	}
	var b strings.Builder
	for i, e := range list {
		line := fmt.Sprintf("%-10s  %-16s  %s", e.StartDate, e.Status, e.Title)
		if e.Outcome.Alignment != "" {
			line += theme.Muted.Render("  " + e.Outcome.Alignment)
		}
		if i == cursor {
			line = theme.Hot.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func renderReviewSummary(view experimentdto.ReviewViewOutput) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(view.Experiment.Title) + "\n")
	fmt.Fprintf(&b, "%s  %s\n\n", pill(view.Pill), theme.Muted.Render(view.Experiment.Status))
	b.WriteString(metricTable(view.Target, view.Others))
	return b.String()
}

// reviewMarkdown is the narrative half of a review, rendered through glamour.
func reviewMarkdown(view experimentdto.ReviewViewOutput) string {
	var b strings.Builder
	if view.Conclusion != "" {
		b.WriteString("## Conclusion\n\n" + view.Conclusion + "\n")
	}
	writeList(&b, "What worked", view.WhatWorked)
	writeList(&b, "Try next", view.TryNext)
	return b.String()
}

func metricTable(target experimentdto.MetricView, others []experimentdto.MetricView) string {
	rows := []string{metricRow(target, true)}
	for _, o := range others {
		rows = append(rows, metricRow(o, false))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func metricRow(v experimentdto.MetricView, target bool) string {
	label := v.Label
	if target {
		label = theme.Title.Render(label)
	}
	delta := v.DeltaText
	if v.IsImprovement != nil && v.IsSignal {
		if *v.IsImprovement {
			delta = theme.Better.Render(delta)
		} else {
			delta = theme.Worse.Render(delta)
		}
	}
	return fmt.Sprintf("%-18s %6s → %-6s %s", label, avg(v.BaselineAvg), avg(v.TreatmentAvg), delta)
}

func avg(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func pill(p experimentdto.PillOutput) string {
	style := theme.Muted
	switch p.Tone {
	case "good":
		style = theme.Better
	case "bad":
		style = theme.Worse
	}
	return style.Render(p.Text)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n## " + title + "\n\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
}
