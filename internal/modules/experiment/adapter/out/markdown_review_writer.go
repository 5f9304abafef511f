package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/markdown"
	"leverlab/internal/platform/slug"
)

const reviewBlock = "review"

// MarkdownReviewWriter renders finalized reviews as notes under a directory.
// Text outside the managed block survives a rewrite.
type MarkdownReviewWriter struct {
	dir string
}

func NewMarkdownReviewWriter(dir string) experimentout.ReviewNoteWriter {
	return &MarkdownReviewWriter{dir: dir}
}

func (w *MarkdownReviewWriter) WriteReview(_ context.Context, e domain.Experiment, r domain.Review) (string, error) {
	dir := filepath.Join(w.dir, e.StartDate.Time().Format("2006"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create review dir: %w", err)
	}
	shortID := e.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.md", e.StartDate, slug.Make(e.Title), shortID))

	note := markdown.Note{Meta: map[string]any{}, Body: fmt.Sprintf("# %s\n\n", e.Title)}
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if note, err = markdown.Parse(string(existing)); err != nil {
			return "", err
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read review note: %w", err)
	}

	note.Meta["experiment_id"] = e.ID
	note.Meta["lever"] = e.LeverRef
	note.Meta["target_metric"] = string(e.TargetMetric)
	note.Meta["start_date"] = e.StartDate.String()
	note.Meta["end_date"] = e.EndDate.String()
	note.Meta["rating"] = string(r.Rating)
	note.Meta["alignment"] = string(r.Alignment)
	note.Meta["confidence"] = string(r.ConfidenceLabel)
	note.Meta["method_version"] = domain.MethodVersion

	note.SetBlock(reviewBlock, renderReview(e, r))
	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write review note: %w", err)
	}
	return path, nil
}

func renderReview(e domain.Experiment, r domain.Review) string {
	lines := []string{
		fmt.Sprintf("Lever: %s (%s)", domain.LeverLabel(e.LeverRef), e.LeverType),
		fmt.Sprintf("Baseline: %s to %s, treatment: %s to %s",
			r.Windows.Baseline.Start, r.Windows.Baseline.End, r.Windows.Treatment.Start, r.Windows.Treatment.End),
		fmt.Sprintf("Rows: %d baseline, %d treatment", r.Sample.BaselineRows, r.Sample.TreatmentRows),
		"",
		"| Metric | Baseline | Treatment | Delta |",
		"| --- | --- | --- | --- |",
	}
	for _, m := range r.Metrics {
		meta := m.Key.Meta()
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |",
			m.Key.DisplayLabel(), formatMean(m.MeanBaseline), formatMean(m.MeanTreatment), domain.FormatDelta(m.Delta, meta.Unit)))
	}
	if r.Conclusion != "" {
		lines = append(lines, "", "> "+r.Conclusion)
	}
	if len(r.WhatWorked) > 0 {
		lines = append(lines, "", "## What worked")
		for _, b := range r.WhatWorked {
			lines = append(lines, "- "+b)
		}
	}
	if len(r.TryNext) > 0 {
		lines = append(lines, "", "## Try next")
		for _, b := range r.TryNext {
			lines = append(lines, "- "+b)
		}
	}
	return strings.Join(lines, "\n")
}

func formatMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", domain.Round1(*v))
}
