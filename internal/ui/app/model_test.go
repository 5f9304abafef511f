package app

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	experimentdto "leverlab/internal/modules/experiment/dto"
	focusdto "leverlab/internal/modules/focus/dto"
	apperrors "leverlab/internal/platform/errors"
)

type fakeExperiments struct {
	historyCalls atomic.Int32
	started      []experimentdto.StartInput
	active       *experimentdto.ExperimentOutput
}

func (f *fakeExperiments) Start(_ context.Context, in experimentdto.StartInput) (experimentdto.StartOutput, error) {
	f.started = append(f.started, in)
	return experimentdto.StartOutput{Experiment: experimentdto.ExperimentOutput{Title: in.Title}}, nil
}

func (f *fakeExperiments) End(context.Context, string, string, string) (experimentdto.EndOutput, error) {
	return experimentdto.EndOutput{}, nil
}

func (f *fakeExperiments) Review(context.Context, experimentdto.ReviewInput) (experimentdto.ExperimentOutput, error) {
	return experimentdto.ExperimentOutput{}, nil
}

func (f *fakeExperiments) Finalize(context.Context, experimentdto.ReviewInput) (experimentdto.FinalizeOutput, error) {
	return experimentdto.FinalizeOutput{}, nil
}

func (f *fakeExperiments) Active(context.Context, string) (experimentdto.ExperimentOutput, error) {
	if f.active == nil {
		return experimentdto.ExperimentOutput{}, apperrors.ErrNoActiveExperiment
	}
	return *f.active, nil
}

// History titles its single row after the call number so tests can tell
// loads apart.
func (f *fakeExperiments) History(context.Context, string, int, int, bool) ([]experimentdto.ExperimentOutput, error) {
	n := f.historyCalls.Add(1)
	return []experimentdto.ExperimentOutput{{ID: "e1", Title: "load " + string(rune('0'+n))}}, nil
}

func (f *fakeExperiments) ReviewView(_ context.Context, _, id string) (experimentdto.ReviewViewOutput, error) {
	return experimentdto.ReviewViewOutput{Experiment: experimentdto.ExperimentOutput{ID: id, Title: "review " + id}}, nil
}

func (f *fakeExperiments) Preview(context.Context, string, string, string) (experimentdto.PreviewOutput, error) {
	return experimentdto.PreviewOutput{}, nil
}

type fakeFocus struct{}

func (fakeFocus) Next(context.Context, string, string, bool) (focusdto.NextOutput, error) {
	return focusdto.NextOutput{
		WeekKey: "2024-W11",
		Mode:    "explore",
		Options: []focusdto.OptionOutput{
			{Title: "Earlier wind-down for energy", Preset: focusdto.PresetOutput{Title: "Earlier wind-down for energy", LeverType: "metric", LeverRef: "sleep_hours", TargetMetric: "energy"}},
			{Title: "Daily decompression (10 min)", Preset: focusdto.PresetOutput{Title: "Daily decompression (10 min)", LeverType: "habit", LeverRef: "decompression_10m", TargetMetric: "stress"}},
		},
	}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	exp := &fakeExperiments{}
	m := NewModel("u1", exp, fakeFocus{})

	m, first := m.refresh(false)
	m, second := m.refresh(false)
	firstMsg := first()
	secondMsg := second()

	m, _ = update(t, m, secondMsg)
	require.Len(t, m.snap.history, 1)
	latest := m.snap.history[0].Title

	m, _ = update(t, m, firstMsg)
	assert.Equal(t, latest, m.snap.history[0].Title, "older generation must not overwrite newer state")
	assert.False(t, m.loading)
	assert.Equal(t, "ready", m.status)
}

func TestLoadWithoutActiveExperiment(t *testing.T) {
	m := NewModel("u1", &fakeExperiments{}, fakeFocus{})
	m, _ = update(t, m, m.loadCmd(m.gen, false)())
	assert.Nil(t, m.snap.active)
	assert.Len(t, m.snap.focus.Options, 2)
	assert.Contains(t, renderToday(m.snap.active, m.snap.preview), "No active experiment")
}

func TestPickingSuggestionStartsExperimentAndReloads(t *testing.T) {
	exp := &fakeExperiments{}
	m := NewModel("u1", exp, fakeFocus{})
	m, _ = update(t, m, m.loadCmd(m.gen, false)())
	m.activeTab = tabFocus

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.NotNil(t, cmd)
	done := cmd()
	require.Len(t, exp.started, 1)
	assert.Equal(t, "decompression_10m", exp.started[0].LeverRef)
	assert.Equal(t, "habit", exp.started[0].LeverType)

	genBefore := m.gen
	m, reload := update(t, m, done)
	require.NotNil(t, reload)
	assert.Equal(t, genBefore+1, m.gen)
	assert.True(t, strings.HasPrefix(m.status, "started: "))
}

func TestStaleReviewIsDiscarded(t *testing.T) {
	m := NewModel("u1", &fakeExperiments{}, fakeFocus{})
	m, first := m.openReview("a")
	m, second := m.openReview("b")
	firstMsg, secondMsg := first(), second()

	m, _ = update(t, m, secondMsg)
	m, _ = update(t, m, firstMsg)
	require.NotNil(t, m.review.view)
	assert.Equal(t, "b", m.review.view.Experiment.ID)
	assert.Equal(t, tabReview, m.activeTab)
	assert.Contains(t, m.review.content, "review b")
}

func TestReviewMarkdownListsNarrative(t *testing.T) {
	md := reviewMarkdown(experimentdto.ReviewViewOutput{
		Conclusion: "Your energy moved +0.8 and it matched how you felt.",
		WhatWorked: []string{"lights out by 23:00"},
	})
	assert.Contains(t, md, "## Conclusion")
	assert.Contains(t, md, "- lights out by 23:00")
	assert.NotContains(t, md, "Try next")
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m := NewModel("u1", &fakeExperiments{}, fakeFocus{})
	m, _ = update(t, m, m.loadCmd(m.gen, false)())
	require.False(t, m.loading)
	_, cmd := update(t, m, m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestPaletteRejectsUnknownCommand(t *testing.T) {
	m := NewModel("u1", &fakeExperiments{}, fakeFocus{})
	next, _ := m.executePalette("teleport now")
	assert.Equal(t, "unknown command: teleport", next.(Model).status)

	next, _ = m.executePalette("experiment:end")
	assert.Equal(t, "no active experiment", next.(Model).status)
}
