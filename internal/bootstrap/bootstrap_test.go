package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkindto "leverlab/internal/modules/checkin/dto"
	experimentdomain "leverlab/internal/modules/experiment/domain"
	"leverlab/internal/platform/config"
)

func TestThresholdsKeepDefaultsForZeroTuning(t *testing.T) {
	assert.Equal(t, experimentdomain.DefaultThresholds(), Thresholds(config.ReviewTuning{}))
	th := Thresholds(config.ReviewTuning{MinSignal: 0.5, NotesCap: 3})
	assert.Equal(t, 0.5, th.MinSignal)
	assert.Equal(t, 3, th.NotesCap)
	assert.Equal(t, experimentdomain.DefaultThresholds().AlignDelta, th.AlignDelta)
}

func TestSettingsFromTuning(t *testing.T) {
	s, err := Settings(config.FocusTuning{MinCorrN: 21, NoveltyDays: []int{7, 21}, NoveltyPenalties: []float64{0.5, 0.25}})
	require.NoError(t, err)
	assert.Equal(t, 21, s.MinCorrN)
	assert.Equal(t, 4, s.MinExperimentRows)
	assert.Equal(t, 0.5, s.NoveltyPenalty(7, true))
	assert.Equal(t, 0.0, s.NoveltyPenalty(22, true))

	_, err = Settings(config.FocusTuning{NoveltyDays: []int{7}})
	assert.Error(t, err)
	_, err = Settings(config.FocusTuning{NoveltyDays: []int{7}, NoveltyPenalties: []float64{1.5}})
	assert.Error(t, err)
}

func TestCatalogFromTuning(t *testing.T) {
	presets, err := Catalog(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, presets)

	presets, err = Catalog([]config.CatalogEntry{{Title: "Morning light", LeverType: "habit", LeverRef: "Morning Light", TargetMetric: "mood"}})
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "morning_light", presets[0].LeverRef)
	assert.Equal(t, experimentdomain.LevelLow, presets[0].Effort)
	assert.Equal(t, experimentdomain.DefaultRecommendedDays, presets[0].RecommendedDays)

	_, err = Catalog([]config.CatalogEntry{{Title: "Bad", LeverType: "habit", LeverRef: "x", TargetMetric: "focus"}})
	assert.Error(t, err)
}

func TestNewWiresSQLiteApp(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataDir:  dir,
		DBDriver: config.DriverSQLite,
		DBDSN:    filepath.Join(dir, "leverlab.db"),
		CacheDir: filepath.Join(dir, "cache"),
		NotesDir: filepath.Join(dir, "reviews"),
		UserID:   "u1",
		Phraser:  config.PhraserConfig{Kind: config.PhraserTemplate},
	}
	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	five := 5.0
	_, err = app.CheckinCLI.Log(context.Background(), checkindto.LogInput{UserID: "u1", Date: "2024-03-14", Mood: &five})
	require.NoError(t, err)

	next, err := app.FocusCLI.Next(context.Background(), "u1", "2024-03-14", false)
	require.NoError(t, err)
	assert.Len(t, next.Options, 2)

	again, err := app.FocusCLI.Next(context.Background(), "u1", "2024-03-14", false)
	require.NoError(t, err)
	assert.True(t, again.Cached)
}
