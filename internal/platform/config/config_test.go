package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToSQLiteInDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEVERLAB_DB_DRIVER", "")
	t.Setenv("LEVERLAB_PHRASER", "")
	t.Setenv("LEVERLAB_PHRASER_TIMEOUT", "3s")

	cfg, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, filepath.Join(dir, "leverlab.db"), cfg.DBDSN)
	assert.Equal(t, PhraserTemplate, cfg.Phraser.Kind)
	assert.Equal(t, 3*time.Second, cfg.Phraser.Timeout)
	assert.Empty(t, cfg.TuningSrc)
}

func TestNewRejectsPostgresWithoutDSNAndUnknownPhraser(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEVERLAB_DB_DRIVER", DriverPostgres)
	t.Setenv("LEVERLAB_DB_DSN", "")
	_, err := New(dir)
	require.Error(t, err)

	t.Setenv("LEVERLAB_DB_DRIVER", DriverSQLite)
	t.Setenv("LEVERLAB_PHRASER", "carrier-pigeon")
	_, err = New(dir)
	require.Error(t, err)

	_, err = New("")
	require.Error(t, err)
}

func TestLoadTuningReadsYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leverlab.yaml")
	raw := `
review:
  min_signal: 0.25
  notes_cap: 6
focus:
  novelty_days: [7, 21]
  novelty_penalties: [0.5, 0.25]
  min_corr_n: 10
  snapshot_ttl: 2h
  catalog:
    - title: Morning light
      lever_type: habit
      lever_ref: morning_light
      target_metric: energy
      effort: low
      impact: moderate
      recommended_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, tuning.Review.MinSignal, 1e-9)
	assert.Equal(t, 6, tuning.Review.NotesCap)
	assert.Equal(t, []int{7, 21}, tuning.Focus.NoveltyDays)
	assert.Equal(t, 2*time.Hour, tuning.Focus.SnapshotTTL)
	require.Len(t, tuning.Focus.Catalog, 1)
	assert.Equal(t, "morning_light", tuning.Focus.Catalog[0].LeverRef)
}

func TestLoadTuningRejectsMismatchedNoveltyBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leverlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus:\n  novelty_days: [7]\n"), 0o644))
	_, err := LoadTuning(path)
	require.Error(t, err)

	missing, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing.Focus.Catalog)
}
