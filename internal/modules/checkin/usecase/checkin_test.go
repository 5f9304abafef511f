package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkinout "leverlab/internal/modules/checkin/adapter/out"
	checkindto "leverlab/internal/modules/checkin/dto"
	checkinin "leverlab/internal/modules/checkin/port/in"
	"leverlab/internal/modules/checkin/service"
	"leverlab/internal/modules/checkin/usecase"
	"leverlab/internal/platform/clock"
	"leverlab/internal/platform/database"
	apperrors "leverlab/internal/platform/errors"
)

func ptr(v float64) *float64 { return &v }

func newUsecase(t *testing.T) checkinin.Usecase {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, string(database.SQLite), filepath.Join(t.TempDir(), "leverlab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := checkinout.NewSQLMetricStore(ctx, db)
	require.NoError(t, err)
	clk := clock.Fixed(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))
	return usecase.NewInteractor(service.NewCheckinService(clk, store))
}

func TestLogMergesIntoExistingRow(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t)
	ctx := context.Background()

	first, err := uc.Log(ctx, checkindto.LogInput{UserID: "u1", Mood: ptr(3), SleepHours: ptr(7.5)})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", first.Date)

	second, err := uc.Log(ctx, checkindto.LogInput{UserID: "u1", Date: "2024-03-20", Mood: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4.0, second.Values["mood"])
	assert.Equal(t, 7.5, second.Values["sleep_hours"])

	rows, err := uc.Range(ctx, checkindto.RangeInput{UserID: "u1", From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]float64{"mood": 4, "sleep_hours": 7.5}, rows[0].Values)

	other, err := uc.Range(ctx, checkindto.RangeInput{UserID: "u2", From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLogRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t)
	ctx := context.Background()

	cases := []checkindto.LogInput{
		{UserID: "", Mood: ptr(3)},
		{UserID: "u1", Mood: ptr(9)},
		{UserID: "u1", Date: "20-03-2024", Mood: ptr(3)},
		{UserID: "u1"},
	}
	for _, input := range cases {
		_, err := uc.Log(ctx, input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "%+v: %v", input, err)
	}

	_, err := uc.Range(ctx, checkindto.RangeInput{UserID: "u1", From: "2024-03-10", To: "2024-03-01"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCorrelationsUseTrailingWindow(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		date := base.AddDate(0, 0, -i).Format("2006-01-02")
		_, err := uc.Log(ctx, checkindto.LogInput{
			UserID:     "u1",
			Date:       date,
			SleepHours: ptr(float64(5 + i%4)),
			Energy:     ptr(float64(1 + i%4)),
		})
		require.NoError(t, err)
	}

	out, err := uc.Correlations(ctx, checkindto.CorrelationInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", out.From)
	assert.Equal(t, "2024-03-20", out.To)
	assert.Equal(t, 30, out.MaxN)
	for _, pair := range out.Pairs {
		if pair.X == "energy" && pair.Y == "sleep_hours" {
			require.NotNil(t, pair.R)
			assert.InDelta(t, 1.0, *pair.R, 1e-9)
		}
	}
}
