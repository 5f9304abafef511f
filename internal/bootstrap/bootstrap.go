package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	checkininadapter "leverlab/internal/modules/checkin/adapter/in"
	checkinoutadapter "leverlab/internal/modules/checkin/adapter/out"
	checkindomain "leverlab/internal/modules/checkin/domain"
	checkinservice "leverlab/internal/modules/checkin/service"
	checkinusecase "leverlab/internal/modules/checkin/usecase"
	experimentinadapter "leverlab/internal/modules/experiment/adapter/in"
	experimentoutadapter "leverlab/internal/modules/experiment/adapter/out"
	experimentdomain "leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	experimentservice "leverlab/internal/modules/experiment/service"
	experimentusecase "leverlab/internal/modules/experiment/usecase"
	focusinadapter "leverlab/internal/modules/focus/adapter/in"
	focusoutadapter "leverlab/internal/modules/focus/adapter/out"
	focusdomain "leverlab/internal/modules/focus/domain"
	focusservice "leverlab/internal/modules/focus/service"
	focususecase "leverlab/internal/modules/focus/usecase"
	"leverlab/internal/platform/cache"
	"leverlab/internal/platform/clock"
	"leverlab/internal/platform/config"
	"leverlab/internal/platform/database"
	"leverlab/internal/platform/id"
	"leverlab/internal/platform/tx"
	uiapp "leverlab/internal/ui/app"
)

type App struct {
	CheckinCLI    checkininadapter.CLIHandler
	ExperimentCLI experimentinadapter.CLIHandler
	FocusCLI      focusinadapter.CLIHandler
	UserID        string

	db    *database.DB
	cache *badger.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}

	thresholds := Thresholds(cfg.Tuning.Review)
	settings, err := Settings(cfg.Tuning.Focus)
	if err != nil {
		return nil, err
	}
	catalog, err := Catalog(cfg.Tuning.Focus.Catalog)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	app := &App{UserID: cfg.UserID, db: db}
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}

	metricStore, err := checkinoutadapter.NewSQLMetricStore(ctx, db)
	if err != nil {
		return fail(fmt.Errorf("new metric store: %w", err))
	}
	checkinUC := checkinusecase.NewInteractor(checkinservice.NewCheckinService(clk, metricStore))

	experimentStore, err := experimentoutadapter.NewSQLExperimentStore(ctx, db)
	if err != nil {
		return fail(fmt.Errorf("new experiment store: %w", err))
	}
	reviewStore, err := experimentoutadapter.NewSQLReviewStore(ctx, db)
	if err != nil {
		return fail(fmt.Errorf("new review store: %w", err))
	}
	eventLog, err := experimentoutadapter.NewSQLEventLog(ctx, db)
	if err != nil {
		return fail(fmt.Errorf("new event log: %w", err))
	}
	phraser, err := newPhraser(cfg.Phraser)
	if err != nil {
		return fail(err)
	}
	experimentUC := experimentusecase.NewInteractor(experimentusecase.Deps{
		Service: experimentservice.NewExperimentService(
			clk, id.UUID{}, experimentoutadapter.NewCheckinMetricReader(checkinUC), thresholds,
		),
		Conclusions: experimentservice.NewConclusionService(phraser, cfg.Phraser.Timeout),
		Store:       experimentStore,
		Reviews:     reviewStore,
		Events:      eventLog,
		Notes:       experimentoutadapter.NewMarkdownReviewWriter(cfg.NotesDir),
		Tx:          tx.NewSQLManager(db.DB),
	})

	focusDeps := focususecase.Deps{
		Service: focusservice.NewFocusService(clk, catalog, settings),
		Signals: focusoutadapter.NewCheckinSignalReader(checkinUC),
		Usage:   focusoutadapter.NewExperimentUsageReader(experimentUC),
	}
	if snapshots, err := cache.Open(cache.Config{Dir: cfg.CacheDir}); err != nil {
		// the ranker works without its cache
		log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("focus snapshot cache unavailable")
	} else {
		app.cache = snapshots
		focusDeps.Cache = focusoutadapter.NewBadgerSnapshotCache(snapshots, cfg.Tuning.Focus.SnapshotTTL)
	}

	app.CheckinCLI = checkininadapter.NewCLIHandler(checkinUC)
	app.ExperimentCLI = experimentinadapter.NewCLIHandler(experimentUC)
	app.FocusCLI = focusinadapter.NewCLIHandler(focususecase.NewInteractor(focusDeps))
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.UserID, app.ExperimentCLI, app.FocusCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// newPhraser picks the conclusion phraser. A nil phraser disables
// conclusions without failing finalize.
func newPhraser(cfg config.PhraserConfig) (experimentout.Phraser, error) {
	switch cfg.Kind {
	case config.PhraserNone:
		return nil, nil
	case config.PhraserOpenAI:
		p, err := experimentoutadapter.NewOpenAIPhraser(experimentoutadapter.OpenAIPhraserConfig{
			APIKey:        cfg.APIKey,
			Model:         cfg.Model,
			BaseURL:       cfg.BaseURL,
			RatePerMinute: cfg.RatePerMinute,
		})
		if errors.Is(err, experimentoutadapter.ErrMissingAPIKey) {
			log.Warn().Msg("OPENAI_API_KEY not set, falling back to the template phraser")
			return experimentoutadapter.NewTemplatePhraser(), nil
		}
		return p, err
	case config.PhraserPlugin:
		p, err := experimentoutadapter.NewPluginPhraser(cfg.PluginPath)
		if err != nil {
			return nil, fmt.Errorf("phraser plugin: %w", err)
		}
		return p, nil
	default:
		return experimentoutadapter.NewTemplatePhraser(), nil
	}
}

// Thresholds overlays the review tuning on the defaults.
func Thresholds(t config.ReviewTuning) experimentdomain.Thresholds {
	th := experimentdomain.DefaultThresholds()
	if t.MinSignal > 0 {
		th.MinSignal = t.MinSignal
	}
	if t.AlignDelta > 0 {
		th.AlignDelta = t.AlignDelta
	}
	if t.VariabilityPct > 0 {
		th.VariabilityPct = t.VariabilityPct
	}
	if t.MinPoints > 0 {
		th.MinPoints = t.MinPoints
	}
	if t.MinBaselineRows > 0 {
		th.MinBaselineRows = t.MinBaselineRows
	}
	if t.MinExperimentRows > 0 {
		th.MinExperimentRows = t.MinExperimentRows
	}
	if t.NotesCap > 0 {
		th.NotesCap = t.NotesCap
	}
	return th
}

// Settings overlays the focus tuning on the ranker defaults.
func Settings(t config.FocusTuning) (focusdomain.Settings, error) {
	s := focusdomain.DefaultSettings()
	if t.MinExperimentRows > 0 {
		s.MinExperimentRows = t.MinExperimentRows
	}
	if t.MinCorrN > 0 {
		s.MinCorrN = t.MinCorrN
	}
	if len(t.NoveltyDays) != len(t.NoveltyPenalties) {
		return focusdomain.Settings{}, fmt.Errorf("focus tuning: novelty days and penalties differ in length")
	}
	if len(t.NoveltyDays) > 0 {
		s.Novelty = make([]focusdomain.NoveltyStep, 0, len(t.NoveltyDays))
		for i, days := range t.NoveltyDays {
			s.Novelty = append(s.Novelty, focusdomain.NoveltyStep{Days: days, Penalty: t.NoveltyPenalties[i]})
		}
	}
	if err := s.Validate(); err != nil {
		return focusdomain.Settings{}, fmt.Errorf("focus tuning: %w", err)
	}
	return s, nil
}

// Catalog converts configured presets. An empty list keeps the built-in
// catalog.
func Catalog(entries []config.CatalogEntry) ([]focusdomain.Preset, error) {
	if len(entries) == 0 {
		return focusdomain.DefaultCatalog(), nil
	}
	out := make([]focusdomain.Preset, 0, len(entries))
	for _, e := range entries {
		p := focusdomain.Preset{
			Title:           e.Title,
			LeverType:       experimentdomain.LeverType(e.LeverType),
			LeverRef:        e.LeverRef,
			TargetMetric:    checkindomain.MetricKey(e.TargetMetric),
			Effort:          experimentdomain.Level(e.Effort),
			Impact:          experimentdomain.Level(e.Impact),
			RecommendedDays: e.RecommendedDays,
			BaselineDays:    e.BaselineDays,
		}.WithDefaults()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("focus catalog: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
