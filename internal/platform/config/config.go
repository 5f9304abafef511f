package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	PhraserTemplate = "template"
	PhraserOpenAI   = "openai"
	PhraserPlugin   = "plugin"
	PhraserNone     = "none"

	tuningFileName = "leverlab.yaml"
)

type Config struct {
	DataDir   string
	DBDriver  string
	DBDSN     string
	LogDir    string
	CacheDir  string
	NotesDir  string
	UserID    string
	Phraser   PhraserConfig
	Tuning    Tuning
	TuningSrc string
}

type PhraserConfig struct {
	Kind          string
	Model         string
	APIKey        string
	BaseURL       string
	PluginPath    string
	Timeout       time.Duration
	RatePerMinute int
}

// Tuning holds the optional overrides read from leverlab.yaml. Zero values
// keep the built-in defaults.
type Tuning struct {
	Review ReviewTuning `yaml:"review"`
	Focus  FocusTuning  `yaml:"focus"`
}

type ReviewTuning struct {
	MinSignal         float64 `yaml:"min_signal"`
	AlignDelta        float64 `yaml:"align_delta"`
	VariabilityPct    float64 `yaml:"variability_pct"`
	MinPoints         int     `yaml:"min_points"`
	MinBaselineRows   int     `yaml:"min_baseline_rows"`
	MinExperimentRows int     `yaml:"min_experiment_rows"`
	NotesCap          int     `yaml:"notes_cap"`
}

type FocusTuning struct {
	NoveltyDays       []int          `yaml:"novelty_days"`
	NoveltyPenalties  []float64      `yaml:"novelty_penalties"`
	MinExperimentRows int            `yaml:"min_experiment_rows"`
	MinCorrN          int            `yaml:"min_corr_n"`
	SnapshotTTL       time.Duration  `yaml:"snapshot_ttl"`
	Catalog           []CatalogEntry `yaml:"catalog"`
}

type CatalogEntry struct {
	Title           string `yaml:"title"`
	LeverType       string `yaml:"lever_type"`
	LeverRef        string `yaml:"lever_ref"`
	TargetMetric    string `yaml:"target_metric"`
	Effort          string `yaml:"effort"`
	Impact          string `yaml:"impact"`
	RecommendedDays int    `yaml:"recommended_days"`
	BaselineDays    int    `yaml:"baseline_days"`
}

// New resolves configuration for dataDir from .env files, LEVERLAB_*
// environment variables and an optional leverlab.yaml in the data directory.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err == nil {
		log.Debug().Str("dir", dataDir).Msg("loaded .env from data dir")
	}
	_ = godotenv.Load()

	cfg := Config{
		DataDir:  dataDir,
		DBDriver: getEnv("LEVERLAB_DB_DRIVER", DriverSQLite),
		DBDSN:    getEnv("LEVERLAB_DB_DSN", ""),
		LogDir:   getEnv("LEVERLAB_LOG_DIR", filepath.Join(dataDir, "logs")),
		CacheDir: getEnv("LEVERLAB_CACHE_DIR", filepath.Join(dataDir, "cache")),
		NotesDir: getEnv("LEVERLAB_NOTES_DIR", filepath.Join(dataDir, "reviews")),
		UserID:   getEnv("LEVERLAB_USER", "local"),
		Phraser: PhraserConfig{
			Kind:          getEnv("LEVERLAB_PHRASER", PhraserTemplate),
			Model:         getEnv("LEVERLAB_OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("LEVERLAB_OPENAI_BASE_URL", ""),
			PluginPath:    getEnv("LEVERLAB_PHRASER_PLUGIN", ""),
			Timeout:       getEnvDuration("LEVERLAB_PHRASER_TIMEOUT", 8*time.Second),
			RatePerMinute: getEnvInt("LEVERLAB_PHRASER_RPM", 20),
		},
	}
	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.DBDSN == "" {
			cfg.DBDSN = filepath.Join(dataDir, "leverlab.db")
		}
	case DriverPostgres:
		if cfg.DBDSN == "" {
			return Config{}, fmt.Errorf("LEVERLAB_DB_DSN is required for driver %s", DriverPostgres)
		}
	default:
		return Config{}, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	switch cfg.Phraser.Kind {
	case PhraserTemplate, PhraserOpenAI, PhraserPlugin, PhraserNone:
	default:
		return Config{}, fmt.Errorf("unsupported phraser %q", cfg.Phraser.Kind)
	}

	tuningPath := filepath.Join(dataDir, tuningFileName)
	tuning, err := LoadTuning(tuningPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Tuning = tuning
	if !isZeroTuning(tuning) {
		cfg.TuningSrc = tuningPath
	}
	return cfg, nil
}

// LoadTuning reads the YAML tuning file; a missing file yields zero tuning.
func LoadTuning(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tuning{}, nil
		}
		return Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	tuning := Tuning{}
	if err := yaml.Unmarshal(raw, &tuning); err != nil {
		return Tuning{}, fmt.Errorf("decode tuning: %w", err)
	}
	if len(tuning.Focus.NoveltyDays) != len(tuning.Focus.NoveltyPenalties) {
		return Tuning{}, fmt.Errorf("decode tuning: novelty_days and novelty_penalties must have the same length")
	}
	return tuning, nil
}

func isZeroTuning(t Tuning) bool {
	return t.Review == (ReviewTuning{}) && len(t.Focus.NoveltyDays) == 0 && len(t.Focus.Catalog) == 0 &&
		t.Focus.MinCorrN == 0 && t.Focus.MinExperimentRows == 0 && t.Focus.SnapshotTTL == 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
