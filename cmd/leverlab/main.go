package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"leverlab/internal/bootstrap"
	"leverlab/internal/platform/config"
	"leverlab/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootState is shared by every subcommand; PersistentPreRunE fills cfg.
type rootState struct {
	dataDir string
	userID  string
	verbose bool
	asJSON  bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	st := &rootState{}

	root := &cobra.Command{
		Use:           "leverlab",
		Short:         "Self-experiments over daily check-ins",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(st.dataDir)
			if err != nil {
				return err
			}
			if st.userID != "" {
				cfg.UserID = st.userID
			}
			st.cfg = cfg
			logging.Init(st.verbose, cfg.LogDir)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&st.dataDir, "data-dir", defaultDataDir(), "directory holding the database, cache and review notes")
	root.PersistentFlags().StringVar(&st.userID, "user", "", "user id (default $LEVERLAB_USER or \"local\")")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&st.asJSON, "json", false, "print results as JSON")

	root.AddCommand(newCheckinCmd(st))
	root.AddCommand(newExperimentCmd(st))
	root.AddCommand(newFocusCmd(st))
	root.AddCommand(newTUICmd(st))
	root.AddCommand(newMetricsCmd(st))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leverlab"
	}
	return filepath.Join(home, ".leverlab")
}

// withApp opens the app for one command and closes it afterwards.
func (st *rootState) withApp(cmd *cobra.Command, fn func(app *bootstrap.App) error) error {
	app, err := bootstrap.New(cmd.Context(), st.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

// emit prints v as JSON when --json is set and falls back to text otherwise.
func (st *rootState) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if st.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func newTUICmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(st.cfg.LogDir, 0o755); err != nil {
				return fmt.Errorf("create log dir: %w", err)
			}
			f, err := os.OpenFile(filepath.Join(st.cfg.LogDir, "tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open tui log: %w", err)
			}
			defer func() { _ = f.Close() }()
			logging.Quiet(f)
			return st.withApp(cmd, bootstrap.RunTUI)
		},
	}
}
