package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"leverlab/internal/platform/telemetry"
)

func newMetricsCmd(_ *rootState) *cobra.Command {
	metrics := &cobra.Command{Use: "metrics", Short: "Prometheus metrics"}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose /metrics until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", telemetry.Handler())
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			log.Info().Str("addr", addr).Msg("serving metrics")

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9464", "listen address")

	metrics.AddCommand(serveCmd)
	return metrics
}
