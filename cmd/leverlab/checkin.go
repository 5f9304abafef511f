package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"leverlab/internal/bootstrap"
	checkindto "leverlab/internal/modules/checkin/dto"
)

func newCheckinCmd(st *rootState) *cobra.Command {
	checkin := &cobra.Command{Use: "checkin", Short: "Record and inspect daily metrics"}

	var date string
	values := map[string]*float64{}
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Record metrics for a day (merges with what is already there)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := checkindto.LogInput{UserID: st.cfg.UserID, Date: date}
			set := func(name string) *float64 {
				if !cmd.Flags().Changed(name) {
					return nil
				}
				return values[name]
			}
			in.Energy = set("energy")
			in.Stress = set("stress")
			in.Mood = set("mood")
			in.SleepHours = set("sleep")
			in.Steps = set("steps")
			in.WaterLiters = set("water")
			in.OutdoorMinutes = set("outdoor")
			return st.withApp(cmd, func(app *bootstrap.App) error {
				row, err := app.CheckinCLI.Log(cmd.Context(), in)
				if err != nil {
					return err
				}
				return st.emit(cmd, row, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "%s %s\n", row.Date, formatValues(row.Values))
				})
			})
		},
	}
	logCmd.Flags().StringVar(&date, "date", "", "day to record (YYYY-MM-DD, default today)")
	for _, f := range []struct{ name, usage string }{
		{"energy", "energy 1-5"},
		{"stress", "stress 1-5"},
		{"mood", "mood 1-5"},
		{"sleep", "sleep hours"},
		{"steps", "step count"},
		{"water", "water in liters"},
		{"outdoor", "minutes outdoors"},
	} {
		v := new(float64)
		values[f.name] = v
		logCmd.Flags().Float64Var(v, f.name, 0, f.usage)
	}

	var from, to string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "List recorded days in a range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				rows, err := app.CheckinCLI.Show(cmd.Context(), st.cfg.UserID, from, to)
				if err != nil {
					return err
				}
				return st.emit(cmd, rows, func(w io.Writer) {
					if len(rows) == 0 {
						_, _ = fmt.Fprintln(w, "no check-ins")
						return
					}
					for _, r := range rows {
						_, _ = fmt.Fprintf(w, "%s %s\n", r.Date, formatValues(r.Values))
					}
				})
			})
		},
	}
	showCmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	showCmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	_ = showCmd.MarkFlagRequired("from")
	_ = showCmd.MarkFlagRequired("to")

	var asOf string
	var days int
	corrCmd := &cobra.Command{
		Use:   "correlations",
		Short: "Pairwise metric correlations over the trailing window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.CheckinCLI.Correlations(cmd.Context(), st.cfg.UserID, asOf, days)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "%s..%s  max n=%d\n", out.From, out.To, out.MaxN)
					for _, p := range out.Pairs {
						r := "n/a"
						if p.R != nil {
							r = fmt.Sprintf("%+.2f", *p.R)
						}
						_, _ = fmt.Fprintf(w, "  %-15s %-15s n=%-3d r=%s\n", p.X, p.Y, p.N, r)
					}
				})
			})
		},
	}
	corrCmd.Flags().StringVar(&asOf, "as-of", "", "last day of the window (default today)")
	corrCmd.Flags().IntVar(&days, "days", 0, "window length in days (default 30)")

	checkin.AddCommand(logCmd, showCmd, corrCmd)
	return checkin
}

func formatValues(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, values[k]))
	}
	return strings.Join(parts, " ")
}
