package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"leverlab/internal/bootstrap"
)

func newFocusCmd(st *rootState) *cobra.Command {
	focus := &cobra.Command{Use: "focus", Short: "Suggest what to experiment with next"}

	var date string
	var refresh bool
	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Show two suggestions for the next experiment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.FocusCLI.Next(cmd.Context(), st.cfg.UserID, date, refresh)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "week %s · %s mode (%s confidence)", out.WeekKey, out.Mode, out.Confidence)
					if out.Cached {
						_, _ = fmt.Fprint(w, " · cached")
					}
					_, _ = fmt.Fprintln(w)
					if len(out.Reasons) > 0 {
						_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(out.Reasons, ", "))
					}
					for i, o := range out.Options {
						_, _ = fmt.Fprintf(w, "\n%d. %s  [%s effort, %s impact, %d days]\n",
							i+1, o.Title, o.Preset.Effort, o.Preset.Impact, o.Preset.RecommendedDays)
						_, _ = fmt.Fprintf(w, "   leverlab experiment start --title %q --lever-type %s --lever %s --target %s\n",
							o.Preset.Title, o.Preset.LeverType, o.Preset.LeverRef, o.Preset.TargetMetric)
						for _, why := range o.Why {
							_, _ = fmt.Fprintf(w, "   - %s\n", why)
						}
					}
				})
			})
		},
	}
	nextCmd.Flags().StringVar(&date, "date", "", "rank as of this day (YYYY-MM-DD, default today)")
	nextCmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached snapshot")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the interventions the ranker chooses from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				presets, err := app.FocusCLI.Catalog(cmd.Context())
				if err != nil {
					return err
				}
				return st.emit(cmd, presets, func(w io.Writer) {
					for _, p := range presets {
						_, _ = fmt.Fprintf(w, "%-20s %-8s → %-15s %-8s %-8s %s\n",
							p.LeverRef, p.LeverType, p.TargetMetric, p.Effort, p.Impact, p.Title)
					}
				})
			})
		},
	}

	focus.AddCommand(nextCmd, catalogCmd)
	return focus
}
