package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"leverlab/internal/bootstrap"
	experimentdto "leverlab/internal/modules/experiment/dto"
)

func newExperimentCmd(st *rootState) *cobra.Command {
	experiment := &cobra.Command{Use: "experiment", Aliases: []string{"exp"}, Short: "Run and review experiments"}
	experiment.AddCommand(
		newExperimentStartCmd(st),
		newExperimentEndCmd(st),
		newExperimentRefCmd(st, "resume <id>", "Reopen an ended experiment", func(cmd *cobra.Command, app *bootstrap.App, id string) (experimentdto.ExperimentOutput, error) {
			return app.ExperimentCLI.Resume(cmd.Context(), st.cfg.UserID, id)
		}),
		newExperimentRefCmd(st, "recompute <id>", "Recompute windows and statistics from current check-ins", func(cmd *cobra.Command, app *bootstrap.App, id string) (experimentdto.ExperimentOutput, error) {
			return app.ExperimentCLI.Recompute(cmd.Context(), st.cfg.UserID, id)
		}),
		newExperimentRefCmd(st, "show <id>", "Show one experiment", func(cmd *cobra.Command, app *bootstrap.App, id string) (experimentdto.ExperimentOutput, error) {
			return app.ExperimentCLI.Show(cmd.Context(), st.cfg.UserID, id)
		}),
		newExperimentActiveCmd(st),
		newExperimentReviewCmd(st, false),
		newExperimentReviewCmd(st, true),
		newExperimentHistoryCmd(st),
		newExperimentReviewViewCmd(st),
		newExperimentPreviewCmd(st),
		newExperimentLeverSummaryCmd(st),
	)
	return experiment
}

func newExperimentStartCmd(st *rootState) *cobra.Command {
	in := experimentdto.StartInput{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an experiment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.UserID = st.cfg.UserID
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.Start(cmd.Context(), in)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					if out.ReplacedID != "" {
						_, _ = fmt.Fprintf(w, "abandoned %s\n", out.ReplacedID)
					}
					_, _ = fmt.Fprintf(w, "started %s (%s) from %s\n", out.Experiment.Title, out.Experiment.ID, out.Experiment.StartDate)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "what you are trying")
	f.StringVar(&in.Hypothesis, "hypothesis", "", "what you expect to change")
	f.StringVar(&in.LeverType, "lever-type", "habit", "metric|habit|custom")
	f.StringVar(&in.LeverRef, "lever", "", "metric key or habit name")
	f.StringVar(&in.TargetMetric, "target", "", "metric expected to improve")
	f.StringVar(&in.StartDate, "start", "", "first day (YYYY-MM-DD, default today)")
	f.IntVar(&in.BaselineDays, "baseline-days", 0, "days before start used as baseline (default 30)")
	f.IntVar(&in.RecommendedDays, "days", 0, "planned length (default 7)")
	f.StringVar(&in.Effort, "effort", "", "low|moderate|high")
	f.StringVar(&in.Impact, "impact", "", "low|moderate|high")
	f.StringVar(&in.StatedConfidence, "confidence", "", "low|moderate|strong")
	f.BoolVar(&in.ReplaceActive, "replace", false, "abandon the active experiment first")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newExperimentEndCmd(st *rootState) *cobra.Command {
	var endDate string
	cmd := &cobra.Command{
		Use:   "end <id>",
		Short: "End an experiment and compute its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.End(cmd.Context(), st.cfg.UserID, args[0], endDate)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					if out.AlreadyEnded {
						_, _ = fmt.Fprintf(w, "already ended on %s\n", out.Experiment.EndDate)
					}
					printExperiment(w, out.Experiment)
				})
			})
		},
	}
	cmd.Flags().StringVar(&endDate, "date", "", "last day (YYYY-MM-DD, default today)")
	return cmd
}

type refAction func(cmd *cobra.Command, app *bootstrap.App, id string) (experimentdto.ExperimentOutput, error)

func newExperimentRefCmd(st *rootState, use, short string, action refAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := action(cmd, app, args[0])
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) { printExperiment(w, out) })
			})
		},
	}
}

func newExperimentActiveCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active experiment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.Active(cmd.Context(), st.cfg.UserID)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) { printExperiment(w, out) })
			})
		},
	}
}

// newExperimentReviewCmd builds "review" (save notes) or "finalize" (save and
// lock the review).
func newExperimentReviewCmd(st *rootState, finalize bool) *cobra.Command {
	var worked, next []string
	var rating string
	use, short := "review <id>", "Save rating and notes"
	if finalize {
		use, short = "finalize <id>", "Save rating and notes and write the final review"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := experimentdto.ReviewInput{UserID: st.cfg.UserID, ID: args[0], Rating: rating}
			// an unset flag keeps the stored list; --worked "" clears it
			if cmd.Flags().Changed("worked") {
				in.WhatWorked = append([]string{}, worked...)
			}
			if cmd.Flags().Changed("next") {
				in.TryNext = append([]string{}, next...)
			}
			return st.withApp(cmd, func(app *bootstrap.App) error {
				if !finalize {
					out, err := app.ExperimentCLI.Review(cmd.Context(), in)
					if err != nil {
						return err
					}
					return st.emit(cmd, out, func(w io.Writer) { printExperiment(w, out) })
				}
				out, err := app.ExperimentCLI.Finalize(cmd.Context(), in)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					if out.AlreadyCompleted {
						_, _ = fmt.Fprintln(w, "already finalized")
					}
					_, _ = fmt.Fprintf(w, "%s · %s confidence (%.2f)\n", out.Review.Alignment, out.Review.ConfidenceLabel, out.Review.ConfidenceScore)
					if out.Review.Conclusion != "" {
						_, _ = fmt.Fprintln(w, out.Review.Conclusion)
					}
					if out.NotePath != "" {
						_, _ = fmt.Fprintf(w, "note: %s\n", out.NotePath)
					}
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&worked, "worked", nil, "what worked (repeatable)")
	cmd.Flags().StringArrayVar(&next, "next", nil, "what to try next (repeatable)")
	cmd.Flags().StringVar(&rating, "rating", "", "more_stable|slightly_better|no_change|hard_to_maintain|worse")
	return cmd
}

func newExperimentHistoryCmd(st *rootState) *cobra.Command {
	var limit, offset int
	var pending bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List ended experiments, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				list, err := app.ExperimentCLI.History(cmd.Context(), st.cfg.UserID, limit, offset, pending)
				if err != nil {
					return err
				}
				return st.emit(cmd, list, func(w io.Writer) {
					if len(list) == 0 {
						_, _ = fmt.Fprintln(w, "no experiments")
						return
					}
					for _, e := range list {
						_, _ = fmt.Fprintf(w, "%s  %-10s %-15s %-9s %s\n", e.ID, e.StartDate, e.Status, e.Outcome.Alignment, e.Title)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&pending, "pending", false, "include experiments awaiting review")
	return cmd
}

func newExperimentReviewViewCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "review-view <id>",
		Short: "Show the review page of an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.ReviewView(cmd.Context(), st.cfg.UserID, args[0])
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "%s  [%s]\n", out.Experiment.Title, out.Pill.Text)
					printMetric(w, out.Target)
					for _, m := range out.Others {
						printMetric(w, m)
					}
					if out.Conclusion != "" {
						_, _ = fmt.Fprintln(w, out.Conclusion)
					}
					printBullets(w, "What worked", out.WhatWorked)
					printBullets(w, "Try next", out.TryNext)
				})
			})
		},
	}
}

func newExperimentPreviewCmd(st *rootState) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Compute an outcome without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.Preview(cmd.Context(), st.cfg.UserID, args[0], asOf)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "baseline %s..%s (%d rows)  treatment %s..%s (%d rows)\n",
						out.Windows.Baseline.Start, out.Windows.Baseline.End, out.Sample.BaselineRows,
						out.Windows.Treatment.Start, out.Windows.Treatment.End, out.Sample.TreatmentRows)
					if !out.Sufficiency.OK {
						_, _ = fmt.Fprintf(w, "insufficient data: %s\n", out.Sufficiency.Reason)
					}
					_, _ = fmt.Fprintln(w, out.Pill.Text)
					printMetric(w, out.Target)
					for _, m := range out.Others {
						printMetric(w, m)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "treat this day as the end (default today)")
	return cmd
}

func newExperimentLeverSummaryCmd(st *rootState) *cobra.Command {
	var since, metric, groupBy string
	cmd := &cobra.Command{
		Use:   "lever-summary",
		Short: "Pool the effects of ended experiments by lever",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withApp(cmd, func(app *bootstrap.App) error {
				out, err := app.ExperimentCLI.LeverSummary(cmd.Context(), st.cfg.UserID, since, metric, groupBy)
				if err != nil {
					return err
				}
				return st.emit(cmd, out, func(w io.Writer) {
					if len(out.Items) == 0 {
						_, _ = fmt.Fprintf(w, "no ended experiments since %s\n", out.Since)
						return
					}
					for _, it := range out.Items {
						_, _ = fmt.Fprintf(w, "%-16s %-16s n=%-3d avg %+.2f  improved %3d%%  %s\n",
							it.Group, it.MetricKey, it.N, it.AvgDelta, it.ImprovedRate, it.Confidence)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "first start day (YYYY-MM-DD, default 180 days ago)")
	cmd.Flags().StringVar(&metric, "metric", "", "only this metric")
	cmd.Flags().StringVar(&groupBy, "group-by", "lever_type", "lever_type|lever_ref")
	return cmd
}

func printExperiment(w io.Writer, e experimentdto.ExperimentOutput) {
	end := e.EndDate
	if end == "" {
		end = "…"
	}
	_, _ = fmt.Fprintf(w, "%s  %s\n", e.ID, e.Title)
	_, _ = fmt.Fprintf(w, "  %s  %s..%s  lever %s → %s\n", e.Status, e.StartDate, end, e.LeverLabel, e.TargetMetric)
	if e.Outcome.Alignment != "" {
		_, _ = fmt.Fprintf(w, "  %s · %s confidence\n", e.Outcome.Alignment, e.Outcome.ConfidenceLabel)
	}
	if s := e.Outcome.Sufficiency; s != nil && !s.OK {
		_, _ = fmt.Fprintf(w, "  insufficient data: %s\n", s.Reason)
	}
}

func printMetric(w io.Writer, m experimentdto.MetricView) {
	avg := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1f", *v)
	}
	signal := ""
	if m.IsSignal {
		signal = " *"
	}
	_, _ = fmt.Fprintf(w, "  %-16s %6s → %-6s %s%s\n", m.Label, avg(m.BaselineAvg), avg(m.TreatmentAvg), m.DeltaText, signal)
}

func printBullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s:\n  - %s\n", title, strings.Join(items, "\n  - "))
}
