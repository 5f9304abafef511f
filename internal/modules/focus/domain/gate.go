package domain

import experimentdomain "leverlab/internal/modules/experiment/domain"

type Mode string

const (
	ModeClaim   Mode = "claim"
	ModeExplore Mode = "explore"
)

const (
	ReasonExperimentRows = "insufficient_experiment_rows"
	ReasonCorrelationN   = "insufficient_correlation_n"
)

// Gate decides whether the user has enough history for firm claims.
type Gate struct {
	Mode              Mode                             `json:"mode"`
	Label             experimentdomain.ConfidenceLabel `json:"label"`
	Reasons           []string                         `json:"reasons"`
	MinExperimentRows int                              `json:"min_experiment_rows"`
	MinCorrN          int                              `json:"min_corr_n"`
}

func EvaluateGate(experimentRows, corrN int, s Settings) Gate {
	g := Gate{Reasons: []string{}, MinExperimentRows: s.MinExperimentRows, MinCorrN: s.MinCorrN}
	if experimentRows < s.MinExperimentRows {
		g.Reasons = append(g.Reasons, ReasonExperimentRows)
	}
	if corrN < s.MinCorrN {
		g.Reasons = append(g.Reasons, ReasonCorrelationN)
	}
	if len(g.Reasons) == 0 {
		g.Mode, g.Label = ModeClaim, experimentdomain.ConfidenceHigh
	} else {
		g.Mode, g.Label = ModeExplore, experimentdomain.ConfidenceLow
	}
	return g
}
