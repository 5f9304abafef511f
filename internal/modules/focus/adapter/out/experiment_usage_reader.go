package out

import (
	"context"

	experimentdto "leverlab/internal/modules/experiment/dto"
	experimentin "leverlab/internal/modules/experiment/port/in"
	"leverlab/internal/modules/focus/domain"
	focusout "leverlab/internal/modules/focus/port/out"
	"leverlab/internal/platform/day"
)

// ExperimentUsageReader summarizes past levers through the experiment
// module.
type ExperimentUsageReader struct {
	experiments experimentin.Usecase
}

var _ focusout.UsageReader = (*ExperimentUsageReader)(nil)

func NewExperimentUsageReader(experiments experimentin.Usecase) *ExperimentUsageReader {
	return &ExperimentUsageReader{experiments: experiments}
}

func (r *ExperimentUsageReader) Usage(ctx context.Context, userID string) (domain.Usage, error) {
	stats, err := r.experiments.LeverStats(ctx, experimentdto.LeverStatsInput{UserID: userID})
	if err != nil {
		return domain.Usage{}, err
	}
	usage := domain.Usage{
		ActiveLeverRef:    stats.ActiveLeverRef,
		LastUsed:          make(map[string]day.Date, len(stats.LastUsed)),
		MaxExperimentRows: stats.MaxExperimentRows,
	}
	for ref, raw := range stats.LastUsed {
		if d, err := day.Parse(raw); err == nil {
			usage.LastUsed[ref] = d
		}
	}
	return usage, nil
}
