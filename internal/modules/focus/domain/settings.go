package domain

import "fmt"

// NoveltyStep penalises a lever used within Days days.
type NoveltyStep struct {
	Days    int
	Penalty float64
}

type Settings struct {
	MinExperimentRows int
	MinCorrN          int
	Novelty           []NoveltyStep
}

func DefaultSettings() Settings {
	return Settings{
		MinExperimentRows: 4,
		MinCorrN:          14,
		Novelty: []NoveltyStep{
			{Days: 14, Penalty: 0.35},
			{Days: 30, Penalty: 0.20},
			{Days: 60, Penalty: 0.10},
		},
	}
}

func (s Settings) Validate() error {
	prev := -1
	for _, step := range s.Novelty {
		if step.Days <= prev {
			return fmt.Errorf("novelty steps must have increasing days")
		}
		if step.Penalty < 0 || step.Penalty >= 1 {
			return fmt.Errorf("novelty penalty must be within [0, 1), got %g", step.Penalty)
		}
		prev = step.Days
	}
	return nil
}

// NoveltyPenalty grades how recently a lever was used. known is false when
// the lever has never been used. A last use after today, such as an
// experiment scheduled to start later, counts as in use today.
func (s Settings) NoveltyPenalty(daysSince int, known bool) float64 {
	if !known {
		return 0
	}
	if daysSince < 0 {
		daysSince = 0
	}
	for _, step := range s.Novelty {
		if daysSince <= step.Days {
			return step.Penalty
		}
	}
	return 0
}
