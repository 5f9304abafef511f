package out

import (
	"context"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
)

// TemplatePhraser writes the conclusion locally from fixed templates.
type TemplatePhraser struct{}

func NewTemplatePhraser() experimentout.Phraser {
	return TemplatePhraser{}
}

func (TemplatePhraser) Phrase(ctx context.Context, facts domain.Facts) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return domain.TemplateConclusion(facts), nil
}
