package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/telemetry"
)

const DefaultPhraseTimeout = 8 * time.Second

// ConclusionService calls the phraser under a hard deadline and degrades to
// an empty conclusion on any failure.
type ConclusionService struct {
	phraser experimentout.Phraser
	timeout time.Duration
}

func NewConclusionService(phraser experimentout.Phraser, timeout time.Duration) *ConclusionService {
	if timeout <= 0 {
		timeout = DefaultPhraseTimeout
	}
	return &ConclusionService{phraser: phraser, timeout: timeout}
}

type phraseResult struct {
	text string
	err  error
}

func (c *ConclusionService) Conclude(ctx context.Context, facts domain.Facts) string {
	if c == nil || c.phraser == nil {
		telemetry.PhraserCalls.WithLabelValues("disabled").Inc()
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan phraseResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- phraseResult{err: errors.New("phraser panicked")}
			}
		}()
		text, err := c.phraser.Phrase(ctx, facts)
		done <- phraseResult{text: text, err: err}
	}()

	var res phraseResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = phraseResult{err: ctx.Err()}
	}

	if res.err != nil {
		outcome := "error"
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		telemetry.PhraserCalls.WithLabelValues(outcome).Inc()
		log.Warn().Err(res.err).Str("outcome", outcome).Msg("conclusion phraser failed; continuing without conclusion")
		return ""
	}
	sentence, err := domain.SanitizeConclusion(res.text)
	if err != nil {
		telemetry.PhraserCalls.WithLabelValues("rejected").Inc()
		log.Warn().Err(err).Msg("conclusion phraser output rejected")
		return ""
	}
	telemetry.PhraserCalls.WithLabelValues("ok").Inc()
	return sentence
}
