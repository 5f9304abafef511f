package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leverlab/internal/modules/experiment/domain"
)

type phraserFunc func(ctx context.Context, facts domain.Facts) (string, error)

func (f phraserFunc) Phrase(ctx context.Context, facts domain.Facts) (string, error) {
	return f(ctx, facts)
}

func TestConcludeDegradesToEmpty(t *testing.T) {
	t.Parallel()
	facts := domain.Facts{Alignment: domain.AlignmentAligned, ConfidenceLabel: domain.ConfidenceHigh}

	cases := map[string]phraserFunc{
		"error": func(context.Context, domain.Facts) (string, error) {
			return "", errors.New("missing api key")
		},
		"ignores deadline": func(context.Context, domain.Facts) (string, error) {
			time.Sleep(200 * time.Millisecond)
			return "Too late.", nil
		},
		"verbose": func(context.Context, domain.Facts) (string, error) {
			return strings.Repeat("very ", 40), nil
		},
		"panic": func(context.Context, domain.Facts) (string, error) {
			panic("boom")
		},
	}
	for name, phraser := range cases {
		svc := NewConclusionService(phraser, 20*time.Millisecond)
		started := time.Now()
		assert.Empty(t, svc.Conclude(context.Background(), facts), name)
		assert.Less(t, time.Since(started), 150*time.Millisecond, name)
	}

	var nilSvc *ConclusionService
	assert.Empty(t, nilSvc.Conclude(context.Background(), facts))
}

func TestConcludeKeepsFirstSentence(t *testing.T) {
	t.Parallel()
	svc := NewConclusionService(phraserFunc(func(context.Context, domain.Facts) (string, error) {
		return "Keep the walks. They helped a lot.\n", nil
	}), time.Second)
	assert.Equal(t, "Keep the walks.", svc.Conclude(context.Background(), domain.Facts{}))
}
