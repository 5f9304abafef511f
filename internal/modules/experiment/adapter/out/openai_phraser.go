package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
)

var ErrMissingAPIKey = errors.New("openai api key is not configured")

var phraserSystemPrompt = fmt.Sprintf(`You write one short sentence (at most %d words) summarising a personal self-experiment for the person who ran it.
Use only the JSON facts you are given. Match the tone field: decisive states the result plainly, balanced says it likely helped or hurt, hedged says it is too early to tell.
Do not invent numbers. Do not give medical advice. Reply with the sentence only.`, domain.MaxConclusionWords)

type OpenAIPhraserConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	RatePerMinute int
}

// OpenAIPhraser asks a chat completion model for the conclusion. Calls are
// rate limited so a burst of finalizes cannot flood the API.
type OpenAIPhraser struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

func NewOpenAIPhraser(cfg OpenAIPhraserConfig) (experimentout.Phraser, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 20
	}
	log.Debug().Str("model", model).Int("rpm", perMinute).Msg("openai phraser configured")
	return &OpenAIPhraser{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}, nil
}

type phrasePrompt struct {
	domain.Facts
	Tone     domain.Tone `json:"tone"`
	MaxWords int         `json:"max_words"`
}

func (p *OpenAIPhraser) Phrase(ctx context.Context, facts domain.Facts) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("phraser rate limit: %w", err)
	}
	prompt, err := json.Marshal(phrasePrompt{Facts: facts, Tone: domain.ToneFor(facts.ConfidenceLabel), MaxWords: domain.MaxConclusionWords})
	if err != nil {
		return "", fmt.Errorf("encode facts: %w", err)
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: phraserSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(prompt)},
		},
		Temperature:         0.2,
		MaxCompletionTokens: 80,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	log.Debug().Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("openai phraser responded")
	return resp.Choices[0].Message.Content, nil
}
