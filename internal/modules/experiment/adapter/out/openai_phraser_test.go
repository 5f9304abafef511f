package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	experimentoutadapter "leverlab/internal/modules/experiment/adapter/out"
	"leverlab/internal/modules/experiment/domain"
)

func TestOpenAIPhraserSendsWordCap(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Mood held steady."},
			}},
		})
	}))
	defer srv.Close()

	phraser, err := experimentoutadapter.NewOpenAIPhraser(experimentoutadapter.OpenAIPhraserConfig{APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)

	sentence, err := phraser.Phrase(context.Background(), domain.Facts{TargetMetric: "mood", ConfidenceLabel: domain.ConfidenceLow})
	require.NoError(t, err)
	assert.Equal(t, "Mood held steady.", sentence)

	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "at most 22 words")
	var prompt struct {
		Tone     string `json:"tone"`
		MaxWords int    `json:"max_words"`
	}
	require.NoError(t, json.Unmarshal([]byte(got.Messages[1].Content), &prompt))
	assert.Equal(t, domain.MaxConclusionWords, prompt.MaxWords)
	assert.Equal(t, "hedged", prompt.Tone)
}

func TestOpenAIPhraserNeedsKey(t *testing.T) {
	_, err := experimentoutadapter.NewOpenAIPhraser(experimentoutadapter.OpenAIPhraserConfig{})
	assert.ErrorIs(t, err, experimentoutadapter.ErrMissingAPIKey)
}
