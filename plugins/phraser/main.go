// Command phraser is a reference conclusion phraser served over go-plugin.
// Point LEVERLAB_PHRASER_PLUGIN at the built binary and set
// LEVERLAB_PHRASER=plugin to use it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-plugin"

	phraserrpc "leverlab/internal/modules/experiment/adapter/out/rpc"
	"leverlab/internal/modules/experiment/domain"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *phraserrpc.Empty) (*phraserrpc.Metadata, error) {
	return &phraserrpc.Metadata{Name: "template", Version: "1.0.0"}, nil
}

func (s *server) Phrase(ctx context.Context, in *phraserrpc.PhraseRequest) (*phraserrpc.PhraseResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var facts domain.Facts
	if err := json.Unmarshal([]byte(in.FactsJSON), &facts); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	sentence := domain.TemplateConclusion(facts)
	if words := strings.Fields(sentence); in.MaxWords > 0 && len(words) > int(in.MaxWords) {
		sentence = strings.TrimRight(strings.Join(words[:in.MaxWords], " "), ",;") + "."
	}
	return &phraserrpc.PhraseResponse{Sentence: sentence}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: phraserrpc.HandshakeConfig,
		Plugins:         phraserrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
