package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"leverlab/internal/modules/experiment/adapter/out/rpc"
	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
)

const defaultPluginStartTimeout = 3 * time.Second

var ErrPluginNotConfigured = errors.New("phraser plugin binary is not configured")

// PluginPhraser runs an external phraser binary over go-plugin gRPC. The
// process is started per call and killed afterwards.
type PluginPhraser struct {
	binary       string
	startTimeout time.Duration
}

func NewPluginPhraser(binary string) (experimentout.Phraser, error) {
	if binary == "" {
		return nil, ErrPluginNotConfigured
	}
	return &PluginPhraser{binary: binary, startTimeout: defaultPluginStartTimeout}, nil
}

func (p *PluginPhraser) Phrase(ctx context.Context, facts domain.Facts) (string, error) {
	client, closeFn, err := p.connect()
	if err != nil {
		return "", err
	}
	defer closeFn()

	raw, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("encode facts: %w", err)
	}
	resp, err := client.Phrase(ctx, &rpc.PhraseRequest{FactsJSON: string(raw), MaxWords: domain.MaxConclusionWords})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("phraser plugin: %w", context.DeadlineExceeded)
		}
		return "", fmt.Errorf("phraser plugin: %w", err)
	}
	return resp.Sentence, nil
}

func (p *PluginPhraser) connect() (rpc.PhraserClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(p.binary),
		Managed:          true,
		StartTimeout:     p.startTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start phraser plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense phraser plugin: %w", err)
	}
	typed, ok := raw.(rpc.PhraserClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("phraser plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}
