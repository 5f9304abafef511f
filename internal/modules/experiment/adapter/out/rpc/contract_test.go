package rpc_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"leverlab/internal/modules/experiment/adapter/out/rpc"
)

type echoServer struct{}

func (echoServer) GetMetadata(context.Context, *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{Name: "echo", Version: "0.1.0"}, nil
}

func (echoServer) Phrase(_ context.Context, in *rpc.PhraseRequest) (*rpc.PhraseResponse, error) {
	if in.FactsJSON == "" {
		return nil, errors.New("no facts")
	}
	return &rpc.PhraseResponse{Sentence: in.FactsJSON}, nil
}

func dial(t *testing.T) rpc.PhraserClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterPhraserServer(srv, echoServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewPhraserClient(conn)
}

func TestPhraserRoundTrip(t *testing.T) {
	client := dial(t)
	ctx := context.Background()

	meta, err := client.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "echo", meta.Name)
	assert.Equal(t, "0.1.0", meta.Version)

	resp, err := client.Phrase(ctx, &rpc.PhraseRequest{FactsJSON: `{"alignment":"aligned"}`, MaxWords: 30})
	require.NoError(t, err)
	assert.Equal(t, `{"alignment":"aligned"}`, resp.Sentence)
}

func TestPhraserServerErrorsReachClient(t *testing.T) {
	client := dial(t)
	_, err := client.Phrase(context.Background(), &rpc.PhraseRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no facts")
}

func TestPluginMapUsesPhraserKey(t *testing.T) {
	m := rpc.PluginMap(echoServer{})
	require.Contains(t, m, rpc.PluginMapKey)
	p, ok := m[rpc.PluginMapKey].(*rpc.GRPCPlugin)
	require.True(t, ok)
	assert.NotNil(t, p.Impl)
}
