package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "phraser"
	serviceName       = "leverlab.phraser.v1.Phraser"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodPhrase      = "/" + serviceName + "/Phrase"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LEVERLAB_PHRASER",
	MagicCookieValue: "leverlab",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PhraseRequest carries the outcome facts as the JSON the domain encodes.
type PhraseRequest struct {
	FactsJSON string `json:"facts_json"`
	MaxWords  int32  `json:"max_words"`
}

type PhraseResponse struct {
	Sentence string `json:"sentence"`
}

type PhraserServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Phrase(ctx context.Context, in *PhraseRequest) (*PhraseResponse, error)
}

type PhraserClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Phrase(ctx context.Context, in *PhraseRequest) (*PhraseResponse, error)
}

type phraserClient struct {
	conn *grpc.ClientConn
}

func NewPhraserClient(conn *grpc.ClientConn) PhraserClient {
	return &phraserClient{conn: conn}
}

func (c *phraserClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *phraserClient) Phrase(ctx context.Context, in *PhraseRequest) (*PhraseResponse, error) {
	out := &PhraseResponse{}
	if err := c.conn.Invoke(ctx, methodPhrase, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterPhraserServer(server grpc.ServiceRegistrar, impl PhraserServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*PhraserServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Phrase",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PhraseRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Phrase(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPhrase}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*PhraseRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Phrase(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/phraser-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl PhraserServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterPhraserServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewPhraserClient(conn), nil
}

func PluginMap(impl PhraserServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
