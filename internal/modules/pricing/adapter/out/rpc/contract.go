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
	PluginMapKey      = "price_source"
	serviceName       = "lootledger.pricing.v1.PriceSource"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodMarketPrice = "/" + serviceName + "/MarketPrice"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LOOTLEDGER_PRICE_PLUGIN",
	MagicCookieValue: "lootledger",
}

// jsonCodec carries the plain Go structs below over gRPC without generated
// protobuf types.
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
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type MarketPriceRequest struct {
	ItemID int64 `json:"item_id"`
}

type MarketPriceResponse struct {
	ItemID int64 `json:"item_id"`
	Copper int64 `json:"copper"`
	Found  bool  `json:"found"`
}

type PriceSourceServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	MarketPrice(ctx context.Context, in *MarketPriceRequest) (*MarketPriceResponse, error)
}

type PriceSourceClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	MarketPrice(ctx context.Context, in *MarketPriceRequest) (*MarketPriceResponse, error)
}

type priceSourceClient struct {
	conn *grpc.ClientConn
}

func NewPriceSourceClient(conn *grpc.ClientConn) PriceSourceClient {
	return &priceSourceClient{conn: conn}
}

func (c *priceSourceClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *priceSourceClient) MarketPrice(ctx context.Context, in *MarketPriceRequest) (*MarketPriceResponse, error) {
	out := &MarketPriceResponse{}
	if err := c.conn.Invoke(ctx, methodMarketPrice, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterPriceSourceServer(server grpc.ServiceRegistrar, impl PriceSourceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*PriceSourceServer)(nil),
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
				MethodName: "MarketPrice",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &MarketPriceRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.MarketPrice(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodMarketPrice}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*MarketPriceRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.MarketPrice(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/price-source-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl PriceSourceServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterPriceSourceServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewPriceSourceClient(conn), nil
}

func PluginMap(impl PriceSourceServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
