package out

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	pricingrpc "lootledger/internal/modules/pricing/adapter/out/rpc"
	"lootledger/internal/modules/pricing/domain"
	pricingout "lootledger/internal/modules/pricing/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
)

type connection struct {
	client *plugin.Client
	rpc    pricingrpc.PriceSourceClient
	sha256 string
}

// GRPCHost keeps one plugin process per manifest alive between quotes.
// Close kills them all.
type GRPCHost struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*connection
}

func NewGRPCHost(logger *slog.Logger) pricingout.Host {
	return &GRPCHost{logger: logger, conns: map[string]*connection{}}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.spawn(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, err := h.connection(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		h.drop(manifest.Name)
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) MarketPrice(ctx context.Context, manifest domain.Manifest, itemID int64) (domain.Quote, error) {
	client, err := h.connection(manifest)
	if err != nil {
		return domain.Quote{}, err
	}
	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.MarketPrice(callCtx, &pricingrpc.MarketPriceRequest{ItemID: itemID})
	if err != nil {
		h.drop(manifest.Name)
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Quote{}, fmt.Errorf("%w: item %d", domain.ErrPluginTimeout, itemID)
		}
		return domain.Quote{}, fmt.Errorf("market price: %w", err)
	}
	return domain.Quote{ItemID: itemID, Copper: response.Copper, Found: response.Found}, nil
}

func (h *GRPCHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, conn := range h.conns {
		conn.client.Kill()
		delete(h.conns, name)
	}
	return nil
}

// connection reuses a live process unless the manifest checksum changed
// since it was started.
func (h *GRPCHost) connection(manifest domain.Manifest) (pricingrpc.PriceSourceClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[manifest.Name]; ok {
		if conn.sha256 == manifest.SHA256 && !conn.client.Exited() {
			return conn.rpc, nil
		}
		conn.client.Kill()
		delete(h.conns, manifest.Name)
	}
	client, rpcClient, err := h.start(manifest)
	if err != nil {
		return nil, err
	}
	h.conns[manifest.Name] = &connection{client: client, rpc: rpcClient, sha256: manifest.SHA256}
	h.logger.Info("price plugin started", "plugin", manifest.Name, "version", manifest.Version)
	return rpcClient, nil
}

func (h *GRPCHost) drop(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[name]; ok {
		conn.client.Kill()
		delete(h.conns, name)
	}
}

func (h *GRPCHost) spawn(manifest domain.Manifest) (pricingrpc.PriceSourceClient, func(), error) {
	client, rpcClient, err := h.start(manifest)
	if err != nil {
		return nil, nil, err
	}
	return rpcClient, func() { client.Kill() }, nil
}

func (h *GRPCHost) start(manifest domain.Manifest) (*plugin.Client, pricingrpc.PriceSourceClient, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pricingrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pricingrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Name: manifest.Name, Output: io.Discard, Level: hclog.NoLevel}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(pricingrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(pricingrpc.PriceSourceClient)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return client, typed, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
