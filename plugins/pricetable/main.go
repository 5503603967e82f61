package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pricingrpc "lootledger/internal/modules/pricing/adapter/out/rpc"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"gopkg.in/yaml.v3"
)

// pricetable answers market price queries from a static YAML table. The
// table path comes from PRICETABLE_PATH, defaulting to pricetable.yaml next
// to the binary.
type server struct {
	path   string
	logger hclog.Logger

	mu     sync.Mutex
	prices map[int64]int64
	mtime  int64
}

func (s *server) GetMetadata(_ context.Context, _ *pricingrpc.Empty) (*pricingrpc.Metadata, error) {
	return &pricingrpc.Metadata{
		Name:         "pricetable",
		Version:      "1.0.0",
		Capabilities: []string{"price_source"},
	}, nil
}

func (s *server) MarketPrice(_ context.Context, in *pricingrpc.MarketPriceRequest) (*pricingrpc.MarketPriceResponse, error) {
	prices, err := s.table()
	if err != nil {
		return nil, err
	}
	copper, ok := prices[in.ItemID]
	s.logger.Debug("quote", "item", in.ItemID, "found", ok)
	return &pricingrpc.MarketPriceResponse{ItemID: in.ItemID, Copper: copper, Found: ok}, nil
}

// table reloads the file when its modification time changes.
func (s *server) table() (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]int64{}, nil
		}
		return nil, fmt.Errorf("stat price table: %w", err)
	}
	if s.prices != nil && info.ModTime().UnixNano() == s.mtime {
		return s.prices, nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read price table: %w", err)
	}
	file := struct {
		Prices map[int64]int64 `yaml:"prices"`
	}{}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("decode price table: %w", err)
	}
	if file.Prices == nil {
		file.Prices = map[int64]int64{}
	}
	s.prices = file.Prices
	s.mtime = info.ModTime().UnixNano()
	s.logger.Info("price table loaded", "path", s.path, "items", len(s.prices))
	return s.prices, nil
}

func tablePath() string {
	if path := os.Getenv("PRICETABLE_PATH"); path != "" {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return "pricetable.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "pricetable.yaml")
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "pricetable",
		Output:     os.Stderr,
		Level:      hclog.Info,
		JSONFormat: true,
	})
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pricingrpc.HandshakeConfig,
		Plugins:         pricingrpc.PluginMap(&server{path: tablePath(), logger: logger}),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}
