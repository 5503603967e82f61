package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"lootledger/internal/modules/pricing/domain"
	"lootledger/internal/modules/pricing/dto"
	pricingout "lootledger/internal/modules/pricing/port/out"
)

type PricingService struct {
	store  pricingout.ManifestStore
	host   pricingout.Host
	logger *slog.Logger

	mu       sync.Mutex
	verified map[string]string
}

func NewPricingService(store pricingout.ManifestStore, host pricingout.Host, logger *slog.Logger) *PricingService {
	return &PricingService{store: store, host: host, logger: logger, verified: map[string]string{}}
}

func (s *PricingService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *PricingService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// Quote asks the named plugin for the market price of one item.
func (s *PricingService) Quote(ctx context.Context, input dto.QuoteInput) (dto.QuoteOutput, error) {
	if input.ItemID <= 0 {
		return dto.QuoteOutput{}, fmt.Errorf("item id must be positive")
	}
	manifest, err := s.getRunnableManifest(ctx, input.PluginName)
	if err != nil {
		return dto.QuoteOutput{}, err
	}
	quote, err := s.host.MarketPrice(ctx, manifest, input.ItemID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dto.QuoteOutput{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, input.PluginName)
		}
		return dto.QuoteOutput{}, err
	}
	if err := quote.Validate(); err != nil {
		return dto.QuoteOutput{}, fmt.Errorf("plugin %s: %w", input.PluginName, err)
	}
	s.logger.Debug("plugin quote", "plugin", input.PluginName, "item", input.ItemID, "copper", quote.Copper, "found", quote.Found)
	return dto.QuoteOutput{
		PluginName: input.PluginName,
		ItemID:     quote.ItemID,
		Copper:     quote.Copper,
		Found:      quote.Found,
	}, nil
}

func (s *PricingService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, fmt.Errorf("plugin %s: %w", manifest.Name, err)
		}
	}
	return manifests, nil
}

func (s *PricingService) getRunnableManifest(ctx context.Context, pluginName string) (domain.Manifest, error) {
	if s.host == nil {
		return domain.Manifest{}, fmt.Errorf("plugin host is not configured")
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	idx := slices.IndexFunc(manifests, func(m domain.Manifest) bool { return m.Name == pluginName })
	if idx < 0 {
		return domain.Manifest{}, fmt.Errorf("%w: %q", domain.ErrPluginNotFound, pluginName)
	}
	manifest := manifests[idx]
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, pluginName)
	}
	if err := s.verify(manifest); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}

// verify checks the binary checksum once per manifest checksum; quotes run
// far more often than the binary changes.
func (s *PricingService) verify(manifest domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verified[manifest.Binary] == manifest.SHA256 {
		return nil
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return err
	}
	s.verified[manifest.Binary] = manifest.SHA256
	return nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
