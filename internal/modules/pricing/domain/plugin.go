package domain

import (
	"errors"
	"fmt"
	"regexp"
)

type Capability string

// CapabilityPriceSource is the only capability a plugin may declare today.
const CapabilityPriceSource Capability = "price_source"

var (
	ErrPluginDisabled   = errors.New("plugin is disabled")
	ErrPluginNotFound   = errors.New("plugin not found")
	ErrChecksumMismatch = errors.New("plugin checksum mismatch")
	ErrPluginTimeout    = errors.New("plugin timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest is one entry of plugins.yaml. Name comes from the entry's key.
type Manifest struct {
	Name         string       `yaml:"-"`
	Version      string       `yaml:"version"`
	Binary       string       `yaml:"binary"`
	SHA256       string       `yaml:"sha256"`
	Enabled      bool         `yaml:"enabled"`
	Capabilities []Capability `yaml:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityPriceSource:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// Quote is a plugin's answer for one item. Found is false when the plugin
// has no price for it.
type Quote struct {
	ItemID int64
	Copper int64
	Found  bool
}

func (q Quote) Validate() error {
	if q.ItemID <= 0 {
		return fmt.Errorf("quote item id must be positive")
	}
	if q.Found && q.Copper < 0 {
		return fmt.Errorf("quote for item %d is negative", q.ItemID)
	}
	return nil
}
