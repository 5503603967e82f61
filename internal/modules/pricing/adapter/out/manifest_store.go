package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"lootledger/internal/modules/pricing/domain"
	pricingout "lootledger/internal/modules/pricing/port/out"
)

// manifestFile is plugins.yaml: plugin name mapped to its entry.
type manifestFile struct {
	Plugins map[string]domain.Manifest `yaml:"plugins"`
}

// YAMLManifestStore reads the plugin registry from plugins.yaml in the data
// directory. Relative binaries resolve against the data directory.
type YAMLManifestStore struct {
	dataDir string
	path    string
}

func NewYAMLManifestStore(dataDir string) pricingout.ManifestStore {
	return &YAMLManifestStore{dataDir: dataDir, path: filepath.Join(dataDir, "plugins.yaml")}
}

func (s *YAMLManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var file manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	names := make([]string, 0, len(file.Plugins))
	for name := range file.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.Manifest, 0, len(names))
	for _, name := range names {
		m := file.Plugins[name]
		m.Name = name
		if m.Binary != "" && !filepath.IsAbs(m.Binary) {
			m.Binary = filepath.Join(s.dataDir, m.Binary)
		}
		out = append(out, m)
	}
	return out, nil
}
