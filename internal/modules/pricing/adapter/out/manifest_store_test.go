package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pricingout "lootledger/internal/modules/pricing/adapter/out"
	"lootledger/internal/modules/pricing/domain"
)

func writeRegistry(t *testing.T, dir, raw string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "plugins.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.yaml: %v", err)
	}
}

func TestYAMLManifestStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	manifests, err := pricingout.NewYAMLManifestStore(t.TempDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected no manifests, got %+v", manifests)
	}
}

func TestYAMLManifestStoreNamesFromKeysSortedAndResolved(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRegistry(t, dir, `plugins:
  tsm:
    version: 0.3.0
    binary: /opt/tsm-bridge
    sha256: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb
    enabled: false
    capabilities: [price_source]
  pricetable:
    version: 1.0.0
    binary: bin/pricetable
    sha256: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
    enabled: true
    capabilities: [price_source]
`)
	manifests, err := pricingout.NewYAMLManifestStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(manifests) != 2 || manifests[0].Name != "pricetable" || manifests[1].Name != "tsm" {
		t.Fatalf("unexpected manifests: %+v", manifests)
	}
	if want := filepath.Join(dir, "bin", "pricetable"); manifests[0].Binary != want {
		t.Fatalf("binary = %s, want %s", manifests[0].Binary, want)
	}
	if manifests[1].Binary != "/opt/tsm-bridge" {
		t.Fatalf("absolute binary rewritten: %s", manifests[1].Binary)
	}
	if manifests[1].Enabled || len(manifests[1].Capabilities) != 1 || manifests[1].Capabilities[0] != domain.CapabilityPriceSource {
		t.Fatalf("unexpected tsm entry: %+v", manifests[1])
	}
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			t.Fatalf("%s: %v", m.Name, err)
		}
	}
}

func TestYAMLManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRegistry(t, dir, "plugins:\n  pricetable:\n    version: 1.0.0\n    region: eu\n")
	if _, err := pricingout.NewYAMLManifestStore(dir).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
