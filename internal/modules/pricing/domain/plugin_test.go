package domain_test

import (
	"strings"
	"testing"

	"lootledger/internal/modules/pricing/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:         "pricetable",
		Version:      "1.0.0",
		Binary:       "/tmp/pricetable",
		SHA256:       strings.Repeat("a", 64),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityPriceSource},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest: %v", err)
	}
	cases := map[string]func(*domain.Manifest){
		"missing name":    func(m *domain.Manifest) { m.Name = "" },
		"missing version": func(m *domain.Manifest) { m.Version = "" },
		"missing binary":  func(m *domain.Manifest) { m.Binary = "" },
		"bad checksum":    func(m *domain.Manifest) { m.SHA256 = "ABC" },
		"no capabilities": func(m *domain.Manifest) { m.Capabilities = nil },
		"unknown cap":     func(m *domain.Manifest) { m.Capabilities = []domain.Capability{"command"} },
		"batch quote": func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityPriceSource, "batch_quote"}
		},
		"duplicate cap": func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityPriceSource, domain.CapabilityPriceSource}
		},
	}
	for name, mutate := range cases {
		m := validManifest()
		mutate(&m)
		if err := m.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestQuoteValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.Quote{ItemID: 0}).Validate(); err == nil {
		t.Fatalf("expected item id error")
	}
	if err := (domain.Quote{ItemID: 5, Copper: -1, Found: true}).Validate(); err == nil {
		t.Fatalf("expected negative quote error")
	}
	if err := (domain.Quote{ItemID: 5, Copper: -1}).Validate(); err != nil {
		t.Fatalf("absent quote should not be checked for price: %v", err)
	}
}
