package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	valuationout "lootledger/internal/modules/valuation/adapter/out"
	"lootledger/internal/modules/valuation/domain"
)

func TestYAMLItemCatalogPendingUntilPut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := valuationout.NewYAMLItemCatalog(filepath.Join(t.TempDir(), "items.yaml"))

	lookup, err := catalog.Lookup(ctx, 2589)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if pending, ok := lookup.(domain.Pending); !ok || pending.ID != 2589 {
		t.Fatalf("expected pending lookup, got %#v", lookup)
	}

	info := domain.ItemInfo{ID: 2589, Name: "Linen Cloth", Quality: domain.QualityCommon, Class: 7, Subclass: 5, VendorPrice: 13}
	if err := catalog.Put(ctx, info); err != nil {
		t.Fatalf("put: %v", err)
	}
	lookup, err = catalog.Lookup(ctx, 2589)
	if err != nil {
		t.Fatalf("lookup after put: %v", err)
	}
	resolved, ok := lookup.(domain.Resolved)
	if !ok || resolved.Info != info {
		t.Fatalf("expected resolved %+v, got %#v", info, lookup)
	}
	items, err := catalog.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v %+v", err, items)
	}
}

func TestYAMLPriceOverridesSetAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := valuationout.NewYAMLPriceOverrides(filepath.Join(t.TempDir(), "prices.yaml"))
	if _, ok, err := store.MarketPrice(ctx, 1); err != nil || ok {
		t.Fatalf("expected no override: ok=%v err=%v", ok, err)
	}
	if err := store.SetPrice(ctx, 1, 450); err != nil {
		t.Fatalf("set price: %v", err)
	}
	price, ok, err := store.MarketPrice(ctx, 1)
	if err != nil || !ok || price != 450 {
		t.Fatalf("expected 450 override, got %d ok=%v err=%v", price, ok, err)
	}
	if err := store.ClearPrice(ctx, 1); err != nil {
		t.Fatalf("clear price: %v", err)
	}
	if _, ok, _ := store.MarketPrice(ctx, 1); ok {
		t.Fatalf("override should be cleared")
	}
}

func TestYAMLTuningStoreOverlaysDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	missing, err := valuationout.NewYAMLTuningStore(filepath.Join(dir, "absent.yaml")).Load(ctx)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if !missing.FrictionFactor.Equal(domain.DefaultTuning().FrictionFactor) {
		t.Fatalf("expected default friction, got %s", missing.FrictionFactor)
	}

	path := filepath.Join(dir, "tuning.yaml")
	raw := "friction_factor: 0.9\nmaterial_whitelist: [42]\ncontainer_patterns: [\"lockbox\"]\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	tuning, err := valuationout.NewYAMLTuningStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	if tuning.FrictionFactor.String() != "0.9" {
		t.Fatalf("expected friction 0.9, got %s", tuning.FrictionFactor)
	}
	if _, ok := tuning.MaterialWhitelist[42]; !ok || len(tuning.MaterialWhitelist) != 1 {
		t.Fatalf("expected whitelist replaced, got %v", tuning.MaterialWhitelist)
	}
	if !tuning.CapMultiplier.Equal(domain.DefaultTuning().CapMultiplier) {
		t.Fatalf("omitted keys must keep defaults")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("friction_factor: 1.5\n"), 0o644); err != nil {
		t.Fatalf("write bad tuning: %v", err)
	}
	if _, err := valuationout.NewYAMLTuningStore(bad).Load(ctx); err == nil {
		t.Fatalf("expected validation error for friction > 1")
	}
}
