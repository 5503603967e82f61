package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"lootledger/internal/platform/config"
)

func TestNewDerivesPathsAndDefaults(t *testing.T) {
	cfg, err := config.New("/tmp/ll")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/tmp/ll", "lootledger.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.Runtime.UndoWindow != 10*time.Minute || cfg.Runtime.TopN != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg.Runtime)
	}
}

func TestNewReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("LOOTLEDGER_UNDO_WINDOW", "30s")
	t.Setenv("LOOTLEDGER_TOP_N", "3")
	t.Setenv("LOOTLEDGER_LOG_FORMAT", "json")
	cfg, err := config.New("data")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Runtime.UndoWindow != 30*time.Second || cfg.Runtime.TopN != 3 || cfg.Runtime.LogFormat != "json" {
		t.Fatalf("env overrides not applied: %+v", cfg.Runtime)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty data path must fail")
	}
	t.Setenv("LOOTLEDGER_LOG_FORMAT", "xml")
	if _, err := config.New("data"); err == nil {
		t.Fatalf("unknown log format must fail")
	}
}
