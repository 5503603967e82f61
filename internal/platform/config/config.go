package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds file locations under the data directory plus environment
// overrides for runtime policy.
type Config struct {
	DataPath     string
	DBPath       string
	SessionsPath string
	ArchivePath  string
	UndoPath     string
	ActivePath   string
	ReportsPath  string
	CatalogPath  string
	PricesPath   string
	TuningPath   string
	Runtime      Runtime
}

// Runtime is parsed from LOOTLEDGER_* environment variables.
type Runtime struct {
	LogLevel     string        `env:"LOOTLEDGER_LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"LOOTLEDGER_LOG_FORMAT" envDefault:"text"`
	UndoWindow   time.Duration `env:"LOOTLEDGER_UNDO_WINDOW" envDefault:"10m"`
	UndoDepth    int           `env:"LOOTLEDGER_UNDO_DEPTH" envDefault:"20"`
	TopN         int           `env:"LOOTLEDGER_TOP_N" envDefault:"5"`
	FeedInterval time.Duration `env:"LOOTLEDGER_FEED_INTERVAL" envDefault:"2s"`
	PricePlugin  string        `env:"LOOTLEDGER_PRICE_PLUGIN"`
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	runtime := Runtime{}
	if err := env.Parse(&runtime); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := runtime.Validate(); err != nil {
		return Config{}, err
	}
	return Config{
		DataPath:     dataPath,
		DBPath:       filepath.Join(dataPath, "lootledger.db"),
		SessionsPath: filepath.Join(dataPath, "sessions"),
		ArchivePath:  filepath.Join(dataPath, "archive"),
		UndoPath:     filepath.Join(dataPath, "undo"),
		ActivePath:   filepath.Join(dataPath, "active"),
		ReportsPath:  filepath.Join(dataPath, "reports"),
		CatalogPath:  filepath.Join(dataPath, "items.yaml"),
		PricesPath:   filepath.Join(dataPath, "prices.yaml"),
		TuningPath:   filepath.Join(dataPath, "tuning.yaml"),
		Runtime:      runtime,
	}, nil
}

func (r Runtime) Validate() error {
	if r.UndoWindow <= 0 {
		return fmt.Errorf("LOOTLEDGER_UNDO_WINDOW must be positive")
	}
	if r.UndoDepth <= 0 {
		return fmt.Errorf("LOOTLEDGER_UNDO_DEPTH must be positive")
	}
	if r.TopN <= 0 {
		return fmt.Errorf("LOOTLEDGER_TOP_N must be positive")
	}
	if r.FeedInterval <= 0 {
		return fmt.Errorf("LOOTLEDGER_FEED_INTERVAL must be positive")
	}
	switch r.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", r.LogFormat)
	}
	return nil
}
