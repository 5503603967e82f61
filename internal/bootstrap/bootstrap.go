package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	metricsinadapter "lootledger/internal/modules/metrics/adapter/in"
	metricsoutadapter "lootledger/internal/modules/metrics/adapter/out"
	metricsservice "lootledger/internal/modules/metrics/service"
	metricsusecase "lootledger/internal/modules/metrics/usecase"
	pricinginadapter "lootledger/internal/modules/pricing/adapter/in"
	pricingoutadapter "lootledger/internal/modules/pricing/adapter/out"
	pricingservice "lootledger/internal/modules/pricing/service"
	pricingusecase "lootledger/internal/modules/pricing/usecase"
	sessioninadapter "lootledger/internal/modules/session/adapter/in"
	sessionoutadapter "lootledger/internal/modules/session/adapter/out"
	sessionservice "lootledger/internal/modules/session/service"
	sessionusecase "lootledger/internal/modules/session/usecase"
	valuationinadapter "lootledger/internal/modules/valuation/adapter/in"
	valuationoutadapter "lootledger/internal/modules/valuation/adapter/out"
	valuationout "lootledger/internal/modules/valuation/port/out"
	valuationservice "lootledger/internal/modules/valuation/service"
	valuationusecase "lootledger/internal/modules/valuation/usecase"
	"lootledger/internal/platform/clock"
	"lootledger/internal/platform/config"
	"lootledger/internal/platform/id"
	"lootledger/internal/platform/logging"
	uiapp "lootledger/internal/ui/app"
)

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	SessionCLI   sessioninadapter.CLIHandler
	ValuationCLI valuationinadapter.CLIHandler
	PricingCLI   pricinginadapter.CLIHandler
	MetricsCLI   metricsinadapter.CLIHandler
	Feed         *metricsinadapter.WebsocketFeed

	closers []io.Closer
}

func New(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, cfg.Runtime.LogLevel, cfg.Runtime.LogFormat)
	clk := clock.SystemClock{}
	ids := id.UUIDv7{}
	app := &App{Config: cfg, Logger: logger}

	host := pricingoutadapter.NewGRPCHost(logger.With("component", "pricing"))
	app.closers = append(app.closers, host)
	pricingUC := pricingusecase.NewInteractor(pricingservice.NewPricingService(
		pricingoutadapter.NewYAMLManifestStore(cfg.DataPath),
		host,
		logger,
	))

	tuning, err := valuationoutadapter.NewYAMLTuningStore(cfg.TuningPath).Load(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load tuning: %w", err)
	}
	var sources []valuationout.PriceSource
	if cfg.Runtime.PricePlugin != "" {
		sources = append(sources, valuationoutadapter.NewPluginPriceSource(pricingUC, cfg.Runtime.PricePlugin))
	}
	valuationUC := valuationusecase.NewInteractor(valuationservice.NewValuationService(
		valuationoutadapter.NewYAMLItemCatalog(cfg.CatalogPath),
		valuationoutadapter.NewYAMLPriceOverrides(cfg.PricesPath),
		valuationoutadapter.NewZeroDisenchant(),
		tuning,
		logger,
		sources...,
	))

	history, err := sessionoutadapter.NewSQLiteHistoryProjector(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new history projector: %w", err)
	}
	app.closers = append(app.closers, history)

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, sessionoutadapter.NewValuationAppraiser(valuationUC), logger),
		sessionusecase.Stores{
			Sessions: sessionoutadapter.NewYAMLSessionStore(cfg.SessionsPath),
			Archive:  sessionoutadapter.NewZstdArchiveStore(cfg.ArchivePath),
			Active:   sessionoutadapter.NewFileActiveSessionStore(cfg.ActivePath),
			Undo:     sessionoutadapter.NewFileUndoJournal(cfg.UndoPath),
			History:  history,
			Reports:  sessionoutadapter.NewMarkdownReportStore(cfg.ReportsPath),
		},
		sessionusecase.UndoPolicy{Window: cfg.Runtime.UndoWindow, Depth: cfg.Runtime.UndoDepth},
		logger.With("module", "session"),
	)

	metricsUC := metricsusecase.NewInteractor(metricsservice.NewMetricsService(
		metricsoutadapter.NewSessionSnapshotSource(sessionUC),
		cfg.Runtime.TopN,
		logger.With("module", "metrics"),
	))

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.ValuationCLI = valuationinadapter.NewCLIHandler(valuationUC)
	app.PricingCLI = pricinginadapter.NewCLIHandler(pricingUC)
	app.MetricsCLI = metricsinadapter.NewCLIHandler(metricsUC)
	app.Feed = metricsinadapter.NewWebsocketFeed(metricsUC, cfg.Runtime.FeedInterval, logger.With("component", "feed"))
	return app, nil
}

// Close releases plugin processes and the history database.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(identity string, app *App) error {
	model := uiapp.NewModel(identity, app.SessionCLI, app.MetricsCLI, app.Config.Runtime.FeedInterval)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
