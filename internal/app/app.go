package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/stockapi"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/search"
	"github.com/bobmcallan/folio/internal/services/valuation"
	"github.com/bobmcallan/folio/internal/services/view"
)

// App holds all initialized services and clients. It is the shared core used
// by cmd/folio-server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	StockClient interfaces.StockAPIClient
	Store       interfaces.PortfolioStore
	View        interfaces.ViewState
	StartupTime time.Time

	scheduler *scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, the stock API client, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	client := stockapi.NewClient(
		stockapi.WithBaseURL(config.Clients.StockAPI.BaseURL),
		stockapi.WithLogger(logger),
		stockapi.WithRateLimit(config.Clients.StockAPI.RateLimit),
		stockapi.WithTimeout(config.Clients.StockAPI.GetTimeout()),
	)

	store := portfolio.NewStore(
		client,
		portfolio.ParseDuplicatePolicy(config.Portfolio.DuplicatePolicy),
		logger,
	)

	app := &App{
		Config:      config,
		Logger:      logger,
		StockClient: client,
		Store:       store,
		View:        view.NewManager(logger),
		StartupTime: time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("duplicate_policy", config.Portfolio.DuplicatePolicy).
		Msg("Application initialized")

	return app, nil
}

// NewSearcher builds a debounced symbol searcher. Each interactive session
// gets its own: the debounce window and generation counter track one user's
// typing, not the whole process.
func (a *App) NewSearcher() interfaces.SymbolSearcher {
	return search.NewSearcher(
		a.StockClient,
		a.Config.Portfolio.GetSearchDebounce(),
		a.Config.Clients.StockAPI.SearchLimit,
		a.Logger,
	)
}

// ViewOf applies the current sort preferences and an optional filter term to
// a holdings slice. The underlying snapshot order is never changed.
func (a *App) ViewOf(holdings []models.Holding, filter string) []models.Holding {
	settings := a.View.Settings()
	out := valuation.FilterHoldings(holdings, filter)
	return valuation.SortHoldings(out, settings.SortBy, settings.SortDirection)
}

// Start launches background work: the scheduled price refresh.
func (a *App) Start() error {
	sched, err := newScheduler(a)
	if err != nil {
		return err
	}
	a.scheduler = sched
	a.scheduler.start()
	return nil
}

// Close stops background work.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.stop()
	}
	a.Logger.Info().Msg("Application closed")
}
