// Package app wires configuration, storage, clients and services into a
// single application core used by cmd/haito-server.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/haito/internal/auth"
	"github.com/bobmcallan/haito/internal/clients/gnews"
	"github.com/bobmcallan/haito/internal/clients/yahoo"
	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/services/dividend"
	"github.com/bobmcallan/haito/internal/services/news"
	"github.com/bobmcallan/haito/internal/services/portfolio"
	"github.com/bobmcallan/haito/internal/services/quote"
	"github.com/bobmcallan/haito/internal/services/usersync"
	"github.com/bobmcallan/haito/internal/storage"
	"github.com/bobmcallan/haito/internal/storage/surrealdb"
)

// DefaultConfigPath is used when neither an explicit path nor HAITO_CONFIG is set.
const DefaultConfigPath = "config/haito.toml"

// App holds all initialized services, clients and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            *storage.FileStore
	QuoteService     interfaces.QuoteService
	NewsService      interfaces.NewsService
	PortfolioService interfaces.PortfolioService
	DividendService  interfaces.DividendService
	Verifier         interfaces.IdentityVerifier // nil when no secret is configured
	Syncer           *usersync.Syncer            // nil when the document store is disabled
	StartupTime      time.Time

	docStore        interfaces.UserDocumentStore
	scheduler       *cron.Cron
	warmCacheCancel context.CancelFunc
}

// ResolveConfigPath returns configPath, else HAITO_CONFIG, else DefaultConfigPath.
func ResolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("HAITO_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigPath
}

// NewApp loads configuration and initializes the application.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return New(config, common.NewLoggerFromConfig(config.Logging))
}

// New initializes the application from an already loaded config.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewFileStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClientFromConfig(config.Clients.Yahoo, logger)
	newsClient := gnews.NewClientFromConfig(config.Clients.News, logger)

	quoteService := quote.NewService(yahooClient, store, logger,
		quote.WithSymbolSuffix(config.Clients.Yahoo.SymbolSuffix),
		quote.WithTTL(config.Cache.GetPriceTTL()),
		quote.WithCurrency(config.Currency),
	)
	newsService := news.NewService(newsClient, logger, config.News.MaxWorkers, config.News.SummaryLength)

	a := &App{
		Config:          config,
		Logger:          logger,
		Store:           store,
		QuoteService:    quoteService,
		NewsService:     newsService,
		DividendService: dividend.NewService(store, store, logger),
		StartupTime:     startupStart,
	}

	if v := auth.NewJWTVerifierFromConfig(config.Auth); v != nil {
		a.Verifier = v
	} else {
		logger.Info().Msg("No JWT secret configured - all requests are anonymous")
	}

	var syncer interfaces.HoldingSyncer
	if config.Storage.SurrealDB.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		docStore, err := surrealdb.Connect(ctx, logger, &config.Storage.SurrealDB)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("User document store unavailable - holding sync disabled")
		} else {
			a.docStore = docStore
			a.Syncer = usersync.NewSyncer(docStore, logger,
				usersync.WithTimeout(config.Storage.SurrealDB.GetTimeout()),
			)
			syncer = a.Syncer
		}
	}

	a.PortfolioService = portfolio.NewService(store, quoteService, syncer, logger, config.Currency)

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel warm cache, drain sync, close document store.
func (a *App) Close() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Syncer != nil {
		if err := a.Syncer.Close(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("User sync did not drain before shutdown")
		}
		a.Syncer = nil
	}
	if a.docStore != nil {
		if err := a.docStore.Close(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close user document store")
		}
		a.docStore = nil
	}
}

// StartWarmCache resolves prices for every held ticker in the background so
// the first portfolio view is served from the cache.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.Store, a.QuoteService, a.Logger)
	}()
}
