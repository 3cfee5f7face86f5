package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/haito/internal/models"
)

// QuoteService resolves tickers to prices and metadata behind the durable cache.
// Upstream failures are reported as "unavailable" results, never as errors.
type QuoteService interface {
	// GetPrice returns the price and true, or false when unavailable.
	GetPrice(ctx context.Context, ticker string) (float64, bool)

	// GetPrices resolves each ticker independently; failed tickers are absent.
	GetPrices(ctx context.Context, tickers []string) map[string]float64

	// GetStockInfo resolves full metadata, or nil when the primary lookup fails.
	GetStockInfo(ctx context.Context, ticker string) *models.StockInfo

	// ClearCache deletes the whole durable cache.
	ClearCache(ctx context.Context) error

	// CacheUpdatedAt returns the newest cache timestamp, or nil.
	CacheUpdatedAt(ctx context.Context) *time.Time
}

// NewsService aggregates feed items for held securities.
type NewsService interface {
	ForSecurity(ctx context.Context, sec models.Security, limit int) []models.NewsArticle
	Aggregate(ctx context.Context, secs []models.Security, perLimit int) []models.NewsArticle
}

// PortfolioService manages holdings and computes the portfolio summary.
type PortfolioService interface {
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	AddHolding(ctx context.Context, req models.HoldingCreate) (*models.Holding, error)
	UpdateHolding(ctx context.Context, ticker string, upd models.HoldingUpdate) (*models.Holding, error)
	DeleteHolding(ctx context.Context, ticker string) error
	GetSummary(ctx context.Context) (*models.PortfolioSummary, error)
	Refresh(ctx context.Context, includeDividends bool) (*models.RefreshResult, error)
	RenderSectorChart(ctx context.Context) ([]byte, error)
}

// DividendService projects the monthly dividend calendar.
type DividendService interface {
	GetSchedule(ctx context.Context) (*models.DividendSchedule, error)
}

// HoldingSyncer mirrors holdings to the user document store without blocking.
type HoldingSyncer interface {
	Submit(identity *models.Identity, holding models.Holding)
}
