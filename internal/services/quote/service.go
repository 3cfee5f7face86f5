// Package quote resolves tickers to prices and metadata behind a durable cache
package quote

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

// dividendWindow is the trailing period summed into the annual dividend estimate.
const dividendWindow = 365 * 24 * time.Hour

// Service implements interfaces.QuoteService.
// The cache document is read and written without locking; concurrent
// writers are last-writer-wins.
type Service struct {
	provider interfaces.QuoteProvider
	cache    interfaces.PriceCacheStore
	logger   *common.Logger
	suffix   string
	currency string
	ttl      time.Duration
	now      func() time.Time // injectable clock for testing
}

// Option configures the service
type Option func(*Service)

// WithSymbolSuffix sets the market suffix appended to bare tickers.
func WithSymbolSuffix(suffix string) Option {
	return func(s *Service) {
		s.suffix = suffix
	}
}

// WithTTL sets the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCurrency sets the currency reported when the provider omits one.
func WithCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new quote service
func NewService(provider interfaces.QuoteProvider, cache interfaces.PriceCacheStore, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		cache:    cache,
		logger:   logger,
		suffix:   ".T",
		currency: "JPY",
		ttl:      common.FreshnessPrice,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Symbol returns the provider symbol for a ticker.
func (s *Service) Symbol(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if s.suffix == "" || strings.HasSuffix(ticker, s.suffix) {
		return ticker
	}
	return ticker + s.suffix
}

func (s *Service) loadCache(ctx context.Context) models.PriceCache {
	cache, err := s.cache.LoadPriceCache(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Price cache unreadable, treating as empty")
		return models.PriceCache{}
	}
	return cache
}

// GetPrice returns the price for a ticker, using the cache when fresh.
func (s *Service) GetPrice(ctx context.Context, ticker string) (float64, bool) {
	cache := s.loadCache(ctx)
	if entry, ok := cache[ticker]; ok && common.IsFresh(entry.FetchedAt(), s.now(), s.ttl) {
		return entry.Price, true
	}

	price, err := s.provider.GetPrice(ctx, s.Symbol(ticker))
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price fetch failed")
		return 0, false
	}

	// Re-read so entries written by other requests in the meantime survive.
	cache = s.loadCache(ctx)
	cache[ticker] = models.NewPriceCacheEntry(price, s.now())
	if err := s.cache.SavePriceCache(ctx, cache); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to write price cache")
	}

	return price, true
}

// GetPrices resolves each ticker in turn; failed tickers are omitted.
func (s *Service) GetPrices(ctx context.Context, tickers []string) map[string]float64 {
	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		if p, ok := s.GetPrice(ctx, t); ok {
			prices[t] = p
		}
	}
	return prices
}

// GetStockInfo resolves name, price and dividend/sector metadata. Returns nil
// when the primary quote cannot be fetched.
func (s *Service) GetStockInfo(ctx context.Context, ticker string) *models.StockInfo {
	symbol := s.Symbol(ticker)

	q, err := s.provider.GetQuote(ctx, symbol)
	if err != nil || q == nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Stock info lookup failed")
		return nil
	}

	info := &models.StockInfo{
		Ticker:       ticker,
		Symbol:       symbol,
		Name:         q.Name,
		CurrentPrice: q.Price,
		Currency:     q.Currency,
		Exchange:     q.Exchange,
	}
	if info.Name == "" {
		info.Name = ticker
	}
	if info.Currency == "" {
		info.Currency = s.currency
	}

	info.AnnualDividendPerShare = s.trailingDividend(ctx, ticker, symbol)

	raw := q.RawSector
	if raw == "" {
		raw, err = s.provider.GetSector(ctx, symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Sector profile unavailable")
		}
	}
	info.Sector = MapSector(raw)

	return info
}

// trailingDividend sums dividend events within the last year; 0 on failure.
func (s *Service) trailingDividend(ctx context.Context, ticker, symbol string) float64 {
	since := s.now().Add(-dividendWindow)

	events, err := s.provider.GetDividends(ctx, symbol, since)
	if err != nil {
		s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Dividend history unavailable")
		return 0
	}

	total := decimal.Zero
	for _, ev := range events {
		if ev.Date.Before(since) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(ev.Amount))
	}
	return total.InexactFloat64()
}

// ClearCache deletes the durable price cache.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.ClearPriceCache(ctx)
}

// CacheUpdatedAt returns the newest cache timestamp, or nil when the cache is empty.
func (s *Service) CacheUpdatedAt(ctx context.Context) *time.Time {
	return s.loadCache(ctx).LatestUpdate()
}
