// Package portfolio manages holdings and computes the portfolio view
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

var (
	ErrHoldingExists   = errors.New("holding already exists")
	ErrHoldingNotFound = errors.New("holding not found")
	ErrInvalidHolding  = errors.New("invalid holding")
)

// RefreshMessage is returned with every completed refresh.
const RefreshMessage = "価格を更新しました"

// Service implements interfaces.PortfolioService.
type Service struct {
	store    interfaces.HoldingStore
	quotes   interfaces.QuoteService
	syncer   interfaces.HoldingSyncer
	logger   *common.Logger
	currency string

	// mu serialises read-modify-write cycles on the holdings document.
	mu sync.Mutex
}

// NewService creates a portfolio service. syncer may be nil, in which case
// added holdings are not mirrored to the user document store.
func NewService(store interfaces.HoldingStore, quotes interfaces.QuoteService, syncer interfaces.HoldingSyncer, logger *common.Logger, currency string) *Service {
	return &Service{
		store:    store,
		quotes:   quotes,
		syncer:   syncer,
		logger:   logger,
		currency: currency,
	}
}

func findHolding(holdings []models.Holding, ticker string) int {
	for i := range holdings {
		if holdings[i].Ticker == ticker {
			return i
		}
	}
	return -1
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidHolding, fmt.Sprintf(format, args...))
}

func validateCreate(req models.HoldingCreate) error {
	if strings.TrimSpace(req.Ticker) == "" {
		return invalid("ticker is required")
	}
	if req.Shares < 0 {
		return invalid("shares must not be negative")
	}
	if req.AverageCost < 0 {
		return invalid("average_cost must not be negative")
	}
	if req.AnnualDividendPerShare != nil && *req.AnnualDividendPerShare < 0 {
		return invalid("annual_dividend_per_share must not be negative")
	}
	return nil
}

func validateUpdate(upd models.HoldingUpdate) error {
	if upd.Shares != nil && *upd.Shares < 0 {
		return invalid("shares must not be negative")
	}
	if upd.AverageCost != nil && *upd.AverageCost < 0 {
		return invalid("average_cost must not be negative")
	}
	if upd.AnnualDividendPerShare != nil && *upd.AnnualDividendPerShare < 0 {
		return invalid("annual_dividend_per_share must not be negative")
	}
	return nil
}

// ListHoldings returns persisted holdings with market value recomputed from
// the persisted price.
func (s *Service) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return Enrich(holdings, nil), nil
}

func (s *Service) exists(ctx context.Context, ticker string) (bool, error) {
	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load holdings: %w", err)
	}
	return findHolding(holdings, ticker) >= 0, nil
}

// AddHolding resolves stock info for a new ticker and persists it. Fields
// missing from the request are filled from the resolved info.
func (s *Service) AddHolding(ctx context.Context, req models.HoldingCreate) (*models.Holding, error) {
	req.Ticker = strings.TrimSpace(req.Ticker)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	// Fail fast on duplicates before paying for the provider lookup.
	found, err := s.exists(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: %s", ErrHoldingExists, req.Ticker)
	}

	info := s.quotes.GetStockInfo(ctx, req.Ticker)
	h := newHolding(req, info)

	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	if findHolding(holdings, h.Ticker) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrHoldingExists, h.Ticker)
	}

	holdings = append(holdings, h)
	if err := s.store.SaveHoldings(ctx, holdings); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}

	s.logger.Info().
		Str("ticker", h.Ticker).
		Int("shares", h.Shares).
		Bool("resolved", info != nil).
		Msg("Holding added")

	if identity := common.IdentityFromContext(ctx); identity != nil && s.syncer != nil {
		s.syncer.Submit(identity, h)
	}

	return &h, nil
}

func newHolding(req models.HoldingCreate, info *models.StockInfo) models.Holding {
	h := models.Holding{
		Ticker:      req.Ticker,
		Name:        strings.TrimSpace(req.Name),
		Shares:      req.Shares,
		AverageCost: req.AverageCost,
		Sector:      strings.TrimSpace(req.Sector),
	}

	h.CurrentPrice = req.AverageCost
	if info != nil && info.CurrentPrice > 0 {
		h.CurrentPrice = info.CurrentPrice
	}

	if req.AnnualDividendPerShare != nil {
		h.AnnualDividendPerShare = *req.AnnualDividendPerShare
	} else if info != nil {
		h.AnnualDividendPerShare = info.AnnualDividendPerShare
	}

	if h.Name == "" && info != nil {
		h.Name = info.Name
	}
	if h.Name == "" {
		h.Name = h.Ticker
	}

	if h.Sector == "" && info != nil {
		h.Sector = info.Sector
	}
	if h.Sector == "" {
		h.Sector = models.SectorOther
	}

	h.Recompute()
	return h
}

// UpdateHolding applies the non-nil fields of upd to an existing holding.
func (s *Service) UpdateHolding(ctx context.Context, ticker string, upd models.HoldingUpdate) (*models.Holding, error) {
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	i := findHolding(holdings, ticker)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, ticker)
	}

	if upd.IsEmpty() {
		h := holdings[i]
		h.Recompute()
		return &h, nil
	}

	upd.Apply(&holdings[i])
	holdings[i].Recompute()

	if err := s.store.SaveHoldings(ctx, holdings); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Holding updated")
	h := holdings[i]
	return &h, nil
}

// DeleteHolding removes a holding by ticker.
func (s *Service) DeleteHolding(ctx context.Context, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load holdings: %w", err)
	}

	i := findHolding(holdings, ticker)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrHoldingNotFound, ticker)
	}

	holdings = append(holdings[:i], holdings[i+1:]...)
	if err := s.store.SaveHoldings(ctx, holdings); err != nil {
		return fmt.Errorf("failed to save holdings: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Holding deleted")
	return nil
}

func tickers(holdings []models.Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = h.Ticker
	}
	return out
}

// GetSummary returns holdings enriched with live prices and portfolio totals.
// Tickers whose price cannot be resolved keep their persisted price.
func (s *Service) GetSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	prices := s.quotes.GetPrices(ctx, tickers(holdings))
	summary := Summarize(holdings, prices, s.currency)
	summary.PricesUpdatedAt = s.quotes.CacheUpdatedAt(ctx)
	return summary, nil
}

// Refresh clears the price cache, re-resolves every held ticker and stores
// the results as the holdings' last known prices. With includeDividends the
// annual dividend per share is also refreshed from the provider.
func (s *Service) Refresh(ctx context.Context, includeDividends bool) (*models.RefreshResult, error) {
	if err := s.quotes.ClearCache(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear price cache: %w", err)
	}

	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	held := tickers(holdings)
	prices := s.quotes.GetPrices(ctx, held)

	dividends := make(map[string]float64)
	if includeDividends {
		for _, t := range held {
			if info := s.quotes.GetStockInfo(ctx, t); info != nil && info.AnnualDividendPerShare > 0 {
				dividends[t] = info.AnnualDividendPerShare
			}
		}
	}

	result := &models.RefreshResult{
		Message:         RefreshMessage,
		Prices:          make(map[string]*float64, len(held)),
		DividendChanges: []models.DividendChange{},
	}
	for _, t := range held {
		if p, ok := prices[t]; ok {
			result.Prices[t] = &p
		} else {
			result.Prices[t] = nil
		}
	}

	if len(prices) > 0 || len(dividends) > 0 {
		changes, err := s.applyRefresh(ctx, prices, dividends)
		if err != nil {
			return nil, err
		}
		result.DividendChanges = changes
	}

	result.UpdatedAt = s.quotes.CacheUpdatedAt(ctx)

	s.logger.Info().
		Int("holdings", len(held)).
		Int("resolved", len(prices)).
		Int("dividend_changes", len(result.DividendChanges)).
		Msg("Portfolio refreshed")

	return result, nil
}

// applyRefresh writes resolved prices and changed dividends back to the
// holdings document. Holdings removed since the lookup are skipped.
func (s *Service) applyRefresh(ctx context.Context, prices, dividends map[string]float64) ([]models.DividendChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	changes := []models.DividendChange{}
	for i := range holdings {
		h := &holdings[i]
		if p, ok := prices[h.Ticker]; ok {
			h.CurrentPrice = p
		}
		if d, ok := dividends[h.Ticker]; ok && d != h.AnnualDividendPerShare {
			changes = append(changes, models.DividendChange{Ticker: h.Ticker, Old: h.AnnualDividendPerShare, New: d})
			h.AnnualDividendPerShare = d
		}
		h.Recompute()
	}

	if err := s.store.SaveHoldings(ctx, holdings); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}
	return changes, nil
}

// RenderSectorChart renders the sector allocation of the live portfolio.
func (s *Service) RenderSectorChart(ctx context.Context) ([]byte, error) {
	summary, err := s.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	return RenderSectorChart(summary.Holdings)
}
