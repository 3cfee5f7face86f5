package server

import (
	"context"
	"time"

	"github.com/bobmcallan/haito/internal/app"
	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

// mockPortfolioService implements interfaces.PortfolioService for testing.
type mockPortfolioService struct {
	listHoldings  func(ctx context.Context) ([]models.Holding, error)
	addHolding    func(ctx context.Context, req models.HoldingCreate) (*models.Holding, error)
	updateHolding func(ctx context.Context, ticker string, upd models.HoldingUpdate) (*models.Holding, error)
	deleteHolding func(ctx context.Context, ticker string) error
	getSummary    func(ctx context.Context) (*models.PortfolioSummary, error)
	refresh       func(ctx context.Context, includeDividends bool) (*models.RefreshResult, error)
	renderChart   func(ctx context.Context) ([]byte, error)
}

func (m *mockPortfolioService) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	if m.listHoldings != nil {
		return m.listHoldings(ctx)
	}
	return []models.Holding{}, nil
}

func (m *mockPortfolioService) AddHolding(ctx context.Context, req models.HoldingCreate) (*models.Holding, error) {
	return m.addHolding(ctx, req)
}

func (m *mockPortfolioService) UpdateHolding(ctx context.Context, ticker string, upd models.HoldingUpdate) (*models.Holding, error) {
	return m.updateHolding(ctx, ticker, upd)
}

func (m *mockPortfolioService) DeleteHolding(ctx context.Context, ticker string) error {
	return m.deleteHolding(ctx, ticker)
}

func (m *mockPortfolioService) GetSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	return m.getSummary(ctx)
}

func (m *mockPortfolioService) Refresh(ctx context.Context, includeDividends bool) (*models.RefreshResult, error) {
	return m.refresh(ctx, includeDividends)
}

func (m *mockPortfolioService) RenderSectorChart(ctx context.Context) ([]byte, error) {
	return m.renderChart(ctx)
}

// mockQuoteService implements interfaces.QuoteService for testing.
type mockQuoteService struct {
	info map[string]*models.StockInfo
}

func (m *mockQuoteService) GetPrice(ctx context.Context, ticker string) (float64, bool) {
	if info, ok := m.info[ticker]; ok {
		return info.CurrentPrice, true
	}
	return 0, false
}

func (m *mockQuoteService) GetPrices(ctx context.Context, tickers []string) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range tickers {
		if p, ok := m.GetPrice(ctx, t); ok {
			out[t] = p
		}
	}
	return out
}

func (m *mockQuoteService) GetStockInfo(ctx context.Context, ticker string) *models.StockInfo {
	return m.info[ticker]
}

func (m *mockQuoteService) ClearCache(ctx context.Context) error {
	return nil
}

func (m *mockQuoteService) CacheUpdatedAt(ctx context.Context) *time.Time {
	return nil
}

// mockNewsService records the calls the news handler makes.
type mockNewsService struct {
	single    []models.Security
	singleLim int
	aggregate []models.Security
	aggLim    int
	articles  []models.NewsArticle
}

func (m *mockNewsService) ForSecurity(ctx context.Context, sec models.Security, limit int) []models.NewsArticle {
	m.single = append(m.single, sec)
	m.singleLim = limit
	return m.articles
}

func (m *mockNewsService) Aggregate(ctx context.Context, secs []models.Security, perLimit int) []models.NewsArticle {
	m.aggregate = secs
	m.aggLim = perLimit
	return m.articles
}

// mockDividendService implements interfaces.DividendService for testing.
type mockDividendService struct {
	schedule *models.DividendSchedule
	err      error
}

func (m *mockDividendService) GetSchedule(ctx context.Context) (*models.DividendSchedule, error) {
	return m.schedule, m.err
}

// mockVerifier accepts a single token.
type mockVerifier struct {
	token    string
	identity *models.Identity
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	if token != m.token {
		return nil, errInvalidTestToken
	}
	return m.identity, nil
}

type testError string

func (e testError) Error() string { return string(e) }

const errInvalidTestToken = testError("invalid token")

type testServices struct {
	portfolio interfaces.PortfolioService
	quotes    interfaces.QuoteService
	news      interfaces.NewsService
	dividends interfaces.DividendService
	verifier  interfaces.IdentityVerifier
}

func newTestApp(svc testServices) *app.App {
	return &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewLoggerFromConfig(common.LoggingConfig{Level: "disabled"}),
		PortfolioService: svc.portfolio,
		QuoteService:     svc.quotes,
		NewsService:      svc.news,
		DividendService:  svc.dividends,
		Verifier:         svc.verifier,
	}
}

// newTestServer builds a server around the given services with the full
// middleware stack applied.
func newTestServer(svc testServices) *Server {
	return NewServer(newTestApp(svc))
}
