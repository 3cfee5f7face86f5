package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

func TestHandleStockInfo(t *testing.T) {
	quotes := &mockQuoteService{info: map[string]*models.StockInfo{
		"8058": {Ticker: "8058", Symbol: "8058.T", Name: "三菱商事", CurrentPrice: 2800, Sector: models.SectorTrading, Currency: "JPY"},
	}}
	srv := newTestServer(testServices{quotes: quotes})

	rr := serve(t, srv, http.MethodGet, "/api/stock-info/8058", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.StockInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "8058.T", got.Symbol)
	assert.Equal(t, 2800.0, got.CurrentPrice)
	assert.Equal(t, models.SectorTrading, got.Sector)
}

func TestHandleStockInfo_Unavailable(t *testing.T) {
	srv := newTestServer(testServices{quotes: &mockQuoteService{}})

	rr := serve(t, srv, http.MethodGet, "/api/stock-info/0000", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, codeUnavailable, resp.Code)
	assert.Equal(t, "銘柄情報を取得できませんでした", resp.Error)

	rr = serve(t, srv, http.MethodGet, "/api/stock-info/", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDividends(t *testing.T) {
	schedule := &models.DividendSchedule{
		Schedule: []models.MonthSchedule{
			{Month: 3, Label: "3月", Entries: []models.DividendPayment{{Ticker: "9432", Amount: 3500}}},
		},
		AnnualTotal: 7000,
	}
	srv := newTestServer(testServices{dividends: &mockDividendService{schedule: schedule}})

	rr := serve(t, srv, http.MethodGet, "/api/dividends", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, 7000.0, raw["annual_total"])
	assert.Len(t, raw["schedule"], 1)
}

func TestHandleDividends_Error(t *testing.T) {
	srv := newTestServer(testServices{dividends: &mockDividendService{err: errors.New("corrupt template")}})

	rr := serve(t, srv, http.MethodGet, "/api/dividends", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func heldPortfolio() *mockPortfolioService {
	return &mockPortfolioService{
		listHoldings: func(ctx context.Context) ([]models.Holding, error) {
			return []models.Holding{
				{Ticker: "8058", Name: "三菱商事"},
				{Ticker: "9432", Name: "日本電信電話"},
			}, nil
		},
	}
}

func TestHandleNews_Aggregate(t *testing.T) {
	news := &mockNewsService{articles: []models.NewsArticle{
		{ID: "8058-1-0", Title: "決算発表", PublishedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}}
	srv := newTestServer(testServices{portfolio: heldPortfolio(), news: news})

	rr := serve(t, srv, http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got newsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Articles, 1)

	require.Len(t, news.aggregate, 2)
	assert.Equal(t, models.Security{Ticker: "8058", Name: "三菱商事"}, news.aggregate[0])
	assert.Equal(t, common.NewDefaultConfig().News.PerTickerLimit, news.aggLim)
	assert.Empty(t, news.single)
}

func TestHandleNews_SingleTicker(t *testing.T) {
	news := &mockNewsService{}
	srv := newTestServer(testServices{portfolio: heldPortfolio(), news: news})

	rr := serve(t, srv, http.MethodGet, "/api/news?ticker=9432", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"articles":[]}`, rr.Body.String())

	require.Len(t, news.single, 1)
	assert.Equal(t, "日本電信電話", news.single[0].Name)
	assert.Equal(t, 10, news.singleLim)
	assert.Nil(t, news.aggregate)
}

func TestHandleNews_UnknownTicker(t *testing.T) {
	news := &mockNewsService{}
	srv := newTestServer(testServices{portfolio: heldPortfolio(), news: news})

	rr := serve(t, srv, http.MethodGet, "/api/news?ticker=0000", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"articles":[]}`, rr.Body.String())
	assert.Empty(t, news.single)
	assert.Nil(t, news.aggregate)
}

func TestHandleNews_NoHoldings(t *testing.T) {
	news := &mockNewsService{}
	srv := newTestServer(testServices{portfolio: &mockPortfolioService{}, news: news})

	rr := serve(t, srv, http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"articles":[]}`, rr.Body.String())
	assert.Nil(t, news.aggregate)
}
