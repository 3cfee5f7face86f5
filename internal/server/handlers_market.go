package server

import (
	"net/http"

	"github.com/bobmcallan/haito/internal/models"
)

// handleStockInfo handles GET /api/stock-info/{ticker}.
func (s *Server) handleStockInfo(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := tickerParam(r, "/api/stock-info/")
	if ticker == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "ticker is required in path", codeInvalidRequest)
		return
	}

	info := s.app.QuoteService.GetStockInfo(r.Context(), ticker)
	if info == nil {
		WriteErrorWithCode(w, http.StatusNotFound, "銘柄情報を取得できませんでした", codeUnavailable)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// handleDividends handles GET /api/dividends.
func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	schedule, err := s.app.DividendService.GetSchedule(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to project dividend schedule")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, schedule)
}

type newsResponse struct {
	Articles []models.NewsArticle `json:"articles"`
}

// handleNews handles GET /api/news[?ticker=]. A ticker filters to one held
// security; an unknown ticker yields an empty list.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.PortfolioService.ListHoldings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load holdings for news")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cfg := s.app.Config.News
	articles := []models.NewsArticle{}

	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		for _, h := range holdings {
			if h.Ticker == ticker {
				articles = s.app.NewsService.ForSecurity(r.Context(), h.Security(), cfg.SingleLimit)
				break
			}
		}
	} else if len(holdings) > 0 {
		secs := make([]models.Security, len(holdings))
		for i, h := range holdings {
			secs[i] = h.Security()
		}
		articles = s.app.NewsService.Aggregate(r.Context(), secs, cfg.PerTickerLimit)
	}

	if articles == nil {
		articles = []models.NewsArticle{}
	}
	WriteJSON(w, http.StatusOK, newsResponse{Articles: articles})
}
