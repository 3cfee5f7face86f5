package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/haito/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Portfolio
	mux.HandleFunc("/api/portfolio/holdings/", s.handleHoldingItem)
	mux.HandleFunc("/api/portfolio/holdings", s.handleHoldings)
	mux.HandleFunc("/api/portfolio/refresh", s.handlePortfolioRefresh)
	mux.HandleFunc("/api/portfolio/chart", s.handlePortfolioChart)
	mux.HandleFunc("/api/portfolio", s.handlePortfolioSummary)

	// Market data
	mux.HandleFunc("/api/stock-info/", s.handleStockInfo)
	mux.HandleFunc("/api/dividends", s.handleDividends)
	mux.HandleFunc("/api/news", s.handleNews)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": common.GetVersion(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}

// tickerParam returns the trimmed ticker segment after prefix.
func tickerParam(r *http.Request, prefix string) string {
	return strings.TrimSpace(PathParam(r, prefix))
}
