package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/haito/internal/models"
	"github.com/bobmcallan/haito/internal/services/portfolio"
)

// writeHoldingError maps portfolio service errors to HTTP responses.
func (s *Server) writeHoldingError(w http.ResponseWriter, err error, ticker string) {
	switch {
	case errors.Is(err, portfolio.ErrHoldingExists):
		WriteErrorWithCode(w, http.StatusConflict,
			fmt.Sprintf("銘柄コード %s はすでに登録されています", ticker), codeHoldingExists)
	case errors.Is(err, portfolio.ErrHoldingNotFound):
		WriteErrorWithCode(w, http.StatusNotFound,
			fmt.Sprintf("銘柄コード %s が見つかりません", ticker), codeHoldingNotFound)
	case errors.Is(err, portfolio.ErrInvalidHolding):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), codeInvalidRequest)
	default:
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Holding operation failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handlePortfolioSummary handles GET /api/portfolio.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.GetSummary(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute portfolio summary")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh[?dividends=true].
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	includeDividends := false
	if v := r.URL.Query().Get("dividends"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, "dividends must be a boolean", codeInvalidRequest)
			return
		}
		includeDividends = parsed
	}

	result, err := s.app.PortfolioService.Refresh(r.Context(), includeDividends)
	if err != nil {
		s.logger.Error().Err(err).Msg("Portfolio refresh failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleHoldings handles GET and POST /api/portfolio/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		holdings, err := s.app.PortfolioService.ListHoldings(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list holdings")
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		WriteJSON(w, http.StatusOK, holdings)
		return
	}

	var req models.HoldingCreate
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)

	holding, err := s.app.PortfolioService.AddHolding(r.Context(), req)
	if err != nil {
		s.writeHoldingError(w, err, req.Ticker)
		return
	}
	WriteJSON(w, http.StatusCreated, holding)
}

// handleHoldingItem handles PUT and DELETE /api/portfolio/holdings/{ticker}.
func (s *Server) handleHoldingItem(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r, "/api/portfolio/holdings/")
	if ticker == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "ticker is required in path", codeInvalidRequest)
		return
	}

	if !RequireMethod(w, r, http.MethodPut, http.MethodDelete) {
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.app.PortfolioService.DeleteHolding(r.Context(), ticker); err != nil {
			s.writeHoldingError(w, err, ticker)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var upd models.HoldingUpdate
	if !DecodeJSON(w, r, &upd) {
		return
	}

	holding, err := s.app.PortfolioService.UpdateHolding(r.Context(), ticker, upd)
	if err != nil {
		s.writeHoldingError(w, err, ticker)
		return
	}
	WriteJSON(w, http.StatusOK, holding)
}

// handlePortfolioChart handles GET /api/portfolio/chart, returning a PNG pie
// of market value by sector.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.RenderSectorChart(r.Context())
	if errors.Is(err, portfolio.ErrNoChartData) {
		WriteErrorWithCode(w, http.StatusNotFound, "no holdings with market value", codeUnavailable)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render sector chart")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
