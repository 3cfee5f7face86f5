package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
)

// warmCache pre-fetches prices for held tickers on startup so the first user query is fast.
func warmCache(ctx context.Context, holdings interfaces.HoldingStore, quotes interfaces.QuoteService, logger *common.Logger) {
	if os.Getenv("HAITO_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via HAITO_WARM_CACHE=off")
		return
	}

	start := time.Now()

	held, err := holdings.LoadHoldings(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Warm cache: failed to load holdings")
		return
	}
	if len(held) == 0 {
		logger.Info().Msg("Warm cache: no holdings, skipping")
		return
	}

	tickers := make([]string, len(held))
	for i, h := range held {
		tickers[i] = h.Ticker
	}

	prices := quotes.GetPrices(ctx, tickers)

	logger.Info().
		Int("tickers", len(tickers)).
		Int("resolved", len(prices)).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
