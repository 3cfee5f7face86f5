package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
)

// refreshTimeout bounds one scheduled refresh run.
const refreshTimeout = 5 * time.Minute

// StartRefreshScheduler registers the price refresh on the configured cron
// expression. An empty one leaves the scheduler off.
func (a *App) StartRefreshScheduler() error {
	expr := a.Config.Scheduler.RefreshCron
	if expr == "" {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(expr, func() {
		refreshPrices(context.Background(), a.PortfolioService, a.Logger)
	}); err != nil {
		return fmt.Errorf("invalid refresh_cron %q: %w", expr, err)
	}

	c.Start()
	a.scheduler = c
	a.Logger.Info().Str("cron", expr).Msg("Price refresh scheduler started")
	return nil
}

func refreshPrices(ctx context.Context, portfolioService interfaces.PortfolioService, logger *common.Logger) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	result, err := portfolioService.Refresh(ctx, false)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: failed")
		return
	}

	failed := 0
	for _, p := range result.Prices {
		if p == nil {
			failed++
		}
	}

	logger.Info().
		Int("tickers", len(result.Prices)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}
