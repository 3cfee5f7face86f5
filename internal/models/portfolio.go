package models

import "time"

// PortfolioSummary is the computed view of all holdings with live prices.
type PortfolioSummary struct {
	TotalAssetValue        int64      `json:"total_asset_value"`
	AnnualDividend         int64      `json:"annual_dividend"`
	DividendYield          float64    `json:"dividend_yield"`
	TotalAssetValueDisplay string     `json:"total_asset_value_display,omitempty"`
	AnnualDividendDisplay  string     `json:"annual_dividend_display,omitempty"`
	Holdings               []Holding  `json:"holdings"`
	PricesUpdatedAt        *time.Time `json:"prices_updated_at"`
}

// DividendChange records a dividend figure updated during a refresh.
type DividendChange struct {
	Ticker string  `json:"ticker"`
	Old    float64 `json:"old"`
	New    float64 `json:"new"`
}

// RefreshResult is returned by a forced price refresh.
// Prices holds nil for tickers whose live fetch failed.
type RefreshResult struct {
	Message         string              `json:"message"`
	Prices          map[string]*float64 `json:"prices"`
	DividendChanges []DividendChange    `json:"dividend_changes"`
	UpdatedAt       *time.Time          `json:"updated_at"`
}
