// Package models defines data structures for haito
package models

// Holding is a held security position, keyed by ticker.
// MarketValue is derived from CurrentPrice and Shares on every read; the
// persisted value is informational only.
type Holding struct {
	Ticker                 string  `json:"ticker"`
	Name                   string  `json:"name"`
	Shares                 int     `json:"shares"`
	AverageCost            float64 `json:"average_cost"`
	CurrentPrice           float64 `json:"current_price"`
	MarketValue            float64 `json:"market_value"`
	AnnualDividendPerShare float64 `json:"annual_dividend_per_share"`
	Sector                 string  `json:"sector"`
}

// Recompute sets MarketValue from CurrentPrice and Shares.
func (h *Holding) Recompute() {
	h.MarketValue = h.CurrentPrice * float64(h.Shares)
}

// AnnualDividend returns shares × annual dividend per share.
func (h Holding) AnnualDividend() float64 {
	return float64(h.Shares) * h.AnnualDividendPerShare
}

// Security returns the (ticker, name) pair used for news lookups.
func (h Holding) Security() Security {
	return Security{Ticker: h.Ticker, Name: h.Name}
}

// HoldingCreate is the request body for adding a holding.
// AnnualDividendPerShare is optional; when absent the resolved provider
// figure is used.
type HoldingCreate struct {
	Ticker                 string   `json:"ticker"`
	Name                   string   `json:"name"`
	Shares                 int      `json:"shares"`
	AverageCost            float64  `json:"average_cost"`
	AnnualDividendPerShare *float64 `json:"annual_dividend_per_share,omitempty"`
	Sector                 string   `json:"sector,omitempty"`
}

// HoldingUpdate is a partial update; nil fields are left unchanged.
type HoldingUpdate struct {
	Name                   *string  `json:"name,omitempty"`
	Shares                 *int     `json:"shares,omitempty"`
	AverageCost            *float64 `json:"average_cost,omitempty"`
	AnnualDividendPerShare *float64 `json:"annual_dividend_per_share,omitempty"`
	Sector                 *string  `json:"sector,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u HoldingUpdate) IsEmpty() bool {
	return u.Name == nil && u.Shares == nil && u.AverageCost == nil &&
		u.AnnualDividendPerShare == nil && u.Sector == nil
}

// Apply copies the non-nil fields of u onto h.
func (u HoldingUpdate) Apply(h *Holding) {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Shares != nil {
		h.Shares = *u.Shares
	}
	if u.AverageCost != nil {
		h.AverageCost = *u.AverageCost
	}
	if u.AnnualDividendPerShare != nil {
		h.AnnualDividendPerShare = *u.AnnualDividendPerShare
	}
	if u.Sector != nil {
		h.Sector = *u.Sector
	}
}

// Security identifies a held security for news searches.
type Security struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}
