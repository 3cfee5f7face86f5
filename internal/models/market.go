package models

import "time"

// ProviderQuote is the normalized primary quote returned by a quote provider.
type ProviderQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchange"`
	RawSector string  `json:"raw_sector,omitempty"`
}

// DividendEvent is a single dividend payment reported by the provider.
type DividendEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// StockInfo is the fully resolved metadata for a ticker.
type StockInfo struct {
	Ticker                 string  `json:"ticker"`
	Symbol                 string  `json:"symbol"`
	Name                   string  `json:"name"`
	CurrentPrice           float64 `json:"current_price"`
	AnnualDividendPerShare float64 `json:"annual_dividend_per_share"`
	Sector                 string  `json:"sector"`
	Currency               string  `json:"currency"`
	Exchange               string  `json:"exchange"`
}

// PriceCacheEntry is a memoized quote. Timestamp is fractional unix seconds.
type PriceCacheEntry struct {
	Price     float64 `json:"price"`
	Timestamp float64 `json:"timestamp"`
}

// FetchedAt returns the entry timestamp as a time.Time.
func (e PriceCacheEntry) FetchedAt() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// NewPriceCacheEntry builds an entry stamped at t.
func NewPriceCacheEntry(price float64, t time.Time) PriceCacheEntry {
	return PriceCacheEntry{
		Price:     price,
		Timestamp: float64(t.UnixNano()) / 1e9,
	}
}

// PriceCache maps ticker to its cached quote.
type PriceCache map[string]PriceCacheEntry

// LatestUpdate returns the newest entry timestamp, or nil when the cache is empty.
func (c PriceCache) LatestUpdate() *time.Time {
	var latest time.Time
	for _, e := range c {
		if t := e.FetchedAt(); t.After(latest) {
			latest = t
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
