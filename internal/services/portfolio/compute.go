package portfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/haito/internal/models"
)

// Totals are the aggregate figures of a portfolio.
type Totals struct {
	TotalAssetValue int64
	AnnualDividend  int64
	DividendYield   float64
}

// Enrich returns copies of holdings with current_price taken from prices when
// present (falling back to the persisted price) and market value recomputed.
func Enrich(holdings []models.Holding, prices map[string]float64) []models.Holding {
	out := make([]models.Holding, len(holdings))
	for i, h := range holdings {
		if p, ok := prices[h.Ticker]; ok && p > 0 {
			h.CurrentPrice = p
		}
		h.Recompute()
		out[i] = h
	}
	return out
}

// ComputeTotals sums market value and annual dividend, rounding each total
// half-to-even to an integer. The yield uses the unrounded sums and is 0 for
// an empty or zero-valued portfolio.
func ComputeTotals(holdings []models.Holding) Totals {
	totalValue := decimal.Zero
	annual := decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(decimal.NewFromFloat(h.CurrentPrice).Mul(decimal.NewFromInt(int64(h.Shares))))
		annual = annual.Add(decimal.NewFromFloat(h.AnnualDividendPerShare).Mul(decimal.NewFromInt(int64(h.Shares))))
	}

	t := Totals{
		TotalAssetValue: totalValue.RoundBank(0).IntPart(),
		AnnualDividend:  annual.RoundBank(0).IntPart(),
	}
	if totalValue.IsPositive() {
		t.DividendYield = annual.Div(totalValue).Mul(decimal.NewFromInt(100)).RoundBank(2).InexactFloat64()
	}
	return t
}

// Summarize builds the portfolio view from holdings and resolved prices.
func Summarize(holdings []models.Holding, prices map[string]float64, currency string) *models.PortfolioSummary {
	enriched := Enrich(holdings, prices)
	totals := ComputeTotals(enriched)

	return &models.PortfolioSummary{
		TotalAssetValue:        totals.TotalAssetValue,
		AnnualDividend:         totals.AnnualDividend,
		DividendYield:          totals.DividendYield,
		TotalAssetValueDisplay: FormatAmount(totals.TotalAssetValue, currency),
		AnnualDividendDisplay:  FormatAmount(totals.AnnualDividend, currency),
		Holdings:               enriched,
	}
}

// FormatAmount renders a whole-unit amount in the given currency, e.g. "¥1,234,567".
func FormatAmount(amount int64, currency string) string {
	if currency == "" {
		currency = "JPY"
	}
	c := money.GetCurrency(currency)
	if c == nil {
		return decimal.NewFromInt(amount).String()
	}
	// go-money amounts are in the currency's minor unit
	minor := decimal.NewFromInt(amount).Shift(int32(c.Fraction)).IntPart()
	return money.New(minor, c.Code).Display()
}
