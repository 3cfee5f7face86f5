package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/haito/internal/models"
)

// QuoteProvider is the narrow boundary to the external market-data API.
// Implementations own every provider-specific payload path and return
// normalized values only.
type QuoteProvider interface {
	// GetPrice returns the regular-market price for a provider symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// GetQuote returns name, price, currency, exchange and (if reported) the raw sector.
	GetQuote(ctx context.Context, symbol string) (*models.ProviderQuote, error)

	// GetDividends returns the dividend events reported since the given time.
	GetDividends(ctx context.Context, symbol string, since time.Time) ([]models.DividendEvent, error)

	// GetSector returns the raw sector string from the company profile.
	GetSector(ctx context.Context, symbol string) (string, error)
}

// NewsFeed searches a news feed by free-text query.
type NewsFeed interface {
	Search(ctx context.Context, query string) ([]models.FeedItem, error)
}

// IdentityVerifier turns a bearer credential into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}
