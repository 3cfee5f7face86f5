// Package interfaces defines service contracts for haito
package interfaces

import (
	"context"

	"github.com/bobmcallan/haito/internal/models"
)

// HoldingStore persists the holdings collection as a single document.
// Save replaces the whole collection atomically.
type HoldingStore interface {
	LoadHoldings(ctx context.Context) ([]models.Holding, error)
	SaveHoldings(ctx context.Context, holdings []models.Holding) error
}

// PriceCacheStore persists the ticker-keyed price cache document.
type PriceCacheStore interface {
	LoadPriceCache(ctx context.Context) (models.PriceCache, error)
	SavePriceCache(ctx context.Context, cache models.PriceCache) error
	// ClearPriceCache deletes the document; a missing document is not an error.
	ClearPriceCache(ctx context.Context) error
}

// ScheduleStore provides the static dividend schedule template.
type ScheduleStore interface {
	LoadScheduleTemplate(ctx context.Context) (*models.ScheduleTemplate, error)
}

// UserDocumentStore mirrors holdings into a per-user document database.
type UserDocumentStore interface {
	PutUserHolding(ctx context.Context, doc *models.UserHoldingDocument) error
	Close(ctx context.Context) error
}
