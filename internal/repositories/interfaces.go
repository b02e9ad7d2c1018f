package repositories

import (
	"context"
	"time"

	"nestquery-listings/internal/models"
)

type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	FindPage(ctx context.Context, q models.SearchQuery) ([]models.Listing, int64, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id string) error
}

// ListingCache caches whole result pages keyed by the canonical encoded
// query. Any listing mutation invalidates every cached page, since totals
// and page boundaries shift.
type ListingCache interface {
	GetPage(ctx context.Context, key string) (*models.ListingPage, error)
	SetPage(ctx context.Context, key string, page *models.ListingPage, expiration time.Duration) error
	InvalidatePages(ctx context.Context) error
}
