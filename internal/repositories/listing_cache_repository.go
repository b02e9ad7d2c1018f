package repositories

import (
	"context"
	"time"

	"nestquery-listings/internal/models"
	"nestquery-listings/pkg/cache"
)

type listingCache struct{}

func NewListingCache() ListingCache {
	return &listingCache{}
}

func (c *listingCache) GetPage(ctx context.Context, key string) (*models.ListingPage, error) {
	var page models.ListingPage
	if err := cache.Get(ctx, key, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *listingCache) SetPage(ctx context.Context, key string, page *models.ListingPage, expiration time.Duration) error {
	return cache.SetPage(ctx, key, page, expiration)
}

func (c *listingCache) InvalidatePages(ctx context.Context) error {
	return cache.InvalidatePages(ctx)
}
