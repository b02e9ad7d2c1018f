package services

import (
	"context"
	"fmt"

	"nestquery-listings/internal/models"
	"nestquery-listings/internal/repositories"
	"nestquery-listings/pkg/describer"
	"nestquery-listings/pkg/logger"
)

// DescriptionService generates a listing description through the external
// completion endpoint and persists it on the record.
type DescriptionService struct {
	repo   repositories.ListingRepository
	cache  repositories.ListingCache
	client *describer.Client
}

func NewDescriptionService(
	repo repositories.ListingRepository,
	cache repositories.ListingCache,
	client *describer.Client,
) *DescriptionService {
	return &DescriptionService{
		repo:   repo,
		cache:  cache,
		client: client,
	}
}

func (s *DescriptionService) GenerateDescription(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.GlobalLogger.Errorf("DB query failed: id=%s, error=%v", id, err)
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing not found: %s", id)
	}

	text, err := s.client.GenerateDescription(ctx, listing)
	if err != nil {
		logger.GlobalLogger.Errorf("Description generation failed: id=%s, error=%v", id, err)
		return nil, err
	}

	listing.Description = text
	if err := s.repo.Update(ctx, listing); err != nil {
		logger.GlobalLogger.Errorf("Failed to persist description: id=%s, error=%v", id, err)
		return nil, err
	}
	if err := s.cache.InvalidatePages(ctx); err != nil {
		logger.GlobalLogger.Errorf("Failed to invalidate page cache: %v", err)
	}

	return listing, nil
}
