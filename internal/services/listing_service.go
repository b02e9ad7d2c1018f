package services

import (
	"context"
	"fmt"
	"time"

	"nestquery-listings/internal/models"
	"nestquery-listings/internal/repositories"
	"nestquery-listings/internal/validators"
	"nestquery-listings/pkg/logger"

	"github.com/google/uuid"
)

type ListingService struct {
	repo      repositories.ListingRepository
	cache     repositories.ListingCache
	validator validators.ListingValidator
}

func NewListingService(
	repo repositories.ListingRepository,
	cache repositories.ListingCache,
	validator validators.ListingValidator,
) *ListingService {
	return &ListingService{
		repo:      repo,
		cache:     cache,
		validator: validator,
	}
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.GlobalLogger.Errorf("DB query failed: id=%s, error=%v", id, err)
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing not found: %s", id)
	}
	return listing, nil
}

func (s *ListingService) CreateListing(ctx context.Context, listing *models.Listing) error {
	if err := s.validator.ValidateCreate(listing); err != nil {
		return err
	}

	listing.ListingID = uuid.NewString()
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if err := s.repo.Create(ctx, listing); err != nil {
		logger.GlobalLogger.Errorf("Failed to create listing: error=%v", err)
		return fmt.Errorf("database query failed: %v", err)
	}

	// Totals and page boundaries shift, drop every cached page.
	if err := s.cache.InvalidatePages(ctx); err != nil {
		logger.GlobalLogger.Errorf("Failed to invalidate page cache: %v", err)
	}
	return nil
}

func (s *ListingService) UpdateListing(ctx context.Context, listing *models.Listing) error {
	if err := s.validator.ValidateUpdate(listing); err != nil {
		return err
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		logger.GlobalLogger.Errorf("Failed to update listing: id=%s, error=%v", listing.ListingID, err)
		return err
	}

	if err := s.cache.InvalidatePages(ctx); err != nil {
		logger.GlobalLogger.Errorf("Failed to invalidate page cache: %v", err)
	}
	return nil
}

func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.GlobalLogger.Errorf("Failed to delete listing: id=%s, error=%v", id, err)
		return err
	}

	if err := s.cache.InvalidatePages(ctx); err != nil {
		logger.GlobalLogger.Errorf("Failed to invalidate page cache: %v", err)
	}
	return nil
}
