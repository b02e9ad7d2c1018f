package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"nestquery-listings/internal/models"
	"nestquery-listings/internal/query"
	"nestquery-listings/internal/repositories"
	"nestquery-listings/internal/utils"
	"nestquery-listings/internal/validators"
	"nestquery-listings/pkg/cache"
	"nestquery-listings/pkg/logger"
	"nestquery-listings/pkg/metrics"
)

const pageCacheTTL = 5 * time.Minute

type ListingSearchService struct {
	repo         repositories.ListingRepository
	cache        repositories.ListingCache
	validator    validators.ListingValidator
	defaultLimit int
	maxLimit     int
}

func NewListingSearchService(
	repo repositories.ListingRepository,
	listingCache repositories.ListingCache,
	validator validators.ListingValidator,
	defaultLimit, maxLimit int,
) *ListingSearchService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &ListingSearchService{
		repo:         repo,
		cache:        listingCache,
		validator:    validator,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ListListings serves one filtered, paginated page. Pages are cached under
// the canonical encoded query, so two requests that normalize to the same
// query share a cache entry regardless of parameter order on the wire.
func (s *ListingSearchService) ListListings(ctx context.Context, q models.SearchQuery, baseURL string, params url.Values) (*models.ListingPage, error) {
	if err := s.validator.ValidateSearch(&q); err != nil {
		logger.GlobalLogger.Printf("Invalid search: term=%q, error=%v", q.Search, err)
		return nil, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > s.maxLimit {
		q.Limit = s.defaultLimit
	}

	canonical := query.Build(q.Filters, q.Search, q.Page, q.Limit, q.SortBy)
	cacheKey := cache.ListingPageKey(canonical.Encode())

	if page, err := s.cache.GetPage(ctx, cacheKey); err == nil && page != nil {
		metrics.CacheHitsTotal.Inc()
		return page, nil
	}
	metrics.CacheMissesTotal.Inc()

	listings, total, err := s.repo.FindPage(ctx, q)
	if err != nil {
		logger.GlobalLogger.Errorf("DB query failed: query=%s, error=%v", canonical.Encode(), err)
		return nil, fmt.Errorf("database query failed: %v", err)
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	page := &models.ListingPage{
		Data: listings,
		Meta: models.PageMeta{
			TotalItems:   total,
			ItemsPerPage: q.Limit,
			TotalPages:   totalPages,
			CurrentPage:  q.Page,
		},
	}
	if q.Page < totalPages {
		nextURL := utils.BuildPageURL(baseURL, q.Page+1, q.Limit, params)
		page.Links.Next = &nextURL
	}
	if q.Page > 1 {
		prevURL := utils.BuildPageURL(baseURL, q.Page-1, q.Limit, params)
		page.Links.Prev = &prevURL
	}

	if err := s.cache.SetPage(ctx, cacheKey, page, pageCacheTTL); err != nil {
		logger.GlobalLogger.Errorf("Failed to cache page: key=%s, error=%v", cacheKey, err)
	}

	return page, nil
}
