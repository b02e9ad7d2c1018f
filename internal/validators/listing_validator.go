package validators

import (
	"fmt"

	"nestquery-listings/internal/models"
)

const maxSearchTermLength = 200

type listingValidator struct{}

func NewListingValidator() ListingValidator {
	return &listingValidator{}
}

func (v *listingValidator) ValidateCreate(listing *models.Listing) error {
	if listing.Title == "" {
		return fmt.Errorf("title is required")
	}
	if listing.Location.City == "" {
		return fmt.Errorf("city is required")
	}
	if listing.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	return nil
}

func (v *listingValidator) ValidateUpdate(listing *models.Listing) error {
	if listing.ListingID == "" {
		return fmt.Errorf("listing ID is required")
	}
	return v.ValidateCreate(listing)
}

func (v *listingValidator) ValidateSearch(q *models.SearchQuery) error {
	if len(q.Search) > maxSearchTermLength {
		return fmt.Errorf("search term must be at most %d characters", maxSearchTermLength)
	}
	return nil
}
