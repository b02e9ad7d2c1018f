package validators

import (
	"nestquery-listings/internal/models"
)

type ListingValidator interface {
	ValidateCreate(listing *models.Listing) error
	ValidateUpdate(listing *models.Listing) error
	ValidateSearch(q *models.SearchQuery) error
}
