// handlers/listing_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nestquery-listings/internal/models"
	"nestquery-listings/internal/services"
	"nestquery-listings/internal/urlsync"
)

type ListingHandler struct {
	listingService *services.ListingService
	searchService  *services.ListingSearchService
	descService    *services.DescriptionService
}

func NewListingHandler(
	listingService *services.ListingService,
	searchService *services.ListingSearchService,
	descService *services.DescriptionService,
) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		searchService:  searchService,
		descService:    descService,
	}
}

// ListListings godoc
// @Summary List listings with filters and pagination
// @Description Get a filtered, sorted, paginated page of listings
// @Tags Listings
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param sortBy query string false "Sort order: newest, oldest, price, -price"
// @Param search query string false "Free-text search term"
// @Success 200 {object} models.ListingPage
// @Failure 500 {object} map[string]string
// @Router /properties [get]
func (h *ListingHandler) ListListings(c *gin.Context) {
	values := c.Request.URL.Query()
	filters, search, page := urlsync.Parse(values)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	q := models.SearchQuery{
		Page:    page,
		Limit:   limit,
		SortBy:  c.Query("sortBy"),
		Search:  search,
		Filters: filters,
	}

	result, err := h.searchService.ListListings(c.Request.Context(), q, c.Request.URL.Path, values)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetListingByID godoc
// @Summary Get listing by ID
// @Description Get a single listing by its ID
// @Tags Listings
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [get]
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// CreateListing godoc
// @Summary Create a new listing
// @Description Create a new listing record
// @Tags Listings
// @Accept json
// @Produce json
// @Param listing body models.Listing true "Listing data"
// @Success 201 {object} models.Listing
// @Failure 400 {object} map[string]string
// @Router /properties [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.listingService.CreateListing(c.Request.Context(), &listing); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	listing.ListingID = c.Param("id")

	if err := h.listingService.UpdateListing(c.Request.Context(), &listing); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteListing godoc
// @Summary Delete a listing
// @Description Delete a listing by ID; answers 204 with no body
// @Tags Listings
// @Param id path string true "Listing ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [delete]
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateDescription godoc
// @Summary Generate a listing description
// @Description Generate and persist a description via the completion endpoint
// @Tags Listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /properties/{id}/description [post]
func (h *ListingHandler) GenerateDescription(c *gin.Context) {
	if h.descService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "description generation is not enabled"})
		return
	}

	listing, err := h.descService.GenerateDescription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
