package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nestquery-listings/internal/middleware"
	"nestquery-listings/internal/models"
	"nestquery-listings/internal/services"
	"nestquery-listings/internal/validators"
	"nestquery-listings/pkg/logger"
)

type fakeRepo struct {
	mu        sync.Mutex
	listings  map[string]models.Listing
	queries   []models.SearchQuery
	page      []models.Listing
	total     int64
	findErr   error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{listings: make(map[string]models.Listing)}
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.listings[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *fakeRepo) FindPage(ctx context.Context, q models.SearchQuery) ([]models.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.findErr != nil {
		return nil, 0, r.findErr
	}
	return r.page, r.total, nil
}

func (r *fakeRepo) Create(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ListingID] = *listing
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ListingID] = *listing
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.listings, id)
	return nil
}

func (r *fakeRepo) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func (r *fakeRepo) lastQuery() models.SearchQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[len(r.queries)-1]
}

type fakeCache struct {
	mu    sync.Mutex
	pages map[string]*models.ListingPage
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]*models.ListingPage)}
}

func (c *fakeCache) GetPage(ctx context.Context, key string) (*models.ListingPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page, ok := c.pages[key]; ok {
		return page, nil
	}
	return nil, errors.New("cache miss")
}

func (c *fakeCache) SetPage(ctx context.Context, key string, page *models.ListingPage, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
	return nil
}

func (c *fakeCache) InvalidatePages(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[string]*models.ListingPage)
	return nil
}

func newTestRouter(repo *fakeRepo, cache *fakeCache) *gin.Engine {
	logger.InitLogger(io.Discard, "ERROR")
	gin.SetMode(gin.TestMode)

	validator := validators.NewListingValidator()
	listingService := services.NewListingService(repo, cache, validator)
	searchService := services.NewListingSearchService(repo, cache, validator, 10, 100)
	handler := NewListingHandler(listingService, searchService, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	props := r.Group("/api/properties")
	{
		props.GET("", handler.ListListings)
		props.GET("/:id", handler.GetListingByID)
		props.POST("", handler.CreateListing)
		props.PUT("/:id", handler.UpdateListing)
		props.DELETE("/:id", handler.DeleteListing)
		props.POST("/:id/description", handler.GenerateDescription)
	}
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListListingsParsesWireQuery(t *testing.T) {
	repo := newFakeRepo()
	repo.page = []models.Listing{{ListingID: "l1", Title: "Loft in Mitte"}}
	repo.total = 25
	r := newTestRouter(repo, newFakeCache())

	w := doRequest(t, r, http.MethodGet,
		"/api/properties?filter.city=Berlin&filter.price$gte=1000&search=loft&page=2&limit=5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	q := repo.lastQuery()
	if q.Page != 2 || q.Limit != 5 || q.Search != "loft" {
		t.Fatalf("query = %+v, want page 2, limit 5, search loft", q)
	}
	if v, ok := q.Filters.Get("city"); !ok || v.Text != "Berlin" {
		t.Fatalf("city filter = %+v, %v; want Berlin", v, ok)
	}
	if v, ok := q.Filters.Get("price"); !ok || v.Min != "1000" {
		t.Fatalf("price filter = %+v, %v; want min 1000", v, ok)
	}

	var page models.ListingPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.Meta.TotalItems != 25 || page.Meta.TotalPages != 5 || page.Meta.CurrentPage != 2 {
		t.Fatalf("meta = %+v, want 25 items over 5 pages, on page 2", page.Meta)
	}
	if page.Links.Next == nil || !strings.Contains(*page.Links.Next, "page=3") {
		t.Fatalf("next link = %v, want page=3", page.Links.Next)
	}
	if page.Links.Prev == nil || !strings.Contains(*page.Links.Prev, "page=1") {
		t.Fatalf("prev link = %v, want page=1", page.Links.Prev)
	}
	if page.Links.Prev != nil && !strings.Contains(*page.Links.Prev, "filter.city=Berlin") {
		t.Fatalf("prev link = %v, want filters carried through", *page.Links.Prev)
	}
}

func TestListListingsServedFromCacheOnRepeat(t *testing.T) {
	repo := newFakeRepo()
	repo.page = []models.Listing{{ListingID: "l1"}}
	repo.total = 1
	r := newTestRouter(repo, newFakeCache())

	target := "/api/properties?filter.city=Berlin&page=1"
	if w := doRequest(t, r, http.MethodGet, target, nil); w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", w.Code)
	}
	if w := doRequest(t, r, http.MethodGet, target, nil); w.Code != http.StatusOK {
		t.Fatalf("second request: status = %d", w.Code)
	}

	if repo.queryCount() != 1 {
		t.Fatalf("repo queried %d times, want the repeat served from cache", repo.queryCount())
	}
}

func TestListListingsRepoFailureMapsToServiceUnavailable(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = errors.New("connection refused")
	r := newTestRouter(repo, newFakeCache())

	w := doRequest(t, r, http.MethodGet, "/api/properties", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("code = %q, want SERVICE_UNAVAILABLE", body.Error.Code)
	}
	if strings.Contains(body.Error.Message, "connection refused") {
		t.Fatal("technical error details must not leak to the client")
	}
}

func TestGetListingNotFound(t *testing.T) {
	r := newTestRouter(newFakeRepo(), newFakeCache())

	w := doRequest(t, r, http.MethodGet, "/api/properties/ghost", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "LISTING_NOT_FOUND") {
		t.Fatalf("body = %s, want LISTING_NOT_FOUND code", w.Body.String())
	}
}

func TestCreateListing(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo, newFakeCache())

	body, _ := json.Marshal(models.Listing{
		Title:    "Loft in Mitte",
		Price:    1800,
		Location: models.Location{City: "Berlin"},
	})
	w := doRequest(t, r, http.MethodPost, "/api/properties", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ListingID == "" {
		t.Fatal("created listing must have a server-assigned ID")
	}
	if _, ok := repo.listings[created.ListingID]; !ok {
		t.Fatal("created listing must be persisted")
	}
}

func TestCreateListingValidation(t *testing.T) {
	r := newTestRouter(newFakeRepo(), newFakeCache())

	body, _ := json.Marshal(models.Listing{Price: 1800}) // no title, no city
	w := doRequest(t, r, http.MethodPost, "/api/properties", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "INVALID_PARAMETERS") {
		t.Fatalf("body = %s, want INVALID_PARAMETERS code", w.Body.String())
	}
}

func TestDeleteListing(t *testing.T) {
	repo := newFakeRepo()
	repo.listings["l1"] = models.Listing{ListingID: "l1"}
	r := newTestRouter(repo, newFakeCache())

	w := doRequest(t, r, http.MethodDelete, "/api/properties/l1", nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("body = %q, want empty", w.Body.String())
	}
	if _, ok := repo.listings["l1"]; ok {
		t.Fatal("listing must be removed")
	}
}

func TestMutationInvalidatesCachedPages(t *testing.T) {
	repo := newFakeRepo()
	repo.page = []models.Listing{{ListingID: "l1"}}
	repo.total = 1
	cache := newFakeCache()
	r := newTestRouter(repo, cache)

	target := "/api/properties?filter.city=Berlin"
	doRequest(t, r, http.MethodGet, target, nil)
	if len(cache.pages) == 0 {
		t.Fatal("first page should be cached")
	}

	doRequest(t, r, http.MethodDelete, "/api/properties/l1", nil)
	if len(cache.pages) != 0 {
		t.Fatal("a mutation must drop every cached page")
	}

	// the next read goes back to the repository
	doRequest(t, r, http.MethodGet, target, nil)
	if repo.queryCount() != 2 {
		t.Fatalf("repo queried %d times, want 2 after invalidation", repo.queryCount())
	}
}

func TestGenerateDescriptionDisabled(t *testing.T) {
	r := newTestRouter(newFakeRepo(), newFakeCache())

	w := doRequest(t, r, http.MethodPost, "/api/properties/l1/description", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when the describer is not configured", w.Code)
	}
}
