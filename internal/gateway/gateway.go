// Package gateway issues paginated fetches and mutations against the remote
// listing collection endpoint. It holds no mutable request state, so
// concurrent calls for different pages never interfere, and it never retries
// on its own; a failure surfaces immediately to the caller.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nestquery-listings/internal/models"
	"nestquery-listings/internal/query"
)

// FetchError is the typed failure of a gateway call: a human-readable
// message plus the HTTP status code where one was available (0 for
// transport-level failures).
type FetchError struct {
	Message    string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("listing fetch failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("listing fetch failed: %s", e.Message)
}

// Client talks to one listing collection endpoint. Construct it explicitly
// and pass it into the owning scope; there is no package-level instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a gateway client for the collection at baseURL, e.g.
// "http://host/api/properties". A nil httpClient gets a timeout-bounded
// default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// FetchPage executes one ListingQuery. A 200 with zero results is a valid
// empty page, not an error.
func (c *Client) FetchPage(ctx context.Context, q query.ListingQuery) (*models.ListingPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readError(resp)
	}

	var page models.ListingPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &FetchError{Message: fmt.Sprintf("malformed response body: %v", err), StatusCode: resp.StatusCode}
	}
	if page.Data == nil {
		page.Data = []models.Listing{}
	}
	return &page, nil
}

// Delete issues the confirming delete for an optimistic removal. The
// endpoint answers 204 with no body on success.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/"+id, nil)
	if err != nil {
		return &FetchError{Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	return nil
}

// readError extracts a structured error from a non-2xx response. A body
// that fails to parse as JSON falls back to the HTTP status text.
func readError(resp *http.Response) *FetchError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error.Message != "" {
			return &FetchError{Message: payload.Error.Message, StatusCode: resp.StatusCode}
		}
		if payload.Message != "" {
			return &FetchError{Message: payload.Message, StatusCode: resp.StatusCode}
		}
	}
	return &FetchError{Message: http.StatusText(resp.StatusCode), StatusCode: resp.StatusCode}
}
