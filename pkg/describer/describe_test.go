package describer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nestquery-listings/internal/models"
)

func testListing() *models.Listing {
	return &models.Listing{
		ListingID:    "l1",
		Title:        "Loft in Mitte",
		PropertyType: "loft",
		Price:        1800,
		Location:     models.Location{City: "Berlin", District: "Mitte"},
		Features:     models.Features{Bedrooms: 2, Bathrooms: 1, AreaSqm: 75},
	}
}

func TestGenerateDescription(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %s, want /v1/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if !strings.Contains(req.Prompt, "Loft in Mitte") || !strings.Contains(req.Prompt, "Berlin") {
			t.Errorf("prompt missing listing facts: %q", req.Prompt)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"text": "  A bright loft in the heart of Mitte.  "}]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model")
	text, err := client.GenerateDescription(context.Background(), testListing())
	if err != nil {
		t.Fatalf("GenerateDescription: %v", err)
	}
	if text != "A bright loft in the heart of Mitte." {
		t.Fatalf("text = %q, want trimmed completion", text)
	}
}

func TestGenerateDescriptionTopLevelText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "Sunny two-bedroom loft."}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", "test-model")
	text, err := client.GenerateDescription(context.Background(), testListing())
	if err != nil {
		t.Fatalf("GenerateDescription: %v", err)
	}
	if text != "Sunny two-bedroom loft." {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateDescriptionUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", "test-model")
	_, err := client.GenerateDescription(context.Background(), testListing())
	if err == nil {
		t.Fatal("non-2xx response must fail")
	}
	if !strings.HasPrefix(err.Error(), "description generation failed:") {
		t.Fatalf("error = %v, want the standard prefix", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error = %v, want the upstream status", err)
	}
}

func TestGenerateDescriptionEmptyCompletion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"text": "   "}]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", "test-model")
	_, err := client.GenerateDescription(context.Background(), testListing())
	if err == nil || !strings.Contains(err.Error(), "empty completion") {
		t.Fatalf("error = %v, want empty-completion failure", err)
	}
}

func TestGenerateDescriptionMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", "test-model")
	if _, err := client.GenerateDescription(context.Background(), testListing()); err == nil {
		t.Fatal("malformed response body must fail")
	}
}
