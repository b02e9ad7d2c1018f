package describer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nestquery-listings/internal/models"
	"nestquery-listings/pkg/metrics"
)

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Text    string `json:"text"`
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// GenerateDescription asks the completion endpoint for a short marketing
// description of the listing. Any non-2xx response or empty completion is a
// "description generation failed" error; the caller decides whether to
// surface or ignore it.
func (c *Client) GenerateDescription(ctx context.Context, listing *models.Listing) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:     c.model,
		Prompt:    buildPrompt(listing),
		MaxTokens: 256,
	})
	if err != nil {
		return "", fmt.Errorf("description generation failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("description generation failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.DescriberRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("description generation failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.DescriberRequestsTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
		return "", fmt.Errorf("description generation failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		metrics.DescriberRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("description generation failed: malformed response: %v", err)
	}

	text := completion.Text
	if text == "" && len(completion.Choices) > 0 {
		text = completion.Choices[0].Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.DescriberRequestsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("description generation failed: empty completion")
	}

	metrics.DescriberRequestsTotal.WithLabelValues("success").Inc()
	return text, nil
}

func buildPrompt(listing *models.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short, appealing description for a rental listing.\n")
	fmt.Fprintf(&b, "Title: %s\n", listing.Title)
	fmt.Fprintf(&b, "Type: %s\n", listing.PropertyType)
	fmt.Fprintf(&b, "City: %s\n", listing.Location.City)
	if listing.Location.District != "" {
		fmt.Fprintf(&b, "District: %s\n", listing.Location.District)
	}
	fmt.Fprintf(&b, "Price: %.0f\n", listing.Price)
	fmt.Fprintf(&b, "Bedrooms: %d, Bathrooms: %d, Area: %.0f sqm\n",
		listing.Features.Bedrooms, listing.Features.Bathrooms, listing.Features.AreaSqm)
	if len(listing.Features.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities: %s\n", strings.Join(listing.Features.Amenities, ", "))
	}
	return b.String()
}
