package utils

import (
	"fmt"
	"net/url"
)

// BuildPageURL rebuilds the request URL for a different page, carrying every
// other parameter (filters, search, sort) through unchanged.
func BuildPageURL(baseURL string, page, limit int, params url.Values) string {
	u, _ := url.Parse(baseURL)
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	for key, values := range params {
		if key != "page" && key != "limit" {
			for _, value := range values {
				q.Add(key, value)
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
