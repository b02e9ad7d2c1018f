package cache

import "fmt"

// cache key for a single listing.
func ListingKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

// cache key for one page of a filtered listing query. The encoded query is
// canonical (stable parameter order), so equal queries share a key.
func ListingPageKey(encodedQuery string) string {
	return fmt.Sprintf("listings:page:%s", encodedQuery)
}
