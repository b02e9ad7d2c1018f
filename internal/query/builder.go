// Package query turns filter state into the normalized, request-ready
// parameter list the listing endpoint understands. Build is pure: identical
// input always yields a byte-identical encoded query.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"nestquery-listings/internal/models"
)

// Param is one query-string parameter. Order matters: a ListingQuery keeps
// its parameters in the order they were added.
type Param struct {
	Key   string
	Value string
}

// ListingQuery is the normalized combination of page, limit, sort, applied
// search term and active filters. It is derived by Build and never
// hand-constructed elsewhere.
type ListingQuery struct {
	params []Param
}

func (q ListingQuery) Params() []Param {
	out := make([]Param, len(q.params))
	copy(out, q.params)
	return out
}

// Encode serializes the query preserving parameter order.
func (q ListingQuery) Encode() string {
	var b strings.Builder
	for i, p := range q.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values returns the parameters as url.Values for callers that do not care
// about ordering.
func (q ListingQuery) Values() url.Values {
	v := url.Values{}
	for _, p := range q.params {
		v.Add(p.Key, p.Value)
	}
	return v
}

func (q *ListingQuery) add(key, value string) {
	q.params = append(q.params, Param{Key: key, Value: value})
}

// Build maps filter state, the applied search term and pagination into a
// ListingQuery. Unset filters contribute nothing; a non-numeric range bound
// is dropped silently rather than rejected; min > max passes through as
// given; the server is the arbiter of the resulting empty set.
func Build(filters models.FilterState, searchTerm string, page, limit int, sortBy string) ListingQuery {
	var q ListingQuery

	if page < 1 {
		page = 1
	}
	q.add("page", strconv.Itoa(page))
	q.add("limit", strconv.Itoa(limit))
	if sortBy != "" {
		q.add("sortBy", sortBy)
	}
	if term := strings.TrimSpace(searchTerm); term != "" {
		q.add("search", term)
	}

	for _, key := range filters.Keys() {
		v, ok := filters.Get(key)
		if !ok {
			continue
		}
		switch v.Kind {
		case models.FilterText, models.FilterEnum:
			if text := strings.TrimSpace(v.Text); text != "" {
				q.add("filter."+key, text)
			}
		case models.FilterRange:
			if min, ok := parseFinite(v.Min); ok {
				q.add("filter."+key+"$gte", min)
			}
			if max, ok := parseFinite(v.Max); ok {
				q.add("filter."+key+"$lte", max)
			}
		case models.FilterBool:
			if v.Bool != nil {
				q.add("filter."+key, strconv.FormatBool(*v.Bool))
			}
		}
	}

	return q
}

// parseFinite reports whether the raw input is a finite number, returning
// the trimmed text as typed so "1000" round-trips as "1000", not "1000.00".
func parseFinite(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	return trimmed, true
}
