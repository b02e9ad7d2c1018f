// Package urlsync maps browsing state to and from an address query string,
// so navigation and reloads reproduce the same listing view. The same wire
// keys the listing endpoint understands are used in the address: "search",
// "page" and "filter.<name>" (with $gte/$lte suffixes for range bounds).
package urlsync

import (
	"net/url"
	"strconv"
	"strings"

	"nestquery-listings/internal/models"
)

const (
	filterPrefix = "filter."
	gteSuffix    = "$gte"
	lteSuffix    = "$lte"
)

// Parse extracts filter state, the search term and the page number from an
// address query. Unrecognized keys are ignored, not errors; a missing or
// invalid page defaults to 1.
func Parse(values url.Values) (models.FilterState, string, int) {
	filters := models.NewFilterState()
	search := ""
	page := 1

	if raw := values.Get("search"); raw != "" {
		search = raw
	}
	if raw := values.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			page = n
		}
	}

	// Walk the schema rather than the raw values so filters always land in
	// canonical order regardless of how the address was typed.
	for _, def := range models.FilterSchema() {
		switch def.Kind {
		case models.FilterText, models.FilterEnum:
			if raw := values.Get(filterPrefix + def.Name); raw != "" {
				filters.Set(def.Name, models.FilterValue{Kind: def.Kind, Text: raw})
			}
		case models.FilterRange:
			min := values.Get(filterPrefix + def.Name + gteSuffix)
			max := values.Get(filterPrefix + def.Name + lteSuffix)
			if min != "" || max != "" {
				filters.Set(def.Name, models.RangeFilter(min, max))
			}
		case models.FilterBool:
			if raw := values.Get(filterPrefix + def.Name); raw != "" {
				if b, err := strconv.ParseBool(raw); err == nil {
					filters.Set(def.Name, models.BoolFilter(&b))
				}
			}
		}
	}

	return filters, search, page
}

// ParseQuery is Parse over a raw query string, e.g. the part after "?" in
// "/rent?filter.city=Berlin&page=2". A malformed string yields defaults.
func ParseQuery(raw string) (models.FilterState, string, int) {
	raw = strings.TrimPrefix(raw, "?")
	values, err := url.ParseQuery(raw)
	if err != nil {
		return models.NewFilterState(), "", 1
	}
	return Parse(values)
}

// Encode serializes committed browsing state for the address bar. Defaults
// are omitted (page 1, empty search) so the address stays clean; the
// round-trip through Parse reconstructs an equivalent state.
func Encode(filters models.FilterState, search string, page int) url.Values {
	values := url.Values{}
	if term := strings.TrimSpace(search); term != "" {
		values.Set("search", term)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	for _, key := range filters.Keys() {
		v, ok := filters.Get(key)
		if !ok {
			continue
		}
		switch v.Kind {
		case models.FilterText, models.FilterEnum:
			if text := strings.TrimSpace(v.Text); text != "" {
				values.Set(filterPrefix+key, text)
			}
		case models.FilterRange:
			if min := strings.TrimSpace(v.Min); min != "" {
				values.Set(filterPrefix+key+gteSuffix, min)
			}
			if max := strings.TrimSpace(v.Max); max != "" {
				values.Set(filterPrefix+key+lteSuffix, max)
			}
		case models.FilterBool:
			if v.Bool != nil {
				values.Set(filterPrefix+key, strconv.FormatBool(*v.Bool))
			}
		}
	}
	return values
}
