// internal/models/schema.go
package models

// FilterDef describes one recognized listing filter: its canonical name as
// it appears in query strings, its value kind, and the storage field the
// server matches it against. Nested feature filters live under the
// "features." namespace so they never collide with top-level fields.
type FilterDef struct {
	Name    string
	Kind    FilterKind
	Field   string
	Options []string
}

var filterSchema = []FilterDef{
	{Name: "city", Kind: FilterText, Field: "location.city"},
	{Name: "district", Kind: FilterText, Field: "location.district"},
	{Name: "propertyType", Kind: FilterEnum, Field: "propertyType",
		Options: []string{"apartment", "house", "studio", "loft"}},
	{Name: "price", Kind: FilterRange, Field: "price"},
	{Name: "petsAllowed", Kind: FilterBool, Field: "petsAllowed"},
	{Name: "features.furnished", Kind: FilterBool, Field: "features.furnished"},
	{Name: "features.bedrooms", Kind: FilterRange, Field: "features.bedrooms"},
	{Name: "features.bathrooms", Kind: FilterRange, Field: "features.bathrooms"},
	{Name: "features.areaSqm", Kind: FilterRange, Field: "features.areaSqm"},
	{Name: "features.amenities", Kind: FilterText, Field: "features.amenities"},
}

// FilterSchema returns the recognized filter definitions in canonical order.
func FilterSchema() []FilterDef {
	out := make([]FilterDef, len(filterSchema))
	copy(out, filterSchema)
	return out
}

// LookupFilter resolves a canonical filter name. Unrecognized names are the
// caller's cue to ignore the input rather than fail.
func LookupFilter(name string) (FilterDef, bool) {
	for _, def := range filterSchema {
		if def.Name == name {
			return def, true
		}
	}
	return FilterDef{}, false
}
