// internal/models/filter.go
package models

import "strings"

// FilterKind tags the value shape of a listing filter.
type FilterKind int

const (
	FilterText FilterKind = iota
	FilterEnum
	FilterRange
	FilterBool
)

// FilterValue is a tagged filter value. Only the fields for its Kind carry
// meaning: Text for text/enum, Min/Max (raw, as entered) for range, Bool
// (nil = unset) for tri-state booleans.
type FilterValue struct {
	Kind FilterKind
	Text string
	Min  string
	Max  string
	Bool *bool
}

func TextFilter(s string) FilterValue {
	return FilterValue{Kind: FilterText, Text: s}
}

func EnumFilter(s string) FilterValue {
	return FilterValue{Kind: FilterEnum, Text: s}
}

func RangeFilter(min, max string) FilterValue {
	return FilterValue{Kind: FilterRange, Min: min, Max: max}
}

func BoolFilter(b *bool) FilterValue {
	return FilterValue{Kind: FilterBool, Bool: b}
}

// IsZero reports whether the value is unset for its kind. An empty string is
// equivalent to unset.
func (v FilterValue) IsZero() bool {
	switch v.Kind {
	case FilterText, FilterEnum:
		return strings.TrimSpace(v.Text) == ""
	case FilterRange:
		return strings.TrimSpace(v.Min) == "" && strings.TrimSpace(v.Max) == ""
	case FilterBool:
		return v.Bool == nil
	}
	return true
}

// Equal compares two filter values field-by-field for the same kind.
func (v FilterValue) Equal(o FilterValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case FilterText, FilterEnum:
		return v.Text == o.Text
	case FilterRange:
		return v.Min == o.Min && v.Max == o.Max
	case FilterBool:
		if v.Bool == nil || o.Bool == nil {
			return v.Bool == o.Bool
		}
		return *v.Bool == *o.Bool
	}
	return false
}

// FilterState holds the user-selected filter criteria keyed by canonical
// filter name. Insertion order is preserved so a query built from the same
// state twice serializes identically.
type FilterState struct {
	keys   []string
	values map[string]FilterValue
}

func NewFilterState() FilterState {
	return FilterState{values: make(map[string]FilterValue)}
}

// Set records a filter value. A zero value removes the filter entirely.
func (s *FilterState) Set(key string, v FilterValue) {
	if s.values == nil {
		s.values = make(map[string]FilterValue)
	}
	if v.IsZero() {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			for i, k := range s.keys {
				if k == key {
					s.keys = append(s.keys[:i], s.keys[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

func (s FilterState) Get(key string) (FilterValue, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the set filter names in insertion order.
func (s FilterState) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s FilterState) Len() int {
	return len(s.keys)
}

func (s FilterState) IsZero() bool {
	return len(s.keys) == 0
}

// Clone returns an independent copy. Reducer transitions copy before
// mutating so prior state snapshots stay valid.
func (s FilterState) Clone() FilterState {
	c := FilterState{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]FilterValue, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

func (s FilterState) Equal(o FilterState) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for _, k := range s.keys {
		ov, ok := o.values[k]
		if !ok || !s.values[k].Equal(ov) {
			return false
		}
	}
	return true
}
