// Package query holds the user's filter state and turns it into the
// remote API's query parameters.
package query

import (
	"strconv"
	"strings"
)

// All is the facet value meaning "no filter".
const All Facet = "all"

// Facet is one facet selection: All or a term id.
type Facet string

// FacetOf returns the facet value selecting the given term id.
func FacetOf(id int) Facet {
	return Facet(strconv.Itoa(id))
}

// ParseFacet normalizes a raw facet value. Empty, "all" and anything that is
// not a positive integer id map to All.
func ParseFacet(raw string) Facet {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, string(All)) {
		return All
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return All
	}
	return FacetOf(id)
}

// IsAll reports whether the facet is unfiltered.
func (f Facet) IsAll() bool {
	return f == All || f == ""
}

// ID returns the selected term id, or 0 for All.
func (f Facet) ID() int {
	if f.IsAll() {
		return 0
	}
	id, _ := strconv.Atoi(string(f))
	return id
}

// FacetName identifies one of the five facet dimensions.
type FacetName string

const (
	FacetAudience FacetName = "audience"
	FacetLength   FacetName = "length"
	FacetProgram  FacetName = "program"
	FacetCategory FacetName = "category"
	FacetTag      FacetName = "tag"
)

// Facets lists the five facet dimensions in display order.
var Facets = []FacetName{FacetAudience, FacetLength, FacetProgram, FacetCategory, FacetTag}

// SortKey is a field the API (and the local sorter) can order resources by.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortID       SortKey = "id"
	SortModified SortKey = "modified"
	SortParent   SortKey = "parent"
	SortSlug     SortKey = "slug"
	SortTitle    SortKey = "title"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortDate, SortID, SortModified, SortParent, SortSlug, SortTitle}

// DefaultSortKey is used when no valid key is configured.
const DefaultSortKey = SortTitle

// ParseSortKey returns the sort key named by raw, or DefaultSortKey with
// ok=false when raw is not one of SortKeys.
func ParseSortKey(raw string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == raw {
			return k, true
		}
	}
	return DefaultSortKey, false
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns the direction named by raw, or Asc with ok=false.
func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return Asc, false
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// State is the complete filter/search/sort selection.
type State struct {
	Audience Facet
	Length   Facet
	Program  Facet
	Category Facet
	Tag      Facet

	Search    string
	Sort      SortKey
	Direction Direction
}

// NewState returns a state with every facet at All and the given ordering.
func NewState(key SortKey, dir Direction) State {
	s := State{Sort: key, Direction: dir}
	s.Reset()
	return s
}

// Reset sets all facets to All and clears the search. Ordering is kept.
func (s *State) Reset() {
	s.Audience = All
	s.Length = All
	s.Program = All
	s.Category = All
	s.Tag = All
	s.Search = ""
}

// Facet returns the current value of a facet dimension.
func (s State) Facet(name FacetName) Facet {
	switch name {
	case FacetAudience:
		return s.Audience
	case FacetLength:
		return s.Length
	case FacetProgram:
		return s.Program
	case FacetCategory:
		return s.Category
	case FacetTag:
		return s.Tag
	}
	return All
}

// SetFacet updates one facet dimension. Unknown names are ignored.
func (s *State) SetFacet(name FacetName, value Facet) {
	if value == "" {
		value = All
	}
	switch name {
	case FacetAudience:
		s.Audience = value
	case FacetLength:
		s.Length = value
	case FacetProgram:
		s.Program = value
	case FacetCategory:
		s.Category = value
	case FacetTag:
		s.Tag = value
	}
}

// IsFiltered reports whether any facet or the search narrows the result.
func IsFiltered(s State) bool {
	if s.Search != "" {
		return true
	}
	for _, name := range Facets {
		if !s.Facet(name).IsAll() {
			return true
		}
	}
	return false
}
