package query

import "net/url"

// API parameter names.
const (
	ParamOrderBy    = "orderby"
	ParamOrder      = "order"
	ParamAudiences  = "resource_audiences"
	ParamLengths    = "resource_lengths"
	ParamPrograms   = "resource_programs"
	ParamCategories = "categories"
	ParamTags       = "tags"
	ParamSearch     = "search"
	ParamPage       = "page"
	ParamPerPage    = "per_page"
)

// facetParams maps each facet dimension to its API parameter.
var facetParams = map[FacetName]string{
	FacetAudience: ParamAudiences,
	FacetLength:   ParamLengths,
	FacetProgram:  ParamPrograms,
	FacetCategory: ParamCategories,
	FacetTag:      ParamTags,
}

// Param returns the API parameter for a facet dimension.
func (n FacetName) Param() string {
	return facetParams[n]
}

// Build translates a state into resource query parameters. The result is
// fully determined by the state.
func Build(s State) url.Values {
	params := url.Values{}

	key := s.Sort
	if key == "" {
		key = DefaultSortKey
	}
	dir := s.Direction
	if dir == "" {
		dir = Asc
	}
	params.Set(ParamOrderBy, string(key))
	params.Set(ParamOrder, string(dir))

	for _, name := range Facets {
		if f := s.Facet(name); !f.IsAll() {
			params.Set(name.Param(), string(f))
		}
	}

	if s.Search != "" {
		params.Set(ParamSearch, s.Search)
	}
	return params
}
