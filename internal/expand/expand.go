// Package expand widens a free-text search with taxonomy filters: a
// resource only reachable through a tag or category whose name matches the
// search text is pulled in by an extra, strictly term-filtered query.
package expand

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/query"
)

// Searcher finds terms by name. Satisfied by *vocab.Vocabulary.
type Searcher interface {
	SearchByName(query string) []model.Term
}

// Expansion holds the term ids a search matched, per taxonomy.
type Expansion struct {
	TagIDs      []int
	CategoryIDs []int
}

// Empty reports whether no widened query is needed.
func (e Expansion) Empty() bool {
	return len(e.TagIDs) == 0 && len(e.CategoryIDs) == 0
}

// Expand matches the search text against the cached tag and category
// vocabularies. A taxonomy whose facet is already filtered is skipped: the
// explicit selection wins over a matching search term.
func Expand(search string, categories, tags Searcher, state query.State) Expansion {
	var e Expansion
	if search == "" {
		return e
	}
	if state.Tag.IsAll() && tags != nil {
		e.TagIDs = termIDs(tags.SearchByName(search))
	}
	if state.Category.IsAll() && categories != nil {
		e.CategoryIDs = termIDs(categories.SearchByName(search))
	}
	return e
}

// Widened is one extra resource query produced by an expansion.
type Widened struct {
	Taxonomy string // query.ParamTags or query.ParamCategories
	Params   url.Values
}

// Queries derives the widened parameter sets from the base resource query:
// the search text is dropped and the matched ids become a strict taxonomy
// filter. The tag query comes first. Each query only carries its own
// taxonomy's ids.
func (e Expansion) Queries(base url.Values) []Widened {
	var out []Widened
	if len(e.TagIDs) > 0 {
		out = append(out, Widened{Taxonomy: query.ParamTags, Params: widen(base, query.ParamTags, e.TagIDs)})
	}
	if len(e.CategoryIDs) > 0 {
		out = append(out, Widened{Taxonomy: query.ParamCategories, Params: widen(base, query.ParamCategories, e.CategoryIDs)})
	}
	return out
}

func widen(base url.Values, param string, ids []int) url.Values {
	p := make(url.Values, len(base)+1)
	for k, v := range base {
		p[k] = append([]string(nil), v...)
	}
	p.Del(query.ParamSearch)
	p.Set(param, joinIDs(ids))
	return p
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func termIDs(terms []model.Term) []int {
	if len(terms) == 0 {
		return nil
	}
	ids := make([]int, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	return ids
}
