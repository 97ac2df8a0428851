// Package vocab holds the small taxonomy vocabularies (audiences, lengths,
// programs, categories, tags) the catalog caches for lookups and search
// expansion.
package vocab

import (
	"strconv"
	"strings"
	"sync"

	"github.com/abelbrown/catalog/internal/model"
)

// Name identifies one vocabulary.
type Name string

const (
	Audiences  Name = "audiences"
	Lengths    Name = "lengths"
	Programs   Name = "programs"
	Categories Name = "categories"
	Tags       Name = "tags"
)

// All lists every vocabulary in load order.
var All = []Name{Audiences, Lengths, Programs, Categories, Tags}

// Endpoint returns the REST route the vocabulary is served from.
func (n Name) Endpoint() string {
	switch n {
	case Audiences:
		return "resource_audiences"
	case Lengths:
		return "resource_lengths"
	case Programs:
		return "resource_programs"
	default:
		return string(n)
	}
}

// Vocabulary is one taxonomy collection. No two terms share an id.
// Thread-safety: all methods are safe for concurrent use.
type Vocabulary struct {
	name  Name
	mu    sync.RWMutex
	terms []model.Term
	index map[int]int // id -> position in terms
}

// New creates an empty vocabulary.
func New(name Name) *Vocabulary {
	return &Vocabulary{
		name:  name,
		index: make(map[int]int),
	}
}

// Name returns the vocabulary name.
func (v *Vocabulary) Name() Name {
	return v.name
}

// Merge unions terms into the vocabulary by id, first seen wins.
// With replace set the existing terms are dropped first (start of a fresh
// fetch). Returns the number of terms added.
func (v *Vocabulary) Merge(terms []model.Term, replace bool) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if replace {
		v.terms = nil
	}
	var added int
	v.terms, added = model.Union(v.terms, terms)

	v.index = make(map[int]int, len(v.terms))
	for i, t := range v.terms {
		v.index[t.ID] = i
	}
	return added
}

// ByID returns the term with the given id.
func (v *Vocabulary) ByID(id int) (model.Term, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	i, ok := v.index[id]
	if !ok {
		return model.Term{}, false
	}
	return v.terms[i], true
}

// TermName returns the display name of a term, or the raw id when the term is
// not known (yet). A known term with an empty name yields "".
func (v *Vocabulary) TermName(id int) string {
	if t, ok := v.ByID(id); ok {
		return t.Name
	}
	return strconv.Itoa(id)
}

// TermSlug returns the slug of a term, or the raw id when unknown.
func (v *Vocabulary) TermSlug(id int) string {
	if t, ok := v.ByID(id); ok {
		return t.Slug
	}
	return strconv.Itoa(id)
}

// SearchByName returns the terms whose name contains query, case-insensitively,
// in vocabulary order. Never nil.
func (v *Vocabulary) SearchByName(query string) []model.Term {
	v.mu.RLock()
	defer v.mu.RUnlock()

	q := strings.ToLower(query)
	matches := make([]model.Term, 0)
	for _, t := range v.terms {
		if strings.Contains(strings.ToLower(t.Name), q) {
			matches = append(matches, t)
		}
	}
	return matches
}

// Terms returns a copy of all terms in first-seen order.
func (v *Vocabulary) Terms() []model.Term {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]model.Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.terms)
}
