// Package model defines the records the catalog works with: resources and
// taxonomy terms, plus their conversion from the WordPress REST payloads.
package model

import "time"

// Resource is one catalog entry. Unique by ID.
type Resource struct {
	ID         int
	Title      string
	Content    string
	Excerpt    string
	Protected  bool
	Taxonomies TaxonomyRefs
	Date       time.Time
	Modified   time.Time
	Parent     int
	Slug       string
	Link       string

	// Shown is client-side state: the user expanded the content.
	Shown bool
}

// TaxonomyRefs holds the term ids a resource is tagged with, per taxonomy.
type TaxonomyRefs struct {
	Audience []int
	Length   []int
	Program  []int
	Category []int
	Tag      []int
}

// Term is a single named value within a taxonomy vocabulary.
type Term struct {
	ID    int
	Name  string
	Slug  string
	Count int
	Link  string
}

// Identified is implemented by records that are unique by integer id.
type Identified interface {
	Key() int
}

// Key returns the resource id.
func (r Resource) Key() int { return r.ID }

// Key returns the term id.
func (t Term) Key() int { return t.ID }
