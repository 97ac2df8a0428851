// Package store holds the in-memory resource collection for a catalog
// session.
package store

import (
	"sync"

	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/sorter"
)

// Store owns the deduplicated, sorted resource list. NOT an interface -
// concrete type.
//
// Every write carries the generation of the query cycle that produced it.
// The first write of a newer generation replaces the contents wholesale,
// writes of the current generation merge by id, and writes of an older
// generation are discarded. The check and the write happen under one lock.
//
// Advance raises the accepted generation without touching the contents, so
// the previous list stays visible while its replacement is pending and any
// chain older than the new generation is already shut out.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	mu         sync.RWMutex
	resources  []model.Resource
	generation uint64 // oldest generation still accepted
	contents   uint64 // generation the resources belong to
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Merge applies one fetched page for generation gen. Returns the number of
// resources added and false when the page was stale and dropped.
func (s *Store) Merge(gen uint64, page []model.Resource) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.generation {
		return 0, false
	}
	s.generation = gen
	if gen != s.contents {
		s.contents = gen
		s.resources = nil
	}

	var added int
	s.resources, added = model.Union(s.resources, page)
	return added, true
}

// Sort orders the collection if gen is still current. Returns false when
// the request was stale.
func (s *Store) Sort(gen uint64, key query.SortKey, dir query.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	sorter.Sort(s.resources, key, dir)
	return true
}

// Clear empties the store on behalf of generation gen. Older generations
// cannot clear a newer collection.
func (s *Store) Clear(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.generation {
		return false
	}
	s.generation = gen
	s.contents = gen
	s.resources = nil
	return true
}

// Advance stops accepting writes older than gen. The contents are kept
// until gen writes or clears. Lower generations are ignored.
func (s *Store) Advance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen > s.generation {
		s.generation = gen
	}
}

// Generation returns the oldest generation the store still accepts.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Holds reports whether the contents were written by generation gen.
func (s *Store) Holds(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contents == gen
}

// Resources returns a copy of the collection in display order.
func (s *Store) Resources() []model.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Get returns the resource with the given id.
func (s *Store) Get(id int) (model.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.resources {
		if r.ID == id {
			return r, true
		}
	}
	return model.Resource{}, false
}

// Len returns the number of resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// MarkShown flags a resource's content as expanded. Returns false when the
// resource is not in the collection.
func (s *Store) MarkShown(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.resources {
		if s.resources[i].ID == id {
			s.resources[i].Shown = true
			return true
		}
	}
	return false
}
