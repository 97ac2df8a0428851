package store

import (
	"sync"
	"testing"

	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/google/go-cmp/cmp"
)

func page(ids ...int) []model.Resource {
	rs := make([]model.Resource, len(ids))
	for i, id := range ids {
		rs[i] = model.Resource{ID: id}
	}
	return rs
}

func span(from, to int) []model.Resource {
	var ids []int
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return page(ids...)
}

func storeIDs(s *Store) []int {
	rs := s.Resources()
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestMergeSameGenerationUnions(t *testing.T) {
	s := New()
	s.Merge(1, span(1, 50))
	s.Merge(1, span(48, 97))
	s.Merge(1, span(98, 120))

	if s.Len() != 120 {
		t.Fatalf("Len = %d, want 120", s.Len())
	}
	got := storeIDs(s)
	for i, id := range got {
		if id != i+1 {
			t.Fatalf("position %d has id %d, want first-seen order", i, id)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	s := New()
	s.Merge(1, page(1, 2, 3))
	added, ok := s.Merge(1, page(1, 2, 3))

	if !ok || added != 0 {
		t.Errorf("Merge = (%d, %v), want (0, true)", added, ok)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestMergeNewGenerationReplaces(t *testing.T) {
	s := New()
	s.Merge(1, page(1, 2, 3))
	s.Merge(2, page(7))

	if diff := cmp.Diff([]int{7}, storeIDs(s)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if s.Generation() != 2 {
		t.Errorf("Generation = %d, want 2", s.Generation())
	}
}

func TestMergeStaleDiscarded(t *testing.T) {
	s := New()
	s.Merge(3, page(1))

	added, ok := s.Merge(2, page(5, 6))
	if ok || added != 0 {
		t.Errorf("stale Merge = (%d, %v), want (0, false)", added, ok)
	}
	if diff := cmp.Diff([]int{1}, storeIDs(s)); diff != "" {
		t.Errorf("stale page leaked into store (-want +got):\n%s", diff)
	}
}

func TestSortGenerationCheck(t *testing.T) {
	s := New()
	s.Merge(1, []model.Resource{{ID: 1, Title: "b"}, {ID: 2, Title: "A"}})

	if s.Sort(0, query.SortTitle, query.Asc) {
		t.Error("stale Sort should report false")
	}
	if diff := cmp.Diff([]int{1, 2}, storeIDs(s)); diff != "" {
		t.Errorf("stale Sort reordered store (-want +got):\n%s", diff)
	}

	if !s.Sort(1, query.SortTitle, query.Asc) {
		t.Error("current Sort should report true")
	}
	if diff := cmp.Diff([]int{2, 1}, storeIDs(s)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.Merge(2, page(1, 2))

	if s.Clear(1) {
		t.Error("older generation should not clear")
	}
	if !s.Clear(3) {
		t.Error("newer generation should clear")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", s.Len())
	}
	if _, ok := s.Merge(2, page(9)); ok {
		t.Error("merge older than the clear should be discarded")
	}
}

func TestAdvanceKeepsContentsAndShutsOutOlder(t *testing.T) {
	s := New()
	s.Merge(1, page(1, 2, 3))
	s.Advance(2)

	if diff := cmp.Diff([]int{1, 2, 3}, storeIDs(s)); diff != "" {
		t.Errorf("Advance touched contents (-want +got):\n%s", diff)
	}
	if !s.Holds(1) || s.Holds(2) {
		t.Error("contents should still belong to generation 1")
	}
	if _, ok := s.Merge(1, page(4)); ok {
		t.Error("merge older than the advanced generation should be discarded")
	}
	if s.Sort(1, query.SortID, query.Desc) {
		t.Error("sort older than the advanced generation should be discarded")
	}

	added, ok := s.Merge(2, page(9))
	if !ok || added != 1 {
		t.Errorf("Merge = (%d, %v), want (1, true)", added, ok)
	}
	if diff := cmp.Diff([]int{9}, storeIDs(s)); diff != "" {
		t.Errorf("first write of generation 2 should replace (-want +got):\n%s", diff)
	}
	if !s.Holds(2) {
		t.Error("contents should belong to generation 2")
	}

	s.Advance(1)
	if s.Generation() != 2 {
		t.Errorf("Advance moved backwards to %d", s.Generation())
	}
}

func TestMarkShownAndGet(t *testing.T) {
	s := New()
	s.Merge(1, page(1, 2))

	if !s.MarkShown(2) {
		t.Fatal("MarkShown(2) should succeed")
	}
	if s.MarkShown(9) {
		t.Error("MarkShown(9) should fail for unknown id")
	}
	r, ok := s.Get(2)
	if !ok || !r.Shown {
		t.Errorf("Get(2) = %+v, %v; want shown", r, ok)
	}
	if _, ok := s.Get(9); ok {
		t.Error("Get(9) should report not found")
	}
}

func TestResourcesIsCopy(t *testing.T) {
	s := New()
	s.Merge(1, page(1))

	rs := s.Resources()
	rs[0].ID = 99

	if diff := cmp.Diff([]int{1}, storeIDs(s)); diff != "" {
		t.Errorf("caller mutated store (-want +got):\n%s", diff)
	}
}

func TestConcurrentChainsCommutative(t *testing.T) {
	pages := [][]model.Resource{span(1, 30), span(20, 60), span(55, 80), span(1, 10)}

	s := New()
	var wg sync.WaitGroup
	for _, p := range pages {
		wg.Add(1)
		go func(p []model.Resource) {
			defer wg.Done()
			s.Merge(1, p)
		}(p)
	}
	wg.Wait()
	s.Sort(1, query.SortID, query.Asc)

	got := storeIDs(s)
	if len(got) != 80 {
		t.Fatalf("Len = %d, want 80", len(got))
	}
	for i, id := range got {
		if id != i+1 {
			t.Fatalf("position %d has id %d after sort", i, id)
		}
	}
}
