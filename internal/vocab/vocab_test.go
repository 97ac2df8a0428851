package vocab

import (
	"sync"
	"testing"

	"github.com/abelbrown/catalog/internal/model"
	"github.com/google/go-cmp/cmp"
)

func sampleTags() *Vocabulary {
	v := New(Tags)
	v.Merge([]model.Term{
		{ID: 1, Name: "Grant Writing", Slug: "grant-writing"},
		{ID: 2, Name: "Fundraising", Slug: "fundraising"},
		{ID: 3, Name: "Board Governance", Slug: "board"},
	}, true)
	return v
}

func termIDs(terms []model.Term) []int {
	out := make([]int, len(terms))
	for i, t := range terms {
		out[i] = t.ID
	}
	return out
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name Name
		want string
	}{
		{Audiences, "resource_audiences"},
		{Lengths, "resource_lengths"},
		{Programs, "resource_programs"},
		{Categories, "categories"},
		{Tags, "tags"},
	}
	for _, tc := range tests {
		if got := tc.name.Endpoint(); got != tc.want {
			t.Errorf("%s.Endpoint() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestByIDAndFallback(t *testing.T) {
	v := sampleTags()

	if got := v.TermName(2); got != "Fundraising" {
		t.Errorf("TermName(2) = %q, want %q", got, "Fundraising")
	}
	if got := v.TermSlug(3); got != "board" {
		t.Errorf("TermSlug(3) = %q, want %q", got, "board")
	}
	if got := v.TermName(99); got != "99" {
		t.Errorf("TermName(99) = %q, want raw id %q", got, "99")
	}
	if got := v.TermSlug(99); got != "99" {
		t.Errorf("TermSlug(99) = %q, want raw id %q", got, "99")
	}
	if _, ok := v.ByID(99); ok {
		t.Error("ByID(99) should report not found")
	}
}

func TestEmptyNameOfKnownTerm(t *testing.T) {
	v := New(Tags)
	v.Merge([]model.Term{{ID: 7}}, true)

	if got := v.TermName(7); got != "" {
		t.Errorf("TermName(7) = %q, want empty name of known term", got)
	}
	if got := v.TermSlug(7); got != "" {
		t.Errorf("TermSlug(7) = %q, want empty slug of known term", got)
	}
}

func TestSearchByName(t *testing.T) {
	v := sampleTags()

	tests := []struct {
		query string
		want  []int
	}{
		{"grant", []int{1}},
		{"GRANT", []int{1}},
		{"in", []int{1, 2}},
		{"a", []int{1, 2, 3}},
		{"nothing", []int{}},
	}
	for _, tc := range tests {
		got := termIDs(v.SearchByName(tc.query))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("SearchByName(%q) mismatch (-want +got):\n%s", tc.query, diff)
		}
	}
}

func TestSearchByNameEmptyVocabulary(t *testing.T) {
	got := New(Categories).SearchByName("x")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMergeUnionAndReplace(t *testing.T) {
	v := sampleTags()

	added := v.Merge([]model.Term{{ID: 3, Name: "dup"}, {ID: 4, Name: "Volunteers"}}, false)
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, termIDs(v.Terms())); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if got := v.TermName(3); got != "Board Governance" {
		t.Errorf("first-seen term should win, got %q", got)
	}

	v.Merge([]model.Term{{ID: 9, Name: "Fresh"}}, true)
	if v.Len() != 1 {
		t.Errorf("Len after replace = %d, want 1", v.Len())
	}
	if got := v.TermName(1); got != "1" {
		t.Errorf("replaced term still resolvable: %q", got)
	}
}

func TestConcurrentMergeAndSearch(t *testing.T) {
	v := New(Tags)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			v.Merge([]model.Term{{ID: i, Name: "term"}}, false)
		}(i)
		go func() {
			defer wg.Done()
			_ = v.SearchByName("term")
		}()
	}
	wg.Wait()

	if v.Len() != 10 {
		t.Errorf("Len = %d, want 10", v.Len())
	}
}
