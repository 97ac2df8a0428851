package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestResourceUnmarshal(t *testing.T) {
	payload := `{
		"id": 42,
		"date": "2024-03-01T09:30:00",
		"modified": "2024-03-02T10:00:00",
		"slug": "intro-to-grants",
		"link": "https://example.org/resource/intro-to-grants/",
		"parent": 7,
		"title": {"rendered": "Intro to Grants &amp; Funding"},
		"content": {"rendered": "<p>Body</p>", "protected": true},
		"excerpt": {"rendered": "<p>Short</p>"},
		"resource_audiences": [1, 2],
		"resource_lengths": [3],
		"resource_programs": [],
		"categories": [10],
		"tags": [20, 21]
	}`

	var r Resource
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := Resource{
		ID:        42,
		Title:     "Intro to Grants & Funding",
		Content:   "<p>Body</p>",
		Excerpt:   "<p>Short</p>",
		Protected: true,
		Taxonomies: TaxonomyRefs{
			Audience: []int{1, 2},
			Length:   []int{3},
			Program:  []int{},
			Category: []int{10},
			Tag:      []int{20, 21},
		},
		Date:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Modified: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Parent:   7,
		Slug:     "intro-to-grants",
		Link:     "https://example.org/resource/intro-to-grants/",
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Resource mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceUnmarshalBadTimestamp(t *testing.T) {
	var r Resource
	if err := json.Unmarshal([]byte(`{"id": 1, "modified": "yesterday"}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !r.Modified.IsZero() {
		t.Errorf("expected zero Modified for bad timestamp, got %v", r.Modified)
	}
}

func TestResourceSliceUnmarshal(t *testing.T) {
	var rs []Resource
	if err := json.Unmarshal([]byte(`[{"id": 1}, {"id": 2}]`), &rs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(rs) != 2 || rs[0].ID != 1 || rs[1].ID != 2 {
		t.Errorf("unexpected resources: %+v", rs)
	}
}

func TestTermUnmarshal(t *testing.T) {
	var term Term
	if err := json.Unmarshal([]byte(`{"id": 5, "name": "Tips &amp; Tricks", "slug": "tips", "count": 3}`), &term); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := Term{ID: 5, Name: "Tips & Tricks", Slug: "tips", Count: 3}
	if diff := cmp.Diff(want, term); diff != "" {
		t.Errorf("Term mismatch (-want +got):\n%s", diff)
	}
}

func TestKey(t *testing.T) {
	var ids []Identified = []Identified{Resource{ID: 3}, Term{ID: 9}}
	if ids[0].Key() != 3 || ids[1].Key() != 9 {
		t.Errorf("Key() = %d, %d; want 3, 9", ids[0].Key(), ids[1].Key())
	}
}
