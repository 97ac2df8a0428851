// Package sorter orders resources by one of the API sort keys.
package sorter

import (
	"cmp"
	"sort"
	"strings"

	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/query"
)

// Sort orders resources in place by key and direction. The sort is stable:
// resources with equal keys keep their relative order in either direction.
// Titles compare lower-cased, byte-wise. Unknown keys leave the order as is.
func Sort(resources []model.Resource, key query.SortKey, dir query.Direction) {
	compare := compareFunc(key)
	if compare == nil {
		return
	}
	desc := dir == query.Desc
	sort.SliceStable(resources, func(i, j int) bool {
		c := compare(resources[i], resources[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareFunc(key query.SortKey) func(a, b model.Resource) int {
	switch key {
	case query.SortTitle:
		return func(a, b model.Resource) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case query.SortSlug:
		return func(a, b model.Resource) int {
			return strings.Compare(a.Slug, b.Slug)
		}
	case query.SortID:
		return func(a, b model.Resource) int {
			return cmp.Compare(a.ID, b.ID)
		}
	case query.SortParent:
		return func(a, b model.Resource) int {
			return cmp.Compare(a.Parent, b.Parent)
		}
	case query.SortDate:
		return func(a, b model.Resource) int {
			return a.Date.Compare(b.Date)
		}
	case query.SortModified:
		return func(a, b model.Resource) int {
			return a.Modified.Compare(b.Modified)
		}
	}
	return nil
}
