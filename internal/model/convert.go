package model

import (
	"encoding/json"
	"html"
	"strings"
	"time"
)

// wpTimeLayout is the site-local timestamp format WordPress uses for
// "date" and "modified" (no zone).
const wpTimeLayout = "2006-01-02T15:04:05"

// rendered is the {"rendered": "..."} wrapper WordPress puts around text fields.
type rendered struct {
	Rendered  string `json:"rendered"`
	Protected bool   `json:"protected"`
}

// wpResource is the wire shape of /wp/v2/resource records.
type wpResource struct {
	ID        int      `json:"id"`
	Date      string   `json:"date"`
	Modified  string   `json:"modified"`
	Slug      string   `json:"slug"`
	Link      string   `json:"link"`
	Parent    int      `json:"parent"`
	Title     rendered `json:"title"`
	Content   rendered `json:"content"`
	Excerpt   rendered `json:"excerpt"`
	Audiences []int    `json:"resource_audiences"`
	Lengths   []int    `json:"resource_lengths"`
	Programs  []int    `json:"resource_programs"`
	Category  []int    `json:"categories"`
	Tags      []int    `json:"tags"`
}

// wpTerm is the wire shape of taxonomy term records.
type wpTerm struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
	Link  string `json:"link"`
}

// UnmarshalJSON decodes a WordPress resource payload.
// Unparseable timestamps are left zero rather than failing the page.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var w wpResource
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Resource{
		ID:        w.ID,
		Title:     html.UnescapeString(w.Title.Rendered),
		Content:   w.Content.Rendered,
		Excerpt:   w.Excerpt.Rendered,
		Protected: w.Content.Protected,
		Taxonomies: TaxonomyRefs{
			Audience: w.Audiences,
			Length:   w.Lengths,
			Program:  w.Programs,
			Category: w.Category,
			Tag:      w.Tags,
		},
		Date:     parseTime(w.Date),
		Modified: parseTime(w.Modified),
		Parent:   w.Parent,
		Slug:     w.Slug,
		Link:     w.Link,
	}
	return nil
}

// UnmarshalJSON decodes a WordPress term payload. Term names arrive HTML
// escaped ("Tips &amp; Tricks").
func (t *Term) UnmarshalJSON(data []byte) error {
	var w wpTerm
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Term{
		ID:    w.ID,
		Name:  html.UnescapeString(w.Name),
		Slug:  w.Slug,
		Count: w.Count,
		Link:  w.Link,
	}
	return nil
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(wpTimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
