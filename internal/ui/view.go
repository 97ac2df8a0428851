package ui

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/vocab"
)

// maxContentLines caps the expanded content shown under a resource.
const maxContentLines = 4

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var top []string
	top = append(top, a.renderHeader())
	if a.searchExpanded && a.features.Filters {
		top = append(top, a.renderFacets()...)
	}
	if a.searching || a.state.Search != "" {
		top = append(top, SearchBar.Width(a.width).Render(a.search.View()))
	}
	if a.err != nil {
		top = append(top, ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()))
	}

	listHeight := max(a.height-len(top)-1, 1)
	return strings.Join(top, "\n") + "\n" + a.renderList(listHeight) + a.renderStatusBar()
}

func (a App) renderHeader() string {
	title := Header.Render("Resource Catalog")
	info := fmt.Sprintf("%d resources · %s %s", len(a.resources), a.state.Sort, a.state.Direction)
	if a.cat != nil && a.cat.Filtered() {
		info += " · filtered"
	}
	if a.loading {
		info += " " + a.spinner.View()
	}
	return title + StatusBarText.Render(info)
}

func (a App) renderFacets() []string {
	var lines []string
	for i, name := range query.Facets {
		vn := catalog.FacetVocabulary(name)
		if !a.features.FilterEnabled(vn) {
			continue
		}
		lines = append(lines, FacetKey.Render(fmt.Sprintf(" %d", i+1))+
			FacetLabel.Render(fmt.Sprintf("%-9s", name))+
			FacetValue.Render(a.facetLabel(name)))
	}
	return lines
}

// renderList renders resources from a scroll offset that keeps the cursor
// visible. A resource takes one title line, an optional term line and its
// content lines when shown.
func (a App) renderList(height int) string {
	if len(a.resources) == 0 {
		switch {
		case a.loading:
			return HelpStyle.Render("Loading resources...") + "\n"
		case a.cat != nil && !a.features.InitialLoad && !a.cat.Filtered():
			return HelpStyle.Render("Choose a filter or search to list resources.") + "\n"
		default:
			return HelpStyle.Render("No resources match.") + "\n"
		}
	}

	blocks := make([][]string, len(a.resources))
	for i, r := range a.resources {
		blocks[i] = a.resourceLines(r, i == a.cursor)
	}

	offset := scrollOffset(blocks, a.cursor, height)
	var b strings.Builder
	used := 0
	for _, block := range blocks[offset:] {
		for _, line := range block {
			if used >= height {
				return b.String()
			}
			b.WriteString(line)
			b.WriteString("\n")
			used++
		}
	}
	return b.String()
}

// scrollOffset returns the first block index such that every line from
// there through the cursor's block fits in height.
func scrollOffset(blocks [][]string, cursor, height int) int {
	if cursor <= 0 || cursor >= len(blocks) {
		return 0
	}
	lines := 0
	for i := cursor; i >= 0; i-- {
		lines += len(blocks[i])
		if lines > height {
			return min(i+1, cursor)
		}
	}
	return 0
}

func (a App) resourceLines(r model.Resource, selected bool) []string {
	width := max(a.width, 20)

	title := r.Title
	if r.Protected {
		title += " " + ProtectedMarker.Render("[protected]")
	}
	title = runewidth.Truncate(title, width-4, "…")
	style := NormalItem
	if selected {
		style = SelectedItem
	}
	lines := []string{style.Render(title)}

	if terms := a.termLine(r.Taxonomies); terms != "" {
		lines = append(lines, TermBadge.Render(runewidth.Truncate(terms, width-4, "…")))
	}

	if r.Shown {
		text := "(password protected)"
		if !r.Protected {
			text = plainText(r.Content)
		}
		wrapped := strings.Split(ContentStyle.Width(width-2).Render(text), "\n")
		if len(wrapped) > maxContentLines {
			wrapped = wrapped[:maxContentLines]
		}
		lines = append(lines, wrapped...)
	}
	return lines
}

func (a App) termLine(refs model.TaxonomyRefs) string {
	if a.cat == nil {
		return ""
	}
	var parts []string
	add := func(label string, name vocab.Name, ids []int) {
		if len(ids) == 0 {
			return
		}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = a.cat.TermName(name, id)
		}
		parts = append(parts, label+": "+strings.Join(names, ", "))
	}
	add("audience", vocab.Audiences, refs.Audience)
	add("length", vocab.Lengths, refs.Length)
	add("category", vocab.Categories, refs.Category)
	add("tag", vocab.Tags, refs.Tag)
	return strings.Join(parts, " · ")
}

// plainText strips markup from rendered HTML content.
func plainText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func (a App) renderStatusBar() string {
	var left string
	switch {
	case len(a.failed) > 0:
		left = ErrorStyle.Render("failed: "+a.failedNames()) + StatusBarText.Render("R:retry")
	case a.notice != "":
		left = " opened " + runewidth.Truncate(a.notice, 40, "…") + " "
	case len(a.resources) > 0:
		left = fmt.Sprintf(" %d/%d ", a.cursor+1, len(a.resources))
	}

	hints := []string{
		StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
		StatusBarKey.Render("enter") + StatusBarText.Render(":content"),
	}
	if a.features.Search {
		hints = append(hints, StatusBarKey.Render("/")+StatusBarText.Render(":search"))
	}
	if a.features.Filters {
		hints = append(hints, StatusBarKey.Render("1-5")+StatusBarText.Render(":filter"))
	}
	hints = append(hints, StatusBarKey.Render("s/o")+StatusBarText.Render(":sort"))
	if a.features.Reset {
		hints = append(hints, StatusBarKey.Render("x")+StatusBarText.Render(":reset"))
	}
	hints = append(hints,
		StatusBarKey.Render("D")+StatusBarText.Render(":debug"),
		StatusBarKey.Render("q")+StatusBarText.Render(":quit"),
	)
	keyHints := strings.Join(hints, " ")

	padding := max(a.width-lipgloss.Width(left)-lipgloss.Width(keyHints)-2, 0)
	return StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + keyHints)
}
