package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/config"
	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/otel"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/vocab"
)

// Catalog is the part of *catalog.Client the App drives.
type Catalog interface {
	Resources() []model.Resource
	State() query.State
	Status(catalog.Collection) catalog.Status
	Loading() bool
	Filtered() bool
	Vocabulary(vocab.Name) []model.Term
	TermName(vocab.Name, int) string

	SetFacet(query.FacetName, query.Facet)
	SetSearch(string)
	SetSort(query.SortKey, query.Direction)
	Reset(context.Context) error
	RetryFailed(context.Context) error
	ToggleContent(id int) bool
	CaptureOutboundLink(ctx context.Context, link string) bool
}

// AppConfig holds the App's collaborators.
type AppConfig struct {
	Catalog        Catalog
	Features       config.Features
	SearchExpanded bool
	Ring           *otel.RingBuffer // debug overlay source, may be nil
	Context        context.Context
}

// App is the root Bubble Tea model.
// App does NOT own the resource list. It re-reads a snapshot from the
// catalog when a CatalogChanged message arrives.
type App struct {
	cat      Catalog
	ctx      context.Context
	features config.Features
	ring     *otel.RingBuffer

	resources []model.Resource
	state     query.State
	loading   bool
	failed    []catalog.Collection

	cursor         int
	search         textinput.Model
	searching      bool
	searchExpanded bool
	debugVisible   bool
	spinner        spinner.Model
	notice         string
	err            error
	width          int
	height         int
	ready          bool
}

// NewApp creates an App over cfg.Catalog.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search resources"
	ti.CharLimit = 200

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	a := App{
		cat:            cfg.Catalog,
		ctx:            ctx,
		features:       cfg.Features,
		ring:           cfg.Ring,
		search:         ti,
		searchExpanded: cfg.SearchExpanded,
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	a.refresh()
	return a
}

// Init starts the spinner.
func (a App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case CatalogChanged:
		a.refresh()
		return a, nil

	case ActionDone:
		a.err = msg.Err
		a.refresh()
		return a, nil

	case OutboundCaptured:
		a.notice = msg.Link
		return a, nil
	}

	return a, nil
}

// refresh re-reads the catalog snapshot.
func (a *App) refresh() {
	if a.cat == nil {
		return
	}
	a.resources = a.cat.Resources()
	a.state = a.cat.State()
	a.loading = a.cat.Loading()

	a.failed = nil
	for _, coll := range catalog.Collections() {
		if a.cat.Status(coll).Phase == catalog.Failed {
			a.failed = append(a.failed, coll)
		}
	}

	if !a.searching && a.search.Value() != a.state.Search {
		a.search.SetValue(a.state.Search)
	}
	if a.cursor >= len(a.resources) {
		a.cursor = max(len(a.resources)-1, 0)
	}
}

// handleSearchKey routes keys to the search input while it has focus.
// Every edit updates the catalog's search; the catalog debounces.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if v := a.search.Value(); v != before {
		a.state.Search = v
		a.cat.SetSearch(v)
	}
	return a, cmd
}

// handleKeyMsg processes keyboard input outside the search box.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.err = nil
	a.notice = ""
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(a.resources)-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(a.resources) > 0 {
			a.cursor = len(a.resources) - 1
		}
		return a, nil

	case "D":
		a.debugVisible = !a.debugVisible
		return a, nil
	}

	if a.cat == nil {
		return a, nil
	}

	switch key {
	case "/":
		if !a.features.Search {
			return a, nil
		}
		a.searching = true
		return a, a.search.Focus()

	case "1", "2", "3", "4", "5":
		name := query.Facets[key[0]-'1']
		vn := catalog.FacetVocabulary(name)
		if !a.features.FilterEnabled(vn) {
			return a, nil
		}
		next := nextFacet(a.state.Facet(name), a.cat.Vocabulary(vn))
		a.state.SetFacet(name, next)
		a.cat.SetFacet(name, next)
		return a, nil

	case "s":
		a.state.Sort = nextSortKey(a.state.Sort)
		a.cat.SetSort(a.state.Sort, a.state.Direction)
		return a, nil

	case "o":
		a.state.Direction = a.state.Direction.Toggle()
		a.cat.SetSort(a.state.Sort, a.state.Direction)
		return a, nil

	case "e":
		if a.features.SearchExpandButton {
			a.searchExpanded = !a.searchExpanded
		}
		return a, nil

	case "x":
		if !a.features.Reset {
			return a, nil
		}
		a.search.SetValue("")
		a.state.Reset()
		return a, a.action("reset", a.cat.Reset)

	case "R":
		if len(a.failed) == 0 {
			return a, nil
		}
		return a, a.action("retry", a.cat.RetryFailed)

	case "enter":
		if r, ok := a.selected(); ok && a.cat.ToggleContent(r.ID) {
			a.refresh()
		}
		return a, nil

	case "L":
		r, ok := a.selected()
		if !ok || r.Link == "" {
			return a, nil
		}
		cat, ctx := a.cat, a.ctx
		return a, func() tea.Msg {
			cat.CaptureOutboundLink(ctx, r.Link)
			return OutboundCaptured{Link: r.Link}
		}
	}

	return a, nil
}

// action wraps a blocking catalog call in a command.
func (a App) action(name string, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return ActionDone{Action: name, Err: fn(ctx)}
	}
}

func (a App) selected() (model.Resource, bool) {
	if a.cursor < 0 || a.cursor >= len(a.resources) {
		return model.Resource{}, false
	}
	return a.resources[a.cursor], true
}

// nextFacet cycles all -> first term -> ... -> last term -> all.
func nextFacet(current query.Facet, terms []model.Term) query.Facet {
	if len(terms) == 0 {
		return query.All
	}
	if current.IsAll() {
		return query.FacetOf(terms[0].ID)
	}
	for i, t := range terms {
		if t.ID == current.ID() {
			if i+1 < len(terms) {
				return query.FacetOf(terms[i+1].ID)
			}
			return query.All
		}
	}
	return query.All
}

func nextSortKey(current query.SortKey) query.SortKey {
	for i, k := range query.SortKeys {
		if k == current {
			return query.SortKeys[(i+1)%len(query.SortKeys)]
		}
	}
	return query.DefaultSortKey
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Resources returns the displayed resources (for testing).
func (a App) Resources() []model.Resource {
	return a.resources
}

// facetLabel names the current value of a facet for display.
func (a App) facetLabel(name query.FacetName) string {
	f := a.state.Facet(name)
	if f.IsAll() {
		return "All"
	}
	if a.cat == nil {
		return string(f)
	}
	return a.cat.TermName(catalog.FacetVocabulary(name), f.ID())
}

func (a App) failedNames() string {
	names := make([]string, len(a.failed))
	for i, c := range a.failed {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
