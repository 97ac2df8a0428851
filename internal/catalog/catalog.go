// Package catalog drives a resource catalog session: it loads the five term
// vocabularies, runs resource queries (with search expansion) against the
// remote API, and keeps the merged, sorted result current as the filter
// state changes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/catalog/internal/config"
	"github.com/abelbrown/catalog/internal/debounce"
	"github.com/abelbrown/catalog/internal/expand"
	"github.com/abelbrown/catalog/internal/logging"
	"github.com/abelbrown/catalog/internal/model"
	"github.com/abelbrown/catalog/internal/otel"
	"github.com/abelbrown/catalog/internal/query"
	"github.com/abelbrown/catalog/internal/store"
	"github.com/abelbrown/catalog/internal/vocab"
	"github.com/abelbrown/catalog/internal/wp"
)

// ResourceRoute is the API route listing resources.
const ResourceRoute = "resource"

// maxChains bounds concurrent pagination chains per cycle: the base query
// plus one tag and one category expansion.
const maxChains = 3

var facetVocab = map[query.FacetName]vocab.Name{
	query.FacetAudience: vocab.Audiences,
	query.FacetLength:   vocab.Lengths,
	query.FacetProgram:  vocab.Programs,
	query.FacetCategory: vocab.Categories,
	query.FacetTag:      vocab.Tags,
}

// FacetVocabulary returns the vocabulary a facet selects from.
func FacetVocabulary(name query.FacetName) vocab.Name {
	return facetVocab[name]
}

// Option configures a Client.
type Option func(*Client)

// WithEvents sends fetch and expansion events to l.
func WithEvents(l *otel.Logger) Option {
	return func(c *Client) { c.events = l }
}

// WithTracker replaces the outbound link tracker.
func WithTracker(t Tracker) Option {
	return func(c *Client) { c.tracker = t }
}

// Client is one catalog session. Safe for concurrent use.
//
// Every query cycle gets a generation number. Changing the filter state or
// starting a fetch bumps the generation, and results from chains of an
// older generation are discarded, so a slow chain can never overwrite a
// newer query's result.
type Client struct {
	cfg       *config.Config
	api       *wp.Client
	store     *store.Store
	vocabs    map[vocab.Name]*vocab.Vocabulary
	debouncer *debounce.Debouncer
	events    *otel.Logger
	tracker   Tracker

	mu         sync.Mutex
	ctx        context.Context
	state      query.State
	generation uint64
	statuses   map[Collection]Status
	subs       map[int]func(Change)
	nextSub    int
}

// New creates a client for api using the options in cfg. Nothing is
// fetched until Start or an explicit fetch.
func New(cfg *config.Config, api *wp.Client, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		api:       api,
		store:     store.New(),
		vocabs:    make(map[vocab.Name]*vocab.Vocabulary, len(vocab.All)),
		debouncer: debounce.New(cfg.Debounce),
		ctx:       context.Background(),
		state:     query.NewState(cfg.OrderBy, cfg.Order),
		statuses:  make(map[Collection]Status),
		subs:      make(map[int]func(Change)),
	}
	for _, name := range vocab.All {
		c.vocabs[name] = vocab.New(name)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracker == nil {
		c.tracker = EventTracker{Events: c.events}
	}
	return c
}

// Start loads every vocabulary and, when the initial load is enabled, the
// unfiltered resource list. All collections load concurrently. ctx also
// bounds the fetches that later state changes schedule.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	jobs := make([]func() error, 0, len(vocab.All)+1)
	for _, name := range vocab.All {
		jobs = append(jobs, func() error { return c.LoadVocabulary(ctx, name) })
	}
	if c.cfg.Features.InitialLoad {
		jobs = append(jobs, func() error { return c.FetchResources(ctx) })
	}
	return runAll(jobs, 0)
}

// Close cancels any pending debounced fetch.
func (c *Client) Close() {
	c.debouncer.Stop()
}

// runAll runs every job, at most limit at once (0 = unlimited), and joins
// their errors.
func runAll(jobs []func() error, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			errs[i] = job()
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// LoadVocabulary fetches every page of one vocabulary. Page 1 replaces the
// cached terms, later pages merge by id.
func (c *Client) LoadVocabulary(ctx context.Context, name vocab.Name) error {
	v, ok := c.vocabs[name]
	if !ok {
		return fmt.Errorf("unknown vocabulary %q", name)
	}
	coll := VocabCollection(name)
	c.setStatus(coll, Status{Phase: Loading, Fetched: c.Status(coll).Fetched})

	chain := otel.NewChainID()
	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "catalog", Chain: chain, Route: name.Endpoint()})

	res, err := wp.FetchAll(ctx, c.api, name.Endpoint(), url.Values{}, func(page int, terms []model.Term) bool {
		added := v.Merge(terms, page == 1)
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchPage, Comp: "catalog", Chain: chain, Route: name.Endpoint(), Page: page, Count: added})
		c.notify(Change{Collection: coll, Status: c.Status(coll)})
		return true
	})
	if err != nil {
		c.failed(coll, chain, 0, err)
		return err
	}

	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "catalog", Chain: chain, Route: name.Endpoint(), Page: res.Pages, Count: v.Len(), Dur: time.Since(start)})
	logging.Debug("Vocabulary loaded", "vocabulary", name, "terms", v.Len(), "pages", res.Pages)
	c.setStatus(coll, Status{Phase: Loaded, Fetched: true})
	return nil
}

// FetchResources runs one resource query cycle for the current state: the
// base query plus, when searching, a widened query per taxonomy whose
// cached terms match the search text. Chains run concurrently and merge by
// id; the collection is re-sorted as each chain finishes. Pages that arrive
// after a newer cycle started are dropped.
func (c *Client) FetchResources(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	state := c.state
	c.store.Advance(gen)
	c.mu.Unlock()

	c.setResourceStatus(gen, Status{Phase: Loading, Fetched: c.Status(Resources).Fetched})

	base := query.Build(state)
	jobs := []func() error{
		func() error { return c.runChain(ctx, gen, state, base) },
	}

	exp := expand.Expand(state.Search, c.vocabs[vocab.Categories], c.vocabs[vocab.Tags], state)
	for _, w := range exp.Queries(base) {
		kind := otel.KindExpandTags
		if w.Taxonomy == query.ParamCategories {
			kind = otel.KindExpandCategories
		}
		c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: kind, Comp: "catalog", Generation: gen, Query: state.Search, Msg: w.Params.Get(w.Taxonomy)})
		jobs = append(jobs, func() error { return c.runChain(ctx, gen, state, w.Params) })
	}

	err := runAll(jobs, maxChains)

	if !c.current(gen) {
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStale, Comp: "catalog", Generation: gen})
		return err
	}
	if err != nil {
		// Nothing of this cycle arrived; the previous query's list no
		// longer matches the state.
		if !c.store.Holds(gen) {
			c.store.Clear(gen)
		}
		logging.Warn("Resource fetch failed", "generation", gen, "err", err)
		c.setResourceStatus(gen, Status{Phase: Failed, Fetched: c.Status(Resources).Fetched, Err: err})
		return err
	}
	c.setResourceStatus(gen, Status{Phase: Loaded, Fetched: true})
	return nil
}

// runChain walks one resource query and merges each page into the store
// under generation gen.
func (c *Client) runChain(ctx context.Context, gen uint64, state query.State, params url.Values) error {
	chain := otel.NewChainID()
	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "catalog", Chain: chain, Generation: gen, Route: ResourceRoute, Query: params.Encode()})

	res, err := wp.FetchAll(ctx, c.api, ResourceRoute, params, func(page int, resources []model.Resource) bool {
		added, ok := c.store.Merge(gen, resources)
		if !ok {
			c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStale, Comp: "catalog", Chain: chain, Generation: gen, Page: page})
			return false
		}
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchPage, Comp: "catalog", Chain: chain, Generation: gen, Route: ResourceRoute, Page: page, Count: added})
		c.notify(Change{Collection: Resources, Status: c.Status(Resources), Generation: gen})
		return true
	})

	// Sort whatever arrived, including the pages before a failure.
	if !res.Stopped && c.store.Sort(gen, state.Sort, state.Direction) {
		c.notify(Change{Collection: Resources, Status: c.Status(Resources), Generation: gen})
	}
	if err != nil {
		c.failed(Resources, chain, gen, err)
		return err
	}
	if !res.Stopped {
		c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "catalog", Chain: chain, Generation: gen, Route: ResourceRoute, Page: res.Pages, Count: res.Records, Dur: time.Since(start)})
	}
	return nil
}

func (c *Client) failed(coll Collection, chain string, gen uint64, err error) {
	c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Comp: "catalog", Chain: chain, Generation: gen, Route: string(coll), Err: err.Error()})
	if coll != Resources {
		logging.Warn("Vocabulary fetch failed", "vocabulary", coll, "err", err)
		c.setStatus(coll, Status{Phase: Failed, Fetched: c.Status(coll).Fetched, Err: err})
	}
}

// Retry refetches one collection.
func (c *Client) Retry(ctx context.Context, coll Collection) error {
	if coll == Resources {
		return c.FetchResources(ctx)
	}
	return c.LoadVocabulary(ctx, vocab.Name(coll))
}

// RetryFailed refetches every collection whose last fetch failed.
func (c *Client) RetryFailed(ctx context.Context) error {
	var jobs []func() error
	for _, coll := range Collections() {
		if c.Status(coll).Phase == Failed {
			jobs = append(jobs, func() error { return c.Retry(ctx, coll) })
		}
	}
	return runAll(jobs, 0)
}

// SetFacet selects a facet value and schedules a debounced fetch.
func (c *Client) SetFacet(name query.FacetName, value query.Facet) {
	c.update(func(s *query.State) { s.SetFacet(name, value) })
}

// SetSearch replaces the search text and schedules a debounced fetch.
func (c *Client) SetSearch(text string) {
	c.update(func(s *query.State) { s.Search = text })
}

// SetSort changes the ordering and schedules a debounced fetch.
func (c *Client) SetSort(key query.SortKey, dir query.Direction) {
	c.update(func(s *query.State) {
		s.Sort = key
		s.Direction = dir
	})
}

func (c *Client) update(mutate func(*query.State)) {
	c.mu.Lock()
	mutate(&c.state)
	c.generation++
	c.store.Advance(c.generation)
	c.mu.Unlock()
	c.scheduleFetch()
}

func (c *Client) scheduleFetch() {
	c.debouncer.Schedule(func() {
		c.mu.Lock()
		ctx, gen := c.ctx, c.generation
		c.mu.Unlock()
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDebounceFire, Comp: "catalog", Generation: gen})
		_ = c.FetchResources(ctx)
	})
}

// Reset clears every facet and the search. With the initial load enabled
// the unfiltered list is fetched again; otherwise the list is emptied and
// nothing is fetched.
func (c *Client) Reset(ctx context.Context) error {
	c.debouncer.Stop()

	c.mu.Lock()
	c.state.Reset()
	c.generation++
	gen := c.generation
	c.store.Advance(gen)
	c.mu.Unlock()
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindReset, Comp: "catalog", Generation: gen})

	if c.cfg.Features.InitialLoad {
		return c.FetchResources(ctx)
	}
	c.store.Clear(gen)
	c.setResourceStatus(gen, Status{Phase: Idle})
	return nil
}

// State returns the current filter state.
func (c *Client) State() query.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Filtered reports whether a facet or the search narrows the list.
func (c *Client) Filtered() bool {
	return query.IsFiltered(c.State())
}

// Resources returns the current resource list in display order.
func (c *Client) Resources() []model.Resource {
	return c.store.Resources()
}

// Count returns the number of resources in the list.
func (c *Client) Count() int {
	return c.store.Len()
}

// Status returns the fetch status of a collection.
func (c *Client) Status(coll Collection) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[coll]
}

// Loading reports whether any collection is being fetched.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, st := range c.statuses {
		if st.Phase == Loading {
			return true
		}
	}
	return false
}

// Vocabulary returns the cached terms of one vocabulary.
func (c *Client) Vocabulary(name vocab.Name) []model.Term {
	if v, ok := c.vocabs[name]; ok {
		return v.Terms()
	}
	return nil
}

// TermName returns the display name of term id, or the id itself when the
// term is not cached.
func (c *Client) TermName(name vocab.Name, id int) string {
	if v, ok := c.vocabs[name]; ok {
		return v.TermName(id)
	}
	return fmt.Sprint(id)
}

// TermSlug returns the slug of term id, or the id itself when the term is
// not cached.
func (c *Client) TermSlug(name vocab.Name, id int) string {
	if v, ok := c.vocabs[name]; ok {
		return v.TermSlug(id)
	}
	return fmt.Sprint(id)
}

// ToggleContent marks a resource's content as shown. It runs on the caller's
// goroutine and does not notify subscribers; the caller re-reads the list.
func (c *Client) ToggleContent(id int) bool {
	return c.store.MarkShown(id)
}

// ContentProtected reports whether a resource's content is password
// protected.
func (c *Client) ContentProtected(id int) bool {
	r, ok := c.store.Get(id)
	return ok && r.Protected
}

// CaptureOutboundLink reports an activated link to the tracker when
// outbound analytics are enabled. It always returns true so navigation
// proceeds; tracker errors are only logged.
func (c *Client) CaptureOutboundLink(ctx context.Context, link string) bool {
	if !c.cfg.Features.OutboundAnalytics {
		return true
	}
	if err := c.tracker.TrackOutbound(ctx, link); err != nil {
		logging.Warn("Outbound tracking failed", "link", link, "err", err)
	}
	return true
}

// Subscribe registers fn for every Change. fn runs on the fetching
// goroutine and must not block. The returned func unsubscribes.
func (c *Client) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) notify(ch Change) {
	c.mu.Lock()
	subs := make([]func(Change), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ch)
	}
}

func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Client) setStatus(coll Collection, st Status) {
	c.mu.Lock()
	c.statuses[coll] = st
	c.mu.Unlock()
	c.notify(Change{Collection: coll, Status: st})
}

// setResourceStatus writes the resource status only if gen is current.
func (c *Client) setResourceStatus(gen uint64, st Status) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.statuses[Resources] = st
	c.mu.Unlock()
	c.notify(Change{Collection: Resources, Status: st, Generation: gen})
}
