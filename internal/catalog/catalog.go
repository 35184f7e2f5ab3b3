// Package catalog is the externally observable article collection: it
// composes the fetch results, the filter pipeline, and the read/saved
// state into one consistent view, and owns the selection cursor.
package catalog

import (
	"context"
	"errors"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/jdholdren/vaultfeed/internal/extract"
	"github.com/jdholdren/vaultfeed/internal/fetch"
	"github.com/jdholdren/vaultfeed/internal/registry"
	"github.com/jdholdren/vaultfeed/internal/sqlite"
	"github.com/jdholdren/vaultfeed/internal/tracker"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

const contentCacheSize = 256

type (
	// Extractor resolves an article link to its full readable content.
	Extractor interface {
		Extract(ctx context.Context, link string) (extract.Content, error)
	}

	// Catalog is the single-writer state object everything else talks to.
	// One mutex serializes all mutations; every mutation persists through
	// the repository before subscribers hear about it.
	Catalog struct {
		mu sync.Mutex

		repo      vaultfeed.Repository
		registry  *registry.Registry
		tracker   *tracker.Tracker
		fetcher   *fetch.Fetcher
		extractor Extractor

		prefs    vaultfeed.Preferences
		articles []vaultfeed.Article
		outcomes []RefreshOutcome

		// Selection cursor and its generation counter: a content fetch
		// started under an older generation is discarded at completion.
		selGen  uint64
		selLink string
		content *Content

		contentCache *lru.Cache[string, extract.Content]

		subMu  sync.Mutex
		nextID int
		subs   map[int]chan Event
	}

	// RefreshOutcome is one feed's result in a refresh cycle.
	RefreshOutcome struct {
		FeedID   string `json:"feedId"`
		FeedName string `json:"feedName"`
		Count    int    `json:"count"`
		Error    string `json:"error,omitempty"`
	}
)

// Load builds the catalog from persisted state: feeds (with the topic
// migration applied), both link sets, and preferences.
func Load(ctx context.Context, repo vaultfeed.Repository, fetcher *fetch.Fetcher, extractor Extractor) (*Catalog, error) {
	reg, err := registry.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	trk, err := tracker.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	prefs, err := repo.Preferences(ctx)
	if err != nil {
		return nil, err
	}

	cache, _ := lru.New[string, extract.Content](contentCacheSize)

	return &Catalog{
		repo:         repo,
		registry:     reg,
		tracker:      trk,
		fetcher:      fetcher,
		extractor:    extractor,
		prefs:        prefs,
		contentCache: cache,
		subs:         map[int]chan Event{},
	}, nil
}

// Refresh fetches every feed, waits for all of them to settle, and only
// then swaps in the new article collection. Per-feed failures degrade to
// empty results; they never surface past the outcome list.
func (c *Catalog) Refresh(ctx context.Context) []RefreshOutcome {
	c.mu.Lock()
	feeds := c.registry.Feeds()
	limit := c.prefs.ArticleLimit
	c.mu.Unlock()

	// The fan-out runs unlocked: fetches are slow and must not block
	// reads or user actions against the current catalog.
	results := c.fetcher.FetchAll(ctx, feeds, limit)

	c.mu.Lock()
	// A feed deleted mid-fetch gets purged here rather than lingering.
	kept := results[:0]
	for _, res := range results {
		if _, ok := c.registry.Feed(res.Feed.ID); ok {
			kept = append(kept, res)
		}
	}

	outcomes := make([]RefreshOutcome, 0, len(kept))
	for _, res := range kept {
		o := RefreshOutcome{FeedID: res.Feed.ID, FeedName: res.Feed.Name, Count: len(res.Articles)}
		if res.Err != nil {
			o.Error = res.Err.Error()
		}
		outcomes = append(outcomes, o)
	}

	c.articles = Merge(kept, c.prefs.SortOrder)
	c.outcomes = outcomes
	c.mu.Unlock()

	c.notify(EventArticles)
	return outcomes
}

// View runs the filter pipeline over the current collection.
func (c *Catalog) View(q Query) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewLocked(q)
}

func (c *Catalog) viewLocked(q Query) View {
	return runPipeline(c.articles, q, filterDeps{
		feedCount:    len(c.registry.Feeds()),
		topicFeedIDs: c.registry.TopicFeedIDs,
		isSaved:      c.tracker.IsSaved,
		isRead:       c.tracker.IsRead,
	})
}

// Outcomes returns the per-feed results of the last refresh.
func (c *Catalog) Outcomes() []RefreshOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]RefreshOutcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// MarkRead marks a single article read.
func (c *Catalog) MarkRead(ctx context.Context, link string) error {
	c.mu.Lock()
	err := c.tracker.MarkRead(ctx, link)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(EventState)
	return nil
}

// MarkAllVisible marks everything currently passing the filter pipeline
// as read, in one batch with one bound check.
func (c *Catalog) MarkAllVisible(ctx context.Context, q Query) (int, error) {
	c.mu.Lock()
	view := c.viewLocked(q)
	links := make([]string, 0, len(view.Articles))
	for _, a := range view.Articles {
		if a.Link != "" {
			links = append(links, a.Link)
		}
	}
	err := c.tracker.MarkAllRead(ctx, links)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	c.notify(EventState)
	return len(links), nil
}

// ToggleSaved flips saved membership for a link.
func (c *Catalog) ToggleSaved(ctx context.Context, link string) (bool, error) {
	c.mu.Lock()
	saved, err := c.tracker.ToggleSaved(ctx, link)
	c.mu.Unlock()
	if err != nil {
		return saved, err
	}

	c.notify(EventState)
	return saved, nil
}

// SavedLinks returns the persisted saved set.
func (c *Catalog) SavedLinks() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.SavedLinks()
}

// ReadLinks returns the read history, oldest first.
func (c *Catalog) ReadLinks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.ReadLinks()
}

// Preferences returns the current preferences.
func (c *Catalog) Preferences() vaultfeed.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// UpdatePreferences normalizes, persists, and applies new preferences.
func (c *Catalog) UpdatePreferences(ctx context.Context, prefs vaultfeed.Preferences) (vaultfeed.Preferences, error) {
	prefs = prefs.Normalize()

	c.mu.Lock()
	err := c.repo.SavePreferences(ctx, prefs)
	if err == nil {
		reorder := prefs.SortOrder != c.prefs.SortOrder
		c.prefs = prefs
		if reorder {
			sortArticles(c.articles, prefs.SortOrder)
		}
	}
	c.mu.Unlock()
	if err != nil {
		return vaultfeed.Preferences{}, err
	}

	c.notify(EventPrefs)
	return prefs, nil
}

// Topics returns the derived topic grouping.
func (c *Catalog) Topics() []registry.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Topics()
}

// AddFeed registers a new feed.
func (c *Catalog) AddFeed(ctx context.Context, name, url, topic string) (vaultfeed.Feed, error) {
	c.mu.Lock()
	feed, err := c.registry.Add(ctx, name, url, topic)
	c.mu.Unlock()
	if err != nil {
		return vaultfeed.Feed{}, err
	}

	c.notify(EventFeeds)
	return feed, nil
}

// RemoveFeed deletes a feed. Its articles stay in the collection until
// the next merge purges them.
func (c *Catalog) RemoveFeed(ctx context.Context, id string) error {
	c.mu.Lock()
	err := c.registry.Remove(ctx, id)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(EventFeeds)
	return nil
}

// RetopicFeed moves a feed to another topic.
func (c *Catalog) RetopicFeed(ctx context.Context, id, topic string) error {
	c.mu.Lock()
	err := c.registry.Retopic(ctx, id, topic)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(EventFeeds)
	return nil
}

// ExportDoc is the persisted-state surface shared with import.
type ExportDoc struct {
	Feeds         []vaultfeed.Feed `json:"feeds"`
	SavedArticles []string         `json:"savedArticles"`
}

// Export snapshots the feeds and saved set.
func (c *Catalog) Export() ExportDoc {
	c.mu.Lock()
	defer c.mu.Unlock()

	saved := c.tracker.SavedLinks()
	links := make([]string, 0, len(saved))
	for l := range saved {
		links = append(links, l)
	}

	return ExportDoc{Feeds: c.registry.Feeds(), SavedArticles: links}
}

// Import replaces feeds and the saved set wholesale. Shape validation
// happens before this is called; by the time we're here both fields are
// present and well-formed. The storage replace is one transaction, and
// memory only updates after it commits, so a failure changes nothing.
func (c *Catalog) Import(ctx context.Context, doc ExportDoc) error {
	c.mu.Lock()
	feeds := registry.PrepareImport(doc.Feeds, sqlite.NewFeedID)
	err := c.repo.ReplaceState(ctx, feeds, doc.SavedArticles)
	if err == nil {
		c.registry.SetFeeds(feeds)
		c.tracker.SetSaved(doc.SavedArticles)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notify(EventFeeds)
	c.notify(EventState)
	return nil
}

// article looks up a live article by link.
func (c *Catalog) articleLocked(link string) (vaultfeed.Article, bool) {
	for _, a := range c.articles {
		if a.Link == link {
			return a, true
		}
	}
	return vaultfeed.Article{}, false
}

// ErrNoSelection is returned when content is requested with nothing
// selected.
var ErrNoSelection = errors.New("no article selected")

// Select makes the linked article the current selection: it marks it read
// and kicks off the content fetch. If cached content exists the selection
// resolves immediately.
func (c *Catalog) Select(ctx context.Context, link string) error {
	c.mu.Lock()

	article, ok := c.articleLocked(link)
	if !ok {
		c.mu.Unlock()
		return vferrs.E(vaultfeed.ErrNotFound, http.StatusNotFound)
	}

	if err := c.tracker.MarkRead(ctx, link); err != nil {
		c.mu.Unlock()
		return err
	}

	c.selGen++
	gen := c.selGen
	c.selLink = link

	if cached, ok := c.contentCache.Get(link); ok {
		c.content = readyContent(link, cached)
		c.mu.Unlock()
		c.notify(EventState)
		c.notify(EventContent)
		return nil
	}

	c.content = &Content{Link: link, Title: article.Title, Status: ContentLoading}
	c.mu.Unlock()

	c.notify(EventState)
	c.notify(EventContent)

	// Fire and forget: the fetch must survive the request context, and a
	// newer selection just makes this result irrelevant, not cancelled.
	go c.resolveContent(context.WithoutCancel(ctx), gen, article)

	return nil
}

// Selection returns the current selection's content state.
func (c *Catalog) Selection() (Content, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.content == nil {
		return Content{}, vferrs.E(ErrNoSelection, http.StatusNotFound)
	}
	return *c.content, nil
}

func (c *Catalog) resolveContent(ctx context.Context, gen uint64, article vaultfeed.Article) {
	res, err := c.extractor.Extract(ctx, article.Link)

	c.mu.Lock()

	// The user moved on while we were fetching; this result belongs to a
	// superseded selection and is dropped without a trace.
	if gen != c.selGen {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.content = fallbackContent(article)
	} else {
		c.contentCache.Add(article.Link, res)
		c.content = readyContent(article.Link, res)
	}
	c.mu.Unlock()

	c.notify(EventContent)
}
