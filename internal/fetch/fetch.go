// Package fetch pulls articles out of remote feeds, one concurrent fetch
// per feed, and normalizes them into the shared article shape.
package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
	"github.com/jdholdren/vaultfeed/logger"
)

const (
	userAgent = "VaultFeed/1.0"

	// Placeholder title for items that arrive without one.
	noTitle = "(no title)"

	// Raw descriptions are capped so one item can't carry a novel.
	maxDescriptionLen = 2048
)

// Fetcher runs feed fetches. Safe for concurrent use.
type Fetcher struct {
	parser *gofeed.Parser
}

func New() *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: 12 * time.Second}

	return &Fetcher{parser: p}
}

// Result is one feed's outcome in a refresh: either its articles or the
// error that produced none.
type Result struct {
	Feed     vaultfeed.Feed
	Articles []vaultfeed.Article
	Err      error
}

// FetchAll fetches every feed concurrently and waits for all of them to
// settle. A failing feed contributes an empty result and a logged warning;
// it never aborts the others. Results come back in feed-list order
// regardless of which fetch finished first.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []vaultfeed.Feed, limit int) []Result {
	results := make([]Result, len(feeds))

	var wg sync.WaitGroup
	for i, feed := range feeds {
		wg.Add(1)
		go func(i int, feed vaultfeed.Feed) {
			defer wg.Done()

			articles, err := f.Fetch(ctx, feed, limit)
			if err != nil {
				lctx := logger.Ctx(ctx,
					slog.String("feed_id", feed.ID),
					slog.String("feed_url", feed.URL),
				)
				slog.WarnContext(lctx, "feed fetch failed", "error", err)
				results[i] = Result{Feed: feed, Articles: []vaultfeed.Article{}, Err: err}
				return
			}
			results[i] = Result{Feed: feed, Articles: articles}
		}(i, feed)
	}
	wg.Wait()

	return results
}

// Fetch retrieves and normalizes a single feed, returning at most `limit`
// articles.
func (f *Fetcher) Fetch(ctx context.Context, feed vaultfeed.Feed, limit int) ([]vaultfeed.Article, error) {
	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = vaultfeed.DefaultArticleLimit
	}
	if limit > vaultfeed.MaxArticleLimit {
		limit = vaultfeed.MaxArticleLimit
	}

	items := parsed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	articles := make([]vaultfeed.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, normalize(feed, item))
	}

	return articles, nil
}

// normalize maps one feed item into the article shape, applying the
// defaulting rules for absent fields.
func normalize(feed vaultfeed.Feed, item *gofeed.Item) vaultfeed.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = noTitle
	}

	publishedRaw := item.Published
	if publishedRaw == "" {
		publishedRaw = item.Updated
	}

	// Missing or unparsable dates get the epoch-zero sentinel, which sorts
	// as oldest-possible under both orders.
	publishedAt := vaultfeed.EpochZero
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		publishedAt = item.UpdatedParsed.UTC()
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	desc = truncate(desc, maxDescriptionLen)

	return vaultfeed.Article{
		FeedID:       feed.ID,
		FeedName:     feed.Name,
		Title:        title,
		Link:         strings.TrimSpace(item.Link),
		PublishedRaw: publishedRaw,
		PublishedAt:  publishedAt,
		Description:  desc,
		Thumbnail:    thumbnail(item),
		Author:       author(item),
	}
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func thumbnail(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	// media:thumbnail, then media:content
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"thumbnail", "content"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	return ""
}

func author(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
