package catalog

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Scope selectors. Anything else is treated as a feed ID.
const (
	ScopeAll         = "all"
	ScopeSaved       = "saved"
	topicScopePrefix = "topic:"
)

// Query is the set of view parameters the filter pipeline runs under.
type Query struct {
	Scope      string
	Search     string
	UnreadOnly bool
}

// EmptyReason distinguishes why a view came back empty, so the caller can
// render the right message.
type EmptyReason string

const (
	ReasonNone      EmptyReason = ""
	ReasonNoFeeds   EmptyReason = "no_feeds"
	ReasonNoMatches EmptyReason = "no_matches"
	ReasonAllRead   EmptyReason = "all_read"
)

// View is the definitive render list plus the parameters it was built
// under.
type View struct {
	Articles []vaultfeed.Article `json:"articles"`
	Scope    string              `json:"scope"`
	Search   string              `json:"search"`
	Reason   EmptyReason         `json:"emptyReason,omitempty"`
}

var stripPolicy = bluemonday.StrictPolicy()

// stripMarkup reduces raw description markup to plain text for searching.
func stripMarkup(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// aggregateScope reports whether a scope spans multiple feeds, which is
// the only case interleaving applies to.
func aggregateScope(scope string) bool {
	return scope == ScopeAll || scope == ScopeSaved || strings.HasPrefix(scope, topicScopePrefix)
}

// filterDeps is everything the pipeline consults beyond the articles
// themselves.
type filterDeps struct {
	feedCount    int
	topicFeedIDs func(topic string) map[string]bool
	isSaved      func(link string) bool
	isRead       func(link string) bool
}

// runPipeline applies the fixed-order filter chain: scope, search, unread,
// then interleave for aggregate scopes.
func runPipeline(articles []vaultfeed.Article, q Query, deps filterDeps) View {
	view := View{Scope: q.Scope, Search: q.Search}

	if deps.feedCount == 0 {
		view.Articles = []vaultfeed.Article{}
		view.Reason = ReasonNoFeeds
		return view
	}

	// Scope
	switch {
	case q.Scope == ScopeAll, q.Scope == "":
		view.Scope = ScopeAll
	case q.Scope == ScopeSaved:
		articles = keep(articles, func(a vaultfeed.Article) bool {
			return deps.isSaved(a.Link)
		})
	case strings.HasPrefix(q.Scope, topicScopePrefix):
		members := deps.topicFeedIDs(strings.TrimPrefix(q.Scope, topicScopePrefix))
		articles = keep(articles, func(a vaultfeed.Article) bool {
			return members[a.FeedID]
		})
	default:
		articles = keep(articles, func(a vaultfeed.Article) bool {
			return a.FeedID == q.Scope
		})
	}

	// Search
	if query := strings.ToLower(strings.TrimSpace(q.Search)); query != "" {
		articles = keep(articles, func(a vaultfeed.Article) bool {
			return strings.Contains(strings.ToLower(a.Title), query) ||
				strings.Contains(strings.ToLower(a.FeedName), query) ||
				strings.Contains(strings.ToLower(stripMarkup(a.Description)), query)
		})
	}

	if len(articles) == 0 {
		view.Articles = []vaultfeed.Article{}
		view.Reason = ReasonNoMatches
		return view
	}

	// Unread
	if q.UnreadOnly {
		articles = keep(articles, func(a vaultfeed.Article) bool {
			return !deps.isRead(a.Link)
		})
		if len(articles) == 0 {
			view.Articles = []vaultfeed.Article{}
			view.Reason = ReasonAllRead
			return view
		}
	}

	// Interleave, aggregate scopes only
	if aggregateScope(view.Scope) {
		articles = Interleave(articles)
	}

	view.Articles = articles
	return view
}

func keep(articles []vaultfeed.Article, pred func(vaultfeed.Article) bool) []vaultfeed.Article {
	out := make([]vaultfeed.Article, 0, len(articles))
	for _, a := range articles {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}
