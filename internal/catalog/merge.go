package catalog

import (
	"sort"

	"github.com/jdholdren/vaultfeed/internal/fetch"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Merge concatenates per-feed results in feed-list order and sorts by
// publish date. The sort is stable, so articles sharing a timestamp keep
// their relative arrival order, and the result depends only on article
// data, never on which fetch finished first.
//
// No deduplication happens across feeds: two feeds republishing the same
// link both show up, and read/saved state keys on the link either way.
func Merge(results []fetch.Result, order vaultfeed.SortOrder) []vaultfeed.Article {
	var merged []vaultfeed.Article
	for _, res := range results {
		merged = append(merged, res.Articles...)
	}

	sortArticles(merged, order)
	return merged
}

// sortArticles stable-sorts in place by publish date. Also used when the
// sort-order preference flips, so the live collection reorders without
// waiting for a refresh.
func sortArticles(articles []vaultfeed.Article, order vaultfeed.SortOrder) {
	sort.SliceStable(articles, func(i, j int) bool {
		if order == vaultfeed.SortOldest {
			return articles[i].PublishedAt.Before(articles[j].PublishedAt)
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
