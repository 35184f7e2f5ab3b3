package catalog

import "github.com/jdholdren/vaultfeed/internal/vaultfeed"

// Interleave round-robins an already-sorted article list by source so a
// single high-volume feed can't monopolize an aggregate view. Feeds keep
// their first-appearance order and each feed keeps its internal order; a
// list with one distinct feed comes back unchanged.
func Interleave(articles []vaultfeed.Article) []vaultfeed.Article {
	if len(articles) == 0 {
		return articles
	}

	var (
		order  []string
		byFeed = map[string][]vaultfeed.Article{}
	)
	for _, a := range articles {
		if _, ok := byFeed[a.FeedID]; !ok {
			order = append(order, a.FeedID)
		}
		byFeed[a.FeedID] = append(byFeed[a.FeedID], a)
	}

	if len(order) < 2 {
		return articles
	}

	out := make([]vaultfeed.Article, 0, len(articles))
	for len(out) < len(articles) {
		for _, id := range order {
			queue := byFeed[id]
			if len(queue) == 0 {
				continue
			}
			out = append(out, queue[0])
			byFeed[id] = queue[1:]
		}
	}

	return out
}
