package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

func pipelineDeps(feedCount int, topics map[string]map[string]bool, saved, read map[string]bool) filterDeps {
	return filterDeps{
		feedCount: feedCount,
		topicFeedIDs: func(topic string) map[string]bool {
			return topics[topic]
		},
		isSaved: func(link string) bool { return link != "" && saved[link] },
		isRead:  func(link string) bool { return link != "" && read[link] },
	}
}

func TestPipeline_SearchNarrowsBeforeUnreadExcludes(t *testing.T) {
	rust := vaultfeed.Article{FeedID: "X", FeedName: "X", Title: "Rust news", Link: "l-rust"}
	goArt := vaultfeed.Article{FeedID: "Y", FeedName: "Y", Title: "Go news", Link: "l-go"}

	got := runPipeline(
		[]vaultfeed.Article{rust, goArt},
		Query{Scope: ScopeAll, Search: "news", UnreadOnly: true},
		pipelineDeps(2, nil, nil, map[string]bool{"l-rust": true}),
	)

	assert.Equal(t, []string{"Go news"}, titles(got.Articles))
	assert.Equal(t, ReasonNone, got.Reason)
}

func TestPipeline_SavedScope(t *testing.T) {
	a := art("A", "kept")
	b := art("B", "dropped")

	got := runPipeline(
		[]vaultfeed.Article{a, b},
		Query{Scope: ScopeSaved},
		pipelineDeps(2, nil, map[string]bool{a.Link: true}, nil),
	)

	assert.Equal(t, []string{"kept"}, titles(got.Articles))
}

func TestPipeline_TopicScope(t *testing.T) {
	a := art("A", "in-topic")
	b := art("B", "outside")

	got := runPipeline(
		[]vaultfeed.Article{a, b},
		Query{Scope: "topic:Tech"},
		pipelineDeps(2, map[string]map[string]bool{"Tech": {"A": true}}, nil, nil),
	)

	assert.Equal(t, []string{"in-topic"}, titles(got.Articles))
}

func TestPipeline_FeedScopeNotInterleaved(t *testing.T) {
	in := []vaultfeed.Article{art("A", "a1"), art("A", "a2"), art("B", "b1")}

	got := runPipeline(in, Query{Scope: "A"}, pipelineDeps(2, nil, nil, nil))

	assert.Equal(t, []string{"a1", "a2"}, titles(got.Articles))
}

func TestPipeline_AggregateScopeInterleaves(t *testing.T) {
	in := []vaultfeed.Article{
		art("A", "a1"), art("A", "a2"), art("A", "a3"),
		art("B", "b1"), art("B", "b2"),
	}

	got := runPipeline(in, Query{Scope: ScopeAll}, pipelineDeps(2, nil, nil, nil))

	assert.Equal(t, []string{"a1", "b1", "a2", "b2", "a3"}, titles(got.Articles))
}

func TestPipeline_SearchStripsMarkup(t *testing.T) {
	a := art("A", "plain title")
	a.Description = `<p>contains <b>hidden</b> treasure</p>`

	deps := pipelineDeps(1, nil, nil, nil)

	got := runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeAll, Search: "hidden treasure"}, deps)
	assert.Len(t, got.Articles, 1)

	// Tag names themselves never match.
	got = runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeAll, Search: "<b>"}, deps)
	assert.Empty(t, got.Articles)
	assert.Equal(t, ReasonNoMatches, got.Reason)
}

func TestPipeline_EmptyReasons(t *testing.T) {
	a := art("A", "something")
	read := map[string]bool{a.Link: true}

	noFeeds := runPipeline(nil, Query{Scope: ScopeAll}, pipelineDeps(0, nil, nil, nil))
	assert.Equal(t, ReasonNoFeeds, noFeeds.Reason)

	noMatches := runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeAll, Search: "zzz"}, pipelineDeps(1, nil, nil, nil))
	assert.Equal(t, ReasonNoMatches, noMatches.Reason)

	allRead := runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeAll, UnreadOnly: true}, pipelineDeps(1, nil, nil, read))
	assert.Equal(t, ReasonAllRead, allRead.Reason)
}

func TestPipeline_EmptyLinkNeverSavedOrRead(t *testing.T) {
	a := vaultfeed.Article{FeedID: "A", Title: "no link"}

	// Empty-link articles can't be in the saved set.
	saved := runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeSaved}, pipelineDeps(1, nil, map[string]bool{"": true}, nil))
	assert.Empty(t, saved.Articles)

	// And they always count as unread.
	unread := runPipeline([]vaultfeed.Article{a}, Query{Scope: ScopeAll, UnreadOnly: true}, pipelineDeps(1, nil, nil, map[string]bool{"": true}))
	assert.Len(t, unread.Articles, 1)
}
