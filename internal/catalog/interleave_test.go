package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

func art(feedID, title string) vaultfeed.Article {
	return vaultfeed.Article{
		FeedID: feedID,
		Title:  title,
		Link:   "https://example.com/" + feedID + "/" + title,
	}
}

func titles(articles []vaultfeed.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestInterleave_AlternatesSources(t *testing.T) {
	in := []vaultfeed.Article{
		art("A", "a1"), art("A", "a2"), art("A", "a3"),
		art("B", "b1"), art("B", "b2"),
	}

	got := Interleave(in)

	assert.Equal(t, []string{"a1", "b1", "a2", "b2", "a3"}, titles(got))
}

func TestInterleave_SingleFeedUnchanged(t *testing.T) {
	in := []vaultfeed.Article{art("A", "a1"), art("A", "a2"), art("A", "a3")}

	got := Interleave(in)

	assert.Equal(t, in, got)
}

func TestInterleave_Empty(t *testing.T) {
	assert.Empty(t, Interleave(nil))
}

func TestInterleave_FirstSeenOrderWins(t *testing.T) {
	// B appears first in the sorted input, so sweeps start with B.
	in := []vaultfeed.Article{
		art("B", "b1"),
		art("A", "a1"), art("A", "a2"),
		art("B", "b2"),
	}

	got := Interleave(in)

	assert.Equal(t, []string{"b1", "a1", "b2", "a2"}, titles(got))
}
