package catalog

import (
	"strings"

	"github.com/jdholdren/vaultfeed/internal/extract"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// ContentStatus tracks where the selection's content fetch stands.
type ContentStatus string

const (
	ContentLoading ContentStatus = "loading"
	ContentReady   ContentStatus = "ready"
	ContentFailed  ContentStatus = "failed"
)

// Content is the resolved reading material for the selected article.
// Fallback marks content recovered from the feed's own description after
// extraction came up short.
type Content struct {
	Link     string        `json:"link"`
	Title    string        `json:"title"`
	HTML     string        `json:"html,omitempty"`
	Text     string        `json:"text,omitempty"`
	Authors  []string      `json:"authors,omitempty"`
	TopImage string        `json:"topImage,omitempty"`
	Status   ContentStatus `json:"status"`
	Fallback bool          `json:"fallback,omitempty"`
	Message  string        `json:"message,omitempty"`
}

func readyContent(link string, res extract.Content) *Content {
	return &Content{
		Link:     link,
		Title:    res.Title,
		HTML:     res.HTML,
		Text:     res.Text,
		Authors:  res.Authors,
		TopImage: res.TopImage,
		Status:   ContentReady,
	}
}

// fallbackContent recovers from a failed or insufficient extraction. With
// a description to show, the failure downgrades to a fallback view; with
// nothing at all, it's terminal for this article.
func fallbackContent(article vaultfeed.Article) *Content {
	if strings.TrimSpace(stripMarkup(article.Description)) != "" {
		return &Content{
			Link:     article.Link,
			Title:    article.Title,
			HTML:     article.Description,
			TopImage: article.Thumbnail,
			Status:   ContentReady,
			Fallback: true,
		}
	}

	return &Content{
		Link:    article.Link,
		Title:   article.Title,
		Status:  ContentFailed,
		Message: "could not load article content",
	}
}
