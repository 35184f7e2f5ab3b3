// Package vaultfeed holds the domain types shared by every other
// package: feeds, the ephemeral articles built from them each refresh,
// and the contract for the persistent state store.
package vaultfeed

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConflict = errors.New("resource already exists")
	ErrNotFound = errors.New("resource not found")
)

// DefaultTopic is where feeds land when no topic was assigned. It always
// sorts after every other topic.
const DefaultTopic = "Uncategorized"

type (
	// Feed is a configured article source. Identity is the generated ID,
	// not the URL, though the URL must be unique across feeds.
	Feed struct {
		ID    string `db:"id" json:"id"`
		Name  string `db:"name" json:"name"`
		URL   string `db:"url" json:"url"`
		Topic string `db:"topic" json:"topic"`
	}

	// Article is one item from a fetched feed. Articles are rebuilt from
	// scratch on every refresh and never persisted; the link is the
	// identity used by the saved and read sets.
	Article struct {
		FeedID       string    `json:"feedId"`
		FeedName     string    `json:"feedName"`
		Title        string    `json:"title"`
		Link         string    `json:"link"`
		PublishedRaw string    `json:"published"`
		PublishedAt  time.Time `json:"publishedAt"`
		Description  string    `json:"description"`
		Thumbnail    string    `json:"thumbnail,omitempty"`
		Author       string    `json:"author,omitempty"`
	}

	// Repository is the persistent state surface. Every mutation method
	// writes through immediately; there is no batching layer above it.
	Repository interface {
		AllFeeds(ctx context.Context) ([]Feed, error)
		InsertFeed(ctx context.Context, feed Feed) (Feed, error)
		DeleteFeed(ctx context.Context, id string) error
		UpdateFeedTopic(ctx context.Context, id, topic string) error
		ReplaceFeeds(ctx context.Context, feeds []Feed) error

		SavedLinks(ctx context.Context) ([]string, error)
		InsertSavedLink(ctx context.Context, link string) error
		DeleteSavedLink(ctx context.Context, link string) error

		// ReplaceState swaps feeds and the saved set in one transaction;
		// import is all-or-nothing at the storage layer.
		ReplaceState(ctx context.Context, feeds []Feed, savedLinks []string) error

		ReadLinks(ctx context.Context) ([]string, error)
		AppendReadLinks(ctx context.Context, links []string) error
		TrimReadLinks(ctx context.Context, keep int) error

		Preferences(ctx context.Context) (Preferences, error)
		SavePreferences(ctx context.Context, prefs Preferences) error
	}
)

// SortOrder controls how merged articles are ordered by publish date.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// EpochZero is the sentinel publish date for items whose date was missing
// or unparsable. It sorts as oldest-possible under both orders.
var EpochZero = time.Unix(0, 0).UTC()
