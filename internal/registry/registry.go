// Package registry owns the feed definitions and their topic grouping.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Store is the slice of the repository the registry writes through to.
type Store interface {
	AllFeeds(ctx context.Context) ([]vaultfeed.Feed, error)
	InsertFeed(ctx context.Context, feed vaultfeed.Feed) (vaultfeed.Feed, error)
	DeleteFeed(ctx context.Context, id string) error
	UpdateFeedTopic(ctx context.Context, id, topic string) error
	ReplaceFeeds(ctx context.Context, feeds []vaultfeed.Feed) error
}

// Registry keeps the feed list in memory and persists every mutation
// before returning. It is not safe for concurrent use on its own; the
// catalog serializes access to it.
type Registry struct {
	store Store
	feeds []vaultfeed.Feed
}

// Topic is a derived grouping of feeds sharing a topic label. Topics are
// never stored; they fall out of the feed list.
type Topic struct {
	Name  string           `json:"name"`
	Feeds []vaultfeed.Feed `json:"feeds"`
}

// Load reads the feed list from the store. Feeds persisted without a topic
// are migrated to the default topic and the migrated list is written back.
func Load(ctx context.Context, store Store) (*Registry, error) {
	feeds, err := store.AllFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading feeds: %w", err)
	}

	migrated := false
	for i := range feeds {
		if feeds[i].Topic == "" {
			feeds[i].Topic = vaultfeed.DefaultTopic
			migrated = true
		}
	}
	if migrated {
		if err := store.ReplaceFeeds(ctx, feeds); err != nil {
			return nil, fmt.Errorf("error persisting topic migration: %w", err)
		}
	}

	return &Registry{store: store, feeds: feeds}, nil
}

// Feeds returns the feed list in its stored order.
func (r *Registry) Feeds() []vaultfeed.Feed {
	out := make([]vaultfeed.Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// Feed looks a feed up by ID.
func (r *Registry) Feed(id string) (vaultfeed.Feed, bool) {
	for _, f := range r.feeds {
		if f.ID == id {
			return f, true
		}
	}
	return vaultfeed.Feed{}, false
}

// Add validates and persists a new feed. Validation failures and duplicate
// URLs are rejected before anything is written.
func (r *Registry) Add(ctx context.Context, name, url, topic string) (vaultfeed.Feed, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	topic = strings.TrimSpace(topic)

	var details []vferrs.Detail
	if name == "" {
		details = append(details, vferrs.Detail{Field: "name", Error: "is required"})
	}
	if url == "" {
		details = append(details, vferrs.Detail{Field: "url", Error: "is required"})
	}
	if len(details) > 0 {
		return vaultfeed.Feed{}, vferrs.E("invalid feed", http.StatusBadRequest, details)
	}

	for _, f := range r.feeds {
		if f.URL == url {
			return vaultfeed.Feed{}, vferrs.E(
				fmt.Errorf("feed url already added: %w", vaultfeed.ErrConflict),
				http.StatusConflict,
			)
		}
	}

	if topic == "" {
		topic = vaultfeed.DefaultTopic
	}

	feed, err := r.store.InsertFeed(ctx, vaultfeed.Feed{
		Name:  name,
		URL:   url,
		Topic: topic,
	})
	if err != nil {
		return vaultfeed.Feed{}, err
	}

	r.feeds = append(r.feeds, feed)
	return feed, nil
}

// Remove deletes a feed by ID.
func (r *Registry) Remove(ctx context.Context, id string) error {
	idx := -1
	for i, f := range r.feeds {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return vferrs.E(vaultfeed.ErrNotFound, http.StatusNotFound)
	}

	if err := r.store.DeleteFeed(ctx, id); err != nil {
		return err
	}

	r.feeds = append(r.feeds[:idx], r.feeds[idx+1:]...)
	return nil
}

// Retopic moves a feed to a different topic.
func (r *Registry) Retopic(ctx context.Context, id, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = vaultfeed.DefaultTopic
	}

	for i, f := range r.feeds {
		if f.ID != id {
			continue
		}
		if err := r.store.UpdateFeedTopic(ctx, id, topic); err != nil {
			return err
		}
		r.feeds[i].Topic = topic
		return nil
	}

	return vferrs.E(vaultfeed.ErrNotFound, http.StatusNotFound)
}

// PrepareImport readies an incoming feed list for a wholesale replace:
// IDs are generated for feeds missing one and topic defaults applied.
// Persisting the result is the caller's job; once it has, SetFeeds swaps
// the list in.
func PrepareImport(feeds []vaultfeed.Feed, newID func() string) []vaultfeed.Feed {
	replacement := make([]vaultfeed.Feed, 0, len(feeds))
	for _, f := range feeds {
		if f.ID == "" {
			f.ID = newID()
		}
		if strings.TrimSpace(f.Topic) == "" {
			f.Topic = vaultfeed.DefaultTopic
		}
		replacement = append(replacement, f)
	}
	return replacement
}

// SetFeeds swaps the in-memory feed list for one already persisted.
func (r *Registry) SetFeeds(feeds []vaultfeed.Feed) {
	r.feeds = feeds
}

// Topics groups the feeds by topic label, alphabetical except the default
// topic which always sorts last.
func (r *Registry) Topics() []Topic {
	grouped := map[string][]vaultfeed.Feed{}
	names := []string{}
	for _, f := range r.feeds {
		if _, ok := grouped[f.Topic]; !ok {
			names = append(names, f.Topic)
		}
		grouped[f.Topic] = append(grouped[f.Topic], f)
	}

	sort.Slice(names, func(i, j int) bool {
		if names[i] == vaultfeed.DefaultTopic {
			return false
		}
		if names[j] == vaultfeed.DefaultTopic {
			return true
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	topics := make([]Topic, 0, len(names))
	for _, n := range names {
		topics = append(topics, Topic{Name: n, Feeds: grouped[n]})
	}
	return topics
}

// TopicFeedIDs returns the set of feed IDs belonging to a topic.
func (r *Registry) TopicFeedIDs(topic string) map[string]bool {
	ids := map[string]bool{}
	for _, f := range r.feeds {
		if f.Topic == topic {
			ids[f.ID] = true
		}
	}
	return ids
}
