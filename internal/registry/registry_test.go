package registry

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

type memStore struct {
	feeds  []vaultfeed.Feed
	nextID int
}

func (m *memStore) AllFeeds(context.Context) ([]vaultfeed.Feed, error) {
	return append([]vaultfeed.Feed{}, m.feeds...), nil
}

func (m *memStore) InsertFeed(_ context.Context, feed vaultfeed.Feed) (vaultfeed.Feed, error) {
	if feed.ID == "" {
		m.nextID++
		feed.ID = fmt.Sprintf("feed-%d", m.nextID)
	}
	m.feeds = append(m.feeds, feed)
	return feed, nil
}

func (m *memStore) DeleteFeed(_ context.Context, id string) error {
	for i, f := range m.feeds {
		if f.ID == id {
			m.feeds = append(m.feeds[:i], m.feeds[i+1:]...)
			return nil
		}
	}
	return vaultfeed.ErrNotFound
}

func (m *memStore) UpdateFeedTopic(_ context.Context, id, topic string) error {
	for i, f := range m.feeds {
		if f.ID == id {
			m.feeds[i].Topic = topic
			return nil
		}
	}
	return vaultfeed.ErrNotFound
}

func (m *memStore) ReplaceFeeds(_ context.Context, feeds []vaultfeed.Feed) error {
	m.feeds = append([]vaultfeed.Feed{}, feeds...)
	return nil
}

func TestAdd_Validation(t *testing.T) {
	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)

	_, err = reg.Add(context.Background(), "", "  ", "")
	require.Error(t, err)

	var vfErr *vferrs.Error
	require.ErrorAs(t, err, &vfErr)
	assert.Equal(t, http.StatusBadRequest, vfErr.Status)
	assert.Len(t, vfErr.Details, 2)

	// Nothing was persisted.
	assert.Empty(t, reg.Feeds())
}

func TestAdd_DuplicateURLRejected(t *testing.T) {
	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = reg.Add(ctx, "First", "https://example.com/rss", "Tech")
	require.NoError(t, err)

	_, err = reg.Add(ctx, "Second", "https://example.com/rss", "News")
	require.ErrorIs(t, err, vaultfeed.ErrConflict)

	assert.Len(t, reg.Feeds(), 1)
}

func TestAdd_DefaultsTopic(t *testing.T) {
	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)

	feed, err := reg.Add(context.Background(), "Name", "https://example.com/rss", "  ")
	require.NoError(t, err)

	assert.Equal(t, vaultfeed.DefaultTopic, feed.Topic)
}

func TestLoad_MigratesMissingTopics(t *testing.T) {
	store := &memStore{feeds: []vaultfeed.Feed{
		{ID: "f1", Name: "One", URL: "https://one.example.com", Topic: ""},
		{ID: "f2", Name: "Two", URL: "https://two.example.com", Topic: "Tech"},
	}}

	reg, err := Load(context.Background(), store)
	require.NoError(t, err)

	feeds := reg.Feeds()
	assert.Equal(t, vaultfeed.DefaultTopic, feeds[0].Topic)
	assert.Equal(t, "Tech", feeds[1].Topic)

	// The migration was written back.
	assert.Equal(t, vaultfeed.DefaultTopic, store.feeds[0].Topic)
}

func TestTopics_SortedWithDefaultLast(t *testing.T) {
	store := &memStore{}
	reg, err := Load(context.Background(), store)
	require.NoError(t, err)
	ctx := context.Background()

	for i, topic := range []string{"zeta", vaultfeed.DefaultTopic, "Alpha", "beta"} {
		_, err := reg.Add(ctx, "Feed", fmt.Sprintf("https://example.com/%d", i), topic)
		require.NoError(t, err)
	}

	topics := reg.Topics()
	names := make([]string, 0, len(topics))
	for _, tp := range topics {
		names = append(names, tp.Name)
	}

	assert.Equal(t, []string{"Alpha", "beta", "zeta", vaultfeed.DefaultTopic}, names)
}

func TestRemove(t *testing.T) {
	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)
	ctx := context.Background()

	feed, err := reg.Add(ctx, "Name", "https://example.com/rss", "")
	require.NoError(t, err)

	require.NoError(t, reg.Remove(ctx, feed.ID))
	assert.Empty(t, reg.Feeds())

	err = reg.Remove(ctx, feed.ID)
	require.ErrorIs(t, err, vaultfeed.ErrNotFound)
}

func TestRetopic(t *testing.T) {
	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)
	ctx := context.Background()

	feed, err := reg.Add(ctx, "Name", "https://example.com/rss", "Old")
	require.NoError(t, err)

	require.NoError(t, reg.Retopic(ctx, feed.ID, "New"))

	got, ok := reg.Feed(feed.ID)
	require.True(t, ok)
	assert.Equal(t, "New", got.Topic)
}

func TestPrepareImport_GeneratesIDsAndDefaults(t *testing.T) {
	n := 0
	newID := func() string { n++; return fmt.Sprintf("gen-%d", n) }

	feeds := PrepareImport([]vaultfeed.Feed{
		{Name: "One", URL: "https://one.example.com"},
		{ID: "keep", Name: "Two", URL: "https://two.example.com", Topic: "Tech"},
	}, newID)

	require.Len(t, feeds, 2)
	assert.Equal(t, "gen-1", feeds[0].ID)
	assert.Equal(t, vaultfeed.DefaultTopic, feeds[0].Topic)
	assert.Equal(t, "keep", feeds[1].ID)

	reg, err := Load(context.Background(), &memStore{})
	require.NoError(t, err)

	reg.SetFeeds(feeds)
	assert.Equal(t, feeds, reg.Feeds())
}
