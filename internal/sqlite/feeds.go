package sqlite

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

const feedNamespace = "-fd"

// NewFeedID generates a namespaced identifier for a feed.
func NewFeedID() string {
	return fmt.Sprintf("%s%s", uuid.NewString(), feedNamespace)
}

// AllFeeds retrieves every feed in the order they were added.
func (r Repo) AllFeeds(ctx context.Context) ([]vaultfeed.Feed, error) {
	const q = `SELECT id, name, url, topic FROM feeds ORDER BY position;`

	feeds := []vaultfeed.Feed{}
	if err := r.db.SelectContext(ctx, &feeds, q); err != nil {
		return nil, fmt.Errorf("error selecting all feeds: %s", err)
	}

	return feeds, nil
}

func (r Repo) InsertFeed(ctx context.Context, feed vaultfeed.Feed) (vaultfeed.Feed, error) {
	if feed.ID == "" {
		feed.ID = NewFeedID()
	}

	const q = `INSERT INTO feeds (id, name, url, topic, position)
	VALUES (:id, :name, :url, :topic, (SELECT COALESCE(MAX(position), 0) + 1 FROM feeds));`
	_, err := r.db.NamedExecContext(ctx, q, feed)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == 2067 {
		return vaultfeed.Feed{}, fmt.Errorf("feed already exists: %w", vaultfeed.ErrConflict)
	}
	if err != nil {
		return vaultfeed.Feed{}, fmt.Errorf("error inserting feed: %s", err)
	}

	return feed, nil
}

func (r Repo) DeleteFeed(ctx context.Context, id string) error {
	const q = `DELETE FROM feeds WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("error deleting feed: %s", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return vaultfeed.ErrNotFound
	}

	return nil
}

func (r Repo) UpdateFeedTopic(ctx context.Context, id, topic string) error {
	const q = `UPDATE feeds SET topic = ? WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, topic, id)
	if err != nil {
		return fmt.Errorf("error updating feed topic: %s", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return vaultfeed.ErrNotFound
	}

	return nil
}

// ReplaceFeeds swaps out the whole feed list in one transaction. Used by
// the startup topic migration.
func (r Repo) ReplaceFeeds(ctx context.Context, feeds []vaultfeed.Feed) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning tx: %s", err)
	}
	defer tx.Rollback()

	if err := replaceFeedsTx(ctx, tx, feeds); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %s", err)
	}

	return nil
}

func replaceFeedsTx(ctx context.Context, tx *sqlx.Tx, feeds []vaultfeed.Feed) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM feeds;`); err != nil {
		return fmt.Errorf("error clearing feeds: %s", err)
	}

	if len(feeds) == 0 {
		return nil
	}

	b := sq.Insert("feeds").Columns("id", "name", "url", "topic", "position")
	for i, f := range feeds {
		b = b.Values(f.ID, f.Name, f.URL, f.Topic, i+1)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting feeds: %s", err)
	}

	return nil
}
