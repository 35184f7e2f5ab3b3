package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// SavedLinks returns the saved set, most recently saved first.
func (r Repo) SavedLinks(ctx context.Context) ([]string, error) {
	const q = `SELECT link FROM saved_links ORDER BY rowid DESC;`

	links := []string{}
	if err := r.db.SelectContext(ctx, &links, q); err != nil {
		return nil, fmt.Errorf("error selecting saved links: %s", err)
	}

	return links, nil
}

func (r Repo) InsertSavedLink(ctx context.Context, link string) error {
	const q = `INSERT INTO saved_links (link) VALUES (?) ON CONFLICT(link) DO NOTHING;`

	if _, err := r.db.ExecContext(ctx, q, link); err != nil {
		return fmt.Errorf("error inserting saved link: %s", err)
	}

	return nil
}

func (r Repo) DeleteSavedLink(ctx context.Context, link string) error {
	const q = `DELETE FROM saved_links WHERE link = ?;`

	if _, err := r.db.ExecContext(ctx, q, link); err != nil {
		return fmt.Errorf("error deleting saved link: %s", err)
	}

	return nil
}

func replaceSavedLinksTx(ctx context.Context, tx *sqlx.Tx, links []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_links;`); err != nil {
		return fmt.Errorf("error clearing saved links: %s", err)
	}

	if len(links) == 0 {
		return nil
	}

	b := sq.Insert("saved_links").Columns("link")
	for _, l := range links {
		b = b.Values(l)
	}
	// Imports can hold duplicates; the primary key makes them one row.
	b = b.Suffix("ON CONFLICT(link) DO NOTHING")
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting saved links: %s", err)
	}

	return nil
}

// ReadLinks returns the read history, oldest first.
func (r Repo) ReadLinks(ctx context.Context) ([]string, error) {
	const q = `SELECT link FROM read_links ORDER BY id;`

	links := []string{}
	if err := r.db.SelectContext(ctx, &links, q); err != nil {
		return nil, fmt.Errorf("error selecting read links: %s", err)
	}

	return links, nil
}

func (r Repo) AppendReadLinks(ctx context.Context, links []string) error {
	if len(links) == 0 {
		return nil
	}

	b := sq.Insert("read_links").Columns("link")
	for _, l := range links {
		b = b.Values(l)
	}
	b = b.Suffix("ON CONFLICT(link) DO NOTHING")
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error appending read links: %s", err)
	}

	return nil
}

// TrimReadLinks drops everything but the `keep` most recent entries.
func (r Repo) TrimReadLinks(ctx context.Context, keep int) error {
	const q = `DELETE FROM read_links
	WHERE id NOT IN (SELECT id FROM read_links ORDER BY id DESC LIMIT ?);`

	if _, err := r.db.ExecContext(ctx, q, keep); err != nil {
		return fmt.Errorf("error trimming read links: %s", err)
	}

	return nil
}
