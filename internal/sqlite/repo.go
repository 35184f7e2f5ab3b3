// Package sqlite implements the persistent state store on top of a local
// sqlite database.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Ensure Repo implements the Repository interface
var _ vaultfeed.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// ReplaceState swaps the feed list and the saved set in a single
// transaction, so an import either lands whole or not at all.
func (r Repo) ReplaceState(ctx context.Context, feeds []vaultfeed.Feed, savedLinks []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning tx: %s", err)
	}
	defer tx.Rollback()

	if err := replaceFeedsTx(ctx, tx, feeds); err != nil {
		return err
	}
	if err := replaceSavedLinksTx(ctx, tx, savedLinks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %s", err)
	}

	return nil
}
