package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Mirrors the single preferences row; collapsed topics are stored as a
// JSON array in a text column.
type prefRow struct {
	Theme              string `db:"theme"`
	SortOrder          string `db:"sort_order"`
	GridView           bool   `db:"grid_view"`
	FontSizePx         int    `db:"font_size_px"`
	ReadingWidth       string `db:"reading_width"`
	AutoRefreshMinutes int    `db:"auto_refresh_minutes"`
	ArticleLimit       int    `db:"article_limit"`
	CollapsedTopics    string `db:"collapsed_topics"`
	ShowUnreadOnly     bool   `db:"show_unread_only"`
}

// Preferences loads the stored preferences, falling back to defaults when
// nothing has been written yet. Every field is normalized on the way out.
func (r Repo) Preferences(ctx context.Context) (vaultfeed.Preferences, error) {
	const q = `SELECT theme, sort_order, grid_view, font_size_px, reading_width,
	auto_refresh_minutes, article_limit, collapsed_topics, show_unread_only
	FROM preferences WHERE id = 1;`

	var row prefRow
	err := r.db.GetContext(ctx, &row, q)
	if errors.Is(err, sql.ErrNoRows) {
		return vaultfeed.DefaultPreferences(), nil
	}
	if err != nil {
		return vaultfeed.Preferences{}, fmt.Errorf("error fetching preferences: %s", err)
	}

	var collapsed []string
	if row.CollapsedTopics != "" {
		// A corrupt column shouldn't take the whole load down.
		_ = json.Unmarshal([]byte(row.CollapsedTopics), &collapsed)
	}

	prefs := vaultfeed.Preferences{
		Theme:              row.Theme,
		SortOrder:          vaultfeed.SortOrder(row.SortOrder),
		GridView:           row.GridView,
		FontSizePx:         row.FontSizePx,
		ReadingWidth:       row.ReadingWidth,
		AutoRefreshMinutes: row.AutoRefreshMinutes,
		ArticleLimit:       row.ArticleLimit,
		CollapsedTopics:    collapsed,
		ShowUnreadOnly:     row.ShowUnreadOnly,
	}

	return prefs.Normalize(), nil
}

func (r Repo) SavePreferences(ctx context.Context, prefs vaultfeed.Preferences) error {
	collapsed, err := json.Marshal(prefs.CollapsedTopics)
	if err != nil {
		return fmt.Errorf("error marshaling collapsed topics: %s", err)
	}

	const q = `INSERT INTO preferences (
		id, theme, sort_order, grid_view, font_size_px, reading_width,
		auto_refresh_minutes, article_limit, collapsed_topics, show_unread_only
	) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		theme = excluded.theme,
		sort_order = excluded.sort_order,
		grid_view = excluded.grid_view,
		font_size_px = excluded.font_size_px,
		reading_width = excluded.reading_width,
		auto_refresh_minutes = excluded.auto_refresh_minutes,
		article_limit = excluded.article_limit,
		collapsed_topics = excluded.collapsed_topics,
		show_unread_only = excluded.show_unread_only;`

	if _, err := r.db.ExecContext(ctx, q,
		prefs.Theme, string(prefs.SortOrder), prefs.GridView, prefs.FontSizePx,
		prefs.ReadingWidth, prefs.AutoRefreshMinutes, prefs.ArticleLimit,
		string(collapsed), prefs.ShowUnreadOnly,
	); err != nil {
		return fmt.Errorf("error saving preferences: %s", err)
	}

	return nil
}
