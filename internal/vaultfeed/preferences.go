package vaultfeed

// Bounds for the read history: once the list passes the soft cap it is
// trimmed down to the most recent TrimReadTo entries.
const (
	ReadHistoryCap = 500
	TrimReadTo     = 300
)

// Limits on how many items a single feed fetch may return.
const (
	DefaultArticleLimit = 20
	MaxArticleLimit     = 50
)

// Preferences is the user-tunable presentation state. It is loaded once at
// startup and written back whole on every change.
type Preferences struct {
	Theme              string    `json:"theme"`
	SortOrder          SortOrder `json:"sortOrder"`
	GridView           bool      `json:"gridView"`
	FontSizePx         int       `json:"fontSizePx"`
	ReadingWidth       string    `json:"readingWidth"`
	AutoRefreshMinutes int       `json:"autoRefreshMinutes"`
	ArticleLimit       int       `json:"articleLimit"`
	CollapsedTopics    []string  `json:"collapsedTopics"`
	ShowUnreadOnly     bool      `json:"showUnreadOnly"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              "dark",
		SortOrder:          SortNewest,
		GridView:           false,
		FontSizePx:         17,
		ReadingWidth:       "normal",
		AutoRefreshMinutes: 0,
		ArticleLimit:       DefaultArticleLimit,
		CollapsedTopics:    []string{},
		ShowUnreadOnly:     false,
	}
}

// Normalize applies per-field fallbacks so a partially-populated or stale
// stored row never leaks nonsense into the rest of the system.
func (p Preferences) Normalize() Preferences {
	def := DefaultPreferences()

	if p.Theme == "" {
		p.Theme = def.Theme
	}
	if p.SortOrder != SortNewest && p.SortOrder != SortOldest {
		p.SortOrder = def.SortOrder
	}
	if p.FontSizePx < 10 || p.FontSizePx > 32 {
		p.FontSizePx = def.FontSizePx
	}
	switch p.ReadingWidth {
	case "narrow", "normal", "wide":
	default:
		p.ReadingWidth = def.ReadingWidth
	}
	if p.AutoRefreshMinutes < 0 {
		p.AutoRefreshMinutes = 0
	}
	if p.ArticleLimit < 1 {
		p.ArticleLimit = def.ArticleLimit
	}
	if p.ArticleLimit > MaxArticleLimit {
		p.ArticleLimit = MaxArticleLimit
	}
	if p.CollapsedTopics == nil {
		p.CollapsedTopics = []string{}
	}

	return p
}
