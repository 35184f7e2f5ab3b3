// Package tracker maintains the read history and saved set, keyed by
// article link, with every mutation written through to the store.
package tracker

import (
	"context"
	"fmt"

	"github.com/jdholdren/vaultfeed/internal/vaultfeed"
)

// Store is the slice of the repository the tracker writes through to.
type Store interface {
	SavedLinks(ctx context.Context) ([]string, error)
	InsertSavedLink(ctx context.Context, link string) error
	DeleteSavedLink(ctx context.Context, link string) error

	ReadLinks(ctx context.Context) ([]string, error)
	AppendReadLinks(ctx context.Context, links []string) error
	TrimReadLinks(ctx context.Context, keep int) error
}

// Tracker holds the in-memory view of both link sets. Like the registry,
// it relies on the catalog for serialization.
type Tracker struct {
	store Store

	saved     map[string]bool
	readSet   map[string]bool
	readLinks []string // insertion order, oldest first
}

// Load pulls both sets out of the store.
func Load(ctx context.Context, store Store) (*Tracker, error) {
	savedLinks, err := store.SavedLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading saved links: %w", err)
	}
	readLinks, err := store.ReadLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading read links: %w", err)
	}

	t := &Tracker{
		store:     store,
		saved:     map[string]bool{},
		readSet:   map[string]bool{},
		readLinks: readLinks,
	}
	for _, l := range savedLinks {
		t.saved[l] = true
	}
	for _, l := range readLinks {
		t.readSet[l] = true
	}

	return t, nil
}

// IsRead reports read membership. Articles without a link never match.
func (t *Tracker) IsRead(link string) bool {
	return link != "" && t.readSet[link]
}

// IsSaved reports saved membership. Articles without a link never match.
func (t *Tracker) IsSaved(link string) bool {
	return link != "" && t.saved[link]
}

// SavedLinks returns the saved set as a lookup map.
func (t *Tracker) SavedLinks() map[string]bool {
	out := make(map[string]bool, len(t.saved))
	for l := range t.saved {
		out[l] = true
	}
	return out
}

// ReadLinks returns the read history, oldest first.
func (t *Tracker) ReadLinks() []string {
	out := make([]string, len(t.readLinks))
	copy(out, t.readLinks)
	return out
}

// MarkRead appends the link to the read history if absent, then enforces
// the history bound. Marking an already-read link is a no-op.
func (t *Tracker) MarkRead(ctx context.Context, link string) error {
	if link == "" || t.readSet[link] {
		return nil
	}

	if err := t.store.AppendReadLinks(ctx, []string{link}); err != nil {
		return err
	}
	t.readSet[link] = true
	t.readLinks = append(t.readLinks, link)

	return t.enforceBound(ctx)
}

// MarkAllRead batch-marks every link in the list, then enforces the bound
// once. Meant for "mark all visible as read": callers pass the links
// currently passing the filter pipeline, not the whole catalog.
func (t *Tracker) MarkAllRead(ctx context.Context, links []string) error {
	fresh := make([]string, 0, len(links))
	for _, l := range links {
		if l == "" || t.readSet[l] {
			continue
		}
		// Guard against the same link appearing twice in the batch.
		if len(fresh) > 0 && contains(fresh, l) {
			continue
		}
		fresh = append(fresh, l)
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := t.store.AppendReadLinks(ctx, fresh); err != nil {
		return err
	}
	for _, l := range fresh {
		t.readSet[l] = true
		t.readLinks = append(t.readLinks, l)
	}

	return t.enforceBound(ctx)
}

// ToggleSaved adds the link to the saved set, or removes it if already
// present. Returns whether the link is saved afterwards.
func (t *Tracker) ToggleSaved(ctx context.Context, link string) (bool, error) {
	if link == "" {
		return false, nil
	}

	if t.saved[link] {
		if err := t.store.DeleteSavedLink(ctx, link); err != nil {
			return true, err
		}
		delete(t.saved, link)
		return false, nil
	}

	if err := t.store.InsertSavedLink(ctx, link); err != nil {
		return false, err
	}
	t.saved[link] = true
	return true, nil
}

// SetSaved swaps the in-memory saved set for one already persisted, used
// by import after the storage-level replace commits.
func (t *Tracker) SetSaved(links []string) {
	t.saved = map[string]bool{}
	for _, l := range links {
		t.saved[l] = true
	}
}

// Soft cap, hard trim: the history may grow to the cap, and once it passes
// it, it is cut down to the most recent entries in one go.
func (t *Tracker) enforceBound(ctx context.Context) error {
	if len(t.readLinks) <= vaultfeed.ReadHistoryCap {
		return nil
	}

	if err := t.store.TrimReadLinks(ctx, vaultfeed.TrimReadTo); err != nil {
		return err
	}

	t.readLinks = t.readLinks[len(t.readLinks)-vaultfeed.TrimReadTo:]
	t.readSet = make(map[string]bool, len(t.readLinks))
	for _, l := range t.readLinks {
		t.readSet[l] = true
	}

	return nil
}

func contains(links []string, link string) bool {
	for _, l := range links {
		if l == link {
			return true
		}
	}
	return false
}
