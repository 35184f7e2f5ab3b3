package catalog

// EventKind names what part of the state changed.
type EventKind string

const (
	EventFeeds    EventKind = "feeds"
	EventArticles EventKind = "articles"
	EventState    EventKind = "state"
	EventPrefs    EventKind = "prefs"
	EventContent  EventKind = "content"
)

// Event is a change notification. The catalog performs no rendering; a
// separate layer subscribes and reacts.
type Event struct {
	Kind EventKind `json:"kind"`
}

// Subscribe registers for change notifications. The returned cancel func
// must be called when done; events are dropped rather than block a slow
// subscriber.
func (c *Catalog) Subscribe() (<-chan Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Event, 16)
	c.subs[id] = ch

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

func (c *Catalog) notify(kind EventKind) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- Event{Kind: kind}:
		default:
		}
	}
}
