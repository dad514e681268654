// Package navigation keeps the portal's location history and bridges it to
// the view-state store.
package navigation

import "sync"

// History is a stack of locations with a cursor, like a browser session
// history. Push and Replace do not notify subscribers; Back and Forward do.
type History interface {
	Location() string
	Push(location string)
	Replace(location string)
	Back() bool
	Forward() bool
	Subscribe(fn func(location string)) (unsubscribe func())
}

// MemoryHistory is an in-process History.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	idx     int
	subs    map[int]func(string)
	nextSub int
}

// NewMemoryHistory starts a history at initial.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{
		entries: []string{initial},
		subs:    map[int]func(string){},
	}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.idx]
}

// Push drops any forward entries and appends location.
func (h *MemoryHistory) Push(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.idx+1], location)
	h.idx++
}

func (h *MemoryHistory) Replace(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.idx] = location
}

func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

// CanGoBack and CanGoForward drive the key hints.
func (h *MemoryHistory) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idx > 0
}

func (h *MemoryHistory) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idx < len(h.entries)-1
}

// Entries returns a copy of the stack and the cursor position.
func (h *MemoryHistory) Entries() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...), h.idx
}

func (h *MemoryHistory) Subscribe(fn func(location string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.idx + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.idx = next
	loc := h.entries[next]
	subs := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	// Listeners run outside the lock so they may read the history.
	for _, fn := range subs {
		fn(loc)
	}
	return true
}
