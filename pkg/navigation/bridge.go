package navigation

import (
	"sync"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/store"
)

// Bridge writes committed routes to a History and turns history pops into
// store events.
type Bridge struct {
	history  History
	dispatch func(store.Event)

	mu          sync.Mutex
	synced      bool
	closed      bool
	unsubscribe func()
}

// NewBridge subscribes to pops on h. dispatch receives a RoutePopped for
// every back/forward and may be called from whatever goroutine moved h.
func NewBridge(h History, dispatch func(store.Event)) *Bridge {
	b := &Bridge{history: h, dispatch: dispatch}
	b.unsubscribe = h.Subscribe(b.onPop)
	return b
}

// Apply writes a SyncHistory effect. The very first write always replaces
// so going back never lands on the unparsed startup location. A push of
// the location already shown is skipped.
func (b *Bridge) Apply(e store.SyncHistory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	loc := route.Encode(e.Route)
	log := cblog.With("component", "navigation")
	switch {
	case !b.synced || e.Replace:
		log.Debug("history replace", "location", loc)
		b.history.Replace(loc)
	case b.history.Location() == loc:
		log.Debug("history push skipped, already current", "location", loc)
	default:
		log.Debug("history push", "location", loc)
		b.history.Push(loc)
	}
	b.synced = true
}

// Close unsubscribes from the history. Later pops and syncs are ignored.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func (b *Bridge) onPop(location string) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	r := route.Decode(location)
	cblog.With("component", "navigation").Debug("history pop", "location", location, "route", r)
	b.dispatch(store.RoutePopped{Route: r})
}
