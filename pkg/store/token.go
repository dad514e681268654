package store

import (
	"fmt"
	"sync/atomic"
)

// Lane groups operations that supersede each other. Starting an operation
// cancels whatever was in flight in the same lane.
type Lane int

const (
	LaneStartup Lane = iota
	LaneEnv
	LaneSubview
	LaneMutation
	LaneConfig
	numLanes
)

func (l Lane) String() string {
	switch l {
	case LaneStartup:
		return "startup"
	case LaneEnv:
		return "env"
	case LaneSubview:
		return "subview"
	case LaneMutation:
		return "mutation"
	case LaneConfig:
		return "config"
	}
	return fmt.Sprintf("lane(%d)", int(l))
}

// Token is the cancellation token of one asynchronous operation. The effect
// runner carries it back on the completion event and the reducer drops the
// event when the token was cancelled in the meantime.
type Token struct {
	id        uint64
	lane      Lane
	cancelled atomic.Bool
}

func newToken(id uint64, lane Lane) *Token {
	return &Token{id: id, lane: lane}
}

func (t *Token) ID() uint64 { return t.id }

func (t *Token) Lane() Lane { return t.lane }

// Cancel marks the operation superseded. Safe from any goroutine.
func (t *Token) Cancel() {
	if t != nil {
		t.cancelled.Store(true)
	}
}

// Cancelled reports whether a newer operation superseded this one.
func (t *Token) Cancelled() bool {
	return t == nil || t.cancelled.Load()
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", t.lane, t.id)
}
