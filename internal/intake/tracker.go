// Package intake accepts traffic and ownship reports over HTTP and feeds
// them to the alerter.
package intake

import (
	"sync"
	"time"

	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

// Tracker remembers the last reported ownship state. Traffic reports that
// carry no ownship of their own are announced relative to it.
type Tracker struct {
	mu      sync.RWMutex
	own     traffic.Ownship
	known   bool
	updated time.Time
}

// NewTracker creates a tracker with no known ownship.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update records own as the current ownship state.
func (t *Tracker) Update(own traffic.Ownship) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.own = own
	t.known = true
	t.updated = time.Now()
}

// Current returns the last ownship state and whether one was ever reported.
func (t *Tracker) Current() (traffic.Ownship, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.own, t.known
}

// Age returns the time since the last update, or zero if there was none.
func (t *Tracker) Age() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.known {
		return 0
	}
	return time.Since(t.updated)
}
