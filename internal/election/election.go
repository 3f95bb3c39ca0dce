// Package election picks the one connection that drives timed phase changes.
package election

import (
	"sort"
	"sync"
	"time"
)

// Elect returns the lowest-sorting member. ok is false for an empty set.
func Elect(members []string) (controller string, ok bool) {
	for _, m := range members {
		if m == "" {
			continue
		}
		if !ok || m < controller {
			controller, ok = m, true
		}
	}
	return controller, ok
}

// Expired reports whether d has elapsed between start and now. A non-positive
// d never expires.
func Expired(start, now time.Time, d time.Duration) bool {
	if d <= 0 || start.IsZero() {
		return false
	}
	return now.Sub(start) >= d
}

// Tracker is the live membership set of one room. The controller is
// recomputed with Elect on every change.
type Tracker struct {
	mu         sync.Mutex
	members    map[string]int // id -> open connections
	controller string
}

func NewTracker() *Tracker {
	return &Tracker{members: make(map[string]int)}
}

// Join adds a connection. The same id may join more than once; it stays a
// member until every join is matched by a Leave.
func (t *Tracker) Join(id string) (controller string, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != "" {
		t.members[id]++
	}
	return t.reelectLocked()
}

func (t *Tracker) Leave(id string) (controller string, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.members[id]; ok {
		if n <= 1 {
			delete(t.members, id)
		} else {
			t.members[id] = n - 1
		}
	}
	return t.reelectLocked()
}

func (t *Tracker) reelectLocked() (string, bool) {
	next, _ := Elect(t.membersLocked())
	changed := next != t.controller
	t.controller = next
	return next, changed
}

// Controller returns the current controller, if any member is live.
func (t *Tracker) Controller() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.controller, t.controller != ""
}

func (t *Tracker) IsController(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return id != "" && id == t.controller
}

// Members returns the live ids in sorted order.
func (t *Tracker) Members() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.membersLocked()
	sort.Strings(out)
	return out
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members)
}

func (t *Tracker) membersLocked() []string {
	out := make([]string, 0, len(t.members))
	for id := range t.members {
		out = append(out, id)
	}
	return out
}
