// Package dedup implements the per-channel sliding-window duplicate filter.
package dedup

import (
	"sort"

	"github.com/uofuseismo/deduplicator/internal/core"
)

// Ring is a fixed-capacity circular buffer of packet fingerprints.
// When full, the oldest entries are overwritten. The gateway loop is
// single-threaded, so the ring takes no locks.
type Ring struct {
	entries []core.TraceHeader
	start   int // index of the oldest entry
	count   int
}

// NewRing creates a ring with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		entries: make([]core.TraceHeader, capacity),
	}
}

// PushBack appends a fingerprint, evicting the oldest entry when full.
func (r *Ring) PushBack(h core.TraceHeader) {
	capacity := len(r.entries)
	if r.count < capacity {
		r.entries[(r.start+r.count)%capacity] = h
		r.count++
		return
	}
	r.entries[r.start] = h
	r.start = (r.start + 1) % capacity
}

// Contains scans the window in insertion order and reports whether the
// candidate matches any stored fingerprint under the duplicate tolerance.
func (r *Ring) Contains(candidate core.TraceHeader) bool {
	capacity := len(r.entries)
	for i := 0; i < r.count; i++ {
		if r.entries[(r.start+i)%capacity].Same(candidate) {
			return true
		}
	}
	return false
}

// Back returns the most recently pushed fingerprint.
func (r *Ring) Back() (core.TraceHeader, bool) {
	if r.count == 0 {
		return core.TraceHeader{}, false
	}
	return r.entries[(r.start+r.count-1)%len(r.entries)], true
}

// Sort reorders the live range by start time. Only out-of-order admissions
// pay for this.
func (r *Ring) Sort() {
	live := r.Snapshot()
	sort.Slice(live, func(i, j int) bool {
		return live[i].Before(live[j])
	})
	copy(r.entries, live)
	r.start = 0
}

// Snapshot copies the live range in insertion order.
func (r *Ring) Snapshot() []core.TraceHeader {
	capacity := len(r.entries)
	out := make([]core.TraceHeader, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.start+i)%capacity]
	}
	return out
}

// Len returns the number of live entries.
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.entries)
}
