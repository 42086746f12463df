package dedup

import (
	"math"
	"time"

	"github.com/uofuseismo/deduplicator/internal/core"
	"github.com/uofuseismo/deduplicator/internal/log"
)

// AdmitResult classifies one packet against its channel's window.
type AdmitResult int

const (
	// FirstSighting is the first packet ever seen on a channel.
	FirstSighting AdmitResult = iota
	// Admitted is a new, non-duplicate packet on a known channel.
	Admitted
	// Duplicate matches a fingerprint already in the window.
	Duplicate
)

func (r AdmitResult) String() string {
	switch r {
	case FirstSighting:
		return "first-sighting"
	case Admitted:
		return "admitted"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

const minimumCapacity = 1000

// EstimateCapacity sizes a channel's window so it covers roughly memory
// seconds of data given the packet duration implied by the fingerprint.
// Zero-duration packets (one sample, or very high rates) get the floor.
func EstimateCapacity(h core.TraceHeader, memory time.Duration) int {
	rate := h.SamplingRate
	if rate < 1 {
		rate = 1
	}
	duration := math.Round(float64(h.NSamples-1) / float64(rate))
	if duration <= 0 {
		return minimumCapacity + 1
	}
	capacity := int(memory.Seconds() / duration)
	if capacity < minimumCapacity {
		capacity = minimumCapacity
	}
	return capacity + 1
}

// Registry maps channel names to their fingerprint windows. Channels are
// created on first sighting and never evicted.
type Registry struct {
	rings  map[string]*Ring
	memory time.Duration
}

// NewRegistry creates a registry whose windows cover roughly memory
// seconds of history per channel.
func NewRegistry(memory time.Duration) *Registry {
	return &Registry{
		rings:  make(map[string]*Ring),
		memory: memory,
	}
}

// Admit matches the fingerprint against its channel window and inserts it.
// The very first insertion into a fresh window must not count as its own
// duplicate, so the membership test only runs against established windows.
func (g *Registry) Admit(h core.TraceHeader) AdmitResult {
	ring, ok := g.rings[h.Name]
	if !ok {
		capacity := EstimateCapacity(h, g.memory)
		log.GetLogger().Infof("Creating new circular buffer for: %s with capacity: %d",
			h.Name, capacity)
		ring = NewRing(capacity)
		ring.PushBack(h)
		g.rings[h.Name] = ring
		return FirstSighting
	}
	if ring.Contains(h) {
		return Duplicate
	}
	// Typically new data arrives in order and lands at the end.
	if back, ok := ring.Back(); ok && h.After(back) {
		ring.PushBack(h)
	} else {
		ring.PushBack(h)
		ring.Sort()
	}
	return Admitted
}

// Ring returns the window for a channel, or nil when the channel is unknown.
func (g *Registry) Ring(name string) *Ring {
	return g.rings[name]
}

// Channels returns the number of channels seen so far.
func (g *Registry) Channels() int {
	return len(g.rings)
}
