package core

import (
	"math"

	"github.com/uofuseismo/deduplicator/internal/log"
)

// Tolerances, in microseconds, under which two start times from the same
// channel are the same packet. Binned by sampling rate.
const (
	toleranceBelow105  = 15000
	toleranceBelow255  = 4500
	toleranceBelow505  = 2500
	toleranceBelow1005 = 1500
)

// TraceHeader is the compact fingerprint of a packet used by the
// deduplication window.
type TraceHeader struct {
	// Name is the canonical channel identifier, e.g. "UU.MPU.HHZ.01".
	Name string
	// StartTimeUS is the start time rounded to the nearest microsecond.
	StartTimeUS int64
	// SamplingRate is the sampling rate rounded to the nearest Hz.
	SamplingRate int
	// NSamples sizes new circular buffers; it plays no part in equality.
	NSamples int
}

// NewTraceHeader derives a fingerprint from a decoded packet.
func NewTraceHeader(tb *TraceBuf2) (TraceHeader, error) {
	rate, err := tb.SamplingRate()
	if err != nil {
		return TraceHeader{}, err
	}
	return TraceHeader{
		Name:         tb.Name(),
		StartTimeUS:  int64(math.Round(tb.StartTime() * 1.e6)),
		SamplingRate: int(math.Round(rate)),
		NSamples:     tb.NumberOfSamples(),
	}, nil
}

// Before orders fingerprints by start time.
func (h TraceHeader) Before(rhs TraceHeader) bool {
	return h.StartTimeUS < rhs.StartTimeUS
}

// After is the reverse ordering, used when deciding ring insertion position.
func (h TraceHeader) After(rhs TraceHeader) bool {
	return h.StartTimeUS > rhs.StartTimeUS
}

// Same decides whether candidate is a duplicate of h. The comparison is
// against the signed difference candidate - h: the window is scanned in
// time-ascending order with h the stored header and candidate the incoming
// one, and a candidate far enough ahead of every stored header is new data.
func (h TraceHeader) Same(candidate TraceHeader) bool {
	if candidate.Name != h.Name {
		return false
	}
	if candidate.SamplingRate != h.SamplingRate {
		log.GetLogger().Warnf("Inconsistent sampling rates for: %s", h.Name)
		return false
	}
	dStartTime := candidate.StartTimeUS - h.StartTimeUS
	switch {
	case h.SamplingRate < 105:
		return dStartTime < toleranceBelow105
	case h.SamplingRate < 255:
		return dStartTime < toleranceBelow255
	case h.SamplingRate < 505:
		return dStartTime < toleranceBelow505
	case h.SamplingRate < 1005:
		return dStartTime < toleranceBelow1005
	}
	log.GetLogger().Errorf("Could not classify sampling rate: %d", h.SamplingRate)
	return false
}
