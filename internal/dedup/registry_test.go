package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uofuseismo/deduplicator/internal/core"
)

func TestEstimateCapacity(t *testing.T) {
	tests := []struct {
		name     string
		nSamples int
		rate     int
		memory   time.Duration
		want     int
	}{
		// 100 samples at 1 Hz -> 99 s packets; one hour of memory still
		// sits under the floor.
		{"floor", 100, 1, time.Hour, 1001},
		// 1 sample -> zero duration -> guarded floor.
		{"one sample", 1, 100, time.Hour, 1001},
		{"zero samples", 0, 100, time.Hour, 1001},
		// Sub-second packets round to zero duration.
		{"high rate", 100, 1000, time.Hour, 1001},
		// 3600 samples at 1 Hz -> 3599 s ~ 3599 s duration; 10 hours of
		// memory is 36000 s -> 36000/3599 = 10 packets, under the floor.
		{"long packets", 3600, 1, 10 * time.Hour, 1001},
		// 2 s packets over 3 hours: 10800/2 = 5400 over the floor.
		{"over floor", 201, 100, 3 * time.Hour, 5401},
	}
	for _, tc := range tests {
		h := core.TraceHeader{
			Name:         "UU.MPU.HHZ",
			SamplingRate: tc.rate,
			NSamples:     tc.nSamples,
		}
		if got := EstimateCapacity(h, tc.memory); got != tc.want {
			t.Errorf("%s: EstimateCapacity = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestRegistry_FirstSighting(t *testing.T) {
	g := NewRegistry(time.Hour)
	h := header("UU.MPU.HHZ", 1_700_000_000_000_000)

	assert.Equal(t, FirstSighting, g.Admit(h))
	assert.Equal(t, 1, g.Channels())

	ring := g.Ring("UU.MPU.HHZ")
	if assert.NotNil(t, ring) {
		assert.Equal(t, 1, ring.Len())
	}
}

func TestRegistry_InitialSelfMatchIsNotDuplicate(t *testing.T) {
	g := NewRegistry(time.Hour)
	h := header("UU.MPU.HHZ", 1_700_000_000_000_000)

	// The first packet must never be reported as its own duplicate.
	if got := g.Admit(h); got != FirstSighting {
		t.Fatalf("Admit: got %v, want FirstSighting", got)
	}
	// An exact resend is.
	if got := g.Admit(h); got != Duplicate {
		t.Fatalf("Admit resend: got %v, want Duplicate", got)
	}
}

func TestRegistry_DuplicateUnderTolerance(t *testing.T) {
	g := NewRegistry(time.Hour)

	first := header("UU.MPU.HHZ.01", 1_700_000_000_000_000)
	second := header("UU.MPU.HHZ.01", 1_700_000_000_010_000) // 10 ms later

	assert.Equal(t, FirstSighting, g.Admit(first))
	assert.Equal(t, Duplicate, g.Admit(second))
}

func TestRegistry_DistinctAboveTolerance(t *testing.T) {
	g := NewRegistry(time.Hour)

	first := header("UU.MPU.HHZ.01", 1_700_000_000_000_000)
	second := header("UU.MPU.HHZ.01", 1_700_000_000_016_000) // 16 ms later

	assert.Equal(t, FirstSighting, g.Admit(first))
	assert.Equal(t, Admitted, g.Admit(second))
	assert.Equal(t, 2, g.Ring("UU.MPU.HHZ.01").Len())
}

func TestRegistry_AdmissionMonotonicity(t *testing.T) {
	g := NewRegistry(time.Hour)
	h := header("UU.MPU.HHZ", 1_700_000_000_000_000)
	g.Admit(h)
	for i := 0; i < 5; i++ {
		if got := g.Admit(h); got != Duplicate {
			t.Fatalf("Admit #%d: got %v, want Duplicate", i, got)
		}
	}
}

func TestRegistry_ChannelsAreIndependent(t *testing.T) {
	g := NewRegistry(time.Hour)
	a := header("UU.MPU.HHZ", 1_700_000_000_000_000)
	b := header("UU.FORK.HHZ", 1_700_000_000_000_000)

	assert.Equal(t, FirstSighting, g.Admit(a))
	assert.Equal(t, FirstSighting, g.Admit(b))
	assert.Equal(t, 2, g.Channels())
}

func TestRegistry_OrderedInsertion(t *testing.T) {
	g := NewRegistry(time.Hour)
	base := int64(1_700_000_000_000_000)

	// One-second packets at 100 Hz: successive starts are well over the
	// 15 ms tolerance apart.
	for i := int64(0); i < 4; i++ {
		h := header("UU.MPU.HHZ", base+i*1_000_000)
		got := g.Admit(h)
		if i == 0 && got != FirstSighting {
			t.Fatalf("Admit first: got %v", got)
		}
		if i > 0 && got != Admitted {
			t.Fatalf("Admit #%d: got %v", i, got)
		}
	}
	snap := g.Ring("UU.MPU.HHZ").Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].StartTimeUS < snap[i-1].StartTimeUS {
			t.Fatalf("window out of order at %d", i)
		}
	}
}

func TestRegistry_UnknownRingIsNil(t *testing.T) {
	g := NewRegistry(time.Hour)
	assert.Nil(t, g.Ring("XX.NOPE.HHZ"))
}
