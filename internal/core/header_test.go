package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeHeader(name string, startUS int64, rate int) TraceHeader {
	return TraceHeader{
		Name:         name,
		StartTimeUS:  startUS,
		SamplingRate: rate,
		NSamples:     100,
	}
}

func TestNewTraceHeader(t *testing.T) {
	msg := buildMessage("i4", 17, 100, 1.7e9+0.123456, 100.2, "MPU", "UU", "HHZ", "01")
	tb, err := DecodeTraceBuf2(msg)
	require.NoError(t, err)

	hdr, err := NewTraceHeader(&tb)
	require.NoError(t, err)
	assert.Equal(t, "UU.MPU.HHZ.01", hdr.Name)
	assert.Equal(t, int64(1_700_000_000_123_456), hdr.StartTimeUS)
	assert.Equal(t, 100, hdr.SamplingRate)
	assert.Equal(t, 100, hdr.NSamples)
}

func TestNewTraceHeader_NoRate(t *testing.T) {
	var tb TraceBuf2
	if _, err := NewTraceHeader(&tb); err == nil {
		t.Error("expected error for packet without a sampling rate")
	}
}

func TestTraceHeader_ToleranceTable(t *testing.T) {
	tests := []struct {
		rate    int
		deltaUS int64
		same    bool
	}{
		{100, 0, true},
		{100, 14999, true},
		{100, 15000, false},
		{100, 10000, true}, // S4
		{100, 16000, false}, // S5
		{104, 14999, true},
		{105, 4499, true},
		{105, 4500, false},
		{200, 4499, true},
		{250, 4500, false},
		{255, 2499, true},
		{500, 2500, false},
		{505, 1499, true},
		{1000, 1500, false},
		{1004, 1499, true},
	}
	for _, tc := range tests {
		old := makeHeader("UU.MPU.HHZ", 1_700_000_000_000_000, tc.rate)
		candidate := makeHeader("UU.MPU.HHZ", old.StartTimeUS+tc.deltaUS, tc.rate)
		if got := old.Same(candidate); got != tc.same {
			t.Errorf("rate %d delta %d: Same() = %v, want %v",
				tc.rate, tc.deltaUS, got, tc.same)
		}
	}
}

func TestTraceHeader_SignedDifference(t *testing.T) {
	// The comparison is candidate - stored: a candidate far in the past of
	// a stored header still lands under the tolerance.
	old := makeHeader("UU.MPU.HHZ", 1_700_000_000_000_000, 100)
	candidate := makeHeader("UU.MPU.HHZ", old.StartTimeUS-1_000_000, 100)
	assert.True(t, old.Same(candidate))
	assert.False(t, candidate.Same(old))
}

func TestTraceHeader_NameAndRateMismatch(t *testing.T) {
	a := makeHeader("UU.MPU.HHZ", 1_700_000_000_000_000, 100)
	b := makeHeader("UU.MPU.HHN", a.StartTimeUS, 100)
	assert.False(t, a.Same(b))

	c := makeHeader("UU.MPU.HHZ", a.StartTimeUS, 101)
	assert.False(t, a.Same(c))
}

func TestTraceHeader_UnclassifiedRate(t *testing.T) {
	a := makeHeader("UU.MPU.HHZ", 1_700_000_000_000_000, 2000)
	b := makeHeader("UU.MPU.HHZ", a.StartTimeUS, 2000)
	assert.False(t, a.Same(b))
}

func TestTraceHeader_Ordering(t *testing.T) {
	a := makeHeader("UU.MPU.HHZ", 1, 100)
	b := makeHeader("UU.MPU.HHZ", 2, 100)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
}
