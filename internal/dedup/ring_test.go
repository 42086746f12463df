package dedup

import (
	"testing"

	"github.com/uofuseismo/deduplicator/internal/core"
)

func header(name string, startUS int64) core.TraceHeader {
	return core.TraceHeader{
		Name:         name,
		StartTimeUS:  startUS,
		SamplingRate: 100,
		NSamples:     100,
	}
}

func TestRing_PushBackAndBack(t *testing.T) {
	r := NewRing(4)
	if _, ok := r.Back(); ok {
		t.Error("Back on empty ring should report false")
	}
	for i := int64(0); i < 3; i++ {
		r.PushBack(header("UU.MPU.HHZ", i*1_000_000))
	}
	if r.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", r.Len())
	}
	back, ok := r.Back()
	if !ok || back.StartTimeUS != 2_000_000 {
		t.Errorf("Back: got %v %v", back.StartTimeUS, ok)
	}
}

func TestRing_OverwritesOldest(t *testing.T) {
	r := NewRing(3)
	for i := int64(0); i < 5; i++ {
		r.PushBack(header("UU.MPU.HHZ", i*1_000_000))
	}
	if r.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", r.Len())
	}
	snap := r.Snapshot()
	for i, want := range []int64{2_000_000, 3_000_000, 4_000_000} {
		if snap[i].StartTimeUS != want {
			t.Errorf("Snapshot[%d]: got %d, want %d", i, snap[i].StartTimeUS, want)
		}
	}
}

func TestRing_ContainsUnderTolerance(t *testing.T) {
	r := NewRing(10)
	r.PushBack(header("UU.MPU.HHZ", 1_700_000_000_000_000))

	// 10 ms ahead at 100 Hz is within the 15 ms tolerance.
	if !r.Contains(header("UU.MPU.HHZ", 1_700_000_000_010_000)) {
		t.Error("candidate within tolerance not found")
	}
	// 16 ms ahead is new data.
	if r.Contains(header("UU.MPU.HHZ", 1_700_000_000_016_000)) {
		t.Error("candidate beyond tolerance found")
	}
	// Different channel never matches.
	if r.Contains(header("UU.MPU.HHN", 1_700_000_000_000_000)) {
		t.Error("different channel matched")
	}
}

func TestRing_Sort(t *testing.T) {
	r := NewRing(4)
	for _, us := range []int64{3_000_000, 1_000_000, 64_000_000, 2_000_000} {
		r.PushBack(header("UU.MPU.HHZ", us))
	}
	r.Sort()
	snap := r.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].StartTimeUS < snap[i-1].StartTimeUS {
			t.Fatalf("not sorted at %d: %v", i, snap)
		}
	}
	back, _ := r.Back()
	if back.StartTimeUS != 64_000_000 {
		t.Errorf("Back after sort: got %d", back.StartTimeUS)
	}
}

func TestRing_SortAfterWrap(t *testing.T) {
	r := NewRing(3)
	for _, us := range []int64{1, 2, 3, 5, 4} {
		r.PushBack(header("UU.MPU.HHZ", us*64_000_000))
	}
	r.Sort()
	snap := r.Snapshot()
	want := []int64{3 * 64_000_000, 4 * 64_000_000, 5 * 64_000_000}
	for i := range want {
		if snap[i].StartTimeUS != want[i] {
			t.Errorf("Snapshot[%d]: got %d, want %d", i, snap[i].StartTimeUS, want[i])
		}
	}
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := NewRing(0)
	r.PushBack(header("UU.MPU.HHZ", 0))
	if r.Cap() != 1 || r.Len() != 1 {
		t.Errorf("Cap/Len: got %d/%d", r.Cap(), r.Len())
	}
}
