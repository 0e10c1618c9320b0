package internaldefs

import (
	"testing"

	blog "github.com/MrEthical07/blogClient"
)

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := map[blog.MetricID]bool{}
	names := map[string]bool{}
	for _, d := range CounterDefs {
		if seen[d.ID] || names[d.Name] {
			t.Fatalf("duplicate definition %q", d.Name)
		}
		seen[d.ID] = true
		names[d.Name] = true
	}
	for id := blog.MetricID(0); id < blog.MetricRequestLatency; id++ {
		if !seen[id] {
			t.Fatalf("metric %d has no counter definition", id)
		}
	}
	if len(HistogramUpperBounds)+1 != len(HistogramBoundSuffix) {
		t.Fatal("bound names out of sync with bounds")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 0, 2}))
	want := [8]uint64{1, 1, 3, 3, 3, 3, 3, 3}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
