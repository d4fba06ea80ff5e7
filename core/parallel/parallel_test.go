package parallel_test

import (
	"sync/atomic"
	"testing"

	"github.com/ezoic/probreg/core/parallel"
)

func TestParallelize_CoversAllItems(t *testing.T) {
	const n = 1000
	var covered [n]int32

	parallel.Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
	})

	for i, c := range covered {
		if c != 1 {
			t.Fatalf("item %d visited %d times, want exactly once", i, c)
		}
	}
}

func TestParallelize_ZeroItems(t *testing.T) {
	called := false
	parallel.Parallelize(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("worker should not run for zero items")
	}
}

func TestParallelizeWithThreshold_SmallStaysSequential(t *testing.T) {
	var calls int32
	parallel.ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 10 {
			t.Errorf("sequential path should get the full range, got [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single sequential call, got %d", calls)
	}
}

func TestParallelizeWithThreshold_LargeCoversAll(t *testing.T) {
	const n = 500
	var covered [n]int32

	parallel.ParallelizeWithThreshold(n, 50, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
	})

	for i, c := range covered {
		if c != 1 {
			t.Fatalf("item %d visited %d times, want exactly once", i, c)
		}
	}
}
