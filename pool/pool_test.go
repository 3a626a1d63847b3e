package pool

import (
	"sync/atomic"
	"testing"
)

func TestParallelRangeCoversEveryIndex(t *testing.T) {
	p := New(4, 42)
	defer p.Stop()

	const n = 1000
	seen := make([]int32, n)
	p.ParallelRange(n, func(workerID, start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestParallelRangeEmpty(t *testing.T) {
	p := New(4, 1)
	defer p.Stop()

	called := false
	p.ParallelRange(0, func(workerID, start, end int) { called = true })
	if called {
		t.Error("op should not be called for n=0")
	}
}

func TestSubmitFutureWaits(t *testing.T) {
	p := New(2, 7)
	defer p.Stop()

	var done int32
	f := p.Submit(func(workerID int) {
		atomic.StoreInt32(&done, 1)
	})
	f.Wait()
	if atomic.LoadInt32(&done) != 1 {
		t.Error("task did not run before Future.Wait returned")
	}
}

func TestWorkerRandDeterministicForSeed(t *testing.T) {
	p1 := New(1, 123)
	p2 := New(1, 123)
	defer p1.Stop()
	defer p2.Stop()

	a := p1.Rand(0).Uniform.Rand()
	b := p2.Rand(0).Uniform.Rand()
	if a != b {
		t.Errorf("same seed produced different draws: %v vs %v", a, b)
	}
}
