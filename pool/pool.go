// Package pool implements the TaskPool capability the engine consumes for
// all parallel sections: force accumulation, integration, reaction
// proposal, and wrap passes. Workers are spawned once and persist until
// Stop is called, following the teacher's persistent-worker pattern
// (game/parallel.go's chunk-and-WaitGroup phases, generalized into a
// reusable channel-backed pool).
package pool

import (
	"math/rand"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// WorkerRand is the per-worker random state (spec §5: "a PRNG is
// maintained per worker (thread-local) and seeded from a process seed
// plus the worker index"). Uniform and Normal wrap the same underlying
// *rand.Rand source through gonum's distuv distributions so callers never
// hand-roll Box–Muller.
type WorkerRand struct {
	Source  *rand.Rand
	Uniform distuv.Uniform
	Normal  distuv.Normal
}

func newWorkerRand(seed int64) *WorkerRand {
	src := rand.New(rand.NewSource(seed))
	return &WorkerRand{
		Source:  src,
		Uniform: distuv.Uniform{Min: 0, Max: 1, Src: src},
		Normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// task is a unit of work submitted to the pool; fn receives the index of
// the worker goroutine executing it, mirroring ctpl's "functor receives
// the running thread's id" convention.
type task struct {
	fn   func(workerID int)
	done *Future
}

// Future is returned by Submit and resolves once its task has run.
type Future struct {
	wg sync.WaitGroup
}

// Wait blocks until the task backing this future has completed.
func (f *Future) Wait() { f.wg.Wait() }

// TaskPool is a fixed-size, persistent worker pool. Tasks are
// fire-and-forget closures; the caller waits on the returned Future(s)
// before moving to the next phase (spec §5).
type TaskPool struct {
	workers []*WorkerRand
	tasks   chan task
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex
}

// New creates a TaskPool with n workers (n<=0 defaults to GOMAXPROCS),
// each seeded deterministically from seed+workerIndex.
func New(n int, seed int64) *TaskPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &TaskPool{
		workers: make([]*WorkerRand, n),
		tasks:   make(chan task, n*4),
	}
	for i := range p.workers {
		p.workers[i] = newWorkerRand(seed + int64(i))
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return p
}

func (p *TaskPool) run(workerID int) {
	defer p.wg.Done()
	for t := range p.tasks {
		t.fn(workerID)
		t.done.wg.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *TaskPool) NumWorkers() int { return len(p.workers) }

// Rand returns the per-worker RNG state for workerID. Task closures index
// into this with the workerID they are called with.
func (p *TaskPool) Rand(workerID int) *WorkerRand { return p.workers[workerID] }

// Submit enqueues fn and returns a Future that resolves once it runs.
func (p *TaskPool) Submit(fn func(workerID int)) *Future {
	f := &Future{}
	f.wg.Add(1)
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		f.wg.Done()
		return f
	}
	p.tasks <- task{fn: fn, done: f}
	return f
}

// ParallelRange splits [0, n) into roughly equal contiguous ranges (one
// per worker) and invokes op(workerID, start, end) for each, waiting for
// all ranges to finish before returning. Iteration order within a range
// is the caller's responsibility; across ranges it is unspecified (spec
// §4.1, §5).
func (p *TaskPool) ParallelRange(n int, op func(workerID, start, end int)) {
	if n <= 0 {
		return
	}
	numWorkers := len(p.workers)
	chunk := (n + numWorkers - 1) / numWorkers

	futures := make([]*Future, 0, numWorkers)
	for w := 0; w < numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		futures = append(futures, p.Submit(func(workerID int) {
			op(workerID, start, end)
		}))
	}
	for _, f := range futures {
		f.Wait()
	}
}

// Stop drains pending tasks and joins all workers. The pool must not be
// used afterwards.
func (p *TaskPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	close(p.tasks)
	p.wg.Wait()
}
