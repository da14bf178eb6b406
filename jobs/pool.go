// Package jobs is a small data-parallel job system. Work is split into fixed-size
// grains, fanned out to persistent worker goroutines and joined through handles.
// A job may depend on other handles; it is only dispatched once they complete.
package jobs

import (
	"runtime"
	"sync"
)

// DefaultGrain is the number of items processed per grain when callers do not
// pick their own.
const DefaultGrain = 32

// grain is one contiguous range of a job handed to a worker.
type grain struct {
	job        *job
	start, end int
}

// job is a scheduled unit of parallel work waiting for its dependencies.
type job struct {
	handle *Handle
	deps   []*Handle
	n      int
	size   int
	fn     func(start, end int)
}

// Pool owns the worker goroutines. Scheduled jobs are queued until Flush (or a
// Complete on one of their handles) hands them to the dispatcher.
type Pool struct {
	numWorkers int

	// Worker pool channels
	workChan chan grain    // sends grains to workers
	stopChan chan struct{} // signals workers and dispatchers to exit
	wg       sync.WaitGroup

	mu      sync.Mutex
	queued  []*job
	running bool
}

// NewPool starts a pool with the given number of workers.
// workers <= 0 uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: workers,
		workChan:   make(chan grain, workers*4),
		stopChan:   make(chan struct{}),
		running:    true,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// worker runs in a goroutine, processing grains until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case g := <-p.workChan:
			g.job.fn(g.start, g.end)
			g.job.handle.finish()
		}
	}
}

// ScheduleParallel queues fn over [0, n) split into grains of size grainSize.
// fn receives half-open ranges and must only touch data owned by those indices.
// The job starts after every handle in deps has completed.
func (p *Pool) ScheduleParallel(n, grainSize int, fn func(start, end int), deps ...*Handle) *Handle {
	if grainSize <= 0 {
		grainSize = DefaultGrain
	}
	if n < 0 {
		n = 0
	}

	grains := (n + grainSize - 1) / grainSize
	h := newHandle(p, grains)
	j := &job{
		handle: h,
		deps:   compact(deps),
		n:      n,
		size:   grainSize,
		fn:     fn,
	}

	p.mu.Lock()
	p.queued = append(p.queued, j)
	p.mu.Unlock()

	return h
}

// Schedule queues a single serial unit of work after deps.
func (p *Pool) Schedule(fn func(), deps ...*Handle) *Handle {
	return p.ScheduleParallel(1, 1, func(int, int) { fn() }, deps...)
}

// Combine returns a handle that completes once all of hs have completed.
func (p *Pool) Combine(hs ...*Handle) *Handle {
	return p.ScheduleParallel(0, 1, func(int, int) {}, hs...)
}

// Flush hands every queued job to the dispatcher so workers start on it
// immediately. Jobs still wait for their dependencies.
func (p *Pool) Flush() {
	p.mu.Lock()
	queued := p.queued
	p.queued = nil
	running := p.running
	p.mu.Unlock()

	for _, j := range queued {
		if !running {
			j.handle.close()
			continue
		}
		go p.dispatch(j)
	}
}

// dispatch waits for a job's dependencies and feeds its grains to the workers.
func (p *Pool) dispatch(j *job) {
	for _, d := range j.deps {
		select {
		case <-d.done:
		case <-p.stopChan:
			return
		}
	}

	if j.n == 0 {
		j.handle.close()
		return
	}

	for start := 0; start < j.n; start += j.size {
		end := min(start+j.size, j.n)
		select {
		case p.workChan <- grain{job: j, start: start, end: end}:
		case <-p.stopChan:
			return
		}
	}
}

// Close stops all workers. Handles of work that never ran stay incomplete,
// except for jobs still queued, which are released.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	queued := p.queued
	p.queued = nil
	p.mu.Unlock()

	for _, j := range queued {
		j.handle.close()
	}
	close(p.stopChan)
	p.wg.Wait()
}

func compact(deps []*Handle) []*Handle {
	out := deps[:0:0]
	for _, d := range deps {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}
