package jobs

import (
	"sync"
	"sync/atomic"
)

// Handle joins one scheduled job. A nil *Handle is valid and always complete.
type Handle struct {
	pool      *Pool
	remaining atomic.Int64
	done      chan struct{}
	once      sync.Once
}

func newHandle(p *Pool, grains int) *Handle {
	h := &Handle{pool: p, done: make(chan struct{})}
	h.remaining.Store(int64(grains))
	return h
}

// Complete flushes the pool and blocks until the job and everything it
// depends on has finished.
func (h *Handle) Complete() {
	if h == nil {
		return
	}
	h.pool.Flush()
	<-h.done
}

// IsCompleted reports whether the job has finished without blocking.
func (h *Handle) IsCompleted() bool {
	if h == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// closedChan backs Done on a nil handle.
var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Done exposes the completion channel for select loops.
func (h *Handle) Done() <-chan struct{} {
	if h == nil {
		return closedChan
	}
	return h.done
}

func (h *Handle) finish() {
	if h.remaining.Add(-1) == 0 {
		h.close()
	}
}

func (h *Handle) close() {
	h.once.Do(func() { close(h.done) })
}
