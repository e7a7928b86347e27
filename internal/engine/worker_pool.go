package engine

import (
	"context"
	"sync"

	"github.com/nikhilbhat/eventformatter/internal/event"
)

// work is the unit dispatched to a worker: one event, plus an optional
// channel for the synchronous ingestion path.
type work struct {
	ev      *event.Event
	resultC chan *Result
}

// workerPool is a fixed-size goroutine pool with a bounded input queue.
type workerPool struct {
	queue   chan work
	process func(ctx context.Context, w work)
	wg      sync.WaitGroup
}

// newWorkerPool creates and starts a pool with n goroutines and queue
// capacity depth.
func newWorkerPool(ctx context.Context, n, depth int, fn func(context.Context, work)) *workerPool {
	p := &workerPool{
		queue:   make(chan work, depth),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool) run(ctx context.Context) {
	for {
		select {
		case w, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, w)
		case <-ctx.Done():
			return
		}
	}
}

// submit enqueues without blocking (returns false if full).
func (p *workerPool) submit(w work) bool {
	select {
	case p.queue <- w:
		return true
	default:
		return false
	}
}

// drain closes the queue and waits for all workers to finish.
func (p *workerPool) drain() {
	close(p.queue)
	p.wg.Wait()
}

func (p *workerPool) queueLen() int { return len(p.queue) }
func (p *workerPool) queueCap() int { return cap(p.queue) }
