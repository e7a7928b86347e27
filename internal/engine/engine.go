package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nikhilbhat/eventformatter/internal/config"
	"github.com/nikhilbhat/eventformatter/internal/event"
	"github.com/nikhilbhat/eventformatter/internal/formatter"
	"github.com/nikhilbhat/eventformatter/internal/metrics"
	"github.com/nikhilbhat/eventformatter/internal/sink"
)

// Result is the outcome of formatting a single event.
type Result struct {
	EventID    string       `json:"event_id"`
	DurationMs int64        `json:"duration_ms"`
	Output     event.Output `json:"output,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Engine runs events through the formatter and hands outputs to the sink.
// The compiled formatter is swapped atomically on hot-reload; everything
// else is read-only, so events process concurrently without locking.
type Engine struct {
	formatter atomic.Pointer[formatter.Formatter]
	out       sink.Sink
	pool      *workerPool
	conf      *config.EngineConf
}

// New creates an Engine using conf and starts the worker pool.
func New(ctx context.Context, f *formatter.Formatter, out sink.Sink, conf config.EngineConf) *Engine {
	e := &Engine{out: out, conf: &conf}
	e.formatter.Store(f)
	e.pool = newWorkerPool(ctx, conf.Workers, conf.QueueDepth, func(ctx context.Context, w work) {
		res := e.processEvent(ctx, w.ev)
		if w.resultC != nil {
			w.resultC <- res
		}
	})
	return e
}

// SwapFormatter atomically replaces the compiled formatter (hot-reload).
func (e *Engine) SwapFormatter(f *formatter.Formatter) {
	e.formatter.Store(f)
}

// Formatter returns the currently active formatter.
func (e *Engine) Formatter() *formatter.Formatter {
	return e.formatter.Load()
}

// ProcessSync formats an event and waits for the result.
func (e *Engine) ProcessSync(ctx context.Context, ev *event.Event) (*Result, error) {
	resultC := make(chan *Result, 1)
	if !e.pool.submit(work{ev: ev, resultC: resultC}) {
		metrics.EventsDropped.Inc()
		return nil, fmt.Errorf("event queue full (capacity %d)", e.conf.QueueDepth)
	}
	metrics.EventsEnqueued.Inc()

	timeout := time.Duration(e.conf.EventTimeoutMs) * time.Millisecond
	select {
	case res := <-resultC:
		return res, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("event processing timeout after %v", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessAsync enqueues an event for background processing. Returns false
// if the queue is full.
func (e *Engine) ProcessAsync(ev *event.Event) bool {
	if !e.pool.submit(work{ev: ev}) {
		metrics.EventsDropped.Inc()
		return false
	}
	metrics.EventsEnqueued.Inc()
	return true
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.queueCap() == 0 {
		return 0
	}
	return float64(e.pool.queueLen()) / float64(e.pool.queueCap())
}

// processEvent formats one event. A render error fails the event (no
// output reaches the sink); a sink error is logged and counted but does
// not fail the event, since the sync path still returns the output.
func (e *Engine) processEvent(ctx context.Context, ev *event.Event) *Result {
	start := time.Now()
	res := &Result{EventID: ev.ID}

	out, err := e.formatter.Load().Process(ev)
	if err != nil {
		metrics.RenderErrors.Inc()
		slog.Error("event formatting failed", "event_id", ev.ID, "err", err)
		res.Error = err.Error()
	} else {
		res.Output = out
		if err := e.out.Emit(ctx, out); err != nil {
			metrics.SinkErrors.Inc()
			slog.Error("sink emit failed", "event_id", ev.ID, "err", err)
		}
	}

	res.DurationMs = time.Since(start).Milliseconds()
	metrics.EventsProcessed.Inc()
	metrics.ProcessingDuration.Observe(float64(res.DurationMs))
	return res
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.drain()
}
