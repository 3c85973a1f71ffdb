package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultQueueSize bounds the pipeline's buffer. Records beyond it are
	// dropped rather than blocking a producer.
	DefaultQueueSize = 1000

	// drainGrace bounds how long Stop waits for the consumer to drain.
	drainGrace = 5 * time.Second
)

// Pipeline decouples log production (any goroutine) from log consumption
// (registered sinks). Producers only pay for the queue insertion; a single
// consumer goroutine drains the queue strictly FIFO and dispatches each
// record to every sink in registration order, so all sinks observe one total
// order across all producers.
type Pipeline struct {
	queue chan Record

	// stateMu guards stopped against a concurrent close of queue, so a
	// producer can never send on a closed channel.
	stateMu sync.RWMutex
	stopped bool

	sinksMu sync.RWMutex
	sinks   []Sink

	dropped atomic.Uint64

	done     chan struct{}
	stopOnce sync.Once

	// fallback reports the pipeline's own problems (misbehaving sinks, slow
	// drain). It writes directly to stderr, bypassing the queue.
	fallback *slog.Logger
}

// NewPipeline creates a pipeline with the given queue size and starts its
// consumer. A size of zero or less uses DefaultQueueSize.
func NewPipeline(queueSize int) *Pipeline {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	p := &Pipeline{
		queue:    make(chan Record, queueSize),
		done:     make(chan struct{}),
		fallback: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	go p.consume()
	return p
}

// RegisterSink attaches a sink. Sinks receive records in the order they were
// registered.
func (p *Pipeline) RegisterSink(s Sink) {
	p.sinksMu.Lock()
	defer p.sinksMu.Unlock()
	p.sinks = append(p.sinks, s)
}

// Enqueue appends the record to the queue without blocking. After Stop, or
// when the queue is full, the record is dropped and the dropped counter
// incremented; nothing is ever raised into the producer.
func (p *Pipeline) Enqueue(r Record) {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	if p.stopped {
		p.dropped.Add(1)
		return
	}
	select {
	case p.queue <- r:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns the number of records dropped because the pipeline was
// stopped or its queue was full.
func (p *Pipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Stop halts intake, drains the remaining queued records within a bounded
// grace period, and stops the consumer. Second and subsequent calls are
// no-ops.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		p.stateMu.Lock()
		p.stopped = true
		close(p.queue)
		p.stateMu.Unlock()

		select {
		case <-p.done:
		case <-time.After(drainGrace):
			p.fallback.Warn("log pipeline did not drain within grace period")
		}
	})
}

func (p *Pipeline) consume() {
	defer close(p.done)
	for r := range p.queue {
		p.dispatch(r)
	}
}

func (p *Pipeline) dispatch(r Record) {
	p.sinksMu.RLock()
	sinks := p.sinks
	p.sinksMu.RUnlock()

	for _, s := range sinks {
		p.deliver(s, r)
	}
}

// deliver isolates one sink: an error or panic is reported as a meta-error
// through the fallback logger and never halts the consumer or delivery to
// the other sinks.
func (p *Pipeline) deliver(s Sink, r Record) {
	defer func() {
		if rec := recover(); rec != nil {
			p.fallback.Error("log sink panicked", "panic", fmt.Sprint(rec))
		}
	}()
	if err := s.Write(r); err != nil {
		p.fallback.Error("log sink failed", "error", err)
	}
}
