package internal

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// publisher owns the consumer-visible symbol list.
//
// Single-writer-by-construction: the list is mutated only inside closures
// executed by the Dispatcher (the UI-owned context). Everything else reads
// a mutex-guarded snapshot. Each publish captures the scanner's session
// epoch and the dispatched closure re-checks it, so a decode that completes
// after Stop(), or whose closure the UI runs only after a later Start(),
// is silently discarded (a stale result, not a failure). A plain liveness
// flag cannot tell those apart: Stop/Start would flip it back to live
// before a queued closure runs, and the old session's result would land in
// the new session's list.
type publisher struct {
	epoch *atomic.Uint64 // owned by the scanner; odd while a session runs

	mu         sync.Mutex
	dispatcher Dispatcher // swapped between sessions when scanner-owned
	symbols    []Symbol

	onSymbols func([]Symbol)
	onError   func(error)
}

func newPublisher(d Dispatcher, epoch *atomic.Uint64, onSymbols func([]Symbol), onError func(error)) *publisher {
	return &publisher{
		dispatcher: d,
		epoch:      epoch,
		onSymbols:  onSymbols,
		onError:    onError,
	}
}

// setDispatcher installs a session's dispatcher. Called only between
// sessions, when no decode is in flight.
func (p *publisher) setDispatcher(d Dispatcher) {
	p.mu.Lock()
	p.dispatcher = d
	p.mu.Unlock()
}

func (p *publisher) dispatch(fn func()) {
	p.mu.Lock()
	d := p.dispatcher
	p.mu.Unlock()
	if d == nil {
		return
	}
	d.Dispatch(fn)
}

// stale reports whether a result produced under epoch e must be discarded:
// either no session was running when it was published, or the session has
// stopped (or been replaced) since.
func (p *publisher) stale(e uint64) bool {
	return e&1 == 0 || p.epoch.Load() != e
}

// publish replaces the symbol list wholesale on the dispatcher context.
// Each detection cycle is the complete and final answer for its frame:
// an empty result clears the list, it never accumulates.
func (p *publisher) publish(symbols []Symbol, traceID string) {
	e := p.epoch.Load()
	p.dispatch(func() {
		if p.stale(e) {
			// Decode completed after stop, or the closure outlived its
			// session. Discard, not an error.
			slog.Debug("zbarcam: discarding stale result", "trace_id", traceID)
			return
		}

		p.mu.Lock()
		p.symbols = symbols
		p.mu.Unlock()

		if p.onSymbols != nil {
			p.onSymbols(symbols)
		}
	})
}

// publishError delivers a surfaced decode failure on the dispatcher
// context, subject to the same staleness check as results.
func (p *publisher) publishError(err error, traceID string) {
	e := p.epoch.Load()
	p.dispatch(func() {
		if p.stale(e) {
			slog.Debug("zbarcam: discarding stale error", "trace_id", traceID)
			return
		}
		if p.onError != nil {
			p.onError(err)
		}
	})
}

// snapshot returns a copy of the current symbol list.
// Safe to call from any goroutine.
func (p *publisher) snapshot() []Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Symbol, len(p.symbols))
	copy(out, p.symbols)
	return out
}

// SerialDispatcher is a single-goroutine FIFO Dispatcher modeling a UI main
// loop. It exists for headless use and tests; embedding applications pass
// their framework's run-on-main primitive instead.
type SerialDispatcher struct {
	mu     sync.Mutex
	queue  chan func()
	closed bool
}

// NewSerialDispatcher starts the dispatch goroutine.
func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{queue: make(chan func(), 64)}
	go func() {
		for fn := range d.queue {
			fn()
		}
	}()
	return d
}

// Dispatch schedules fn on the dispatch goroutine, FIFO. After Close,
// dispatches are dropped.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue <- fn
}

// Close stops the dispatch goroutine once queued work drains. Idempotent.
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}
