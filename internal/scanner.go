package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scanner is the detection scheduler: it governs how often decoding runs
// relative to frame arrival and hands results to the publisher.
//
// State machine per frame arrival: Idle → Decoding → Idle.
//   - Arrival while Decoding: the frame is dropped, never queued. Camera
//     frame rate typically exceeds achievable decode rate; dropping bounds
//     latency at the cost of completeness, the right tradeoff for a live
//     preview (the next frame arrives in well under a second).
//   - Arrival while Idle: an atomic CompareAndSwap claims the Decoding
//     state and the frame is dispatched to a short-lived worker goroutine,
//     off the frame-producing context.
//
// Provable invariant: at most one decode is in flight at all times (the
// CAS gate is the only path into Decoding).
type Scanner struct {
	source  Source
	gateway *gateway
	pub     *publisher

	hint   PlatformHint
	policy FailurePolicy

	// Lifecycle
	mu         sync.Mutex // protects cancel, dispatcher, lastDecodeAt, lastDecodeTime
	cancel     context.CancelFunc
	dispatcher Dispatcher
	ownsDisp   bool           // dispatcher is a per-session SerialDispatcher
	wg         sync.WaitGroup // consume loop
	decodeWG   sync.WaitGroup // in-flight decode worker

	// Shared flags (atomic read-modify-write, see CAS gate above)
	decoding atomic.Bool // Idle=false / Decoding=true

	// epoch identifies the session: odd while running, even while stopped,
	// advancing on every Start and Stop. The publisher compares a result's
	// capture epoch against the current one, so a result can never cross a
	// stop or a restart.
	epoch atomic.Uint64

	// Statistics (atomic for thread-safety)
	framesReceived  uint64
	framesDropped   uint64
	decodes         uint64
	decodeFailures  uint64
	malformedFrames uint64
	lastDecodeAt    time.Time
	lastDecodeTime  time.Duration
}

// NewScanner validates cfg and builds a scanner (fail-fast principle).
// Exported for the parent package's New().
func NewScanner(cfg Config) (*Scanner, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("zbarcam: camera source is required")
	}
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("zbarcam: symbol decoder is required")
	}
	if len(cfg.EnabledTypes) == 0 {
		return nil, fmt.Errorf("zbarcam: at least one symbol type must be enabled")
	}

	s := &Scanner{
		source:     cfg.Source,
		gateway:    newGateway(cfg.Decoder, cfg.EnabledTypes),
		dispatcher: cfg.Dispatcher,
		// Headless default: a SerialDispatcher per session, created in
		// Start and closed in Stop so its goroutine never outlives the
		// session.
		ownsDisp: cfg.Dispatcher == nil,
		hint:     cfg.Platform,
		policy:   cfg.FailurePolicy,
	}
	s.pub = newPublisher(cfg.Dispatcher, &s.epoch, cfg.OnSymbols, cfg.OnError)

	slog.Info("zbarcam: scanner created",
		"types", cfg.EnabledTypes,
		"platform", cfg.Platform.String(),
		"failure_policy", cfg.FailurePolicy.String(),
	)

	return s, nil
}

// Start begins scanning: it starts the camera source and spawns the frame
// consume loop. Returns ErrAlreadyStarted on a running scanner.
//
// Source start failures (device missing, permission denied) are terminal
// and returned to the caller; everything after that is per-frame and
// non-fatal.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	frames, err := s.source.Start(ctx)
	if err != nil {
		return fmt.Errorf("zbarcam: camera start: %w", err)
	}

	if s.ownsDisp {
		d := NewSerialDispatcher()
		s.dispatcher = d
		s.pub.setDispatcher(d)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.epoch.Add(1) // odd: session running

	s.wg.Add(1)
	go s.consumeLoop(ctx, frames)

	slog.Info("zbarcam: scanner started")
	return nil
}

// Stop ends the session. The epoch advances first, so an in-flight decode
// completes normally and its result is discarded by the publisher even if
// the dispatched closure runs after a later Start.
// Idempotent; safe to call while a decode is running.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		slog.Debug("zbarcam: scanner not started, nothing to stop")
		return nil
	}
	cancel := s.cancel
	s.cancel = nil
	var owned *SerialDispatcher
	if s.ownsDisp {
		owned, _ = s.dispatcher.(*SerialDispatcher)
		s.dispatcher = nil
	}
	s.mu.Unlock()

	// Advance the epoch before anything else: any result published from
	// here on belongs to a closed session and is stale by definition.
	s.epoch.Add(1)

	err := s.source.Stop()
	if err != nil {
		slog.Warn("zbarcam: camera stop failed", "error", err)
	}

	cancel()
	s.wg.Wait()
	// Let the in-flight decode (if any) run to completion so the worker
	// goroutine does not outlive the session.
	s.decodeWG.Wait()

	if owned != nil {
		// Session-owned dispatcher: drain queued work (stale by now) and
		// release its goroutine.
		owned.Close()
	}

	slog.Info("zbarcam: scanner stopped",
		"frames_received", atomic.LoadUint64(&s.framesReceived),
		"frames_dropped", atomic.LoadUint64(&s.framesDropped),
		"decodes", atomic.LoadUint64(&s.decodes),
	)

	if err != nil {
		return fmt.Errorf("zbarcam: camera stop: %w", err)
	}
	return nil
}

// Symbols returns a snapshot of the currently published symbol list.
// Replaced wholesale on each detection cycle; empty when the last cycle
// found nothing.
func (s *Scanner) Symbols() []Symbol {
	return s.pub.snapshot()
}

// consumeLoop subscribes to the camera frame channel and feeds the
// scheduler. Exits on context cancellation or channel close.
func (s *Scanner) consumeLoop(ctx context.Context, frames <-chan Frame) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				slog.Debug("zbarcam: frame channel closed")
				return
			}
			s.onFrame(f)
		}
	}
}

// onFrame is the scheduler's frame-arrival event. Non-blocking: either the
// CAS claims the decode slot and a worker is dispatched, or the frame is
// dropped.
func (s *Scanner) onFrame(f Frame) {
	atomic.AddUint64(&s.framesReceived, 1)

	if !s.decoding.CompareAndSwap(false, true) {
		atomic.AddUint64(&s.framesDropped, 1)
		slog.Debug("zbarcam: dropping frame, decode in flight",
			"seq", f.Seq,
			"trace_id", f.TraceID,
		)
		return
	}

	s.decodeWG.Add(1)
	go s.decodeFrame(f)
}

// decodeFrame is the worker: normalize → decode → publish, then back to
// Idle. Runs entirely on its own goroutine; the only cross-context hop is
// the final publish through the dispatcher.
func (s *Scanner) decodeFrame(f Frame) {
	defer s.decodeWG.Done()
	defer s.decoding.Store(false)

	started := time.Now()

	img, err := Normalize(f, s.hint)
	if err != nil {
		atomic.AddUint64(&s.malformedFrames, 1)
		slog.Warn("zbarcam: skipping malformed frame",
			"seq", f.Seq,
			"trace_id", f.TraceID,
			"error", err,
		)
		return
	}

	symbols, err := s.gateway.decode(img)
	atomic.AddUint64(&s.decodes, 1)

	if err != nil {
		atomic.AddUint64(&s.decodeFailures, 1)
		if s.policy == FailureSurface {
			slog.Warn("zbarcam: decode failed, surfacing",
				"seq", f.Seq,
				"trace_id", f.TraceID,
				"error", err,
			)
			s.pub.publishError(err, f.TraceID)
			return
		}
		// Default policy: a failed decode is indistinguishable from an
		// empty frame to the consumer; the diagnostic lives in the log.
		slog.Warn("zbarcam: decode failed, treating as empty",
			"seq", f.Seq,
			"trace_id", f.TraceID,
			"error", err,
		)
		symbols = nil
	}

	elapsed := time.Since(started)
	s.mu.Lock()
	s.lastDecodeAt = time.Now()
	s.lastDecodeTime = elapsed
	s.mu.Unlock()

	if len(symbols) > 0 {
		slog.Debug("zbarcam: symbols detected",
			"seq", f.Seq,
			"trace_id", f.TraceID,
			"count", len(symbols),
			"decode_time", elapsed,
		)
	}

	s.pub.publish(symbols, f.TraceID)
}
