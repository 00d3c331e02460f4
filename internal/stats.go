package internal

import (
	"sync/atomic"
	"time"
)

// ScannerStats is a snapshot of scanner operational state.
type ScannerStats struct {
	// FramesReceived is the total number of frames delivered by the source.
	FramesReceived uint64

	// FramesDropped counts frames that arrived while a decode was in
	// flight. Expected to be large relative to Decodes on a live camera;
	// freshness beats completeness.
	FramesDropped uint64

	// Decodes is the number of completed decode cycles.
	Decodes uint64

	// DecodeFailures counts hard decoder failures (not empty results).
	DecodeFailures uint64

	// MalformedFrames counts frames rejected by the adapter's size/format
	// contract.
	MalformedFrames uint64

	// LastDecodeAt is when the most recent decode cycle completed.
	LastDecodeAt time.Time

	// LastDecodeTime is the duration of the most recent decode cycle
	// (normalize + decode, excluding publish).
	LastDecodeTime time.Duration

	// InFlight reports whether a decode is currently running.
	InFlight bool
}

// Stats returns an operational snapshot (non-blocking, safe for concurrent
// calls). Values may be slightly stale relative to each other; acceptable
// for monitoring.
func (s *Scanner) Stats() ScannerStats {
	s.mu.Lock()
	lastAt := s.lastDecodeAt
	lastTime := s.lastDecodeTime
	s.mu.Unlock()

	return ScannerStats{
		FramesReceived:  atomic.LoadUint64(&s.framesReceived),
		FramesDropped:   atomic.LoadUint64(&s.framesDropped),
		Decodes:         atomic.LoadUint64(&s.decodes),
		DecodeFailures:  atomic.LoadUint64(&s.decodeFailures),
		MalformedFrames: atomic.LoadUint64(&s.malformedFrames),
		LastDecodeAt:    lastAt,
		LastDecodeTime:  lastTime,
		InFlight:        s.decoding.Load(),
	}
}
