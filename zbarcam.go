package zbarcam

import (
	"context"

	"github.com/kivy-garden/garden.zbarcam/internal"
)

// Scanner is the public interface of the detection pipeline.
//
// Lifecycle: New(cfg) → Start() → (frames flow, symbols publish) → Stop().
// A stopped scanner may be started again; configuration is immutable per
// scanner.
//
// Thread-safety: all methods are safe for concurrent use.
type Scanner interface {
	// Start begins scanning: starts the camera source and the frame
	// consume loop, then returns immediately.
	//
	// Terminal failures (camera unavailable, permission denied) are
	// returned here; once Start succeeds, no per-frame error ends the
	// session. Returns ErrAlreadyStarted on a running scanner.
	Start(ctx context.Context) error

	// Stop ends the session: stops the camera, waits for the consume loop
	// and any in-flight decode, and discards results that complete late.
	// Idempotent.
	Stop() error

	// Symbols returns a snapshot of the currently published symbol list.
	// The list is replaced wholesale on each detection cycle and cleared
	// when a cycle finds nothing: it is the complete answer for the most
	// recent decoded frame, never an accumulation.
	Symbols() []Symbol

	// Stats returns an operational snapshot (non-blocking).
	Stats() ScannerStats
}

// New validates cfg and creates a Scanner (fail-fast: nil source, nil
// decoder, or an empty type set are construction errors).
func New(cfg Config) (Scanner, error) {
	return internal.NewScanner(cfg)
}

// NewSerialDispatcher starts a headless FIFO dispatcher. Applications
// embedding the scanner in a UI framework pass the framework's
// run-on-main-thread primitive as the Dispatcher instead.
func NewSerialDispatcher() *SerialDispatcher {
	return internal.NewSerialDispatcher()
}

// Normalize converts a camera-native frame into a LuminanceImage.
// Exposed for decoder implementations and tests; the scanner calls it
// internally on every accepted frame.
func Normalize(f Frame, hint PlatformHint) (*LuminanceImage, error) {
	return internal.Normalize(f, hint)
}

// DetectPlatform maps the running OS to a PlatformHint. Call once at
// setup; pass an explicit hint when frames originate elsewhere.
func DetectPlatform() PlatformHint {
	return internal.DetectPlatform()
}
