// Package internal implements the zbarcam detection pipeline.
//
// This package is INTERNAL - clients MUST use the public API in the parent
// package. Reason: allows internal refactoring without breaking changes.
package internal

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// Sentinel errors for the per-frame pipeline.
//
// Taxonomy:
//   - ErrMalformedFrame: adapter input violates the size/format invariant.
//     The frame is skipped, the pipeline continues.
//   - ErrDecodeFailure: the external symbol decoder reported a hard error
//     (NOT "zero symbols found", which is a valid empty result).
//   - ErrAlreadyStarted: Start() called on a running scanner.
//
// No per-frame error is fatal to a running session; only resource
// acquisition failures at Start() are surfaced as terminal.
var (
	ErrMalformedFrame = errors.New("zbarcam: malformed frame")
	ErrDecodeFailure  = errors.New("zbarcam: symbol decode failure")
	ErrAlreadyStarted = errors.New("zbarcam: scanner already started")
)

// PixelFormat identifies the camera-native pixel layout of a Frame.
type PixelFormat int

const (
	// FormatGray8 is single-channel 8-bit luminance (passes through Normalize).
	FormatGray8 PixelFormat = iota
	// FormatRGB24 is 3-byte-per-pixel R,G,B
	FormatRGB24
	// FormatBGR24 is 3-byte-per-pixel B,G,R
	FormatBGR24
	// FormatRGBA32 is 4-byte-per-pixel R,G,B,A
	FormatRGBA32
	// FormatBGRA32 is 4-byte-per-pixel B,G,R,A
	FormatBGRA32
)

// BytesPerPixel returns the per-pixel byte width of the format,
// or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatGray8:
		return 1
	case FormatRGB24, FormatBGR24:
		return 3
	case FormatRGBA32, FormatBGRA32:
		return 4
	default:
		return 0
	}
}

// String returns a human-readable string representation of the pixel format
func (f PixelFormat) String() string {
	switch f {
	case FormatGray8:
		return "GRAY8"
	case FormatRGB24:
		return "RGB"
	case FormatBGR24:
		return "BGR"
	case FormatRGBA32:
		return "RGBA"
	case FormatBGRA32:
		return "BGRA"
	default:
		return "unknown"
	}
}

// PlatformHint is an explicit configuration input describing the platform
// the camera frames originate from. It is resolved once at setup (never on
// the hot path) and passed into the pure Normalize function, which keeps the
// pipeline testable without a real device.
type PlatformHint int

const (
	// PlatformGeneric applies no platform corrections.
	PlatformGeneric PlatformHint = iota
	// PlatformAndroid identifies Android camera feeds.
	PlatformAndroid
	// PlatformIOS identifies iOS camera feeds. AVFoundation tags frames as
	// BGRA that decode correctly when read as RGBA; Normalize reinterprets
	// the channel order for this hint (color fidelity is irrelevant for
	// decoding, only structure matters).
	PlatformIOS
)

// String returns a human-readable string representation of the platform hint
func (p PlatformHint) String() string {
	switch p {
	case PlatformAndroid:
		return "android"
	case PlatformIOS:
		return "ios"
	default:
		return "generic"
	}
}

// DetectPlatform maps the running OS to a PlatformHint.
// Intended to be called once at setup; callers on exotic capture stacks
// should pass an explicit hint instead.
func DetectPlatform() PlatformHint {
	switch runtime.GOOS {
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	default:
		return PlatformGeneric
	}
}

// Frame is a camera-native video frame.
//
// Ownership: produced by the camera Source, consumed within one decode
// cycle and not retained. Data MUST NOT be modified after it is handed to
// the scanner (immutability contract, shared by reference).
type Frame struct {
	// Seq is a monotonic sequence number assigned by the Source.
	Seq uint64

	// Timestamp is when the frame was captured (source time).
	Timestamp time.Time

	// Width in pixels
	Width int

	// Height in pixels
	Height int

	// Format is the pixel layout of Data.
	Format PixelFormat

	// Data contains the raw pixel bytes
	// (len == Width * Height * Format.BytesPerPixel()).
	Data []byte

	// TraceID is a unique identifier for tracing a frame through the
	// decode cycle in logs.
	TraceID string
}

// LuminanceImage is a single-channel brightness-only image, the canonical
// decoder input produced by Normalize.
//
// Invariant: len(Pix) == Width*Height, stride == Width.
// Never mutated after creation.
type LuminanceImage struct {
	Width  int
	Height int
	Pix    []byte
}

// SymbolType identifies a barcode symbology.
type SymbolType string

// Supported symbology identifiers. The set a decoder actually handles is
// decoder-specific; unknown types are ignored rather than rejected.
const (
	SymbolQRCode     SymbolType = "QRCODE"
	SymbolEAN13      SymbolType = "EAN13"
	SymbolEAN8       SymbolType = "EAN8"
	SymbolUPCA       SymbolType = "UPCA"
	SymbolUPCE       SymbolType = "UPCE"
	SymbolCode39     SymbolType = "CODE39"
	SymbolCode93     SymbolType = "CODE93"
	SymbolCode128    SymbolType = "CODE128"
	SymbolI25        SymbolType = "I25"
	SymbolDataMatrix SymbolType = "DATAMATRIX"
	SymbolAztec      SymbolType = "AZTEC"
	SymbolPDF417     SymbolType = "PDF417"
)

// Symbol is one decoded barcode: symbology plus raw payload bytes.
// A value type; never mutated after the decoder produces it.
type Symbol struct {
	Type SymbolType
	Data []byte
}

// Text returns the payload as a string.
func (s Symbol) Text() string { return string(s.Data) }

// SymbolDecoder is the external decode capability, treated as a black box.
//
// Contract:
//   - img satisfies the LuminanceImage invariant.
//   - types may be empty; the call must not error for an empty set
//     (the gateway short-circuits it anyway).
//   - "no symbols found" is (empty, nil), never an error. A non-nil error
//     means the decoder itself failed.
//   - Deterministic given identical pixel bytes and type set, barring
//     nondeterminism internal to the backing library.
//
// Implementations need not be safe for concurrent use: the scanner
// guarantees at most one decode in flight.
type SymbolDecoder interface {
	Decode(img *LuminanceImage, types []SymbolType) ([]Symbol, error)
}

// Source is the camera collaborator: it emits frames on a channel and
// exposes start/stop controls.
//
// Implementations must guarantee:
//   - Start() returns immediately; frames arrive asynchronously.
//   - Frames are dropped, never queued, when the consumer lags.
//   - The channel stays open until Stop().
//   - Stop() is idempotent.
type Source interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Stop() error
}

// Dispatcher is the UI dispatch primitive: it schedules fn to run on the
// UI-owned execution context at the next opportunity, FIFO per dispatcher.
// Any single-threaded-affinity mechanism of a host UI framework satisfies
// this (e.g. a run-on-main-thread hook); SerialDispatcher is a headless
// stand-in with the same semantics.
type Dispatcher interface {
	Dispatch(fn func())
}

// FailurePolicy selects how the scanner treats a hard decoder failure.
type FailurePolicy int

const (
	// FailureTreatEmpty logs a diagnostic and publishes an empty symbol
	// list, keeping the video pipeline live. This is the default.
	FailureTreatEmpty FailurePolicy = iota
	// FailureSurface reports the failure through the OnError callback
	// (delivered on the dispatcher context) instead of publishing.
	FailureSurface
)

// String returns a human-readable string representation of the policy
func (p FailurePolicy) String() string {
	switch p {
	case FailureSurface:
		return "surface"
	default:
		return "treat-empty"
	}
}

// Config configures a scanning session. Immutable once the scanner is
// created: the enabled type set and callbacks are fixed per session.
type Config struct {
	// Source emits camera frames (required).
	Source Source

	// Decoder is the external symbol decode capability (required).
	Decoder SymbolDecoder

	// EnabledTypes is the set of symbologies to look for (required,
	// non-empty).
	EnabledTypes []SymbolType

	// Dispatcher marshals result publication onto the UI-owned context.
	// Optional: when nil the scanner runs a SerialDispatcher per session,
	// created at Start and closed at Stop. A caller-supplied dispatcher
	// is never closed by the scanner.
	Dispatcher Dispatcher

	// Platform corrects known encoder quirks in Normalize.
	// Zero value is PlatformGeneric.
	Platform PlatformHint

	// FailurePolicy selects decode-failure handling.
	// Zero value is FailureTreatEmpty.
	FailurePolicy FailurePolicy

	// OnSymbols, when set, is invoked on the dispatcher context after each
	// detection cycle replaces the symbol list.
	OnSymbols func([]Symbol)

	// OnError, when set and FailurePolicy is FailureSurface, receives hard
	// decode failures on the dispatcher context.
	OnError func(error)
}
