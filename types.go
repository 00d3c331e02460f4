package zbarcam

import "github.com/kivy-garden/garden.zbarcam/internal"

// Types are re-exported from the internal package to keep the
// implementation hidden while sharing one set of definitions.
// See internal/types.go for full documentation.

// Frame is a camera-native video frame.
type Frame = internal.Frame

// PixelFormat identifies the camera-native pixel layout of a Frame.
type PixelFormat = internal.PixelFormat

// Camera-native pixel formats.
const (
	FormatGray8  = internal.FormatGray8
	FormatRGB24  = internal.FormatRGB24
	FormatBGR24  = internal.FormatBGR24
	FormatRGBA32 = internal.FormatRGBA32
	FormatBGRA32 = internal.FormatBGRA32
)

// LuminanceImage is the canonical single-channel decoder input.
type LuminanceImage = internal.LuminanceImage

// SymbolType identifies a barcode symbology.
type SymbolType = internal.SymbolType

// Supported symbology identifiers.
const (
	SymbolQRCode     = internal.SymbolQRCode
	SymbolEAN13      = internal.SymbolEAN13
	SymbolEAN8       = internal.SymbolEAN8
	SymbolUPCA       = internal.SymbolUPCA
	SymbolUPCE       = internal.SymbolUPCE
	SymbolCode39     = internal.SymbolCode39
	SymbolCode93     = internal.SymbolCode93
	SymbolCode128    = internal.SymbolCode128
	SymbolI25        = internal.SymbolI25
	SymbolDataMatrix = internal.SymbolDataMatrix
	SymbolAztec      = internal.SymbolAztec
	SymbolPDF417     = internal.SymbolPDF417
)

// Symbol is one decoded barcode: symbology plus raw payload bytes.
type Symbol = internal.Symbol

// SymbolDecoder is the external decode capability consumed by the scanner.
type SymbolDecoder = internal.SymbolDecoder

// Source is the camera collaborator.
type Source = internal.Source

// Dispatcher is the UI dispatch primitive.
type Dispatcher = internal.Dispatcher

// SerialDispatcher is a single-goroutine FIFO Dispatcher for headless use.
type SerialDispatcher = internal.SerialDispatcher

// PlatformHint describes the platform camera frames originate from.
type PlatformHint = internal.PlatformHint

// Platform hints for Normalize's encoder-quirk corrections.
const (
	PlatformGeneric = internal.PlatformGeneric
	PlatformAndroid = internal.PlatformAndroid
	PlatformIOS     = internal.PlatformIOS
)

// FailurePolicy selects how hard decoder failures are treated.
type FailurePolicy = internal.FailurePolicy

// Decode failure policies.
const (
	FailureTreatEmpty = internal.FailureTreatEmpty
	FailureSurface    = internal.FailureSurface
)

// Config configures a scanning session.
type Config = internal.Config

// ScannerStats is a snapshot of scanner operational state.
type ScannerStats = internal.ScannerStats

// Sentinel errors. See internal/types.go for the taxonomy.
var (
	ErrMalformedFrame = internal.ErrMalformedFrame
	ErrDecodeFailure  = internal.ErrDecodeFailure
	ErrAlreadyStarted = internal.ErrAlreadyStarted
)
