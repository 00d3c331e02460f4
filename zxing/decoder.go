// Package zxing adapts the gozxing barcode library to the zbarcam
// SymbolDecoder contract.
package zxing

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	zbarcam "github.com/kivy-garden/garden.zbarcam"
)

// Decoder decodes barcode symbols from luminance images using gozxing.
//
// Semantics:
//   - Each enabled symbology runs its own gozxing reader over the frame;
//     at most one symbol per symbology per frame.
//   - A reader failing to find, checksum, or parse a candidate is a valid
//     empty result ("zero symbols found"), not an error. Only non-reader
//     errors (a broken image handoff) surface as hard failures.
//   - Symbologies without a gozxing reader (e.g. PDF417) are skipped.
//
// Not safe for concurrent use: the scanner guarantees at most one decode
// in flight, and gozxing readers keep internal decode state.
type Decoder struct {
	readers map[zbarcam.SymbolType]gozxing.Reader
}

// New creates a Decoder with readers for every supported symbology.
func New() *Decoder {
	return &Decoder{
		readers: map[zbarcam.SymbolType]gozxing.Reader{
			zbarcam.SymbolQRCode:     qrcode.NewQRCodeReader(),
			zbarcam.SymbolEAN13:      oned.NewEAN13Reader(),
			zbarcam.SymbolEAN8:       oned.NewEAN8Reader(),
			zbarcam.SymbolUPCA:       oned.NewUPCAReader(),
			zbarcam.SymbolUPCE:       oned.NewUPCEReader(),
			zbarcam.SymbolCode39:     oned.NewCode39Reader(),
			zbarcam.SymbolCode93:     oned.NewCode93Reader(),
			zbarcam.SymbolCode128:    oned.NewCode128Reader(),
			zbarcam.SymbolI25:        oned.NewITFReader(),
			zbarcam.SymbolDataMatrix: datamatrix.NewDataMatrixReader(),
			zbarcam.SymbolAztec:      aztec.NewAztecReader(),
		},
	}
}

// Decode implements zbarcam.SymbolDecoder.
func (d *Decoder) Decode(img *zbarcam.LuminanceImage, types []zbarcam.SymbolType) ([]zbarcam.Symbol, error) {
	if len(types) == 0 {
		return nil, nil
	}

	bmp, err := binarize(img)
	if err != nil {
		return nil, fmt.Errorf("zxing: binarize %dx%d image: %w", img.Width, img.Height, err)
	}

	var symbols []zbarcam.Symbol
	for _, t := range types {
		reader, ok := d.readers[t]
		if !ok {
			continue
		}

		result, err := reader.Decode(bmp, nil)
		reader.Reset()
		if err != nil {
			if _, ok := err.(gozxing.ReaderException); ok {
				// No decodable candidate for this symbology in the frame.
				continue
			}
			return nil, fmt.Errorf("zxing: %s reader: %w", t, err)
		}

		symbols = append(symbols, zbarcam.Symbol{
			Type: t,
			Data: []byte(result.GetText()),
		})
	}

	return symbols, nil
}

// binarize wraps the luminance buffer as a gozxing bitmap. The Y-plane
// layout of LuminanceImage (stride == width) matches gozxing's planar YUV
// source exactly, so no pixel conversion happens here.
func binarize(img *zbarcam.LuminanceImage) (*gozxing.BinaryBitmap, error) {
	src, err := gozxing.NewPlanarYUVLuminanceSource(
		img.Pix, img.Width, img.Height,
		0, 0, img.Width, img.Height,
		false,
	)
	if err != nil {
		return nil, err
	}
	return gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
}
