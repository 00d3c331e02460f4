package internal

import "fmt"

// BT.601 integer luma weights, scaled by 256.
// Y = (77*R + 150*G + 29*B) >> 8
const (
	lumaR = 77
	lumaG = 150
	lumaB = 29
)

// Normalize converts a camera-native frame into the canonical single-channel
// luminance image consumed by the decoder.
//
// Contract:
//   - len(f.Data) must equal Width*Height*BytesPerPixel(Format), otherwise
//     ErrMalformedFrame (no partial result).
//   - The result satisfies the LuminanceImage invariant:
//     len(Pix) == Width*Height, stride == Width.
//   - Pure function of its input: no logging, no shared state, the result
//     never aliases f.Data.
//
// Platform shim: BGRA frames with PlatformIOS are reinterpreted as RGBA
// before channel reduction. This is a compatibility shim for the iOS camera
// encoder, not a color-correct conversion; decoding needs structure, not
// color accuracy.
func Normalize(f Frame, hint PlatformHint) (*LuminanceImage, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedFrame, f.Width, f.Height)
	}

	bpp := f.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: unknown pixel format %d", ErrMalformedFrame, int(f.Format))
	}

	want := f.Width * f.Height * bpp
	if len(f.Data) != want {
		return nil, fmt.Errorf("%w: %dx%d %s expects %d bytes, got %d",
			ErrMalformedFrame, f.Width, f.Height, f.Format, want, len(f.Data))
	}

	format := f.Format
	if format == FormatBGRA32 && hint == PlatformIOS {
		format = FormatRGBA32
	}

	pix := make([]byte, f.Width*f.Height)

	switch format {
	case FormatGray8:
		// Already single-channel. Copy so LuminanceImage never aliases
		// camera memory (frames are recycled by the source).
		copy(pix, f.Data)

	case FormatRGB24, FormatRGBA32:
		reduceChannels(pix, f.Data, bpp, 0, 1, 2)

	case FormatBGR24, FormatBGRA32:
		reduceChannels(pix, f.Data, bpp, 2, 1, 0)
	}

	return &LuminanceImage{Width: f.Width, Height: f.Height, Pix: pix}, nil
}

// reduceChannels collapses multi-channel pixel data to luminance.
// rOff/gOff/bOff give the channel offsets within each bpp-sized pixel.
func reduceChannels(dst, src []byte, bpp, rOff, gOff, bOff int) {
	j := 0
	for i := 0; i < len(dst); i++ {
		r := uint32(src[j+rOff])
		g := uint32(src[j+gOff])
		b := uint32(src[j+bOff])
		dst[i] = byte((lumaR*r + lumaG*g + lumaB*b) >> 8)
		j += bpp
	}
}
