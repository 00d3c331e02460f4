package internal

import "fmt"

// gateway wraps the external symbol decoder behind a uniform contract.
//
// Responsibilities:
//   - Short-circuit an empty type set (no decode attempt, always empty).
//   - Map decoder hard failures to ErrDecodeFailure so callers can apply
//     policy; "zero symbols found" is a valid empty result, not an error.
//
// The gateway does not paper over nondeterminism inside the external
// decoder; given identical pixel bytes and type set it forwards whatever
// the decoder produces.
type gateway struct {
	decoder SymbolDecoder
	types   []SymbolType // immutable per session
}

func newGateway(decoder SymbolDecoder, types []SymbolType) *gateway {
	// Defensive copy: the enabled set is read-only to the core for the
	// whole session, regardless of what the caller does with its slice.
	owned := make([]SymbolType, len(types))
	copy(owned, types)
	return &gateway{decoder: decoder, types: owned}
}

// decode runs the external decoder over img for the session's type set.
// Returns the decoded symbols in the decoder's reported order (not stable
// across frames), or ErrDecodeFailure if the decoder itself failed.
func (g *gateway) decode(img *LuminanceImage) ([]Symbol, error) {
	if len(g.types) == 0 {
		return nil, nil
	}

	symbols, err := g.decoder.Decode(img, g.types)
	if err != nil {
		// Both errors stay in the chain: callers match ErrDecodeFailure
		// for policy and can still errors.Is/As the decoder's cause.
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return symbols, nil
}
