package parser

import "math/big"

// numBufferBytes is the little-endian accumulator's capacity: a 256-bit cap,
// comfortably larger than any zarith value this parser needs to render.
const numBufferBytes = 32

// Num holds the decoding state for one zarith-encoded integer or natural.
// Tezos zarith numbers pack 7 payload bits per byte (6 for the first byte
// of a signed integer, whose remaining bit below the MSB is the sign), with
// the MSB of each byte set on every byte but the last.
type Num struct {
	bytes   [numBufferBytes]byte
	size    int // bits accumulated so far
	sign    bool
	stopped bool
	decimal string
}

// Reset clears a Num for reuse.
func (n *Num) Reset() {
	*n = Num{}
}

// Sign reports whether the terminating byte carried a negative sign bit.
// Only meaningful after Step has returned ResultContinue with Done true
// for an Int (not a Nat).
func (n *Num) Sign() bool { return n.sign }

// Done reports whether the terminating (MSB-clear) byte has been seen.
func (n *Num) Done() bool { return n.stopped }

// Decimal returns the accumulated value's decimal text, valid once Done.
func (n *Num) Decimal() string { return n.decimal }

// Step folds one wire byte into the accumulator. natural selects between
// parse_nat_step (all 7 bits of every byte are payload) and parse_int_step
// (the first byte reserves its top bit, after the continuation bit, as the
// sign).
//
// Trailing zero continuation bytes past the 256-bit cap are accepted
// silently; a non-zero payload past the cap fails with ResultTooLarge.
func (n *Num) Step(b byte, natural bool) Result {
	cont := b&0x80 != 0

	var v byte
	var bits int
	if n.size == 0 && !natural {
		v = b & 0x3F
		n.sign = (b>>6)&1 != 0
		bits = 6
	} else {
		v = b & 0x7F
		bits = 7
	}

	if n.size >= numBufferBytes*8 {
		if v != 0 {
			return ResultTooLarge
		}
		if !cont {
			n.stopped = true
			n.decimal = formatDecimal(n.bytes[:])
		}
		return ResultContinue
	}

	shift := uint(n.size & 7)
	lo := v << shift
	hi := v >> (8 - shift)
	if shift == 0 {
		hi = 0
	}
	loIdx := n.size / 8
	hiIdx := loIdx + 1

	n.bytes[loIdx] |= lo
	if hiIdx >= numBufferBytes {
		if hi != 0 {
			return ResultTooLarge
		}
		n.size = numBufferBytes * 8
	} else {
		n.bytes[hiIdx] = hi
		n.size += bits
	}

	if !cont {
		n.stopped = true
		n.decimal = formatDecimal(n.bytes[:(n.size+7)/8])
	}
	return ResultContinue
}

// formatDecimal renders a little-endian magnitude as decimal text. The
// magnitude is reversed into a big-endian byte slice and handed to
// math/big, which is the one place this module leans on the standard
// library rather than a pack dependency — see DESIGN.md.
func formatDecimal(littleEndian []byte) string {
	be := make([]byte, len(littleEndian))
	for i, b := range littleEndian {
		be[len(littleEndian)-1-i] = b
	}
	var v big.Int
	v.SetBytes(be)
	return v.String()
}

// StringToUint64 parses a decimal digit string into a uint64, wrapping
// silently on overflow the way a fixed-width unsigned accumulator would; it
// fails when s is empty or contains a non-digit character.
func StringToUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	var v uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	return v, true
}

// AdjustDecimal repositions the decimal point `nbDecimals` places from the
// right of the unsigned integer text in, trimming leading and trailing
// insignificant zeros. It is the shared primitive behind mutez formatting
// (nbDecimals=6) and any other fixed-point rendering.
func AdjustDecimal(in string, nbDecimals int) string {
	for len(in) > 1 && in[0] == '0' {
		in = in[1:]
	}
	if in == "0" {
		return "0"
	}

	var out []byte
	if len(in) <= nbDecimals {
		delta := nbDecimals - len(in)
		out = append(out, '0', '.')
		for i := 0; i < delta; i++ {
			out = append(out, '0')
		}
		out = append(out, in...)
	} else {
		delta := len(in) - nbDecimals
		out = append(out, in[:delta]...)
		out = append(out, '.')
		out = append(out, in[delta:]...)
	}

	end := len(out) - 1
	for end >= 0 && out[end] == '0' {
		end--
	}
	if end >= 0 && out[end] == '.' {
		end--
	}
	return string(out[:end+1])
}
