package operation

import "github.com/trilitech/tezos-ledger-parser/byteset"

// hexAlphabet is the lowercase hex digit alphabet used to render BINARY
// fields, built from byteset range matchers rather than a literal string so
// the digit order falls directly out of ForEach's ascending guarantee.
var hexAlphabet = func() [16]byte {
	var out [16]byte
	i := 0
	digits := byteset.Or(
		byteset.Ranges(byteset.Range{Lo: '0', Hi: '9'}),
		byteset.Ranges(byteset.Range{Lo: 'a', Hi: 'f'}),
	)
	digits.ForEach(func(b byte) {
		out[i] = b
		i++
	})
	return out
}()

// printableASCII matches the byte range accepted in a custom smart-contract
// entrypoint name (the 0xFF "named entrypoint" case): visible, non-control
// ASCII. A byte outside this range is rejected rather than rendered, since a
// control character in a field meant for on-screen review is far more likely
// to be an attempt to mislead the reviewer than a legitimate entrypoint name.
var printableASCII = byteset.Ranges(byteset.Range{Lo: 0x20, Hi: 0x7E})
