package parser

import (
	"crypto/sha256"
	"fmt"
)

// base58Alphabet is Bitcoin/Tezos' alphabet: no "0OIl" to avoid visual
// confusion on a small screen.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// prefixEntry is one row of the Base58Check prefix table: a textual
// prefix maps to a fixed binary version prefix and an exact expected
// payload length.
type prefixEntry struct {
	binary      []byte
	payloadSize int
}

// base58Prefixes is the authoritative prefix table. Binary prefixes are
// chosen so that, once the version bytes and checksum are base58-encoded
// together, the result always begins with the textual prefix.
var base58Prefixes = map[string]prefixEntry{
	// Hashes.
	"B":     {[]byte{0x01, 0x34}, 32},
	"o":     {[]byte{0x05, 0x74}, 32},
	"expr":  {[]byte{0x0d, 0x2c, 0x40, 0x1b}, 32},
	"proto": {[]byte{0x02, 0xaa}, 32},

	// Public key hashes.
	"tz1": {[]byte{0x06, 0xa1, 0x9f}, 20},
	"tz2": {[]byte{0x06, 0xa1, 0xa1}, 20},
	"tz3": {[]byte{0x06, 0xa1, 0xa4}, 20},
	"tz4": {[]byte{0x06, 0xa1, 0xa6}, 20},

	// Public keys.
	"edpk": {[]byte{0x0d, 0x0f, 0x25, 0xd9}, 32},
	"sppk": {[]byte{0x03, 0xfe, 0xe2, 0x56}, 33},
	"p2pk": {[]byte{0x03, 0xb2, 0x8b, 0x7f}, 33},
	"BLpk": {[]byte{0x06, 0x95, 0x87, 0xcc}, 48},

	// Signatures.
	"sig":   {[]byte{0x04, 0x82, 0x2b}, 64},
	"edsig": {[]byte{0x09, 0xf5, 0xcd, 0x86, 0x12}, 64},
	"spsig1": {[]byte{0x0d, 0x73, 0x65, 0x13, 0x3f}, 64},
	"p2sig": {[]byte{0x36, 0xf0, 0x2c, 0x34}, 64},
	"BLsig": {[]byte{0x28, 0xab, 0x40, 0xcf}, 96},

	// Originated/rollup addresses.
	"KT1":  {[]byte{0x02, 0x5a, 0x79}, 20},
	"txr1": {[]byte{0x01, 0x80, 0x78, 0x1f}, 20},
	"zkr1": {[]byte{0x01, 0xab, 0x54, 0xfb}, 20},

	// Smart rollup hash and, supplementing the reference table (which
	// only names "sr1" for the rollup hash itself, not the "scr1"
	// address-tag rendering the formatter dispatches to), the same
	// binary prefix under the "scr1" spelling used by the destination
	// address tag table.
	"sr1":  {[]byte{0x06, 0x7c, 0x75}, 20},
	"scr1": {[]byte{0x06, 0x7c, 0x75}, 20},

	// Smart rollup commitment hash.
	"src1": {[]byte{0x11, 0xa5, 0x86, 0x8a}, 32},
}

// Base58Check concatenates the textual prefix's binary version with
// payload, appends a four-byte double-SHA256 checksum, and base58-encodes
// the result. It fails if prefix is unknown or payload's length doesn't
// match the table's exact expectation for that prefix.
func Base58Check(prefix string, payload []byte) (string, error) {
	entry, ok := base58Prefixes[prefix]
	if !ok {
		return "", fmt.Errorf("parser: unknown base58 prefix %q", prefix)
	}
	if len(payload) != entry.payloadSize {
		return "", fmt.Errorf("parser: base58 prefix %q wants %d payload bytes, got %d",
			prefix, entry.payloadSize, len(payload))
	}

	prepared := make([]byte, 0, len(entry.binary)+len(payload)+4)
	prepared = append(prepared, entry.binary...)
	prepared = append(prepared, payload...)

	first := sha256.Sum256(prepared)
	second := sha256.Sum256(first[:])
	prepared = append(prepared, second[:4]...)

	return base58Encode(prepared), nil
}

// base58Encode is the plain (non-checksummed) base58 encoder, preserving
// leading zero bytes as leading '1' characters.
func base58Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	// log(256)/log(58) ~= 1.365; size generously like the reference's
	// TZ_BASE58_BUFFER_SIZE(l) = l*138/100+1.
	digits := make([]byte, 0, len(data)*138/100+1)
	for _, b := range data {
		carry := int(b)
		for i := 0; i < len(digits); i++ {
			carry += int(digits[i]) << 8
			digits[i] = byte(carry % 58)
			carry /= 58
		}
		for carry > 0 {
			digits = append(digits, byte(carry%58))
			carry /= 58
		}
	}

	out := make([]byte, 0, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out = append(out, base58Alphabet[0])
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, base58Alphabet[digits[i]])
	}
	return string(out)
}

// FormatPKH renders a 21-byte (tag + 20-byte hash) implicit-account
// public-key hash as tz1/tz2/tz3/tz4.
func FormatPKH(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("parser: pkh too short")
	}
	prefix, ok := map[byte]string{0: "tz1", 1: "tz2", 2: "tz3", 3: "tz4"}[data[0]]
	if !ok {
		return "", fmt.Errorf("parser: unknown pkh tag %#x", data[0])
	}
	return Base58Check(prefix, data[1:])
}

// FormatPK renders a variable-length public key (one-byte curve tag plus
// payload) as edpk/sppk/p2pk/BLpk.
func FormatPK(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("parser: pk too short")
	}
	prefix, ok := map[byte]string{0: "edpk", 1: "sppk", 2: "p2pk", 3: "BLpk"}[data[0]]
	if !ok {
		return "", fmt.Errorf("parser: unknown pk tag %#x", data[0])
	}
	return Base58Check(prefix, data[1:])
}

// FormatOph renders a 32-byte operation hash as "o...".
func FormatOph(data []byte) (string, error) {
	return Base58Check("o", data)
}

// FormatBh renders a 32-byte block hash as "B...".
func FormatBh(data []byte) (string, error) {
	return Base58Check("B", data)
}

// FormatAddress renders a 22-byte destination (tag + 20-byte body +
// padding byte, except the implicit-account case which embeds a 21-byte
// PKH directly) as tz1.../KT1/txr1/scr1/zkr1. The padding byte, when
// present, must be zero.
func FormatAddress(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("parser: address too short")
	}
	if data[0] == 0 {
		return FormatPKH(data[1:])
	}
	prefix, ok := map[byte]string{1: "KT1", 2: "txr1", 3: "scr1", 4: "zkr1"}[data[0]]
	if !ok {
		return "", fmt.Errorf("parser: unknown address tag %#x", data[0])
	}
	if len(data) < 2 {
		return "", fmt.Errorf("parser: address too short")
	}
	body := data[1 : len(data)-1]
	pad := data[len(data)-1]
	if pad != 0 {
		return "", fmt.Errorf("parser: address padding byte must be zero, got %#x", pad)
	}
	return Base58Check(prefix, body)
}
