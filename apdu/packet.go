package apdu

import "fmt"

// PacketFlags decodes the two bits of meaning packed into P1 of a Sign or
// SignWithHash command: bit 7 marks the last packet of the message, the
// low 7 bits distinguish the first packet (0) from any continuation (1).
type PacketFlags byte

// First reports whether this is the first packet of a sign stream.
func (f PacketFlags) First() bool { return f&0x7F == 0 }

// Last reports whether this is the final packet of a sign stream.
func (f PacketFlags) Last() bool { return f&0x80 != 0 }

// Request is one already-framed APDU command.
type Request struct {
	Class byte
	Ins   Ins
	P1    byte
	P2    byte
	Data  []byte
}

// Flags returns P1 interpreted as PacketFlags, meaningful only for Sign
// and SignWithHash.
func (r Request) Flags() PacketFlags { return PacketFlags(r.P1) }

// maxBIP32Components bounds a derivation path to at most 10 components,
// well below the 255 that the wire format's one-byte count could express.
const maxBIP32Components = 10

// ParseBIP32Path reads a derivation path encoded as a one-byte component
// count (1..10) followed by that many 4-byte big-endian components. It
// returns the parsed components and the number of bytes consumed.
func ParseBIP32Path(data []byte) ([]uint32, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("apdu: empty BIP32 path")
	}
	n := int(data[0])
	if n < 1 || n > maxBIP32Components {
		return nil, 0, fmt.Errorf("apdu: BIP32 path component count %d out of range [1,%d]", n, maxBIP32Components)
	}
	need := 1 + 4*n
	if len(data) < need {
		return nil, 0, fmt.Errorf("apdu: BIP32 path truncated: need %d bytes, got %d", need, len(data))
	}
	path := make([]uint32, n)
	for i := 0; i < n; i++ {
		off := 1 + 4*i
		path[i] = uint32(data[off])<<24 | uint32(data[off+1])<<16 | uint32(data[off+2])<<8 | uint32(data[off+3])
	}
	return path, need, nil
}
