package signer

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"
	"hash"

	"filippo.io/edwards25519"
	"github.com/dchest/blake2b"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/trilitech/tezos-ledger-parser/apdu"
)

// Blake2bHasher is the concrete Hasher used outside of a real hardware
// crypto coprocessor: a plain incremental Blake2b-256 digest. The last flag
// passed to Finalize has no effect on a software digest (there is no
// register to seal) but is kept so callers that do run against hardware can
// use the same interface unchanged.
type Blake2bHasher struct {
	h hash.Hash
}

// NewBlake2bHasher returns a Hasher ready for a fresh request.
func NewBlake2bHasher() *Blake2bHasher {
	d := &Blake2bHasher{}
	d.Init()
	return d
}

func (d *Blake2bHasher) Init() { d.h = blake2b.New256() }

func (d *Blake2bHasher) Update(data []byte) { d.h.Write(data) }

func (d *Blake2bHasher) Finalize(last bool) [32]byte {
	var out [32]byte
	copy(out[:], d.h.Sum(nil))
	return out
}

// seedFromPath derives deterministic key material for a given curve and
// derivation path. This is not a standards-track BIP32/SLIP-0010
// implementation — it exists purely so tests and a simulator can produce
// stable, reproducible signatures without real hardware-isolated key
// material.
func seedFromPath(curve apdu.CurveCode, path []uint32) []byte {
	h := sha512.New()
	fmt.Fprintf(h, "tezos-ledger-parser/signer/test-key/%d", byte(curve))
	for _, component := range path {
		fmt.Fprintf(h, "/%08x", component)
	}
	return h.Sum(nil)
}

// ReferenceSigner is a software Signer for tests and simulation: it derives
// a deterministic keypair per (curve, path) and signs with Ed25519 for the
// two Ed25519-family curves and with secp256k1 ECDSA for both secp256k1 and
// P-256, so a P-256 request does not get a P-256 signature. It is never the
// right Signer for an
// actual hardware build, where key material must never leave a secure
// element.
type ReferenceSigner struct{}

func (ReferenceSigner) Sign(curve apdu.CurveCode, path []uint32, hash [32]byte) ([]byte, error) {
	seed := seedFromPath(curve, path)
	switch curve {
	case apdu.CurveEd25519, apdu.CurveBip32Ed25519:
		scalar, err := edwards25519.NewScalar().SetBytesWithClamping(seed[:32])
		if err != nil {
			return nil, fmt.Errorf("signer: clamp ed25519 scalar: %w", err)
		}
		priv := ed25519.NewKeyFromSeed(scalar.Bytes())
		return ed25519.Sign(priv, hash[:]), nil
	case apdu.CurveSecp256k1, apdu.CurveP256:
		priv := secp256k1.PrivKeyFromBytes(seed[:32])
		sig := ecdsa.Sign(priv, hash[:])
		return sig.Serialize(), nil
	default:
		return nil, fmt.Errorf("signer: unsupported curve %s", curve)
	}
}
