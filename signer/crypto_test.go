package signer

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trilitech/tezos-ledger-parser/apdu"
)

func TestBlake2bHasherIsDeterministic(t *testing.T) {
	h1 := NewBlake2bHasher()
	h1.Update([]byte("tezos"))
	sum1 := h1.Finalize(true)

	h2 := NewBlake2bHasher()
	h2.Update([]byte("tez"))
	h2.Update([]byte("os"))
	sum2 := h2.Finalize(true)

	require.Equal(t, sum1, sum2, "hashing in two chunks must match hashing in one")
}

func TestBlake2bHasherInitResets(t *testing.T) {
	h := NewBlake2bHasher()
	h.Update([]byte("first request"))
	first := h.Finalize(true)

	h.Init()
	h.Update([]byte("second request"))
	second := h.Finalize(true)

	require.NotEqual(t, first, second)
}

func TestReferenceSignerEd25519ProducesValidSignature(t *testing.T) {
	s := ReferenceSigner{}
	path := []uint32{0x8000002C, 0x800006C1}
	var hash [32]byte
	copy(hash[:], []byte("0123456789abcdef0123456789abcde"))

	sig, err := s.Sign(apdu.CurveEd25519, path, hash)
	require.NoError(t, err)
	require.Len(t, sig, ed25519.SignatureSize)

	sig2, err := s.Sign(apdu.CurveEd25519, path, hash)
	require.NoError(t, err)
	require.Equal(t, sig, sig2, "signing twice with the same path must be deterministic")
}

func TestReferenceSignerSecp256k1ProducesSignature(t *testing.T) {
	s := ReferenceSigner{}
	path := []uint32{0x8000002C, 0x80000000}
	var hash [32]byte
	copy(hash[:], []byte("0123456789abcdef0123456789abcde"))

	sig, err := s.Sign(apdu.CurveSecp256k1, path, hash)
	require.NoError(t, err)
	require.NotEmpty(t, sig)
}

func TestReferenceSignerDifferentCurvesDifferentKeys(t *testing.T) {
	path := []uint32{0x8000002C}
	seedA := seedFromPath(apdu.CurveEd25519, path)
	seedB := seedFromPath(apdu.CurveSecp256k1, path)
	require.NotEqual(t, seedA, seedB)
}
