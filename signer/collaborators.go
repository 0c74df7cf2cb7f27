package signer

import "github.com/trilitech/tezos-ledger-parser/apdu"

// Hasher computes the Blake2b-256 digest of a signing request's raw bytes,
// incrementally across packets. Init resets it for a new request; Update
// feeds the next chunk; Finalize closes the digest, with last mirroring the
// CX_LAST flag passed on the final chunk of a hardware hash API.
type Hasher interface {
	Init()
	Update(data []byte)
	Finalize(last bool) [32]byte
}

// Signer produces a signature over an already-hashed message using the key
// derived from curve and path. It is the only collaborator that ever
// touches key material.
type Signer interface {
	Sign(curve apdu.CurveCode, path []uint32, hash [32]byte) ([]byte, error)
}

// Display streams human-readable (field name, value) pairs to the device
// screen and collects the user's accept/reject decision. StreamPush reports
// how many bytes of value it was able to accept before the screen filled.
// The Orchestrator does not use that count: it always discards the whole
// staged value after a push, so bytes a Display did not accept are not
// pushed again.
type Display interface {
	StreamPush(name, value string, complex bool) (int, error)
}
