// Package apdu implements the transport-agnostic request/response mapping
// for the device's APDU surface: instruction/parameter parsing, BIP32 path
// decoding, and status-word mapping. Actual byte-socket/USB/HID framing is
// an external collaborator's job; this package only knows how to read an
// already-framed command and how to render a result as a status word.
package apdu

import "fmt"

// Class is the one class byte every command in this surface shares.
const Class = 0x80

// Ins names an instruction byte.
type Ins byte

const (
	InsGetVersion      Ins = 0x00
	InsGetPublicKey    Ins = 0x02
	InsPromptPublicKey Ins = 0x03
	InsSign            Ins = 0x04
	InsGetGitCommit    Ins = 0x09
	InsSignWithHash    Ins = 0x0F
)

var insNames = map[Ins]string{
	InsGetVersion:      "GetVersion",
	InsGetPublicKey:    "GetPublicKey",
	InsPromptPublicKey: "PromptPublicKey",
	InsSign:            "Sign",
	InsGetGitCommit:    "GetGitCommit",
	InsSignWithHash:    "SignWithHash",
}

func (i Ins) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Ins(%#02x)", byte(i))
}

// Known reports whether i is one of the instructions this surface handles.
// Anything outside this fixed, narrow set is EXC_INVALID_INS.
func (i Ins) Known() bool {
	_, ok := insNames[i]
	return ok
}

// CurveCode names a signing curve, carried in P2 on the first packet of a
// GetPublicKey/PromptPublicKey/Sign/SignWithHash command.
type CurveCode byte

const (
	CurveEd25519      CurveCode = 0
	CurveSecp256k1    CurveCode = 1
	CurveP256         CurveCode = 2
	CurveBip32Ed25519 CurveCode = 3
)

var curveNames = map[CurveCode]string{
	CurveEd25519:      "ed25519",
	CurveSecp256k1:    "secp256k1",
	CurveP256:         "p256",
	CurveBip32Ed25519: "bip32-ed25519",
}

func (c CurveCode) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CurveCode(%#02x)", byte(c))
}

// ParseCurveCode validates p2 against the known curve codes.
func ParseCurveCode(p2 byte) (CurveCode, error) {
	c := CurveCode(p2)
	if _, ok := curveNames[c]; !ok {
		return 0, fmt.Errorf("apdu: unknown curve code %#02x", p2)
	}
	return c, nil
}
