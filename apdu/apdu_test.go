package apdu

import (
	"testing"

	"github.com/trilitech/tezos-ledger-parser/parser"
)

func TestInsKnown(t *testing.T) {
	for _, ins := range []Ins{InsGetVersion, InsGetPublicKey, InsPromptPublicKey, InsSign, InsGetGitCommit, InsSignWithHash} {
		if !ins.Known() {
			t.Errorf("expected %s to be known", ins)
		}
	}
	if Ins(0x7F).Known() {
		t.Fatal("expected unknown instruction to report unknown")
	}
}

func TestParseCurveCode(t *testing.T) {
	if _, err := ParseCurveCode(0); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseCurveCode(0xFF); err == nil {
		t.Fatal("expected error for unknown curve code")
	}
}

func TestPacketFlags(t *testing.T) {
	first := PacketFlags(0x00)
	if !first.First() || first.Last() {
		t.Fatalf("got First=%v Last=%v, want First=true Last=false", first.First(), first.Last())
	}
	lastContinuation := PacketFlags(0x81)
	if lastContinuation.First() || !lastContinuation.Last() {
		t.Fatalf("got First=%v Last=%v, want First=false Last=true", lastContinuation.First(), lastContinuation.Last())
	}
}

func TestParseBIP32Path(t *testing.T) {
	data := []byte{0x02, 0x80, 0x00, 0x00, 0x2C, 0x80, 0x00, 0x06, 0xC1}
	path, n, err := ParseBIP32Path(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Fatalf("got consumed=%d, want %d", n, len(data))
	}
	want := []uint32{0x8000002C, 0x800006C1}
	if len(path) != len(want) || path[0] != want[0] || path[1] != want[1] {
		t.Fatalf("got %#x, want %#x", path, want)
	}
}

func TestParseBIP32PathTruncated(t *testing.T) {
	if _, _, err := ParseBIP32Path([]byte{0x02, 0x00}); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestParseBIP32PathCountOutOfRange(t *testing.T) {
	if _, _, err := ParseBIP32Path([]byte{0x00}); err == nil {
		t.Fatal("expected error for zero-component path")
	}
	if _, _, err := ParseBIP32Path([]byte{0x0B}); err == nil {
		t.Fatal("expected error for over-long path")
	}
}

func TestFromParseResult(t *testing.T) {
	if got := FromParseResult(parser.ResultTooDeep); got != SWParseError {
		t.Fatalf("got %s, want EXC_PARSE_ERROR", got)
	}
	if got := FromParseResult(parser.ResultInvalidState); got != SWUnexpectedState {
		t.Fatalf("got %s, want EXC_UNEXPECTED_STATE", got)
	}
}

func TestStatusWordBytes(t *testing.T) {
	b := SWOK.Bytes()
	if b[0] != 0x90 || b[1] != 0x00 {
		t.Fatalf("got %#x, want [0x90 0x00]", b)
	}
}
