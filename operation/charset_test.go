package operation

import "testing"

func TestHexAlphabetIsLowercaseHex(t *testing.T) {
	want := "0123456789abcdef"
	if string(hexAlphabet[:]) != want {
		t.Fatalf("got %q, want %q", string(hexAlphabet[:]), want)
	}
}

func TestPrintableASCIIMatcher(t *testing.T) {
	if !printableASCII.Match('A') {
		t.Fatal("expected 'A' to match printable ASCII")
	}
	if printableASCII.Match(0x01) {
		t.Fatal("expected control byte 0x01 to be rejected")
	}
	if printableASCII.Match(0x7F) {
		t.Fatal("expected DEL (0x7F) to be rejected")
	}
}
