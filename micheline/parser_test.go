package micheline

import (
	"testing"

	"github.com/trilitech/tezos-ledger-parser/parser"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()
	var io parser.IO
	io.Refill(input)
	obuf := make([]byte, 4096)
	io.Flush(obuf)

	p := NewParser()
	r := p.Run(&io)
	if r != parser.ResultDone {
		t.Fatalf("Run() = %s, want DONE (output so far: %q)", r, io.Written())
	}
	return string(io.Written())
}

func TestDecodeInt(t *testing.T) {
	if got, want := decode(t, []byte{0x00, 0x04}), "4"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeNegativeInt(t *testing.T) {
	// tag 0 (int), then 0x41 = sign bit set, value 1, no continuation => -1.
	if got, want := decode(t, []byte{0x00, 0x41}), "-1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeString(t *testing.T) {
	input := []byte{0x01, 0x00, 0x00, 0x00, 0x01, 'a'}
	if got, want := decode(t, input), `"a"`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeStringEscaped(t *testing.T) {
	input := []byte{0x01, 0x00, 0x00, 0x00, 0x01, '"'}
	if got, want := decode(t, input), `"\""`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeEmptySeq(t *testing.T) {
	input := []byte{0x02, 0x00, 0x00, 0x00, 0x00}
	if got, want := decode(t, input), "{}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeSeqOfTwoInts(t *testing.T) {
	// seq, len=4, two single-byte ints: 1 and 2.
	input := []byte{0x02, 0x00, 0x00, 0x00, 0x04, 0x00, 0x01, 0x00, 0x02}
	if got, want := decode(t, input), "{1;2}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeBytes(t *testing.T) {
	input := []byte{0x0A, 0x00, 0x00, 0x00, 0x01, 0xAB}
	if got, want := decode(t, input), "0xAB"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeUnit(t *testing.T) {
	// tag 3 (PRIM_0_NOANNOTS), op 11 (Unit).
	input := []byte{0x03, 0x0B}
	if got, want := decode(t, input), "Unit"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsUnitFlag(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0x03, 0x0B})
	io.Flush(make([]byte, 64))
	p := NewParser()
	if r := p.Run(&io); r != parser.ResultDone {
		t.Fatalf("got %s, want DONE", r)
	}
	if !p.IsUnit {
		t.Fatal("expected IsUnit to be true for bare Unit")
	}
}

func TestIsUnitFalseForOtherPrim(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0x03, 0x0A}) // True
	io.Flush(make([]byte, 64))
	p := NewParser()
	if r := p.Run(&io); r != parser.ResultDone {
		t.Fatalf("got %s, want DONE", r)
	}
	if p.IsUnit {
		t.Fatal("expected IsUnit to be false for True")
	}
}

func TestDecodePairStringNat(t *testing.T) {
	// tag 7 (PRIM_2_NOANNOTS), op 101 ("pair"), arg1 = string "1", arg2 = int 2.
	input := []byte{
		0x07, 0x65,
		0x01, 0x00, 0x00, 0x00, 0x01, '1',
		0x00, 0x02,
	}
	if got, want := decode(t, input), `pair "1" 2`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeNestedPairWraps(t *testing.T) {
	// pair (pair 1 2) 3: outer tag7 op101, arg1 is itself a 2-arg prim
	// (wrapped in parens because it is nested inside another prim
	// application), arg2 a plain int.
	input := []byte{
		0x07, 0x65,
		0x07, 0x65, 0x00, 0x01, 0x00, 0x02,
		0x00, 0x03,
	}
	if got, want := decode(t, input), `pair (pair 1 2) 3`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeInvalidTag(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0xFF})
	io.Flush(make([]byte, 64))
	p := NewParser()
	if r := p.Run(&io); r != parser.ResultInvalidTag {
		t.Fatalf("got %s, want INVALID_TAG", r)
	}
}

func TestDecodeInvalidOp(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0x03, 0xFF})
	io.Flush(make([]byte, 64))
	p := NewParser()
	if r := p.Run(&io); r != parser.ResultInvalidOp {
		t.Fatalf("got %s, want INVALID_OP", r)
	}
}

func TestDecodeTooDeep(t *testing.T) {
	// 50 nested 1-arg prim applications (tag 5, op 0 "parameter"); each
	// level's single argument pushes one more stack frame, so this
	// comfortably exceeds the 45-frame limit before the depth check
	// fires.
	input := make([]byte, 0, 2*50)
	for i := 0; i < 50; i++ {
		input = append(input, 0x05, 0x00)
	}
	var io parser.IO
	io.Refill(input)
	io.Flush(make([]byte, 4096))
	p := NewParser()
	if r := p.Run(&io); r != parser.ResultTooDeep {
		t.Fatalf("got %s, want TOO_DEEP", r)
	}
}

func TestStickyErrorAfterFailure(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0xFF})
	io.Flush(make([]byte, 64))
	p := NewParser()
	first := p.Run(&io)
	second := p.Step(&io)
	if first != second {
		t.Fatalf("sticky error mismatch: first=%s second=%s", first, second)
	}
}

func TestFeedMeOnShortInput(t *testing.T) {
	var io parser.IO
	io.Refill([]byte{0x00}) // int tag, but no int byte follows yet
	io.Flush(make([]byte, 64))
	p := NewParser()
	r := p.Run(&io)
	if r != parser.ResultFeedMe {
		t.Fatalf("got %s, want FEED_ME", r)
	}
	io.Refill([]byte{0x04})
	r = p.Run(&io)
	if r != parser.ResultDone {
		t.Fatalf("got %s, want DONE", r)
	}
	if string(io.Written()) != "4" {
		t.Fatalf("got %q", io.Written())
	}
}
