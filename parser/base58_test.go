package parser

import "testing"

func TestBase58CheckTz1(t *testing.T) {
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}
	s, err := Base58Check("tz1", payload)
	if err != nil {
		t.Fatal(err)
	}
	if s[:3] != "tz1" {
		t.Fatalf("got %q, want tz1 prefix", s)
	}
}

func TestBase58CheckWrongLength(t *testing.T) {
	if _, err := Base58Check("tz1", make([]byte, 19)); err == nil {
		t.Fatal("expected error for wrong payload length")
	}
}

func TestBase58CheckUnknownPrefix(t *testing.T) {
	if _, err := Base58Check("zz9", make([]byte, 1)); err == nil {
		t.Fatal("expected error for unknown prefix")
	}
}

func TestFormatPKH(t *testing.T) {
	data := append([]byte{0}, make([]byte, 20)...)
	s, err := FormatPKH(data)
	if err != nil {
		t.Fatal(err)
	}
	if s[:3] != "tz1" {
		t.Fatalf("got %q", s)
	}
}

func TestFormatAddressImplicit(t *testing.T) {
	data := append([]byte{0, 1}, make([]byte, 20)...)
	s, err := FormatAddress(data)
	if err != nil {
		t.Fatal(err)
	}
	if s[:3] != "tz2" {
		t.Fatalf("got %q", s)
	}
}

func TestFormatAddressKT1(t *testing.T) {
	data := make([]byte, 22)
	data[0] = 1
	s, err := FormatAddress(data)
	if err != nil {
		t.Fatal(err)
	}
	if s[:3] != "KT1" {
		t.Fatalf("got %q", s)
	}
}

func TestFormatAddressBadPadding(t *testing.T) {
	data := make([]byte, 22)
	data[0] = 1
	data[21] = 1
	if _, err := FormatAddress(data); err == nil {
		t.Fatal("expected padding error")
	}
}

func TestFormatOphAndBh(t *testing.T) {
	data := make([]byte, 32)
	if s, err := FormatOph(data); err != nil || s[:1] != "o" {
		t.Fatalf("got %q, %v", s, err)
	}
	if s, err := FormatBh(data); err != nil || s[:1] != "B" {
		t.Fatalf("got %q, %v", s, err)
	}
}

func TestMichelsonOpName(t *testing.T) {
	name, ok := MichelsonOpName(67)
	if !ok || name != "PUSH" {
		t.Fatalf("got %q, %v", name, ok)
	}
	name, ok = MichelsonOpName(7)
	if !ok || name != "Pair" {
		t.Fatalf("got %q, %v", name, ok)
	}
	if _, ok := MichelsonOpName(159); ok {
		t.Fatal("expected unknown opcode past the table")
	}
}
