package apdu

import (
	"fmt"

	"github.com/trilitech/tezos-ledger-parser/parser"
)

// StatusWord is the two-byte trailer of every APDU response.
type StatusWord uint16

const (
	SWOK                     StatusWord = 0x9000
	SWWrongParam             StatusWord = 0x6B00
	SWWrongLength            StatusWord = 0x6C00
	SWInvalidIns             StatusWord = 0x6D00
	SWClass                  StatusWord = 0x6E00
	SWWrongLengthForIns      StatusWord = 0x917E
	SWReject                 StatusWord = 0x6985
	SWParseError             StatusWord = 0x9405
	SWReferencedDataNotFound StatusWord = 0x6A88
	SWWrongValues            StatusWord = 0x6A80
	SWSecurity               StatusWord = 0x6982
	SWHIDRequired            StatusWord = 0x6983
	SWMemoryError            StatusWord = 0x9200
	SWUnexpectedState        StatusWord = 0x9001
	SWUnexpectedSignState    StatusWord = 0x9002
	SWUnknown                StatusWord = 0x90FF
)

var statusNames = map[StatusWord]string{
	SWOK:                     "SW_OK",
	SWWrongParam:             "EXC_WRONG_PARAM",
	SWWrongLength:            "EXC_WRONG_LENGTH",
	SWInvalidIns:             "EXC_INVALID_INS",
	SWClass:                  "EXC_CLASS",
	SWWrongLengthForIns:      "EXC_WRONG_LENGTH_FOR_INS",
	SWReject:                 "EXC_REJECT",
	SWParseError:             "EXC_PARSE_ERROR",
	SWReferencedDataNotFound: "EXC_REFERENCED_DATA_NOT_FOUND",
	SWWrongValues:            "EXC_WRONG_VALUES",
	SWSecurity:               "EXC_SECURITY",
	SWHIDRequired:            "EXC_HID_REQUIRED",
	SWMemoryError:            "EXC_MEMORY_ERROR",
	SWUnexpectedState:        "EXC_UNEXPECTED_STATE",
	SWUnexpectedSignState:    "EXC_UNEXPECTED_SIGN_STATE",
	SWUnknown:                "EXC_UNKNOWN",
}

func (s StatusWord) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SW(%#04x)", uint16(s))
}

// Bytes renders the status word as its two big-endian trailer bytes.
func (s StatusWord) Bytes() [2]byte {
	return [2]byte{byte(s >> 8), byte(s)}
}

// FromParseResult maps a sticky parser.Result to the status word an
// orchestrator should respond with. Only error codes are meaningful input;
// CONTINUE/DONE/FEED_ME/IM_FULL are not terminal results and have no
// status-word mapping of their own.
func FromParseResult(r parser.Result) StatusWord {
	if r == parser.ResultInvalidState {
		return SWUnexpectedState
	}
	return SWParseError
}

// FromRecoveredError remaps an unclassified panic/exception value to the
// device's generic caught-exception bucket, preserving its low 11 bits so
// distinct unclassified failures remain distinguishable in logs.
func FromRecoveredError(code int) StatusWord {
	return StatusWord(0x6800 | (code & 0x7FF))
}
