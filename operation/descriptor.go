// Package operation implements the stack-automaton decoder that walks a
// batch of Tezos manager/consensus operations and renders each one as a
// sequence of (field name, field value) pairs, driving a micheline.Parser
// for the embedded Michelson expressions it encounters along the way.
package operation

// FieldKind names the wire representation of one operation field.
// fieldBranchHash and fieldOperationHash are internal-only kinds used by
// the automaton itself (the batch's branch hash, and — were this parser
// ever asked to render a single already-hashed operation — an operation
// hash), never appearing in a descriptor table below.
type FieldKind int

const (
	FieldBinary FieldKind = iota
	FieldInt
	FieldNat
	FieldFee
	FieldAmount
	FieldString
	FieldSource
	FieldPKH
	FieldPK
	FieldSR
	FieldSRC
	FieldProto
	FieldProtos
	FieldDestination
	FieldInt32
	FieldSmartEntrypoint
	FieldExpr
	FieldSoruMessages
	FieldSoruKind
	FieldPKHList
	FieldBallot
	FieldOption
	FieldTuple

	fieldBranchHash
	fieldOperationHash
)

// FieldDescriptor is one entry of an operation's field table.
type FieldDescriptor struct {
	Name    string
	Kind    FieldKind
	Skip    bool // internal bookkeeping field: parsed but never displayed
	Complex bool // hint to the UI that the rendered value needs its own screen

	// Option and DisplayNone are only meaningful when Kind == FieldOption:
	// Option is the wrapped field read when the presence byte is nonzero,
	// and DisplayNone selects whether an absent field is rendered as the
	// literal "Field unset" (true) or silently skipped (false).
	Option      *FieldDescriptor
	DisplayNone bool

	// Tuple is only meaningful when Kind == FieldTuple: the ordered list
	// of inner fields. Its end is simply the end of the slice.
	Tuple []FieldDescriptor
}

func option(name string, inner FieldDescriptor, displayNone bool) FieldDescriptor {
	f := inner
	return FieldDescriptor{Name: name, Kind: FieldOption, Option: &f, DisplayNone: displayNone}
}

func tuple(name string, fields ...FieldDescriptor) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: FieldTuple, Tuple: fields}
}

// managerOperationFields is the common prefix shared by every manager
// operation: source account, fee, two internal-only counters, and the
// storage limit.
var managerOperationFields = []FieldDescriptor{
	{Name: "Source", Kind: FieldSource},
	{Name: "Fee", Kind: FieldFee},
	{Name: "Counter", Kind: FieldNat, Skip: true},
	{Name: "Gas", Kind: FieldNat, Skip: true},
	{Name: "Storage limit", Kind: FieldNat},
}

func withManagerFields(rest ...FieldDescriptor) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(managerOperationFields)+len(rest))
	out = append(out, managerOperationFields...)
	out = append(out, rest...)
	return out
}

var proposalsFields = []FieldDescriptor{
	{Name: "Source", Kind: FieldPKH},
	{Name: "Period", Kind: FieldInt32},
	{Name: "Proposal", Kind: FieldProtos},
}

var ballotFields = []FieldDescriptor{
	{Name: "Source", Kind: FieldPKH},
	{Name: "Period", Kind: FieldInt32},
	{Name: "Proposal", Kind: FieldProto},
	{Name: "Ballot", Kind: FieldBallot},
}

var failingNoopFields = []FieldDescriptor{
	{Name: "Message", Kind: FieldBinary, Complex: true},
}

var revealFields = withManagerFields(
	FieldDescriptor{Name: "Public key", Kind: FieldPK},
)

var transactionFields = withManagerFields(
	FieldDescriptor{Name: "Amount", Kind: FieldAmount},
	FieldDescriptor{Name: "Destination", Kind: FieldDestination},
	option("Parameters", tuple("Parameters",
		FieldDescriptor{Name: "Entrypoint", Kind: FieldSmartEntrypoint},
		FieldDescriptor{Name: "Parameter", Kind: FieldExpr, Complex: true},
	), false),
)

var originationFields = withManagerFields(
	FieldDescriptor{Name: "Balance", Kind: FieldAmount},
	option("Delegate", FieldDescriptor{Name: "Delegate", Kind: FieldPKH}, true),
	FieldDescriptor{Name: "Code", Kind: FieldExpr, Complex: true},
	FieldDescriptor{Name: "Storage", Kind: FieldExpr, Complex: true},
)

var delegationFields = withManagerFields(
	option("Delegate", FieldDescriptor{Name: "Delegate", Kind: FieldPKH}, true),
)

var regGlbCstFields = withManagerFields(
	FieldDescriptor{Name: "Value", Kind: FieldExpr, Complex: true},
)

var setDepositFields = withManagerFields(
	option("Staking limit", FieldDescriptor{Name: "Staking limit", Kind: FieldAmount}, true),
)

var incPaidStgFields = withManagerFields(
	FieldDescriptor{Name: "Amount", Kind: FieldInt},
	FieldDescriptor{Name: "Destination", Kind: FieldDestination},
)

var updateCkFields = withManagerFields(
	FieldDescriptor{Name: "Public key", Kind: FieldPK},
)

var transferTckFields = withManagerFields(
	FieldDescriptor{Name: "Contents", Kind: FieldExpr, Complex: true},
	FieldDescriptor{Name: "Type", Kind: FieldExpr, Complex: true},
	FieldDescriptor{Name: "Ticketer", Kind: FieldDestination},
	FieldDescriptor{Name: "Amount", Kind: FieldNat},
	FieldDescriptor{Name: "Destination", Kind: FieldDestination},
	FieldDescriptor{Name: "Entrypoint", Kind: FieldString},
)

var soruAddMsgFields = withManagerFields(
	FieldDescriptor{Name: "Message", Kind: FieldSoruMessages},
)

var soruExeMsgFields = withManagerFields(
	FieldDescriptor{Name: "Rollup", Kind: FieldSR},
	FieldDescriptor{Name: "Commitment", Kind: FieldSRC},
	FieldDescriptor{Name: "Output proof", Kind: FieldBinary, Complex: true},
)

// Descriptor is one operation kind: its wire tag, display name and field
// table.
type Descriptor struct {
	Tag    byte
	Name   string
	Fields []FieldDescriptor
}

// Descriptors is the authoritative tag dispatch table. "SR: originate" is
// deliberately absent: its wire tag is not consistently assigned across
// the protocol versions this parser targets, so bytes claiming that tag
// fall through to the default INVALID_TAG case rather than being guessed
// at.
var Descriptors = []Descriptor{
	{5, "Proposals", proposalsFields},
	{6, "Ballot", ballotFields},
	{17, "Failing noop", failingNoopFields},
	{107, "Reveal", revealFields},
	{108, "Transaction", transactionFields},
	{109, "Origination", originationFields},
	{110, "Delegation", delegationFields},
	{111, "Register global constant", regGlbCstFields},
	{112, "Set deposit limit", setDepositFields},
	{113, "Increase paid storage", incPaidStgFields},
	{114, "Set consensus key", updateCkFields},
	{158, "Transfer ticket", transferTckFields},
	{201, "SR: send messages", soruAddMsgFields},
	{206, "SR: execute outbox message", soruExeMsgFields},
}

func findDescriptor(tag byte) (*Descriptor, bool) {
	for i := range Descriptors {
		if Descriptors[i].Tag == tag {
			return &Descriptors[i], true
		}
	}
	return nil, false
}

// smartEntrypointNames are the well-known entrypoint tags 0 through 9.
// Tag 0xFF instead introduces a length-prefixed custom name.
var smartEntrypointNames = map[byte]string{
	0: "default",
	1: "root",
	2: "do",
	3: "set_delegate",
	4: "remove_delegate",
	5: "deposit",
	6: "stake",
	7: "unstake",
	8: "finalize_unstake",
	9: "set_delegate_parameters",
}

var soruKindNames = map[byte]string{
	0: "arith",
	1: "wasm_2_0_0",
	2: "riscv",
}

var ballotNames = map[byte]string{
	0: "yay",
	1: "nay",
	2: "pass",
}
