package operation

import (
	"fmt"

	"github.com/trilitech/tezos-ledger-parser/micheline"
	"github.com/trilitech/tezos-ledger-parser/parser"
)

// StackDepth is the maximum number of nested operation-parser frames.
const StackDepth = 6

// captureSize bounds the scratch buffer backing string/binary/address
// fields, sized for the longest single field this parser ever renders.
const captureSize = 256

// Step names one of the operation automaton's phases.
type Step int

const (
	StepOption Step = iota
	StepTuple
	StepMagic
	StepReadBinary
	StepBranch
	StepBatch
	StepTag
	StepSize
	StepField
	StepPrint
	StepPartialPrint
	StepReadNum
	StepReadInt32
	StepReadPK
	StepReadBytes
	StepReadString
	StepReadSmartEntrypoint
	StepReadMicheline
	StepReadSoruMessages
	StepReadSoruKind
	StepReadBallot
	StepReadProtos
	StepReadPKHList
)

// Frame is one level of the stack automaton; like micheline.Frame, only
// the fields relevant to the current Step are live.
type Frame struct {
	Step Step
	Stop int

	// TUPLE / FIELD
	tupleFields []FieldDescriptor
	tupleIndex  int
	field       *FieldDescriptor

	// OPTION
	optionField *FieldDescriptor
	displayNone bool

	// SIZE
	sizeAcc int
	sizeLen int

	// READ_NUM
	num        parser.Num
	numKind    FieldKind
	numSkip    bool
	numNatural bool

	// READ_INT32
	int32Value int32
	int32Ofs   int
	int32Skip  bool

	// READ_BYTES / READ_PK
	bytesKind FieldKind
	bytesSkip bool
	bytesOfs  int
	bytesLen  int

	// READ_STRING / READ_BINARY / READ_SMART_ENTRYPOINT / READ_SORU_KIND /
	// READ_BALLOT
	strOfs      int
	strSkip     bool
	strValidate bool

	// READ_MICHELINE
	michelineInited bool
	michelineSkip   bool
	michelineName   string
	micheline       *micheline.Parser

	// READ_PROTOS / READ_PKH_LIST / READ_SORU_MESSAGES
	listName  string
	listIndex int
	listSkip  bool

	// PRINT / PARTIAL_PRINT
	printStr string
	printOfs int

	capture [captureSize]byte
}

// Parser is the operation-batch stack automaton. Its zero value is not
// usable; construct with Init.
type Parser struct {
	stack [StackDepth]Frame
	sp    int
	err   parser.Result

	// FieldName, FieldComplex and FieldIndex describe the field that was
	// (or is being) rendered when Step/Run last returned ResultImFull or
	// ResultDone with pending output: the text already written to io by
	// the time of that return is that field's value.
	FieldName    string
	FieldComplex bool
	FieldIndex   int

	BatchIndex  int
	TotalFee    uint64
	TotalAmount uint64
	Source      [22]byte
	Destination [22]byte
	SeenReveal  bool
}

// Init prepares a Parser to decode size bytes of operation data. When
// skipMagic is true, the caller asserts the bytes begin directly with the
// branch hash rather than a leading magic byte.
func Init(size int, skipMagic bool) *Parser {
	p := &Parser{sp: 0}
	p.stack[0].Stop = size
	if !skipMagic {
		p.stack[0].Step = StepMagic
		return p
	}
	p.FieldName = "Branch"
	p.stack[0].Step = StepBranch
	p.sp = 1
	p.stack[1] = Frame{Step: StepReadBytes, bytesKind: fieldBranchHash, bytesSkip: true, bytesLen: 32}
	return p
}

func (p *Parser) top() *Frame { return &p.stack[p.sp] }

func (p *Parser) push(step Step) parser.Result {
	if p.sp >= StackDepth-1 {
		return parser.ResultTooDeep
	}
	p.sp++
	p.stack[p.sp] = Frame{Step: step}
	return parser.ResultContinue
}

func (p *Parser) pop() parser.Result {
	if p.sp == 0 {
		p.sp = -1
		return parser.ResultDone
	}
	p.sp--
	return parser.ResultContinue
}

// Done reports whether the root frame has popped (parse complete).
func (p *Parser) Done() bool { return p.sp < 0 }

// SetSize updates the total byte length the batch is expected to span. The
// caller does not generally know this length up front — operation bytes
// arrive one transport packet at a time — so it calls SetSize as each packet
// extends the known total, and fixes the true final value once the last
// packet has arrived. BATCH compares the running input offset against this
// value to decide whether another operation follows; keeping it ahead of the
// offset for every packet but the last prevents BATCH from concluding early.
func (p *Parser) SetSize(n int) { p.stack[0].Stop = n }

func (p *Parser) beginSize(sizeLen int) parser.Result {
	if r := p.push(StepSize); r != parser.ResultContinue {
		return r
	}
	top := p.top()
	top.sizeAcc = 0
	top.sizeLen = sizeLen
	return parser.ResultContinue
}

// printOrSkip transitions a frame to PRINT with the given text, unless
// skip is set, in which case the frame is popped without ever emitting a
// value — the field was read only to advance the cursor and feed the
// transaction hash.
func (p *Parser) printOrSkip(f *Frame, skip bool, s string) parser.Result {
	if skip {
		return p.pop()
	}
	f.Step = StepPrint
	f.printStr = s
	f.printOfs = 0
	return parser.ResultContinue
}

// Step executes a single decoding action. Once an error result has been
// returned, every subsequent call returns the same result without
// touching io.
func (p *Parser) Step(io *parser.IO) parser.Result {
	if p.err.IsError() {
		return p.err
	}
	if p.sp < 0 {
		return parser.ResultDone
	}
	r := p.step(io)
	if r.IsError() {
		p.err = r
	}
	return r
}

// Run repeatedly calls Step until it returns anything other than
// ResultContinue.
func (p *Parser) Run(io *parser.IO) parser.Result {
	for {
		r := p.Step(io)
		if r != parser.ResultContinue {
			return r
		}
	}
}

func (p *Parser) step(io *parser.IO) parser.Result {
	f := p.top()
	switch f.Step {
	case StepMagic:
		return p.stepMagic(io, f)
	case StepBranch:
		f.Step = StepBatch
		return p.push(StepTag)
	case StepBatch:
		p.BatchIndex++
		if io.Ofs == f.Stop {
			return p.pop()
		}
		if io.Ofs > f.Stop {
			return parser.ResultTooLarge
		}
		return p.push(StepTag)
	case StepTag:
		return p.stepTag(io, f)
	case StepSize:
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		if f.sizeAcc > 255 {
			return parser.ResultTooLarge
		}
		f.sizeAcc = f.sizeAcc<<8 | int(b)
		f.sizeLen--
		if f.sizeLen == 0 {
			p.stack[p.sp-1].Stop = io.Ofs + f.sizeAcc
			return p.pop()
		}
		return parser.ResultContinue
	case StepTuple:
		return p.stepTuple(io, f)
	case StepOption:
		return p.stepOption(io, f)
	case StepField:
		return p.stepField(f)
	case StepReadBytes:
		return p.stepReadBytes(io, f)
	case StepReadPK:
		return p.stepReadPK(io, f)
	case StepReadNum:
		return p.stepReadNum(io, f)
	case StepReadInt32:
		return p.stepReadInt32(io, f)
	case StepReadString:
		return p.stepReadString(io, f)
	case StepReadBinary:
		return p.stepReadBinary(io, f)
	case StepReadSmartEntrypoint:
		return p.stepReadSmartEntrypoint(io, f)
	case StepReadMicheline:
		return p.stepReadMicheline(io, f)
	case StepReadSoruKind:
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		name, ok := soruKindNames[b]
		if !ok {
			return parser.ResultInvalidTag
		}
		return p.printOrSkip(f, f.strSkip, name)
	case StepReadBallot:
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		name, ok := ballotNames[b]
		if !ok {
			return parser.ResultInvalidTag
		}
		return p.printOrSkip(f, f.strSkip, name)
	case StepReadProtos:
		return p.stepReadList(io, f, StepReadBytes, func(top *Frame) parser.Result {
			top.bytesKind = FieldProto
			top.bytesLen = 32
			return parser.ResultContinue
		})
	case StepReadPKHList:
		return p.stepReadList(io, f, StepReadBytes, func(top *Frame) parser.Result {
			top.bytesKind = FieldPKH
			top.bytesLen = 21
			return parser.ResultContinue
		})
	case StepReadSoruMessages:
		// Each rollup message is itself independently size-prefixed, so the
		// element frame is a nested 4-byte SIZE read feeding a BINARY read,
		// rather than a fixed-length BYTES read like the other two lists.
		return p.stepReadList(io, f, StepReadBinary, func(top *Frame) parser.Result {
			return p.beginSize(4)
		})
	case StepPrint, StepPartialPrint:
		return p.stepPrint(io, f, f.Step == StepPartialPrint)
	default:
		return parser.ResultInvalidState
	}
}

func (p *Parser) stepMagic(io *parser.IO, f *Frame) parser.Result {
	b, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	switch b {
	case 3:
		p.FieldName = "Branch"
		f.Step = StepBranch
		if r := p.push(StepReadBytes); r != parser.ResultContinue {
			return r
		}
		top := p.top()
		top.bytesKind = fieldBranchHash
		top.bytesSkip = true
		top.bytesLen = 32
		return parser.ResultContinue
	case 5:
		f.Step = StepReadMicheline
		f.michelineInited = false
		f.michelineSkip = false
		f.michelineName = "Expression"
		f.Stop = 0
		return parser.ResultContinue
	default:
		return parser.ResultInvalidTag
	}
}

func (p *Parser) stepTag(io *parser.IO, f *Frame) parser.Result {
	t, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	if t == 107 {
		p.SeenReveal = true
	}
	d, ok := findDescriptor(t)
	if !ok {
		return parser.ResultInvalidTag
	}
	f.Step = StepTuple
	f.tupleFields = d.Fields
	f.tupleIndex = 0
	return parser.ResultContinue
}

func (p *Parser) stepTuple(io *parser.IO, f *Frame) parser.Result {
	if len(io.Written()) > 0 {
		return parser.ResultImFull
	}
	if f.tupleIndex >= len(f.tupleFields) {
		p.FieldComplex = false
		return p.pop()
	}
	field := &f.tupleFields[f.tupleIndex]
	f.tupleIndex++
	if r := p.push(StepField); r != parser.ResultContinue {
		return r
	}
	p.top().field = field
	return parser.ResultContinue
}

func (p *Parser) stepOption(io *parser.IO, f *Frame) parser.Result {
	present, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	if present == 0 {
		if f.displayNone {
			if f.optionField.Skip {
				return parser.ResultInvalidState
			}
			f.Step = StepPrint
			f.printStr = "Field unset"
			f.printOfs = 0
			return parser.ResultContinue
		}
		return p.pop()
	}
	f.Step = StepField
	f.field = f.optionField
	return parser.ResultContinue
}

func (p *Parser) stepField(f *Frame) parser.Result {
	field := f.field
	if !field.Skip {
		p.FieldName = field.Name
		p.FieldComplex = field.Complex
		p.FieldIndex++
	}
	switch field.Kind {
	case FieldOption:
		f.Step = StepOption
		f.optionField = field.Option
		f.displayNone = field.DisplayNone
		return parser.ResultContinue
	case FieldTuple:
		f.Step = StepTuple
		f.tupleFields = field.Tuple
		f.tupleIndex = 0
		return parser.ResultContinue
	case FieldBinary:
		f.Step = StepReadBinary
		f.strOfs = 0
		f.strSkip = field.Skip
		return p.beginSize(4)
	case FieldSource, FieldPKH:
		f.Step = StepReadBytes
		f.bytesKind = field.Kind
		f.bytesSkip = field.Skip
		f.bytesOfs = 0
		f.bytesLen = 21
		return parser.ResultContinue
	case FieldPK:
		f.Step = StepReadPK
		f.bytesSkip = field.Skip
		return parser.ResultContinue
	case FieldSR:
		f.Step = StepReadBytes
		f.bytesKind = field.Kind
		f.bytesSkip = field.Skip
		f.bytesOfs = 0
		f.bytesLen = 20
		return parser.ResultContinue
	case FieldSRC, FieldProto:
		f.Step = StepReadBytes
		f.bytesKind = field.Kind
		f.bytesSkip = field.Skip
		f.bytesOfs = 0
		f.bytesLen = 32
		return parser.ResultContinue
	case FieldProtos:
		f.Step = StepReadProtos
		f.listName = field.Name
		f.listIndex = 0
		f.listSkip = field.Skip
		return p.beginSize(4)
	case FieldDestination:
		f.Step = StepReadBytes
		f.bytesKind = field.Kind
		f.bytesSkip = field.Skip
		f.bytesOfs = 0
		f.bytesLen = 22
		return parser.ResultContinue
	case FieldNat, FieldFee, FieldAmount:
		f.Step = StepReadNum
		f.num.Reset()
		f.numKind = field.Kind
		f.numSkip = field.Skip
		f.numNatural = true
		return parser.ResultContinue
	case FieldInt:
		f.Step = StepReadNum
		f.num.Reset()
		f.numKind = field.Kind
		f.numSkip = field.Skip
		f.numNatural = false
		return parser.ResultContinue
	case FieldInt32:
		f.Step = StepReadInt32
		f.int32Value = 0
		f.int32Ofs = 0
		f.int32Skip = field.Skip
		return parser.ResultContinue
	case FieldSmartEntrypoint:
		f.Step = StepReadSmartEntrypoint
		f.strOfs = 0
		f.strSkip = field.Skip
		return parser.ResultContinue
	case FieldExpr:
		f.Step = StepReadMicheline
		f.michelineInited = false
		f.michelineSkip = field.Skip
		f.michelineName = field.Name
		return p.beginSize(4)
	case FieldString:
		f.Step = StepReadString
		f.strOfs = 0
		f.strSkip = field.Skip
		return p.beginSize(4)
	case FieldSoruMessages:
		f.Step = StepReadSoruMessages
		f.listName = field.Name
		f.listIndex = 0
		f.listSkip = field.Skip
		return p.beginSize(4)
	case FieldSoruKind:
		f.Step = StepReadSoruKind
		f.strSkip = field.Skip
		return parser.ResultContinue
	case FieldPKHList:
		f.Step = StepReadPKHList
		f.listName = field.Name
		f.listIndex = 0
		f.listSkip = field.Skip
		return p.beginSize(4)
	case FieldBallot:
		f.Step = StepReadBallot
		f.strSkip = field.Skip
		return parser.ResultContinue
	default:
		return parser.ResultInvalidState
	}
}

func (p *Parser) stepReadBytes(io *parser.IO, f *Frame) parser.Result {
	if f.bytesOfs < f.bytesLen {
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		f.capture[f.bytesOfs] = b
		f.bytesOfs++
		return parser.ResultContinue
	}
	if f.bytesSkip {
		return p.pop()
	}

	var rendered string
	var err error
	switch f.bytesKind {
	case FieldSource:
		copy(p.Source[:21], f.capture[:21])
		rendered, err = parser.FormatPKH(f.capture[:21])
	case FieldPKH:
		rendered, err = parser.FormatPKH(f.capture[:21])
	case FieldPK:
		rendered, err = parser.FormatPK(f.capture[:f.bytesLen])
	case FieldSR:
		rendered, err = parser.Base58Check("sr1", f.capture[:20])
	case FieldSRC:
		rendered, err = parser.Base58Check("src1", f.capture[:32])
	case FieldProto:
		rendered, err = parser.Base58Check("proto", f.capture[:32])
	case FieldDestination:
		copy(p.Destination[:22], f.capture[:22])
		rendered, err = parser.FormatAddress(f.capture[:22])
	case fieldOperationHash:
		rendered, err = parser.FormatOph(f.capture[:32])
	case fieldBranchHash:
		rendered, err = parser.FormatBh(f.capture[:32])
	default:
		return parser.ResultInvalidState
	}
	if err != nil {
		return parser.ResultInvalidTag
	}
	f.Step = StepPrint
	f.printStr = rendered
	f.printOfs = 0
	return parser.ResultContinue
}

func (p *Parser) stepReadPK(io *parser.IO, f *Frame) parser.Result {
	b, r := io.Peek()
	if r != parser.ResultContinue {
		return r
	}
	f.bytesKind = FieldPK
	f.bytesOfs = 0
	switch b {
	case 0:
		f.bytesLen = 33 // edpk
	case 1:
		f.bytesLen = 34 // sppk
	case 2:
		f.bytesLen = 34 // p2pk
	case 3:
		f.bytesLen = 49 // BLpk
	default:
		return parser.ResultInvalidTag
	}
	f.Step = StepReadBytes
	return parser.ResultContinue
}

func (p *Parser) stepReadNum(io *parser.IO, f *Frame) parser.Result {
	b, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	if r := f.num.Step(b, f.numNatural); r != parser.ResultContinue {
		return r
	}
	if !f.num.Done() {
		return parser.ResultContinue
	}

	value, ok := parser.StringToUint64(f.num.Decimal())
	if !ok {
		return parser.ResultInvalidData
	}
	switch f.numKind {
	case FieldAmount:
		p.TotalAmount += value
	case FieldFee:
		p.TotalFee += value
	}

	if f.numSkip {
		return p.pop()
	}

	var str string
	switch f.numKind {
	case FieldInt:
		str = f.num.Decimal()
		if f.num.Sign() {
			str = "-" + str
		}
	case FieldNat:
		str = f.num.Decimal()
	case FieldFee, FieldAmount:
		str = parser.FormatMutez(f.num.Decimal())
	default:
		return parser.ResultInvalidState
	}
	f.Step = StepPrint
	f.printStr = str
	f.printOfs = 0
	return parser.ResultContinue
}

func (p *Parser) stepReadInt32(io *parser.IO, f *Frame) parser.Result {
	if f.int32Ofs < 4 {
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		f.int32Value = f.int32Value<<8 | int32(b)
		f.int32Ofs++
		return parser.ResultContinue
	}
	return p.printOrSkip(f, f.int32Skip, fmt.Sprintf("%d", f.int32Value))
}

func (p *Parser) stepReadString(io *parser.IO, f *Frame) parser.Result {
	if io.Ofs == f.Stop {
		return p.printOrSkip(f, f.strSkip, string(f.capture[:f.strOfs]))
	}
	b, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	if f.strValidate && !printableASCII.Match(b) {
		return parser.ResultInvalidData
	}
	if f.strOfs >= len(f.capture) {
		return parser.ResultTooLarge
	}
	f.capture[f.strOfs] = b
	f.strOfs++
	return parser.ResultContinue
}

func (p *Parser) stepReadBinary(io *parser.IO, f *Frame) parser.Result {
	if io.Ofs == f.Stop {
		return p.printOrSkip(f, f.strSkip, string(f.capture[:f.strOfs]))
	}
	if f.strOfs+2 >= len(f.capture) {
		chunk := string(f.capture[:f.strOfs])
		f.strOfs = 0
		if f.strSkip {
			return parser.ResultContinue
		}
		if r := p.push(StepPartialPrint); r != parser.ResultContinue {
			return r
		}
		top := p.top()
		top.printStr = chunk
		top.printOfs = 0
		return parser.ResultContinue
	}
	b, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	f.capture[f.strOfs] = hexAlphabet[b>>4]
	f.capture[f.strOfs+1] = hexAlphabet[b&0x0F]
	f.strOfs += 2
	return parser.ResultContinue
}

func (p *Parser) stepReadSmartEntrypoint(io *parser.IO, f *Frame) parser.Result {
	b, r := io.Read()
	if r != parser.ResultContinue {
		return r
	}
	if b == 0xFF {
		f.Step = StepReadString
		f.strOfs = 0
		f.strValidate = true
		return p.beginSize(1)
	}
	name, ok := smartEntrypointNames[b]
	if !ok {
		return parser.ResultInvalidTag
	}
	return p.printOrSkip(f, f.strSkip, name)
}

func (p *Parser) stepReadMicheline(io *parser.IO, f *Frame) parser.Result {
	if !f.michelineInited {
		f.michelineInited = true
		p.FieldName = f.michelineName
		f.micheline = micheline.NewParser()
	}
	r := f.micheline.Step(io)
	if r == parser.ResultDone {
		if f.micheline.IsUnit {
			p.FieldComplex = false
		}
		if f.Stop != 0 && io.Ofs != f.Stop {
			return parser.ResultTooLarge
		}
		if r := p.pop(); r != parser.ResultContinue {
			return r
		}
		if len(io.Written()) > 0 {
			return parser.ResultImFull
		}
		return parser.ResultContinue
	}
	return r
}

// stepReadList drives the three element-wise list fields (PROTOS,
// PKH_LIST, SORU_MESSAGES): each iteration either stops at the sized
// block's end, or pushes one element frame of elementStep, configured by
// configure.
func (p *Parser) stepReadList(io *parser.IO, f *Frame, elementStep Step, configure func(*Frame) parser.Result) parser.Result {
	if len(io.Written()) > 0 {
		return parser.ResultImFull
	}
	if io.Ofs == f.Stop {
		return p.pop()
	}
	name := f.listName
	idx := f.listIndex
	f.listIndex++
	if r := p.push(elementStep); r != parser.ResultContinue {
		return r
	}
	p.FieldName = fmt.Sprintf("%s (%d)", name, idx)
	top := p.top()
	top.bytesSkip = f.listSkip
	top.bytesOfs = 0
	top.strSkip = f.listSkip
	top.strOfs = 0
	return configure(top)
}

func (p *Parser) stepPrint(io *parser.IO, f *Frame, partial bool) parser.Result {
	if f.printOfs < len(f.printStr) {
		if r := io.Put(f.printStr[f.printOfs]); r != parser.ResultContinue {
			return r
		}
		f.printOfs++
		return parser.ResultContinue
	}
	r := p.pop()
	if r != parser.ResultContinue {
		return r
	}
	if !partial {
		return parser.ResultImFull
	}
	return parser.ResultContinue
}
