// Package micheline implements the stack-automaton decoder that turns the
// binary encoding of a Michelson value (Micheline) into its canonical
// textual rendering, one input byte or output character at a time.
package micheline

import "github.com/trilitech/tezos-ledger-parser/parser"

// StackDepth is the maximum number of nested Micheline frames; a
// construct that would push the 46th frame fails with TOO_DEEP.
const StackDepth = 45

// Tag values as they appear on the wire, at the start of every Micheline
// node.
const (
	tagInt           = 0
	tagString        = 1
	tagSeq           = 2
	tagPrim0NoAnnots = 3
	tagPrim0Annots   = 4
	tagPrim1NoAnnots = 5
	tagPrim1Annots   = 6
	tagPrim2NoAnnots = 7
	tagPrim2Annots   = 8
	tagPrimN         = 9
	tagBytes         = 10
)

// Step names one of the twelve decoding phases a frame can be in.
type Step int

const (
	StepTag Step = iota
	StepPrimOp
	StepPrimName
	StepPrim
	StepSize
	StepSeq
	StepBytes
	StepString
	StepAnnot
	StepInt
	StepPrintInt
	StepPrintCapture
)

// Frame is one level of the stack automaton. It carries every step's
// substate; only the fields relevant to the current Step are live at once,
// the way a tagged union would overlay them in a lower-level language.
type Frame struct {
	Step Step
	Stop int // absolute offset at which this construct ends; 0 until set

	First      bool
	HasRemHalf bool
	RemHalf    byte

	sizeAcc int

	num     parser.Num
	sign    bool
	decimal string
	cursor  int

	primOp   byte
	primOfs  int
	nArgs    int // 0, 1, 2, or 3 meaning "N" (generic arg list)
	wrap     bool
	spc      bool
	annot    bool

	capture    string
	captureOfs int
}

// Parser is a Micheline stack automaton. Its zero value is not usable;
// construct with NewParser.
type Parser struct {
	stack [StackDepth]Frame
	sp    int // index of the top frame; -1 once the root frame has popped
	err   parser.Result

	// IsUnit reports whether the value decoded at the root of this parser
	// is the bare "Unit" primitive (no arguments, no annotation), so a
	// caller embedding a Micheline value in a larger display (an operation
	// field) can collapse it to a non-complex rendering.
	IsUnit bool
}

// NewParser returns a parser ready to decode one Micheline value starting
// at the TAG step.
func NewParser() *Parser {
	p := &Parser{sp: 0}
	p.stack[0] = Frame{Step: StepTag}
	return p
}

// Done reports whether the root frame has popped (parse complete).
func (p *Parser) Done() bool { return p.sp < 0 }

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

// beginSized pushes a SIZE frame that will, once it has consumed the
// 4-byte big-endian length prefix, install the computed absolute stop
// offset on the frame beneath it and pop itself.
func (p *Parser) beginSized(io *parser.IO) parser.Result {
	if r := p.push(StepSize); r != parser.ResultContinue {
		return r
	}
	p.top().Stop = io.Ofs + 4
	return parser.ResultContinue
}

var escapeTable = map[byte]string{
	'\\': `\\`,
	'"':  `\"`,
	'\r': `\r`,
	'\n': `\n`,
	'\t': `\t`,
}

func printEscaped(p *Parser, b byte) parser.Result {
	if r := p.push(StepPrintCapture); r != parser.ResultContinue {
		return r
	}
	if s, ok := escapeTable[b]; ok {
		p.top().capture = s
	} else {
		p.top().capture = decimalEscape(b)
	}
	return parser.ResultContinue
}

func decimalEscape(b byte) string {
	return string([]byte{'0' + b/100, '0' + (b/10)%10, '0' + b%10})
}

const hexDigits = "0123456789ABCDEF"

// tagSelection dispatches on a freshly read tag byte, configuring the
// current frame's step and substate.
func (p *Parser) tagSelection(io *parser.IO, t byte) parser.Result {
	f := p.top()
	switch t {
	case tagInt:
		f.Step = StepInt
		f.num.Reset()
	case tagSeq:
		f.Step = StepSeq
		f.First = true
		if r := p.beginSized(io); r != parser.ResultContinue {
			return r
		}
	case tagBytes:
		f.Step = StepBytes
		f.First = true
		f.HasRemHalf = false
		if r := p.beginSized(io); r != parser.ResultContinue {
			return r
		}
	case tagString:
		f.Step = StepString
		f.First = true
		if r := p.beginSized(io); r != parser.ResultContinue {
			return r
		}
	case tagPrim0NoAnnots, tagPrim0Annots, tagPrim1NoAnnots, tagPrim1Annots,
		tagPrim2NoAnnots, tagPrim2Annots, tagPrimN:
		var nArgs int
		var annot, wrap bool
		if t == tagPrimN {
			nArgs = 3
			annot = true
			wrap = p.sp > 0 && p.stack[p.sp-1].Step == StepPrim
		} else {
			nArgs = int(t-tagPrim0NoAnnots) / 2
			annot = t%2 == 0
			wrap = p.sp > 0 && p.stack[p.sp-1].Step == StepPrim && (nArgs > 0 || annot)
		}
		f.Step = StepPrimOp
		f.primOfs = 0
		f.nArgs = nArgs
		f.wrap = wrap
		f.spc = false
		f.First = true
		f.annot = annot
	default:
		return parser.ResultInvalidTag
	}
	return parser.ResultContinue
}

// Step executes a single decoding action: it reads at most one input byte
// or writes at most one output character, then returns. Once an error
// result has been returned, every subsequent call returns the same result
// without touching io.
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

func (p *Parser) step(io *parser.IO) parser.Result {
	f := p.top()
	switch f.Step {
	case StepInt:
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		if r := f.num.Step(b, false); r != parser.ResultContinue {
			return r
		}
		if f.num.Done() {
			f.Step = StepPrintInt
			f.sign = f.num.Sign()
			f.decimal = f.num.Decimal()
			f.cursor = 0
		}
		return parser.ResultContinue

	case StepPrintInt:
		if f.sign {
			if r := io.Put('-'); r != parser.ResultContinue {
				return r
			}
			f.sign = false
			return parser.ResultContinue
		}
		if f.cursor < len(f.decimal) {
			if r := io.Put(f.decimal[f.cursor]); r != parser.ResultContinue {
				return r
			}
			f.cursor++
			return parser.ResultContinue
		}
		return p.pop()

	case StepSize:
		b, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		if f.sizeAcc > 255 {
			return parser.ResultTooLarge
		}
		f.sizeAcc = f.sizeAcc<<8 | int(b)
		if f.Stop == io.Ofs {
			p.stack[p.sp-1].Stop = io.Ofs + f.sizeAcc
			return p.pop()
		}
		return parser.ResultContinue

	case StepSeq:
		if f.Stop == io.Ofs {
			if f.First {
				if r := io.Put('{'); r != parser.ResultContinue {
					return r
				}
				f.First = false
				return parser.ResultContinue
			}
			if r := io.Put('}'); r != parser.ResultContinue {
				return r
			}
			return p.pop()
		}
		if f.First {
			if r := io.Put('{'); r != parser.ResultContinue {
				return r
			}
			f.First = false
			return parser.ResultContinue
		}
		// spc records that an item has already been emitted, so every
		// later item is preceded by ';'.
		if f.spc {
			if r := io.Put(';'); r != parser.ResultContinue {
				return r
			}
		}
		f.spc = true
		return p.push(StepTag)

	case StepPrintCapture:
		if f.captureOfs < len(f.capture) {
			if r := io.Put(f.capture[f.captureOfs]); r != parser.ResultContinue {
				return r
			}
			f.captureOfs++
			return parser.ResultContinue
		}
		return p.pop()

	case StepBytes:
		if f.HasRemHalf {
			if r := io.Put(f.RemHalf); r != parser.ResultContinue {
				return r
			}
			f.HasRemHalf = false
			return parser.ResultContinue
		}
		if f.First {
			if r := io.Put('0'); r != parser.ResultContinue {
				return r
			}
			f.HasRemHalf = true
			f.RemHalf = 'x'
			f.First = false
			return parser.ResultContinue
		}
		if f.Stop == io.Ofs {
			return p.pop()
		}
		b, r := io.Peek()
		if r != parser.ResultContinue {
			return r
		}
		if r := io.Put(hexDigits[b>>4]); r != parser.ResultContinue {
			return r
		}
		f.HasRemHalf = true
		f.RemHalf = hexDigits[b&0x0F]
		io.Skip()
		return parser.ResultContinue

	case StepString:
		if f.First {
			if r := io.Put('"'); r != parser.ResultContinue {
				return r
			}
			f.First = false
			return parser.ResultContinue
		}
		if f.Stop == io.Ofs {
			if r := io.Put('"'); r != parser.ResultContinue {
				return r
			}
			return p.pop()
		}
		b, r := io.Peek()
		if r != parser.ResultContinue {
			return r
		}
		if b >= 0x20 && b < 0x80 && b != '"' && b != '\\' {
			if r := io.Put(b); r != parser.ResultContinue {
				return r
			}
			io.Skip()
			return parser.ResultContinue
		}
		io.Skip()
		return printEscaped(p, b)

	case StepAnnot:
		if f.Stop == io.Ofs {
			return p.pop()
		}
		if f.First {
			if r := io.Put(' '); r != parser.ResultContinue {
				return r
			}
			f.First = false
			return parser.ResultContinue
		}
		b, r := io.Peek()
		if r != parser.ResultContinue {
			return r
		}
		if r := io.Put(b); r != parser.ResultContinue {
			return r
		}
		io.Skip()
		return parser.ResultContinue

	case StepPrimOp:
		op, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		if _, ok := parser.MichelsonOpName(int(op)); !ok {
			return parser.ResultInvalidOp
		}
		if p.sp == 0 && f.nArgs == 0 {
			p.IsUnit = !f.annot && op == 11
		}
		f.Step = StepPrimName
		f.primOp = op
		return parser.ResultContinue

	case StepPrimName:
		name, _ := parser.MichelsonOpName(int(f.primOp))
		if f.wrap && f.First {
			if r := io.Put('('); r != parser.ResultContinue {
				return r
			}
			f.First = false
			return parser.ResultContinue
		}
		if f.primOfs < len(name) {
			if r := io.Put(name[f.primOfs]); r != parser.ResultContinue {
				return r
			}
			f.primOfs++
			return parser.ResultContinue
		}
		f.Step = StepPrim
		if f.nArgs == 3 {
			return p.beginSized(io)
		}
		return parser.ResultContinue

	case StepPrim:
		if f.nArgs == 0 || (f.nArgs == 3 && f.Stop == io.Ofs) {
			if f.annot {
				if r := p.push(StepAnnot); r != parser.ResultContinue {
					return r
				}
				f.annot = false
				p.top().First = true
				return p.beginSized(io)
			}
			if f.wrap {
				if r := io.Put(')'); r != parser.ResultContinue {
					return r
				}
			}
			return p.pop()
		}
		if !f.spc {
			if r := io.Put(' '); r != parser.ResultContinue {
				return r
			}
			f.spc = true
			return parser.ResultContinue
		}
		if f.nArgs < 3 {
			f.nArgs--
		}
		f.spc = false
		return p.push(StepTag)

	case StepTag:
		t, r := io.Read()
		if r != parser.ResultContinue {
			return r
		}
		return p.tagSelection(io, t)

	default:
		return parser.ResultInvalidState
	}
}

// Run repeatedly calls Step until it returns anything other than
// ResultContinue (a blocking, terminal, or error result).
func (p *Parser) Run(io *parser.IO) parser.Result {
	for {
		r := p.Step(io)
		if r != parser.ResultContinue {
			return r
		}
	}
}
