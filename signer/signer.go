// Package signer implements the signing orchestrator: the top-level state
// machine that turns a stream of APDU packets into a parsed, displayed, and
// eventually signed (or rejected) operation. It owns nothing about how
// bytes arrive on the wire (that is apdu's job) and nothing about how a
// hash actually gets computed or a signature actually gets produced (that is
// the Hasher/Signer collaborators' job) — it only sequences the steps.
package signer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trilitech/tezos-ledger-parser/apdu"
	"github.com/trilitech/tezos-ledger-parser/operation"
	"github.com/trilitech/tezos-ledger-parser/parser"
)

// TopState is the orchestrator's outermost mode.
type TopState int

const (
	StateIdle TopState = iota
	StateClearSign
	StateBlindSign
	StatePrompt
)

func (s TopState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateClearSign:
		return "CLEAR_SIGN"
	case StateBlindSign:
		return "BLIND_SIGN"
	case StatePrompt:
		return "PROMPT"
	default:
		return fmt.Sprintf("TopState(%d)", int(s))
	}
}

// SignState is the sub-state machine that tracks progress through one sign
// stream, meaningful only while TopState is CLEAR_SIGN or BLIND_SIGN.
type SignState int

const (
	SignIdle SignState = iota
	SignWaitData
	SignWaitUserInput
)

func (s SignState) String() string {
	switch s {
	case SignIdle:
		return "SIGN_IDLE"
	case SignWaitData:
		return "SIGN_WAIT_DATA"
	case SignWaitUserInput:
		return "SIGN_WAIT_USER_INPUT"
	default:
		return fmt.Sprintf("SignState(%d)", int(s))
	}
}

// outputWindowSize bounds how much rendered field text the orchestrator
// stages between UI flushes; it has no relationship to any wire field's own
// size limit.
const outputWindowSize = 256

// Orchestrator sequences one Tezos signing request end to end: receiving
// packets, feeding a hasher and a parser, driving the review screens, and
// producing a signature or a rejection. A single Orchestrator handles one
// request at a time; Reset returns it to IDLE.
type Orchestrator struct {
	top  TopState
	sign SignState

	curve    apdu.CurveCode
	path     []uint32
	withHash bool

	hasher Hasher
	signer Signer
	ui     Display

	settings Settings
	logger   *zap.Logger

	op      *operation.Parser
	io      parser.IO
	outBuf  [outputWindowSize]byte
	total   int
	lastSeq bool

	blindTag  byte
	blindSeen bool

	hash [32]byte
}

// New builds an Orchestrator in the IDLE state. logger may be nil, in which
// case a no-op logger is used.
func New(hasher Hasher, signerImpl Signer, ui Display, settings Settings, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		hasher: hasher, signer: signerImpl, ui: ui,
		settings: settings, logger: logger,
		top: StateIdle, sign: SignIdle,
	}
}

// Reset clears all per-request state and returns to IDLE. Called on every
// error path and after a request concludes (accepted or rejected), so that
// no key material, path, or partial hash from one request leaks into the
// next.
func (o *Orchestrator) Reset() {
	if o.top != StateIdle {
		o.logger.Info("sign: reset", zap.Stringer("from", o.top))
	}
	o.top = StateIdle
	o.sign = SignIdle
	o.curve = 0
	for i := range o.path {
		o.path[i] = 0
	}
	o.path = nil
	o.withHash = false
	o.op = nil
	o.io = parser.IO{}
	o.total = 0
	o.lastSeq = false
	o.blindTag = 0
	o.blindSeen = false
	for i := range o.hash {
		o.hash[i] = 0
	}
}

// HandleSign processes one packet of a Sign (0x04) or SignWithHash (0x0F)
// stream and returns the status word and any response payload (the
// signature, once the flow concludes with an accept).
func (o *Orchestrator) HandleSign(req apdu.Request, withHash bool) (apdu.StatusWord, []byte) {
	flags := req.Flags()
	if flags.First() {
		return o.firstPacket(req, withHash)
	}
	return o.dataPacket(req)
}

func (o *Orchestrator) firstPacket(req apdu.Request, withHash bool) (apdu.StatusWord, []byte) {
	if o.top != StateIdle {
		o.logger.Warn("sign: first packet received outside IDLE", zap.Stringer("top", o.top))
		o.Reset()
		return apdu.SWUnexpectedState, nil
	}

	curve, err := apdu.ParseCurveCode(req.P2)
	if err != nil {
		o.Reset()
		return apdu.SWWrongParam, nil
	}
	path, _, err := apdu.ParseBIP32Path(req.Data)
	if err != nil {
		o.Reset()
		return apdu.SWWrongValues, nil
	}

	o.curve = curve
	o.path = path
	o.withHash = withHash
	o.hasher.Init()
	o.op = operation.Init(0, false)
	o.io = parser.IO{}
	o.io.Flush(o.outBuf[:])
	o.total = 0
	o.lastSeq = false
	o.blindSeen = false

	if o.settings.BlindSigning {
		o.top = StateBlindSign
	} else {
		o.top = StateClearSign
	}
	o.sign = SignWaitData

	o.logger.Info("sign: first packet", zap.Stringer("curve", curve), zap.Bool("withHash", withHash))
	return apdu.SWOK, nil
}

func (o *Orchestrator) dataPacket(req apdu.Request) (apdu.StatusWord, []byte) {
	if o.sign != SignWaitData {
		o.logger.Warn("sign: data packet received outside SIGN_WAIT_DATA", zap.Stringer("sign", o.sign))
		o.Reset()
		return apdu.SWUnexpectedSignState, nil
	}

	flags := req.Flags()
	o.hasher.Update(req.Data)
	o.total += len(req.Data)
	if flags.Last() {
		o.lastSeq = true
		o.hash = o.hasher.Finalize(true)
	}

	if o.top == StateBlindSign {
		return o.blindData(req.Data)
	}
	return o.clearData(req.Data)
}

// clearData feeds the packet's bytes through the operation parser, routing
// on the automaton's result. A complete parse with no trailing bytes opens
// the review/accept flow; any parse error or leftover bytes is a hard
// failure — this layer makes no attempt to fall back to blind signing
// mid-stream, only before the first byte is parsed (see Settings.BlindSigning).
func (o *Orchestrator) clearData(data []byte) (apdu.StatusWord, []byte) {
	o.io.Refill(data)
	o.op.SetSize(o.total)

	for {
		r := o.op.Step(&o.io)
		switch r {
		case parser.ResultContinue:
			continue
		case parser.ResultFeedMe:
			if !o.lastSeq {
				return apdu.SWOK, nil
			}
			o.logger.Warn("sign: parser still wants data after last packet")
			o.Reset()
			return apdu.SWParseError, nil
		case parser.ResultImFull:
			o.flushField()
			continue
		case parser.ResultDone:
			o.flushField()
			if !o.lastSeq || o.io.Ofs != o.total {
				o.logger.Warn("sign: parse concluded before last packet or with residual bytes")
				o.Reset()
				return apdu.SWParseError, nil
			}
			return o.beginUserInput()
		default:
			o.logger.Warn("sign: parse error", zap.Stringer("result", r))
			status := apdu.FromParseResult(r)
			o.Reset()
			return status, nil
		}
	}
}

// flushField hands the parser's currently staged field to the display and
// opens a fresh output window for the next one.
func (o *Orchestrator) flushField() {
	if len(o.io.Written()) == 0 {
		return
	}
	o.ui.StreamPush(o.op.FieldName, string(o.io.Written()), o.op.FieldComplex)
	o.io.Flush(o.outBuf[:])
}

// blindData implements the blind-signing review path: the operation's first
// byte is taken as its tag and mapped to a coarse human-readable kind, and
// the device shows exactly two review pairs — the kind, and the hash of the
// whole message — rather than attempting to render individual fields.
func (o *Orchestrator) blindData(data []byte) (apdu.StatusWord, []byte) {
	if !o.blindSeen && len(data) > 0 {
		o.blindTag = data[0]
		o.blindSeen = true
	}
	if !o.lastSeq {
		return apdu.SWOK, nil
	}
	return o.beginUserInput()
}

// blindSignKinds maps an operation's leading tag byte to the coarse label
// shown on a blind-signed review screen.
var blindSignKinds = map[byte]string{
	0x01: "Block proposal",
	0x11: "Block proposal",
	0x03: "Manager operation",
	0x02: "Consensus operation",
	0x12: "Consensus operation",
	0x13: "Consensus operation",
	0x05: "Micheline expression",
}

func blindSignKind(tag byte) string {
	if kind, ok := blindSignKinds[tag]; ok {
		return kind
	}
	return "unknown type"
}

// beginUserInput opens the accept/reject review screen once all operation
// bytes have been consumed (clear-sign) or the last packet has arrived
// (blind-sign).
func (o *Orchestrator) beginUserInput() (apdu.StatusWord, []byte) {
	o.sign = SignWaitUserInput

	hash, err := parser.FormatOph(o.hash[:])
	if err != nil {
		o.logger.Error("sign: failed to render hash", zap.Error(err))
		o.Reset()
		return apdu.SWMemoryError, nil
	}

	if o.blindSeen {
		o.ui.StreamPush("Sign Hash", blindSignKind(o.blindTag), false)
	}
	o.ui.StreamPush("Sign Hash", hash, false)

	o.logger.Info("sign: awaiting user input")
	return apdu.SWOK, nil
}

// Accept is called once the UI collaborator reports the user approved the
// review screen. It produces the final signature and returns to IDLE.
func (o *Orchestrator) Accept() (apdu.StatusWord, []byte) {
	if o.sign != SignWaitUserInput {
		o.logger.Warn("sign: accept received outside SIGN_WAIT_USER_INPUT", zap.Stringer("sign", o.sign))
		o.Reset()
		return apdu.SWUnexpectedSignState, nil
	}

	sig, err := o.signer.Sign(o.curve, o.path, o.hash)
	if err != nil {
		o.logger.Error("sign: signing failed")
		o.Reset()
		return apdu.SWMemoryError, nil
	}

	var out []byte
	if o.withHash {
		out = append(out, o.hash[:]...)
	}
	out = append(out, sig...)

	o.logger.Info("sign: accepted")
	o.Reset()
	return apdu.SWOK, out
}

// Reject is called once the UI collaborator reports the user declined the
// review screen.
func (o *Orchestrator) Reject() (apdu.StatusWord, []byte) {
	o.logger.Info("sign: rejected")
	o.Reset()
	return apdu.SWReject, nil
}
