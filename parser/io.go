package parser

// IO holds the input window, the output window, and the running absolute
// offset shared by a stream decoder. It implements the four primitives
// described for the byte-stream reader and staging buffer: read, peek,
// skip, and put, plus the refill/flush-up-to protocol that lets the host
// loop hand over fresh windows without the decoder ever seeing a
// reallocated buffer.
//
// Between two refills, iofs+ilen is constant; between two flushes, oofs+olen
// is constant. Callers own the backing arrays; IO only ever narrows or
// shifts the window into them.
type IO struct {
	ibuf []byte
	iofs int
	ilen int

	obuf []byte
	oofs int
	olen int

	// Ofs is the monotonically increasing absolute byte offset since
	// parsing began, used for range checks against declared sizes.
	Ofs int
}

// Refill installs a new input window. The previous window, if any, must
// have been fully consumed (ilen == 0) — refilling early would silently
// discard unread bytes.
func (io *IO) Refill(buf []byte) {
	io.ibuf = buf
	io.iofs = 0
	io.ilen = len(buf)
}

// Flush installs a new output window, discarding whatever was staged in the
// old one. Used when the UI has consumed the staged pair in full.
func (io *IO) Flush(buf []byte) {
	io.obuf = buf
	io.oofs = 0
	io.olen = len(buf)
}

// FlushUpTo installs a new output window but first shifts the unconsumed
// tail of the old one (the bytes past upTo that the UI didn't have room to
// display) to the front of buf, so the parser's next Put calls continue the
// word it was in the middle of writing.
func (io *IO) FlushUpTo(buf []byte, upTo int) {
	written := io.oofs
	if upTo > written {
		upTo = written
	}
	tail := io.obuf[upTo:written]
	n := copy(buf, tail)
	io.obuf = buf
	io.oofs = n
	io.olen = len(buf) - n
}

// Written returns the portion of the output window staged so far.
func (io *IO) Written() []byte {
	return io.obuf[:io.oofs]
}

// Read consumes one input byte, advancing the absolute offset. Blocks with
// ResultFeedMe when the input window is exhausted.
func (io *IO) Read() (byte, Result) {
	if io.ilen == 0 {
		return 0, ResultFeedMe
	}
	b := io.ibuf[io.iofs]
	io.iofs++
	io.ilen--
	io.Ofs++
	return b, ResultContinue
}

// Peek returns the next input byte without consuming it. Blocks with
// ResultFeedMe when the input window is exhausted.
func (io *IO) Peek() (byte, Result) {
	if io.ilen == 0 {
		return 0, ResultFeedMe
	}
	return io.ibuf[io.iofs], ResultContinue
}

// Skip advances past a byte the caller has already Peek'd.
func (io *IO) Skip() {
	io.iofs++
	io.ilen--
	io.Ofs++
}

// Put appends one character to the output window. Blocks with
// ResultImFull when the output window has no remaining space.
func (io *IO) Put(c byte) Result {
	if io.olen == 0 {
		return ResultImFull
	}
	io.obuf[io.oofs] = c
	io.oofs++
	io.olen--
	return ResultContinue
}

// PutString appends each byte of s, stopping (and returning ResultImFull)
// at the first byte that doesn't fit. The caller can resume by re-invoking
// with s[n:] once n bytes have been reported written via some other means;
// in practice callers track their own cursor into a longer string and only
// call PutString with the remaining suffix.
func (io *IO) PutString(s string) (int, Result) {
	n := 0
	for i := 0; i < len(s); i++ {
		if r := io.Put(s[i]); r != ResultContinue {
			return n, r
		}
		n++
	}
	return n, ResultContinue
}
