// Package token implements a cursor over one line's tokenized bytecode
// bytes (spec.md section 4.1, "Token stream reader"). Tokenization
// itself happens upstream of this package — the bytes the Reader walks
// already carry keyword opcodes, numeric-literal tags, and jump targets
// exactly as spec.md section 6 ("Tokenized bytecode") describes; this
// package only knows how to walk them.
package token

import (
	"encoding/binary"

	"github.com/basicretro/gwbasic-core/basicerr"
)

// Statement and line terminators, per spec.md section 6.
const (
	EndOfLine byte = 0x00
	Colon     byte = 0x3A

	// JumpMarker introduces a little-endian uint16 line-number target
	// (GOTO/GOSUB/THEN line literals), stored as raw binary rather than
	// decimal text for fast dispatch.
	JumpMarker byte = 0x0E
)

// IsKeywordByte reports whether b opens a single-byte statement or
// function keyword token.
func IsKeywordByte(b byte) bool { return b >= 0x81 && b <= 0xFE }

// IsExtendedIntroducer reports whether b opens a two-byte keyword token
// (dialect-specific extension words, spec.md section 6).
func IsExtendedIntroducer(b byte) bool { return b >= 0xFD }

// IsNumericLiteralTag reports whether b tags a numeric literal (small
// integer, byte, int, MBF single, MBF double).
func IsNumericLiteralTag(b byte) bool { return b >= 0x11 && b <= 0x1F }

// Reader is a forward-only cursor over a single statement line's raw
// bytecode bytes. It carries no knowledge of opcodes; exec's dispatcher
// interprets what Reader hands back.
type Reader struct {
	buf []byte
	pos int
}

// New wraps buf in a Reader positioned at the start.
func New(buf []byte) *Reader { return &Reader{buf: buf} }

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// SetPos repositions the cursor, used by statement parsers that
// backtrack (e.g. the implicit-LET fallback in spec.md section 4.1,
// which un-reads a letter byte it peeked as a possible opcode).
func (r *Reader) SetPos(p int) { r.pos = p }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.buf) }

// Peek returns the next byte without consuming it. ok is false at end
// of buffer.
func (r *Reader) Peek() (b byte, ok bool) {
	if r.AtEnd() {
		return 0, false
	}
	return r.buf[r.pos], true
}

// PeekAt returns the byte offset bytes ahead of the cursor without
// consuming anything, used for the DBCS-style one-byte lookahead some
// statement parsers need.
func (r *Reader) PeekAt(offset int) (b byte, ok bool) {
	p := r.pos + offset
	if p < 0 || p >= len(r.buf) {
		return 0, false
	}
	return r.buf[p], true
}

// Next consumes and returns the next byte. ok is false at end of
// buffer, in which case the cursor does not advance.
func (r *Reader) Next() (b byte, ok bool) {
	if r.AtEnd() {
		return 0, false
	}
	b = r.buf[r.pos]
	r.pos++
	return b, true
}

// Skip advances the cursor n bytes, clamped to the buffer length.
func (r *Reader) Skip(n int) {
	r.pos += n
	if r.pos > len(r.buf) {
		r.pos = len(r.buf)
	}
}

// AtStatementEnd reports whether the cursor sits at a statement
// terminator (colon), a line terminator, or the end of the buffer —
// the three conditions spec.md section 4.1's termination discipline
// treats as "nothing more on this statement."
func (r *Reader) AtStatementEnd() bool {
	b, ok := r.Peek()
	if !ok {
		return true
	}
	return b == EndOfLine || b == Colon
}

// RequireEnd raises Syntax Error unless the cursor is at a statement
// terminator. Statement parsers call this after collecting their
// arguments, per spec.md section 4.1's "require end-of-statement".
func (r *Reader) RequireEnd() {
	if !r.AtStatementEnd() {
		basicerr.Throw(basicerr.SyntaxError)
	}
}

// Require consumes the next byte and raises Syntax Error if it is not
// exactly want.
func (r *Reader) Require(want byte) {
	b, ok := r.Next()
	if !ok || b != want {
		basicerr.Throw(basicerr.SyntaxError)
	}
}

// SkipToStatementEnd advances past all remaining bytes of the current
// statement without interpreting them, stopping just before the colon
// or end-of-line byte. DATA uses this — its payload is never tokenized
// as expressions.
func (r *Reader) SkipToStatementEnd() {
	for {
		b, ok := r.Peek()
		if !ok || b == EndOfLine || b == Colon {
			return
		}
		r.pos++
	}
}

// SkipToLineEnd advances to the end-of-line byte (or end of buffer),
// ignoring any embedded colon bytes. REM uses this — a REM comment
// swallows the rest of the physical line, colons included.
func (r *Reader) SkipToLineEnd() {
	for {
		b, ok := r.Peek()
		if !ok || b == EndOfLine {
			return
		}
		r.pos++
	}
}

// ReadUint16 consumes a little-endian uint16. ok is false if fewer than
// two bytes remain.
func (r *Reader) ReadUint16() (v int, ok bool) {
	if r.pos+2 > len(r.buf) {
		return 0, false
	}
	v = int(binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+2]))
	r.pos += 2
	return v, true
}

// ReadJumpTarget consumes the little-endian uint16 line number
// following a JumpMarker token (already consumed by the caller) and
// raises Syntax Error if the bytes are missing.
func (r *Reader) ReadJumpTarget() int {
	v, ok := r.ReadUint16()
	if !ok {
		basicerr.Throw(basicerr.SyntaxError)
	}
	return v
}
