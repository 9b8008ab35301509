// Package loader decodes a tokenized-bytecode program image (spec.md
// section 6, "Tokenized bytecode (consumed)") into a line table the
// token package's Reader can walk one statement at a time. It is the
// GW-BASIC-core equivalent of the teacher's loader.LoadProgramIntoVM,
// generalized from "place assembled instructions into VM memory" to
// "decode line records into an ordered table," since tokenization
// itself already happened upstream of this package.
package loader

import (
	"encoding/binary"
	"sort"

	"github.com/basicretro/gwbasic-core/basicerr"
)

// Line is one decoded program line: its number and its tokenized
// statement bytes, including the trailing end-of-line byte.
type Line struct {
	Number int
	Body   []byte
}

// Program is an ordered, number-indexed table of decoded lines.
type Program struct {
	lines   []Line
	byNum   map[int]int // line number -> index into lines
	numbers []int       // sorted line numbers, kept alongside byNum
}

// Decode walks a raw tokenized image and builds a Program. Each record
// is `<uint16 next-line-addr><uint16 line-number><statement bytes>
// 0x00`; a next-line-addr of 0 marks end of program. The next-line-addr
// value itself is not needed to recover line boundaries (every
// statement run is terminated by 0x00 regardless), so this decoder
// only uses it to detect the end marker, the same way a SAVE from a
// real interpreter would be read back without walking raw memory
// offsets.
func Decode(data []byte) (*Program, error) {
	p := &Program{byNum: make(map[int]int)}
	pos := 0
	for {
		if pos+4 > len(data) {
			break
		}
		nextAddr := binary.LittleEndian.Uint16(data[pos : pos+2])
		if nextAddr == 0 {
			break
		}
		lineNum := int(binary.LittleEndian.Uint16(data[pos+2 : pos+4]))
		pos += 4
		start := pos
		for pos < len(data) && data[pos] != 0x00 {
			pos++
		}
		if pos >= len(data) {
			basicerr.Throw(basicerr.SyntaxError)
		}
		pos++ // include the terminating 0x00
		body := make([]byte, pos-start)
		copy(body, data[start:pos])

		if _, dup := p.byNum[lineNum]; dup {
			basicerr.Throw(basicerr.DuplicateDefinition)
		}
		p.byNum[lineNum] = len(p.lines)
		p.lines = append(p.lines, Line{Number: lineNum, Body: body})
		p.numbers = append(p.numbers, lineNum)
	}
	sort.Ints(p.numbers)
	return p, nil
}

// Empty returns a Program with no lines, the starting point for an
// interactive session before any program text is entered.
func Empty() *Program {
	return &Program{byNum: make(map[int]int)}
}

// Line returns the decoded line for a line number.
func (p *Program) Line(number int) (Line, bool) {
	idx, ok := p.byNum[number]
	if !ok {
		return Line{}, false
	}
	return p.lines[idx], true
}

// FirstLine returns the lowest-numbered line, the RUN entry point.
func (p *Program) FirstLine() (Line, bool) {
	if len(p.numbers) == 0 {
		return Line{}, false
	}
	return p.Line(p.numbers[0])
}

// NextLineAfter returns the smallest line number strictly greater than
// number, used to fall through at the end of a line during sequential
// execution.
func (p *Program) NextLineAfter(number int) (Line, bool) {
	i := sort.SearchInts(p.numbers, number+1)
	if i >= len(p.numbers) {
		return Line{}, false
	}
	return p.Line(p.numbers[i])
}

// LineNumbers returns every line number in ascending order, used by
// LIST and RENUM.
func (p *Program) LineNumbers() []int {
	out := make([]int, len(p.numbers))
	copy(out, p.numbers)
	return out
}

// PutLine inserts or replaces a line (immediate-mode line entry:
// "10 PRINT X" outside RUN). An empty body deletes the line.
func (p *Program) PutLine(number int, body []byte) {
	if idx, ok := p.byNum[number]; ok {
		if len(body) == 0 {
			p.deleteAt(idx, number)
			return
		}
		p.lines[idx].Body = body
		return
	}
	if len(body) == 0 {
		return
	}
	p.byNum[number] = len(p.lines)
	p.lines = append(p.lines, Line{Number: number, Body: body})
	p.numbers = append(p.numbers, number)
	sort.Ints(p.numbers)
}

func (p *Program) deleteAt(idx, number int) {
	p.lines = append(p.lines[:idx], p.lines[idx+1:]...)
	delete(p.byNum, number)
	for n, i := range p.byNum {
		if i > idx {
			p.byNum[n] = i - 1
		}
	}
	for i, n := range p.numbers {
		if n == number {
			p.numbers = append(p.numbers[:i], p.numbers[i+1:]...)
			break
		}
	}
}

// Encode serializes the program back into the tokenized line-record
// format Decode reads, used by SAVE. next-line-addr fields are written
// as a monotonically increasing placeholder offset rather than true
// simulated-memory addresses, since nothing in this core dereferences
// them on load.
func (p *Program) Encode() []byte {
	var out []byte
	addr := 0
	for _, line := range p.lines {
		addr += 4 + len(line.Body)
		header := make([]byte, 4)
		binary.LittleEndian.PutUint16(header, uint16(addr))
		binary.LittleEndian.PutUint16(header[2:], uint16(line.Number))
		out = append(out, header...)
		out = append(out, line.Body...)
	}
	out = append(out, 0x00, 0x00)
	return out
}
