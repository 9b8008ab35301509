// Package memory implements the named variable store, array store,
// string heap, and simulated segmented address space of spec.md
// section 3 ("Data Model") and section 4.3 ("Memory model"). The byte
// layout it produces for PEEK/VARPTR is part of the system's external
// contract (spec.md section 6) and must be reproduced exactly, not just
// functionally approximated.
package memory

import (
	"encoding/binary"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/value"
)

// Layout constants mirror original_source/var.py's memory model
// (var_mem_start=4720, total_mem=60300) so VARPTR results look like the
// addresses a real GW-BASIC session would report, which matters for
// programs that PEEK their own variable table.
const (
	varMemStart = 4720
	totalMem    = 60300
)

// scalarRecord tracks where a named scalar's header, value, and (if a
// string) heap slot live in the backing arena — the Go equivalent of
// var.py's var_memory[name] = (name_ptr, var_ptr, str_ptr) tuple.
type scalarRecord struct {
	namePtr int
	valPtr  int
	strPtr  int // -1 if not a string
	headLen int
}

// arrayRecord is the array equivalent of scalarRecord.
type arrayRecord struct {
	namePtr  int
	dataPtr  int
	dims     []int // max index per axis, as declared
	base     int   // OPTION BASE in effect when declared
	isString bool
	strs     []string // payload for string arrays
}

// Store owns one program's complete variable state: scalars, arrays,
// the string heap, the DEFtype table, and the backing byte arena PEEK
// and VARPTR observe. CLEAR/NEW reset it in place (spec.md section 9,
// "Design Notes — Global variable state": the memory model is an owned
// value threaded explicitly, not process-wide state).
type Store struct {
	deftype [26]value.Type

	scalarNames []string // insertion order, for deterministic PEEK scans
	scalars     map[string]value.Value
	scalarRecs  map[string]scalarRecord

	arrayNames []string
	arrays     map[string]*arrayRecord
	arrayData  map[string][]byte // numeric array payloads

	arrayBase    int
	arrayBaseSet bool

	varCurrent    int // next free scalar header address
	arrayCurrent  int // bytes consumed by arrays so far
	stringCurrent int // next (downward) string heap boundary

	raw []byte // backing arena, addr-varMemStart indexes into this
}

// New returns a Store with the default DEFtype table (every letter maps
// to single, spec.md section 3: "default `!`") and an empty arena.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	for i := range s.deftype {
		s.deftype[i] = value.TypeSingle
	}
	s.scalarNames = nil
	s.scalars = make(map[string]value.Value)
	s.scalarRecs = make(map[string]scalarRecord)
	s.arrayNames = nil
	s.arrays = make(map[string]*arrayRecord)
	s.arrayData = make(map[string][]byte)
	s.arrayBase = 0
	s.arrayBaseSet = false
	s.varCurrent = varMemStart
	s.arrayCurrent = 0
	s.stringCurrent = varMemStart + totalMem
	s.raw = make([]byte, totalMem)
}

// Clear resets all variable state, as CLEAR and NEW do (spec.md section
// 4.3). It does not touch the DEFtype table — DEFtype survives CLEAR in
// GW-BASIC; NEW's caller resets it separately via ResetDefType.
func (s *Store) Clear() {
	deftype := s.deftype
	s.reset()
	s.deftype = deftype
}

// Snapshot returns every scalar's current value, keyed by completed
// name, for CHAIN's "all variables" form to preserve across the
// LoadProgram/Clear cycle.
func (s *Store) Snapshot() map[string]value.Value {
	out := make(map[string]value.Value, len(s.scalarNames))
	for _, n := range s.scalarNames {
		out[n] = s.scalars[n]
	}
	return out
}

// SnapshotNames returns the current values of just the named scalars,
// for CHAIN's COMMON-only preservation. A name with no prior assignment
// is omitted rather than snapshotted as a zero value, so Restore doesn't
// spuriously create it in the freshly cleared store.
func (s *Store) SnapshotNames(names []string) map[string]value.Value {
	out := make(map[string]value.Value, len(names))
	for _, n := range names {
		if v, ok := s.scalars[n]; ok {
			out[n] = v
		}
	}
	return out
}

// Restore re-applies a snapshot taken before Clear, used by CHAIN after
// loading the incoming program.
func (s *Store) Restore(snap map[string]value.Value) {
	for n, v := range snap {
		s.LetScalar(n, v)
	}
}

// ResetDefType restores every DEFtype slot to single, as NEW does.
func (s *Store) ResetDefType() {
	for i := range s.deftype {
		s.deftype[i] = value.TypeSingle
	}
}

// SetDefType assigns sigil type t to every letter in [from, to]
// inclusive (DEFSTR/DEFINT/DEFSNG/DEFDBL, spec.md section 4.2).
func (s *Store) SetDefType(from, to byte, t value.Type) {
	if from > to || from < 'A' || to > 'Z' {
		basicerr.Throw(basicerr.SyntaxError)
	}
	for c := from; c <= to; c++ {
		s.deftype[c-'A'] = t
	}
}

// CompleteName appends the DEFtype-derived sigil to a bare name that
// carries none, per spec.md section 3 ("Name"). Names already ending in
// a sigil pass through unchanged.
func (s *Store) CompleteName(name string) string {
	if name == "" {
		basicerr.Throw(basicerr.SyntaxError)
	}
	last := name[len(name)-1]
	if isSigil(last) {
		return name
	}
	first := name[0]
	if first < 'a' || first > 'z' {
		if first < 'A' || first > 'Z' {
			basicerr.Throw(basicerr.SyntaxError)
		}
	} else {
		first = first - 'a' + 'A'
	}
	t := s.deftype[first-'A']
	return name + string(byte(t))
}

func isSigil(c byte) bool {
	switch value.Type(c) {
	case value.TypeInteger, value.TypeSingle, value.TypeDouble, value.TypeString:
		return true
	}
	return false
}

func bareName(name string) string {
	if name == "" {
		return name
	}
	if isSigil(name[len(name)-1]) {
		return name[:len(name)-1]
	}
	return name
}

func sigilOf(name string) value.Type {
	if name == "" {
		basicerr.Throw(basicerr.SyntaxError)
	}
	last := name[len(name)-1]
	if isSigil(last) {
		return value.Type(last)
	}
	basicerr.Throw(basicerr.SyntaxError)
	return 0
}

func byteSize(t value.Type) int {
	switch t {
	case value.TypeInteger:
		return 2
	case value.TypeSingle:
		return 4
	case value.TypeDouble:
		return 8
	case value.TypeString:
		return 3 // length byte + uint16 heap pointer
	}
	basicerr.Throw(basicerr.InternalError)
	return 0
}

// nameHeaderBytes encodes the bare-name portion of a record header per
// spec.md section 3: first letter, second letter (0 if absent),
// remaining-length byte (0 if <=2 chars), followed by that many encoded
// extra-letter bytes (each ord(letter)-'A'+0xC1, matching
// original_source/var.py's get_name_in_memory encoding for offsets >= 4).
func nameHeaderBytes(bare string) []byte {
	var b1, b2 byte
	if len(bare) >= 1 {
		b1 = upperByte(bare[0])
	}
	if len(bare) >= 2 {
		b2 = upperByte(bare[1])
	}
	rem := 0
	if len(bare) > 2 {
		rem = len(bare) - 2
	}
	out := []byte{b1, b2, byte(rem)}
	for i := 2; i < len(bare); i++ {
		out = append(out, upperByte(bare[i])-'A'+0xC1)
	}
	return out
}

func upperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func putUint16(b []byte, v int) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}
