package memory

import (
	"encoding/binary"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/value"
)

// writeScalarBytes serializes v into the scalar's value slot. Strings
// allocate a fresh heap slot first and write (length, pointer) into the
// value slot; numeric types write their raw bytes directly.
func (s *Store) writeScalarBytes(name string, rec scalarRecord, v value.Value) {
	switch v.Typ {
	case value.TypeInteger:
		b := s.arenaSlice(rec.valPtr, 2)
		putUint16(b, int(uint16(v.I)))
	case value.TypeSingle:
		b := v.S.Bytes()
		copy(s.arenaSlice(rec.valPtr, 4), b[:])
	case value.TypeDouble:
		b := v.D.Bytes()
		copy(s.arenaSlice(rec.valPtr, 8), b[:])
	case value.TypeString:
		ptr := s.allocString(v.Str)
		rec.strPtr = ptr
		s.scalarRecs[name] = rec
		b := s.arenaSlice(rec.valPtr, 3)
		b[0] = byte(len(v.Str))
		putUint16(b[1:], ptr)
	default:
		basicerr.Throw(basicerr.InternalError)
	}
}

// allocString copies str's bytes into a fresh downward-growing heap
// slot and returns its start address (spec.md section 4.3, "String
// heap"). Every assignment gets a new slot; nothing ever frees one
// until CLEAR/NEW resets the whole arena.
func (s *Store) allocString(str string) int {
	n := len(str)
	ptr := s.stringCurrent - n
	if ptr <= s.varCurrent+s.arrayCurrent {
		basicerr.Throw(basicerr.OutOfStringSpace)
	}
	s.stringCurrent = ptr
	if n > 0 {
		copy(s.arenaSlice(ptr, n), str)
	}
	return ptr
}

// readScalarBytes decodes the current value of a scalar straight from
// the arena, bypassing the cached Go value — used so PEEK observes the
// same bytes a raw POKE into the arena would have produced.
func (s *Store) readScalarBytes(name string, rec scalarRecord, t value.Type) value.Value {
	switch t {
	case value.TypeInteger:
		b := s.arenaSlice(rec.valPtr, 2)
		return value.Int(int16(binary.LittleEndian.Uint16(b)))
	case value.TypeSingle:
		var b [4]byte
		copy(b[:], s.arenaSlice(rec.valPtr, 4))
		return value.SingleVal(value.SingleFromBytes(b))
	case value.TypeDouble:
		var b [8]byte
		copy(b[:], s.arenaSlice(rec.valPtr, 8))
		return value.DoubleVal(value.DoubleFromBytes(b))
	case value.TypeString:
		b := s.arenaSlice(rec.valPtr, 3)
		n := int(b[0])
		ptr := int(binary.LittleEndian.Uint16(b[1:]))
		return value.Str(string(s.arenaSlice(ptr, n)))
	}
	basicerr.Throw(basicerr.InternalError)
	return value.Value{}
}

// VarPtr returns the address PEEK/VARPTR reports for a scalar's value
// bytes (spec.md section 4.2, VARPTR). Referencing a scalar that has
// never been assigned allocates its record, matching GW-BASIC's
// behavior of reserving the slot on first mention.
func (s *Store) VarPtr(name string) int {
	t := sigilOf(name)
	rec, ok := s.scalarRecs[name]
	if !ok {
		rec = s.allocScalar(name, t)
	}
	return rec.valPtr
}

// VarPtrArray returns the address of an array's header (VARPTR applied
// to an array name with no subscript).
func (s *Store) VarPtrArray(name string) int {
	rec, ok := s.arrays[name]
	if !ok {
		basicerr.Throw(basicerr.SubscriptOutOfRange)
	}
	return rec.namePtr
}

// PeekByte reads one byte from the simulated variable arena. Addresses
// outside every mapped record (scalar header/value, array
// header/payload, string heap) read as 0, per spec.md section 4.3.
func (s *Store) PeekByte(addr int) byte {
	if addr < varMemStart || addr >= varMemStart+totalMem {
		return 0
	}
	return s.raw[addr-varMemStart]
}

// PokeByte writes one byte into the simulated variable arena. Writes
// outside the mapped range are silently dropped, matching PEEK's
// silent-zero read outside the range: both describe memory this store
// does not own (spec.md section 6 delegates addresses outside the
// variable arena to the AllMemory collaborator).
func (s *Store) PokeByte(addr int, b byte) {
	if addr < varMemStart || addr >= varMemStart+totalMem {
		return
	}
	s.raw[addr-varMemStart] = b
}

// BytesUsed reports the bytes currently committed to scalars, arrays,
// and the string heap, the basis for FRE() (spec.md section 4.2,
// derived from original_source/var.py's variables_memory_size: total
// arena size minus the free gap between the top of scalars+arrays and
// the bottom of the string heap).
func (s *Store) BytesUsed() int {
	return (s.varCurrent - varMemStart) + s.arrayCurrent + ((varMemStart + totalMem) - s.stringCurrent)
}

// FreeBytes reports the bytes still available, the argument to FRE(0).
func (s *Store) FreeBytes() int {
	return s.stringCurrent - (s.varCurrent + s.arrayCurrent)
}
