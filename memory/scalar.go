package memory

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/value"
)

// LetScalar assigns v (already coerced to name's sigil type by the
// caller) to a scalar, allocating its record in the arena on first
// write. Re-assignment reuses the existing record and, for strings,
// allocates a fresh heap slot rather than mutating the old one in
// place — GW-BASIC never shrinks or grows a string heap entry, it
// always severs and re-allocates (spec.md section 4.3, "String
// assignment always allocates a new heap slot").
func (s *Store) LetScalar(name string, v value.Value) {
	t := sigilOf(name)
	if t != v.Typ {
		v = value.ToType(t, v)
	}
	rec, ok := s.scalarRecs[name]
	if !ok {
		rec = s.allocScalar(name, t)
	}
	s.scalars[name] = v
	s.writeScalarBytes(name, rec, v)
}

// GetScalar returns a scalar's current value, or the type's zero value
// if it has never been assigned (spec.md section 3).
func (s *Store) GetScalar(name string) value.Value {
	if v, ok := s.scalars[name]; ok {
		return v
	}
	return value.Zero(sigilOf(name))
}

// SwapScalars exchanges two scalars' values in place, as SWAP does. It
// does not move their arena records — only the stored values change
// hands, and each string value is written into a fresh heap slot.
func (s *Store) SwapScalars(a, b string) {
	va, vb := s.GetScalar(a), s.GetScalar(b)
	if va.Typ != vb.Typ {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	s.LetScalar(a, vb)
	s.LetScalar(b, va)
}

func (s *Store) allocScalar(name string, t value.Type) scalarRecord {
	bare := bareName(name)
	header := nameHeaderBytes(bare)
	namePtr := s.varCurrent
	valLen := byteSize(t)
	header = append(header, byte(valLen)) // size-in-bytes byte, just before the value
	headLen := len(header)
	valPtr := namePtr + headLen
	rec := scalarRecord{namePtr: namePtr, valPtr: valPtr, strPtr: -1, headLen: headLen}
	s.varCurrent = valPtr + valLen
	s.checkArenaOverflow()
	s.scalarRecs[name] = rec
	s.scalarNames = append(s.scalarNames, name)
	copy(s.arenaSlice(namePtr, headLen), header)
	return rec
}

func (s *Store) checkArenaOverflow() {
	if s.varCurrent+s.arrayCurrent >= s.stringCurrent {
		basicerr.Throw(basicerr.OutOfMemory)
	}
}

func (s *Store) arenaSlice(addr, n int) []byte {
	off := addr - varMemStart
	return s.raw[off : off+n]
}
