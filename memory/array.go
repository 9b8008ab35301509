package memory

import (
	"encoding/binary"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/value"
)

// SetOptionBase fixes the index origin for every array dimensioned
// after this point (OPTION BASE 0|1). GW-BASIC raises Duplicate
// Definition if any array already exists, since an array's extents were
// computed from whatever base was in effect when it was DIMed (spec.md
// section 4.2, OPTION BASE; original_source/var.py's
// OPTION BASE check: `if arrays != {}`).
func (s *Store) SetOptionBase(base int) {
	if len(s.arrayNames) > 0 {
		basicerr.Throw(basicerr.DuplicateDefinition)
	}
	if base != 0 && base != 1 {
		basicerr.Throw(basicerr.SyntaxError)
	}
	s.arrayBase = base
	s.arrayBaseSet = true
}

// DimArray explicitly dimensions an array (DIM). dims holds the
// declared maximum index per axis (so DIM A(10) passes []int{10}).
// Dimensioning an array that already exists raises Duplicate
// Definition.
func (s *Store) DimArray(name string, dims []int) {
	if _, ok := s.arrays[name]; ok {
		basicerr.Throw(basicerr.DuplicateDefinition)
	}
	s.createArray(name, dims)
}

// ensureArray auto-dimensions name to a default extent of 10 per axis
// on first subscripted reference without an explicit DIM (spec.md
// section 4.2, "arrays default-dimension to 10 on first use").
func (s *Store) ensureArray(name string, ndims int) *arrayRecord {
	rec, ok := s.arrays[name]
	if ok {
		return rec
	}
	dims := make([]int, ndims)
	for i := range dims {
		dims[i] = 10
	}
	s.createArray(name, dims)
	return s.arrays[name]
}

func (s *Store) createArray(name string, dims []int) {
	s.arrayBaseSet = true
	base := s.arrayBase
	bare := bareName(name)
	t := sigilOf(name)
	extents := make([]int, len(dims))
	total := 1
	for i, d := range dims {
		if d < base {
			basicerr.Throw(basicerr.SubscriptOutOfRange)
		}
		extents[i] = d - base + 1
		total *= extents[i]
	}
	payloadSize := total * byteSize(t)
	header := nameHeaderBytes(bare)
	numDims := len(dims)
	recordLen := 1 + 2*numDims + payloadSize

	full := make([]byte, 0, len(header)+2+recordLen)
	full = append(full, header...)
	lenField := make([]byte, 2)
	putUint16(lenField, recordLen)
	full = append(full, lenField...)
	full = append(full, byte(numDims))
	for _, e := range extents {
		ef := make([]byte, 2)
		putUint16(ef, e)
		full = append(full, ef...)
	}
	dataPtr := len(full)
	full = append(full, make([]byte, payloadSize)...)

	namePtr := s.varCurrent + s.arrayCurrent
	rec := &arrayRecord{
		namePtr:  namePtr,
		dataPtr:  namePtr + dataPtr,
		dims:     dims,
		base:     base,
		isString: t == value.TypeString,
	}
	if rec.isString {
		rec.strs = make([]string, total)
	}
	s.arrays[name] = rec
	s.arrayNames = append(s.arrayNames, name)
	s.arrayCurrent += len(full)
	s.checkArenaOverflow()
	copy(s.arenaSlice(namePtr, len(full)), full)
}

// cellOffset computes the column-major cell index for a subscript
// tuple (spec.md section 4.3: area_0 = 1, area_{i+1} = area_i *
// (dim_i + 1 - base), first subscript varying fastest), raising
// Subscript Out of Range if any index is outside the array's declared
// bounds. Matches original_source/var.py's index_array.
func (rec *arrayRecord) cellOffset(idx []int) int {
	if len(idx) != len(rec.dims) {
		basicerr.Throw(basicerr.SubscriptOutOfRange)
	}
	offset := 0
	area := 1
	for i, d := range idx {
		extent := rec.dims[i] - rec.base + 1
		rel := d - rec.base
		if rel < 0 || rel >= extent {
			basicerr.Throw(basicerr.SubscriptOutOfRange)
		}
		offset += area * rel
		area *= extent
	}
	return offset
}

// SetArrayCell writes v into an array element, auto-dimensioning the
// array on first reference if it was never explicitly DIMed.
func (s *Store) SetArrayCell(name string, idx []int, v value.Value) {
	rec := s.ensureArray(name, len(idx))
	t := sigilOf(name)
	if t != v.Typ {
		v = value.ToType(t, v)
	}
	cell := rec.cellOffset(idx)
	if rec.isString {
		rec.strs[cell] = v.Str
		return
	}
	sz := byteSize(t)
	addr := rec.dataPtr + cell*sz
	switch t {
	case value.TypeInteger:
		b := s.arenaSlice(addr, 2)
		putUint16(b, int(uint16(v.I)))
	case value.TypeSingle:
		b := v.S.Bytes()
		copy(s.arenaSlice(addr, 4), b[:])
	case value.TypeDouble:
		b := v.D.Bytes()
		copy(s.arenaSlice(addr, 8), b[:])
	}
}

// GetArrayCell reads an array element, auto-dimensioning on first
// reference like SetArrayCell.
func (s *Store) GetArrayCell(name string, idx []int) value.Value {
	rec := s.ensureArray(name, len(idx))
	t := sigilOf(name)
	cell := rec.cellOffset(idx)
	if rec.isString {
		return value.Str(rec.strs[cell])
	}
	sz := byteSize(t)
	addr := rec.dataPtr + cell*sz
	switch t {
	case value.TypeInteger:
		b := s.arenaSlice(addr, 2)
		return value.Int(int16(binary.LittleEndian.Uint16(b)))
	case value.TypeSingle:
		var b [4]byte
		copy(b[:], s.arenaSlice(addr, 4))
		return value.SingleVal(value.SingleFromBytes(b))
	case value.TypeDouble:
		var b [8]byte
		copy(b[:], s.arenaSlice(addr, 8))
		return value.DoubleVal(value.DoubleFromBytes(b))
	}
	basicerr.Throw(basicerr.InternalError)
	return value.Value{}
}

// EraseArray removes an array's definition so it can be re-DIMed
// (ERASE). Its arena space is not reclaimed until CLEAR/NEW — GW-BASIC
// does not compact the variable table mid-program.
func (s *Store) EraseArray(name string) {
	if _, ok := s.arrays[name]; !ok {
		basicerr.Throw(basicerr.SubscriptOutOfRange)
	}
	delete(s.arrays, name)
	for i, n := range s.arrayNames {
		if n == name {
			s.arrayNames = append(s.arrayNames[:i], s.arrayNames[i+1:]...)
			break
		}
	}
}
