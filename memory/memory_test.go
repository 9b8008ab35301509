package memory

import (
	"testing"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPanic(t *testing.T, code basicerr.Code, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err := basicerr.Recover(r)
		require.NotNil(t, err)
		assert.Equal(t, code, err.Code)
	}()
	f()
}

func TestScalarSetGet(t *testing.T) {
	s := New()
	s.LetScalar("A%", value.Int(42))
	assert.Equal(t, int16(42), s.GetScalar("A%").I)
}

func TestScalarUnassignedReadsZero(t *testing.T) {
	s := New()
	v := s.GetScalar("X$")
	assert.Equal(t, "", v.Str)
}

func TestVarPtrPeekRoundTripInteger(t *testing.T) {
	s := New()
	s.LetScalar("A%", value.Int(-5))
	ptr := s.VarPtr("A%")
	lo := s.PeekByte(ptr)
	hi := s.PeekByte(ptr + 1)
	got := int16(uint16(lo) | uint16(hi)<<8)
	assert.Equal(t, int16(-5), got)
}

func TestVarPtrPeekStringLength(t *testing.T) {
	s := New()
	s.LetScalar("A$", value.Str("HELLO"))
	ptr := s.VarPtr("A$")
	assert.Equal(t, byte(5), s.PeekByte(ptr))
}

func TestStringReassignmentAllocatesNewHeapSlot(t *testing.T) {
	s := New()
	s.LetScalar("A$", value.Str("HELLO"))
	before := s.FreeBytes()
	s.LetScalar("A$", value.Str("HELLO"))
	after := s.FreeBytes()
	assert.Less(t, after, before, "re-assignment should consume a fresh heap slot")
}

func TestPeekOutsideArenaIsZero(t *testing.T) {
	s := New()
	assert.Equal(t, byte(0), s.PeekByte(0))
	assert.Equal(t, byte(0), s.PeekByte(varMemStart+totalMem+10))
}

func TestArrayAutoDimensionsToTen(t *testing.T) {
	s := New()
	s.SetArrayCell("A%", []int{10}, value.Int(7))
	assert.Equal(t, int16(7), s.GetArrayCell("A%", []int{10}).I)
	mustPanic(t, basicerr.SubscriptOutOfRange, func() {
		s.GetArrayCell("A%", []int{11})
	})
}

func TestArrayDimDuplicateDefinition(t *testing.T) {
	s := New()
	s.DimArray("A%", []int{5})
	mustPanic(t, basicerr.DuplicateDefinition, func() {
		s.DimArray("A%", []int{5})
	})
}

func TestOptionBaseAfterArrayIsDuplicateDefinition(t *testing.T) {
	s := New()
	s.DimArray("A%", []int{5})
	mustPanic(t, basicerr.DuplicateDefinition, func() {
		s.SetOptionBase(1)
	})
}

func TestOptionBaseShiftsIndexOrigin(t *testing.T) {
	s := New()
	s.SetOptionBase(1)
	s.DimArray("A%", []int{5})
	mustPanic(t, basicerr.SubscriptOutOfRange, func() {
		s.GetArrayCell("A%", []int{0})
	})
	s.SetArrayCell("A%", []int{1}, value.Int(9))
	assert.Equal(t, int16(9), s.GetArrayCell("A%", []int{1}).I)
}

func TestArrayColumnMajorIndependentCells(t *testing.T) {
	s := New()
	s.DimArray("A%", []int{2, 2})
	s.SetArrayCell("A%", []int{0, 0}, value.Int(1))
	s.SetArrayCell("A%", []int{1, 1}, value.Int(2))
	assert.Equal(t, int16(1), s.GetArrayCell("A%", []int{0, 0}).I)
	assert.Equal(t, int16(2), s.GetArrayCell("A%", []int{1, 1}).I)
	assert.Equal(t, int16(0), s.GetArrayCell("A%", []int{0, 1}).I)
}

// TestCellOffsetIsColumnMajor pins down the linear-index formula spec.md
// section 4.3 specifies (area_0 = 1, area_{i+1} = area_i*(dim_i+1-base)):
// for DIM A(2,3), the first subscript varies fastest, the opposite of a
// row-major layout where the last subscript would.
func TestCellOffsetIsColumnMajor(t *testing.T) {
	rec := &arrayRecord{dims: []int{2, 3}, base: 0}
	cases := []struct {
		idx  []int
		want int
	}{
		{[]int{0, 0}, 0},
		{[]int{1, 0}, 1}, // incrementing the first subscript moves by one cell
		{[]int{2, 0}, 2},
		{[]int{0, 1}, 3}, // incrementing the second subscript moves by a whole column (3 rows)
		{[]int{2, 3}, 11},
	}
	for _, c := range cases {
		got := rec.cellOffset(c.idx)
		assert.Equalf(t, c.want, got, "cellOffset(%v)", c.idx)
	}
}

func TestEraseAllowsRedimension(t *testing.T) {
	s := New()
	s.DimArray("A%", []int{5})
	s.EraseArray("A%")
	s.DimArray("A%", []int{3})
	assert.Equal(t, int16(0), s.GetArrayCell("A%", []int{3}).I)
}

func TestClearResetsStateButKeepsDefType(t *testing.T) {
	s := New()
	s.SetDefType('I', 'I', value.TypeInteger)
	s.LetScalar("A%", value.Int(1))
	s.Clear()
	assert.Equal(t, int16(0), s.GetScalar("A%").I)
	assert.Equal(t, "I%", s.CompleteName("I"))
}

func TestBytesUsedGrowsWithAllocations(t *testing.T) {
	s := New()
	before := s.BytesUsed()
	s.LetScalar("A%", value.Int(1))
	after := s.BytesUsed()
	assert.Greater(t, after, before)
}

func TestCompleteNameUsesDefType(t *testing.T) {
	s := New()
	s.SetDefType('A', 'C', value.TypeString)
	assert.Equal(t, "APPLE$", s.CompleteName("APPLE"))
}

func TestSwapRequiresSameType(t *testing.T) {
	s := New()
	s.LetScalar("A%", value.Int(1))
	s.LetScalar("B$", value.Str("X"))
	mustPanic(t, basicerr.TypeMismatch, func() {
		s.SwapScalars("A%", "B$")
	})
}
