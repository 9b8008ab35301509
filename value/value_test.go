package value

import (
	"testing"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 2, 0.5, 3.14159, 100000, -123.456, 1e30, 1e-30}
	for _, f := range cases {
		s := SingleFromFloat64(f)
		got := s.Float64()
		assert.InEpsilonf(t, f, got, 1e-6, "single round-trip of %v", f)

		// Bytes -> Single -> Bytes is exact for any well-formed encoding.
		b := s.Bytes()
		s2 := SingleFromBytes(b)
		assert.Equal(t, b, s2.Bytes())
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 2.5, 123456789.123456, -1e100, 1e-100}
	for _, f := range cases {
		d := DoubleFromFloat64(f)
		got := d.Float64()
		assert.InEpsilonf(t, f, got, 1e-9, "double round-trip of %v", f)

		b := d.Bytes()
		d2 := DoubleFromBytes(b)
		assert.Equal(t, b, d2.Bytes())
	}
}

func TestSingleZeroIsAllZeroBytes(t *testing.T) {
	s := SingleFromFloat64(0)
	assert.Equal(t, [4]byte{0, 0, 0, 0}, s.Bytes())
}

func TestAddWidensToFloat(t *testing.T) {
	a := Int(2)
	b := SingleVal(SingleFromFloat64(3))
	r := Add(a, b)
	require.Equal(t, TypeSingle, r.Typ)
	assert.InEpsilon(t, 5.0, r.S.Float64(), 1e-6)
}

func TestAddIntegerOverflow(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err := basicerr.Recover(r)
		require.NotNil(t, err)
		assert.Equal(t, basicerr.Overflow, err.Code)
	}()
	Add(Int(32000), Int(1000))
}

func TestStringConcatenation(t *testing.T) {
	r := Add(Str("HELLO, "), Str("WORLD"))
	assert.Equal(t, "HELLO, WORLD", r.Str)
}

func TestStringNumericMismatch(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err := basicerr.Recover(r)
		require.NotNil(t, err)
		assert.Equal(t, basicerr.TypeMismatch, err.Code)
	}()
	Add(Str("X"), Int(1))
}

func TestToTypeNarrowingOverflow(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err := basicerr.Recover(r)
		require.NotNil(t, err)
		assert.Equal(t, basicerr.Overflow, err.Code)
	}()
	big := DoubleVal(DoubleFromFloat64(1e10))
	ToType(TypeInteger, big)
}

func TestStringTruncatedTo255(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'A'
	}
	v := Str(string(long))
	assert.Len(t, v.Str, 255)
}

func TestZeroValues(t *testing.T) {
	assert.Equal(t, int16(0), Zero(TypeInteger).I)
	assert.Equal(t, "", Zero(TypeString).Str)
	assert.Equal(t, 0.0, Zero(TypeSingle).S.Float64())
}
