// Package value implements the typed scalar values of the GW-BASIC core:
// 16-bit signed integers, Microsoft Binary Format single/double floats,
// and length-bounded strings, with the conversion and overflow policy of
// spec.md section 3 ("Typed value") and section 4.5 ("Value system").
package value

import (
	"github.com/basicretro/gwbasic-core/basicerr"
)

// Type is the sigil-determined type tag of a Value.
type Type byte

const (
	TypeInteger Type = '%'
	TypeSingle  Type = '!'
	TypeDouble  Type = '#'
	TypeString  Type = '$'
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeSingle:
		return "SINGLE"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Value is a single typed scalar. Exactly one of the typed fields is
// meaningful, selected by Typ — mirroring the tagged-union Python value
// tuples of the original (('%', n), ('$', s), ...) but as a flat Go
// struct rather than an interface, so zero values are cheap and
// comparable.
type Value struct {
	Typ Type
	I   int16
	S   Single
	D   Double
	Str string
}

// Zero returns the zero/empty value for a type, used when a scalar or
// array cell is read before ever being written (spec.md section 3,
// "Scalar variable... read returns the type's zero/empty").
func Zero(t Type) Value {
	switch t {
	case TypeInteger:
		return Value{Typ: TypeInteger}
	case TypeSingle:
		return Value{Typ: TypeSingle}
	case TypeDouble:
		return Value{Typ: TypeDouble}
	case TypeString:
		return Value{Typ: TypeString, Str: ""}
	default:
		basicerr.Throw(basicerr.InternalError)
		return Value{}
	}
}

// Int returns an integer value.
func Int(i int16) Value { return Value{Typ: TypeInteger, I: i} }

// Str returns a string value, truncated to 255 bytes per spec.md
// section 3 ("length ≤ 255").
func Str(s string) Value {
	if len(s) > 255 {
		s = s[:255]
	}
	return Value{Typ: TypeString, Str: s}
}

// SingleVal wraps a Single as a Value.
func SingleVal(s Single) Value { return Value{Typ: TypeSingle, S: s} }

// DoubleVal wraps a Double as a Value.
func DoubleVal(d Double) Value { return Value{Typ: TypeDouble, D: d} }

// ToType coerces v to the target type t, applying the conversion policy
// of spec.md section 3: widening integer->single->double is exact;
// narrowing raises Overflow (numeric) or a machine-infinity clamp; any
// numeric<->string conversion raises Type Mismatch.
func ToType(t Type, v Value) Value {
	if t == v.Typ {
		return v
	}
	if t == TypeString || v.Typ == TypeString {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	switch t {
	case TypeInteger:
		return Int(toInt16(v))
	case TypeSingle:
		return SingleVal(toSingle(v))
	case TypeDouble:
		return DoubleVal(toDouble(v))
	}
	basicerr.Throw(basicerr.InternalError)
	return Value{}
}

func toInt16(v Value) int16 {
	switch v.Typ {
	case TypeInteger:
		return v.I
	case TypeSingle:
		f := v.S.Float64()
		return floatToInt16(f)
	case TypeDouble:
		return floatToInt16(v.D.Float64())
	}
	basicerr.Throw(basicerr.TypeMismatch)
	return 0
}

func floatToInt16(f float64) int16 {
	r := roundHalfAwayFromZero(f)
	if r > 32767 || r < -32768 {
		basicerr.Throw(basicerr.Overflow)
	}
	return int16(r)
}

func roundHalfAwayFromZero(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}

func toSingle(v Value) Single {
	switch v.Typ {
	case TypeInteger:
		return SingleFromFloat64(float64(v.I))
	case TypeSingle:
		return v.S
	case TypeDouble:
		return SingleFromFloat64(v.D.Float64())
	}
	basicerr.Throw(basicerr.TypeMismatch)
	return Single{}
}

func toDouble(v Value) Double {
	switch v.Typ {
	case TypeInteger:
		return DoubleFromFloat64(float64(v.I))
	case TypeSingle:
		return DoubleFromFloat64(v.S.Float64())
	case TypeDouble:
		return v.D
	}
	basicerr.Throw(basicerr.TypeMismatch)
	return Double{}
}

// Add implements numeric addition (and string concatenation) with the
// overflow policy of spec.md section 4.5: arithmetic promotes to the
// wider of the two operand types, and float overflow raises Overflow
// with the result clamped to +/- machine infinity.
func Add(a, b Value) Value {
	if a.Typ == TypeString || b.Typ == TypeString {
		if a.Typ != TypeString || b.Typ != TypeString {
			basicerr.Throw(basicerr.TypeMismatch)
		}
		return Str(a.Str + b.Str)
	}
	return numericOp(a, b, func(x, y int16) int16 {
		r := int32(x) + int32(y)
		if r > 32767 || r < -32768 {
			basicerr.Throw(basicerr.Overflow)
		}
		return int16(r)
	}, func(x, y float64) float64 { return x + y })
}

// Sub implements numeric subtraction.
func Sub(a, b Value) Value {
	return numericOp(a, b, func(x, y int16) int16 {
		r := int32(x) - int32(y)
		if r > 32767 || r < -32768 {
			basicerr.Throw(basicerr.Overflow)
		}
		return int16(r)
	}, func(x, y float64) float64 { return x - y })
}

// Mul implements numeric multiplication.
func Mul(a, b Value) Value {
	return numericOp(a, b, func(x, y int16) int16 {
		r := int32(x) * int32(y)
		if r > 32767 || r < -32768 {
			basicerr.Throw(basicerr.Overflow)
		}
		return int16(r)
	}, func(x, y float64) float64 { return x * y })
}

func widerType(a, b Type) Type {
	rank := map[Type]int{TypeInteger: 0, TypeSingle: 1, TypeDouble: 2}
	if rank[a] >= rank[b] {
		return a
	}
	return b
}

func numericOp(a, b Value, ints func(x, y int16) int16, floats func(x, y float64) float64) Value {
	if a.Typ == TypeString || b.Typ == TypeString {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	t := widerType(a.Typ, b.Typ)
	if t == TypeInteger {
		return Int(ints(a.I, b.I))
	}
	af, bf := asFloat(a), asFloat(b)
	r := floats(af, bf)
	if t == TypeDouble {
		d := DoubleFromFloat64(r)
		if isFloatOverflow(r) {
			basicerr.Throw(basicerr.Overflow)
		}
		return DoubleVal(d)
	}
	s := SingleFromFloat64(r)
	if isFloatOverflow(r) {
		basicerr.Throw(basicerr.Overflow)
	}
	return SingleVal(s)
}

func asFloat(v Value) float64 {
	switch v.Typ {
	case TypeInteger:
		return float64(v.I)
	case TypeSingle:
		return v.S.Float64()
	case TypeDouble:
		return v.D.Float64()
	}
	basicerr.Throw(basicerr.TypeMismatch)
	return 0
}

func isFloatOverflow(f float64) bool {
	return f > maxMBFMagnitude || f < -maxMBFMagnitude
}
