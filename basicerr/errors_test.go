package basicerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasNoLineContext(t *testing.T) {
	e := New(SyntaxError)
	assert.Equal(t, SyntaxError, e.Code)
	assert.Equal(t, -1, e.Line)
	assert.Equal(t, -1, e.Pos)
}

func TestWithLineTagsOnlyOnce(t *testing.T) {
	e := New(SyntaxError).WithLine(10)
	assert.Equal(t, 10, e.Line)

	// Re-raising from a trap must not overwrite the original line.
	still := e.WithLine(20)
	assert.Equal(t, 10, still.Line)
}

func TestErrorStringIncludesLineWhenKnown(t *testing.T) {
	withoutLine := New(SyntaxError)
	assert.Equal(t, "Syntax error", withoutLine.Error())

	withLine := New(SyntaxError).WithLine(40)
	assert.Equal(t, "Syntax error in 40", withLine.Error())
}

func TestMessageFallsBackForUnlistedCode(t *testing.T) {
	assert.Equal(t, "Error 999", Message(Code(999)))
}

func TestThrowAndRecoverRoundTrip(t *testing.T) {
	got := func() (e *Error) {
		defer func() { e = Recover(recover()) }()
		Throw(DivisionByZero)
		return nil
	}()
	require.NotNil(t, got)
	assert.Equal(t, DivisionByZero, got.Code)
}

func TestRecoverRepanicsOnForeignValue(t *testing.T) {
	assert.Panics(t, func() {
		defer func() { Recover(recover()) }()
		panic("not a basicerr.Error")
	})
}

func TestRecoverOfNilPanicIsNil(t *testing.T) {
	assert.Nil(t, Recover(nil))
}

func TestThrowIfOnlyThrowsWhenTrue(t *testing.T) {
	assert.NotPanics(t, func() { ThrowIf(false, SyntaxError) })
	assert.Panics(t, func() { ThrowIf(true, SyntaxError) })
}

func TestRangeCheck(t *testing.T) {
	assert.NotPanics(t, func() { RangeCheck(0, 255, 0) })
	assert.NotPanics(t, func() { RangeCheck(0, 255, 255) })

	got := func() (e *Error) {
		defer func() { e = Recover(recover()) }()
		RangeCheck(0, 255, 256)
		return nil
	}()
	require.NotNil(t, got)
	assert.Equal(t, IllegalFunctionCall, got.Code)
}
