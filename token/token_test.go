package token

import (
	"testing"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekNextAdvance(t *testing.T) {
	r := New([]byte{0x81, 0x02, 0x00})
	b, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, byte(0x81), b)
	assert.Equal(t, 0, r.Pos())

	b, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, byte(0x81), b)
	assert.Equal(t, 1, r.Pos())
}

func TestAtStatementEndOnColonEndAndEOF(t *testing.T) {
	r := New([]byte{0x41, Colon, EndOfLine})
	assert.False(t, r.AtStatementEnd())
	r.Skip(1)
	assert.True(t, r.AtStatementEnd())
	r.Skip(1)
	assert.True(t, r.AtStatementEnd())
	r.Skip(1)
	assert.True(t, r.AtStatementEnd())
}

func TestRequireEndRaisesSyntaxError(t *testing.T) {
	r := New([]byte{0x41})
	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err := basicerr.Recover(rec)
		require.NotNil(t, err)
		assert.Equal(t, basicerr.SyntaxError, err.Code)
	}()
	r.RequireEnd()
}

func TestSkipToStatementEndStopsAtColon(t *testing.T) {
	r := New([]byte{'D', 'A', 'T', 'A', Colon, 'X'})
	r.Skip(4)
	r.SkipToStatementEnd()
	assert.Equal(t, 4, r.Pos())
}

func TestSkipToLineEndIgnoresColon(t *testing.T) {
	r := New([]byte{'R', 'E', 'M', Colon, 'X', EndOfLine})
	r.Skip(3)
	r.SkipToLineEnd()
	assert.Equal(t, 5, r.Pos())
}

func TestReadJumpTarget(t *testing.T) {
	r := New([]byte{JumpMarker, 0x64, 0x00})
	r.Skip(1)
	assert.Equal(t, 100, r.ReadJumpTarget())
}

func TestIsKeywordByteRanges(t *testing.T) {
	assert.True(t, IsKeywordByte(0x81))
	assert.True(t, IsKeywordByte(0xFE))
	assert.False(t, IsKeywordByte(0x80))
	assert.True(t, IsExtendedIntroducer(0xFD))
	assert.True(t, IsNumericLiteralTag(0x1F))
	assert.False(t, IsNumericLiteralTag(0x20))
}
