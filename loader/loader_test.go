package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(nextAddr, lineNum uint16, body ...byte) []byte {
	b := []byte{byte(nextAddr), byte(nextAddr >> 8), byte(lineNum), byte(lineNum >> 8)}
	return append(b, body...)
}

func TestDecodeTwoLines(t *testing.T) {
	var data []byte
	data = append(data, record(10, 10, 'A', 0x00)...)
	data = append(data, record(20, 20, 'B', 0x00)...)
	data = append(data, 0x00, 0x00)

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, p.LineNumbers())

	l, ok := p.Line(10)
	require.True(t, ok)
	assert.Equal(t, []byte{'A', 0x00}, l.Body)
}

func TestNextLineAfter(t *testing.T) {
	var data []byte
	data = append(data, record(10, 10, 0x00)...)
	data = append(data, record(20, 30, 0x00)...)
	data = append(data, 0x00, 0x00)
	p, _ := Decode(data)

	l, ok := p.NextLineAfter(10)
	require.True(t, ok)
	assert.Equal(t, 30, l.Number)

	_, ok = p.NextLineAfter(30)
	assert.False(t, ok)
}

func TestPutLineInsertsInOrder(t *testing.T) {
	p := Empty()
	p.PutLine(20, []byte{0x00})
	p.PutLine(10, []byte{0x00})
	assert.Equal(t, []int{10, 20}, p.LineNumbers())
}

func TestPutLineEmptyBodyDeletes(t *testing.T) {
	p := Empty()
	p.PutLine(10, []byte{0x00})
	p.PutLine(10, nil)
	_, ok := p.Line(10)
	assert.False(t, ok)
	assert.Empty(t, p.LineNumbers())
}

func TestEncodeEndsWithZeroMarker(t *testing.T) {
	p := Empty()
	p.PutLine(10, []byte{0x00})
	enc := p.Encode()
	assert.Equal(t, []byte{0x00, 0x00}, enc[len(enc)-2:])
}
