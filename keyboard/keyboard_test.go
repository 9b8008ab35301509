package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferAppendAndGetc(t *testing.T) {
	b := NewBuffer(RingLength)
	b.Append("A", 0x1E, 0, true)
	assert.False(t, b.Empty())
	assert.Equal(t, "A", b.Getc(true))
	assert.True(t, b.Empty())
}

func TestBufferFullDropsAndFiresOnFull(t *testing.T) {
	b := NewBuffer(2)
	fired := 0
	b.OnFull = func() { fired++ }
	b.Append("A", 0, 0, true)
	b.Append("B", 0, 0, true)
	b.Append("C", 0, 0, true)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 2, len(b.ring))
}

func TestFunctionKeyExpandsMacro(t *testing.T) {
	b := NewBuffer(RingLength)
	fnF1 := "\x00\x3B"
	b.Append(fnF1, 0x3B, 0, true)
	assert.Equal(t, "L", b.Getc(true))
	assert.Equal(t, "I", b.Getc(true))
	assert.Equal(t, "S", b.Getc(true))
	assert.Equal(t, "T", b.Getc(true))
	assert.Equal(t, " ", b.Getc(true))
}

func TestEmptyMacroReturnsRawCode(t *testing.T) {
	b := NewBuffer(RingLength)
	b.SetMacro(11, "")
	fnF11 := "\x00\x85"
	b.Append(fnF11, 0x85, 0, true)
	assert.Equal(t, fnF11, b.Getc(true))
}

func TestRingSetBoundariesRotates(t *testing.T) {
	b := NewBuffer(4)
	b.Append("A", 1, 0, true)
	b.Append("B", 2, 0, true)
	b.Append("C", 3, 0, true)
	b.SetBoundaries(1, 1)
	ch, _ := b.RingRead(1)
	assert.Equal(t, "B", ch)
}

func TestKeyDownTogglesCapsAndSwapsCase(t *testing.T) {
	k := NewKeyboard(false)
	k.KeyDown("", ScanCapsLock, nil, true)
	assert.Equal(t, ToggleCapsLock, k.Mod&ToggleCapsLock)
	k.KeyDown("a", 0x1E, nil, true)
	assert.Equal(t, "A", k.Buf.Peek())
}

func TestAltKeypadComposition(t *testing.T) {
	k := NewKeyboard(false)
	k.KeyDown("", 0x72, []int{ScanAlt}, true) // '2'
	k.KeyDown("", 0x74, []int{ScanAlt}, true) // '4'
	k.KeyDown("", 0x75, []int{ScanAlt}, true) // '5'
	assert.True(t, k.Buf.Empty())
	k.KeyUp(ScanAlt)
	assert.Equal(t, string([]byte{245}), k.Buf.Peek())
}

func TestModifierClearedOnEachKeyDown(t *testing.T) {
	k := NewKeyboard(false)
	k.KeyDown("a", 0x1E, []int{ScanLShift}, true)
	assert.Equal(t, ModLShift, k.Mod&ModLShift)
	k.KeyDown("b", 0x30, nil, true)
	assert.Equal(t, 0, k.Mod&ModLShift)
}

func TestInkeyFallsBackToStream(t *testing.T) {
	k := NewKeyboard(false)
	k.StreamChars("X")
	assert.Equal(t, "X", k.Inkey())
}

func TestWaitCharStopsOnClosedStream(t *testing.T) {
	k := NewKeyboard(false)
	k.CloseInput()
	polls := 0
	got := k.WaitChar(func() bool { polls++; return true }, false)
	assert.Equal(t, "", got)
	assert.Equal(t, 0, polls)
}

func TestGetFullCharCombinesLeadTrail(t *testing.T) {
	k := NewKeyboard(false)
	k.Buf.Append("\x81", 0, 0, true)
	k.Buf.Append("\x40", 0, 0, true)
	isLead := func(b byte) bool { return b == 0x81 }
	isTrail := func(b byte) bool { return b == 0x40 }
	got := k.GetFullChar(true, isLead, isTrail)
	assert.Equal(t, "\x81\x40", got)
}
