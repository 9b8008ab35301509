package keyboard

// Keyboard wraps a Buffer with modifier tracking, ALT-keypad
// composition, and the redirected input stream, mirroring the
// reference's Keyboard class.
type Keyboard struct {
	Buf Buffer

	LastScancode int
	Mod          int
	keypadAscii  string
	ignoreCaps   bool

	streamBuffer []string
	inputClosed  bool
}

// NewKeyboard returns a Keyboard with an empty 15-slot ring.
func NewKeyboard(ignoreCaps bool) *Keyboard {
	return &Keyboard{Buf: *NewBuffer(RingLength), ignoreCaps: ignoreCaps}
}

// KeyDown handles a key-down event: c is the eascii/codepage text the
// key produces, scan its scancode, mods the list of modifier scancodes
// currently held (spec.md section 4.4, "Modifier handling").
func (k *Keyboard) KeyDown(c string, scan int, mods []int, checkFull bool) {
	if scan != 0 {
		k.LastScancode = scan
	}
	k.Mod &^= nonstickyMask
	for _, m := range mods {
		k.Mod |= modifierBits[m]
	}
	if bit, ok := toggleBits[scan]; ok {
		k.Mod ^= bit
	}
	if containsInt(mods, ScanAlt) {
		if d, ok := keypadDigits[scan]; ok {
			k.keypadAscii += string(d)
			return
		}
	}
	if k.Mod&ToggleCapsLock != 0 && !k.ignoreCaps && len(c) == 1 {
		c = swapCase(c)
	}
	k.Buf.Append(c, scan, k.Mod, checkFull)
}

// KeyUp handles a key-up event. Releasing ALT while a keypad
// composition is pending emits the composed byte (spec.md section 4.4).
func (k *Keyboard) KeyUp(scan int) {
	if scan != 0 {
		k.LastScancode = 0x80 + scan
	}
	if bit, ok := modifierBits[scan]; ok {
		k.Mod &^= bit
	}
	if scan == ScanAlt && k.keypadAscii != "" {
		n := 0
		for _, d := range k.keypadAscii {
			n = n*10 + int(d-'0')
		}
		char := string([]byte{byte(n % 256)})
		if char == "\x00" {
			char = "\x00\x00"
		}
		k.Buf.Append(char, 0, 0, true)
		k.keypadAscii = ""
	}
}

// StreamChars appends text to the redirected-input deque (a paste or
// a STREAM_CHAR event), split into individual eascii units.
func (k *Keyboard) StreamChars(s string) {
	k.streamBuffer = append(k.streamBuffer, splitEascii(s)...)
}

// CloseInput marks the redirected input stream as closed.
func (k *Keyboard) CloseInput() { k.inputClosed = true }

// InputClosed reports whether the redirected stream has closed.
func (k *Keyboard) InputClosed() bool { return k.inputClosed }

// SetMacro and GetMacro forward to the function-key macro table.
func (k *Keyboard) SetMacro(num int, macro string) { k.Buf.SetMacro(num, macro) }
func (k *Keyboard) GetMacro(num int) string        { return k.Buf.GetMacro(num) }

// WaitChar blocks by repeatedly invoking poll until a keystroke is
// available or the input has closed, matching spec.md section 5's
// suspension-point model: poll pumps one iteration of the session's
// event queue and returns false if a user break should abort the wait.
// keyboardOnly opts into ignoring stream closure (KYBD: device reads).
func (k *Keyboard) WaitChar(poll func() bool, keyboardOnly bool) string {
	for k.Buf.Empty() && (keyboardOnly || !k.inputClosed) {
		if !poll() {
			break
		}
	}
	return k.Buf.Peek()
}

// Inkey implements INKEY$: a single nonblocking read from the ring,
// falling back to the redirected stream.
func (k *Keyboard) Inkey() string {
	c := k.Buf.Getc(true)
	if c != "" {
		return c
	}
	if len(k.streamBuffer) > 0 {
		c = k.streamBuffer[0]
		k.streamBuffer = k.streamBuffer[1:]
	}
	return c
}

// ReadBytesKybdFile reads n raw bytes from the keyboard only (KYBD:
// device reads), blocking via poll between each byte.
func (k *Keyboard) ReadBytesKybdFile(n int, poll func() bool) []byte {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		k.WaitChar(poll, true)
		c := k.Buf.Getc(false)
		out = append(out, []byte(c)...)
	}
	return out
}

// GetFullChar reads one single- or double-byte character, nonblocking.
// isLead/isTrail classify codepage bytes as DBCS lead/trail bytes — the
// lookahead itself (spec.md section 4.4, "DBCS lookahead") is the same
// whether the source is the ring or the redirected stream.
func (k *Keyboard) GetFullChar(expand bool, isLead, isTrail func(byte) bool) string {
	c := k.Buf.Getc(expand)
	if c != "" && isLead(c[len(c)-1]) {
		if next := k.Buf.Peek(); next != "" && isTrail(next[0]) {
			c += k.Buf.Getc(expand)
		}
	}
	if c == "" && len(k.streamBuffer) > 0 {
		c = k.streamBuffer[0]
		k.streamBuffer = k.streamBuffer[1:]
		if isLead(c[len(c)-1]) && len(k.streamBuffer) > 0 && isTrail(k.streamBuffer[0][0]) {
			c += k.streamBuffer[0]
			k.streamBuffer = k.streamBuffer[1:]
		}
	}
	return c
}

// GetFullCharBlock reads one full character, blocking until available.
func (k *Keyboard) GetFullCharBlock(poll func() bool, expand bool, isLead, isTrail func(byte) bool) string {
	k.WaitChar(poll, false)
	return k.GetFullChar(expand, isLead, isTrail)
}

// ReadLine blocks (via poll, see WaitChar) accumulating keystrokes until
// Enter (CR) closes the line, honoring backspace, and returns the text
// without its terminator — INPUT and LINE INPUT's shared console read
// path. It reads single-byte characters only; DBCS lookahead is
// GetFullChar's concern for callers that need it; this one never does,
// since INPUT's prompt-and-echo loop operates on whole lines of ASCII
// text rather than individual codepage glyphs.
func (k *Keyboard) ReadLine(poll func() bool) string {
	var sb []byte
	for {
		k.WaitChar(poll, false)
		c := k.Buf.Getc(true)
		if c == "" {
			if k.inputClosed {
				break
			}
			continue
		}
		if c == "\r" || c == "\n" {
			break
		}
		if c == "\b" {
			if len(sb) > 0 {
				sb = sb[:len(sb)-1]
			}
			continue
		}
		sb = append(sb, c...)
	}
	return string(sb)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func swapCase(c string) string {
	if len(c) != 1 {
		return c
	}
	b := c[0]
	switch {
	case b >= 'a' && b <= 'z':
		return string(b - 'a' + 'A')
	case b >= 'A' && b <= 'Z':
		return string(b - 'A' + 'a')
	}
	return c
}

// splitEascii breaks a codepage string into individual keystroke units,
// pairing a leading NUL with the byte that follows it (the two-byte
// extended-ASCII convention spec.md section 4.4 describes).
func splitEascii(s string) []string {
	var out []string
	var pending string
	for i := 0; i < len(s); i++ {
		c := s[i : i+1]
		if pending != "" || c != "\x00" {
			out = append(out, pending+c)
			pending = ""
		} else if c == "\x00" {
			pending = c
		}
	}
	return out
}
