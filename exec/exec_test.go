package exec

import (
	"testing"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// fakeExpr is a minimal stand-in for the real expression parser,
// sufficient to exercise the dispatcher and statement parsers without
// depending on the actual collaborator. It reads plain ASCII: digit
// runs (optionally signed) as integer literals, quoted text as string
// literals, and letter runs (optionally sigil-suffixed) as variable
// references; an operand followed by '+' is added to the rest of the
// expression with value.Add.
type fakeExpr struct{}

func (fakeExpr) Eval(r *token.Reader, mem *memory.Store) value.Value {
	b, ok := r.Peek()
	if !ok {
		basicerr.Throw(basicerr.SyntaxError)
	}
	var v value.Value
	switch {
	case b == '"':
		v = value.Str(fakeExpr{}.ParseString(r, mem))
	case b == '-' || isDigitByte(b):
		v = value.Int(int16(fakeExpr{}.ParseInt(r, mem)))
	case isLetterByte(b):
		v = fakeExpr{}.ParseLValue(r, mem).Get(mem)
	default:
		basicerr.Throw(basicerr.SyntaxError)
	}
	if b, ok := r.Peek(); ok && b == '+' {
		r.Next()
		return value.Add(v, fakeExpr{}.Eval(r, mem))
	}
	return v
}

func (f fakeExpr) EvalAs(r *token.Reader, mem *memory.Store, t value.Type) value.Value {
	return value.ToType(t, f.Eval(r, mem))
}

func (fakeExpr) ParseLValue(r *token.Reader, mem *memory.Store) collab.LValue {
	var name []byte
	for {
		b, ok := r.Peek()
		if !ok || !isLetterByte(b) {
			break
		}
		r.Next()
		name = append(name, b)
	}
	if len(name) == 0 {
		basicerr.Throw(basicerr.SyntaxError)
	}
	if b, ok := r.Peek(); ok && isSigilByte(b) {
		r.Next()
		name = append(name, b)
	}
	full := mem.CompleteName(string(name))

	var indices []int
	if b, ok := r.Peek(); ok && b == '(' {
		r.Next()
		for {
			indices = append(indices, fakeExpr{}.ParseInt(r, mem))
			if b, ok := r.Peek(); ok && b == ',' {
				r.Next()
				continue
			}
			break
		}
		r.Require(')')
	}
	return collab.LValue{Name: full, Indices: indices}
}

func isSigilByte(b byte) bool {
	switch value.Type(b) {
	case value.TypeInteger, value.TypeSingle, value.TypeDouble, value.TypeString:
		return true
	}
	return false
}

func (f fakeExpr) ParseString(r *token.Reader, mem *memory.Store) string {
	b, ok := r.Peek()
	if ok && b == '"' {
		r.Next()
		var out []byte
		for {
			c, ok := r.Next()
			if !ok || c == '"' {
				break
			}
			out = append(out, c)
		}
		return string(out)
	}
	v := f.Eval(r, mem)
	if v.Typ != value.TypeString {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	return v.Str
}

func (f fakeExpr) ParseInt(r *token.Reader, mem *memory.Store) int {
	neg := false
	if b, ok := r.Peek(); ok && b == '-' {
		r.Next()
		neg = true
	}
	n := 0
	sawDigit := false
	for {
		b, ok := r.Peek()
		if !ok || !isDigitByte(b) {
			break
		}
		r.Next()
		n = n*10 + int(b-'0')
		sawDigit = true
	}
	if !sawDigit {
		basicerr.Throw(basicerr.SyntaxError)
	}
	if neg {
		n = -n
	}
	return n
}

func (fakeExpr) AtExprStart(r *token.Reader) bool {
	b, ok := r.Peek()
	if !ok {
		return false
	}
	return b == '"' || b == '-' || isDigitByte(b) || isLetterByte(b)
}

func newCtx() *Context {
	return &Context{
		Mem:     memory.New(),
		Expr:    fakeExpr{},
		Screen:  collab.NullScreen{},
		Sound:   collab.NullSound{},
		Files:   collab.NullFiles{},
		Devices: collab.NullDevices{},
		AllMem:  collab.NullAllMemory{},
		Events:  collab.NullEvents{},
		Clock:   collab.NullClock{},
		Stick:   collab.NullStick{},
		Session: nullSession{},
	}
}

// nullSession is a no-op collab.Session for tests that don't exercise
// whole-program lifecycle operations.
type nullSession struct{}

func (nullSession) NewProgram()                     {}
func (nullSession) RunProgram(startLine int)         {}
func (nullSession) LoadProgram(name string, keepVars bool) error { return nil }
func (nullSession) SaveProgram(name string, ascii bool) error    { return nil }
func (nullSession) MergeProgram(name string) error               { return nil }
func (nullSession) ChainProgram(name string, line int, allVars bool, deleteFrom, deleteTo int) error {
	return nil
}
func (nullSession) ClearAll(memSize int)                {}
func (nullSession) DeleteLines(from, to int)            {}
func (nullSession) AutoLineNumbers(start, increment int) {}
func (nullSession) RenumLines(newStart, oldStart, increment int) {}
func (nullSession) EditLine(line int)               {}
func (nullSession) ListLines(from, to int, device string) {}
func (nullSession) LlistLines(from, to int)         {}
func (nullSession) Shell(command string)            {}
func (nullSession) SystemExit()                     {}
func (nullSession) Term()                           {}
func (nullSession) Randomize(seed value.Value, prompted bool) {}
func (nullSession) RaiseError(code int)             {}
func (nullSession) EndProgram()                     {}
func (nullSession) CommonVars(names []string)       {}
func (nullSession) Input(prompt string, targets []collab.LValue, suppressCR bool) error {
	return nil
}
func (nullSession) InputFile(fileNum int, targets []collab.LValue) error { return nil }
func (nullSession) LineInput(prompt string, target collab.LValue, fileNum int) error {
	return nil
}

func dispatchLine(t *testing.T, ctx *Context, body []byte) *token.Reader {
	t.Helper()
	r := token.New(body)
	for !r.AtEnd() {
		before := r.Pos()
		if err := Dispatch(ctx, r); err != nil {
			t.Fatalf("dispatch error: %v", err)
		}
		if ctx.Pending.Kind != CtrlNone {
			break
		}
		if b, ok := r.Peek(); ok && b == token.Colon {
			r.Next()
			continue
		}
		if r.Pos() == before {
			break
		}
	}
	return r
}

func TestImplicitLetFallback(t *testing.T) {
	ctx := newCtx()
	body := []byte("X%=42\x00")
	dispatchLine(t, ctx, body)
	got := ctx.Mem.GetScalar("X%")
	if got.Typ != value.TypeInteger || got.I != 42 {
		t.Fatalf("got %+v", got)
	}
}

func TestExplicitLet(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpLet}, []byte("Y%=7\x00")...)
	dispatchLine(t, ctx, body)
	got := ctx.Mem.GetScalar("Y%")
	if got.I != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestEndPreChecksTerminator(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpEnd}, 'X', token.EndOfLine)
	r := token.New(body)
	err := Dispatch(ctx, r)
	if err == nil || err.Code != basicerr.SyntaxError {
		t.Fatalf("expected syntax error before END's side effect, got %v", err)
	}
	if ctx.Pending.Kind == CtrlEnd {
		t.Fatalf("END should not have taken effect when trailing garbage exists")
	}
}

func TestTronPostChecksTerminator(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpTron}, 'X', token.EndOfLine)
	r := token.New(body)
	err := Dispatch(ctx, r)
	if err == nil || err.Code != basicerr.SyntaxError {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if !ctx.TronOn {
		t.Fatalf("TRON should have taken effect even though trailing garbage also raised")
	}
}

func TestIfElseNesting(t *testing.T) {
	ctx := newCtx()
	// IF 0 THEN (IF 1 THEN A%=1 ELSE A%=2) ELSE A%=3
	body := []byte{}
	body = append(body, OpIf)
	body = append(body, []byte("0")...)
	body = append(body, KwThen)
	body = append(body, OpIf)
	body = append(body, []byte("1")...)
	body = append(body, KwThen)
	body = append(body, []byte("A%=1")...)
	body = append(body, OpElse)
	body = append(body, []byte("A%=2")...)
	body = append(body, OpElse)
	body = append(body, []byte("A%=3")...)
	body = append(body, token.EndOfLine)

	dispatchLine(t, ctx, body)
	got := ctx.Mem.GetScalar("A%")
	if got.I != 3 {
		t.Fatalf("want A%%=3, got %+v", got)
	}
}

func TestForNextLoop(t *testing.T) {
	ctx := newCtx()
	ctx.Lines = noLines{}

	// Single-line simulation: FOR I%=1 TO 3 : S%=S%+I% : NEXT I%
	body := []byte{}
	body = append(body, OpFor)
	body = append(body, []byte("I%=1")...)
	body = append(body, KwTo)
	body = append(body, []byte("3")...)
	body = append(body, token.Colon)
	body = append(body, OpLet)
	body = append(body, []byte("S%=S%+I%")...)
	body = append(body, token.Colon)
	body = append(body, OpNext)
	body = append(body, []byte("I%")...)
	body = append(body, token.EndOfLine)

	r := token.New(body)
	ctx.CurrentLine = 10
	for {
		if err := Dispatch(ctx, r); err != nil {
			t.Fatalf("dispatch error: %v", err)
		}
		if ctx.Pending.Kind == CtrlGoto {
			r.SetPos(ctx.Pending.Pos)
			ctx.Pending = Control{}
			continue
		}
		if b, ok := r.Peek(); ok && b == token.Colon {
			r.Next()
			continue
		}
		if r.AtEnd() {
			break
		}
	}

	got := ctx.Mem.GetScalar("S%")
	if got.I != 6 {
		t.Fatalf("want S%%=6 (1+2+3), got %+v", got)
	}
}

func TestForRejectsStringAndDoubleLoopVariable(t *testing.T) {
	cases := []struct {
		name    string
		varName string
	}{
		{"string", "X$=1"},
		{"double", "X#=1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := newCtx()
			body := []byte{OpFor}
			body = append(body, []byte(c.varName)...)
			body = append(body, KwTo)
			body = append(body, []byte("10")...)
			body = append(body, token.EndOfLine)

			r := token.New(body)
			err := Dispatch(ctx, r)
			if err == nil || err.Code != basicerr.TypeMismatch {
				t.Fatalf("want Type Mismatch, got %+v", err)
			}
		})
	}
}

type noLines struct{}

func (noLines) Body(line int) ([]byte, bool)                   { return nil, false }
func (noLines) After(line int) (int, []byte, bool)              { return 0, nil, false }

func TestOnGotoComputedJumpSkippedErrorsStillRaise(t *testing.T) {
	ctx := newCtx()
	// ON 1 GOTO 10, <malformed> -- the second jumpnum is never the
	// selected target (n=1 picks the first), but the whole list is
	// parsed up front, so a malformed second entry must still raise.
	body := []byte{}
	body = append(body, OpOn)
	body = append(body, []byte("1")...)
	body = append(body, KwGoto)
	body = append(body, token.JumpMarker)
	body = append(body, 10, 0)
	body = append(body, ',')
	body = append(body, '*')
	body = append(body, token.EndOfLine)

	r := token.New(body)
	err := Dispatch(ctx, r)
	if err == nil || err.Code != basicerr.SyntaxError {
		t.Fatalf("expected the skipped jumpnum's parse error to still raise, got %v", err)
	}
	if ctx.Pending.Kind == CtrlGoto {
		t.Fatalf("a raised error should prevent the pending jump from being set")
	}
}

func TestOptionBaseAcceptsOnlyZeroOrOne(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpOption, KwBase}, []byte("1")...)
	body = append(body, token.EndOfLine)
	dispatchLine(t, ctx, body)

	ctx2 := newCtx()
	bad := append([]byte{OpOption, KwBase}, '2')
	bad = append(bad, token.EndOfLine)
	r := token.New(bad)
	err := Dispatch(ctx2, r)
	if err == nil || err.Code != basicerr.SyntaxError {
		t.Fatalf("expected syntax error for non-0/1 base, got %v", err)
	}
}

func TestDefTypeRange(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpDefStr}, []byte("A-C")...)
	body = append(body, token.EndOfLine)
	dispatchLine(t, ctx, body)

	full := ctx.Mem.CompleteName("APPLE")
	if value.Type(full[len(full)-1]) != value.TypeString {
		t.Fatalf("expected DEFSTR A-C to make APPLE a string, got %q", full)
	}
}

func TestGosubReturn(t *testing.T) {
	ctx := newCtx()
	body := []byte{}
	body = append(body, OpGosub)
	body = append(body, token.JumpMarker)
	body = append(body, 20, 0)
	body = append(body, token.EndOfLine)
	r := token.New(body)
	ctx.CurrentLine = 10
	if err := Dispatch(ctx, r); err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if ctx.Pending.Kind != CtrlGoto || ctx.Pending.Line != 20 {
		t.Fatalf("expected jump to 20, got %+v", ctx.Pending)
	}
	if len(ctx.GosubStack) != 1 || ctx.GosubStack[0].Line != 10 {
		t.Fatalf("expected a pushed return frame at line 10, got %+v", ctx.GosubStack)
	}
}

func TestReturnWithoutGosubRaises(t *testing.T) {
	ctx := newCtx()
	body := append([]byte{OpReturn}, token.EndOfLine)
	r := token.New(body)
	err := Dispatch(ctx, r)
	if err == nil || err.Code != basicerr.ReturnWithoutGosub {
		t.Fatalf("expected Return Without Gosub, got %v", err)
	}
}
