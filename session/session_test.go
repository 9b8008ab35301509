package session

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/exec"
	"github.com/basicretro/gwbasic-core/keyboard"
	"github.com/basicretro/gwbasic-core/loader"
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// digitExpr is a minimal collab.Expr stand-in: it only needs to parse
// plain ASCII digit runs, since every test program below drives control
// flow through JumpMarker-encoded line targets rather than the
// expression collaborator.
type digitExpr struct{}

func (digitExpr) Eval(r *token.Reader, mem *memory.Store) value.Value {
	return value.Int(int16(digitExpr{}.ParseInt(r, mem)))
}

func (digitExpr) EvalAs(r *token.Reader, mem *memory.Store, t value.Type) value.Value {
	return value.ToType(t, digitExpr{}.Eval(r, mem))
}

func (digitExpr) ParseLValue(r *token.Reader, mem *memory.Store) collab.LValue {
	basicerr.Throw(basicerr.SyntaxError)
	return collab.LValue{}
}

func (digitExpr) ParseString(r *token.Reader, mem *memory.Store) string {
	basicerr.Throw(basicerr.SyntaxError)
	return ""
}

func (digitExpr) ParseInt(r *token.Reader, mem *memory.Store) int {
	n := 0
	sawDigit := false
	for {
		b, ok := r.Peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		r.Next()
		n = n*10 + int(b-'0')
		sawDigit = true
	}
	if !sawDigit {
		basicerr.Throw(basicerr.SyntaxError)
	}
	return n
}

func (digitExpr) AtExprStart(r *token.Reader) bool {
	b, ok := r.Peek()
	return ok && b >= '0' && b <= '9'
}

// jumpTarget encodes a GOTO/GOSUB/RESUME line target the way the
// loader's upstream tokenizer would: a JumpMarker byte followed by a
// little-endian uint16 line number.
func jumpTarget(line int) []byte {
	b := make([]byte, 3)
	b[0] = token.JumpMarker
	binary.LittleEndian.PutUint16(b[1:], uint16(line))
	return b
}

func newTestSession(t *testing.T, lines map[int][]byte) *Session {
	t.Helper()
	prog := loader.Empty()
	for n, body := range lines {
		prog.PutLine(n, body)
	}
	sess := New(prog, memory.New(), keyboard.NewKeyboard(false))
	sess.Ctx = &exec.Context{
		Mem:     sess.Mem,
		KB:      sess.KB,
		Expr:    digitExpr{},
		Screen:  collab.NullScreen{},
		Sound:   collab.NullSound{},
		Files:   collab.NullFiles{},
		Devices: collab.NullDevices{},
		AllMem:  collab.NullAllMemory{},
		Events:  sess.Registry,
		Clock:   collab.NullClock{},
		Stick:   collab.NullStick{},
		Session: sess,
		Lines:   sess,
	}
	return sess
}

func TestRunFollowsGoto(t *testing.T) {
	lines := map[int][]byte{
		10: append([]byte{exec.OpGoto}, append(jumpTarget(30), token.EndOfLine)...),
		20: {exec.OpError, '9', token.EndOfLine}, // never reached
		30: {exec.OpEnd, token.EndOfLine},
	}
	sess := newTestSession(t, lines)
	if err := sess.Run(0); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

// buildErrorTrapProgram returns a program with two ERROR-raising lines
// guarded by the same ON ERROR GOTO handler, which always RESUMEs past
// whichever statement faulted.
func buildErrorTrapProgram() map[int][]byte {
	onErr := append([]byte{exec.OpOn, exec.OpError, exec.KwGoto}, append(jumpTarget(100), token.EndOfLine)...)
	return map[int][]byte{
		10:  onErr,
		20:  {exec.OpError, '5', token.EndOfLine},
		25:  {exec.OpError, '7', token.EndOfLine},
		30:  {exec.OpEnd, token.EndOfLine},
		100: {exec.OpResume, exec.OpNext, token.EndOfLine},
	}
}

// TestRunTrapReactivatesAfterResume exercises the exact regression this
// session's RESUME fix addressed: ctx.Trap.Active must be cleared by
// RESUME, or the second ERROR (line 25) would fall straight through
// tryTrap's guard and propagate unhandled instead of being caught by
// the still-installed ON ERROR GOTO 100 handler.
func TestRunTrapReactivatesAfterResume(t *testing.T) {
	sess := newTestSession(t, buildErrorTrapProgram())
	if err := sess.Run(0); err != nil {
		t.Fatalf("Run returned unhandled error: %v", err)
	}
}

func TestRunResumeToExplicitLine(t *testing.T) {
	onErr := append([]byte{exec.OpOn, exec.OpError, exec.KwGoto}, append(jumpTarget(100), token.EndOfLine)...)
	resumeTo40 := append([]byte{exec.OpResume}, append(jumpTarget(40), token.EndOfLine)...)
	lines := map[int][]byte{
		10:  onErr,
		20:  {exec.OpError, '5', token.EndOfLine},
		40:  {exec.OpEnd, token.EndOfLine},
		100: resumeTo40,
	}
	sess := newTestSession(t, lines)
	if err := sess.Run(0); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestRunUntrappedErrorPropagates(t *testing.T) {
	lines := map[int][]byte{
		10: {exec.OpError, '5', token.EndOfLine},
	}
	sess := newTestSession(t, lines)
	err := sess.Run(0)
	if err == nil {
		t.Fatal("expected an unhandled error, got nil")
	}
	if err.Code != basicerr.Code(5) {
		t.Fatalf("got code %v, want 5", err.Code)
	}
}

// TestResolveResumeSame exercises bare RESUME's target resolution in
// isolation, since driving it through Run would re-raise the same
// error forever (bare RESUME re-enters the statement that faulted).
func TestResolveResumeSame(t *testing.T) {
	body := []byte{exec.OpError, '5', token.Colon, exec.OpError, '6', token.EndOfLine}
	sess := newTestSession(t, map[int][]byte{10: body})
	sess.Ctx.Trap.ErrLine = 10
	sess.Ctx.Trap.ResumePos = 3 // the second "ERROR 6" statement, after the colon

	line, pos, ok := sess.resolveResume(exec.Control{Kind: exec.CtrlResumeSame})
	if !ok || line != 10 || pos != 3 {
		t.Fatalf("got (line=%d, pos=%d, ok=%v), want (10, 3, true)", line, pos, ok)
	}
}

func TestResolveResumeNextLandsAtEndOfErroringLine(t *testing.T) {
	sess := newTestSession(t, map[int][]byte{
		10: {exec.OpError, '5', token.EndOfLine},
		20: {exec.OpEnd, token.EndOfLine},
	})
	sess.Ctx.Trap.ErrLine = 10
	sess.Ctx.Trap.ResumePos = 0

	line, _, ok := sess.resolveResume(exec.Control{Kind: exec.CtrlResumeNext})
	if !ok || line != 10 {
		t.Fatalf("got (line=%d, ok=%v), want landing back on line 10 at its end-of-line byte", line, ok)
	}
}

func TestResolveResumeLineRejectsMissingTarget(t *testing.T) {
	sess := newTestSession(t, map[int][]byte{10: {exec.OpEnd, token.EndOfLine}})
	_, _, ok := sess.resolveResume(exec.Control{Kind: exec.CtrlResumeLine, Line: 999})
	if ok {
		t.Fatal("expected resolveResume to reject a line number absent from the program")
	}
}

func TestExecImmediateStoresAndDeletesLine(t *testing.T) {
	sess := newTestSession(t, nil)
	stub := func(source string) ([]byte, error) {
		return []byte{exec.OpEnd, token.EndOfLine}, nil
	}

	if quit, err := sess.execImmediate("10 END", stub); err != nil || quit {
		t.Fatalf("execImmediate(store) = (%v, %v)", quit, err)
	}
	if _, ok := sess.Prog.Line(10); !ok {
		t.Fatal("expected line 10 to be stored")
	}

	if quit, err := sess.execImmediate("10", stub); err != nil || quit {
		t.Fatalf("execImmediate(delete) = (%v, %v)", quit, err)
	}
	if _, ok := sess.Prog.Line(10); ok {
		t.Fatal("expected line 10 to be deleted by a bare line number")
	}
}

func TestExecImmediateSystemQuits(t *testing.T) {
	sess := newTestSession(t, nil)
	quit, err := sess.execImmediate("SYSTEM", func(string) ([]byte, error) { return nil, nil })
	if err != nil || !quit {
		t.Fatalf("execImmediate(SYSTEM) = (%v, %v), want (true, nil)", quit, err)
	}
}

// TestRunDirectStatementEndingInEnd guards against the infinite loop a
// direct-mode statement containing END used to cause: Step's CtrlEnd
// case returns line 0, which collided with runDirect's old sentinel of
// the same value.
func TestRunDirectStatementEndingInEnd(t *testing.T) {
	sess := newTestSession(t, map[int][]byte{10: {exec.OpEnd, token.EndOfLine}})
	done := make(chan error, 1)
	go func() { done <- sess.runDirect([]byte{exec.OpEnd, token.EndOfLine}) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runDirect returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runDirect did not return; direct-mode END likely looping")
	}
	if _, ok := sess.Prog.Line(-1); ok {
		t.Fatal("runDirect left its ephemeral line behind")
	}
	if _, ok := sess.Prog.Line(10); !ok {
		t.Fatal("runDirect must not disturb the resident program")
	}
}
