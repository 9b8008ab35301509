package exec

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// parseLet implements LET (explicit or implicit): lvalue '=' expr,
// assigning the expression coerced to the lvalue's type (spec.md section
// 4.2, "LET"). The implicit form reaches here with the opcode byte
// already un-read by Dispatch, so parseLet itself consumes the LET
// opcode when present.
func parseLet(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == OpLet {
		r.Next()
	}
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.Require('=')
	v := ctx.Expr.Eval(r, ctx.Mem)
	lv.Set(ctx.Mem, value.ToType(sigilType(lv.Name), v))
	r.RequireEnd()
}

func sigilType(name string) value.Type {
	if name == "" {
		basicerr.Throw(basicerr.SyntaxError)
	}
	return value.Type(name[len(name)-1])
}

// stmtGoto implements GOTO line (spec.md section 4.2).
func stmtGoto(r *token.Reader, ctx *Context) {
	line := parseLineTarget(r, ctx)
	r.RequireEnd()
	ctx.Pending = Control{Kind: CtrlGoto, Line: line}
}

// stmtGosub implements GOSUB line: push the statement-after-GOSUB resume
// point, then transfer like GOTO.
func stmtGosub(r *token.Reader, ctx *Context) {
	line := parseLineTarget(r, ctx)
	r.RequireEnd()
	ctx.PushGosub(ctx.CurrentLine, r.Pos())
	ctx.Pending = Control{Kind: CtrlGoto, Line: line}
}

// stmtReturn implements RETURN[ line]: pop the GOSUB stack and resume
// either at the recorded return point or, if a line is given, at that
// line (spec.md section 4.2, "RETURN [line]").
func stmtReturn(r *token.Reader, ctx *Context) {
	f := ctx.PopGosub()
	if !r.AtStatementEnd() {
		line := parseLineTarget(r, ctx)
		r.RequireEnd()
		ctx.Pending = Control{Kind: CtrlGoto, Line: line}
		return
	}
	r.RequireEnd()
	ctx.Pending = Control{Kind: CtrlGoto, Line: f.Line, Pos: f.Pos}
}

// parseLineTarget consumes either a JumpMarker-tagged binary line number
// or a bare expression evaluating to a line number, and validates it
// exists once the caller's session wires LineSource — here it just
// parses the number; existence is checked by the session loop so this
// package stays independent of loader.Program.
func parseLineTarget(r *token.Reader, ctx *Context) int {
	if b, ok := r.Peek(); ok && b == token.JumpMarker {
		r.Next()
		return r.ReadJumpTarget()
	}
	return ctx.Expr.ParseInt(r, ctx.Mem)
}

// stmtRun implements RUN[ line][,R]: clears all variables, closes open
// files unless the ,R form is given, and starts execution from the
// given line or program start (spec.md section 4.2).
func stmtRun(r *token.Reader, ctx *Context) {
	line := 0
	if ctx.Expr.AtExprStart(r) {
		line = parseLineTarget(r, ctx)
	}
	keepFiles := false
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		r.Require('R')
		keepFiles = true
	}
	r.RequireEnd()
	if !keepFiles {
		ctx.Files.ResetAll()
	}
	ctx.Mem.Clear()
	ctx.ForStack = nil
	ctx.WhileStack = nil
	ctx.GosubStack = nil
	ctx.Pending = Control{Kind: CtrlRun, Line: line}
}

// stmtIf implements IF expr THEN stmts [ELSE stmts] (spec.md section
// 4.2): evaluate the condition as a single to avoid integer overflow on
// the test; if true, execute the THEN clause inline (including a
// trailing bare line number as an implicit GOTO); if false, scan forward
// past nested IFs on this same line to find the matching ELSE, or fall
// through to end of line.
func stmtIf(r *token.Reader, ctx *Context) {
	truthy := evalTruthy(r, ctx)
	r.Require(KwThen)

	if !truthy {
		skipThenClause(r)
		if b, ok := r.Peek(); ok && b == OpElse {
			r.Next()
			runInlineClause(r, ctx)
		}
		return
	}

	runInlineClause(r, ctx)
	if ctx.Pending.Kind != CtrlNone {
		return
	}
	skipThenClause(r)
	if b, ok := r.Peek(); ok && b == OpElse {
		r.Next()
		skipElseClause(r)
	}
}

// runInlineClause executes one THEN/ELSE clause: either a bare line
// number (implicit GOTO) or a colon-separated statement list, stopping
// at end-of-line, the matching ELSE, or a control transfer.
func runInlineClause(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == token.JumpMarker {
		r.Next()
		line := r.ReadJumpTarget()
		ctx.Pending = Control{Kind: CtrlGoto, Line: line}
		return
	}
	if b, ok := r.Peek(); ok && isDigitByte(b) {
		line := ctx.Expr.ParseInt(r, ctx.Mem)
		ctx.Pending = Control{Kind: CtrlGoto, Line: line}
		return
	}
	for {
		if err := Dispatch(ctx, r); err != nil {
			panic(err)
		}
		if ctx.Pending.Kind != CtrlNone {
			return
		}
		b, ok := r.Peek()
		if !ok || b == token.EndOfLine || b == OpElse {
			return
		}
		if b == token.Colon {
			r.Next()
			continue
		}
		return
	}
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

// skipThenClause advances r past the THEN (or not-taken condition's)
// clause without executing it, stopping at the matching ELSE (tracking
// nested IF...THEN depth so an inner IF's own ELSE doesn't match the
// outer one) or end of line.
func skipThenClause(r *token.Reader) {
	depth := 0
	for {
		b, ok := r.Peek()
		if !ok || b == token.EndOfLine {
			return
		}
		if b == OpIf {
			depth++
		}
		if b == OpElse {
			if depth == 0 {
				return
			}
			depth--
		}
		r.Next()
		if b == token.JumpMarker {
			r.Skip(2)
		}
	}
}

// skipElseClause advances r to end of line, the ELSE clause having been
// selected against.
func skipElseClause(r *token.Reader) {
	for {
		b, ok := r.Peek()
		if !ok || b == token.EndOfLine {
			return
		}
		r.Next()
		if b == token.JumpMarker {
			r.Skip(2)
		}
	}
}

// stmtEnd implements END: checks for trailing garbage before acting,
// unlike TRON/CONT's post-check, matching spec.md section 4.1's
// documented pre/post terminator-check asymmetry.
func stmtEnd(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	ctx.Pending = Control{Kind: CtrlEnd}
}

// stmtStop implements STOP: same pre-check discipline as END, but
// leaves CONT able to resume.
func stmtStop(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	ctx.Pending = Control{Kind: CtrlStop}
}

// stmtSystem implements SYSTEM: pre-checked, like END.
func stmtSystem(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	ctx.Session.SystemExit()
	ctx.Pending = Control{Kind: CtrlEnd}
}

// stmtNew implements NEW: pre-checked; clears program, variables, and
// DEFtype table.
func stmtNew(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	ctx.Mem.Clear()
	ctx.Mem.ResetDefType()
	ctx.ForStack = nil
	ctx.WhileStack = nil
	ctx.GosubStack = nil
	ctx.Session.NewProgram()
}

// stmtCont implements CONT: executes (resuming the suspended program)
// before any trailing-garbage check would matter, since CONT takes no
// arguments — any trailing byte that isn't end-of-statement is itself
// the error, raised by RequireEnd after the resume decision is made.
func stmtCont(r *token.Reader, ctx *Context) {
	ctx.Pending = Control{Kind: CtrlContinue}
	r.RequireEnd()
}

// stmtTron implements TRON: turns statement tracing on, then validates
// no trailing arguments — the post-check half of the asymmetry stmtEnd
// documents.
func stmtTron(r *token.Reader, ctx *Context) {
	ctx.TronOn = true
	r.RequireEnd()
}

// stmtTroff implements TROFF.
func stmtTroff(r *token.Reader, ctx *Context) {
	ctx.TronOn = false
	r.RequireEnd()
}

// stmtReset implements RESET: flush and close every open file, then
// validate no trailing arguments.
func stmtReset(r *token.Reader, ctx *Context) {
	ctx.Files.ResetAll()
	r.RequireEnd()
}
