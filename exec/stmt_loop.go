package exec

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// stmtFor implements FOR var = start TO stop [STEP step] (spec.md
// section 4.2: "STR and DBL loop variables are rejected"). The Type
// Mismatch check fires only after TO has been parsed, matching
// original_source's statements.py (the check is raised post-TO there
// too), not at the variable reference itself.
func stmtFor(r *token.Reader, ctx *Context) {
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	if lv.Indices != nil {
		basicerr.Throw(basicerr.SyntaxError)
	}
	t := sigilType(lv.Name)
	r.Require('=')
	start := ctx.Expr.EvalAs(r, ctx.Mem, t)
	r.Require(KwTo)
	if t == value.TypeString || t == value.TypeDouble {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	stop := ctx.Expr.EvalAs(r, ctx.Mem, t)
	step := value.ToType(t, value.Int(1))
	if b, ok := r.Peek(); ok && b == KwStep {
		r.Next()
		step = ctx.Expr.EvalAs(r, ctx.Mem, t)
	}
	r.RequireEnd()

	ctx.Mem.LetScalar(lv.Name, start)
	ctx.ForStack = append(ctx.ForStack, ForFrame{
		Var: lv.Name, Stop: stop, Step: step,
		BodyLine: ctx.CurrentLine, BodyPos: r.Pos(),
	})

	if forExpired(ctx.Mem.GetScalar(lv.Name), stop, step) {
		line, pos := skipToMatchingNext(r, ctx, ctx.CurrentLine)
		ctx.ForStack = ctx.ForStack[:len(ctx.ForStack)-1]
		ctx.Pending = Control{Kind: CtrlGoto, Line: line, Pos: pos}
	}
}

func forExpired(cur, stop, step value.Value) bool {
	s := stepSign(step)
	c, e := asFloat64(cur), asFloat64(stop)
	if s >= 0 {
		return c > e
	}
	return c < e
}

func stepSign(step value.Value) int {
	f := asFloat64(step)
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func asFloat64(v value.Value) float64 {
	switch v.Typ {
	case value.TypeInteger:
		return float64(v.I)
	case value.TypeSingle:
		return v.S.Float64()
	case value.TypeDouble:
		return v.D.Float64()
	}
	return 0
}

// skipToMatchingNext advances past the loop body, crossing into
// following lines via ctx.Lines as needed, to find the NEXT that closes
// this FOR, for the case where the loop body never executes because the
// initial bound test already fails. It returns the position just past
// that NEXT statement, where execution resumes. A NEXT naming several
// variables is skipped as a whole: only this loop is closed, not the
// outer loops it also names.
func skipToMatchingNext(r *token.Reader, ctx *Context, startLine int) (line, pos int) {
	depth := 0
	curLine := startLine
	cur := r

	for {
		b, ok := cur.Peek()
		if !ok {
			var body []byte
			var num int
			num, body, ok = ctx.Lines.After(curLine)
			if !ok {
				basicerr.Throw(basicerr.ForWithoutNext)
			}
			curLine = num
			cur = token.New(body)
			continue
		}
		if b == OpFor {
			depth++
		}
		if b == OpNext {
			if depth == 0 {
				cur.Next()
				cur.SkipToStatementEnd()
				return curLine, cur.Pos()
			}
			depth--
		}
		cur.Next()
		if b == token.JumpMarker {
			cur.Skip(2)
		}
	}
}

// stmtNext implements NEXT [var[, var...]] (spec.md section 4.2): each
// named variable (or, with no list, the innermost open loop) closes one
// FOR frame, re-testing its bound and jumping back to the loop body if
// not yet expired.
func stmtNext(r *token.Reader, ctx *Context) {
	names := []string{}
	if !r.AtStatementEnd() {
		for {
			lv := ctx.Expr.ParseLValue(r, ctx.Mem)
			names = append(names, lv.Name)
			if b, ok := r.Peek(); ok && b == ',' {
				r.Next()
				continue
			}
			break
		}
	}
	r.RequireEnd()

	if len(names) == 0 {
		closeOneFor(ctx, "")
		return
	}
	for _, n := range names {
		closeOneFor(ctx, n)
	}
}

func closeOneFor(ctx *Context, wantVar string) {
	if len(ctx.ForStack) == 0 {
		basicerr.Throw(basicerr.NextWithoutFor)
	}
	top := ctx.ForStack[len(ctx.ForStack)-1]
	if wantVar != "" && top.Var != wantVar {
		basicerr.Throw(basicerr.NextWithoutFor)
	}

	t := sigilType(top.Var)
	cur := value.ToType(t, value.Add(ctx.Mem.GetScalar(top.Var), top.Step))
	ctx.Mem.LetScalar(top.Var, cur)

	if forExpired(cur, top.Stop, top.Step) {
		ctx.ForStack = ctx.ForStack[:len(ctx.ForStack)-1]
		return
	}
	ctx.Pending = Control{Kind: CtrlGoto, Line: top.BodyLine, Pos: top.BodyPos}
}

// stmtWhile implements WHILE expr (spec.md section 4.2): records the
// position of the WHILE opcode itself so WEND can jump back and re-test
// the condition, and if the condition is already false, skips forward
// (possibly across lines) to the matching WEND.
func stmtWhile(r *token.Reader, ctx *Context) {
	condPos := r.Pos() - 1
	truthy := evalTruthy(r, ctx)
	r.RequireEnd()

	if !truthy {
		skipToMatchingWend(r, ctx)
		return
	}
	ctx.WhileStack = append(ctx.WhileStack, WhileFrame{CondLine: ctx.CurrentLine, CondPos: condPos})
}

// stmtWend implements WEND: pops the innermost WHILE frame and jumps
// back to re-evaluate its condition.
func stmtWend(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	if len(ctx.WhileStack) == 0 {
		basicerr.Throw(basicerr.WendWithoutWhile)
	}
	top := ctx.WhileStack[len(ctx.WhileStack)-1]
	ctx.WhileStack = ctx.WhileStack[:len(ctx.WhileStack)-1]
	ctx.Pending = Control{Kind: CtrlGoto, Line: top.CondLine, Pos: top.CondPos}
}

// skipToMatchingWend scans forward from r's current line, crossing
// into subsequent lines via ctx.Lines, counting nested WHILEs, to find
// the WEND that closes this WHILE — unlike IF/ELSE, WHILE/WEND may span
// many lines, so this scan is not confined to one line's token buffer.
func skipToMatchingWend(r *token.Reader, ctx *Context) {
	depth := 0
	line := ctx.CurrentLine
	cur := r

	for {
		b, ok := cur.Peek()
		if !ok {
			var body []byte
			var num int
			num, body, ok = ctx.Lines.After(line)
			if !ok {
				basicerr.Throw(basicerr.WhileWithoutWend)
			}
			line = num
			cur = token.New(body)
			continue
		}
		if b == OpWhile {
			depth++
		}
		if b == OpWend {
			if depth == 0 {
				cur.Next()
				ctx.Pending = Control{Kind: CtrlGoto, Line: line, Pos: cur.Pos()}
				return
			}
			depth--
		}
		cur.Next()
		if b == token.JumpMarker {
			cur.Skip(2)
		}
	}
}
