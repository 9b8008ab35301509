package exec

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// stmtDim implements DIM name(dims)[, name(dims)...] (spec.md section
// 4.2).
func stmtDim(r *token.Reader, ctx *Context) {
	for {
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		if lv.Indices == nil {
			basicerr.Throw(basicerr.SyntaxError)
		}
		ctx.Mem.DimArray(lv.Name, lv.Indices)
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
}

// stmtErase implements ERASE name[, name...].
func stmtErase(r *token.Reader, ctx *Context) {
	for {
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		ctx.Mem.EraseArray(lv.Name)
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
}

// stmtRead implements READ lvalue[, lvalue...] (spec.md section 4.2):
// pulls the next unconsumed value from the program's DATA statements,
// coercing to each target's type, and raises Out of DATA when
// exhausted.
func stmtRead(r *token.Reader, ctx *Context) {
	for {
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		v, ok := nextDataValue(ctx)
		if !ok {
			basicerr.Throw(basicerr.OutOfData)
		}
		lv.Set(ctx.Mem, value.ToType(sigilType(lv.Name), v))
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
}

// nextDataValue advances the shared DATA cursor (ctx.DataLine/DataPos)
// to the next literal, crossing line boundaries via ctx.Lines, and
// parses it as a string (DATA payloads are untyped text; the caller
// coerces to the target's type via value.ToType, matching spec.md
// section 4.2: "DATA's own statement body is never tokenized as
// expressions; READ re-parses its raw text").
func nextDataValue(ctx *Context) (value.Value, bool) {
	line := ctx.DataLine
	pos := ctx.DataPos
	if line == 0 {
		first, _, ok := ctx.Lines.After(0)
		if !ok {
			return value.Value{}, false
		}
		line = first
		pos = 0
	}

	for {
		body, ok := ctx.Lines.Body(line)
		if !ok {
			return value.Value{}, false
		}
		r := token.New(body)
		r.SetPos(pos)
		lit, found, newPos := scanNextDataLiteral(r, body)
		if found {
			ctx.DataLine = line
			ctx.DataPos = newPos
			return parseDataLiteral(lit), true
		}
		nextLine, nextBody, ok := ctx.Lines.After(line)
		if !ok {
			ctx.DataLine = line
			ctx.DataPos = len(body)
			return value.Value{}, false
		}
		line = nextLine
		pos = 0
		_ = nextBody
	}
}

// scanNextDataLiteral walks body from pos looking for the next DATA
// opcode, then returns the raw text of its first unconsumed literal.
// A pos resting on the comma after an item already read continues with
// the next item of that same DATA statement.
func scanNextDataLiteral(r *token.Reader, body []byte) (lit string, found bool, newPos int) {
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		return readDataItem(r), true, r.Pos()
	}
	for {
		b, ok := r.Peek()
		if !ok || b == token.EndOfLine {
			return "", false, r.Pos()
		}
		if b == OpData {
			r.Next()
			return readDataItem(r), true, r.Pos()
		}
		r.Next()
		if b == token.JumpMarker {
			r.Skip(2)
		}
	}
}

// readDataItem consumes one comma-delimited item of a DATA statement's
// raw text up to the next comma, colon, or end of line, trimming a
// pair of surrounding double quotes if present.
func readDataItem(r *token.Reader) string {
	var raw []byte
	for {
		b, ok := r.Peek()
		if !ok || b == token.EndOfLine || b == token.Colon || b == ',' {
			break
		}
		r.Next()
		raw = append(raw, b)
	}
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
	}
	return s
}

// parseDataLiteral converts a DATA item's raw text into a Value,
// preferring numeric interpretation and falling back to string.
func parseDataLiteral(s string) value.Value {
	if f, ok := parseFloatLiteral(s); ok {
		return value.SingleVal(value.SingleFromFloat64(f))
	}
	return value.Str(s)
}

func parseFloatLiteral(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		i++
	}
	if i >= len(s) {
		return 0, false
	}
	var intPart, fracPart float64
	sawDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := 0.1
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			fracPart += float64(s[i]-'0') * scale
			scale /= 10
			i++
			sawDigit = true
		}
	}
	if !sawDigit || i != len(s) {
		return 0, false
	}
	v := intPart + fracPart
	if neg {
		v = -v
	}
	return v, true
}

// stmtData implements DATA: its payload is inert text, never executed;
// the dispatcher simply skips to the end of the statement.
func stmtData(r *token.Reader, ctx *Context) {
	r.SkipToStatementEnd()
}

// stmtRestore implements RESTORE[ line]: resets the shared DATA cursor
// to the start of the program, or to a given line.
func stmtRestore(r *token.Reader, ctx *Context) {
	if ctx.Expr.AtExprStart(r) {
		line := parseLineTarget(r, ctx)
		r.RequireEnd()
		ctx.DataLine = line
		ctx.DataPos = 0
		return
	}
	r.RequireEnd()
	ctx.DataLine = 0
	ctx.DataPos = 0
}

// stmtRem implements REM: the rest of the physical line is a comment,
// colons included.
func stmtRem(r *token.Reader, ctx *Context) {
	r.SkipToLineEnd()
}

// stmtClear implements CLEAR[,[memSize][,stackSize]] (spec.md section
// 4.2): resets all variables and closes files.
func stmtClear(r *token.Reader, ctx *Context) {
	memSize := 0
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			memSize = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			if ctx.Expr.AtExprStart(r) {
				ctx.Expr.ParseInt(r, ctx.Mem)
			}
		}
	}
	r.RequireEnd()
	ctx.Files.ResetAll()
	ctx.Mem.Clear()
	ctx.ForStack = nil
	ctx.WhileStack = nil
	ctx.GosubStack = nil
	ctx.Session.ClearAll(memSize)
}

// stmtSwap implements SWAP var1, var2 (spec.md section 4.2): the two
// variables must share a type.
func stmtSwap(r *token.Reader, ctx *Context) {
	a := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.Require(',')
	b := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.RequireEnd()
	if a.Indices == nil && b.Indices == nil {
		ctx.Mem.SwapScalars(a.Name, b.Name)
		return
	}
	va, vb := a.Get(ctx.Mem), b.Get(ctx.Mem)
	if va.Typ != vb.Typ {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	a.Set(ctx.Mem, vb)
	b.Set(ctx.Mem, va)
}

// stmtCommon implements COMMON var[, var...], naming variables CHAIN
// should preserve.
func stmtCommon(r *token.Reader, ctx *Context) {
	var names []string
	for {
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		names = append(names, lv.Name)
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
	ctx.Session.CommonVars(names)
}

// stmtOption implements OPTION BASE 0|1. Per spec.md section 4.2,
// the base must be a literal 0 or 1, not merely an expression that
// evaluates to one — ParseInt would accept `OPTION BASE 1-1`, which
// real GW-BASIC rejects, so this reads the digit byte directly.
func stmtOption(r *token.Reader, ctx *Context) {
	r.Require(KwBase)
	b, ok := r.Next()
	if !ok || (b != '0' && b != '1') {
		basicerr.Throw(basicerr.SyntaxError)
	}
	r.RequireEnd()
	ctx.Mem.SetOptionBase(int(b - '0'))
}

// stmtDefType implements DEFSTR/DEFINT/DEFSNG/DEFDBL letter[-letter][,
// letter[-letter]...]. The opcode byte itself (already consumed by
// Dispatch) tells us which type; dispatcher.go registers the same
// parser for all four and this function recovers the type from the
// opcode via a small lookup.
func stmtDefType(r *token.Reader, ctx *Context) {
	op, _ := peekLastOpcode(r)
	t := defTypeFor(op)
	for {
		from, ok := r.Next()
		if !ok || from < 'A' || from > 'Z' {
			basicerr.Throw(basicerr.SyntaxError)
		}
		to := from
		if b, ok := r.Peek(); ok && b == '-' {
			r.Next()
			to, ok = r.Next()
			if !ok || to < 'A' || to > 'Z' {
				basicerr.Throw(basicerr.SyntaxError)
			}
		}
		ctx.Mem.SetDefType(from, to, t)
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
}

// peekLastOpcode recovers the opcode byte Dispatch just consumed, since
// parsers normally don't need to know their own opcode. DEFtype's four
// forms share one parser and need it to pick a type.
func peekLastOpcode(r *token.Reader) (byte, bool) {
	b, ok := r.PeekAt(-1)
	return b, ok
}

func defTypeFor(op byte) value.Type {
	switch op {
	case OpDefStr:
		return value.TypeString
	case OpDefInt:
		return value.TypeInteger
	case OpDefDbl:
		return value.TypeDouble
	default:
		return value.TypeSingle
	}
}
