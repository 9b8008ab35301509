package exec

import (
	"strconv"
	"strings"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// stmtPrint implements PRINT/? [#filenum,] [expr [;|,] ...] (spec.md
// section 4.2): semicolons suppress the column tab that commas insert,
// and a trailing separator suppresses the final newline.
func stmtPrint(r *token.Reader, ctx *Context) {
	fileNum, hasFile := parseOptionalFileNum(r, ctx)

	var sb strings.Builder
	trailingSep := false
	for !r.AtStatementEnd() {
		trailingSep = false
		if b, ok := r.Peek(); ok && (b == ';' || b == ',') {
			r.Next()
			if b == ',' {
				sb.WriteByte('\t')
			}
			trailingSep = true
			continue
		}
		v := ctx.Expr.Eval(r, ctx.Mem)
		sb.WriteString(formatPrintValue(v))
	}
	if !trailingSep {
		sb.WriteByte('\n')
	}
	r.RequireEnd()

	if hasFile {
		check(ctx.Files.Print(fileNum, sb.String()))
		return
	}
	ctx.Screen.Print(sb.String())
}

// check converts a collaborator's returned error into a Device I/O
// Error panic, so statement parsers can call file/device operations the
// same way they call everything else — by letting a fault unwind
// through basicerr.Throw rather than threading an error return.
func check(err error) {
	if err != nil {
		basicerr.Throw(basicerr.DeviceIOError)
	}
}

func formatPrintValue(v value.Value) string {
	switch v.Typ {
	case value.TypeString:
		return v.Str
	case value.TypeInteger:
		return " " + strconv.Itoa(int(v.I)) + " "
	case value.TypeSingle:
		return " " + strconv.FormatFloat(v.S.Float64(), 'g', -1, 32) + " "
	case value.TypeDouble:
		return " " + strconv.FormatFloat(v.D.Float64(), 'g', -1, 64) + " "
	}
	return ""
}

// parseOptionalFileNum consumes a leading `#n,` file-number clause, used
// by PRINT, WRITE, INPUT, LINE INPUT (spec.md section 4.2).
func parseOptionalFileNum(r *token.Reader, ctx *Context) (int, bool) {
	b, ok := r.Peek()
	if !ok || b != '#' {
		return 0, false
	}
	r.Next()
	n := ctx.Expr.ParseInt(r, ctx.Mem)
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
	}
	return n, true
}

// stmtWrite implements WRITE [#filenum,] expr[, expr...]: like PRINT but
// comma-delimited with string values quoted, per spec.md section 4.2.
func stmtWrite(r *token.Reader, ctx *Context) {
	fileNum, hasFile := parseOptionalFileNum(r, ctx)
	var values []value.Value
	for !r.AtStatementEnd() {
		values = append(values, ctx.Expr.Eval(r, ctx.Mem))
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
	if hasFile {
		check(ctx.Files.Write(fileNum, values))
		return
	}
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		if v.Typ == value.TypeString {
			sb.WriteByte('"')
			sb.WriteString(v.Str)
			sb.WriteByte('"')
		} else {
			sb.WriteString(strings.TrimSpace(formatPrintValue(v)))
		}
	}
	sb.WriteByte('\n')
	ctx.Screen.Print(sb.String())
}

// stmtLprint implements LPRINT, PRINT's printer-device twin.
func stmtLprint(r *token.Reader, ctx *Context) {
	var sb strings.Builder
	trailingSep := false
	for !r.AtStatementEnd() {
		trailingSep = false
		if b, ok := r.Peek(); ok && (b == ';' || b == ',') {
			r.Next()
			if b == ',' {
				sb.WriteByte('\t')
			}
			trailingSep = true
			continue
		}
		v := ctx.Expr.Eval(r, ctx.Mem)
		sb.WriteString(formatPrintValue(v))
	}
	if !trailingSep {
		sb.WriteByte('\n')
	}
	r.RequireEnd()
	ctx.Files.Lprint(sb.String())
}

// stmtInput implements INPUT [;] ["prompt"{;|,}] lvalue[, lvalue...]
// and the file form INPUT #filenum, lvalue[, lvalue...] (spec.md
// section 4.2).
func stmtInput(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == '#' {
		fileNum, _ := parseOptionalFileNum(r, ctx)
		targets := parseLValueList(r, ctx)
		r.RequireEnd()
		check(ctx.Session.InputFile(fileNum, targets))
		return
	}

	suppressCR := false
	if b, ok := r.Peek(); ok && b == ';' {
		r.Next()
		suppressCR = true
	}

	prompt := ""
	if b, ok := r.Peek(); ok && b == '"' {
		prompt = ctx.Expr.ParseString(r, ctx.Mem)
		b2, ok2 := r.Next()
		if !ok2 || (b2 != ';' && b2 != ',') {
			basicerr.Throw(basicerr.SyntaxError)
		}
	}

	targets := parseLValueList(r, ctx)
	r.RequireEnd()
	check(ctx.Session.Input(prompt, targets, suppressCR))
}

func parseLValueList(r *token.Reader, ctx *Context) []collab.LValue {
	var out []collab.LValue
	for {
		out = append(out, ctx.Expr.ParseLValue(r, ctx.Mem))
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	return out
}

// stmtLine dispatches between LINE INPUT and graphics LINE — the two
// statements share an opcode byte in many real tokenizers because LINE
// INPUT's "INPUT" keyword immediately follows, so the parser peeks for
// it before choosing a grammar (spec.md section 4.2, "LINE").
func stmtLine(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == OpInput {
		r.Next()
		stmtLineInput(r, ctx)
		return
	}
	stmtLineGraphics(r, ctx)
}

func stmtLineInput(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == '#' {
		fileNum, _ := parseOptionalFileNum(r, ctx)
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		r.RequireEnd()
		check(ctx.Session.LineInput("", lv, fileNum))
		return
	}
	prompt := ""
	if b, ok := r.Peek(); ok && b == '"' {
		prompt = ctx.Expr.ParseString(r, ctx.Mem)
		r.Require(';')
	}
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Session.LineInput(prompt, lv, -1))
}

// stmtLineGraphics implements the graphics LINE [STEP](x1,y1)-[STEP]
// (x2,y2)[,color[,B|BF[,style]]] form, delegating the actual draw to
// the Screen collaborator.
func stmtLineGraphics(r *token.Reader, ctx *Context) {
	x1 := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	y1 := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require('-')
	x2 := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	y2 := ctx.Expr.ParseInt(r, ctx.Mem)
	color := -1
	box, filled := false, false
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			color = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			if b2, ok2 := r.Next(); ok2 && b2 == 'B' {
				box = true
				if b3, ok3 := r.Peek(); ok3 && b3 == 'F' {
					r.Next()
					filled = true
				}
			}
		}
	}
	r.RequireEnd()
	ctx.Screen.Line(x1, y1, x2, y2, color, box, filled)
}

// stmtOpen implements OPEN in its two GW-BASIC forms, told apart by
// whether a comma follows the first expression:
//
//	OPEN mode$, [#]n, name$[, reclen]    (old form; first letter of mode$)
//	OPEN name$ FOR mode [ACCESS access] AS [#]n[, reclen]
//
// In the new form the record length follows a comma after the file
// number; the LEN=n and LOCK clauses are not recognized.
func stmtOpen(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	mode, access, fileNum, recLen := "R", "", 0, 128

	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if name == "" {
			basicerr.Throw(basicerr.BadFileMode)
		}
		mode = strings.ToUpper(name[:1])
		if b, ok := r.Peek(); ok && b == '#' {
			r.Next()
		}
		fileNum = ctx.Expr.ParseInt(r, ctx.Mem)
		r.Require(',')
		name = ctx.Expr.ParseString(r, ctx.Mem)
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			recLen = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		r.RequireEnd()
		check(ctx.Files.Open(name, mode, access, fileNum, recLen))
		return
	}

	r.Require(KwFor)
	modeWord, _ := r.Next()
	mode = string(modeWord)
	if b, ok := r.Peek(); ok && b == KwAccess {
		r.Next()
		accessWord, _ := r.Next()
		access = string(accessWord)
	}
	r.Require(KwAs)
	if b, ok := r.Peek(); ok && b == '#' {
		r.Next()
	}
	fileNum = ctx.Expr.ParseInt(r, ctx.Mem)
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		recLen = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	check(ctx.Files.Open(name, mode, access, fileNum, recLen))
}

// stmtClose implements CLOSE [#filenum[, #filenum...]] (no arguments
// closes every open file).
func stmtClose(r *token.Reader, ctx *Context) {
	if r.AtStatementEnd() {
		ctx.Files.ResetAll()
		return
	}
	for {
		if b, ok := r.Peek(); ok && b == '#' {
			r.Next()
		}
		n := ctx.Expr.ParseInt(r, ctx.Mem)
		check(ctx.Files.Close(n))
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
}

// stmtWidth implements WIDTH #filenum, cols and WIDTH cols. The
// device-name form (WIDTH "dev", cols) and a rows argument after cols
// are not recognized.
func stmtWidth(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == '#' {
		fileNum, _ := parseOptionalFileNum(r, ctx)
		cols := ctx.Expr.ParseInt(r, ctx.Mem)
		r.RequireEnd()
		check(ctx.Files.Width(fileNum, cols))
		return
	}
	cols := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Files.Width(0, cols))
}

// stmtKey implements KEY ON|OFF|LIST, KEY n, "text" (macro define), and
// KEY(n) ON|OFF|STOP (event switch) — spec.md section 4.2.
func stmtKey(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == KwOn {
		r.Next()
		r.RequireEnd()
		return
	}
	if b, ok := r.Peek(); ok && b == KwOff {
		r.Next()
		r.RequireEnd()
		return
	}
	if b, ok := r.Peek(); ok && b == KwList {
		r.Next()
		r.RequireEnd()
		return
	}
	if b, ok := r.Peek(); ok && b == '(' {
		r.Next()
		n := ctx.Expr.ParseInt(r, ctx.Mem)
		r.Require(')')
		enable := true
		if b, ok := r.Peek(); ok && b == KwOff {
			r.Next()
			enable = false
		} else if b, ok := r.Peek(); ok && b == KwOn {
			r.Next()
		} else {
			r.SkipToStatementEnd()
		}
		r.RequireEnd()
		ctx.Events.Key(n, enable)
		return
	}
	n := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	text := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	ctx.KB.SetMacro(n, text)
}

// stmtChain implements CHAIN [MERGE] name[, line][, ALL][, DELETE
// from-to] (spec.md section 4.2).
func stmtChain(r *token.Reader, ctx *Context) {
	merge := false
	if b, ok := r.Peek(); ok && b == KwMerge {
		r.Next()
		merge = true
	}
	_ = merge
	name := ctx.Expr.ParseString(r, ctx.Mem)
	line := 0
	allVars := false
	deleteFrom, deleteTo := 0, 0
	for {
		b, ok := r.Peek()
		if !ok || b != ',' {
			break
		}
		r.Next()
		switch {
		case peekIs(r, KwAll):
			r.Next()
			allVars = true
		case peekIs(r, OpDelete):
			r.Next()
			deleteFrom = ctx.Expr.ParseInt(r, ctx.Mem)
			r.Require('-')
			deleteTo = ctx.Expr.ParseInt(r, ctx.Mem)
		default:
			line = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	r.RequireEnd()
	check(ctx.Session.ChainProgram(name, line, allVars, deleteFrom, deleteTo))
	ctx.Pending = Control{Kind: CtrlEnd}
}

func peekIs(r *token.Reader, want byte) bool {
	b, ok := r.Peek()
	return ok && b == want
}

// stmtMidAssign implements the MID$(strvar, start[, len]) = expr
// statement form (spec.md section 4.2): overwrites characters in place
// rather than replacing the whole string.
func stmtMidAssign(r *token.Reader, ctx *Context) {
	r.Require('(')
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.Require(',')
	start := ctx.Expr.ParseInt(r, ctx.Mem)
	length := -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		length = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.Require(')')
	r.Require('=')
	repl := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()

	cur := lv.Get(ctx.Mem)
	if cur.Typ != value.TypeString {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	basicerr.RangeCheck(1, len(cur.Str)+1, start)
	n := len(repl)
	if length >= 0 && length < n {
		n = length
	}
	avail := len(cur.Str) - (start - 1)
	if n > avail {
		n = avail
	}
	b := []byte(cur.Str)
	copy(b[start-1:start-1+n], repl[:n])
	lv.Set(ctx.Mem, value.Str(string(b)))
}
