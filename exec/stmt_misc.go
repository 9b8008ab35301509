package exec

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// stmtRandomize implements RANDOMIZE[ seed]: with no argument, the
// interpreter prompts "Random Number Seed (-32768 to 32767)? " and
// reads one from the keyboard via the Session collaborator.
func stmtRandomize(r *token.Reader, ctx *Context) {
	if !r.AtStatementEnd() {
		seed := ctx.Expr.Eval(r, ctx.Mem)
		r.RequireEnd()
		ctx.Session.Randomize(seed, false)
		return
	}
	r.RequireEnd()
	ctx.Session.Randomize(value.Value{}, true)
}

// stmtOn implements three ON forms (spec.md section 4.2): ON ERROR
// GOTO line; ON event GOSUB line (event is a bare keyword naming a trap
// source); ON expr GOTO|GOSUB line[, line...], a computed jump that
// indexes into the line list by the expression's rounded integer value
// (1-based) — 0 or a value past the end falls through to the next
// statement, but any error while evaluating or resolving a *skipped*
// target still raises, since every jumpnum in the list is validated up
// front.
func stmtOn(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == OpError {
		r.Next()
		r.Require(KwGoto)
		line := parseLineTarget(r, ctx)
		r.RequireEnd()
		ctx.Trap = ErrorTrap{Line: line}
		return
	}

	if onEvent(r, ctx) {
		return
	}

	n := ctx.Expr.ParseInt(r, ctx.Mem)
	basicerr.RangeCheck(0, 255, n)
	gosub := false
	if b, ok := r.Peek(); ok && b == KwGosub {
		r.Next()
		gosub = true
	} else {
		r.Require(KwGoto)
	}

	var lines []int
	for {
		lines = append(lines, parseLineTarget(r, ctx))
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()

	if n == 0 || n == 255 || n > len(lines) {
		return
	}
	target := lines[n-1]
	if gosub {
		ctx.PushGosub(ctx.CurrentLine, r.Pos())
	}
	ctx.Pending = Control{Kind: CtrlGoto, Line: target}
}

// onEvent recognizes the ON event GOSUB trap-registration forms (ON KEY,
// ON TIMER, ON COM, ON PEN, ON STRIG, ON PLAY) — none of which this
// dispatcher owns the side effect of, so it hands the parsed arguments
// straight to the Events collaborator. Returns false if the statement
// is not one of these forms, letting the caller fall through to the
// computed ON expr GOTO|GOSUB form.
func onEvent(r *token.Reader, ctx *Context) bool {
	start := r.Pos()
	if b, ok := r.Peek(); ok && b == '(' {
		return false
	}
	// Event keywords are ordinary identifiers in this token stream
	// (KEY/TIMER/COM/PEN/STRIG/PLAY each have their own statement
	// opcode, which ON's tokenizer would not emit here); detect them by
	// the literal ASCII spelling consumed via ParseString-like peek
	// instead, since the expression parser would otherwise try to parse
	// them as a variable reference named "ON".
	word := peekWord(r)
	switch word {
	case "KEY", "TIMER", "COM", "PEN", "STRIG", "PLAY":
		r.Skip(len(word))
		slot := 0
		if b, ok := r.Peek(); ok && b == '(' {
			r.Next()
			slot = ctx.Expr.ParseInt(r, ctx.Mem)
			r.Require(')')
		}
		r.Require(KwGosub)
		line := parseLineTarget(r, ctx)
		r.RequireEnd()
		switch word {
		case "KEY":
			ctx.Events.Key(slot, true)
		case "TIMER":
			ctx.Events.Timer(float64(slot), true)
		case "COM":
			ctx.Events.Com(slot, true)
		case "PEN":
			ctx.Events.Pen(true)
		case "STRIG":
			ctx.Events.Strig(slot, true)
		case "PLAY":
			ctx.Events.PlayTrap(slot, true)
		}
		ctx.Events.OnEventGosub(word, true, line)
		return true
	}
	r.SetPos(start)
	return false
}

// peekWord reads ahead the run of uppercase ASCII letters at r's current
// position without consuming them, used only to recognize ON's fixed
// set of event keywords.
func peekWord(r *token.Reader) string {
	var out []byte
	for i := 0; ; i++ {
		b, ok := r.PeekAt(i)
		if !ok || b < 'A' || b > 'Z' {
			break
		}
		out = append(out, b)
	}
	return string(out)
}

// registerPassthroughs wires the statements that have no bespoke
// argument grammar here and are instead a thin collaborator call: each
// is a short hand-written parser that collects a fixed shape of
// int/string/optional-int arguments and forwards them to one
// collaborator method.
func registerPassthroughs() {
	register(OpWait, stmtWait)
	register(OpPoke, stmtPoke)
	register(OpOut, stmtOut)
	register(OpLlist, stmtLlist)
	register(OpEdit, stmtEdit)
	register(OpError, stmtErrorStmt)
	register(OpResume, stmtResume)
	register(OpDelete, stmtDelete)
	register(OpAuto, stmtAuto)
	register(OpRenum, stmtRenum)
	register(OpCall, stmtCall)
	register(OpCalls, stmtCall)
	register(OpLoad, stmtLoad)
	register(OpMerge, stmtMergeStmt)
	register(OpSave, stmtSave)
	register(OpColor, stmtColor)
	register(OpCls, stmtCls)
	register(OpMotor, stmtMotor)
	register(OpBsave, stmtBsave)
	register(OpBload, stmtBload)
	register(OpSound, stmtSound)
	register(OpBeep, stmtBeep)
	register(OpPset, stmtPset)
	register(OpPreset, stmtPreset)
	register(OpScreen, stmtScreenMode)
	register(OpLocate, stmtLocate)
	register(OpFiles, stmtFiles)
	register(OpField, stmtField)
	register(OpName, stmtName)
	register(OpLset, stmtLset)
	register(OpRset, stmtRset)
	register(OpKill, stmtKill)
	register(OpPut, stmtPut)
	register(OpGet, stmtGet)
	register(OpDateStmt, stmtDateSet)
	register(OpTimeStmt, stmtTimeSet)
	register(OpPaint, stmtPaint)
	register(OpCircle, stmtCircle)
	register(OpDraw, stmtDraw)
	register(OpPlay, stmtPlay)
	register(OpIoctl, stmtIoctl)
	register(OpChdir, stmtChdir)
	register(OpMkdir, stmtMkdir)
	register(OpRmdir, stmtRmdir)
	register(OpShell, stmtShell)
	register(OpEnviron, stmtEnviron)
	register(OpView, stmtView)
	register(OpWindow, stmtWindow)
	register(OpPalette, stmtPalette)
	register(OpLcopy, stmtLcopy)
	register(OpPcopy, stmtPcopy)
	register(OpLock, stmtLock)
	register(OpUnlock, stmtUnlock)
	register(OpPen, stmtPen)
	register(OpStrig, stmtStrig)
}

// stmtWait implements the grammar of WAIT port, mask[, xor]. Hardware
// port I/O has no collaborator in this core (spec.md names AllMemory's
// scope as the variable arena's surrounding address space, not I/O
// ports), so this parses and discards its arguments rather than
// blocking.
func stmtWait(r *token.Reader, ctx *Context) {
	ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	ctx.Expr.ParseInt(r, ctx.Mem)
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
}

func stmtPoke(r *token.Reader, ctx *Context) {
	addr := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	b := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	basicerr.RangeCheck(0, 255, b)
	ctx.Mem.PokeByte(addr, byte(b))
}

// stmtOut implements OUT port, value's grammar; like WAIT, no port I/O
// collaborator exists so this is parse-only.
func stmtOut(r *token.Reader, ctx *Context) {
	ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
}

func stmtLlist(r *token.Reader, ctx *Context) {
	from, to := optionalRange(r, ctx)
	ctx.Session.LlistLines(from, to)
}

func stmtEdit(r *token.Reader, ctx *Context) {
	line := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	ctx.Session.EditLine(line)
}

func stmtErrorStmt(r *token.Reader, ctx *Context) {
	code := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	ctx.Session.RaiseError(code)
}

// stmtResume implements RESUME's three forms (spec.md section 7):
// bare RESUME re-executes the statement that raised the error; RESUME
// NEXT (recognized by its NEXT opcode, since NEXT is tokenized the same
// as the NEXT statement keyword everywhere else) continues at the
// following statement; RESUME n jumps to an explicit line.
func stmtResume(r *token.Reader, ctx *Context) {
	ctx.Trap.Active = false
	if b, ok := r.Peek(); ok && b == OpNext {
		r.Next()
		r.RequireEnd()
		ctx.Pending = Control{Kind: CtrlResumeNext}
		return
	}
	if r.AtStatementEnd() {
		ctx.Pending = Control{Kind: CtrlResumeSame}
		return
	}
	line := parseLineTarget(r, ctx)
	r.RequireEnd()
	ctx.Pending = Control{Kind: CtrlResumeLine, Line: line}
}

func stmtDelete(r *token.Reader, ctx *Context) {
	from, to := parseLineRange(r, ctx)
	r.RequireEnd()
	ctx.Session.DeleteLines(from, to)
}

func stmtAuto(r *token.Reader, ctx *Context) {
	start := 10
	inc := 10
	if ctx.Expr.AtExprStart(r) {
		start = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		inc = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Session.AutoLineNumbers(start, inc)
}

func stmtRenum(r *token.Reader, ctx *Context) {
	newStart, oldStart, inc := 10, 0, 10
	if ctx.Expr.AtExprStart(r) {
		newStart = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			oldStart = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			inc = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	r.RequireEnd()
	ctx.Session.RenumLines(newStart, oldStart, inc)
}

func stmtCall(r *token.Reader, ctx *Context) {
	addr := ctx.Expr.ParseInt(r, ctx.Mem)
	var args []value.Value
	if b, ok := r.Peek(); ok && b == '(' {
		r.Next()
		for {
			args = append(args, ctx.Expr.Eval(r, ctx.Mem))
			if b, ok := r.Peek(); ok && b == ',' {
				r.Next()
				continue
			}
			break
		}
		r.Require(')')
	}
	r.RequireEnd()
	check(ctx.AllMem.Call(addr, args))
}

func stmtLoad(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	keepVars := false
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		r.Require(KwAll)
		keepVars = true
	}
	r.RequireEnd()
	check(ctx.Session.LoadProgram(name, keepVars))
	ctx.Pending = Control{Kind: CtrlEnd}
}

func stmtMergeStmt(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Session.MergeProgram(name))
}

func stmtSave(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	ascii := false
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		r.Require('A')
		ascii = true
	}
	r.RequireEnd()
	check(ctx.Session.SaveProgram(name, ascii))
}

func stmtColor(r *token.Reader, ctx *Context) {
	fg, bg, border := -1, -1, -1
	if ctx.Expr.AtExprStart(r) {
		fg = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			bg = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			border = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	r.RequireEnd()
	ctx.Screen.Color(fg, bg, border)
}

func stmtCls(r *token.Reader, ctx *Context) {
	mode := 0
	if ctx.Expr.AtExprStart(r) {
		mode = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Screen.Cls(mode)
}

func stmtMotor(r *token.Reader, ctx *Context) {
	on := true
	if ctx.Expr.AtExprStart(r) {
		on = ctx.Expr.ParseInt(r, ctx.Mem) != 0
	}
	r.RequireEnd()
	ctx.Devices.Motor(on)
}

func stmtBsave(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	r.Require(',')
	offset := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	length := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.AllMem.Bsave(name, offset, length))
}

func stmtBload(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	offset := 0
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		offset = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	check(ctx.AllMem.Bload(name, offset))
}

func stmtSound(r *token.Reader, ctx *Context) {
	freq := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	dur := ctx.Expr.ParseInt(r, ctx.Mem)
	vol := 15
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		vol = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Sound.Sound(freq, dur, vol, false)
}

func stmtBeep(r *token.Reader, ctx *Context) {
	r.RequireEnd()
	ctx.Sound.Beep()
}

func stmtPset(r *token.Reader, ctx *Context) {
	x, y := parseXY(r, ctx)
	color := -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		color = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Screen.Pset(x, y, color)
}

func stmtPreset(r *token.Reader, ctx *Context) {
	x, y := parseXY(r, ctx)
	color := -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		color = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Screen.Preset(x, y, color)
}

func parseXY(r *token.Reader, ctx *Context) (int, int) {
	r.Require('(')
	x := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	y := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(')')
	return x, y
}

func stmtScreenMode(r *token.Reader, ctx *Context) {
	mode := ctx.Expr.ParseInt(r, ctx.Mem)
	colorSwitch, active, visible := -1, -1, -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			colorSwitch = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			if ctx.Expr.AtExprStart(r) {
				active = ctx.Expr.ParseInt(r, ctx.Mem)
			}
			if b, ok := r.Peek(); ok && b == ',' {
				r.Next()
				visible = ctx.Expr.ParseInt(r, ctx.Mem)
			}
		}
	}
	r.RequireEnd()
	ctx.Screen.SetScreenMode(mode, colorSwitch, active, visible)
}

func stmtLocate(r *token.Reader, ctx *Context) {
	row, col, cursor := -1, -1, -1
	if ctx.Expr.AtExprStart(r) {
		row = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			col = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			if ctx.Expr.AtExprStart(r) {
				cursor = ctx.Expr.ParseInt(r, ctx.Mem)
			}
		}
	}
	r.RequireEnd()
	ctx.Screen.Locate(row, col, cursor)
}

func stmtFiles(r *token.Reader, ctx *Context) {
	pattern := ""
	if ctx.Expr.AtExprStart(r) {
		pattern = ctx.Expr.ParseString(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Devices.Files(pattern)
}

func stmtField(r *token.Reader, ctx *Context) {
	fileNum, _ := parseOptionalFileNum(r, ctx)
	var layout []fieldSpec
	for {
		width := ctx.Expr.ParseInt(r, ctx.Mem)
		r.Require(KwAs)
		lv := ctx.Expr.ParseLValue(r, ctx.Mem)
		layout = append(layout, fieldSpec{width, lv.Name})
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			continue
		}
		break
	}
	r.RequireEnd()
	check(ctx.Files.Field(fileNum, toCollabFields(layout)))
}

type fieldSpec struct {
	width int
	name  string
}

func toCollabFields(layout []fieldSpec) []collab.FieldSpec {
	out := make([]collab.FieldSpec, len(layout))
	for i, f := range layout {
		out[i] = collab.FieldSpec{Width: f.width, Name: f.name}
	}
	return out
}

func stmtName(r *token.Reader, ctx *Context) {
	oldName := ctx.Expr.ParseString(r, ctx.Mem)
	r.Require(KwAs)
	newName := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Devices.Name(oldName, newName))
}

func stmtLset(r *token.Reader, ctx *Context) {
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.Require('=')
	v := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	lv.Set(ctx.Mem, value.Str(padLeft(v, lv.Name, ctx)))
}

func stmtRset(r *token.Reader, ctx *Context) {
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.Require('=')
	v := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	lv.Set(ctx.Mem, value.Str(padRight(v, lv.Name, ctx)))
}

func padLeft(s, name string, ctx *Context) string {
	width := len(ctx.Mem.GetScalar(name).Str)
	if width == 0 {
		width = len(s)
	}
	if len(s) >= width {
		return s[:width]
	}
	out := make([]byte, width)
	copy(out, s)
	for i := len(s); i < width; i++ {
		out[i] = ' '
	}
	return string(out)
}

func padRight(s, name string, ctx *Context) string {
	width := len(ctx.Mem.GetScalar(name).Str)
	if width == 0 {
		width = len(s)
	}
	if len(s) >= width {
		return s[len(s)-width:]
	}
	out := make([]byte, width)
	pad := width - len(s)
	for i := 0; i < pad; i++ {
		out[i] = ' '
	}
	copy(out[pad:], s)
	return string(out)
}

func stmtKill(r *token.Reader, ctx *Context) {
	name := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Devices.Kill(name))
}

func stmtPut(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == '#' {
		fileNum, _ := parseOptionalFileNum(r, ctx)
		rec := -1
		if ctx.Expr.AtExprStart(r) {
			rec = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		r.RequireEnd()
		check(ctx.Files.Put(fileNum, rec))
		return
	}
	x, y := parseXY(r, ctx)
	r.Require(',')
	source := ctx.Expr.ParseString(r, ctx.Mem)
	action := "XOR"
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		action = peekWord(r)
		r.Skip(len(action))
	}
	r.RequireEnd()
	ctx.Screen.Put(x, y, source, action)
}

func stmtGet(r *token.Reader, ctx *Context) {
	if b, ok := r.Peek(); ok && b == '#' {
		fileNum, _ := parseOptionalFileNum(r, ctx)
		rec := -1
		if ctx.Expr.AtExprStart(r) {
			rec = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		r.RequireEnd()
		check(ctx.Files.Get(fileNum, rec))
		return
	}
	x1, y1 := parseXY(r, ctx)
	r.Require('-')
	x2, y2 := parseXY(r, ctx)
	r.Require(',')
	lv := ctx.Expr.ParseLValue(r, ctx.Mem)
	r.RequireEnd()
	ctx.Screen.Get(x1, y1, x2, y2, lv.Name)
}

func stmtDateSet(r *token.Reader, ctx *Context) {
	v := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Clock.SetDate(v))
}

func stmtTimeSet(r *token.Reader, ctx *Context) {
	v := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Clock.SetTime(v))
}

func stmtPaint(r *token.Reader, ctx *Context) {
	x, y := parseXY(r, ctx)
	color, border := -1, -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			color = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			if ctx.Expr.AtExprStart(r) {
				border = ctx.Expr.ParseInt(r, ctx.Mem)
			}
		}
	}
	r.RequireEnd()
	ctx.Screen.Paint(x, y, color, border)
}

func stmtCircle(r *token.Reader, ctx *Context) {
	x, y := parseXY(r, ctx)
	r.Require(',')
	radius := ctx.Expr.ParseInt(r, ctx.Mem)
	color, start, end, aspect := -1, 0.0, 0.0, 1.0
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			color = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	r.RequireEnd()
	ctx.Screen.Circle(x, y, radius, color, start, end, aspect)
}

func stmtDraw(r *token.Reader, ctx *Context) {
	s := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	ctx.Screen.Draw(s)
}

func stmtPlay(r *token.Reader, ctx *Context) {
	s := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	ctx.Sound.Play(s)
}

func stmtIoctl(r *token.Reader, ctx *Context) {
	fileNum, _ := parseOptionalFileNum(r, ctx)
	cmd := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Files.Ioctl(fileNum, cmd))
}

func stmtChdir(r *token.Reader, ctx *Context) {
	p := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Devices.Chdir(p))
}

func stmtMkdir(r *token.Reader, ctx *Context) {
	p := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Devices.Mkdir(p))
}

func stmtRmdir(r *token.Reader, ctx *Context) {
	p := ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
	check(ctx.Devices.Rmdir(p))
}

func stmtShell(r *token.Reader, ctx *Context) {
	cmd := ""
	if ctx.Expr.AtExprStart(r) {
		cmd = ctx.Expr.ParseString(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Session.Shell(cmd)
}

// stmtEnviron implements ENVIRON "name=value". This core has no
// environment-variable collaborator of its own; the statement is parsed
// for grammar completeness but has no effect, matching the Non-goals
// scope that excludes host OS environment manipulation.
func stmtEnviron(r *token.Reader, ctx *Context) {
	ctx.Expr.ParseString(r, ctx.Mem)
	r.RequireEnd()
}

func stmtView(r *token.Reader, ctx *Context) {
	if r.AtStatementEnd() {
		ctx.Screen.View(0, 0, 0, 0, -1, -1, false)
		return
	}
	screenCoords := false
	if b, ok := r.Peek(); ok && b == KwOn {
		r.Next()
		screenCoords = true
	}
	x1, y1 := parseXY(r, ctx)
	r.Require('-')
	x2, y2 := parseXY(r, ctx)
	fill, border := -1, -1
	if b, ok := r.Peek(); ok && b == ',' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			fill = ctx.Expr.ParseInt(r, ctx.Mem)
		}
		if b, ok := r.Peek(); ok && b == ',' {
			r.Next()
			border = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	r.RequireEnd()
	ctx.Screen.View(x1, y1, x2, y2, fill, border, screenCoords)
}

func stmtWindow(r *token.Reader, ctx *Context) {
	if r.AtStatementEnd() {
		ctx.Screen.Window(0, 0, 0, 0, false)
		return
	}
	screenCoords := false
	if b, ok := r.Peek(); ok && b == KwOn {
		r.Next()
		screenCoords = true
	}
	r.Require('(')
	x1 := ctx.Expr.Eval(r, ctx.Mem)
	r.Require(',')
	y1 := ctx.Expr.Eval(r, ctx.Mem)
	r.Require(')')
	r.Require('-')
	r.Require('(')
	x2 := ctx.Expr.Eval(r, ctx.Mem)
	r.Require(',')
	y2 := ctx.Expr.Eval(r, ctx.Mem)
	r.Require(')')
	r.RequireEnd()
	ctx.Screen.Window(asFloat64(x1), asFloat64(y1), asFloat64(x2), asFloat64(y2), screenCoords)
}

func stmtPalette(r *token.Reader, ctx *Context) {
	if r.AtStatementEnd() {
		ctx.Screen.Palette(-1, -1)
		return
	}
	attr := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	color := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	ctx.Screen.Palette(attr, color)
}

func stmtLcopy(r *token.Reader, ctx *Context) {
	mode := 0
	if ctx.Expr.AtExprStart(r) {
		mode = ctx.Expr.ParseInt(r, ctx.Mem)
	}
	r.RequireEnd()
	ctx.Devices.Lcopy(mode)
}

func stmtPcopy(r *token.Reader, ctx *Context) {
	src := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(',')
	dst := ctx.Expr.ParseInt(r, ctx.Mem)
	r.RequireEnd()
	ctx.Screen.Pcopy(src, dst)
}

func stmtLock(r *token.Reader, ctx *Context) {
	fileNum, from, to := parseLockArgs(r, ctx)
	r.RequireEnd()
	check(ctx.Files.Lock(fileNum, from, to))
}

func stmtUnlock(r *token.Reader, ctx *Context) {
	fileNum, from, to := parseLockArgs(r, ctx)
	r.RequireEnd()
	check(ctx.Files.Unlock(fileNum, from, to))
}

func parseLockArgs(r *token.Reader, ctx *Context) (fileNum, from, to int) {
	fileNum, _ = parseOptionalFileNum(r, ctx)
	from, to = -1, -1
	if ctx.Expr.AtExprStart(r) {
		from = ctx.Expr.ParseInt(r, ctx.Mem)
		to = from
		if b, ok := r.Peek(); ok && b == '-' {
			r.Next()
			to = ctx.Expr.ParseInt(r, ctx.Mem)
		}
	}
	return
}

func stmtPen(r *token.Reader, ctx *Context) {
	on := ctx.Expr.ParseInt(r, ctx.Mem) != 0
	r.RequireEnd()
	ctx.Events.Pen(on)
}

func stmtStrig(r *token.Reader, ctx *Context) {
	r.Require('(')
	trigger := ctx.Expr.ParseInt(r, ctx.Mem)
	r.Require(')')
	enable := true
	if b, ok := r.Peek(); ok && b == KwOff {
		r.Next()
		enable = false
	} else if b, ok := r.Peek(); ok && b == KwOn {
		r.Next()
	}
	r.RequireEnd()
	ctx.Stick.StrigStatement(trigger, enable)
}

func optionalRange(r *token.Reader, ctx *Context) (from, to int) {
	from, to = -1, -1
	if ctx.Expr.AtExprStart(r) {
		from = ctx.Expr.ParseInt(r, ctx.Mem)
		to = from
	}
	if b, ok := r.Peek(); ok && b == '-' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			to = ctx.Expr.ParseInt(r, ctx.Mem)
		} else {
			to = -1
		}
	}
	r.RequireEnd()
	return
}

func parseLineRange(r *token.Reader, ctx *Context) (from, to int) {
	from, to = -1, -1
	if ctx.Expr.AtExprStart(r) {
		from = ctx.Expr.ParseInt(r, ctx.Mem)
		to = from
	}
	if b, ok := r.Peek(); ok && b == '-' {
		r.Next()
		if ctx.Expr.AtExprStart(r) {
			to = ctx.Expr.ParseInt(r, ctx.Mem)
		} else {
			to = -1
		}
	}
	return
}
