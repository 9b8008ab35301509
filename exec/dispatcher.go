package exec

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/token"
)

// parseFunc parses and executes one statement's arguments. The opcode
// byte itself has already been consumed from r by the time a parseFunc
// runs.
type parseFunc func(r *token.Reader, ctx *Context)

// table maps an opcode byte to its parser. Built once in init, per the
// REDESIGN FLAGS guidance to replace a method-per-keyword dispatch with
// "a pure table from token byte to a tagged parser descriptor".
var table = map[byte]parseFunc{}

func register(op byte, fn parseFunc) {
	table[op] = fn
}

// Dispatch executes exactly one statement starting at r's current
// position, per spec.md section 4.1's dispatch contract:
//
//   - read one opcode byte;
//   - if it names a known statement, hand off to that statement's
//     parser;
//   - otherwise, if it is an ASCII letter, back up one byte and treat
//     the whole statement as an implicit LET;
//   - otherwise, if the reader is already at a statement terminator
//     (it read end-of-line/colon as if it were an opcode, i.e. the
//     statement was empty), do nothing;
//   - otherwise raise Syntax Error.
//
// basicerr panics raised by the parser are recovered here and re-thrown
// tagged with ctx.CurrentLine, so every error the session loop sees
// already carries its line number.
func Dispatch(ctx *Context, r *token.Reader) (err *basicerr.Error) {
	defer func() {
		if e := basicerr.Recover(recover()); e != nil {
			err = e.WithLine(ctx.CurrentLine)
		}
	}()

	startPos := r.Pos()
	b, ok := r.Next()
	if !ok || b == token.EndOfLine || b == token.Colon {
		return nil
	}

	if fn, known := table[b]; known {
		fn(r, ctx)
		if ctx.Trace != nil {
			ctx.Trace(ctx.CurrentLine, nameOf(b))
		}
		return nil
	}

	if isLetterByte(b) {
		r.SetPos(startPos)
		parseLet(r, ctx)
		if ctx.Trace != nil {
			ctx.Trace(ctx.CurrentLine, "LET")
		}
		return nil
	}

	basicerr.Throw(basicerr.SyntaxError)
	return nil
}

func isLetterByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func init() {
	register(OpEnd, stmtEnd)
	register(OpStop, stmtStop)
	register(OpSystem, stmtSystem)
	register(OpNew, stmtNew)
	register(OpWend, stmtWend)
	register(OpTron, stmtTron)
	register(OpTroff, stmtTroff)
	register(OpCont, stmtCont)
	register(OpReset, stmtReset)

	register(OpLet, parseLet)
	register(OpGoto, stmtGoto)
	register(OpGosub, stmtGosub)
	register(OpReturn, stmtReturn)
	register(OpRun, stmtRun)
	register(OpIf, stmtIf)
	register(OpFor, stmtFor)
	register(OpNext, stmtNext)
	register(OpWhile, stmtWhile)
	register(OpDim, stmtDim)
	register(OpErase, stmtErase)
	register(OpRead, stmtRead)
	register(OpData, stmtData)
	register(OpRestore, stmtRestore)
	register(OpRem, stmtRem)
	register(OpClear, stmtClear)
	register(OpSwap, stmtSwap)
	register(OpPrint, stmtPrint)
	register(OpWrite, stmtWrite)
	register(OpLprint, stmtLprint)
	register(OpRandomize, stmtRandomize)
	register(OpCommon, stmtCommon)
	register(OpOption, stmtOption)
	register(OpOn, stmtOn)
	register(OpDefStr, stmtDefType)
	register(OpDefInt, stmtDefType)
	register(OpDefSng, stmtDefType)
	register(OpDefDbl, stmtDefType)
	register(OpInput, stmtInput)
	register(OpLine, stmtLine)
	register(OpOpen, stmtOpen)
	register(OpClose, stmtClose)
	register(OpWidth, stmtWidth)
	register(OpKey, stmtKey)
	register(OpChain, stmtChain)
	register(OpMidAssign, stmtMidAssign)

	registerPassthroughs()
}
