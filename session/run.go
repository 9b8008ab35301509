package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/events"
	"github.com/basicretro/gwbasic-core/exec"
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// activeTrap records which armed event trap, if any, the GOSUB stack's
// top frame was entered for, so RETURN can tell the registry to stop
// deferring that event's future firings (spec.md section 5: "a trap in
// progress defers further firings of the same event until RETURN").
type activeTrap struct {
	kind events.Kind
	slot int
	// depth is the GosubStack length the firing's GOSUB pushed onto —
	// RETURN at exactly this depth is the one that closes the trap.
	depth int
}

// pollOnce drains any currently queued signals into the keyboard buffer
// (Run first offers the head of the queue to the event registry's
// Poll), and reports whether waiting should continue
// (false on a Break signal, matching spec.md section 5's cancellation
// model). It is the "poll" callback keyboard.Keyboard.WaitChar expects,
// and the bridge between the async Queue and the single-threaded
// interpreter loop's blocking reads.
func (s *Session) pollOnce() bool {
	for {
		sig, ok := s.Queue.Pop()
		if !ok {
			break
		}
		switch sig.Kind {
		case events.KeyDown:
			s.KB.KeyDown(string(sig.Byte), sig.Slot, nil, true)
		case events.KeyUp:
			s.KB.KeyUp(sig.Slot)
		case events.StreamChar:
			s.KB.StreamChars(string(sig.Byte))
		case events.StreamClosed:
			s.KB.CloseInput()
		case events.ClipPaste:
			s.KB.StreamChars(sig.Text)
		case events.Break:
			s.Ctx.Break = true
			return false
		}
		if s.Bcast != nil {
			s.Bcast.BroadcastSignal(sig)
		}
	}
	if s.Ctx.Break {
		return false
	}
	time.Sleep(time.Millisecond)
	return true
}

// assignInputFields splits line on commas and assigns each field to the
// matching target, coercing to the target's type (INPUT's console
// form, spec.md section 4.2).
func assignInputFields(mem *memory.Store, targets []collab.LValue, line string) error {
	fields := strings.Split(line, ",")
	for i, lv := range targets {
		text := ""
		if i < len(fields) {
			text = strings.TrimSpace(fields[i])
		}
		lv.Set(mem, coerceInputField(lv, text))
	}
	return nil
}

func coerceInputField(lv collab.LValue, text string) value.Value {
	if strings.HasSuffix(lv.Name, "$") {
		return value.Str(text)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		basicerr.Throw(basicerr.TypeMismatch)
	}
	return value.SingleVal(value.SingleFromFloat64(f))
}

// Run executes the resident program starting at startLine (or the
// lowest-numbered line if startLine is 0), driving the dispatcher
// statement by statement until the program ends, STOPs, or an
// unrecovered error propagates out. It returns the terminating error,
// or nil on a clean END/STOP/fall-off-the-end.
//
// Grounded on the teacher's debugger main loop shape (ShouldBreak
// checked between steps, Step/Continue built on the same primitive)
// generalized from single-instruction VM stepping to single-BASIC-
// statement stepping, with ON ERROR GOTO trapping and event-trap
// firing added between statements per spec.md section 5/7.
func (s *Session) Run(startLine int) *basicerr.Error {
	line, body, ok := s.firstLineFrom(startLine)
	if !ok {
		return nil
	}
	r := token.New(body)
	s.Ctx.CurrentLine = line
	var active *activeTrap

	for {
		if s.Ctx.Break {
			return basicerr.New(basicerr.InternalError).WithLine(s.Ctx.CurrentLine)
		}

		if r.AtEnd() {
			nextNum, nextBody, ok := s.After(line)
			if !ok {
				return nil
			}
			line, r = nextNum, token.New(nextBody)
			s.Ctx.CurrentLine = line
			continue
		}

		if kind, slot, target, fired := s.Registry.Poll(s.Queue); fired {
			s.Ctx.PushGosub(line, r.Pos())
			active = &activeTrap{kind: kind, slot: slot, depth: len(s.Ctx.GosubStack)}
			if s.Bcast != nil {
				s.Bcast.BroadcastTrap(kind, slot, target, true)
			}
			nline, nbody, ok := s.bodyFor(target)
			if !ok {
				return basicerr.New(basicerr.UndefinedLineNumber).WithLine(line)
			}
			line, r = nline, token.New(nbody)
			s.Ctx.CurrentLine = line
			continue
		}
		s.pollOnce()

		startPos := r.Pos()
		err := exec.Dispatch(s.Ctx, r)
		if err != nil {
			if handled := s.tryTrap(*err, line, startPos); handled {
				line, r = s.Ctx.CurrentLine, s.currentReader()
				continue
			}
			return err
		}

		if active != nil && len(s.Ctx.GosubStack) < active.depth {
			s.Registry.MarkDone(active.kind, active.slot)
			if s.Bcast != nil {
				s.Bcast.BroadcastTrap(active.kind, active.slot, 0, false)
			}
			active = nil
		}

		switch s.Ctx.Pending.Kind {
		case exec.CtrlNone:
			// fall through to sequential execution
		case exec.CtrlEnd, exec.CtrlStop:
			s.Ctx.Pending = exec.Control{}
			return nil
		case exec.CtrlResumeSame, exec.CtrlResumeNext, exec.CtrlResumeLine:
			resumeTarget := s.Ctx.Pending
			s.Ctx.Pending = exec.Control{}
			nline, npos, ok := s.resolveResume(resumeTarget)
			if !ok {
				e := basicerr.New(basicerr.UndefinedLineNumber).WithLine(line)
				if s.tryTrap(*e, line, 0) {
					line, r = s.Ctx.CurrentLine, s.currentReader()
					continue
				}
				return e
			}
			body, _ := s.Body(nline)
			line = nline
			r = token.New(body)
			r.SetPos(npos)
			s.Ctx.CurrentLine = line
			continue
		case exec.CtrlGoto, exec.CtrlGosub, exec.CtrlReturn:
			target := s.Ctx.Pending
			s.Ctx.Pending = exec.Control{}
			nline, nbody, ok := s.bodyFor(target.Line)
			if !ok {
				e := basicerr.New(basicerr.UndefinedLineNumber).WithLine(line)
				if s.tryTrap(*e, line, target.Pos) {
					line, r = s.Ctx.CurrentLine, s.currentReader()
					continue
				}
				return e
			}
			line = nline
			r = token.New(nbody)
			r.SetPos(target.Pos)
			s.Ctx.CurrentLine = line
			continue
		case exec.CtrlRun:
			s.Ctx.Pending = exec.Control{}
			nline, nbody, ok := s.firstLineFrom(0)
			if !ok {
				return nil
			}
			line, r = nline, token.New(nbody)
			s.Ctx.CurrentLine = line
			continue
		}
	}
}

// currentReader re-synthesizes a reader positioned at the start of
// s.Ctx.CurrentLine, used after an ON ERROR GOTO trap jump since the
// trap target is always a fresh line start (RESUME's own Goto-style
// Pending already points mid-line when needed).
func (s *Session) currentReader() *token.Reader {
	body, _ := s.Body(s.Ctx.CurrentLine)
	return token.New(body)
}

// tryTrap installs an ON ERROR GOTO jump if a trap is armed and not
// already handling an error, recording trap state for RESUME. errLine/
// errPos are the statement that raised e, captured by the caller before
// Dispatch ran it, so RESUME and RESUME NEXT can find their way back to
// it later. Returns false (unhandled) if no trap is installed or one is
// already active, letting the error propagate out of Run.
func (s *Session) tryTrap(e basicerr.Error, errLine, errPos int) bool {
	if s.Ctx.Trap.Line == 0 || s.Ctx.Trap.Active {
		return false
	}
	s.Ctx.Trap.Active = true
	s.Ctx.Trap.ErrLine = errLine
	s.Ctx.Trap.ErrCode = e.Code
	s.Ctx.Trap.ResumePos = errPos
	nline, _, ok := s.bodyFor(s.Ctx.Trap.Line)
	if !ok {
		return false
	}
	s.Ctx.CurrentLine = nline
	return true
}

// resolveResume turns a RESUME control request into a concrete (line,
// pos) to jump to, using the trap state tryTrap recorded at fault time
// (spec.md section 7): bare RESUME re-enters the erroring statement
// itself; RESUME NEXT skips past it to whatever follows, on the same
// line or the next one; RESUME n jumps to an explicit line.
func (s *Session) resolveResume(c exec.Control) (line, pos int, ok bool) {
	switch c.Kind {
	case exec.CtrlResumeLine:
		_, _, ok := s.bodyFor(c.Line)
		return c.Line, 0, ok
	case exec.CtrlResumeSame:
		_, ok := s.Body(s.Ctx.Trap.ErrLine)
		return s.Ctx.Trap.ErrLine, s.Ctx.Trap.ResumePos, ok
	case exec.CtrlResumeNext:
		body, ok := s.Body(s.Ctx.Trap.ErrLine)
		if !ok {
			return 0, 0, false
		}
		rr := token.New(body)
		rr.SetPos(s.Ctx.Trap.ResumePos)
		rr.SkipToStatementEnd()
		if !rr.AtEnd() {
			return s.Ctx.Trap.ErrLine, rr.Pos(), true
		}
		nline, _, ok := s.After(s.Ctx.Trap.ErrLine)
		return nline, 0, ok
	}
	return 0, 0, false
}

// firstLineFrom resolves RUN's entry point: the given line if nonzero,
// otherwise the program's lowest-numbered line.
func (s *Session) firstLineFrom(startLine int) (int, []byte, bool) {
	if startLine != 0 {
		body, ok := s.Body(startLine)
		return startLine, body, ok
	}
	l, ok := s.Prog.FirstLine()
	if !ok {
		return 0, nil, false
	}
	return l.Number, l.Body, true
}

// bodyFor resolves a jump target's line body, used for GOTO/GOSUB/
// RETURN/RESUME/trap-fire targets alike.
func (s *Session) bodyFor(line int) (int, []byte, bool) {
	body, ok := s.Body(line)
	return line, body, ok
}

// Step executes exactly one statement of the resident program starting
// at (line, pos) and returns where execution should resume next,
// without looping — used by an interactive single-step front end. Event
// trap firing and ON ERROR GOTO trapping are Run's concerns, not
// Step's: a caller driving Step directly is expected to handle faults
// itself.
func (s *Session) Step(line, pos int) (nextLine, nextPos int, err *basicerr.Error) {
	body, ok := s.Body(line)
	if !ok {
		return 0, 0, basicerr.New(basicerr.UndefinedLineNumber)
	}
	r := token.New(body)
	r.SetPos(pos)
	s.Ctx.CurrentLine = line

	e := exec.Dispatch(s.Ctx, r)
	if e != nil {
		return line, pos, e
	}

	switch s.Ctx.Pending.Kind {
	case exec.CtrlEnd, exec.CtrlStop:
		s.Ctx.Pending = exec.Control{}
		return 0, 0, nil
	case exec.CtrlResumeSame, exec.CtrlResumeNext, exec.CtrlResumeLine:
		resumeTarget := s.Ctx.Pending
		s.Ctx.Pending = exec.Control{}
		nline, npos, ok := s.resolveResume(resumeTarget)
		if !ok {
			return 0, 0, basicerr.New(basicerr.UndefinedLineNumber)
		}
		return nline, npos, nil
	case exec.CtrlGoto, exec.CtrlGosub, exec.CtrlReturn:
		target := s.Ctx.Pending
		s.Ctx.Pending = exec.Control{}
		return target.Line, target.Pos, nil
	case exec.CtrlRun:
		s.Ctx.Pending = exec.Control{}
		l, ok := s.Prog.FirstLine()
		if !ok {
			return 0, 0, nil
		}
		return l.Number, 0, nil
	}

	if r.AtEnd() {
		nextNum, _, ok := s.After(line)
		if !ok {
			return 0, 0, nil
		}
		return nextNum, 0, nil
	}
	return line, r.Pos(), nil
}
