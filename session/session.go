// Package session wires the token, memory, keyboard, exec, collab, and
// events packages into a runnable interpreter: it owns the program line
// table, drives the statement-by-statement main loop, implements the
// collab.Session whole-program lifecycle operations the dispatcher
// delegates to it, and adapts loader.Program to exec.LineSource.
//
// The wiring struct shape is grounded on the teacher's debugger.Debugger
// (a struct holding the runtime plus breakpoint/history/evaluator state
// and Step/Continue/Run methods); here the "runtime" is a BASIC program
// and its variable store rather than a CPU, and there are no
// breakpoints, but the same "own the loop, expose Step alongside Run"
// shape applies.
package session

import (
	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/events"
	"github.com/basicretro/gwbasic-core/exec"
	"github.com/basicretro/gwbasic-core/keyboard"
	"github.com/basicretro/gwbasic-core/loader"
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// Session owns one program's runtime state: its line table, variable
// store, keyboard, event plumbing, and the exec.Context every statement
// executes against.
type Session struct {
	Prog *loader.Program
	Mem  *memory.Store
	KB   *keyboard.Keyboard

	Queue    *events.Queue
	Registry *events.Registry
	Bcast    *events.Broadcaster

	Ctx *exec.Context

	commonVars []string // names COMMON asked CHAIN to preserve

	// ReadProgramFile/WriteProgramFile abstract file access for
	// LoadProgram/MergeProgram/SaveProgram so tests can substitute an
	// in-memory source; the bytes read are decoded with loader.Decode.
	// Production wiring (main.go) sets ReadProgramFile to os.ReadFile.
	ReadProgramFile func(name string) ([]byte, error)
	WriteProgramFile func(name string, data []byte) error
}

// New builds a Session around an already-decoded program and the given
// collaborators. Callers that need one or more collaborators to be this
// Session itself (it satisfies collab.Session) construct the Context
// with Session: sess after calling New.
func New(prog *loader.Program, mem *memory.Store, kb *keyboard.Keyboard) *Session {
	s := &Session{
		Prog:     prog,
		Mem:      mem,
		KB:       kb,
		Queue:    events.NewQueue(),
		Registry: events.NewRegistry(),
	}
	return s
}

// Body implements exec.LineSource.
func (s *Session) Body(line int) ([]byte, bool) {
	l, ok := s.Prog.Line(line)
	if !ok {
		return nil, false
	}
	return l.Body, true
}

// After implements exec.LineSource.
func (s *Session) After(line int) (int, []byte, bool) {
	l, ok := s.Prog.NextLineAfter(line)
	if !ok {
		return 0, nil, false
	}
	return l.Number, l.Body, true
}

var _ exec.LineSource = (*Session)(nil)
var _ collab.Session = (*Session)(nil)

// NewProgram implements collab.Session: NEW clears the program and all
// variables.
func (s *Session) NewProgram() {
	s.Prog = loader.Empty()
	s.Mem.Clear()
	s.Ctx.ForStack = nil
	s.Ctx.WhileStack = nil
	s.Ctx.GosubStack = nil
	s.Ctx.Trap = exec.ErrorTrap{}
	s.Ctx.DataLine, s.Ctx.DataPos = 0, 0
}

// RunProgram implements collab.Session: RUN's side effect is performed
// by the main loop (Run), which checks Ctx.Pending.Kind == CtrlRun after
// each Dispatch; this method only clears state RUN resets before the
// loop restarts execution at startLine (0 meaning "first line").
func (s *Session) RunProgram(startLine int) {
	s.Mem.Clear()
	s.Ctx.ForStack = nil
	s.Ctx.WhileStack = nil
	s.Ctx.GosubStack = nil
	s.Ctx.DataLine, s.Ctx.DataPos = 0, 0
}

// LoadProgram implements collab.Session: LOAD replaces the resident
// program from disk, optionally keeping variables (LOAD ",R").
func (s *Session) LoadProgram(name string, keepVars bool) error {
	if s.ReadProgramFile == nil {
		return nil
	}
	data, err := s.ReadProgramFile(name)
	if err != nil {
		return err
	}
	prog, err := loader.Decode(data)
	if err != nil {
		return err
	}
	s.Prog = prog
	if !keepVars {
		s.Mem.Clear()
	}
	s.Ctx.ForStack = nil
	s.Ctx.WhileStack = nil
	s.Ctx.GosubStack = nil
	return nil
}

// SaveProgram implements collab.Session: SAVE writes the resident
// program to disk. The ascii flag is accepted for interface symmetry
// with real GW-BASIC's SAVE",A"; this core only ever holds the
// tokenized form, so both paths write the same encoding.
func (s *Session) SaveProgram(name string, ascii bool) error {
	if s.WriteProgramFile == nil {
		return nil
	}
	return s.WriteProgramFile(name, s.Prog.Encode())
}

// MergeProgram implements collab.Session: MERGE overlays lines from an
// ASCII program file onto the resident one without clearing variables.
func (s *Session) MergeProgram(name string) error {
	if s.ReadProgramFile == nil {
		return nil
	}
	data, err := s.ReadProgramFile(name)
	if err != nil {
		return err
	}
	incoming, err := loader.Decode(data)
	if err != nil {
		return err
	}
	for _, n := range incoming.LineNumbers() {
		l, _ := incoming.Line(n)
		s.Prog.PutLine(n, l.Body)
	}
	return nil
}

// ChainProgram implements collab.Session: CHAIN loads a new program,
// preserving COMMON variables (or all variables with allVars), and
// optionally deletes a line range from the incoming program before it
// runs.
func (s *Session) ChainProgram(name string, line int, allVars bool, deleteFrom, deleteTo int) error {
	var preserved map[string]value.Value
	if allVars {
		preserved = s.Mem.Snapshot()
	} else {
		preserved = s.Mem.SnapshotNames(s.commonVars)
	}
	if err := s.LoadProgram(name, false); err != nil {
		return err
	}
	if deleteFrom != 0 || deleteTo != 0 {
		s.DeleteLines(deleteFrom, deleteTo)
	}
	s.Mem.Restore(preserved)
	if line != 0 {
		s.Ctx.Pending = exec.Control{Kind: exec.CtrlGoto, Line: line}
	} else {
		s.Ctx.Pending = exec.Control{Kind: exec.CtrlRun}
	}
	return nil
}

// ClearAll implements collab.Session: CLEAR's memSize argument sizes a
// simulated arena this core doesn't partition by byte budget, so it is
// accepted and ignored beyond the variable reset CLEAR's statement
// parser already performed directly on Mem.
func (s *Session) ClearAll(memSize int) {}

// CommonVars implements collab.Session: records the variable names a
// COMMON statement asked CHAIN to preserve.
func (s *Session) CommonVars(names []string) {
	s.commonVars = append(s.commonVars, names...)
}

// DeleteLines implements collab.Session: DELETE from-to removes a line
// range (0 meaning open-ended on that side).
func (s *Session) DeleteLines(from, to int) {
	for _, n := range s.Prog.LineNumbers() {
		if (from == 0 || n >= from) && (to == 0 || n <= to) {
			s.Prog.PutLine(n, nil)
		}
	}
}

// AutoLineNumbers implements collab.Session as a no-op at this layer:
// AUTO's line-number prompting is an immediate-mode line-editor
// behavior (RunImmediate owns the prompt loop), not a program
// statement's side effect.
func (s *Session) AutoLineNumbers(start, increment int) {}

// RenumLines implements collab.Session: renumbers every line from
// oldStart onward, starting at newStart and stepping by increment. Only
// line headers change; GOTO/GOSUB/THEN/ELSE targets inside line bodies
// are not rewritten.
func (s *Session) RenumLines(newStart, oldStart, increment int) {
	numbers := s.Prog.LineNumbers()
	next := newStart
	for _, n := range numbers {
		if n < oldStart {
			continue
		}
		l, _ := s.Prog.Line(n)
		s.Prog.PutLine(n, nil)
		s.Prog.PutLine(next, l.Body)
		next += increment
	}
}

// EditLine implements collab.Session as a no-op: EDIT's line-editor
// surface belongs to an interactive front end outside this core.
func (s *Session) EditLine(line int) {}

// ListLines implements collab.Session: LIST prints source text, which
// requires the detokenizer named out of scope in spec.md section 1; the
// core reports a line's presence but not its rendered text.
func (s *Session) ListLines(from, to int, device string) {}

// LlistLines implements collab.Session, LIST's printer-device twin.
func (s *Session) LlistLines(from, to int) {}

// Shell implements collab.Session: SHELL drops to the OS shell, an
// ambient capability this headless core does not perform itself; the
// concrete wiring in main.go may override this by reassigning the
// Devices collaborator instead.
func (s *Session) Shell(command string) {}

// SystemExit implements collab.Session as a no-op: SYSTEM's statement
// parser also sets the same CtrlEnd request as END, so Run stops and
// returns nil just as it does for END, and this package never calls
// os.Exit.
func (s *Session) SystemExit() {}

// Term implements collab.Session: the PCjr/Tandy TERM statement invokes
// cartridge BASIC, which this core does not emulate.
func (s *Session) Term() {}

// Randomize implements collab.Session: reseeds the expression
// collaborator's RNG. The RNG itself lives with the external Expr
// collaborator (RND is an expression-parser builtin), so this is a
// deliberate no-op here — a concrete Expr implementation that wants
// RANDOMIZE to affect it should wrap Session to intercept this call,
// since collab.Session doesn't expose a seed sink to reach into Expr.
func (s *Session) Randomize(seed value.Value, prompted bool) {}

// RaiseError implements collab.Session: ERROR n raises a runtime error
// with a user-supplied code, used to simulate or test ON ERROR GOTO
// handlers.
func (s *Session) RaiseError(code int) {
	basicerr.Throw(basicerr.Code(code))
}

// EndProgram implements collab.Session as a no-op: Run already observes
// Ctx.Pending.Kind == CtrlEnd directly and stops its own loop; this
// exists only to satisfy statements that call through the Session
// collaborator for symmetry with other lifecycle operations.
func (s *Session) EndProgram() {}

// Input implements collab.Session: INPUT's console-stream form. A real
// implementation reads comma-separated values from the keyboard/stream
// collaborator, echoing the prompt first (unless suppressCR). This core
// delegates the actual byte source to KB's redirected stream path,
// splitting on commas the same way GW-BASIC's INPUT does.
func (s *Session) Input(prompt string, targets []collab.LValue, suppressCR bool) error {
	s.Ctx.Screen.Print(prompt)
	line := s.KB.ReadLine(s.pollOnce)
	return assignInputFields(s.Mem, targets, line)
}

// InputFile implements collab.Session as a no-op: INPUT #n reads
// nothing here and leaves its targets unchanged.
func (s *Session) InputFile(fileNum int, targets []collab.LValue) error {
	return nil
}

// LineInput implements collab.Session: LINE INPUT reads one whole line
// verbatim (no comma-splitting) into a single string target.
func (s *Session) LineInput(prompt string, target collab.LValue, fileNum int) error {
	if fileNum < 0 {
		s.Ctx.Screen.Print(prompt)
		line := s.KB.ReadLine(s.pollOnce)
		target.Set(s.Mem, value.Str(line))
		return nil
	}
	return nil
}
