// Package collab defines the narrow interfaces the interpreter core
// calls into but does not implement (spec.md section 1, "OUT OF SCOPE
// (external collaborators, accessed through narrow interfaces)"), plus
// no-op Null implementations for tests. This mirrors the teacher's
// service package, which defines the same kind of boundary between the
// VM core and its GUI/API front ends.
package collab

import (
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/value"
)

// Expr is the external expression parser/evaluator (spec.md section 2,
// "pulls typed values from the expression parser (external)"). It
// shares the statement dispatcher's token.Reader — expressions are
// embedded inline in the same tokenized byte stream a statement parser
// walks, so there is no separate expression buffer to hand off.
type Expr interface {
	// Eval consumes one expression starting at the reader's current
	// position and returns its value, typed as the expression's natural
	// type.
	Eval(r *token.Reader, mem *memory.Store) value.Value

	// EvalAs consumes one expression and coerces it to t, used where a
	// statement mandates a specific evaluation type regardless of the
	// expression's natural type (e.g. IF evaluates its condition as an
	// MBF single specifically to avoid integer overflow on the test,
	// spec.md section 4.2).
	EvalAs(r *token.Reader, mem *memory.Store, t value.Type) value.Value

	// ParseLValue consumes a variable reference — a name, optionally
	// followed by a parenthesized subscript list — without evaluating
	// it, for statements that assign into a variable (LET, INPUT,
	// READ, FOR's loop variable, SWAP, MID$ as a statement).
	ParseLValue(r *token.Reader, mem *memory.Store) LValue

	// ParseString consumes an expression and requires it to be a
	// string, raising Type Mismatch otherwise (filename arguments,
	// PRINT USING format strings).
	ParseString(r *token.Reader, mem *memory.Store) string

	// ParseInt consumes an expression, evaluates it as Integer, and
	// returns it as a plain int (line numbers computed at runtime,
	// channel numbers, loop bounds already known to be small).
	ParseInt(r *token.Reader, mem *memory.Store) int

	// AtExprStart reports whether the reader is positioned at a byte
	// that can start an expression, used by parsers with an optional
	// trailing expression (e.g. RUN's optional line number).
	AtExprStart(r *token.Reader) bool
}

// LValue names an assignment target: a bare scalar or a subscripted
// array element.
type LValue struct {
	Name    string
	Indices []int // nil for a scalar reference
}

// Get reads the current value an LValue refers to.
func (l LValue) Get(mem *memory.Store) value.Value {
	if l.Indices == nil {
		return mem.GetScalar(l.Name)
	}
	return mem.GetArrayCell(l.Name, l.Indices)
}

// Set assigns v to the variable an LValue refers to.
func (l LValue) Set(mem *memory.Store, v value.Value) {
	if l.Indices == nil {
		mem.LetScalar(l.Name, v)
		return
	}
	mem.SetArrayCell(l.Name, l.Indices, v)
}

// Screen is the video/text-mode renderer (spec.md section 6).
type Screen interface {
	// Print writes already-formatted text to the console at the current
	// cursor position, advancing it — PRINT/WRITE's console target,
	// distinct from Files.Lprint's printer-device target.
	Print(text string)
	Pset(x, y, color int)
	Preset(x, y, color int)
	Line(x1, y1, x2, y2, color int, box, filled bool)
	Circle(x, y, radius int, color int, start, end, aspect float64)
	Paint(x, y, color, border int)
	Get(x1, y1, x2, y2 int, target string)
	Put(x, y int, source string, action string)
	Draw(commands string)
	Locate(row, col int, cursor int)
	Color(fg, bg, border int)
	Palette(attr, color int)
	View(x1, y1, x2, y2 int, fill, border int, screenCoords bool)
	Window(x1, y1, x2, y2 float64, screenCoords bool)
	SetScreenMode(mode, colorSwitch, active, visible int)
	Pcopy(src, dst int)
	Cls(mode int)
}

// Sound is the audio backend.
type Sound interface {
	Sound(freq, durationTicks, volume int, background bool)
	Noise(source, duration int, background bool)
	Beep()
	Play(macro string)
}

// Files is the file-device layer.
type Files interface {
	Open(name string, mode, access string, fileNum, recLen int) error
	Close(fileNum int) error
	Field(fileNum int, layout []FieldSpec) error
	Print(fileNum int, text string) error
	Write(fileNum int, values []value.Value) error
	Lprint(text string)
	Get(fileNum, record int) error
	Put(fileNum, record int) error
	Lock(fileNum, fromRecord, toRecord int) error
	Unlock(fileNum, fromRecord, toRecord int) error
	Ioctl(fileNum int, command string) error
	ResetAll() error
	Width(fileNum, cols int) error
}

// FieldSpec is one FIELD clause entry: a byte width bound to a string
// variable name.
type FieldSpec struct {
	Width int
	Name  string
}

// Devices covers filesystem and peripheral device operations that are
// not stream I/O.
type Devices interface {
	Name(oldName, newName string) error
	Kill(name string) error
	Files(pattern string)
	Chdir(path string) error
	Mkdir(path string) error
	Rmdir(path string) error
	Lcopy(mode int)
	Motor(on bool)
}

// AllMemory is the raw, segment-addressable memory space outside this
// core's own variable arena (DEF SEG-relative POKE/PEEK, BLOAD/BSAVE,
// machine-code CALL).
type AllMemory interface {
	Poke(segment, offset int, b byte)
	Peek(segment, offset int) byte
	Bload(name string, offset int) error
	Bsave(name string, offset, length int) error
	DefSeg(segment int)
	DefUsr(slot int, address int)
	Call(address int, args []value.Value) error
}

// Events covers the ON-event trap registrations for device signals
// that originate outside the keyboard (spec.md section 5).
type Events interface {
	OnEventGosub(event string, enabled bool, target int)
	Com(port int, enabled bool)
	Pen(enabled bool)
	Timer(interval float64, enabled bool)
	PlayTrap(voicesLeft int, enabled bool)
	Strig(trigger int, enabled bool)
	Key(slot int, enabled bool)
}

// Interpreter names the control-flow operations of the collaborator
// boundary spec.md section 6 draws. Nothing in this module implements
// it: exec's statement parsers perform these transfers themselves by
// setting Context.Pending for the session loop to act on.
type Interpreter interface {
	Goto(line int)
	Gosub(line, returnPos int)
	Return()
	StopProgram()
	ContinueProgram()
	Tron()
	Troff()
	Jump(line int)
	JumpSub(line int)
	While(conditionTruthy bool)
	Wend()
	Resume(mode ResumeMode, target int)
	OnErrorGoto(line int)
	ForLoop(name string, start, stop, step value.Value)
	NextLoop(names []string)
	ReadData() (value.Value, bool)
	RestoreData(line int)
}

// ResumeMode selects RESUME's three forms.
type ResumeMode int

const (
	ResumeNext ResumeMode = iota
	ResumeSame
	ResumeLine
)

// Clock supplies DATE$/TIME$.
type Clock interface {
	Date() string
	Time() string
	SetDate(s string) error
	SetTime(s string) error
}

// Stick covers joystick trigger statements.
type Stick interface {
	StrigStatement(trigger int, enabled bool)
}

// Session covers whole-program lifecycle operations.
type Session interface {
	NewProgram()
	RunProgram(startLine int)
	LoadProgram(name string, keepVars bool) error
	SaveProgram(name string, ascii bool) error
	MergeProgram(name string) error
	ChainProgram(name string, line int, allVars bool, deleteFrom, deleteTo int) error
	ClearAll(memSize int)
	DeleteLines(from, to int)
	AutoLineNumbers(start, increment int)
	RenumLines(newStart, oldStart, increment int)
	EditLine(line int)
	ListLines(from, to int, device string)
	LlistLines(from, to int)
	Shell(command string)
	SystemExit()
	Term()
	Randomize(seed value.Value, prompted bool)
	RaiseError(code int)
	EndProgram()
	CommonVars(names []string)
	Input(prompt string, targets []LValue, suppressCR bool) error
	InputFile(fileNum int, targets []LValue) error
	LineInput(prompt string, target LValue, fileNum int) error
}
