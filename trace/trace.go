// Package trace implements an opt-in statement-execution trace sink,
// wired into exec.Context.Trace, for diagnosing control-flow and event-
// trap behavior in a running program (spec.md section 9, "Design
// Notes"). Grounded on the teacher's vm/trace.go ExecutionTrace, with
// the payload changed from per-instruction register deltas to
// per-statement (line, opcode) pairs, since there is no register file
// in this domain to snapshot.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Entry is one traced statement execution.
type Entry struct {
	Sequence uint64        `json:"sequence"`
	Line     int           `json:"line"`
	Opcode   string        `json:"opcode"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Trace buffers statement trace entries and flushes them to Writer as
// text or JSON. A zero-value Trace is disabled and has no writer, so
// Record and Flush are safe to call on it even when tracing was never
// armed.
type Trace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries   []Entry
	seq       uint64
	startTime time.Time
}

// New returns a Trace writing to w, grounded on NewExecutionTrace's
// defaults (enabled, a generous entry cap).
func New(w io.Writer) *Trace {
	return &Trace{
		Enabled:    true,
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]Entry, 0, 1000),
	}
}

// Start resets sequence numbering and the elapsed-time clock, called
// once before RUN begins.
func (t *Trace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
	t.seq = 0
}

// Record appends one traced statement. Safe to pass directly as
// exec.Context.Trace after binding line/opcode: ctx.Trace = trace.Record.
func (t *Trace) Record(line int, opcode string) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, Entry{
		Sequence: t.seq,
		Line:     line,
		Opcode:   opcode,
		Elapsed:  time.Since(t.startTime),
	})
	t.seq++
}

// Flush writes every buffered entry to Writer as text, one per line.
func (t *Trace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, e := range t.entries {
		line := fmt.Sprintf("[%06d] %6d %-20s | %v\n", e.Sequence, e.Line, e.Opcode, e.Elapsed)
		if _, err := t.Writer.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

// ExportJSON writes every buffered entry to Writer as a JSON array.
func (t *Trace) ExportJSON() error {
	if t.Writer == nil {
		return nil
	}
	enc := json.NewEncoder(t.Writer)
	return enc.Encode(t.entries)
}

// Entries returns the buffered trace, for a caller that wants to
// inspect it before or instead of Flush.
func (t *Trace) Entries() []Entry {
	return t.entries
}

// Clear discards every buffered entry without resetting Start's clock.
func (t *Trace) Clear() {
	t.entries = t.entries[:0]
}

// String renders the trace the way Flush would write it, for use in
// error messages and tests.
func (t *Trace) String() string {
	var sb []byte
	for _, e := range t.entries {
		sb = append(sb, fmt.Sprintf("[%06d] %6d %-20s | %v\n", e.Sequence, e.Line, e.Opcode, e.Elapsed)...)
	}
	return string(sb)
}
