package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRecordSkipsWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Enabled = false
	tr.Start()
	tr.Record(10, "PRINT")
	if len(tr.Entries()) != 0 {
		t.Fatalf("expected no entries recorded while disabled, got %d", len(tr.Entries()))
	}
}

func TestRecordRespectsMaxEntries(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.MaxEntries = 2
	tr.Start()
	tr.Record(10, "LET")
	tr.Record(20, "PRINT")
	tr.Record(30, "GOTO") // dropped, at the cap
	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Line != 10 || entries[1].Line != 20 {
		t.Fatalf("got entries %+v", entries)
	}
}

func TestRecordAssignsSequentialNumbers(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Start()
	tr.Record(10, "LET")
	tr.Record(10, "PRINT")
	entries := tr.Entries()
	if entries[0].Sequence != 0 || entries[1].Sequence != 1 {
		t.Fatalf("got sequences %d, %d", entries[0].Sequence, entries[1].Sequence)
	}
}

func TestFlushWritesOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Start()
	tr.Record(10, "LET")
	tr.Record(20, "GOTO")
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "LET") || !strings.Contains(lines[1], "GOTO") {
		t.Fatalf("unexpected trace text: %v", lines)
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Start()
	tr.Record(10, "LET")
	if err := tr.ExportJSON(); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var got []Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Line != 10 || got[0].Opcode != "LET" {
		t.Fatalf("got %+v", got)
	}
}

func TestClearDiscardsEntriesButKeepsSequence(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Start()
	tr.Record(10, "LET")
	tr.Clear()
	if len(tr.Entries()) != 0 {
		t.Fatalf("expected entries cleared, got %d", len(tr.Entries()))
	}
	tr.Record(20, "GOTO")
	if tr.Entries()[0].Sequence != 1 {
		t.Fatalf("expected sequence numbering to continue past Clear, got %d", tr.Entries()[0].Sequence)
	}
}

func TestStringMatchesFlushOutput(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Start()
	tr.Record(10, "LET")
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if tr.String() != buf.String() {
		t.Fatalf("String() diverged from Flush output:\n%q\nvs\n%q", tr.String(), buf.String())
	}
}
