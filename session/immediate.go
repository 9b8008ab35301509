package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

// immediateKeywords names are uppercase so case-insensitive matching
// against whatever case the user typed is a single ToUpper.
var immediateKeywords = []string{
	"RUN", "LIST", "LLIST", "NEW", "LOAD", "SAVE", "MERGE", "DELETE",
	"RENUM", "AUTO", "SYSTEM", "FILES", "CLS",
}

// Tokenize converts one line of typed BASIC source text into the
// tokenized bytecode token.Reader walks. Tokenization is an external
// collaborator (spec.md section 1, "Out of scope": "the
// tokenizer/detokenizer"), so RunImmediate takes it as an injected
// function rather than implementing one itself — production wiring
// (main.go) supplies the real encoder; tests can supply a stub.
type Tokenize func(source string) ([]byte, error)

// RunImmediate drives the interactive "Ok" prompt: a read-tokenize-
// execute loop over stdin with history and keyword completion, exactly
// the shape of the teacher's S370 console but for BASIC immediate mode
// instead of operator commands. A typed line starting with a line
// number is stored into the resident program via Prog.PutLine; any
// other typed line is tokenized and executed immediately (GW-BASIC's
// "direct mode" statements, e.g. typing PRINT X with no line number).
//
// Grounded on rcornwell-S370's command/reader/reader.go ConsoleReader
// (github.com/peterh/liner, SetCompleter, Prompt, AppendHistory,
// liner.ErrPromptAborted) nearly one-to-one, substituting BASIC's line-
// entry/RUN/LIST vocabulary for S370's operator command set.
func (s *Session) RunImmediate(tokenize Tokenize) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		upper := strings.ToUpper(partial)
		for _, kw := range immediateKeywords {
			if strings.HasPrefix(kw, upper) {
				out = append(out, kw)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("Ok\n")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		if quit, err := s.execImmediate(input, tokenize); err != nil {
			fmt.Println(err.Error())
		} else if quit {
			return nil
		}
	}
}

// execImmediate handles one typed line: stores it if it begins with a
// line number, otherwise tokenizes and runs it directly. Returns true
// if the line was SYSTEM (the immediate-mode exit command).
func (s *Session) execImmediate(input string, tokenize Tokenize) (quit bool, err error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false, nil
	}

	if num, rest, ok := splitLeadingLineNumber(trimmed); ok {
		body, terr := tokenize(rest)
		if terr != nil {
			return false, terr
		}
		if len(rest) == 0 {
			s.Prog.PutLine(num, nil) // bare "10" deletes line 10
		} else {
			s.Prog.PutLine(num, body)
		}
		return false, nil
	}

	if strings.EqualFold(trimmed, "SYSTEM") {
		return true, nil
	}

	body, terr := tokenize(trimmed)
	if terr != nil {
		return false, terr
	}
	if e := s.runDirect(body); e != nil {
		return false, e
	}
	return false, nil
}

// splitLeadingLineNumber reports whether trimmed begins with a decimal
// line number, and if so returns it along with whatever source follows.
func splitLeadingLineNumber(trimmed string) (num int, rest string, ok bool) {
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(trimmed[:i])
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(trimmed[i:]), true
}

// runDirect executes one already-tokenized statement line outside the
// resident program (GW-BASIC's direct mode), driving it through Step
// once per statement on an ephemeral line number so GOTO/GOSUB targets
// still resolve against the resident program if the statement jumps
// into it (IllegalDirect is raised by control-flow statements that
// can't run this way, matching real GW-BASIC).
//
// directLine is -1, not 0: Step already overloads line 0 as its "no
// more program" sentinel (CtrlEnd/CtrlStop return (0, 0, nil); RUN's
// CtrlRun can legitimately land on a resident line numbered 0), so
// using 0 here would make a direct statement ending in END or STOP
// indistinguishable from "still executing the direct line" and loop
// forever.
func (s *Session) runDirect(body []byte) error {
	const directLine = -1
	s.Prog.PutLine(directLine, body)
	defer s.Prog.PutLine(directLine, nil)

	pos := 0
	for {
		nextLine, nextPos, err := s.Step(directLine, pos)
		if err != nil {
			return fmt.Errorf("error %d in direct statement", err.Code)
		}
		if nextLine != directLine {
			return nil
		}
		pos = nextPos
	}
}
