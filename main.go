// Command gwbasic-core is the reference CLI entry point: it loads a
// tokenized program image, wires it to collaborators, and either runs
// it directly or drops into an interactive immediate-mode session.
//
// spec.md section 1 names the tokenizer/detokenizer and the expression
// parser as external collaborators (the token stream this binary reads
// is assumed already produced, and collab.Expr must be supplied by the
// embedder); this binary is a thin harness exercising the core, not a
// standalone BASIC distribution.
//
// Grounded on the teacher's main.go (flag-group shape, trace-file setup
// blocks, printHelp heredoc), re-pointed at loader/session instead of
// parser/vm and trimmed to the flags this domain's collaborators
// actually support.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/basicretro/gwbasic-core/basicerr"
	"github.com/basicretro/gwbasic-core/collab"
	"github.com/basicretro/gwbasic-core/config"
	"github.com/basicretro/gwbasic-core/exec"
	"github.com/basicretro/gwbasic-core/keyboard"
	"github.com/basicretro/gwbasic-core/loader"
	"github.com/basicretro/gwbasic-core/memory"
	"github.com/basicretro/gwbasic-core/session"
	"github.com/basicretro/gwbasic-core/token"
	"github.com/basicretro/gwbasic-core/trace"
	"github.com/basicretro/gwbasic-core/value"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		startLine    = flag.Int("start", 0, "Line number to start RUN at (default: first line)")
		verboseMode  = flag.Bool("verbose", false, "Verbose output")
		configPath   = flag.String("config", "", "Config file path (default: platform config dir)")
		enableTrace  = flag.Bool("trace", false, "Enable statement execution trace")
		traceFile    = flag.String("trace-file", "", "Trace output file (default: trace.log in log dir)")
		traceFormat  = flag.String("trace-format", "text", "Trace format: text, json")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gwbasic-core %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg := loadConfig(*configPath)

	mem := memory.New()
	kb := keyboard.NewKeyboard(cfg.Dialect.IgnoreCaps)

	var prog *loader.Program
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0)) // #nosec G304 -- user-specified program path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
			os.Exit(1)
		}
		prog, err = loader.Decode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding program: %v\n", err)
			os.Exit(1)
		}
	} else {
		prog = loader.Empty()
	}

	sess := session.New(prog, mem, kb)
	sess.ReadProgramFile = os.ReadFile
	sess.WriteProgramFile = func(name string, data []byte) error {
		return os.WriteFile(name, data, 0644) // #nosec G306 -- program save target chosen by the user
	}

	sess.Ctx = &exec.Context{
		Mem:     mem,
		KB:      kb,
		Expr:    requireExternalExpr{},
		Screen:  collab.NullScreen{},
		Sound:   collab.NullSound{},
		Files:   collab.NullFiles{},
		Devices: collab.NullDevices{},
		AllMem:  collab.NullAllMemory{},
		Events:  sess.Registry,
		Clock:   collab.NullClock{},
		Stick:   collab.NullStick{},
		Session: sess,
		Lines:   sess,
	}

	var tr *trace.Trace
	if *enableTrace {
		tracePath := *traceFile
		if tracePath == "" {
			tracePath = filepath.Join(config.GetLogPath(), "trace.log")
		}
		f, err := os.Create(tracePath) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		tr = trace.New(f)
		tr.Start()
		sess.Ctx.Trace = tr.Record
		if *verboseMode {
			fmt.Printf("Execution trace enabled: %s\n", tracePath)
		}
	}

	if flag.NArg() > 0 {
		if *verboseMode {
			fmt.Printf("Running %s\n", flag.Arg(0))
		}
		err := sess.Run(*startLine)
		if tr != nil {
			flushTrace(tr, *traceFormat)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err.Error())
			os.Exit(1)
		}
		return
	}

	if err := sess.RunImmediate(unavailableTokenizer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if tr != nil {
		flushTrace(tr, *traceFormat)
	}
}

func flushTrace(tr *trace.Trace, format string) {
	var err error
	if format == "json" {
		err = tr.ExportJSON()
	} else {
		err = tr.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing trace: %v\n", err)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// requireExternalExpr is the placeholder collab.Expr this binary wires
// in: the expression parser is an external collaborator (spec.md
// section 1) this repository does not implement, so any program that
// actually evaluates an expression raises Internal Error here rather
// than silently returning zero. A real embedder replaces this with its
// own expression-parser implementation.
type requireExternalExpr struct{}

func (requireExternalExpr) Eval(r *token.Reader, mem *memory.Store) value.Value {
	basicerr.Throw(basicerr.InternalError)
	return value.Value{}
}

func (requireExternalExpr) EvalAs(r *token.Reader, mem *memory.Store, t value.Type) value.Value {
	basicerr.Throw(basicerr.InternalError)
	return value.Value{}
}

func (requireExternalExpr) ParseLValue(r *token.Reader, mem *memory.Store) collab.LValue {
	basicerr.Throw(basicerr.InternalError)
	return collab.LValue{}
}

func (requireExternalExpr) ParseString(r *token.Reader, mem *memory.Store) string {
	basicerr.Throw(basicerr.InternalError)
	return ""
}

func (requireExternalExpr) ParseInt(r *token.Reader, mem *memory.Store) int {
	basicerr.Throw(basicerr.InternalError)
	return 0
}

func (requireExternalExpr) AtExprStart(r *token.Reader) bool {
	return false
}

// unavailableTokenizer is RunImmediate's Tokenize placeholder for the
// same reason: tokenization is an external collaborator this binary
// does not implement (spec.md section 1). Typing a line in immediate
// mode with no real tokenizer wired reports the gap instead of
// pretending to accept input it can't encode.
func unavailableTokenizer(source string) ([]byte, error) {
	return nil, fmt.Errorf("no tokenizer wired: cannot encode %q", source)
}

func printHelp() {
	fmt.Printf(`gwbasic-core %s

Usage: gwbasic-core [options] <program-file>
       gwbasic-core [options]

Options:
  -help              Show this help message
  -version           Show version information
  -start N           Line number to start RUN at (default: first line)
  -verbose           Enable verbose output
  -config FILE       Config file path (default: platform config dir)

Tracing:
  -trace             Enable statement execution trace
  -trace-file FILE   Trace output file (default: trace.log in log dir)
  -trace-format FMT  Trace format: text, json (default: text)

Examples:
  # Run a tokenized program
  gwbasic-core program.bas

  # Run with a statement trace
  gwbasic-core -trace -trace-format json program.bas

  # Start an immediate-mode session (requires a tokenizer wired in by
  # an embedding application; this binary's own session has none)
  gwbasic-core

For more information, see DESIGN.md.
`, Version)
}
