package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"

	"github.com/wesly-lang/wesly/config"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/repl"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
	"github.com/wesly-lang/wesly/pkg/wesly/watch"
	"github.com/wesly-lang/wesly/pkg/wesly/wesly"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

// cli carries the streams and settings shared by every mode
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	log    *slog.Logger
}

// run dispatches on args and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	if len(args) > 0 && args[0] == "fmt" {
		return fmtCommand(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("wesly", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		helpFlag     = fs.Bool("h", false, "Show help message")
		helpLong     = fs.Bool("help", false, "Show help message")
		versionFlag  = fs.Bool("V", false, "Show version information")
		versionLong  = fs.Bool("version", false, "Show version information")
		evalFlag     = fs.String("e", "", "Evaluate code string")
		evalLong     = fs.String("eval", "", "Evaluate code string")
		checkFlag    = fs.Bool("check", false, "Check syntax without executing")
		jsonFlag     = fs.Bool("json", false, "Report --check results as JSON")
		watchFlag    = fs.Bool("watch", false, "Re-run the file when it changes")
		statsFlag    = fs.Bool("stats", false, "Log evaluation statistics")
		configFlag   = fs.String("config", "", "Path to wesly.yaml")
		shortCircuit = fs.Bool("short-circuit", false, "Make && and || skip the right operand once decided")
	)
	fs.Usage = func() { printHelp(stderr) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *helpFlag || *helpLong {
		printHelp(stdout)
		return 0
	}
	if *versionFlag || *versionLong {
		fmt.Fprintf(stdout, "wesly version %s\n", wesly.Version)
		return 0
	}

	cfg, cfgPath, err := config.LoadWithPath(*configFlag, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := config.Validate(cfg, wesly.Version); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *shortCircuit {
		cfg.Evaluator.ShortCircuit = true
	}
	logger, closeLog, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, cfg: cfg, log: logger}

	code := *evalFlag
	if code == "" {
		code = *evalLong
	}
	files := fs.Args()

	switch {
	case code != "":
		return c.executeInline(code, *statsFlag)
	case *checkFlag:
		if len(files) == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return 2
		}
		return c.checkFiles(files, *jsonFlag)
	case len(files) > 0 && *watchFlag:
		return c.watchFile(files[0], *statsFlag)
	case len(files) > 0:
		return c.executeFile(files[0], *statsFlag)
	case *watchFlag:
		fmt.Fprintln(stderr, "Error: --watch requires a file")
		return 2
	case !isTerminal(stdin):
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
			return 1
		}
		return c.execute(string(src), "<stdin>", *statsFlag, false)
	default:
		repl.Start(stdout, repl.Options{
			Prompt:       cfg.REPL.Prompt,
			HistoryFile:  cfg.REPL.HistoryFile,
			HistoryLimit: cfg.REPL.HistoryLimit,
			MaxCallDepth: cfg.Evaluator.MaxCallDepth,
			ShortCircuit: cfg.Evaluator.ShortCircuit,
			Log:          logger,
		})
		return 0
	}
}

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `wesly - wesly language interpreter version %s

Usage:
  wesly [options] [file]
  wesly -e "code"
  wesly --check [--json] <file>...
  wesly fmt [-w|-l|-d] <file>...

Commands:
  fmt                   Format wesly source files

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string and print the result
  --check               Check syntax without executing
  --json                With --check, report results as JSON
  --watch               Run the file, then run it again whenever it changes
  --stats               Log node, call and allocation counts after the run
  --short-circuit       Make && and || skip the right operand once decided
  --config <path>       Read settings from this wesly.yaml

With no file, wesly starts the REPL when stdin is a terminal and runs
the program read from stdin otherwise.

Examples:
  wesly                       Start interactive REPL
  wesly script.wes            Run a script
  wesly -e "1 + 2"            Evaluate inline code (outputs: 3)
  wesly --check *.wes         Check multiple files
  wesly fmt -w script.wes     Format a file in place
  echo 'println("hi");' | wesly
`, wesly.Version)
}

// evalOptions maps configuration onto evaluation options
func (c *cli) evalOptions(filename string) []wesly.Option {
	return []wesly.Option{
		wesly.WithFilename(filename),
		wesly.WithLogger(wesly.WriterLogger(c.stdout)),
		wesly.WithMaxCallDepth(c.cfg.Evaluator.MaxCallDepth),
		wesly.WithShortCircuit(c.cfg.Evaluator.ShortCircuit),
	}
}

// executeInline evaluates code given with -e and prints its result
func (c *cli) executeInline(code string, stats bool) int {
	return c.execute(code, "<eval>", stats, true)
}

// executeFile reads and runs a source file
func (c *cli) executeFile(filename string, stats bool) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}
	return c.execute(string(content), filename, stats, false)
}

// execute runs src. When printResult is set the final value is printed
// unless it is void or nil.
func (c *cli) execute(src, filename string, stats, printResult bool) int {
	var before runtime.MemStats
	if stats {
		runtime.ReadMemStats(&before)
	}
	start := time.Now()

	res, err := wesly.Eval(src, c.evalOptions(filename)...)
	if err != nil {
		c.printError(src, err)
		return 1
	}

	if printResult && res.Value.Object != nil && res.Value.Type != types.Void {
		if out := res.Value.Inspect(); out != "nil" {
			fmt.Fprintln(c.stdout, out)
		}
	}

	if stats {
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		c.log.Info("evaluation stats",
			"file", filename,
			"nodes", humanize.Comma(res.Stats.Nodes),
			"calls", humanize.Comma(res.Stats.Calls),
			"max_depth", res.Stats.MaxDepth,
			"elapsed", time.Since(start).String(),
			"allocated", humanize.Bytes(after.TotalAlloc-before.TotalAlloc),
		)
	}
	return 0
}

// watchFile runs filename and runs it again on every change until interrupted
func (c *cli) watchFile(filename string, stats bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New([]string{filename}, c.cfg.Watch.Debounce, c.log)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	c.executeFile(filename, stats)
	err = w.Run(ctx, func(string) {
		fmt.Fprintf(c.stdout, "--- %s changed, running again ---\n", filename)
		c.executeFile(filename, stats)
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// checkResult is the JSON shape of one --check entry
type checkResult struct {
	File   string                `json:"file"`
	OK     bool                  `json:"ok"`
	Error  string                `json:"error,omitempty"`
	Errors []*werrors.WeslyError `json:"errors,omitempty"`
}

// checkFiles parses files without running them.
// Exit code 2 means a file could not be read; 1 means syntax errors.
func (c *cli) checkFiles(files []string, asJSON bool) int {
	results, err := wesly.CheckFiles(context.Background(), files)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 2
	}

	exit := 0
	report := make([]checkResult, 0, len(results))
	for _, r := range results {
		entry := checkResult{File: r.Path, OK: r.OK(), Errors: r.Errors}
		switch {
		case r.ReadErr != nil:
			entry.Error = r.ReadErr.Error()
			exit = 2
			if !asJSON {
				fmt.Fprintf(c.stderr, "Error reading %s: %v\n", r.Path, r.ReadErr)
			}
		case len(r.Errors) > 0:
			if exit == 0 {
				exit = 1
			}
			if !asJSON {
				src, _ := os.ReadFile(r.Path)
				lines := strings.Split(string(src), "\n")
				for _, e := range r.Errors {
					fmt.Fprintln(c.stderr, e.PrettyString())
					printSourceContext(c.stderr, lines, e.Line, e.Column)
				}
			}
		}
		report = append(report, entry)
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(c.stderr, "Error encoding JSON: %v\n", err)
			return 2
		}
		fmt.Fprintln(c.stdout, string(data))
	}
	return exit
}

// printError prints a structured error with the offending source line
func (c *cli) printError(src string, err error) {
	we, ok := wesly.AsWeslyError(err)
	if !ok {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.stderr, we.PrettyString())
	printSourceContext(c.stderr, strings.Split(src, "\n"), we.Line, we.Column)
}

// printSourceContext prints the source line and a caret under the error column
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}

	fmt.Fprintf(w, "    %s\n", strings.TrimLeft(sourceLine, " \t"))

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}
		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
