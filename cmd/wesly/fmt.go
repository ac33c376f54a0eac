package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wesly-lang/wesly/pkg/wesly/format"
)

// fmtMode selects what wesly fmt does with a formatted file
type fmtMode int

const (
	fmtPrint fmtMode = iota
	fmtList
	fmtDiff
	fmtWrite
)

const fmtUsage = `wesly fmt - format wesly source files

Usage:
  wesly fmt [options] <file>...

Options:
  -w    Write result to source file instead of stdout
  -d    Display changed lines instead of rewriting files
  -l    List files whose formatting differs from wesly fmt's
`

var errUnparsable = errors.New("parse errors")

// fmtCommand handles 'wesly fmt' and returns the exit code
func fmtCommand(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, fmtUsage) }
	write := fs.Bool("w", false, "")
	diff := fs.Bool("d", false, "")
	list := fs.Bool("l", false, "")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		fs.Usage()
		return 2
	}

	// -l wins over -d, which wins over -w
	mode := fmtPrint
	switch {
	case *list:
		mode = fmtList
	case *diff:
		mode = fmtDiff
	case *write:
		mode = fmtWrite
	}

	status := 0
	for _, name := range fs.Args() {
		if err := formatFile(name, mode, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error formatting %s: %v\n", name, err)
			status = 1
		}
	}
	return status
}

func formatFile(name string, mode fmtMode, stdout, stderr io.Writer) error {
	raw, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	src := string(raw)

	out, perr := format.Source(src, name)
	if perr != nil {
		fmt.Fprintln(stderr, perr.PrettyString())
		printSourceContext(stderr, strings.Split(src, "\n"), perr.Line, perr.Column)
		return errUnparsable
	}

	if mode == fmtPrint {
		fmt.Fprint(stdout, out)
		return nil
	}
	if out == src {
		return nil
	}
	switch mode {
	case fmtList:
		fmt.Fprintln(stdout, name)
	case fmtDiff:
		showDiff(stdout, name, src, out)
	case fmtWrite:
		if err := os.WriteFile(name, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing file: %w", err)
		}
	}
	return nil
}

// showDiff compares the two versions line by line at equal line numbers
func showDiff(w io.Writer, name, before, after string) {
	fmt.Fprintf(w, "diff %s\n", name)
	old, cur := strings.Split(before, "\n"), strings.Split(after, "\n")
	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}
	for i := range max(len(old), len(cur)) {
		a, b := line(old, i), line(cur, i)
		if a == b {
			continue
		}
		if a != "" {
			fmt.Fprintf(w, "-%d: %s\n", i+1, a)
		}
		if b != "" {
			fmt.Fprintf(w, "+%d: %s\n", i+1, b)
		}
	}
}
