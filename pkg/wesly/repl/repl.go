// Package repl implements the interactive wesly shell.
package repl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/evaluator"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
	"github.com/wesly-lang/wesly/pkg/wesly/wesly"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

// envValueWidth is the display width :env truncates values to
const envValueWidth = 60

// Options configures a REPL session
type Options struct {
	Prompt       string
	HistoryFile  string // empty disables history persistence
	HistoryLimit int    // entries kept when history is saved; zero keeps all
	MaxCallDepth int
	ShortCircuit bool
	Log          *slog.Logger
}

// Start runs the REPL until the user quits or input ends
func Start(out io.Writer, opts Options) {
	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	s := newSession(out, opts)
	line.SetCompleter(s.complete)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				opts.Log.Debug("history read failed", "file", opts.HistoryFile, "err", err)
			}
			f.Close()
		}
		defer func() {
			if err := saveHistory(line, opts.HistoryFile, opts.HistoryLimit); err != nil {
				opts.Log.Warn("history not saved", "file", opts.HistoryFile, "err", err)
			}
		}()
	}

	fmt.Fprintln(out, "wesly", wesly.Version)
	fmt.Fprintln(out, "Type ':quit' or Ctrl+D to exit, ':help' for commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder
	for {
		prompt := opts.Prompt
		if inputBuffer.Len() > 0 {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			if quit := s.command(trimmed); quit {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			continue
		}
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		full := inputBuffer.String()
		if needsMoreInput(full) {
			continue
		}
		line.AppendHistory(full)
		s.eval(full)
		inputBuffer.Reset()
	}
}

// session holds the state that survives between entries
type session struct {
	out  io.Writer
	opts Options
	env  *evaluator.Environment
}

func newSession(out io.Writer, opts Options) *session {
	s := &session{out: out, opts: opts}
	s.reset()
	return s
}

func (s *session) reset() {
	s.env = evaluator.NewEnvironment()
	s.env.Filename = "<repl>"
	s.env.Logger = wesly.WriterLogger(s.out)
}

// eval runs one complete entry against the session environment
func (s *session) eval(input string) {
	res, err := wesly.Eval(input,
		wesly.WithFilename("<repl>"),
		wesly.WithEnvironment(s.env),
		wesly.WithMaxCallDepth(s.opts.MaxCallDepth),
		wesly.WithShortCircuit(s.opts.ShortCircuit),
	)
	if err != nil {
		if we, ok := wesly.AsWeslyError(err); ok {
			printError(s.out, we)
		} else {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		return
	}
	s.opts.Log.Debug("evaluated", "nodes", res.Stats.Nodes, "calls", res.Stats.Calls)
	if res.Value.Object == nil || res.Value.Type == types.Void {
		return
	}
	fmt.Fprintln(s.out, displayValue(res.Value))
}

// command handles a ':' meta-command and reports whether the session should end
func (s *session) command(cmd string) bool {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show variables in scope")
		fmt.Fprintln(s.out, "  :clear          Clear all user variables")
		fmt.Fprintln(s.out, "  :quit, :q       Exit the REPL")
	case ":env":
		s.printEnvironment()
	case ":clear":
		s.reset()
		fmt.Fprintln(s.out, "Environment cleared")
	case ":quit", ":q", ":exit":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
	return false
}

// printEnvironment lists the user bindings of the root frame
func (s *session) printEnvironment() {
	builtins := make(map[string]bool)
	for _, name := range evaluator.BuiltinNames() {
		builtins[name] = true
	}

	count := 0
	for _, name := range s.env.LocalIdentifiers() {
		if builtins[name] {
			continue
		}
		b, ok := s.env.Binding(name)
		if !ok {
			continue
		}
		count++
		kind := "var"
		if b.Const {
			kind = "const"
		}
		typ := "any"
		if b.Type != nil {
			typ = b.Type.String()
		}
		value := evaluator.Value{Type: b.Type, Object: b.Object}.Inspect()
		value = runewidth.Truncate(value, envValueWidth, "...")
		fmt.Fprintf(s.out, "  %s %s %s = %s\n", kind, name, typ, value)
	}
	if count == 0 {
		fmt.Fprintln(s.out, "(no user variables)")
	}
}

// complete offers keywords, builtins and bound names matching the last word
func (s *session) complete(line string) []string {
	word, head := lastWord(line)
	if word == "" {
		return nil
	}

	seen := make(map[string]bool)
	var matches []string
	add := func(candidates []string) {
		for _, c := range candidates {
			if strings.HasPrefix(c, word) && !seen[c] {
				seen[c] = true
				matches = append(matches, head+c)
			}
		}
	}
	add(lexer.Keywords())
	add(s.env.AllIdentifiers())
	sort.Strings(matches)
	return matches
}

// lastWord splits line into the identifier being typed and everything before it
func lastWord(line string) (word, head string) {
	i := len(line)
	for i > 0 {
		c := line[i-1]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			i--
			continue
		}
		break
	}
	return line[i:], line[:i]
}

// displayValue renders a result the way a literal would be written
func displayValue(v evaluator.Value) string {
	switch o := v.Object.(type) {
	case *evaluator.String:
		return fmt.Sprintf("%q", o.Value)
	case *evaluator.Char:
		return "'" + o.Inspect() + "'"
	}
	return v.Inspect()
}

// needsMoreInput reports whether input has unclosed braces, brackets or
// parentheses outside strings, char literals and comments
func needsMoreInput(input string) bool {
	depth := 0
	inString, inChar, inLine, inBlock := false, false, false, false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
			}
			continue
		case inBlock:
			if ch == '*' && i+1 < len(input) && input[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		case inString || inChar:
			if ch == '\\' {
				i++
				continue
			}
			if inString && ch == '"' {
				inString = false
			}
			if inChar && ch == '\'' {
				inChar = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '\'':
			inChar = true
		case '/':
			if i+1 < len(input) {
				switch input[i+1] {
				case '/':
					inLine = true
					i++
				case '*':
					inBlock = true
					i++
				}
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth > 0 || inBlock
}

// saveHistory writes the session history, keeping only the newest limit entries
func saveHistory(line *liner.State, path string, limit int) error {
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		return err
	}
	return writeHistoryFile(&buf, path, limit)
}

func writeHistoryFile(r io.Reader, path string, limit int) error {
	var entries []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		entries = append(entries, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content := strings.Join(entries, "\n")
	if len(entries) > 0 {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

func printError(out io.Writer, err *werrors.WeslyError) {
	io.WriteString(out, err.PrettyString())
	io.WriteString(out, "\n")
}
