package wesly

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/wesly-lang/wesly/pkg/wesly/evaluator"
)

// Logger receives what programs print
type Logger = evaluator.Logger

// StdoutLogger is the logger a fresh environment prints through
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

// spaced renders values the way fmt.Println separates them, minus the newline
func spaced(values []any) string {
	return strings.TrimSuffix(fmt.Sprintln(values...), "\n")
}

type writerLogger struct{ w io.Writer }

func (l writerLogger) Log(values ...any)     { io.WriteString(l.w, spaced(values)) }
func (l writerLogger) LogLine(values ...any) { io.WriteString(l.w, spaced(values)+"\n") }

// WriterLogger sends program output to w
func WriterLogger(w io.Writer) Logger {
	return writerLogger{w: w}
}

// NullLogger drops program output
func NullLogger() Logger {
	return writerLogger{w: io.Discard}
}

// BufferedLogger keeps program output in memory. It is safe for concurrent use.
type BufferedLogger struct {
	mu  sync.Mutex
	out strings.Builder
}

func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (b *BufferedLogger) Log(values ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteString(spaced(values))
}

func (b *BufferedLogger) LogLine(values ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteString(spaced(values))
	b.out.WriteByte('\n')
}

// String returns everything printed so far, including an unfinished line
func (b *BufferedLogger) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}

// Lines returns the finished lines only
func (b *BufferedLogger) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.out.String()
	end := strings.LastIndexByte(s, '\n')
	if end < 0 {
		return []string{}
	}
	return strings.Split(s[:end], "\n")
}

func (b *BufferedLogger) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.Reset()
}
