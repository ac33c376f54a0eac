package evaluator

import "fmt"

// Logger receives the output of print and println
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// stdoutLogger writes straight to stdout
type stdoutLogger struct{}

func (l *stdoutLogger) Log(values ...any) {
	fmt.Print(values...)
}

func (l *stdoutLogger) LogLine(values ...any) {
	fmt.Print(values...)
	fmt.Println()
}

// DefaultLogger is the logger root environments start with
var DefaultLogger Logger = &stdoutLogger{}
