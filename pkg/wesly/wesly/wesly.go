// Package wesly provides a public API for embedding the wesly interpreter.
package wesly

import (
	"context"
	"errors"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/evaluator"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/parser"
)

// Version is the wesly release this build reports
var Version = "0.3.0"

// Option configures Eval and EvalFile
type Option func(*options)

type options struct {
	filename string
	logger   Logger
	env      *evaluator.Environment
	eval     evaluator.Options
}

// WithFilename names the source in error messages
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithLogger routes print and println output
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEnvironment evaluates against an existing root environment, keeping its bindings
func WithEnvironment(env *evaluator.Environment) Option {
	return func(o *options) { o.env = env }
}

// WithMaxCallDepth bounds function recursion
func WithMaxCallDepth(n int) Option {
	return func(o *options) { o.eval.MaxCallDepth = n }
}

// WithShortCircuit makes && and || stop once the result is known
func WithShortCircuit(on bool) Option {
	return func(o *options) { o.eval.ShortCircuit = on }
}

// Result is the outcome of a successful evaluation
type Result struct {
	Value evaluator.Value
	Stats evaluator.Stats
	Env   *evaluator.Environment
}

// Parse parses src, returning the first syntax error as a *errors.WeslyError
func Parse(src, filename string) (*ast.Program, error) {
	p := parser.New(lexer.NewWithFilename(src, filename))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0].WithFile(filename)
	}
	return program, nil
}

// Eval parses and runs src
func Eval(src string, opts ...Option) (*Result, error) {
	o := &options{filename: "<input>"}
	for _, opt := range opts {
		opt(o)
	}

	program, err := Parse(src, o.filename)
	if err != nil {
		return nil, err
	}

	env := o.env
	if env == nil {
		env = evaluator.NewEnvironment()
		env.Filename = o.filename
	}
	if o.logger != nil {
		env.Logger = o.logger
	}

	ev := evaluator.New(o.eval)
	v, err := ev.Run(program, env)
	if err != nil {
		return nil, err
	}
	return &Result{Value: v, Stats: ev.Stats(), Env: env}, nil
}

// EvalFile reads and runs the program at path
func EvalFile(path string, opts ...Option) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Eval(string(src), append([]Option{WithFilename(path)}, opts...)...)
}

// Check parses src without running it
func Check(src, filename string) []*werrors.WeslyError {
	p := parser.New(lexer.NewWithFilename(src, filename))
	p.ParseProgram()
	errs := p.StructuredErrors()
	for i, e := range errs {
		errs[i] = e.WithFile(filename)
	}
	return errs
}

// FileCheck is the outcome of checking one file. ReadErr is set when the
// file could not be read; Errors holds its syntax errors otherwise.
type FileCheck struct {
	Path    string
	ReadErr error
	Errors  []*werrors.WeslyError
}

// OK reports whether the file was read and parsed cleanly
func (fc FileCheck) OK() bool {
	return fc.ReadErr == nil && len(fc.Errors) == 0
}

// checkConcurrency bounds the number of files parsed at once
const checkConcurrency = 8

// CheckFiles parses every file concurrently and reports results in input order.
// It stops early only when ctx is cancelled.
func CheckFiles(ctx context.Context, paths []string) ([]FileCheck, error) {
	results := make([]FileCheck, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fc := FileCheck{Path: path}
			src, err := os.ReadFile(path)
			if err != nil {
				fc.ReadErr = err
			} else {
				fc.Errors = Check(string(src), path)
			}
			mu.Lock()
			results[i] = fc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// AsWeslyError unwraps err to the interpreter's structured error, if it is one
func AsWeslyError(err error) (*werrors.WeslyError, bool) {
	var we *werrors.WeslyError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}
