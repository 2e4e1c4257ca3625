package expr

import (
	"errors"
	"strings"
)

// Compile errors.
var (
	// ErrEmptyExpression is returned when compiling a blank expression.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrMissingOperand is returned when an operator lacks a side.
	ErrMissingOperand = errors.New("missing operand")
)

// BinaryOp is a function that compares two values and returns a boolean result.
type BinaryOp func(left, right any) bool

// Evaluator compiles and evaluates boolean expressions with optional custom
// operators.
type Evaluator struct {
	customOps map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a custom binary operator.
// The operator name should not conflict with built-in operators.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile parses an expression once so it can be evaluated many times.
func (e *Evaluator) Compile(expression string) (*Expr, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	root, err := e.parse(expression)
	if err != nil {
		return nil, err
	}
	return &Expr{source: expression, root: root}, nil
}

// Evaluate evaluates a boolean expression against the provided variables.
// A blank expression is false.
func (e *Evaluator) Evaluate(expression string, vars map[string]any) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, nil
	}
	x, err := e.Compile(expression)
	if err != nil {
		return false, err
	}
	return x.Eval(vars), nil
}

// Compile parses an expression using the default evaluator.
func Compile(expression string) (*Expr, error) {
	return New().Compile(expression)
}

// Eval is a convenience function that evaluates an expression using
// the default evaluator (no custom operators).
func Eval(expression string, vars map[string]any) (bool, error) {
	return New().Evaluate(expression, vars)
}

// Expr is a compiled expression. It is immutable and safe for concurrent use.
type Expr struct {
	source string
	root   node
}

// String returns the source text.
func (x *Expr) String() string {
	return x.source
}

// Deps returns the identifiers the expression reads, in order of first
// appearance.
func (x *Expr) Deps() []string {
	var deps []string
	seen := make(map[string]bool)
	x.root.idents(func(name string) {
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	})
	return deps
}

// Eval evaluates the expression against vars. Identifiers missing from vars
// evaluate to their own name.
func (x *Expr) Eval(vars map[string]any) bool {
	return x.root.eval(vars)
}
