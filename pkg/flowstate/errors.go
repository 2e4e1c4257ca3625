package flowstate

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and lookup.
var (
	// ErrUnknownProperty indicates a qualified name that is not in the graph.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrStructuralConflict indicates an attempt to mount properties where a
	// value already lives, or to redefine an existing property.
	ErrStructuralConflict = errors.New("structural conflict")

	// ErrInvalidName indicates a property key that is empty or contains the
	// path separator.
	ErrInvalidName = errors.New("invalid property name")

	// ErrNoProperties indicates an observer registration without properties.
	ErrNoProperties = errors.New("at least one property is required")

	// ErrClosed indicates the graph has been closed.
	ErrClosed = errors.New("graph closed")
)

// PropertyError wraps a lookup or construction error with the property it
// concerns.
type PropertyError struct {
	// Name is the qualified name involved.
	Name string
	// Op is the operation that failed ("read", "update", "observe", "mount", "create").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PropertyError) Unwrap() error {
	return e.Err
}

func unknownProperty(op, name string) error {
	return &PropertyError{Name: name, Op: op, Err: ErrUnknownProperty}
}

func structuralConflict(op, name, reason string) error {
	return &PropertyError{Name: name, Op: op, Err: fmt.Errorf("%w: %s", ErrStructuralConflict, reason)}
}

// ResolveError wraps an error returned by a computed property's function.
type ResolveError struct {
	// Name is the qualified name of the computed property.
	Name string
	// Err is the error returned by the ComputeFunc.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised by a compute function or a listener.
// It includes the stack trace for debugging.
type PanicError struct {
	// Name is the qualified name of the computed property, or the listener
	// description for listener panics.
	Name string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Name, e.Value)
}
