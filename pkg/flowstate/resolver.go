package flowstate

import (
	"fmt"
	"runtime/debug"
)

// Kind identifies how a node computes its value.
type Kind int

// Resolver kinds.
const (
	// KindIdentity is a leaf: its value is whatever was last written to it.
	KindIdentity Kind = iota
	// KindAccumulate is a branch: its value is a map of its children's values.
	KindAccumulate
	// KindCustom is a computed property backed by a ComputeFunc.
	KindCustom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindAccumulate:
		return "accumulate"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Detail is a snapshot of one node handed to a resolver.
type Detail struct {
	Name          string
	QualifiedName string
	Value         any
}

// Deps is the ordered list of dependency snapshots passed to a ComputeFunc.
// Entries appear in the order the dependencies were declared.
type Deps []Detail

// Value returns the value of the dependency with the given qualified name,
// or nil if it is not part of the list.
func (d Deps) Value(qualifiedName string) any {
	v, _ := d.Lookup(qualifiedName)
	return v
}

// Lookup returns the value of the dependency with the given qualified name
// and whether it was found.
func (d Deps) Lookup(qualifiedName string) (any, bool) {
	for _, detail := range d {
		if detail.QualifiedName == qualifiedName {
			return detail.Value, true
		}
	}
	return nil, false
}

// Values returns the dependency values positionally.
func (d Deps) Values() []any {
	values := make([]any, len(d))
	for i, detail := range d {
		values[i] = detail.Value
	}
	return values
}

// ComputeFunc calculates a computed property from its dependencies.
// It must be a pure function of deps and must not call back into the graph.
type ComputeFunc func(deps Deps) (any, error)

// ComputedProp declares a computed property: a ComputeFunc plus the qualified
// names it depends on. Place it as a value inside the object passed to
// Graph.CreateNodesFrom.
type ComputedProp struct {
	fn   ComputeFunc
	deps []string
}

// Computed creates a computed property descriptor.
//
// Panics if fn is nil.
func Computed(fn ComputeFunc, deps ...string) *ComputedProp {
	if fn == nil {
		panic("flowstate: compute function cannot be nil")
	}
	d := make([]string, len(deps))
	copy(d, deps)
	return &ComputedProp{fn: fn, deps: d}
}

// Dependencies returns the declared dependency names.
func (c *ComputedProp) Dependencies() []string {
	d := make([]string, len(c.deps))
	copy(d, c.deps)
	return d
}

// resolver maps dependency details to a node value.
// The set of implementations is closed: identity, accumulate and custom.
type resolver interface {
	kind() Kind
	resolve(n *Node, details []Detail) (any, error)
}

type identityResolver struct{}

func (identityResolver) kind() Kind { return KindIdentity }

func (identityResolver) resolve(n *Node, details []Detail) (any, error) {
	if len(details) == 0 {
		return n.seed, nil
	}
	return details[0].Value, nil
}

type accumulateResolver struct{}

func (accumulateResolver) kind() Kind { return KindAccumulate }

// resolve builds a fresh map so earlier history entries are never mutated.
func (accumulateResolver) resolve(n *Node, details []Detail) (any, error) {
	out := make(map[string]any, len(n.edges))
	if len(n.edges) == 0 {
		return out, nil
	}
	for _, d := range details {
		out[d.Name] = d.Value
	}
	return out, nil
}

type customResolver struct {
	fn ComputeFunc
}

func (customResolver) kind() Kind { return KindCustom }

func (r customResolver) resolve(n *Node, details []Detail) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{
				Name:  n.qualifiedName,
				Value: p,
				Stack: string(debug.Stack()),
			}
		}
	}()

	value, err = r.fn(Deps(details))
	if err != nil {
		return nil, &ResolveError{Name: n.qualifiedName, Err: err}
	}
	return value, nil
}
