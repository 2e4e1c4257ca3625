package flowstate

import "sync"

// retrieverFunc looks a node up by qualified name across the whole graph.
type retrieverFunc func(qualifiedName string) (*Node, bool)

// Node is one vertex of the graph: a value in the data tree or a computed
// property.
//
// Edges point at the nodes this node depends on. For a branch those are its
// children, for a computed property its declared dependencies. Outgoing
// edges are the reverse index and are the only record of who is affected
// when this node changes.
//
// Nodes are owned by their Graph. The read accessors take the graph lock,
// so they are safe from any goroutine and from listeners, but must not be
// called from a ComputeFunc. Callers must not mutate values returned from
// Seed or History.
type Node struct {
	name          string
	qualifiedName string
	root          bool

	// guard is the owning graph's lock; nil for a node outside a graph.
	guard sync.Locker

	edges    []*Node
	outgoing []*Node

	resolver  resolver
	retriever retrieverFunc

	seed    any
	history []any

	observers []*Observer
}

func newNode(name, qualifiedName string, r resolver, retriever retrieverFunc) *Node {
	return &Node{
		name:          name,
		qualifiedName: qualifiedName,
		resolver:      r,
		retriever:     retriever,
	}
}

// Name returns the last component of the node's path. Empty for the root.
func (n *Node) Name() string {
	return n.name
}

// QualifiedName returns the unique key of the node.
func (n *Node) QualifiedName() string {
	return n.qualifiedName
}

// IsRoot reports whether n is the graph's root node.
func (n *Node) IsRoot() bool {
	return n.root
}

// Kind returns how the node computes its value.
func (n *Node) Kind() Kind {
	return n.resolver.kind()
}

// lock acquires the owning graph's lock and returns the matching unlock.
func (n *Node) lock() func() {
	if n.guard == nil {
		return func() {}
	}
	n.guard.Lock()
	return n.guard.Unlock
}

// Seed returns the current value.
func (n *Node) Seed() any {
	defer n.lock()()
	return n.seed
}

// History returns a copy of the values recorded since the last flush,
// oldest first.
func (n *Node) History() []any {
	defer n.lock()()
	h := make([]any, len(n.history))
	copy(h, n.history)
	return h
}

// Edges returns the nodes n depends on.
func (n *Node) Edges() []*Node {
	defer n.lock()()
	e := make([]*Node, len(n.edges))
	copy(e, n.edges)
	return e
}

// OutgoingEdges returns the nodes that depend on n.
func (n *Node) OutgoingEdges() []*Node {
	defer n.lock()()
	e := make([]*Node, len(n.outgoing))
	copy(e, n.outgoing)
	return e
}

// addDependencies records that n depends on deps and keeps the reverse
// index in step.
func (n *Node) addDependencies(deps ...*Node) *Node {
	n.edges = append(n.edges, deps...)
	for _, dep := range deps {
		dep.outgoing = append(dep.outgoing, n)
	}
	return n
}

func (n *Node) addObserver(o *Observer) {
	n.observers = append(n.observers, o)
}

func (n *Node) removeObserver(o *Observer) {
	for i, existing := range n.observers {
		if existing == o {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}

func (n *Node) detail() Detail {
	return Detail{Name: n.name, QualifiedName: n.qualifiedName, Value: n.seed}
}

// retrieveDetails returns the inputs for the resolver: the node itself when
// it has no edges, otherwise one detail per dependency fetched through the
// graph-wide retriever.
func (n *Node) retrieveDetails() []Detail {
	if len(n.edges) == 0 {
		return []Detail{n.detail()}
	}
	details := make([]Detail, 0, len(n.edges))
	for _, edge := range n.edges {
		dep := edge
		if n.retriever != nil {
			if found, ok := n.retriever(edge.qualifiedName); ok {
				dep = found
			}
		}
		details = append(details, dep.detail())
	}
	return details
}

func (n *Node) compute() (any, error) {
	return n.resolver.resolve(n, n.retrieveDetails())
}

// resolve recomputes the seed and appends it to the history.
// On error the node is left untouched.
func (n *Node) resolve() error {
	v, err := n.compute()
	if err != nil {
		return err
	}
	n.seed = v
	n.history = append(n.history, v)
	return nil
}

// amend recomputes the seed and replaces the newest history entry, so a
// node resolved twice in one cycle still grows its history by one.
func (n *Node) amend() error {
	if len(n.history) == 0 {
		return n.resolve()
	}
	v, err := n.compute()
	if err != nil {
		return err
	}
	n.seed = v
	n.history[len(n.history)-1] = v
	return nil
}

// repeatHead appends a copy of the newest history entry.
func (n *Node) repeatHead() *Node {
	if len(n.history) == 0 {
		return n
	}
	n.history = append(n.history, n.history[len(n.history)-1])
	return n
}

// flush drops every history entry but the newest.
func (n *Node) flush() *Node {
	if len(n.history) <= 1 {
		return n
	}
	head := n.history[len(n.history)-1]
	clear(n.history)
	n.history = append(n.history[:0], head)
	return n
}

// recent returns the previous and current value.
func (n *Node) recent() Window {
	switch len(n.history) {
	case 0:
		return Window{Old: n.seed, New: n.seed}
	case 1:
		return Window{Old: n.history[0], New: n.history[0]}
	default:
		return Window{Old: n.history[len(n.history)-2], New: n.history[len(n.history)-1]}
	}
}

// ends returns the value at the start of the frame and the current value.
func (n *Node) ends() Window {
	if len(n.history) == 0 {
		return Window{Old: n.seed, New: n.seed}
	}
	return Window{Old: n.history[0], New: n.history[len(n.history)-1]}
}
