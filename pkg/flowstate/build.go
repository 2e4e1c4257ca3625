package flowstate

import (
	"slices"
	"strings"

	"github.com/randalmurphal/flowstate/pkg/flowstate/observability"
)

// buildStep is one node to create, planned before the graph is touched.
type buildStep struct {
	parent   string
	name     string
	qname    string
	kind     Kind
	value    any
	computed *ComputedProp
}

// CreateNodesFrom registers a node for every entry of obj, recursively, and
// resolves the whole graph. Nested map[string]any values become branches,
// *ComputedProp values become computed properties and anything else becomes
// a leaf holding that value.
//
// With an empty mount the entries are placed under the root; otherwise mount
// names an existing branch. Mounting into a branch that already has children
// adds to them. Keys are processed in sorted order.
//
// The request is validated before anything is registered: on
// ErrUnknownProperty, ErrStructuralConflict or ErrInvalidName the graph is
// unchanged. A compute error raised while resolving is returned with the new
// nodes left in place.
//
// No listeners are notified.
func (g *Graph) CreateNodesFrom(obj map[string]any, mount string) error {
	done := observability.TimedOperation()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}

	parent, prefix := "", ""
	if mount != "" {
		p, ok := g.nodes[mount]
		if !ok {
			return unknownProperty("mount", mount)
		}
		if p.Kind() != KindAccumulate {
			return structuralConflict("mount", mount, "not a branch")
		}
		parent, prefix = mount, mount+Separator
	}

	var steps []buildStep
	fresh := make(map[string]bool)
	if err := g.plan(obj, parent, prefix, fresh, &steps); err != nil {
		return err
	}
	for _, s := range steps {
		if s.computed == nil {
			continue
		}
		for _, dep := range s.computed.deps {
			if _, ok := g.nodes[dep]; !ok && !fresh[dep] {
				return unknownProperty("create", dep)
			}
		}
	}

	g.register(steps)

	if err := g.resolveAll(); err != nil {
		return err
	}

	observability.LogBuild(g.logger, mount, len(steps), done())
	return nil
}

// plan validates obj and appends the nodes it describes to steps, parents
// before children. Callers hold g.mu.
func (g *Graph) plan(obj map[string]any, parent, prefix string, fresh map[string]bool, steps *[]buildStep) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		qname := prefix + key
		if key == "" || strings.Contains(key, Separator) {
			return &PropertyError{Name: qname, Op: "create", Err: ErrInvalidName}
		}

		existing, exists := g.nodes[qname]
		switch v := obj[key].(type) {
		case map[string]any:
			if exists && existing.Kind() != KindAccumulate {
				return structuralConflict("create", qname, "a value already lives here")
			}
			if !exists {
				fresh[qname] = true
				*steps = append(*steps, buildStep{parent: parent, name: key, qname: qname, kind: KindAccumulate})
			}
			if err := g.plan(v, qname, qname+Separator, fresh, steps); err != nil {
				return err
			}
		case *ComputedProp:
			if exists {
				return structuralConflict("create", qname, "already defined")
			}
			if v == nil {
				return &PropertyError{Name: qname, Op: "create", Err: ErrInvalidName}
			}
			fresh[qname] = true
			*steps = append(*steps, buildStep{parent: parent, name: key, qname: qname, kind: KindCustom, computed: v})
		default:
			if exists {
				return structuralConflict("create", qname, "already defined")
			}
			fresh[qname] = true
			*steps = append(*steps, buildStep{parent: parent, name: key, qname: qname, kind: KindIdentity, value: v})
		}
	}
	return nil
}

// register adds planned nodes to the graph and wires their edges. Computed
// dependencies are wired last so they may name nodes created by the same
// call. Callers hold g.mu.
func (g *Graph) register(steps []buildStep) {
	for _, s := range steps {
		var r resolver
		switch s.kind {
		case KindAccumulate:
			r = accumulateResolver{}
		case KindCustom:
			r = customResolver{fn: s.computed.fn}
		default:
			r = identityResolver{}
		}

		n := newNode(s.name, s.qname, r, g.lookup)
		n.guard = &g.mu
		if s.kind == KindIdentity {
			n.seed = s.value
		}
		g.nodes[s.qname] = n
		g.order = append(g.order, s.qname)
		g.whole.Add(s.qname)

		parent := g.root
		if s.parent != "" {
			parent = g.nodes[s.parent]
		}
		parent.addDependencies(n)
	}

	for _, s := range steps {
		if s.computed == nil {
			continue
		}
		n := g.nodes[s.qname]
		for _, dep := range s.computed.deps {
			n.addDependencies(g.nodes[dep])
		}
	}
}

// resolveAll resolves every node once, dependencies first. On failure the
// nodes not yet resolved repeat their newest entry so histories stay
// aligned. Callers hold g.mu.
func (g *Graph) resolveAll() error {
	order := resolutionOrder(g.root)
	for i, n := range order {
		if err := n.resolve(); err != nil {
			for _, rest := range order[i:] {
				rest.repeatHead()
			}
			return err
		}
	}
	return nil
}
