package flowstate

import (
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/randalmurphal/flowstate/pkg/flowstate/observability"
)

// Separator joins path components into qualified names.
const Separator = "."

// Graph owns a registry of nodes built from nested data, keeps their values
// consistent as they change, and notifies observers.
//
// A Graph is safe for use from multiple goroutines: every mutation and every
// read, including the *Node accessors, runs under one lock. Listeners are
// invoked with the lock released so they may call back into the graph.
// Compute functions run under the lock and must not.
type Graph struct {
	mu sync.Mutex

	id      string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	nodes map[string]*Node
	order []string
	root  *Node
	whole *NameSet

	propagate bool
	override  struct {
		current bool
		next    bool
	}

	lastTicket Ticket
	sched      *scheduler
	closed     bool
}

// New creates an empty graph. Its root value is an empty map.
//
// Example:
//
//	g := flowstate.New(flowstate.WithTicker(flowstate.ImmediateTicker))
//	err := g.CreateNodesFrom(map[string]any{"range": map[string]any{"start": 1, "end": 5}}, "")
func New(opts ...Option) *Graph {
	cfg := defaultGraphConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.New().String()
	}

	g := &Graph{
		id:        cfg.id,
		logger:    observability.EnrichLogger(cfg.logger, cfg.id),
		metrics:   cfg.metrics,
		spans:     cfg.spans,
		nodes:     make(map[string]*Node),
		whole:     NewNameSet(),
		propagate: true,
	}
	g.root = newNode("", "", accumulateResolver{}, g.lookup)
	g.root.root = true
	g.root.guard = &g.mu
	// The root records history from the first construction on, in step
	// with the nodes created there.
	g.root.seed = map[string]any{}
	g.sched = newScheduler(cfg.ticker, g.flushFrame)
	return g
}

// ID returns the graph identifier used in logs and spans.
func (g *Graph) ID() string {
	return g.id
}

// Root returns the root node. Its seed is the whole model as nested maps.
func (g *Graph) Root() *Node {
	return g.root
}

// Snapshot returns the aggregated value of the whole graph. The top-level
// map is a copy; nested branch maps are shared and must not be modified.
func (g *Graph) Snapshot() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, _ := g.root.seed.(map[string]any)
	return maps.Clone(m)
}

// detach copies a branch value's top-level map so callers cannot write
// into a node's seed or history.
func detach(v any) any {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m)
	}
	return v
}

// lookup is the graph-wide retriever handed to every node. Callers hold g.mu.
func (g *Graph) lookup(qualifiedName string) (*Node, bool) {
	n, ok := g.nodes[qualifiedName]
	return n, ok
}

// NodeValue returns the current value of a node and whether it exists.
// Branch values are returned as a copy of their top-level map.
func (g *Graph) NodeValue(qualifiedName string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[qualifiedName]
	if !ok {
		return nil, false
	}
	return detach(n.seed), true
}

// History returns a copy of a node's values recorded since the last flush,
// oldest first.
func (g *Graph) History(qualifiedName string) ([]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[qualifiedName]
	if !ok {
		return nil, unknownProperty("read", qualifiedName)
	}
	h := make([]any, len(n.history))
	copy(h, n.history)
	return h, nil
}

// Node returns the node registered under qualifiedName.
// Returns ErrUnknownProperty if there is none.
func (g *Graph) Node(qualifiedName string) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[qualifiedName]
	if !ok {
		return nil, unknownProperty("read", qualifiedName)
	}
	return n, nil
}

// Names returns every qualified name in registration order.
func (g *Graph) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.whole.Names()
}

// CreateObserver registers fn to be called when any of the named nodes, or
// anything they depend on, changes. kind selects current-frame or
// next-frame delivery.
//
// Panics if fn is nil.
func (g *Graph) CreateObserver(qualifiedNames []string, kind FrameKind, fn ListenerFunc) (Subscription, error) {
	if fn == nil {
		panic("flowstate: listener function cannot be nil")
	}
	if len(qualifiedNames) == 0 {
		return Subscription{}, &PropertyError{Op: "observe", Err: ErrNoProperties}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return Subscription{}, ErrClosed
	}

	nodes := make([]*Node, 0, len(qualifiedNames))
	for _, name := range qualifiedNames {
		n, ok := g.nodes[name]
		if !ok {
			return Subscription{}, unknownProperty("observe", name)
		}
		nodes = append(nodes, n)
	}

	o := newObserver(nodes)
	for _, n := range nodes {
		n.addObserver(o)
	}

	g.lastTicket++
	l := &listener{ticket: g.lastTicket, kind: kind, fn: fn}
	o.add(l)

	return Subscription{
		id:   l.ticket,
		once: &sync.Once{},
		stop: func() { g.unsubscribe(o, l.ticket) },
	}, nil
}

// unsubscribe removes a listener and detaches its observer once empty.
func (g *Graph) unsubscribe(o *Observer, t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o.remove(t) {
		return
	}
	for _, n := range o.nodes {
		n.removeObserver(o)
	}
}

// StopPropagation makes the next Update skip upstream recomputation and
// notify only observers attached directly to the changed nodes.
// Propagation is re-enabled automatically after that Update.
func (g *Graph) StopPropagation() *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.propagate = false
	return g
}

// SetPropagationOverride silences one class of listeners for the next
// Update only.
func (g *Graph) SetPropagationOverride(kind FrameKind) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch kind {
	case NextFrame:
		g.override.next = true
	default:
		g.override.current = true
	}
	return g
}

// resetPropagation restores the default: propagate, notify both classes.
// Callers hold g.mu.
func (g *Graph) resetPropagation() {
	g.propagate = true
	g.override.current = false
	g.override.next = false
}

// Pending reports whether a next-frame flush is waiting to run.
func (g *Graph) Pending() bool {
	return g.sched.isPending()
}

// Flush ends the current frame now: queued next-frame listeners run and
// every node's history is trimmed to its newest value. Hosts using a
// manual scheduler call this once per frame.
func (g *Graph) Flush() {
	g.sched.flushNow()
}

// Close stops frame scheduling. Pending next-frame listeners are dropped
// and later updates fail with ErrClosed.
func (g *Graph) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.sched.close()
	return nil
}
