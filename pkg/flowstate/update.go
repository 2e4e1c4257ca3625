package flowstate

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/flowstate/pkg/flowstate/observability"
)

// Change is a new value for one leaf or any other node, by qualified name.
type Change struct {
	Name  string
	Value any
}

// Set is shorthand for a Change.
func Set(qualifiedName string, value any) Change {
	return Change{Name: qualifiedName, Value: value}
}

// cycle is what an update hands from the locked phase to dispatch.
type cycle struct {
	changed   int
	upstream  int
	observers int
	current   []*listener
	next      []*listener
	schedule  bool
}

// Update writes the given values and brings the graph up to date. Every
// node that depends on a changed node, directly or through others, is
// recomputed exactly once, dependencies first. Current-frame listeners run
// before Update returns; next-frame listeners are queued for the frame.
//
// Every node's history grows by exactly one entry per call, changed or not.
//
// A compute error aborts the cycle: no listener runs and the error is
// returned. A listener panic is returned as *PanicError after the listeners
// before it have run; later current-frame listeners are skipped.
func (g *Graph) Update(changes ...Change) error {
	return g.UpdateContext(context.Background(), changes...)
}

// UpdateContext is Update with a context for tracing and cancellation.
// Cancellation is checked before the graph is touched.
func (g *Graph) UpdateContext(ctx context.Context, changes ...Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	nodes := make([]*Node, 0, len(changes))
	for _, c := range changes {
		n, ok := g.nodes[c.Name]
		if !ok {
			g.mu.Unlock()
			return unknownProperty("update", c.Name)
		}
		nodes = append(nodes, n)
	}
	values := make([]any, len(changes))
	for i, c := range changes {
		values[i] = c.Value
	}
	return g.run(ctx, nodes, values)
}

// ResetNodeValue pushes each node's current value through the update
// pipeline, forcing a notification pass without changing data.
func (g *Graph) ResetNodeValue(qualifiedNames ...string) error {
	ctx := context.Background()

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	nodes := make([]*Node, 0, len(qualifiedNames))
	values := make([]any, 0, len(qualifiedNames))
	for _, name := range qualifiedNames {
		n, ok := g.nodes[name]
		if !ok {
			g.mu.Unlock()
			return unknownProperty("update", name)
		}
		nodes = append(nodes, n)
		values = append(values, n.seed)
	}
	return g.run(ctx, nodes, values)
}

// run executes one cycle. Callers hold g.mu; run releases it before any
// listener is invoked.
func (g *Graph) run(ctx context.Context, nodes []*Node, values []any) error {
	if len(nodes) == 0 {
		g.mu.Unlock()
		return nil
	}

	start := time.Now()
	ctx, span := g.spans.StartUpdateSpan(ctx, g.id, len(nodes))

	c, err := g.apply(nodes, values)
	g.mu.Unlock()

	elapsed := time.Since(start)
	if err != nil {
		g.metrics.RecordUpdate(ctx, len(nodes), 0, elapsed, err)
		g.spans.EndSpanWithError(span, err)
		observability.LogUpdateError(g.logger, err, float64(elapsed.Microseconds())/1000)
		return err
	}
	g.metrics.RecordUpdate(ctx, c.changed, c.upstream, elapsed, nil)
	g.spans.AddSpanEvent(ctx, "resolved",
		attribute.Int("upstream", c.upstream),
		attribute.Int("observers", c.observers),
	)
	observability.LogUpdate(g.logger, c.changed, c.upstream, c.observers, float64(elapsed.Microseconds())/1000)

	faulty, err := g.dispatch(c)
	if err != nil {
		g.metrics.RecordListenerFault(ctx, CurrentFrame.String())
		observability.LogListenerFault(g.logger, uint64(faulty), CurrentFrame.String(), err)
	}
	g.spans.EndSpanWithError(span, err)
	return err
}

// apply performs the locked phase of an update: write, resolve, align
// histories, and collect the listeners to notify. Callers hold g.mu.
func (g *Graph) apply(nodes []*Node, values []any) (*cycle, error) {
	resolved := make(map[*Node]bool, len(nodes))
	resolveOnce := func(n *Node) error {
		var err error
		if resolved[n] {
			err = n.amend()
		} else {
			err = n.resolve()
		}
		if err == nil {
			resolved[n] = true
		}
		return err
	}

	changedSet := NewNameSet()
	var observers []*Observer
	for i, n := range nodes {
		n.seed = values[i]
		if err := resolveOnce(n); err != nil {
			g.abort(resolved)
			return nil, err
		}
		changedSet.Add(n.qualifiedName)
		observers = append(observers, n.observers...)
	}

	c := &cycle{changed: changedSet.Len()}

	if g.propagate {
		upstream, reachedRoot := upstreamOrder(nodes)
		for _, n := range upstream {
			if err := resolveOnce(n); err != nil {
				g.abort(resolved)
				return nil, err
			}
			changedSet.Add(n.qualifiedName)
			observers = append(observers, n.observers...)
		}
		if reachedRoot {
			if err := resolveOnce(g.root); err != nil {
				g.abort(resolved)
				return nil, err
			}
		}
		c.upstream = len(upstream)
	}

	for _, name := range Difference(g.whole, changedSet).Names() {
		if n := g.nodes[name]; !resolved[n] {
			n.repeatHead()
		}
	}
	if !resolved[g.root] {
		g.root.repeatHead()
	}

	observers = uniqueObservers(observers)
	c.observers = len(observers)
	if !g.override.current {
		for _, o := range observers {
			c.current = append(c.current, o.current...)
		}
	}
	if !g.override.next {
		for _, o := range observers {
			c.next = append(c.next, o.next...)
		}
		c.schedule = true
	}
	g.resetPropagation()
	return c, nil
}

// abort restores history alignment after a failed resolve: every node not
// resolved in this cycle repeats its newest entry. Callers hold g.mu.
func (g *Graph) abort(resolved map[*Node]bool) {
	for _, name := range g.order {
		if n := g.nodes[name]; !resolved[n] {
			n.repeatHead()
		}
	}
	if !resolved[g.root] {
		g.root.repeatHead()
	}
	g.resetPropagation()
}

// dispatch runs current-frame listeners and queues next-frame listeners.
// On a listener panic it returns the ticket of the listener that failed.
func (g *Graph) dispatch(c *cycle) (Ticket, error) {
	var (
		faulty Ticket
		err    error
	)
	for _, l := range c.current {
		if err = g.invoke(l, g.windows(l.observer, CurrentFrame)); err != nil {
			faulty = l.ticket
			break
		}
	}
	if c.schedule {
		g.sched.schedule(c.next)
	}
	return faulty, err
}

// windows reads the value pairs for every node an observer watches.
func (g *Graph) windows(o *Observer, kind FrameKind) []Window {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.windowsLocked(o, kind)
}

func (g *Graph) windowsLocked(o *Observer, kind FrameKind) []Window {
	ws := make([]Window, len(o.nodes))
	for i, n := range o.nodes {
		if kind == NextFrame {
			ws[i] = n.ends()
		} else {
			ws[i] = n.recent()
		}
	}
	return ws
}

// invoke calls a listener, converting a panic into *PanicError.
func (g *Graph) invoke(l *listener, ws []Window) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{
				Name:  fmt.Sprintf("listener %d", l.ticket),
				Value: p,
				Stack: string(debug.Stack()),
			}
		}
	}()
	l.fn(ws...)
	return nil
}

// flushFrame ends a frame. Windows are captured and histories trimmed before
// any listener runs, so updates made by a listener start the next frame.
// A panicking listener is logged and does not stop the others.
func (g *Graph) flushFrame(batch []*listener) {
	start := time.Now()
	ctx, span := g.spans.StartFlushSpan(context.Background(), g.id, len(batch))

	g.mu.Lock()
	captured := make([][]Window, len(batch))
	for i, l := range batch {
		captured[i] = g.windowsLocked(l.observer, NextFrame)
	}
	for _, name := range g.order {
		g.nodes[name].flush()
	}
	g.root.flush()
	g.mu.Unlock()

	faults := 0
	for i, l := range batch {
		if err := g.invoke(l, captured[i]); err != nil {
			faults++
			g.metrics.RecordListenerFault(ctx, NextFrame.String())
			observability.LogListenerFault(g.logger, uint64(l.ticket), NextFrame.String(), err)
		}
	}

	elapsed := time.Since(start)
	g.metrics.RecordFlush(ctx, len(batch), elapsed)
	observability.LogFlush(g.logger, len(batch), faults, float64(elapsed.Microseconds())/1000)
	g.spans.EndSpanWithError(span, nil)
}
