package flowstate

import (
	"fmt"
	"sync"
)

// FrameKind selects when a listener is notified.
type FrameKind int

const (
	// CurrentFrame listeners run synchronously inside Update, after every
	// affected node has been resolved. They receive the previous and the
	// current value of each watched node.
	CurrentFrame FrameKind = iota

	// NextFrame listeners are batched by the Scheduler and run once per
	// frame. They receive the value at the start of the frame and the value
	// at flush time.
	NextFrame
)

// String returns the frame kind name.
func (k FrameKind) String() string {
	switch k {
	case CurrentFrame:
		return "current_frame"
	case NextFrame:
		return "next_frame"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// Window is a pair of values of one watched node.
type Window struct {
	Old any
	New any
}

// ListenerFunc receives one Window per watched node, in the order the nodes
// were given at registration.
type ListenerFunc func(windows ...Window)

// Ticket identifies one listener registration. Tickets are unique within a
// Graph and are used to deduplicate and remove listeners.
type Ticket uint64

// listener is a registered callback bound to its observer's nodes.
type listener struct {
	ticket   Ticket
	kind     FrameKind
	observer *Observer
	fn       ListenerFunc
}

// Observer binds a fixed set of nodes to the listeners registered on them.
// Its node list never changes after creation.
type Observer struct {
	nodes   []*Node
	current []*listener
	next    []*listener
}

func newObserver(nodes []*Node) *Observer {
	n := make([]*Node, len(nodes))
	copy(n, nodes)
	return &Observer{nodes: n}
}

// Nodes returns the watched nodes.
func (o *Observer) Nodes() []*Node {
	n := make([]*Node, len(o.nodes))
	copy(n, o.nodes)
	return n
}

func (o *Observer) add(l *listener) {
	l.observer = o
	switch l.kind {
	case NextFrame:
		o.next = append(o.next, l)
	default:
		o.current = append(o.current, l)
	}
}

// remove drops the listener with the given ticket and reports whether the
// observer has any listeners left.
func (o *Observer) remove(t Ticket) bool {
	o.current = withoutTicket(o.current, t)
	o.next = withoutTicket(o.next, t)
	return len(o.current)+len(o.next) > 0
}

func withoutTicket(ls []*listener, t Ticket) []*listener {
	for i, l := range ls {
		if l.ticket == t {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}

// Subscription is returned by Graph.CreateObserver.
type Subscription struct {
	id   Ticket
	once *sync.Once
	stop func()
}

// ID returns the registration ticket.
func (s Subscription) ID() Ticket {
	return s.id
}

// Unsubscribe removes the listener. Copies already queued for the next
// frame still run. Calling Unsubscribe more than once is a no-op.
func (s Subscription) Unsubscribe() {
	if s.once == nil || s.stop == nil {
		return
	}
	s.once.Do(s.stop)
}

// uniqueObservers drops repeated observers, keeping first occurrences.
func uniqueObservers(obs []*Observer) []*Observer {
	seen := make(map[*Observer]struct{}, len(obs))
	out := make([]*Observer, 0, len(obs))
	for _, o := range obs {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// uniqueListeners drops repeated tickets, keeping first occurrences.
func uniqueListeners(ls []*listener) []*listener {
	seen := make(map[Ticket]struct{}, len(ls))
	out := make([]*listener, 0, len(ls))
	for _, l := range ls {
		if _, ok := seen[l.ticket]; ok {
			continue
		}
		seen[l.ticket] = struct{}{}
		out = append(out, l)
	}
	return out
}
