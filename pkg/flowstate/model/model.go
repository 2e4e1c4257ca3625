package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/flowstate/pkg/flowstate"
	"github.com/randalmurphal/flowstate/pkg/flowstate/expr"
)

// ErrNotWritable is returned when writing to a branch or a computed property.
var ErrNotWritable = errors.New("property is not writable")

// Model is an observable object backed by a flowstate.Graph.
type Model struct {
	g *flowstate.Graph

	mu     sync.Mutex
	locked bool
	queue  []flowstate.Change
}

// Create builds a model whose properties mirror obj.
func Create(obj map[string]any, opts ...flowstate.Option) (*Model, error) {
	m := &Model{g: flowstate.New(opts...)}
	if err := m.g.CreateNodesFrom(obj, ""); err != nil {
		return nil, err
	}
	return m, nil
}

// FromYAML builds a model from a YAML document whose top level is a mapping.
func FromYAML(data []byte, opts ...flowstate.Option) (*Model, error) {
	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return Create(obj, opts...)
}

// Graph returns the underlying graph.
func (m *Model) Graph() *flowstate.Graph {
	return m.g
}

// Append adds properties at the top level.
func (m *Model) Append(obj map[string]any) error {
	return m.g.CreateNodesFrom(obj, "")
}

// AppendAt adds properties below mount. Path components of mount that do
// not exist yet are created as branches.
func (m *Model) AppendAt(mount string, obj map[string]any) error {
	if mount == "" {
		return m.Append(obj)
	}

	parts := strings.Split(mount, flowstate.Separator)
	i := len(parts)
	for ; i > 0; i-- {
		if _, ok := m.g.NodeValue(strings.Join(parts[:i], flowstate.Separator)); ok {
			break
		}
	}
	return m.g.CreateNodesFrom(nest(parts[i:], obj), strings.Join(parts[:i], flowstate.Separator))
}

// nest wraps obj in one map per path component.
func nest(path []string, obj map[string]any) map[string]any {
	for i := len(path) - 1; i >= 0; i-- {
		obj = map[string]any{path[i]: obj}
	}
	return obj
}

// CalculatedProp adds a computed property named name below mount. name may
// be a dotted path. deps are qualified names of the properties fn reads.
func (m *Model) CalculatedProp(mount, name string, fn flowstate.ComputeFunc, deps ...string) error {
	parts := strings.Split(name, flowstate.Separator)
	leaf := parts[len(parts)-1]
	obj := nest(parts[:len(parts)-1], map[string]any{leaf: flowstate.Computed(fn, deps...)})
	return m.AppendAt(mount, obj)
}

// Derive adds a boolean property computed from an expression. Every
// identifier in the expression must be the qualified name of a property.
//
// Example:
//
//	err := m.Derive("", "valid", "range.end > range.start")
func (m *Model) Derive(mount, name, expression string) error {
	x, err := expr.Compile(expression)
	if err != nil {
		return fmt.Errorf("derive %s: %w", name, err)
	}
	return m.CalculatedProp(mount, name, func(deps flowstate.Deps) (any, error) {
		vars := make(map[string]any, len(deps))
		for _, d := range deps {
			vars[d.QualifiedName] = d.Value
		}
		return x.Eval(vars), nil
	}, x.Deps()...)
}

// On registers a current-frame listener. With instant set, fn is also
// called right away with the current values. The instant call goes to
// every current-frame listener watching the same properties.
func (m *Model) On(props []string, fn flowstate.ListenerFunc, instant bool) (flowstate.Subscription, error) {
	return m.observe(props, flowstate.CurrentFrame, fn, instant)
}

// Next registers a next-frame listener. With instant set, the listener is
// queued for the coming frame right away.
func (m *Model) Next(props []string, fn flowstate.ListenerFunc, instant bool) (flowstate.Subscription, error) {
	return m.observe(props, flowstate.NextFrame, fn, instant)
}

func (m *Model) observe(props []string, kind flowstate.FrameKind, fn flowstate.ListenerFunc, instant bool) (flowstate.Subscription, error) {
	sub, err := m.g.CreateObserver(props, kind, fn)
	if err != nil || !instant {
		return sub, err
	}

	other := flowstate.NextFrame
	if kind == flowstate.NextFrame {
		other = flowstate.CurrentFrame
	}
	m.g.StopPropagation().SetPropagationOverride(other)
	if err := m.g.ResetNodeValue(props...); err != nil {
		sub.Unsubscribe()
		return flowstate.Subscription{}, err
	}
	return sub, nil
}

// Lock queues writes until Unlock. Anything queued by an earlier Lock is
// discarded.
func (m *Model) Lock() *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = true
	m.queue = nil
	return m
}

// Unlock applies the queued writes as a single update.
func (m *Model) Unlock() error {
	m.mu.Lock()
	changes := m.queue
	m.locked = false
	m.queue = nil
	m.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	return m.g.Update(changes...)
}

// Pending returns the writes queued since Lock.
func (m *Model) Pending() []flowstate.Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]flowstate.Change, len(m.queue))
	copy(out, m.queue)
	return out
}

// Prop returns the value of a property, or nil if there is none. Branches
// return a map of their children.
func (m *Model) Prop(name string) any {
	v, _ := m.g.NodeValue(name)
	return v
}

// SetProp writes one property.
func (m *Model) SetProp(name string, value any) error {
	return m.SetProps(flowstate.Set(name, value))
}

// SetProps writes several properties in one update, or queues them while
// the model is locked. Only plain values can be written.
func (m *Model) SetProps(changes ...flowstate.Change) error {
	if len(changes) == 0 {
		return nil
	}
	for _, c := range changes {
		if err := m.writable(c.Name); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.locked {
		m.queue = append(m.queue, changes...)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.g.Update(changes...)
}

func (m *Model) writable(name string) error {
	n, err := m.g.Node(name)
	if err != nil {
		return err
	}
	if n.Kind() != flowstate.KindIdentity {
		return &flowstate.PropertyError{Name: name, Op: "update", Err: ErrNotWritable}
	}
	return nil
}

// Serialize returns the whole model as nested maps.
func (m *Model) Serialize() map[string]any {
	return m.g.Snapshot()
}

// Close stops frame scheduling for the model.
func (m *Model) Close() error {
	return m.g.Close()
}
