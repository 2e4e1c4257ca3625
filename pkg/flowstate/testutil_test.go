package flowstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestGraph creates a graph driven by a manual ticker with logging off.
func newTestGraph(t *testing.T, opts ...Option) (*Graph, *ManualTicker) {
	t.Helper()
	ticker := NewManualTicker()
	opts = append([]Option{WithTicker(ticker), WithLogger(nil)}, opts...)
	g := New(opts...)
	t.Cleanup(func() { _ = g.Close() })
	return g, ticker
}

// build creates nodes at the root and fails the test on error.
func build(t *testing.T, g *Graph, obj map[string]any) {
	t.Helper()
	require.NoError(t, g.CreateNodesFrom(obj, ""))
}

// sumOf returns a compute function adding integer dependencies plus offset,
// counting its invocations in calls when non-nil.
func sumOf(offset int, calls *int) ComputeFunc {
	return func(d Deps) (any, error) {
		if calls != nil {
			*calls++
		}
		total := offset
		for _, v := range d.Values() {
			total += v.(int)
		}
		return total, nil
	}
}

// value reads a node value and fails the test if it does not exist.
func value(t *testing.T, g *Graph, name string) any {
	t.Helper()
	v, ok := g.NodeValue(name)
	require.True(t, ok, "node %q should exist", name)
	return v
}

// recorder collects listener invocations.
type recorder struct {
	calls   int
	windows [][]Window
}

func (r *recorder) listen(w ...Window) {
	r.calls++
	r.windows = append(r.windows, w)
}

func (r *recorder) last() []Window {
	if len(r.windows) == 0 {
		return nil
	}
	return r.windows[len(r.windows)-1]
}
