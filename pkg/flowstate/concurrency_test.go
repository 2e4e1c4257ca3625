package flowstate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraph_ReadsDuringTimedFlushes reads node state from one goroutine
// while another updates and the frame ticker flushes on its own timer.
// Run with -race.
func TestGraph_ReadsDuringTimedFlushes(t *testing.T) {
	g := New(WithFrameInterval(time.Millisecond), WithLogger(nil))
	t.Cleanup(func() { _ = g.Close() })
	build(t, g, map[string]any{
		"n":      0,
		"double": Computed(func(d Deps) (any, error) { return d.Value("n").(int) * 2, nil }, "n"),
		"group":  map[string]any{"m": 1},
	})

	_, err := g.CreateObserver([]string{"double"}, NextFrame, func(w ...Window) {
		_ = w[0].New
	})
	require.NoError(t, err)

	n, err := g.Node("n")
	require.NoError(t, err)
	root := g.Root()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			assert.NoError(t, g.Update(Set("n", i)))
			if i%20 == 0 {
				time.Sleep(2 * time.Millisecond)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = n.History()
			_ = n.Seed()
			_ = root.Seed()
			_ = root.History()
			_ = n.OutgoingEdges()
			_, _ = g.History("double")
			_, _ = g.NodeValue("group")
			_ = g.Snapshot()
		}
	}()
	wg.Wait()

	g.Flush()
	assert.Equal(t, 400, value(t, g, "double"))
	h, err := g.History("double")
	require.NoError(t, err)
	assert.Equal(t, []any{400}, h)
}
