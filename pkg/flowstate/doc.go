/*
Package flowstate provides a reactive dependency graph for application state.

# Overview

flowstate turns nested data into a graph of nodes. Every leaf becomes a
node holding a value, every nested map becomes a branch whose value is the
map of its children, and computed properties become nodes whose value is
derived from other nodes. When values change, the graph recomputes exactly
the nodes that depend on them, in dependency order, and notifies observers.

Observers come in two flavours:
  - Current-frame listeners run synchronously inside Update and see the
    previous and current value of each watched node.
  - Next-frame listeners are batched once per frame and see the value at
    the start of the frame and the value when the frame ends.

# Basic Usage

	g := flowstate.New()

	err := g.CreateNodesFrom(map[string]any{
	    "range": map[string]any{"start": 1, "end": 5},
	    "length": flowstate.Computed(func(d flowstate.Deps) (any, error) {
	        return d.Value("range.end").(int) - d.Value("range.start").(int), nil
	    }, "range.start", "range.end"),
	}, "")
	if err != nil {
	    log.Fatal(err)
	}

	sub, err := g.CreateObserver([]string{"length"}, flowstate.CurrentFrame,
	    func(w ...flowstate.Window) {
	        fmt.Println(w[0].Old, "->", w[0].New)
	    })
	if err != nil {
	    log.Fatal(err)
	}
	defer sub.Unsubscribe()

	_ = g.Update(flowstate.Set("range.end", 9)) // prints "4 -> 8"

# Frames

Next-frame delivery is driven by a Ticker. The default fires after
DefaultFrameInterval; ImmediateTicker flushes after every update; a
ManualTicker, or Graph.Flush, lets a host loop end frames explicitly:

	ticker := flowstate.NewManualTicker()
	g := flowstate.New(flowstate.WithTicker(ticker))
	// ... any number of updates ...
	ticker.Tick()

Each update appends exactly one history entry to every node, so all
histories stay the same length within a frame. Flushing trims them back to
the newest entry.

# Propagation Control

StopPropagation limits the next Update to the changed nodes themselves,
SetPropagationOverride silences one class of listeners for the next Update,
and ResetNodeValue re-sends current values without changing them.

# Concurrency

Graph methods are safe for concurrent use, and so are the *Node read
accessors, which take the graph lock. Compute functions run with the graph
locked and must not call back into it or read nodes. Listeners run unlocked
and may. With the default frame ticker, flushes run on a timer goroutine.

# Limitations

Dependency cycles are not detected. Traversal terminates, but the values of
nodes on a cycle are unspecified.

An update made after StopPropagation does not re-aggregate the root, so
Snapshot and the branches above the written nodes keep their old values
until the next propagating update.

# Error Handling

Lookup and construction failures wrap ErrUnknownProperty,
ErrStructuralConflict or ErrInvalidName in a *PropertyError. Compute
failures are returned as *ResolveError, and panics in compute functions or
current-frame listeners as *PanicError.
*/
package flowstate
