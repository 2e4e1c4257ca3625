package flowstate

// visitState marks a node during depth-first traversal.
type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// upstreamOrder returns every node reachable from starts through outgoing
// edges, ordered so each node comes after everything it depends on within
// the set. Start nodes appear only when reachable from another start. The
// root is left out of the list; reachedRoot reports whether it was reached.
//
// Cycles are not detected. Traversal still terminates, but the order among
// nodes on a cycle is unspecified.
func upstreamOrder(starts []*Node) (order []*Node, reachedRoot bool) {
	state := make(map[*Node]visitState)
	reached := make(map[*Node]bool)
	var post []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		state[n] = visiting
		for _, dependent := range n.outgoing {
			reached[dependent] = true
			if state[dependent] == unvisited {
				visit(dependent)
			}
		}
		state[n] = visited
		post = append(post, n)
	}

	for _, n := range starts {
		if state[n] == unvisited {
			visit(n)
		}
	}

	for i := len(post) - 1; i >= 0; i-- {
		n := post[i]
		if !reached[n] {
			continue
		}
		if n.root {
			reachedRoot = true
			continue
		}
		order = append(order, n)
	}
	return order, reachedRoot
}

// resolutionOrder returns every node below root, dependencies first,
// with root last.
func resolutionOrder(root *Node) []*Node {
	state := make(map[*Node]visitState)
	var post []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		state[n] = visiting
		for _, dep := range n.edges {
			if state[dep] == unvisited {
				visit(dep)
			}
		}
		state[n] = visited
		post = append(post, n)
	}

	visit(root)
	return post
}
