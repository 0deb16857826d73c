package dom

// Action tells the walker how to proceed after visiting a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren visits the node's siblings but not its subtree.
	SkipChildren
	// Stop ends the traversal immediately.
	Stop
)

// Visitor is called for every node in pre-order. path holds the ancestors
// from the root down to (excluding) the current node. ctx is a scratch map
// scoped to a single Walk call; visitors may read and write it freely.
type Visitor func(n *Node, path []*Node, ctx map[string]any) Action

// Walk traverses the tree rooted at n in pre-order. Each call starts a fresh
// traversal with its own path and context; no cursor state survives between
// calls.
func Walk(n *Node, visit Visitor) {
	ctx := make(map[string]any)
	path := make([]*Node, 0, 16)
	walk(n, path, ctx, visit)
}

func walk(n *Node, path []*Node, ctx map[string]any, visit Visitor) Action {
	switch visit(n, path, ctx) {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}
	path = append(path, n)
	for _, c := range n.Children {
		if walk(c, path, ctx, visit) == Stop {
			return Stop
		}
	}
	return Continue
}
