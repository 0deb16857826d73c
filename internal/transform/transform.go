// Package transform applies ordered rule pipelines to document trees. The
// engine never mutates its input: it clones the tree, rewrites the clone in
// a single pass, and guarantees parent/child invariants on the output.
package transform

import (
	"fmt"

	"github.com/dgallion1/htmldown/internal/dom"
)

// Rule rewrites individual nodes. Matches and Apply must be pure functions
// of the node and context; Apply returns a replacement node, or nil to
// delete the node and its subtree.
type Rule interface {
	Name() string
	Matches(n *dom.Node) bool
	Apply(n *dom.Node, ctx map[string]any) *dom.Node
}

// Metrics summarizes one engine pass.
type Metrics struct {
	NodesVisited int `json:"nodes_visited"`
	NodesChanged int `json:"nodes_changed"`
	NodesDeleted int `json:"nodes_deleted"`
}

// Transformed is the count of nodes whose output differed from their input,
// including deletions.
func (m Metrics) Transformed() int {
	return m.NodesChanged + m.NodesDeleted
}

// NormalizeError wraps a failure raised by a rule mid-pass.
type NormalizeError struct {
	Rule string
	Err  error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize: rule %s: %v", e.Rule, e.Err)
}

func (e *NormalizeError) Unwrap() error { return e.Err }

// Apply runs the rules over every node of the tree in one pre-order pass and
// returns a new tree; the input is never modified.
//
// Per node, rules are tried in list order. The first matching rule's output
// replaces the node before later rules are tried against the result, so
// rules chain on the same node. A nil result deletes the node and its
// subtree and stops rule processing for it. Children are then processed
// recursively under the (possibly replaced) node.
//
// A panicking rule aborts the pass with a NormalizeError; the caller decides
// whether to fail or fall back to the untransformed tree.
func Apply(root *dom.Node, rules []Rule) (out *dom.Node, metrics Metrics, err error) {
	ctx := make(map[string]any)
	ruleName := ""

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			out, metrics = nil, Metrics{}
			err = &NormalizeError{Rule: ruleName, Err: rerr}
		}
	}()

	var process func(n *dom.Node) (*dom.Node, bool)
	process = func(n *dom.Node) (*dom.Node, bool) {
		metrics.NodesVisited++

		cur := n
		for _, r := range rules {
			if !r.Matches(cur) {
				continue
			}
			ruleName = r.Name()
			next := r.Apply(cur, ctx)
			if next == nil {
				metrics.NodesDeleted++
				return nil, true
			}
			if next != cur {
				metrics.NodesChanged++
				cur = next
			}
		}

		if len(cur.Children) > 0 {
			kept := cur.Children[:0:0]
			for _, c := range cur.Children {
				pc, deleted := process(c)
				if deleted {
					continue
				}
				pc.Parent = cur
				kept = append(kept, pc)
			}
			cur.Children = kept
		}
		return cur, false
	}

	result, deleted := process(root.Clone())
	if deleted {
		result = dom.NewDocument()
	}
	dom.RebindParents(result)
	return result, metrics, nil
}
