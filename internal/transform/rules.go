package transform

import (
	"regexp"
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
)

// funcRule adapts a pair of functions to the Rule interface.
type funcRule struct {
	name    string
	matches func(*dom.Node) bool
	apply   func(*dom.Node, map[string]any) *dom.Node
}

func (r *funcRule) Name() string             { return r.name }
func (r *funcRule) Matches(n *dom.Node) bool { return r.matches(n) }
func (r *funcRule) Apply(n *dom.Node, ctx map[string]any) *dom.Node {
	return r.apply(n, ctx)
}

// StripComments deletes every comment node.
func StripComments() Rule {
	return &funcRule{
		name:    "strip-comments",
		matches: func(n *dom.Node) bool { return n.Kind == dom.CommentNode },
		apply:   func(n *dom.Node, _ map[string]any) *dom.Node { return nil },
	}
}

// StripElements deletes elements whose tag matches one of the given names,
// case-insensitively. The subtree goes with the element.
func StripElements(tags ...string) Rule {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return &funcRule{
		name: "strip-elements",
		matches: func(n *dom.Node) bool {
			return n.Kind == dom.ElementNode && set[n.Name]
		},
		apply: func(n *dom.Node, _ map[string]any) *dom.Node { return nil },
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces runs of whitespace in text nodes with a single
// space. A leading or trailing run becomes one space rather than vanishing,
// so spacing around inline elements survives. Text that collapses to nothing
// is deleted rather than kept empty. Applying the rule twice gives the same
// result as once.
func CollapseWhitespace() Rule {
	return &funcRule{
		name:    "collapse-whitespace",
		matches: func(n *dom.Node) bool { return n.Kind == dom.TextNode },
		apply: func(n *dom.Node, _ map[string]any) *dom.Node {
			collapsed := whitespaceRun.ReplaceAllString(n.Data, " ")
			if strings.TrimSpace(collapsed) == "" {
				return nil
			}
			if collapsed == n.Data {
				return n
			}
			out := dom.NewText(collapsed)
			out.Pos = n.Pos
			return out
		},
	}
}

// StripAttributes removes attributes from element nodes. With no arguments
// it removes all of them; otherwise only the named keys.
func StripAttributes(keys ...string) Rule {
	var set map[string]bool
	if len(keys) > 0 {
		set = make(map[string]bool, len(keys))
		for _, k := range keys {
			set[strings.ToLower(k)] = true
		}
	}
	return &funcRule{
		name: "strip-attributes",
		matches: func(n *dom.Node) bool {
			if n.Kind != dom.ElementNode || len(n.Attrs) == 0 {
				return false
			}
			if set == nil {
				return true
			}
			for k := range n.Attrs {
				if set[k] {
					return true
				}
			}
			return false
		},
		apply: func(n *dom.Node, _ map[string]any) *dom.Node {
			out := *n
			out.Attrs = nil
			if set != nil {
				out.Attrs = make(map[string]string, len(n.Attrs))
				for k, v := range n.Attrs {
					if !set[k] {
						out.Attrs[k] = v
					}
				}
				if len(out.Attrs) == 0 {
					out.Attrs = nil
				}
			}
			return &out
		},
	}
}

// DefaultRules is the standard cleanup pipeline applied before rendering:
// drop comments, drop non-content containers, collapse whitespace. A fresh
// slice is built per call; there is no shared registry.
func DefaultRules() []Rule {
	return []Rule{
		StripComments(),
		StripElements("script", "style", "nav", "footer", "header"),
		CollapseWhitespace(),
	}
}
