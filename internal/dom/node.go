// Package dom holds the typed document tree that every other stage of the
// conversion pipeline operates on. Trees are built once by a parser, cloned
// and rewritten by the transform engine, and read by the renderer and the
// section builder.
package dom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates node variants.
type Kind uint8

const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
	CommentNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalJSON encodes the kind as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from its string name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "document":
		*k = DocumentNode
	case "element":
		*k = ElementNode
	case "text":
		*k = TextNode
	case "comment":
		*k = CommentNode
	default:
		return fmt.Errorf("unknown node kind %q", s)
	}
	return nil
}

// Position records where a node came from in the source markup.
type Position struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line,omitempty"`
	EndCol    int `json:"end_col,omitempty"`
}

// Doctype is the optional document type declaration on the root.
type Doctype struct {
	Name     string `json:"name"`
	PublicID string `json:"public_id,omitempty"`
	SystemID string `json:"system_id,omitempty"`
}

// Node is a tagged union over document, element, text and comment variants.
//
// Parent is a derived relation, not ownership: it is never serialized, never
// cloned, and is recomputed with RebindParents after deserialization or any
// structural rewrite.
type Node struct {
	Kind     Kind              `json:"kind"`
	Name     string            `json:"name,omitempty"` // element tag, lower-cased
	Data     string            `json:"data,omitempty"` // text or comment content
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
	Doctype  *Doctype          `json:"doctype,omitempty"` // root only
	Pos      *Position         `json:"pos,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`

	Parent *Node `json:"-"`
}

// voidElements are tags that never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// NewDocument returns an empty document root.
func NewDocument() *Node {
	return &Node{Kind: DocumentNode}
}

// NewElement returns an element with the given tag and no children.
// The tag is lower-cased.
func NewElement(name string) *Node {
	return &Node{Kind: ElementNode, Name: strings.ToLower(name)}
}

// NewText returns a text node.
func NewText(value string) *Node {
	return &Node{Kind: TextNode, Data: value}
}

// NewComment returns a comment node.
func NewComment(value string) *Node {
	return &Node{Kind: CommentNode, Data: value}
}

// AppendChild appends c to n's children and sets its parent.
func (n *Node) AppendChild(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return n
}

// SelfClosing reports whether the element is in the void-element set.
func (n *Node) SelfClosing() bool {
	return n.Kind == ElementNode && voidElements[n.Name]
}

// Attr returns the value of an attribute, or "" if absent.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// HasAttr reports whether the attribute is present (even if empty).
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

// SetAttr sets an attribute, allocating the map on first use.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// Is reports whether n is an element with one of the given tags.
func (n *Node) Is(tags ...string) bool {
	if n.Kind != ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Name == t {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text values.
func (n *Node) TextContent() string {
	var buf strings.Builder
	var extract func(*Node)
	extract = func(n *Node) {
		if n.Kind == TextNode {
			buf.WriteString(n.Data)
		}
		for _, c := range n.Children {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// FirstChildElement returns the first child element with one of the given
// tags, or nil.
func (n *Node) FirstChildElement(tags ...string) *Node {
	for _, c := range n.Children {
		if c.Is(tags...) {
			return c
		}
	}
	return nil
}

// FindFirst returns the first node in pre-order for which pred is true,
// or nil.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindFirst(pred); found != nil {
			return found
		}
	}
	return nil
}

// Ancestor returns the nearest ancestor element with one of the given tags,
// or nil.
func (n *Node) Ancestor(tags ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(tags...) {
			return p
		}
	}
	return nil
}

// Clone deep-copies the subtree rooted at n. Parent pointers are not copied;
// the returned root has a nil parent and all descendants have correct
// parents within the copy.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind: n.Kind,
		Name: n.Name,
		Data: n.Data,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Meta != nil {
		c.Meta = make(map[string]string, len(n.Meta))
		for k, v := range n.Meta {
			c.Meta[k] = v
		}
	}
	if n.Doctype != nil {
		d := *n.Doctype
		c.Doctype = &d
	}
	if n.Pos != nil {
		p := *n.Pos
		c.Pos = &p
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			cc := child.Clone()
			cc.Parent = c
			c.Children[i] = cc
		}
	}
	return c
}

// RebindParents recomputes every parent back-reference in a single top-down
// pass. Call it after deserialization or any structural rewrite.
func RebindParents(root *Node) {
	root.Parent = nil
	var bind func(*Node)
	bind = func(n *Node) {
		for _, c := range n.Children {
			c.Parent = n
			bind(c)
		}
	}
	bind(root)
}

// Validate checks the parent/child ownership invariant over the whole tree:
// every child's parent points at the node owning it, and no node appears
// under two parents.
func Validate(root *Node) error {
	seen := make(map[*Node]bool)
	var check func(*Node) error
	check = func(n *Node) error {
		for _, c := range n.Children {
			if seen[c] {
				return fmt.Errorf("node %s appears under more than one parent", c.Kind)
			}
			seen[c] = true
			if c.Parent != n {
				return fmt.Errorf("child %s has stale parent reference", c.Kind)
			}
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	if root.Parent != nil {
		return fmt.Errorf("root has a parent")
	}
	return check(root)
}

// Marshal serializes a tree to JSON. Parent references are excluded by the
// struct tags, so the output is acyclic.
func Marshal(root *Node) ([]byte, error) {
	return json.Marshal(root)
}

// Unmarshal deserializes a tree and rebinds parent references.
func Unmarshal(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	RebindParents(&root)
	return &root, nil
}
