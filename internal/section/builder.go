package section

import (
	"fmt"
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/render"
)

// Builder derives section hierarchies from document trees. Construction is
// best-effort: content that cannot be rendered or classified is omitted
// rather than failing the build.
type Builder struct {
	opts       render.Options
	seq        int
	candidates map[*Section][]formulaCandidate
}

// NewBuilder returns a builder whose rendered content uses the given
// renderer options.
func NewBuilder(opts render.Options) *Builder {
	return &Builder{
		opts:       opts,
		candidates: make(map[*Section][]formulaCandidate),
	}
}

// BuildDocument builds the structured document for a whole tree: title from
// <title> (or the first h1), sections from explicit containers when present,
// otherwise from the flat heading sequence.
func (b *Builder) BuildDocument(root *dom.Node) *Document {
	body := root.FindFirst(func(n *dom.Node) bool { return n.Is("body") })
	if body == nil {
		body = root
	}

	doc := &Document{Title: documentTitle(root, b.opts)}

	seq := blockSequence(body)
	if hasContainers(seq) {
		for _, n := range seq {
			if n.Is("section", "article", "aside") {
				doc.Content = append(doc.Content, b.buildContainer(n))
			}
		}
		return doc
	}

	doc.Content = b.buildFlat(seq)
	return doc
}

// buildFlat runs the stack algorithm over a linear node sequence.
//
// For a heading of level L the stack is popped while its top has level >= L;
// an empty stack makes the new section a top-level result, otherwise it
// becomes a child of the stack top. Levels need not be contiguous: an h4
// directly under an h1 nests under the h1; missing intermediate levels are
// never synthesized.
func (b *Builder) buildFlat(nodes []*dom.Node) []*Section {
	var tops []*Section
	var stack []*Section
	var preamble *Section

	for _, n := range nodes {
		if lvl := headingLevel(n); lvl > 0 {
			s := b.newSection(n, lvl)
			for len(stack) > 0 && stack[len(stack)-1].Level >= lvl {
				b.finalize(stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				tops = append(tops, s)
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, s)
			}
			stack = append(stack, s)
			continue
		}

		target := preamble
		if len(stack) > 0 {
			target = stack[len(stack)-1]
		} else if target == nil {
			// Content before the first heading (or in a heading-less
			// container) gathers into a single level-less section.
			preamble = &Section{ID: b.nextID()}
			tops = append(tops, preamble)
			target = preamble
		}
		b.associate(target, n)
	}

	for _, s := range stack {
		b.finalize(s)
	}
	if preamble != nil {
		b.finalize(preamble)
	}
	return tops
}

// buildContainer handles an explicit section/article/aside element. Its
// first heading supplies title and level; nested containers become children;
// without nested containers the flat algorithm runs scoped to this element.
func (b *Builder) buildContainer(c *dom.Node) *Section {
	s := &Section{ID: b.idFor(c)}

	title := firstHeading(c)
	if title != nil {
		if t, err := render.Inline(title, b.opts); err == nil {
			s.Title = t
		}
		s.Level = headingLevel(title)
	}

	seq := blockSequence(c)
	if hasContainers(seq) {
		for _, n := range seq {
			switch {
			case n.Is("section", "article", "aside"):
				s.Children = append(s.Children, b.buildContainer(n))
			case n == title:
				// already consumed as the container's own title
			case headingLevel(n) > 0:
				// stray headings between containers: skipped
			default:
				b.associate(s, n)
			}
		}
		b.finalize(s)
		return s
	}

	rest := make([]*dom.Node, 0, len(seq))
	for _, n := range seq {
		if n != title {
			rest = append(rest, n)
		}
	}
	subs := b.buildFlat(rest)

	// A leading level-less section is this container's own body text.
	if len(subs) > 0 && subs[0].Level == 0 && len(subs[0].Children) == 0 {
		pre := subs[0]
		s.Content = pre.Content
		s.Table, s.Form, s.Figure, s.Formula = pre.Table, pre.Form, pre.Figure, pre.Formula
		subs = subs[1:]
	}
	s.Children = append(s.Children, subs...)
	return s
}

func (b *Builder) newSection(heading *dom.Node, level int) *Section {
	s := &Section{ID: b.idFor(heading), Level: level}
	if t, err := render.Inline(heading, b.opts); err == nil {
		s.Title = t
	}
	return s
}

func (b *Builder) idFor(n *dom.Node) string {
	if id := n.Attr("id"); id != "" {
		return id
	}
	return b.nextID()
}

func (b *Builder) nextID() string {
	b.seq++
	return fmt.Sprintf("sec-%d", b.seq)
}

// wrapperTags are transparent grouping elements the flattener descends into.
var wrapperTags = map[string]bool{
	"div": true, "main": true, "center": true, "header": true,
	"hgroup": true,
}

// skipTags never contribute sections or content.
var skipTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"noscript": true, "nav": true, "footer": true,
}

// blockSequence flattens a container into the linear node sequence the stack
// algorithm consumes. Wrapper elements are descended into; everything else
// is atomic.
func blockSequence(container *dom.Node) []*dom.Node {
	var out []*dom.Node
	var flatten func(n *dom.Node)
	flatten = func(n *dom.Node) {
		for _, c := range n.Children {
			switch {
			case c.Kind == dom.CommentNode:
			case c.Kind == dom.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					out = append(out, c)
				}
			case c.Kind != dom.ElementNode:
			case skipTags[c.Name]:
			case wrapperTags[c.Name]:
				flatten(c)
			default:
				out = append(out, c)
			}
		}
	}
	flatten(container)
	return out
}

func hasContainers(seq []*dom.Node) bool {
	for _, n := range seq {
		if n.Is("section", "article", "aside") {
			return true
		}
	}
	return false
}

// firstHeading finds the container's own heading, not one belonging to a
// nested container.
func firstHeading(c *dom.Node) *dom.Node {
	for _, n := range blockSequence(c) {
		if n.Is("section", "article", "aside") {
			continue
		}
		if headingLevel(n) > 0 {
			return n
		}
	}
	return nil
}

func headingLevel(n *dom.Node) int {
	if n == nil || n.Kind != dom.ElementNode {
		return 0
	}
	switch n.Name {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func documentTitle(root *dom.Node, opts render.Options) string {
	if t := root.FindFirst(func(n *dom.Node) bool { return n.Is("title") }); t != nil {
		if s := strings.TrimSpace(t.TextContent()); s != "" {
			return s
		}
	}
	if h := root.FindFirst(func(n *dom.Node) bool { return n.Is("h1") }); h != nil {
		if s, err := render.Inline(h, opts); err == nil {
			return s
		}
	}
	return ""
}
