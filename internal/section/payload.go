package section

import (
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/mathml"
	"github.com/dgallion1/htmldown/internal/render"
)

// formulaPriority is the fixed precedence among formula source kinds. When a
// section gathers several candidates only the best-ranked (earliest on ties)
// fills the single formula slot; the rest stay in the running content.
var formulaPriority = map[string]int{
	"math": 0,
	"dl":   1,
	"pre":  2,
	"ol":   3,
	"ul":   4,
}

var formulaKinds = map[string]string{
	"math": "math",
	"dl":   "definition-list",
	"pre":  "code-block",
	"ol":   "ordered-list",
	"ul":   "unordered-list",
}

type formulaCandidate struct {
	node       *dom.Node
	contentIdx int
	priority   int
}

// associate routes one content node into a section: structural elements fill
// typed payload slots, formula candidates are remembered for finalize, and
// everything else is rendered into the content list. Nodes that fail to
// render or classify are dropped, never fatal.
func (b *Builder) associate(s *Section, n *dom.Node) {
	switch {
	case n.Is("table"):
		if s.Table == nil {
			s.Table = extractTable(n, b.opts)
		}
		return
	case n.Is("form"):
		if s.Form == nil {
			s.Form = extractForm(n)
		}
		return
	case n.Is("figure"):
		if s.Figure == nil {
			s.Figure = extractFigure(n)
		}
		return
	case n.Is("img"):
		if s.Figure == nil {
			s.Figure = &Figure{Source: n.Attr("src"), Alt: n.Attr("alt")}
		}
		return
	}

	text, err := render.Fragment(n, b.opts)
	if err != nil || strings.TrimSpace(text) == "" {
		return
	}
	s.Content = append(s.Content, text)

	if prio, ok := formulaPriority[n.Name]; ok {
		b.candidates[s] = append(b.candidates[s], formulaCandidate{
			node:       n,
			contentIdx: len(s.Content) - 1,
			priority:   prio,
		})
	}
}

// finalize resolves the section's formula slot from the gathered candidates
// and releases builder-side state for it.
func (b *Builder) finalize(s *Section) {
	cands := b.candidates[s]
	delete(b.candidates, s)
	if len(cands) == 0 || s.Formula != nil {
		return
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.priority < best.priority {
			best = c
		}
	}

	s.Formula = buildFormula(best.node, s.Content[best.contentIdx])
	s.Content = append(s.Content[:best.contentIdx], s.Content[best.contentIdx+1:]...)
}

func buildFormula(n *dom.Node, rendered string) *Formula {
	if n.Is("math") {
		return &Formula{
			Kind:    "math",
			LaTeX:   mathml.Convert(n),
			Display: mathml.IsDisplay(n),
		}
	}
	return &Formula{
		Kind: formulaKinds[n.Name],
		Text: rendered,
	}
}

// extractTable flattens a table element into headers and string rows. Cell
// content keeps its inline formatting.
func extractTable(n *dom.Node, opts render.Options) *Table {
	t := &Table{}
	if caption := n.FirstChildElement("caption"); caption != nil {
		t.Caption = strings.TrimSpace(caption.TextContent())
	}

	rows := collectRows(n)
	for i, tr := range rows {
		var cells []string
		for _, td := range tr.Children {
			if !td.Is("td", "th") {
				continue
			}
			text, err := render.Inline(td, opts)
			if err != nil {
				text = strings.TrimSpace(td.TextContent())
			}
			cells = append(cells, text)
		}
		if i == 0 {
			t.Headers = cells
		} else {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

func collectRows(n *dom.Node) []*dom.Node {
	var head, body []*dom.Node
	for _, c := range n.Children {
		switch {
		case c.Is("thead"):
			head = append(head, rowsOf(c)...)
		case c.Is("tbody"), c.Is("tfoot"):
			body = append(body, rowsOf(c)...)
		case c.Is("tr"):
			body = append(body, c)
		}
	}
	return append(head, body...)
}

func rowsOf(n *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, c := range n.Children {
		if c.Is("tr") {
			out = append(out, c)
		}
	}
	return out
}

// extractForm collects the form's controls. Labels attach to fields through
// the for/id pairing; unlabeled fields keep just their name.
func extractForm(n *dom.Node) *Form {
	f := &Form{
		Action: n.Attr("action"),
		Method: strings.ToUpper(n.Attr("method")),
	}

	labels := make(map[string]string)
	dom.Walk(n, func(c *dom.Node, _ []*dom.Node, _ map[string]any) dom.Action {
		if c.Is("label") && c.Attr("for") != "" {
			labels[c.Attr("for")] = strings.TrimSpace(c.TextContent())
		}
		return dom.Continue
	})

	dom.Walk(n, func(c *dom.Node, _ []*dom.Node, _ map[string]any) dom.Action {
		switch {
		case c.Is("input"):
			if c.Attr("type") == "hidden" {
				return dom.Continue
			}
			f.Fields = append(f.Fields, FormField{
				Name:  c.Attr("name"),
				Label: labels[c.Attr("id")],
				Type:  c.Attr("type"),
				Value: c.Attr("value"),
			})
		case c.Is("textarea"):
			f.Fields = append(f.Fields, FormField{
				Name:  c.Attr("name"),
				Label: labels[c.Attr("id")],
				Type:  "textarea",
				Value: strings.TrimSpace(c.TextContent()),
			})
		case c.Is("select"):
			field := FormField{
				Name:  c.Attr("name"),
				Label: labels[c.Attr("id")],
				Type:  "select",
			}
			for _, opt := range c.Children {
				if opt.Is("option") {
					field.Options = append(field.Options, strings.TrimSpace(opt.TextContent()))
				}
			}
			f.Fields = append(f.Fields, field)
			return dom.SkipChildren
		}
		return dom.Continue
	})
	return f
}

func extractFigure(n *dom.Node) *Figure {
	fig := &Figure{}
	if img := n.FindFirst(func(c *dom.Node) bool { return c.Is("img") }); img != nil {
		fig.Source = img.Attr("src")
		fig.Alt = img.Attr("alt")
	}
	if caption := n.FindFirst(func(c *dom.Node) bool { return c.Is("figcaption") }); caption != nil {
		fig.Caption = strings.TrimSpace(caption.TextContent())
	}
	return fig
}
