package section

import (
	"encoding/json"
	"testing"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/render"
)

func el(name string, children ...*dom.Node) *dom.Node {
	n := dom.NewElement(name)
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *dom.Node { return dom.NewText(s) }

func page(bodyChildren ...*dom.Node) *dom.Node {
	body := el("body", bodyChildren...)
	d := dom.NewDocument()
	d.AppendChild(el("html", body))
	return d
}

func build(t *testing.T, root *dom.Node) *Document {
	t.Helper()
	return NewBuilder(render.DefaultOptions()).BuildDocument(root)
}

func TestBuildDocument_HeadingHierarchy(t *testing.T) {
	doc := build(t, page(
		el("h1", text("First")),
		el("p", text("intro")),
		el("h2", text("A")),
		el("p", text("a body")),
		el("h2", text("B")),
		el("h1", text("Second")),
	))

	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(doc.Content))
	}
	first := doc.Content[0]
	if first.Title != "First" || first.Level != 1 {
		t.Errorf("first section: got title %q level %d", first.Title, first.Level)
	}
	if len(first.Children) != 2 {
		t.Fatalf("expected 2 children under first, got %d", len(first.Children))
	}
	if first.Children[0].Title != "A" || first.Children[1].Title != "B" {
		t.Errorf("children: got %q, %q", first.Children[0].Title, first.Children[1].Title)
	}
	if len(first.Content) != 1 || first.Content[0] != "intro" {
		t.Errorf("intro should attach to the h1 section, got %v", first.Content)
	}
	if len(first.Children[0].Content) != 1 || first.Children[0].Content[0] != "a body" {
		t.Errorf("body should attach to section A, got %v", first.Children[0].Content)
	}
	if doc.Content[1].Title != "Second" || len(doc.Content[1].Children) != 0 {
		t.Errorf("second section: got %+v", doc.Content[1])
	}
}

func TestBuildDocument_SkippedLevelsNestWithoutSynthesis(t *testing.T) {
	doc := build(t, page(
		el("h1", text("Top")),
		el("h4", text("Deep")),
		el("h2", text("Shallow")),
	))

	if len(doc.Content) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(doc.Content))
	}
	top := doc.Content[0]
	if len(top.Children) != 2 {
		t.Fatalf("expected h4 and h2 both directly under h1, got %d children", len(top.Children))
	}
	if top.Children[0].Level != 4 || top.Children[1].Level != 2 {
		t.Errorf("levels: got %d, %d", top.Children[0].Level, top.Children[1].Level)
	}
}

func TestBuildDocument_ContentBeforeFirstHeading(t *testing.T) {
	doc := build(t, page(
		el("p", text("preamble text")),
		el("h1", text("Real start")),
	))

	if len(doc.Content) != 2 {
		t.Fatalf("expected preamble section plus heading section, got %d", len(doc.Content))
	}
	pre := doc.Content[0]
	if pre.Level != 0 || pre.Title != "" {
		t.Errorf("preamble should be level-less and untitled, got level %d title %q", pre.Level, pre.Title)
	}
	if len(pre.Content) != 1 || pre.Content[0] != "preamble text" {
		t.Errorf("preamble content: %v", pre.Content)
	}
}

func TestBuildDocument_NoHeadings(t *testing.T) {
	doc := build(t, page(el("p", text("just a note"))))

	if len(doc.Content) != 1 {
		t.Fatalf("expected a single section, got %d", len(doc.Content))
	}
	if doc.Content[0].Level != 0 {
		t.Errorf("heading-less document should produce a level-less section")
	}
}

func TestBuildDocument_TitleFromTitleElement(t *testing.T) {
	body := el("body", el("h1", text("Heading")))
	head := el("head", el("title", text("Page Title")))
	d := dom.NewDocument()
	d.AppendChild(el("html", head, body))

	doc := build(t, d)
	if doc.Title != "Page Title" {
		t.Errorf("expected title element to win, got %q", doc.Title)
	}
}

func TestBuildDocument_TitleFallsBackToH1(t *testing.T) {
	doc := build(t, page(el("h1", text("Only Heading"))))
	if doc.Title != "Only Heading" {
		t.Errorf("expected h1 fallback title, got %q", doc.Title)
	}
}

func TestBuildDocument_ExplicitContainers(t *testing.T) {
	doc := build(t, page(
		el("section",
			el("h2", text("Alpha")),
			el("p", text("alpha text")),
		),
		el("section",
			el("h2", text("Beta")),
			el("section",
				el("h3", text("Beta One")),
				el("p", text("nested")),
			),
		),
	))

	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 container sections, got %d", len(doc.Content))
	}
	alpha := doc.Content[0]
	if alpha.Title != "Alpha" || alpha.Level != 2 {
		t.Errorf("alpha: title %q level %d", alpha.Title, alpha.Level)
	}
	if len(alpha.Content) != 1 || alpha.Content[0] != "alpha text" {
		t.Errorf("alpha content: %v", alpha.Content)
	}
	beta := doc.Content[1]
	if len(beta.Children) != 1 || beta.Children[0].Title != "Beta One" {
		t.Fatalf("nested container should become a child, got %+v", beta.Children)
	}
	if len(beta.Children[0].Content) != 1 {
		t.Errorf("nested content: %v", beta.Children[0].Content)
	}
}

func TestBuildDocument_IDsPreferElementID(t *testing.T) {
	h := el("h1", text("With ID"))
	h.SetAttr("id", "intro")
	doc := build(t, page(h, el("h2", text("Without"))))

	if doc.Content[0].ID != "intro" {
		t.Errorf("expected id attribute to carry over, got %q", doc.Content[0].ID)
	}
	if doc.Content[0].Children[0].ID != "sec-1" {
		t.Errorf("expected generated id, got %q", doc.Content[0].Children[0].ID)
	}
}

func TestBuildDocument_TableExtraction(t *testing.T) {
	table := el("table",
		el("caption", text("Prices")),
		el("thead", el("tr", el("th", text("Item")), el("th", text("Cost")))),
		el("tbody", el("tr", el("td", text("tea")), el("td", text("3")))),
	)
	doc := build(t, page(el("h1", text("Data")), table))

	s := doc.Content[0]
	if s.Table == nil {
		t.Fatalf("expected table payload")
	}
	if s.Table.Caption != "Prices" {
		t.Errorf("caption: %q", s.Table.Caption)
	}
	if len(s.Table.Headers) != 2 || s.Table.Headers[0] != "Item" {
		t.Errorf("headers: %v", s.Table.Headers)
	}
	if len(s.Table.Rows) != 1 || s.Table.Rows[0][1] != "3" {
		t.Errorf("rows: %v", s.Table.Rows)
	}
	if len(s.Content) != 0 {
		t.Errorf("table should not also land in content: %v", s.Content)
	}
}

func TestBuildDocument_FormExtraction(t *testing.T) {
	label := el("label", text("Your name"))
	label.SetAttr("for", "name")
	input := el("input")
	input.SetAttr("type", "text")
	input.SetAttr("name", "name")
	input.SetAttr("id", "name")
	sel := el("select",
		el("option", text("red")),
		el("option", text("blue")),
	)
	sel.SetAttr("name", "color")
	form := el("form", label, input, sel)
	form.SetAttr("action", "/submit")
	form.SetAttr("method", "post")

	doc := build(t, page(el("h1", text("Signup")), form))
	f := doc.Content[0].Form
	if f == nil {
		t.Fatalf("expected form payload")
	}
	if f.Action != "/submit" || f.Method != "POST" {
		t.Errorf("action/method: %q %q", f.Action, f.Method)
	}
	if len(f.Fields) != 2 {
		t.Fatalf("fields: %+v", f.Fields)
	}
	if f.Fields[0].Label != "Your name" {
		t.Errorf("label pairing: %+v", f.Fields[0])
	}
	if len(f.Fields[1].Options) != 2 || f.Fields[1].Options[0] != "red" {
		t.Errorf("select options: %+v", f.Fields[1])
	}
}

func TestBuildDocument_FigureExtraction(t *testing.T) {
	img := el("img")
	img.SetAttr("src", "chart.png")
	img.SetAttr("alt", "a chart")
	fig := el("figure", img, el("figcaption", text("Quarterly results")))

	doc := build(t, page(el("h1", text("Report")), fig))
	got := doc.Content[0].Figure
	if got == nil {
		t.Fatalf("expected figure payload")
	}
	if got.Source != "chart.png" || got.Alt != "a chart" || got.Caption != "Quarterly results" {
		t.Errorf("figure: %+v", got)
	}
}

func TestBuildDocument_MathFormulaWins(t *testing.T) {
	math := el("math", el("mi", text("E")), el("mo", text("=")), el("mi", text("m")))
	math.SetAttr("display", "block")
	list := el("ol", el("li", text("step one")))

	doc := build(t, page(el("h1", text("Physics")), list, math))
	s := doc.Content[0]
	if s.Formula == nil {
		t.Fatalf("expected formula payload")
	}
	if s.Formula.Kind != "math" {
		t.Errorf("math should outrank the ordered list, got kind %q", s.Formula.Kind)
	}
	if s.Formula.LaTeX == "" || !s.Formula.Display {
		t.Errorf("formula: %+v", s.Formula)
	}
	// The losing candidate stays in the running content.
	if len(s.Content) != 1 {
		t.Errorf("expected the list to remain as content, got %v", s.Content)
	}
}

func TestBuildDocument_ListFormulaFallback(t *testing.T) {
	list := el("ul", el("li", text("alpha")), el("li", text("beta")))
	doc := build(t, page(el("h1", text("Terms")), list))

	s := doc.Content[0]
	if s.Formula == nil {
		t.Fatalf("expected list to fill the formula slot")
	}
	if s.Formula.Kind != "unordered-list" {
		t.Errorf("kind: %q", s.Formula.Kind)
	}
	if s.Formula.Text == "" {
		t.Errorf("expected rendered list text")
	}
	if len(s.Content) != 0 {
		t.Errorf("winner should be removed from content: %v", s.Content)
	}
}

func TestBuildDocument_SkipsNavAndFooter(t *testing.T) {
	doc := build(t, page(
		el("nav", el("p", text("menu"))),
		el("h1", text("Main")),
		el("p", text("body")),
		el("footer", el("p", text("copyright"))),
	))

	if len(doc.Content) != 1 {
		t.Fatalf("nav/footer should not produce sections, got %d", len(doc.Content))
	}
	s := doc.Content[0]
	if len(s.Content) != 1 || s.Content[0] != "body" {
		t.Errorf("chrome leaked into content: %v", s.Content)
	}
}

func TestBuildDocument_WrappersAreTransparent(t *testing.T) {
	doc := build(t, page(
		el("div",
			el("h1", text("Wrapped")),
			el("div", el("p", text("inner text"))),
		),
	))

	if len(doc.Content) != 1 {
		t.Fatalf("expected one section through the div wrappers, got %d", len(doc.Content))
	}
	if len(doc.Content[0].Content) != 1 {
		t.Errorf("content: %v", doc.Content[0].Content)
	}
}

func TestDocument_JSONShape(t *testing.T) {
	doc := build(t, page(el("h1", text("Solo")), el("p", text("body"))))
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["title"] != "Solo" {
		t.Errorf("title: %v", decoded["title"])
	}
	if _, ok := decoded["content"]; !ok {
		t.Errorf("content key missing: %s", data)
	}
}
