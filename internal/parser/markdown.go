package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/htmldown/internal/dom"
)

// MarkdownParser handles Markdown files using goldmark. The AST maps onto
// the same element vocabulary the HTML parser produces.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*dom.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := dom.NewDocument()
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if el := convertMarkdownBlock(n, src); el != nil {
			doc.AppendChild(el)
		}
	}
	dom.RebindParents(doc)
	return doc, nil
}

func convertMarkdownBlock(n ast.Node, src []byte) *dom.Node {
	switch node := n.(type) {
	case *ast.Heading:
		h := dom.NewElement(fmt.Sprintf("h%d", node.Level))
		convertMarkdownInlines(node, src, h)
		return h
	case *ast.Paragraph, *ast.TextBlock:
		p := dom.NewElement("p")
		convertMarkdownInlines(n, src, p)
		return p
	case *ast.List:
		name := "ul"
		if node.IsOrdered() {
			name = "ol"
		}
		list := dom.NewElement(name)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			li := dom.NewElement("li")
			for gc := c.FirstChild(); gc != nil; gc = gc.NextSibling() {
				if el := convertMarkdownBlock(gc, src); el != nil {
					li.AppendChild(el)
				}
			}
			list.AppendChild(li)
		}
		return list
	case *ast.FencedCodeBlock:
		return codeElement(node, string(node.Language(src)), src)
	case *ast.CodeBlock:
		return codeElement(node, "", src)
	case *ast.Blockquote:
		bq := dom.NewElement("blockquote")
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if el := convertMarkdownBlock(c, src); el != nil {
				bq.AppendChild(el)
			}
		}
		return bq
	case *ast.ThematicBreak:
		return dom.NewElement("hr")
	case *ast.HTMLBlock:
		// Raw HTML blocks are dropped; inline markup already covers the
		// formatting this pipeline understands.
		return nil
	}
	return nil
}

func codeElement(n ast.Node, lang string, src []byte) *dom.Node {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	code := dom.NewElement("code")
	if lang != "" {
		code.SetAttr("class", "language-"+lang)
	}
	code.AppendChild(dom.NewText(buf.String()))
	pre := dom.NewElement("pre")
	pre.AppendChild(code)
	return pre
}

func convertMarkdownInlines(n ast.Node, src []byte, parent *dom.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			parent.AppendChild(dom.NewText(string(node.Value(src))))
			if node.HardLineBreak() {
				parent.AppendChild(dom.NewElement("br"))
			} else if node.SoftLineBreak() {
				parent.AppendChild(dom.NewText(" "))
			}
		case *ast.String:
			parent.AppendChild(dom.NewText(string(node.Value)))
		case *ast.Emphasis:
			name := "em"
			if node.Level >= 2 {
				name = "strong"
			}
			el := dom.NewElement(name)
			convertMarkdownInlines(node, src, el)
			parent.AppendChild(el)
		case *ast.CodeSpan:
			el := dom.NewElement("code")
			el.AppendChild(dom.NewText(string(node.Text(src))))
			parent.AppendChild(el)
		case *ast.Link:
			a := dom.NewElement("a")
			a.SetAttr("href", string(node.Destination))
			convertMarkdownInlines(node, src, a)
			parent.AppendChild(a)
		case *ast.AutoLink:
			url := string(node.URL(src))
			a := dom.NewElement("a")
			a.SetAttr("href", url)
			a.AppendChild(dom.NewText(string(node.Label(src))))
			parent.AppendChild(a)
		case *ast.Image:
			img := dom.NewElement("img")
			img.SetAttr("src", string(node.Destination))
			img.SetAttr("alt", string(node.Text(src)))
			parent.AppendChild(img)
		case *ast.RawHTML:
			// dropped, same policy as HTML blocks
		default:
			convertMarkdownInlines(c, src, parent)
		}
	}
}
