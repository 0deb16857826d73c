package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/htmldown/internal/dom"
)

// HTMLParser handles HTML files. The full markup structure is preserved;
// later stages decide what to strip or restructure.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*dom.Node, error) {
	src, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := dom.NewDocument()
	convertHTML(src, doc)
	dom.RebindParents(doc)
	return doc, nil
}

// convertHTML maps the x/net/html node graph onto our tree. Doctype and
// unparsable node types are recorded or dropped; everything else carries
// over with its attributes.
func convertHTML(n *html.Node, parent *dom.Node) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			convertHTML(c, parent)
		}
	case html.DoctypeNode:
		root := parent
		for root.Parent != nil {
			root = root.Parent
		}
		if root.Kind == dom.DocumentNode {
			root.Doctype = &dom.Doctype{Name: n.Data}
		}
	case html.ElementNode:
		el := dom.NewElement(n.Data)
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			el.SetAttr(key, a.Val)
		}
		parent.AppendChild(el)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			convertHTML(c, el)
		}
	case html.TextNode:
		if n.Data == "" {
			return
		}
		parent.AppendChild(dom.NewText(n.Data))
	case html.CommentNode:
		parent.AppendChild(dom.NewComment(n.Data))
	}
}

// ParseFragment parses an HTML snippet without the implied html/head/body
// wrapping a full-document parse adds. The fragment's nodes become direct
// children of the returned document.
func ParseFragment(r io.Reader) (*dom.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(string(src)), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	doc := dom.NewDocument()
	for _, n := range nodes {
		convertHTML(n, doc)
	}
	dom.RebindParents(doc)
	return doc, nil
}
