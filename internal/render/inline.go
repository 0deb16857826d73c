package render

import (
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/mathml"
)

// inlineString renders the inline content of n's children.
func (r *renderer) inlineString(n *dom.Node, inTable bool) (string, error) {
	var buf strings.Builder
	for _, c := range n.Children {
		if err := r.inline(c, &buf, inTable); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (r *renderer) inline(n *dom.Node, buf *strings.Builder, inTable bool) error {
	switch n.Kind {
	case dom.TextNode:
		buf.WriteString(r.text(n.Data, inTable))
		return nil
	case dom.CommentNode:
		return nil
	case dom.ElementNode:
		// handled below
	default:
		return &UnknownKindError{Kind: n.Kind}
	}

	switch n.Name {
	case "em", "i":
		return r.wrap(n, buf, r.opts.EmphasisDelimiter, inTable)
	case "strong", "b":
		return r.wrap(n, buf, r.opts.StrongDelimiter, inTable)
	case "del", "s", "strike":
		return r.wrap(n, buf, "~~", inTable)
	case "code", "kbd", "samp", "tt":
		buf.WriteString("`" + n.TextContent() + "`")
		return nil
	case "a":
		inner, err := r.inlineString(n, inTable)
		if err != nil {
			return err
		}
		href := n.Attr("href")
		if href == "" {
			buf.WriteString(inner)
			return nil
		}
		buf.WriteString("[" + inner + "](" + href + ")")
		return nil
	case "img":
		buf.WriteString("![" + n.Attr("alt") + "](" + n.Attr("src") + ")")
		return nil
	case "br":
		if inTable {
			buf.WriteString(" ")
		} else {
			buf.WriteString("  \n")
		}
		return nil
	case "math":
		buf.WriteString(r.opts.InlineMath + mathml.Convert(n) + r.opts.InlineMath)
		return nil
	case "input", "script", "style", "template":
		return nil
	case "sub":
		return r.wrap(n, buf, "~", inTable)
	case "sup":
		return r.wrap(n, buf, "^", inTable)
	}

	// Unknown inline elements are transparent.
	inner, err := r.inlineString(n, inTable)
	if err != nil {
		return err
	}
	buf.WriteString(inner)
	return nil
}

func (r *renderer) wrap(n *dom.Node, buf *strings.Builder, delim string, inTable bool) error {
	inner, err := r.inlineString(n, inTable)
	if err != nil {
		return err
	}
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	buf.WriteString(delim + inner + delim)
	return nil
}

// markdownEscaper escapes characters that would otherwise be read as syntax.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
)

// text escapes raw text and applies the soft-break policy.
func (r *renderer) text(s string, inTable bool) string {
	s = markdownEscaper.Replace(s)
	if inTable {
		s = strings.ReplaceAll(s, "\n", " ")
		if r.opts.EscapePipes {
			s = strings.ReplaceAll(s, "|", `\|`)
		}
		return s
	}
	if r.opts.SoftBreak == SoftBreakSpace {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	return s
}
