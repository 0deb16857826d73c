// Package render walks a document tree and emits CommonMark Markdown.
// Formatting state (list nesting, table context) is threaded through call
// parameters; a renderer value holds only its options, so concurrent renders
// over different trees need no coordination.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/mathml"
)

// UnknownKindError is returned when a node kind the renderer does not handle
// reaches the block dispatcher. Rendering aborts; silently skipping such a
// node would corrupt the output.
type UnknownKindError struct {
	Kind dom.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("render: unknown node kind %s", e.Kind)
}

// Render converts a tree to Markdown text. Output ends with exactly one
// trailing newline. A failure aborts the whole render; no partial output is
// returned.
func Render(root *dom.Node, opts Options) (string, error) {
	r := &renderer{opts: opts.normalize()}
	var buf strings.Builder
	if err := r.blocks(root, &buf); err != nil {
		return "", err
	}
	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}

// Fragment renders a single node (block or inline) to Markdown, for callers
// that embed formatted snippets rather than whole documents.
func Fragment(n *dom.Node, opts Options) (string, error) {
	r := &renderer{opts: opts.normalize()}
	var buf strings.Builder
	if err := r.block(n, &buf); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Inline renders only the inline content of a node, without any block
// syntax. Used for heading titles and table cells embedded in structured
// output.
func Inline(n *dom.Node, opts Options) (string, error) {
	r := &renderer{opts: opts.normalize()}
	s, err := r.inlineString(n, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

type renderer struct {
	opts Options
}

// blocks renders the children of a container node.
func (r *renderer) blocks(n *dom.Node, buf *strings.Builder) error {
	for _, c := range n.Children {
		if err := r.block(c, buf); err != nil {
			return err
		}
	}
	return nil
}

// blockTags are elements rendered as their own block rather than inline.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "aside": true,
	"main": true, "ul": true, "ol": true, "table": true, "pre": true,
	"blockquote": true, "hr": true, "figure": true, "dl": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"math": true, "address": true, "fieldset": true, "form": true,
}

func (r *renderer) block(n *dom.Node, buf *strings.Builder) error {
	switch n.Kind {
	case dom.DocumentNode:
		return r.blocks(n, buf)
	case dom.CommentNode:
		return nil
	case dom.TextNode:
		text := r.text(n.Data, false)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		buf.WriteString(strings.TrimSpace(text))
		buf.WriteString("\n\n")
		return nil
	case dom.ElementNode:
		return r.element(n, buf)
	}
	return &UnknownKindError{Kind: n.Kind}
}

func (r *renderer) element(n *dom.Node, buf *strings.Builder) error {
	switch n.Name {
	case "html", "body", "div", "section", "article", "aside", "main",
		"address", "fieldset", "form", "figcaption", "summary", "details":
		return r.blocks(n, buf)
	case "head", "script", "style", "template", "noscript":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return r.heading(n, buf)
	case "p":
		return r.paragraph(n, buf)
	case "ul":
		return r.list(n, buf, false)
	case "ol":
		return r.list(n, buf, true)
	case "table":
		return r.table(n, buf)
	case "pre":
		return r.codeBlock(n, buf)
	case "blockquote":
		return r.blockquote(n, buf)
	case "hr":
		buf.WriteString("---\n\n")
		return nil
	case "math":
		latex := mathml.Convert(n)
		if mathml.IsDisplay(n) {
			buf.WriteString(r.opts.BlockMath + "\n" + latex + "\n" + r.opts.BlockMath + "\n\n")
		} else {
			buf.WriteString(r.opts.InlineMath + latex + r.opts.InlineMath + "\n\n")
		}
		return nil
	case "figure":
		return r.figure(n, buf)
	case "dl":
		return r.definitionList(n, buf)
	case "br":
		buf.WriteString("\n")
		return nil
	}

	// Anything else: render block children as blocks, otherwise treat the
	// element as an inline-only paragraph.
	if n.FirstChildElement(blockTagList...) != nil {
		return r.blocks(n, buf)
	}
	return r.paragraph(n, buf)
}

var blockTagList = func() []string {
	out := make([]string, 0, len(blockTags))
	for k := range blockTags {
		out = append(out, k)
	}
	return out
}()

func (r *renderer) heading(n *dom.Node, buf *strings.Builder) error {
	level := int(n.Name[1] - '0')
	text, err := r.inlineString(n, false)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)

	style := r.opts.HeadingStyle
	if style == HeadingSetext && level > 2 {
		style = HeadingATX
	}

	switch style {
	case HeadingSetext:
		underline := "="
		if level == 2 {
			underline = "-"
		}
		width := len(text)
		if width < 3 {
			width = 3
		}
		buf.WriteString(text + "\n" + strings.Repeat(underline, width) + "\n\n")
	case HeadingATXClosed:
		hashes := strings.Repeat("#", level)
		buf.WriteString(hashes + " " + text + " " + hashes + "\n\n")
	default:
		buf.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
	}
	return nil
}

func (r *renderer) paragraph(n *dom.Node, buf *strings.Builder) error {
	text, err := r.inlineString(n, false)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	buf.WriteString(text)
	// Inside a list item a paragraph ends the line without opening a blank
	// one; between top-level blocks the usual blank line separates.
	if n.Parent != nil && n.Parent.Is("li") {
		buf.WriteString("\n")
	} else {
		buf.WriteString("\n\n")
	}
	return nil
}

func (r *renderer) blockquote(n *dom.Node, buf *strings.Builder) error {
	var inner strings.Builder
	if err := r.blocks(n, &inner); err != nil {
		return err
	}
	body := strings.TrimRight(inner.String(), "\n")
	if body == "" {
		return nil
	}
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			buf.WriteString(">\n")
		} else {
			buf.WriteString("> " + line + "\n")
		}
	}
	buf.WriteString("\n")
	return nil
}

func (r *renderer) codeBlock(n *dom.Node, buf *strings.Builder) error {
	lang := ""
	if code := n.FirstChildElement("code"); code != nil {
		for _, cls := range strings.Fields(code.Attr("class")) {
			if rest, ok := strings.CutPrefix(cls, "language-"); ok {
				lang = rest
				break
			}
		}
	}
	content := strings.TrimRight(n.TextContent(), "\n")
	marker := r.opts.FencedCodeMarker
	buf.WriteString(marker + lang + "\n" + content + "\n" + marker + "\n\n")
	return nil
}

func (r *renderer) figure(n *dom.Node, buf *strings.Builder) error {
	for _, c := range n.Children {
		if c.Is("figcaption") {
			caption, err := r.inlineString(c, false)
			if err != nil {
				return err
			}
			caption = strings.TrimSpace(caption)
			if caption != "" {
				buf.WriteString(r.opts.EmphasisDelimiter + caption + r.opts.EmphasisDelimiter + "\n\n")
			}
			continue
		}
		if err := r.block(c, buf); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) definitionList(n *dom.Node, buf *strings.Builder) error {
	for _, c := range n.Children {
		switch {
		case c.Is("dt"):
			term, err := r.inlineString(c, false)
			if err != nil {
				return err
			}
			term = strings.TrimSpace(term)
			if term != "" {
				buf.WriteString(r.opts.StrongDelimiter + term + r.opts.StrongDelimiter + "\n")
			}
		case c.Is("dd"):
			def, err := r.inlineString(c, false)
			if err != nil {
				return err
			}
			def = strings.TrimSpace(def)
			if def != "" {
				buf.WriteString(": " + def + "\n\n")
			}
		}
	}
	return nil
}
