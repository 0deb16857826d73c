package render

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/htmldown/internal/dom"
)

// table emits a pipe table with two passes: measure every rendered cell,
// then pad to per-column widths. The separator row enforces a minimum of
// three dashes per column.
func (r *renderer) table(n *dom.Node, buf *strings.Builder) error {
	if caption := n.FirstChildElement("caption"); caption != nil {
		text, err := r.inlineString(caption, false)
		if err != nil {
			return err
		}
		if text = strings.TrimSpace(text); text != "" {
			buf.WriteString(r.opts.EmphasisDelimiter + text + r.opts.EmphasisDelimiter + "\n\n")
		}
	}

	rows := tableRows(n)
	if len(rows) == 0 {
		return nil
	}

	// Pass 1: render every cell and record alignment and widths.
	cells := make([][]string, len(rows))
	cols := 0
	var aligns []string
	for i, tr := range rows {
		for _, td := range tr.Children {
			if !td.Is("td", "th") {
				continue
			}
			text, err := r.inlineString(td, true)
			if err != nil {
				return err
			}
			cells[i] = append(cells[i], strings.TrimSpace(text))
			if i == 0 {
				aligns = append(aligns, cellAlign(td))
			}
		}
		if len(cells[i]) > cols {
			cols = len(cells[i])
		}
	}
	if cols == 0 {
		return nil
	}
	for len(aligns) < cols {
		aligns = append(aligns, "")
	}

	widths := make([]int, cols)
	for _, row := range cells {
		for c, cell := range row {
			if w := utf8.RuneCountInString(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}

	// Pass 2: emit header, separator, data rows.
	writeRow := func(row []string) {
		buf.WriteString("|")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			buf.WriteString(" " + pad(cell, widths[c]) + " |")
		}
		buf.WriteString("\n")
	}

	writeRow(cells[0])
	buf.WriteString("|")
	for c := 0; c < cols; c++ {
		buf.WriteString(" " + separator(aligns[c], widths[c]) + " |")
	}
	buf.WriteString("\n")
	for _, row := range cells[1:] {
		writeRow(row)
	}
	buf.WriteString("\n")
	return nil
}

// tableRows collects tr elements in document order: thead first, then
// direct/tbody rows, then tfoot.
func tableRows(n *dom.Node) []*dom.Node {
	var head, body, foot []*dom.Node
	for _, c := range n.Children {
		switch {
		case c.Is("thead"):
			head = append(head, trChildren(c)...)
		case c.Is("tbody"):
			body = append(body, trChildren(c)...)
		case c.Is("tfoot"):
			foot = append(foot, trChildren(c)...)
		case c.Is("tr"):
			body = append(body, c)
		}
	}
	rows := append(head, body...)
	return append(rows, foot...)
}

func trChildren(n *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, c := range n.Children {
		if c.Is("tr") {
			out = append(out, c)
		}
	}
	return out
}

// cellAlign reads column alignment from the cell's align attribute or an
// inline text-align style.
func cellAlign(td *dom.Node) string {
	if a := strings.ToLower(td.Attr("align")); a == "left" || a == "right" || a == "center" {
		return a
	}
	style := strings.ToLower(td.Attr("style"))
	for _, a := range []string{"left", "right", "center"} {
		if strings.Contains(style, "text-align:"+a) || strings.Contains(style, "text-align: "+a) {
			return a
		}
	}
	return ""
}

func pad(s string, width int) string {
	if gap := width - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// separator builds the alignment row cell. Width is at least 3 so the row
// stays valid Markdown even for narrow columns.
func separator(align string, width int) string {
	if width < 3 {
		width = 3
	}
	switch align {
	case "left":
		return ":" + strings.Repeat("-", width-1)
	case "right":
		return strings.Repeat("-", width-1) + ":"
	case "center":
		return ":" + strings.Repeat("-", width-2) + ":"
	}
	return strings.Repeat("-", width)
}
