package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
)

var blankRun = regexp.MustCompile(`\n{2,}`)

func (r *renderer) list(n *dom.Node, buf *strings.Builder, ordered bool) error {
	idx := 0
	indent := strings.Repeat(" ", r.opts.IndentSize)

	for _, li := range n.Children {
		if !li.Is("li") {
			continue
		}
		idx++

		marker := r.opts.BulletMarker + " "
		if ordered {
			marker = fmt.Sprintf("%d%s ", idx, orderedSuffix(r.opts.OrderedMarker))
		}
		if task, checked := taskState(li); task {
			if checked {
				marker += "[x] "
			} else {
				marker += "[ ] "
			}
		}

		body, err := r.listItem(li)
		if err != nil {
			return err
		}
		if body == "" {
			buf.WriteString(strings.TrimRight(marker, " ") + "\n")
			continue
		}

		// The first block continues the marker line; every later line is
		// indented one unit past the marker.
		for i, line := range strings.Split(body, "\n") {
			if i == 0 {
				buf.WriteString(marker + line + "\n")
			} else if line == "" {
				buf.WriteString("\n")
			} else {
				buf.WriteString(indent + line + "\n")
			}
		}
	}
	buf.WriteString("\n")
	return nil
}

// listItem renders the content of a single li. Items with block children are
// rendered as stacked blocks (kept tight); inline-only items become one line.
func (r *renderer) listItem(li *dom.Node) (string, error) {
	if li.FirstChildElement(blockTagList...) == nil {
		line, err := r.inlineString(li, false)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var inner strings.Builder
	if err := r.blocks(li, &inner); err != nil {
		return "", err
	}
	body := strings.TrimRight(inner.String(), "\n")
	return blankRun.ReplaceAllString(body, "\n"), nil
}

// taskState reports whether the item is a task-list item and whether it is
// checked, based on a leading checkbox input.
func taskState(li *dom.Node) (task, checked bool) {
	input := li.FirstChildElement("input")
	if input == nil || input.Attr("type") != "checkbox" {
		return false, false
	}
	return true, input.HasAttr("checked")
}

// orderedSuffix extracts the punctuation of the ordered marker ("." or ")").
func orderedSuffix(marker string) string {
	trimmed := strings.TrimLeft(marker, "0123456789")
	if trimmed == "" {
		return "."
	}
	return trimmed
}
