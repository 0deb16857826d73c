package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/htmldown/internal/dom"
)

// TextParser handles plain text files. Blank-line separated runs become
// paragraph elements.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*dom.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := dom.NewDocument()
	for _, para := range paragraphs {
		p := dom.NewElement("p")
		p.AppendChild(dom.NewText(para))
		doc.AppendChild(p)
	}
	dom.RebindParents(doc)
	return doc, nil
}
