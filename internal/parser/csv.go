package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/htmldown/internal/dom"
)

// CSVParser handles CSV files. The whole file becomes one table element,
// first row as the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*dom.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := dom.NewDocument()
	if len(records) == 0 {
		return doc, nil
	}

	table := dom.NewElement("table")

	thead := dom.NewElement("thead")
	thead.AppendChild(rowElement(records[0], "th"))
	table.AppendChild(thead)

	tbody := dom.NewElement("tbody")
	for _, rec := range records[1:] {
		tbody.AppendChild(rowElement(rec, "td"))
	}
	table.AppendChild(tbody)

	doc.AppendChild(table)
	dom.RebindParents(doc)
	return doc, nil
}

func rowElement(cells []string, cellTag string) *dom.Node {
	tr := dom.NewElement("tr")
	for _, cell := range cells {
		c := dom.NewElement(cellTag)
		c.AppendChild(dom.NewText(cell))
		tr.AppendChild(c)
	}
	return tr
}
