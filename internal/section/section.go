// Package section reconstructs a nested section hierarchy from a document
// tree. Headings drive the nesting; tables, forms, figures and formulas are
// lifted out of the running text into typed payloads. The produced sections
// hold rendered Markdown strings and keep no references back into the tree.
package section

// Document is the structured output of a whole conversion.
type Document struct {
	Title   string     `json:"title"`
	Content []*Section `json:"content"`
}

// Section is one structural unit, keyed by the heading level that opened it.
// Level 0 means the section had no originating heading.
type Section struct {
	ID       string     `json:"id"`
	Title    string     `json:"title,omitempty"`
	Level    int        `json:"level,omitempty"`
	Content  []string   `json:"content,omitempty"`
	Children []*Section `json:"children,omitempty"`

	Table   *Table   `json:"table,omitempty"`
	Form    *Form    `json:"form,omitempty"`
	Figure  *Figure  `json:"figure,omitempty"`
	Formula *Formula `json:"formula,omitempty"`
}

// Table is an extracted data table.
type Table struct {
	Caption string     `json:"caption,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Form is an extracted input form.
type Form struct {
	Action string      `json:"action,omitempty"`
	Method string      `json:"method,omitempty"`
	Fields []FormField `json:"fields,omitempty"`
}

// FormField is one control inside a form.
type FormField struct {
	Name    string   `json:"name,omitempty"`
	Label   string   `json:"label,omitempty"`
	Type    string   `json:"type,omitempty"`
	Value   string   `json:"value,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Figure is an extracted figure or standalone image.
type Figure struct {
	Caption string `json:"caption,omitempty"`
	Source  string `json:"source,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// Formula is an extracted formula-like block. Kind names the source element
// class; LaTeX is set for math sources, Text for the rest.
type Formula struct {
	Kind    string `json:"kind"`
	LaTeX   string `json:"latex,omitempty"`
	Text    string `json:"text,omitempty"`
	Display bool   `json:"display,omitempty"`
}
