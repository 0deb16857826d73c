// Package mathml transcodes MathML subtrees into LaTeX. Convert never fails:
// when the structured walk cannot make sense of the input it degrades to
// plain-text extraction instead of returning an error.
package mathml

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/htmldown/internal/dom"
)

// Convert renders a math subtree (typically a <math> element) as LaTeX.
// Malformed input produces degraded plain text, never an error or a panic.
func Convert(n *dom.Node) (out string) {
	defer func() {
		if recover() != nil {
			out = fallback(n)
		}
	}()
	s, err := convert(n)
	if err != nil {
		return fallback(n)
	}
	return strings.TrimSpace(s)
}

// IsDisplay reports whether a math element requests block display.
func IsDisplay(n *dom.Node) bool {
	return n.Attr("display") == "block"
}

func convert(n *dom.Node) (string, error) {
	if n.Kind == dom.TextNode {
		return strings.TrimSpace(n.Data), nil
	}
	if n.Kind != dom.ElementNode {
		return "", nil
	}

	switch n.Name {
	case "math", "mrow", "mstyle", "mpadded", "merror":
		return convertChildren(n, " ")
	case "semantics":
		// Only the first (content) child is rendered; annotations are
		// presentation alternatives.
		for _, c := range n.Children {
			if c.Is("annotation", "annotation-xml") {
				continue
			}
			return convert(c)
		}
		return "", nil
	case "annotation", "annotation-xml":
		return "", nil
	case "mi":
		return identifier(text(n)), nil
	case "mn":
		return text(n), nil
	case "mo":
		return operator(text(n)), nil
	case "mtext", "ms":
		t := text(n)
		if t == "" {
			return "", nil
		}
		return `\text{` + t + `}`, nil
	case "mspace":
		return `\ `, nil
	case "mphantom":
		inner, err := convertChildren(n, " ")
		if err != nil {
			return "", err
		}
		return `\phantom{` + inner + `}`, nil
	case "mfrac":
		num, den, err := pair(n)
		if err != nil {
			return "", err
		}
		return `\frac{` + num + `}{` + den + `}`, nil
	case "msup":
		base, sup, err := pair(n)
		if err != nil {
			return "", err
		}
		return group(base) + "^" + group(sup), nil
	case "msub":
		base, sub, err := pair(n)
		if err != nil {
			return "", err
		}
		return group(base) + "_" + group(sub), nil
	case "msubsup":
		base, sub, sup, err := triple(n)
		if err != nil {
			return "", err
		}
		return group(base) + "_" + group(sub) + "^" + group(sup), nil
	case "msqrt":
		inner, err := convertChildren(n, " ")
		if err != nil {
			return "", err
		}
		return `\sqrt{` + inner + `}`, nil
	case "mroot":
		base, index, err := pair(n)
		if err != nil {
			return "", err
		}
		return `\sqrt[` + index + `]{` + base + `}`, nil
	case "mfenced":
		return fenced(n)
	case "mtable":
		return table(n)
	case "mover":
		return script(n, true)
	case "munder":
		return script(n, false)
	case "munderover":
		return underOver(n)
	case "mmultiscripts":
		return multiscripts(n)
	case "none", "mprescripts":
		return "", nil
	}

	// Unknown presentation elements are transparent.
	return convertChildren(n, " ")
}

func convertChildren(n *dom.Node, sep string) (string, error) {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		s, err := convert(c)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep), nil
}

// pair converts the two operands of a binary construct (mfrac, msup, …).
func pair(n *dom.Node) (string, string, error) {
	ops := operands(n)
	if len(ops) != 2 {
		return "", "", fmt.Errorf("%s: expected 2 operands, got %d", n.Name, len(ops))
	}
	a, err := convert(ops[0])
	if err != nil {
		return "", "", err
	}
	b, err := convert(ops[1])
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func triple(n *dom.Node) (string, string, string, error) {
	ops := operands(n)
	if len(ops) != 3 {
		return "", "", "", fmt.Errorf("%s: expected 3 operands, got %d", n.Name, len(ops))
	}
	var out [3]string
	for i, op := range ops {
		s, err := convert(op)
		if err != nil {
			return "", "", "", err
		}
		out[i] = s
	}
	return out[0], out[1], out[2], nil
}

// operands filters out inter-element whitespace text nodes.
func operands(n *dom.Node) []*dom.Node {
	ops := make([]*dom.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == dom.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		ops = append(ops, c)
	}
	return ops
}

func identifier(s string) string {
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if g, ok := greekLetters[r]; ok {
			return g
		}
		return s
	}
	if knownFunctions[s] {
		return `\` + s
	}
	// Multi-letter names are wrapped so LaTeX does not italicize each
	// letter independently.
	return `\mathrm{` + s + `}`
}

func operator(s string) string {
	var buf strings.Builder
	for _, r := range s {
		if mapped, ok := operators[string(r)]; ok {
			buf.WriteString(mapped)
		} else {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

func fenced(n *dom.Node) (string, error) {
	open := "("
	if n.HasAttr("open") {
		open = n.Attr("open")
	}
	closing := ")"
	if n.HasAttr("close") {
		closing = n.Attr("close")
	}

	ops := operands(n)
	// A fenced matrix renders as a matrix environment; the environment
	// brings its own delimiters.
	if len(ops) == 1 && ops[0].Is("mtable") {
		return table(ops[0])
	}

	sep := ","
	if n.HasAttr("separators") {
		sep = strings.TrimSpace(n.Attr("separators"))
	}

	parts := make([]string, 0, len(ops))
	for _, c := range ops {
		s, err := convert(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	var joined string
	if sep == "" {
		joined = strings.Join(parts, " ")
	} else {
		joined = strings.Join(parts, sep+" ")
	}
	return `\left` + delim(open) + " " + joined + ` \right` + delim(closing), nil
}

func delim(s string) string {
	if d, ok := stretchyDelims[s]; ok {
		return d
	}
	return s
}

func table(n *dom.Node) (string, error) {
	env := "pmatrix"
	if f := n.Ancestor("mfenced"); f != nil {
		open := "("
		if f.HasAttr("open") {
			open = f.Attr("open")
		}
		if e, ok := matrixEnvs[open]; ok {
			env = e
		}
	}

	var rows []string
	for _, tr := range n.Children {
		if !tr.Is("mtr", "mlabeledtr") {
			continue
		}
		var cells []string
		for _, td := range tr.Children {
			if !td.Is("mtd") {
				continue
			}
			s, err := convertChildren(td, " ")
			if err != nil {
				return "", err
			}
			cells = append(cells, s)
		}
		rows = append(rows, strings.Join(cells, " & "))
	}
	return `\begin{` + env + `}` + strings.Join(rows, ` \\ `) + `\end{` + env + `}`, nil
}

// script handles mover (over=true) and munder (over=false).
func script(n *dom.Node, over bool) (string, error) {
	base, deco, err := pair(n)
	if err != nil {
		return "", err
	}
	ops := operands(n)
	if acc, ok := accents[strings.TrimSpace(textOf(ops[1]))]; ok {
		if !over && acc == `\overline` {
			acc = `\underline`
		}
		return acc + group(base), nil
	}
	if bigOperators[strings.TrimSpace(textOf(ops[0]))] || isBigOperator(base) {
		if over {
			return base + "^" + group(deco), nil
		}
		return base + "_" + group(deco), nil
	}
	if over {
		return `\overset{` + deco + `}{` + base + `}`, nil
	}
	return `\underset{` + deco + `}{` + base + `}`, nil
}

func underOver(n *dom.Node) (string, error) {
	base, under, over, err := triple(n)
	if err != nil {
		return "", err
	}
	ops := operands(n)
	if bigOperators[strings.TrimSpace(textOf(ops[0]))] || isBigOperator(base) {
		return base + "_" + group(under) + "^" + group(over), nil
	}
	return `\overset{` + over + `}{\underset{` + under + `}{` + base + `}}`, nil
}

func multiscripts(n *dom.Node) (string, error) {
	ops := operands(n)
	if len(ops) == 0 {
		return "", fmt.Errorf("mmultiscripts: missing base")
	}
	base, err := convert(ops[0])
	if err != nil {
		return "", err
	}

	post := ops[1:]
	var pre []*dom.Node
	for i, c := range post {
		if c.Is("mprescripts") {
			pre = post[i+1:]
			post = post[:i]
			break
		}
	}

	renderPairs := func(nodes []*dom.Node) (string, error) {
		var buf strings.Builder
		for i := 0; i+1 < len(nodes); i += 2 {
			sub, err := convert(nodes[i])
			if err != nil {
				return "", err
			}
			sup, err := convert(nodes[i+1])
			if err != nil {
				return "", err
			}
			if sub != "" {
				buf.WriteString("_" + group(sub))
			}
			if sup != "" {
				buf.WriteString("^" + group(sup))
			}
		}
		return buf.String(), nil
	}

	postScripts, err := renderPairs(post)
	if err != nil {
		return "", err
	}
	preScripts, err := renderPairs(pre)
	if err != nil {
		return "", err
	}

	out := ""
	if preScripts != "" {
		out = "{}" + preScripts
	}
	return out + group(base) + postScripts, nil
}

func isBigOperator(latex string) bool {
	switch latex {
	case `\sum`, `\prod`, `\int`, `\oint`, `\iint`, `\iiint`, `\lim`, `\max`, `\min`, `\sup`, `\inf`:
		return true
	}
	return false
}

func group(s string) string {
	return "{" + s + "}"
}

func text(n *dom.Node) string {
	return strings.TrimSpace(n.TextContent())
}

func textOf(n *dom.Node) string {
	return n.TextContent()
}

var spaceRun = regexp.MustCompile(`\s+`)

// fallback extracts whatever plain text the subtree contains, collapsing
// whitespace. Worst-case output for unparseable math.
func fallback(n *dom.Node) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(n.TextContent(), " "))
}
