package render

// HeadingStyle selects how headings are emitted.
type HeadingStyle string

const (
	HeadingATX       HeadingStyle = "atx"
	HeadingATXClosed HeadingStyle = "atx-closed"
	HeadingSetext    HeadingStyle = "setext"
)

// SoftBreak selects how soft line breaks inside text are emitted.
type SoftBreak string

const (
	SoftBreakSpace   SoftBreak = "space"
	SoftBreakNewline SoftBreak = "newline"
)

// Options is the renderer configuration surface.
type Options struct {
	HeadingStyle      HeadingStyle `json:"heading_style"`
	BulletMarker      string       `json:"bullet_marker"`
	OrderedMarker     string       `json:"ordered_marker"`
	IndentSize        int          `json:"indent_size"`
	FencedCodeMarker  string       `json:"fenced_code_marker"`
	EmphasisDelimiter string       `json:"emphasis_delimiter"`
	StrongDelimiter   string       `json:"strong_delimiter"`
	EscapePipes       bool         `json:"escape_pipes"`
	SoftBreak         SoftBreak    `json:"soft_break"`
	InlineMath        string       `json:"inline_math_delimiter"`
	BlockMath         string       `json:"block_math_delimiter"`
}

// DefaultOptions returns the CommonMark-conventional defaults.
func DefaultOptions() Options {
	return Options{
		HeadingStyle:      HeadingATX,
		BulletMarker:      "-",
		OrderedMarker:     "1.",
		IndentSize:        2,
		FencedCodeMarker:  "```",
		EmphasisDelimiter: "*",
		StrongDelimiter:   "**",
		EscapePipes:       true,
		SoftBreak:         SoftBreakSpace,
		InlineMath:        "$",
		BlockMath:         "$$",
	}
}

// normalize fills zero values with defaults so a partially populated Options
// behaves sensibly.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.HeadingStyle == "" {
		o.HeadingStyle = def.HeadingStyle
	}
	if o.BulletMarker == "" {
		o.BulletMarker = def.BulletMarker
	}
	if o.OrderedMarker == "" {
		o.OrderedMarker = def.OrderedMarker
	}
	if o.IndentSize <= 0 {
		o.IndentSize = def.IndentSize
	}
	if o.FencedCodeMarker == "" {
		o.FencedCodeMarker = def.FencedCodeMarker
	}
	if o.EmphasisDelimiter == "" {
		o.EmphasisDelimiter = def.EmphasisDelimiter
	}
	if o.StrongDelimiter == "" {
		o.StrongDelimiter = def.StrongDelimiter
	}
	if o.SoftBreak == "" {
		o.SoftBreak = def.SoftBreak
	}
	if o.InlineMath == "" {
		o.InlineMath = def.InlineMath
	}
	if o.BlockMath == "" {
		o.BlockMath = def.BlockMath
	}
	return o
}
