package mathml

// greekLetters maps single-character identifiers to their LaTeX names.
var greekLetters = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`,
	'ε': `\epsilon`, 'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`,
	'ι': `\iota`, 'κ': `\kappa`, 'λ': `\lambda`, 'μ': `\mu`,
	'ν': `\nu`, 'ξ': `\xi`, 'π': `\pi`, 'ρ': `\rho`,
	'σ': `\sigma`, 'ς': `\varsigma`, 'τ': `\tau`, 'υ': `\upsilon`,
	'φ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`,
	'Ξ': `\Xi`, 'Π': `\Pi`, 'Σ': `\Sigma`, 'Υ': `\Upsilon`,
	'Φ': `\Phi`, 'Ψ': `\Psi`, 'Ω': `\Omega`,
	'ϵ': `\varepsilon`, 'ϑ': `\vartheta`, 'ϕ': `\varphi`,
	'ϱ': `\varrho`, 'ϖ': `\varpi`,
}

// knownFunctions are multi-letter identifiers that render with a backslash
// prefix instead of \mathrm wrapping.
var knownFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true,
	"sec": true, "csc": true, "arcsin": true, "arccos": true,
	"arctan": true, "sinh": true, "cosh": true, "tanh": true,
	"coth": true, "log": true, "ln": true, "lg": true,
	"exp": true, "min": true, "max": true, "sup": true,
	"inf": true, "lim": true, "det": true, "dim": true,
	"gcd": true, "deg": true, "arg": true, "ker": true,
	"mod": true,
}

// operators maps operator characters and entities to LaTeX commands.
// Characters not in the table pass through (with TeX specials escaped).
var operators = map[string]string{
	"×": `\times`, "÷": `\div`, "·": `\cdot`, "∗": `\ast`,
	"±": `\pm`, "∓": `\mp`, "⋅": `\cdot`,
	"≤": `\le`, "≥": `\ge`, "≠": `\ne`, "≈": `\approx`,
	"≡": `\equiv`, "≅": `\cong`, "∼": `\sim`, "∝": `\propto`,
	"≪": `\ll`, "≫": `\gg`,
	"→": `\rightarrow`, "←": `\leftarrow`, "↔": `\leftrightarrow`,
	"⇒": `\Rightarrow`, "⇐": `\Leftarrow`, "⇔": `\Leftrightarrow`,
	"↦": `\mapsto`,
	"∑": `\sum`, "∏": `\prod`, "∫": `\int`, "∮": `\oint`,
	"∬": `\iint`, "∭": `\iiint`,
	"∂": `\partial`, "∇": `\nabla`, "∞": `\infty`,
	"∈": `\in`, "∉": `\notin`, "∋": `\ni`,
	"⊂": `\subset`, "⊃": `\supset`, "⊆": `\subseteq`, "⊇": `\supseteq`,
	"∪": `\cup`, "∩": `\cap`, "∅": `\emptyset`,
	"∧": `\wedge`, "∨": `\vee`, "¬": `\neg`,
	"∀": `\forall`, "∃": `\exists`,
	"⊕": `\oplus`, "⊗": `\otimes`, "⊥": `\perp`, "∥": `\parallel`,
	"∘": `\circ`, "…": `\ldots`, "⋯": `\cdots`, "⋮": `\vdots`,
	"′": `'`, "″": `''`, "°": `^\circ`,
	"√": `\surd`, "ℏ": `\hbar`, "ℓ": `\ell`,
	"&": `\&`, "%": `\%`, "#": `\#`, "_": `\_`,
	"{": `\{`, "}": `\}`,
	"−": "-", "⁡": "", "⁢": "", "⁣": "", "⁤": "",
}

// stretchyDelims maps fence characters to their stretchy LaTeX forms.
var stretchyDelims = map[string]string{
	"(": `(`, ")": `)`,
	"[": `[`, "]": `]`,
	"{": `\{`, "}": `\}`,
	"|": `|`, "‖": `\|`,
	"⟨": `\langle`, "⟩": `\rangle`,
	"⌈": `\lceil`, "⌉": `\rceil`,
	"⌊": `\lfloor`, "⌋": `\rfloor`,
	"": `.`,
}

// matrixEnvs picks a matrix environment from the opening fence character of
// an enclosing mfenced. Plain parentheses are the default.
var matrixEnvs = map[string]string{
	"(": "pmatrix",
	"[": "bmatrix",
	"{": "Bmatrix",
	"|": "vmatrix",
	"‖": "Vmatrix",
	"":  "matrix",
}

// bigOperators take under/over scripts as limits rather than overset/underset.
var bigOperators = map[string]bool{
	"∑": true, "∏": true, "∫": true, "∮": true, "∬": true, "∭": true,
	"⋃": true, "⋂": true, "⋁": true, "⋀": true, "lim": true, "max": true,
	"min": true, "sup": true, "inf": true,
}

// accents maps mover/munder decorations to accent commands.
var accents = map[string]string{
	"^":      `\hat`,
	"ˆ":      `\hat`,
	"~":      `\tilde`,
	"˜":      `\tilde`,
	"¯":      `\overline`,
	"‾":      `\overline`,
	"_":      `\underline`,
	"→":      `\vec`,
	"⃗":      `\vec`,
	"˙":      `\dot`,
	"¨":      `\ddot`,
	"˘":      `\breve`,
	"ˇ":      `\check`,
	"̂": `\hat`,
	"̃": `\tilde`,
	"̅": `\overline`,
}
