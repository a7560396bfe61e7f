// Package render bridges step documents to the math typesetter and the chart
// renderers, isolating each element's failures from its siblings.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformed marks math source that could not be typeset. The renderer
// still returns displayable text alongside it.
var ErrMalformed = errors.New("malformed math")

// MathRenderer typesets math markup into presentational text.
type MathRenderer interface {
	RenderMath(src string, display bool) (string, error)
}

// UnicodeMath typesets a LaTeX subset into plain Unicode: fractions become
// slashes, scripts become super/subscript characters where they exist, and
// symbol commands map to their glyphs.
type UnicodeMath struct{}

var _ MathRenderer = UnicodeMath{}

// RenderMath never panics. On malformed input it returns src unchanged with
// an error wrapping ErrMalformed.
func (UnicodeMath) RenderMath(src string, display bool) (string, error) {
	p := &texParser{src: []rune(src)}
	pieces, err := p.seq(false, false)
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return strings.TrimSpace(join(pieces, false)), nil
}

type pieceKind int

const (
	pNone pieceKind = iota
	pOrd
	pOp
	pBin
	pRel
	pOpen
	pClose
	pPunct
	pSpace
)

type piece struct {
	kind pieceKind
	text string
}

func join(ps []piece, compact bool) string {
	var b strings.Builder
	space := func() {
		s := b.String()
		if s != "" && !strings.HasSuffix(s, " ") {
			b.WriteByte(' ')
		}
	}
	prev := pNone
	for _, p := range ps {
		switch p.kind {
		case pBin:
			unary := prev == pNone || prev == pBin || prev == pRel || prev == pOpen || prev == pPunct
			if compact || unary {
				b.WriteString(p.text)
			} else {
				space()
				b.WriteString(p.text)
				b.WriteByte(' ')
			}
		case pRel:
			if compact {
				b.WriteString(p.text)
			} else {
				space()
				b.WriteString(p.text)
				b.WriteByte(' ')
			}
		case pPunct:
			b.WriteString(p.text)
			if !compact {
				b.WriteByte(' ')
			}
		case pOrd:
			if prev == pOp && !compact {
				space()
			}
			b.WriteString(p.text)
		case pOp:
			if (prev == pOrd || prev == pClose || prev == pOp) && !compact {
				space()
			}
			b.WriteString(p.text)
		default:
			b.WriteString(p.text)
		}
		prev = p.kind
	}
	return b.String()
}

type texParser struct {
	src []rune
	pos int
}

func (p *texParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *texParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// seq parses until end of input, or until the closing brace when inGroup.
func (p *texParser) seq(compact, inGroup bool) ([]piece, error) {
	var out []piece
	for !p.eof() {
		r := p.src[p.pos]
		switch {
		case r == '}':
			if !inGroup {
				return nil, fmt.Errorf("unexpected '}' at %d", p.pos)
			}
			p.pos++
			return out, nil
		case r == '{':
			p.pos++
			inner, err := p.seq(compact, true)
			if err != nil {
				return nil, err
			}
			out = append(out, piece{kind: pOrd, text: join(inner, compact)})
		case r == '^' || r == '_':
			p.pos++
			arg, err := p.arg()
			if err != nil {
				return nil, err
			}
			out = attach(out, script(arg, r == '^'))
		case r == '\'':
			p.pos++
			out = attach(out, "′")
		case r == '\\':
			pc, err := p.command(compact)
			if err != nil {
				return nil, err
			}
			out = append(out, pc...)
		case unicode.IsSpace(r), r == '&':
			p.pos++
		default:
			p.pos++
			out = append(out, charPiece(r))
		}
	}
	if inGroup {
		return nil, fmt.Errorf("missing '}'")
	}
	return out, nil
}

// arg reads one macro argument: a braced group, a command, or a single
// character. Arguments are rendered compactly.
func (p *texParser) arg() (string, error) {
	p.skipSpace()
	if p.eof() {
		return "", fmt.Errorf("missing argument at end of input")
	}
	switch r := p.src[p.pos]; r {
	case '{':
		p.pos++
		inner, err := p.seq(true, true)
		if err != nil {
			return "", err
		}
		return join(inner, true), nil
	case '\\':
		pc, err := p.command(true)
		if err != nil {
			return "", err
		}
		return join(pc, true), nil
	case '}', '^', '_':
		return "", fmt.Errorf("missing argument at %d", p.pos)
	default:
		p.pos++
		return charPiece(r).text, nil
	}
}

// group reads a braced argument, keeping operator spacing unless compact.
func (p *texParser) group(compact bool) (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '{' {
		return p.arg()
	}
	p.pos++
	inner, err := p.seq(compact, true)
	if err != nil {
		return "", err
	}
	return join(inner, compact), nil
}

func (p *texParser) rawGroup() (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '{' {
		return "", fmt.Errorf("expected '{' at %d", p.pos)
	}
	p.pos++
	depth := 1
	start := p.pos
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := string(p.src[start:p.pos])
				p.pos++
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("missing '}'")
}

func (p *texParser) command(compact bool) ([]piece, error) {
	p.pos++ // backslash
	if p.eof() {
		return nil, fmt.Errorf("dangling backslash")
	}
	start := p.pos
	if unicode.IsLetter(p.src[p.pos]) {
		for !p.eof() && unicode.IsLetter(p.src[p.pos]) {
			p.pos++
		}
	} else {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	if g, ok := symbols[name]; ok {
		return []piece{g}, nil
	}
	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.group(compact)
		if err != nil {
			return nil, fmt.Errorf("\\frac numerator: %w", err)
		}
		den, err := p.group(compact)
		if err != nil {
			return nil, fmt.Errorf("\\frac denominator: %w", err)
		}
		return []piece{{kind: pOrd, text: fracPart(num) + "/" + fracPart(den)}}, nil
	case "sqrt":
		index := ""
		p.skipSpace()
		if !p.eof() && p.src[p.pos] == '[' {
			end := p.pos + 1
			for end < len(p.src) && p.src[end] != ']' {
				end++
			}
			if end == len(p.src) {
				return nil, fmt.Errorf("unterminated \\sqrt index")
			}
			index = script(string(p.src[p.pos+1:end]), true)
			p.pos = end + 1
		}
		body, err := p.group(compact)
		if err != nil {
			return nil, err
		}
		if len([]rune(body)) > 1 {
			body = "(" + body + ")"
		}
		return []piece{{kind: pOrd, text: index + "√" + body}}, nil
	case "text", "textrm", "mathrm", "textbf", "mathbf", "mathit", "operatorname":
		raw, err := p.rawGroup()
		if err != nil {
			return nil, err
		}
		return []piece{{kind: pOrd, text: raw}}, nil
	case "left", "right", "big", "Big", "bigg", "Bigg", "displaystyle", "limits":
		return nil, nil
	}
	if op, ok := operators[name]; ok {
		return []piece{{kind: pOp, text: op}}, nil
	}
	return []piece{{kind: pOrd, text: name}}, nil
}

// fracPart parenthesizes compound numerators and denominators.
func fracPart(s string) string {
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ', '/':
			if depth == 0 {
				return "(" + s + ")"
			}
		}
	}
	return s
}

func attach(out []piece, suffix string) []piece {
	if len(out) == 0 {
		return append(out, piece{kind: pOrd, text: suffix})
	}
	out[len(out)-1].text += suffix
	return out
}

func charPiece(r rune) piece {
	switch r {
	case '+':
		return piece{kind: pBin, text: "+"}
	case '-':
		return piece{kind: pBin, text: "−"}
	case '*':
		return piece{kind: pBin, text: "∗"}
	case '=', '<', '>':
		return piece{kind: pRel, text: string(r)}
	case '(', '[':
		return piece{kind: pOpen, text: string(r)}
	case ')', ']':
		return piece{kind: pClose, text: string(r)}
	case ',', ';':
		return piece{kind: pPunct, text: string(r)}
	}
	return piece{kind: pOrd, text: string(r)}
}

func script(s string, sup bool) string {
	table := subscripts
	mark := "_"
	if sup {
		table = superscripts
		mark = "^"
	}
	var b strings.Builder
	for _, r := range s {
		m, ok := table[r]
		if !ok {
			if len([]rune(s)) == 1 {
				return mark + s
			}
			return mark + "(" + s + ")"
		}
		b.WriteRune(m)
	}
	return b.String()
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '−': '⁻', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ',
	'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ',
	'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ', '′': '′',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '−': '₋', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ',
	'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

var symbols = map[string]piece{
	"to": {pOrd, "→"}, "rightarrow": {pOrd, "→"}, "leftarrow": {pOrd, "←"}, "Rightarrow": {pRel, "⇒"},
	"iff": {pRel, "⇔"}, "mapsto": {pOrd, "↦"},
	"cdot": {pBin, "·"}, "times": {pBin, "×"}, "pm": {pBin, "±"}, "mp": {pBin, "∓"}, "div": {pBin, "÷"},
	"neq": {pRel, "≠"}, "ne": {pRel, "≠"}, "leq": {pRel, "≤"}, "le": {pRel, "≤"}, "geq": {pRel, "≥"},
	"ge": {pRel, "≥"}, "approx": {pRel, "≈"}, "equiv": {pRel, "≡"}, "sim": {pRel, "∼"}, "in": {pRel, "∈"},
	"infty": {pOrd, "∞"}, "partial": {pOrd, "∂"}, "nabla": {pOrd, "∇"}, "prime": {pOrd, "′"},
	"ldots": {pOrd, "…"}, "cdots": {pOrd, "⋯"}, "dots": {pOrd, "…"},
	"quad": {pSpace, "  "}, "qquad": {pSpace, "    "}, ",": {pSpace, " "}, ";": {pSpace, " "},
	":": {pSpace, " "}, " ": {pSpace, " "}, "!": {pSpace, ""},
	"{": {pOpen, "{"}, "}": {pClose, "}"}, "%": {pOrd, "%"}, "|": {pOrd, "‖"}, "\\": {pSpace, "  "},
	"alpha": {pOrd, "α"}, "beta": {pOrd, "β"}, "gamma": {pOrd, "γ"}, "delta": {pOrd, "δ"},
	"epsilon": {pOrd, "ε"}, "varepsilon": {pOrd, "ε"}, "zeta": {pOrd, "ζ"}, "eta": {pOrd, "η"},
	"theta": {pOrd, "θ"}, "iota": {pOrd, "ι"}, "kappa": {pOrd, "κ"}, "lambda": {pOrd, "λ"},
	"mu": {pOrd, "μ"}, "nu": {pOrd, "ν"}, "xi": {pOrd, "ξ"}, "pi": {pOrd, "π"}, "rho": {pOrd, "ρ"},
	"sigma": {pOrd, "σ"}, "tau": {pOrd, "τ"}, "upsilon": {pOrd, "υ"}, "phi": {pOrd, "φ"},
	"varphi": {pOrd, "φ"}, "chi": {pOrd, "χ"}, "psi": {pOrd, "ψ"}, "omega": {pOrd, "ω"},
	"Gamma": {pOrd, "Γ"}, "Delta": {pOrd, "Δ"}, "Theta": {pOrd, "Θ"}, "Lambda": {pOrd, "Λ"},
	"Xi": {pOrd, "Ξ"}, "Pi": {pOrd, "Π"}, "Sigma": {pOrd, "Σ"}, "Phi": {pOrd, "Φ"},
	"Psi": {pOrd, "Ψ"}, "Omega": {pOrd, "Ω"},
}

var operators = map[string]string{
	"lim": "lim", "sum": "∑", "prod": "∏", "int": "∫", "iint": "∬", "oint": "∮",
	"sin": "sin", "cos": "cos", "tan": "tan", "sec": "sec", "csc": "csc", "cot": "cot",
	"log": "log", "ln": "ln", "exp": "exp", "max": "max", "min": "min", "det": "det",
}
