package scene

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Span is a run of text drawn with one style.
type Span struct {
	Text  string
	Style Style
	Kind  Kind
}

// Line is one laid-out terminal row.
type Line struct {
	Kind  Kind
	Tag   string
	Spans []Span
}

// Text returns the line's characters without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Blank reports whether the line is a paragraph separator.
func (l Line) Blank() bool {
	return len(l.Spans) == 0
}

const minWidth = 16

// Lines lays the connected part of the document out for a terminal that is
// width cells wide. Elements keep their Style on every span they produce, so
// the caller decides how opacity or highlight look on screen.
func (d *Document) Lines(width int) []Line {
	if width < minWidth {
		width = minWidth
	}
	l := &layout{width: width}
	for _, e := range d.blocks {
		l.block(e, 0)
	}
	for len(l.out) > 0 && l.out[len(l.out)-1].Blank() {
		l.out = l.out[:len(l.out)-1]
	}
	return l.out
}

type layout struct {
	width int
	out   []Line
}

func (l *layout) gap() {
	if n := len(l.out); n > 0 && !l.out[n-1].Blank() {
		l.out = append(l.out, Line{})
	}
}

func (l *layout) block(e *Element, indent int) {
	if !e.Connected() {
		return
	}
	switch e.Kind {
	case KindTitle:
		l.title(e)
		l.gap()
	case KindText:
		l.paragraph(e, indent)
		if e.Tag != "li" {
			l.gap()
		}
	case KindMath:
		pad := indent + 2
		if e.Display {
			pad = indent + 4
		}
		for _, row := range strings.Split(e.Content(), "\n") {
			l.emit(e, pad, []Span{{Text: row, Style: e.Style, Kind: KindMath}})
		}
		l.gap()
	case KindChart:
		rows := strings.Split(e.Rendered, "\n")
		if e.Rendered == "" {
			rows = []string{"[chart " + e.Canvas + "]"}
		}
		for _, row := range rows {
			l.emit(e, indent, []Span{{Text: runewidth.Truncate(row, l.width-indent, "…"), Style: e.Style, Kind: KindChart}})
		}
		l.gap()
	default:
		if e.Text != "" {
			l.paragraph(e, indent)
		}
		child := indent
		if e.Tag == "ul" || e.Tag == "ol" {
			child += 2
		}
		for _, c := range e.Children {
			l.block(c, child)
		}
		if e.Tag == "ul" || e.Tag == "ol" {
			l.gap()
		}
	}
}

func (l *layout) title(e *Element) {
	if len(e.Children) == 0 {
		l.out = append(l.out, Line{Kind: KindTitle, Tag: e.Tag, Spans: []Span{{Text: e.Content(), Style: e.Style, Kind: KindTitle}}})
		return
	}
	var spans []Span
	for _, c := range e.Children {
		if c.Connected() {
			spans = appendSpan(spans, Span{Text: c.Text, Style: c.Style, Kind: KindTitle})
		}
	}
	l.out = append(l.out, Line{Kind: KindTitle, Tag: e.Tag, Spans: spans})
}

func (l *layout) paragraph(e *Element, indent int) {
	lead := strings.Repeat(" ", indent)
	if e.Marker != "" {
		lead += e.Marker + " "
	}
	leadW := runewidth.StringWidth(lead)
	rows := wrap(tokens(e), l.width-leadW)
	for i, row := range rows {
		prefix := lead
		if i > 0 {
			prefix = strings.Repeat(" ", leadW)
		}
		spans := append([]Span{{Text: prefix, Style: e.Style, Kind: e.Kind}}, row...)
		l.out = append(l.out, Line{Kind: e.Kind, Tag: e.Tag, Spans: spans})
	}
}

func (l *layout) emit(e *Element, indent int, spans []Span) {
	if indent > 0 {
		spans = append([]Span{{Text: strings.Repeat(" ", indent), Style: e.Style, Kind: e.Kind}}, spans...)
	}
	l.out = append(l.out, Line{Kind: e.Kind, Tag: e.Tag, Spans: spans})
}

type token struct {
	text  string
	space bool
	style Style
	kind  Kind
}

func tokens(e *Element) []token {
	parts := e.Parts
	if len(parts) == 0 {
		parts = []Part{{Text: e.Content()}}
	}
	var out []token
	pending := false
	for _, p := range parts {
		if p.Child != nil {
			if p.Child.Connected() {
				out = append(out, token{text: p.Child.Content(), space: pending, style: p.Child.Style, kind: p.Child.Kind})
			}
			pending = false
			continue
		}
		for i, f := range strings.Split(p.Text, " ") {
			if f == "" {
				pending = true
				continue
			}
			out = append(out, token{text: f, space: pending || i > 0, style: e.Style, kind: e.Kind})
			pending = false
		}
	}
	return out
}

func wrap(toks []token, width int) [][]Span {
	if width < 1 {
		width = 1
	}
	var rows [][]Span
	var row []Span
	used := 0
	for _, t := range toks {
		text := t.text
		w := runewidth.StringWidth(text)
		if w > width {
			text = runewidth.Truncate(text, width, "…")
			w = runewidth.StringWidth(text)
		}
		sep := 0
		if t.space && len(row) > 0 {
			sep = 1
		}
		if len(row) > 0 && used+sep+w > width {
			rows = append(rows, row)
			row, used, sep = nil, 0, 0
		}
		if sep == 1 {
			row = appendSpan(row, Span{Text: " ", Style: t.style, Kind: t.kind})
		}
		row = appendSpan(row, Span{Text: text, Style: t.style, Kind: t.kind})
		used += sep + w
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func appendSpan(spans []Span, s Span) []Span {
	if n := len(spans); n > 0 && spans[n-1].Style == s.Style && spans[n-1].Kind == s.Kind {
		spans[n-1].Text += s.Text
		return spans
	}
	return append(spans, s)
}
