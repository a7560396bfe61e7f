package scene

import (
	"strings"
	"unicode/utf8"
)

// Document is the parsed content of one step. All handles it hands out
// belong to one generation; Detach invalidates them together.
type Document struct {
	gen    uint64
	title  *Element
	blocks []*Element
	all    []*Element
}

// Title returns the step title element.
func (d *Document) Title() *Element {
	return d.title
}

// Blocks returns the top-level elements in document order, title first.
func (d *Document) Blocks() []*Element {
	return d.blocks
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Element {
	return d.all
}

// Detach disconnects every handle of the document at once.
func (d *Document) Detach() {
	if d != nil {
		d.gen++
	}
}

// Connected reports whether the document has not been detached.
func (d *Document) Connected() bool {
	return d != nil && d.gen == 0
}

// OfKind returns the connected elements of kind k.
func (d *Document) OfKind(k Kind) []*Element {
	var out []*Element
	for _, e := range d.all {
		if e.Kind == k && e.Connected() {
			out = append(out, e)
		}
	}
	return out
}

// ByCanvas returns the chart container whose canvas has the given id.
func (d *Document) ByCanvas(id string) *Element {
	for _, e := range d.all {
		if e.Kind == KindChart && e.Canvas == id && e.Connected() {
			return e
		}
	}
	return nil
}

// Query returns connected elements matching selector, in document order.
// Supported forms are tag, .class, #id, tag.class and comma-separated lists.
func (d *Document) Query(selector string) []*Element {
	var sels []simpleSelector
	for _, s := range strings.Split(selector, ",") {
		if sel, ok := parseSelector(strings.TrimSpace(s)); ok {
			sels = append(sels, sel)
		}
	}
	if len(sels) == 0 {
		return nil
	}
	var out []*Element
	for _, e := range d.all {
		if !e.Connected() {
			continue
		}
		for _, s := range sels {
			if s.match(e) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) (simpleSelector, bool) {
	var sel simpleSelector
	switch s {
	case "":
		return sel, false
	case "*":
		return sel, true
	}
	mode, start := byte(0), 0
	emit := func(end int) {
		tok := s[start:end]
		switch mode {
		case '.':
			if tok != "" {
				sel.classes = append(sel.classes, tok)
			}
		case '#':
			sel.id = tok
		default:
			sel.tag = strings.ToLower(tok)
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == '#' {
			emit(i)
			mode, start = s[i], i+1
		}
	}
	emit(len(s))
	return sel, sel.tag != "" || sel.id != "" || len(sel.classes) > 0
}

func (s simpleSelector) match(e *Element) bool {
	if s.tag != "" && s.tag != e.Tag {
		return false
	}
	if s.id != "" && s.id != e.ID && s.id != e.Canvas {
		return false
	}
	for _, c := range s.classes {
		if !e.HasClass(c) {
			return false
		}
	}
	return true
}

// SplitChars replaces the element's text with one KindChar child per rune
// so that each character can be animated on its own. Calling it again is a
// no-op.
func (d *Document) SplitChars(e *Element) []*Element {
	if len(e.Children) > 0 && e.Children[0].Kind == KindChar {
		return e.Children
	}
	text := e.Content()
	chars := make([]*Element, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		c := &Element{
			doc:     d,
			gen:     d.gen,
			parent:  e,
			Kind:    KindChar,
			Tag:     "span",
			Classes: []string{"title-char"},
			Text:    string(r),
			Style:   e.Style,
		}
		chars = append(chars, c)
		d.all = append(d.all, c)
	}
	e.Children = chars
	return chars
}
