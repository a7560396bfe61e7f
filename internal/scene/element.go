// Package scene turns step markup into a tree of element handles that the
// animation timeline and the render bridge mutate, and lays the result out as
// terminal lines.
package scene

import "strings"

// Kind classifies an element by the reveal stage it belongs to.
type Kind int

const (
	KindOther Kind = iota
	KindTitle
	KindText
	KindMath
	KindChart
	KindChar
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindText:
		return "text"
	case KindMath:
		return "math"
	case KindChart:
		return "chart"
	case KindChar:
		return "char"
	default:
		return "other"
	}
}

// Style is the animatable presentation state of an element.
type Style struct {
	Opacity   float64
	OffsetY   float64
	Scale     float64
	Highlight float64
}

// Shown is the resting style of revealed content.
var Shown = Style{Opacity: 1, Scale: 1}

// Hidden is the initial style of content awaiting its reveal.
var Hidden = Style{Opacity: 0, OffsetY: 20, Scale: 1}

// Part is one inline run of an element: either literal text or a nested
// element rendered in place (inline math inside a list item, for example).
type Part struct {
	Text  string
	Child *Element
}

// Element is a handle to one node of a parsed step. Handles are only valid
// while Connected reports true.
type Element struct {
	doc    *Document
	gen    uint64
	parent *Element

	Kind    Kind
	Tag     string
	ID      string
	Classes []string

	// Text is the element's own text. For math it is the source markup.
	Text string
	// Display marks block-level math.
	Display bool
	// Canvas is the anchor id of a chart container's canvas.
	Canvas string
	// Marker prefixes list items ("•", "1.", ...).
	Marker string
	// Rendered holds presentational output injected by the render bridge:
	// typeset math, or the drawn lines of a chart.
	Rendered string

	Parts    []Part
	Children []*Element

	Style   Style
	removed bool
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Connected reports whether the element is still attached to a live document.
func (e *Element) Connected() bool {
	if e == nil || e.doc == nil || e.removed || e.gen != e.doc.gen {
		return false
	}
	for p := e.parent; p != nil; p = p.parent {
		if p.removed {
			return false
		}
	}
	return true
}

// Remove detaches the element and its subtree.
func (e *Element) Remove() {
	if e != nil {
		e.removed = true
	}
}

// Parent returns the enclosing element, or nil for top-level blocks.
func (e *Element) Parent() *Element {
	return e.parent
}

// Content returns the text to display for the element, preferring rendered
// output over source.
func (e *Element) Content() string {
	if e.Rendered != "" {
		return e.Rendered
	}
	if len(e.Parts) == 0 {
		return e.Text
	}
	var b strings.Builder
	for _, p := range e.Parts {
		if p.Child != nil {
			if p.Child.Connected() {
				b.WriteString(p.Child.Content())
			}
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
