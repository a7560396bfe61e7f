package scene

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a Document from a step title and its content markup.
func Parse(title, markup string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("parse step markup: %w", err)
	}

	d := &Document{}
	d.title = d.newElement(nil, KindTitle, "h2")
	d.title.Classes = []string{"step-title"}
	d.title.Text = collapse(title)
	d.blocks = append(d.blocks, d.title)

	b := builder{doc: d}
	for _, n := range nodes {
		b.node(n, nil)
	}
	return d, nil
}

type builder struct {
	doc   *Document
	lists []listState
}

type listState struct {
	ordered bool
	n       int
}

func (d *Document) newElement(parent *Element, kind Kind, tag string) *Element {
	e := &Element{doc: d, gen: d.gen, parent: parent, Kind: kind, Tag: tag, Style: Shown}
	d.all = append(d.all, e)
	if parent != nil {
		parent.Children = append(parent.Children, e)
	} else if kind != KindTitle {
		d.blocks = append(d.blocks, e)
	}
	return e
}

func (b *builder) node(n *html.Node, parent *Element) {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" || text == " " {
			return
		}
		e := b.doc.newElement(parent, KindOther, "")
		e.Text = strings.TrimSpace(text)
	case html.ElementNode:
		b.element(n, parent)
	}
}

func (b *builder) element(n *html.Node, parent *Element) {
	tag := n.Data
	classes := strings.Fields(attr(n, "class"))
	kind := classify(tag, classes)

	e := b.doc.newElement(parent, kind, tag)
	e.Classes = classes
	e.ID = attr(n, "id")

	switch kind {
	case KindChart:
		e.Canvas = canvasID(n)
		if e.Canvas == "" {
			e.Canvas = e.ID
		}
	case KindMath:
		e.Text = strings.TrimSpace(collapse(textOf(n)))
		e.Display = e.HasClass("display-math") || e.HasClass("katex-display")
	case KindText:
		if tag == "li" && len(b.lists) > 0 {
			top := &b.lists[len(b.lists)-1]
			top.n++
			if top.ordered {
				e.Marker = strconv.Itoa(top.n) + "."
			} else {
				e.Marker = "•"
			}
		}
		b.inline(n, e)
		e.Parts = trimParts(e.Parts)
		e.Text = e.Content()
	default:
		if tag == "ul" || tag == "ol" {
			b.lists = append(b.lists, listState{ordered: tag == "ol"})
			defer func() { b.lists = b.lists[:len(b.lists)-1] }()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.node(c, e)
		}
	}
}

// inline flattens phrasing content into e.Parts, keeping nested math as
// child elements so it can be typeset and animated on its own.
func (b *builder) inline(n *html.Node, e *Element) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			e.Parts = appendText(e.Parts, collapse(c.Data))
		case html.ElementNode:
			if c.DataAtom == atom.Br {
				e.Parts = appendText(e.Parts, " ")
				continue
			}
			if classify(c.Data, strings.Fields(attr(c, "class"))) == KindMath {
				m := b.doc.newElement(e, KindMath, c.Data)
				m.Classes = strings.Fields(attr(c, "class"))
				m.ID = attr(c, "id")
				m.Text = strings.TrimSpace(collapse(textOf(c)))
				e.Parts = append(e.Parts, Part{Child: m})
				continue
			}
			b.inline(c, e)
		}
	}
}

func classify(tag string, classes []string) Kind {
	for _, c := range classes {
		switch c {
		case "chart-container":
			return KindChart
		case "math", "katex", "katex-display", "display-math":
			return KindMath
		}
	}
	switch tag {
	case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6":
		return KindText
	}
	return KindOther
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func canvasID(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Canvas {
		return attr(n, "id")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if id := canvasID(c); id != "" {
			return id
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

// collapse folds whitespace runs into single spaces, as HTML rendering does.
func collapse(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func appendText(parts []Part, s string) []Part {
	if s == "" {
		return parts
	}
	if n := len(parts); n > 0 && parts[n-1].Child == nil {
		prev := parts[n-1].Text
		if strings.HasSuffix(prev, " ") && strings.HasPrefix(s, " ") {
			s = s[1:]
		}
		parts[n-1].Text = prev + s
		return parts
	}
	return append(parts, Part{Text: s})
}

func trimParts(parts []Part) []Part {
	if len(parts) == 0 {
		return parts
	}
	if parts[0].Child == nil {
		parts[0].Text = strings.TrimLeft(parts[0].Text, " ")
	}
	last := len(parts) - 1
	if parts[last].Child == nil {
		parts[last].Text = strings.TrimRight(parts[last].Text, " ")
	}
	out := parts[:0]
	for _, p := range parts {
		if p.Child != nil || p.Text != "" {
			out = append(out, p)
		}
	}
	return out
}
