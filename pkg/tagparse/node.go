package tagparse

import "strings"

var (
	_ Node = Text("")
	_ Node = (*Element)(nil)
)

// Node is one node of the parsed tree: either Text or *Element.
type Node interface {
	isNode()
}

// Text is a run of literal text. CDATA payloads appear as Text with the
// markers stripped.
type Text string

func (Text) isNode() {}

// Attr is a single element attribute. Order of declaration is preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is a named tag with ordered attributes and child nodes.
//
// Partial is true when the element was force-closed: the buffer ended before
// its closing tag appeared, or content inside it (a stop node or CDATA
// section awaiting its terminator) was still accumulating.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
	Partial  bool
}

func (*Element) isNode() {}

// Attr returns the value of the named attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the concatenation of the element's direct text children.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// HasElements reports whether the element has at least one element child.
func (e *Element) HasElements() bool {
	for _, c := range e.Children {
		if _, ok := c.(*Element); ok {
			return true
		}
	}
	return false
}

// Render reserializes a node back to markup. Text renders verbatim (CDATA
// markers are not restored). A partial element renders without its closing
// tag, matching the raw input it was built from.
func Render(n Node) string {
	var sb strings.Builder
	renderNode(&sb, n)
	return sb.String()
}

func renderNode(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case Text:
		sb.WriteString(string(v))
	case *Element:
		sb.WriteByte('<')
		sb.WriteString(v.Tag)
		for _, a := range v.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Name)
			sb.WriteString(`="`)
			sb.WriteString(a.Value)
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		for _, c := range v.Children {
			renderNode(sb, c)
		}
		if !v.Partial {
			sb.WriteString("</")
			sb.WriteString(v.Tag)
			sb.WriteByte('>')
		}
	}
}
