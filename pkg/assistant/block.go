package assistant

import (
	"strings"
)

var (
	_ ContentBlock = (*TextContent)(nil)
	_ ContentBlock = (*ToolUse)(nil)
)

// ContentBlock is one parsed output unit: narrative text or a tool
// invocation. Blocks are produced fresh per parse and carry no identity
// across calls (Session adds IDs on top).
type ContentBlock interface {
	isContentBlock()

	// IsPartial reports whether the block may still be extended by
	// further streamed tokens.
	IsPartial() bool
}

// TextContent is free text between and around recognized tags. Unrecognized
// tags and thinking spans are preserved here verbatim rather than dropped.
type TextContent struct {
	Content string `json:"content" yaml:"content" msgpack:"content"`
	Partial bool   `json:"partial" yaml:"partial" msgpack:"partial"`
}

func (*TextContent) isContentBlock() {}

func (t *TextContent) IsPartial() bool { return t.Partial }

// Param is one named tool parameter. Declaration order within a ToolUse is
// preserved. A leaf parameter carries its Value as a string; a parameter
// with nested sub-elements carries them in Children instead.
type Param struct {
	Name     string  `json:"name" yaml:"name" msgpack:"name"`
	Value    string  `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Children []Param `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
}

// IsLeaf reports whether the parameter is a plain string value.
func (p Param) IsLeaf() bool { return p.Children == nil }

// ToolUse is a recognized tool invocation destined for dispatch.
//
// ID is empty for one-shot Parser output; Session assigns a stable ID the
// first time an invocation appears and keeps it across subsequent feeds.
type ToolUse struct {
	ID      string  `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Name    string  `json:"name" yaml:"name" msgpack:"name"`
	Params  []Param `json:"params" yaml:"params" msgpack:"params"`
	Partial bool    `json:"partial" yaml:"partial" msgpack:"partial"`
}

func (*ToolUse) isContentBlock() {}

func (t *ToolUse) IsPartial() bool { return t.Partial }

// Param returns the named parameter and whether it was present.
func (t *ToolUse) Param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParamValue returns the string value of a leaf parameter, or "" when the
// parameter is absent or structured.
func (t *ToolUse) ParamValue(name string) string {
	p, ok := t.Param(name)
	if !ok {
		return ""
	}
	return p.Value
}

// Render reserializes the invocation back to its tag form. A partial
// invocation renders without the closing tags that have not appeared yet.
func (t *ToolUse) Render() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(t.Name)
	sb.WriteByte('>')
	for _, p := range t.Params {
		renderParam(&sb, p)
	}
	if !t.Partial {
		sb.WriteString("</")
		sb.WriteString(t.Name)
		sb.WriteByte('>')
	}
	return sb.String()
}

func renderParam(sb *strings.Builder, p Param) {
	sb.WriteByte('<')
	sb.WriteString(p.Name)
	sb.WriteByte('>')
	if p.IsLeaf() {
		sb.WriteString(p.Value)
	} else {
		for _, c := range p.Children {
			renderParam(sb, c)
		}
	}
	sb.WriteString("</")
	sb.WriteString(p.Name)
	sb.WriteByte('>')
}

// Reconstruct concatenates the literal reconstruction of every block: text
// verbatim, tool invocations re-rendered with tags. For a complete message
// this reproduces the input up to whitespace trimming.
func Reconstruct(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch v := b.(type) {
		case *TextContent:
			sb.WriteString(v.Content)
		case *ToolUse:
			sb.WriteString(v.Render())
		}
	}
	return sb.String()
}
