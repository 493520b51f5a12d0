package assistant

import (
	"fmt"
	"regexp"
)

// ThinkingTag is the presentational pseudo-tag. It is recognized alongside
// the tool vocabulary but never becomes a ToolUse: its span is re-serialized
// into the adjacent text block.
const ThinkingTag = "thinking"

// nameRe bounds tool and parameter names. Dots are excluded so names can
// never smuggle path-separator semantics into stop-node configuration.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// tagKind classifies a top-level tag with one map lookup.
type tagKind int

const (
	kindUnknown tagKind = iota
	kindTool
	kindThinking
)

// ToolSpec declares one tool: its name, its recognized parameter names, and
// which of those parameters are opaque. An opaque parameter's value is never
// recursively parsed, so file contents, shell commands and regex patterns
// containing angle brackets round-trip untouched.
type ToolSpec struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
	Opaque []string `json:"opaque,omitempty" yaml:"opaque,omitempty"`
}

func (s *ToolSpec) validate() error {
	if !nameRe.MatchString(s.Name) {
		return fmt.Errorf("assistant: invalid tool name %q", s.Name)
	}
	if s.Name == ThinkingTag {
		return fmt.Errorf("assistant: tool name %q is reserved", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Params))
	for _, p := range s.Params {
		if !nameRe.MatchString(p) {
			return fmt.Errorf("assistant: tool %s: invalid parameter name %q", s.Name, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("assistant: tool %s: duplicate parameter %q", s.Name, p)
		}
		seen[p] = struct{}{}
	}
	for _, p := range s.Opaque {
		if _, ok := seen[p]; !ok {
			return fmt.Errorf("assistant: tool %s: opaque parameter %q is not declared", s.Name, p)
		}
	}
	return nil
}

// Vocabulary is the closed enumeration of recognized tools. It is immutable
// after construction and safe for concurrent use.
type Vocabulary struct {
	order []string
	tools map[string]*ToolSpec
	kinds map[string]tagKind
}

// NewVocabulary builds a Vocabulary, validating every spec. These are
// configuration errors: they fail here, never per-message.
func NewVocabulary(specs []ToolSpec) (*Vocabulary, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("assistant: empty tool vocabulary")
	}
	v := &Vocabulary{
		tools: make(map[string]*ToolSpec, len(specs)),
		kinds: make(map[string]tagKind, len(specs)+1),
	}
	for i := range specs {
		spec := specs[i]
		if err := spec.validate(); err != nil {
			return nil, err
		}
		if _, dup := v.tools[spec.Name]; dup {
			return nil, fmt.Errorf("assistant: duplicate tool %q", spec.Name)
		}
		v.order = append(v.order, spec.Name)
		v.tools[spec.Name] = &spec
		v.kinds[spec.Name] = kindTool
	}
	v.kinds[ThinkingTag] = kindThinking
	return v, nil
}

// MustNewVocabulary is NewVocabulary that panics on configuration errors.
func MustNewVocabulary(specs []ToolSpec) *Vocabulary {
	v, err := NewVocabulary(specs)
	if err != nil {
		panic(err)
	}
	return v
}

// Tool returns the named tool spec and whether it exists.
func (v *Vocabulary) Tool(name string) (*ToolSpec, bool) {
	t, ok := v.tools[name]
	return t, ok
}

// Names returns the tool names in declaration order.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

func (v *Vocabulary) kind(tag string) tagKind {
	return v.kinds[tag]
}

// rootNodes lists the tags allowed as structural top-level elements: the
// tool names plus the thinking pseudo-tag.
func (v *Vocabulary) rootNodes() []string {
	return append(v.Names(), ThinkingTag)
}

// stopPaths derives the engine stop paths from the opaque parameter
// declarations.
func (v *Vocabulary) stopPaths() []string {
	var paths []string
	for _, name := range v.order {
		for _, p := range v.tools[name].Opaque {
			paths = append(paths, name+"."+p)
		}
	}
	return paths
}
