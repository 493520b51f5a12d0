package assistant

import (
	"fmt"
	"strings"

	"github.com/haivivi/tagstream/pkg/tagparse"
)

// Parser normalizes assistant messages against a fixed Vocabulary.
//
// Parse is pure and stateless across calls: it is safe concurrently and is
// intended to be called both on complete messages and repeatedly against
// growing prefixes of a streaming one. All blocks except the last are stable
// under extension of the input.
type Parser struct {
	vocab *Vocabulary
	opts  tagparse.Options
}

// NewParser builds a Parser. The vocabulary and the engine configuration
// derived from it are validated here; a bad setup never surfaces
// per-message.
func NewParser(vocab *Vocabulary) (*Parser, error) {
	if vocab == nil {
		return nil, fmt.Errorf("assistant: nil vocabulary")
	}
	opts := tagparse.Options{
		TextNodeName:         "#text",
		AttributeNamePrefix:  "@_",
		AlwaysCreateTextNode: true,
		StopNodes:            vocab.stopPaths(),
		AllowedRootNodes:     vocab.rootNodes(),
	}
	if _, err := tagparse.New(opts); err != nil {
		return nil, err
	}
	return &Parser{vocab: vocab, opts: opts}, nil
}

// MustNewParser is NewParser that panics on configuration errors.
func MustNewParser(vocab *Vocabulary) *Parser {
	p, err := NewParser(vocab)
	if err != nil {
		panic(err)
	}
	return p
}

// Vocabulary returns the parser's vocabulary.
func (p *Parser) Vocabulary() *Vocabulary { return p.vocab }

// Parse converts a message into its ordered block sequence. Malformed input
// degrades to literal text; every input, including "", yields a well-defined
// result.
func (p *Parser) Parse(message string) []ContentBlock {
	engine := tagparse.MustNew(p.opts)
	engine.Feed(message)
	res := engine.Flush()
	return p.normalize(message, res)
}

func (p *Parser) engine() *tagparse.Parser {
	return tagparse.MustNew(p.opts)
}

// normalize converts an engine result into the block sequence and applies
// the trimming and partiality rules. raw must be the full buffer the result
// was parsed from.
func (p *Parser) normalize(raw string, res tagparse.Result) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(res.Nodes))

	appendText := func(s string) {
		if len(blocks) > 0 {
			if t, ok := blocks[len(blocks)-1].(*TextContent); ok {
				t.Content += s
				return
			}
		}
		blocks = append(blocks, &TextContent{Content: s})
	}

	for _, n := range res.Nodes {
		switch v := n.(type) {
		case tagparse.Text:
			appendText(string(v))
		case *tagparse.Element:
			switch p.vocab.kind(v.Tag) {
			case kindTool:
				blocks = append(blocks, toolUseFromElement(v))
			case kindThinking:
				// Presentational, not a tool: keep the span inline.
				appendText(tagparse.Render(v))
			default:
				// Tags outside the vocabulary stay narrative text.
				appendText(tagparse.Render(v))
			}
		}
	}

	blocks = trimBlocks(blocks)
	p.finalize(raw, res, blocks)
	return blocks
}

func toolUseFromElement(el *tagparse.Element) *ToolUse {
	use := &ToolUse{Name: el.Tag}
	for _, c := range el.Children {
		if ce, ok := c.(*tagparse.Element); ok {
			use.Params = append(use.Params, paramFromElement(ce))
		}
	}
	return use
}

func paramFromElement(el *tagparse.Element) Param {
	if !el.HasElements() {
		return Param{Name: el.Tag, Value: strings.TrimSpace(el.Text())}
	}
	p := Param{Name: el.Tag}
	for _, c := range el.Children {
		if ce, ok := c.(*tagparse.Element); ok {
			p.Children = append(p.Children, paramFromElement(ce))
		}
	}
	return p
}

// trimBlocks trims whitespace from every text block and drops the ones that
// become empty. Leaf parameter values are trimmed at construction.
func trimBlocks(blocks []ContentBlock) []ContentBlock {
	out := blocks[:0]
	for _, b := range blocks {
		if t, ok := b.(*TextContent); ok {
			t.Content = strings.TrimSpace(t.Content)
			if t.Content == "" {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// finalize decides the last block's Partial flag.
//
// The engine's own signal wins: an unterminated buffer marks the last block
// partial outright. For a terminated buffer, a trailing text block is always
// partial (models end turns without a terminator), and a trailing tool
// invocation is complete only when the raw message literally ends with the
// tool's closing tag preceded by its last parameter's closing tag. The
// second check guards against the tool's closing-tag text having matched
// inside still-accumulating parameter content.
func (p *Parser) finalize(raw string, res tagparse.Result, blocks []ContentBlock) {
	if len(blocks) == 0 {
		return
	}
	last := blocks[len(blocks)-1]
	if res.Partial {
		setPartial(last, true)
		return
	}
	switch b := last.(type) {
	case *TextContent:
		b.Partial = true
	case *ToolUse:
		b.Partial = !endsWithToolClose(raw, b)
	}
}

func setPartial(b ContentBlock, v bool) {
	switch t := b.(type) {
	case *TextContent:
		t.Partial = v
	case *ToolUse:
		t.Partial = v
	}
}

func endsWithToolClose(raw string, use *ToolUse) bool {
	trimmed := strings.TrimRight(raw, " \t\r\n")
	closing := "</" + use.Name + ">"
	if !strings.HasSuffix(trimmed, closing) {
		return false
	}
	if len(use.Params) == 0 {
		return true
	}
	rest := strings.TrimRight(trimmed[:len(trimmed)-len(closing)], " \t\r\n")
	lastParam := use.Params[len(use.Params)-1]
	return strings.HasSuffix(rest, "</"+lastParam.Name+">")
}
