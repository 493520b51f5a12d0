package assistant

import (
	"strings"

	"github.com/google/uuid"

	"github.com/haivivi/tagstream/pkg/tagparse"
)

// Session normalizes one in-flight streamed message. It owns an engine
// instance and reparses the growing buffer on every Feed, so each call
// returns the current full block sequence, never a delta.
//
// Session assigns each ToolUse a stable ID the first time it appears at its
// position and keeps it across subsequent feeds, so a dispatcher can
// correlate a partial invocation with its completed form.
//
// A Session is mutated only by its calling goroutine; it is not safe for
// concurrent use. Use one Session per streamed message, Reset or discarded
// on completion.
type Session struct {
	parser *Parser
	engine *tagparse.Parser
	raw    strings.Builder
	ids    map[int]string
}

// NewSession creates a Session for one streamed message.
func NewSession(parser *Parser) *Session {
	return &Session{
		parser: parser,
		engine: parser.engine(),
		ids:    make(map[int]string),
	}
}

// Feed appends a chunk and returns the block sequence of everything fed so
// far.
func (s *Session) Feed(chunk string) []ContentBlock {
	s.raw.WriteString(chunk)
	res := s.engine.Feed(chunk)
	return s.assign(s.parser.normalize(s.raw.String(), res))
}

// Finish forces end-of-stream closure and returns the final block sequence.
// Calling Finish repeatedly is idempotent.
func (s *Session) Finish() []ContentBlock {
	res := s.engine.Flush()
	return s.assign(s.parser.normalize(s.raw.String(), res))
}

// Blocks returns the current sequence without feeding new input.
func (s *Session) Blocks() []ContentBlock {
	return s.Feed("")
}

// Raw returns the raw message accumulated so far.
func (s *Session) Raw() string {
	return s.raw.String()
}

// Reset clears all state for reuse with an unrelated message.
func (s *Session) Reset() {
	s.engine.Reset()
	s.raw.Reset()
	s.ids = make(map[int]string)
}

// assign gives each ToolUse its stable per-position ID. Positions are stable
// because all blocks except the last are invariant under extension of the
// buffer; a position that changes type (trailing text becoming a tool call)
// had no tool ID to lose.
func (s *Session) assign(blocks []ContentBlock) []ContentBlock {
	for i, b := range blocks {
		use, ok := b.(*ToolUse)
		if !ok {
			delete(s.ids, i)
			continue
		}
		id, ok := s.ids[i]
		if !ok {
			id = uuid.NewString()
			s.ids[i] = id
		}
		use.ID = id
	}
	return blocks
}
