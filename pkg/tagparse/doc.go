// Package tagparse provides an incremental parser for a restricted XML-like
// tag syntax embedded in streamed text.
//
// The parser is built for model-generated input: the buffer it sees may be a
// prefix of the final text, the tag vocabulary is open-ended, and nothing
// about the input can be trusted to be well formed. It never fails on
// malformed markup; anything that does not parse as a tag degrades to
// literal text.
//
// # Core Types
//
// Node is the unit of the parsed tree:
//   - Text: a run of literal text
//   - Element: a named tag with ordered attributes and child nodes
//
// Result is what every Feed or Flush call returns: the node tree of the
// whole accumulated buffer, plus a Partial flag reporting whether the buffer
// ends mid-tag, mid-attribute, or inside an element whose closing tag has
// not appeared yet.
//
// # Incremental Use
//
// One Parser instance serves one in-flight stream:
//
//	p := tagparse.MustNew(tagparse.Options{
//	    AllowedRootNodes: []string{"read_file", "write_to_file"},
//	    StopNodes:        []string{"write_to_file.content"},
//	})
//	for chunk := range chunks {
//	    res := p.Feed(chunk) // parse of everything fed so far
//	    ...
//	}
//	res := p.Flush() // force end-of-stream closure; idempotent
//
// Feed always reparses the accumulated buffer, so results for earlier input
// never flicker: a node that was complete in one call stays complete in the
// next. Reset clears all state for reuse across unrelated streams.
//
// # Safety
//
// Tag recognition uses Go's regexp package (RE2), so matching is linear in
// the input and crafted attribute soup cannot trigger catastrophic
// backtracking. Stop-node paths are user-influenced strings; they are routed
// through a single literal-pattern compiler that escapes every regex
// metacharacter before the optional trailing ".*" wildcard is applied, so
// tag names can never inject pattern syntax. Unterminated declarations,
// comments and DOCTYPE blocks are stripped by a linear scan and never reach
// the tree.
//
// A Parser holds mutable buffering state and is not safe for concurrent use;
// give each stream its own instance.
package tagparse
