// Package assistant normalizes raw LLM assistant output into an ordered
// sequence of content blocks: narrative text and tool invocations with named
// parameters.
//
// # Core Types
//
// ContentBlock is the unit of normalized output:
//   - TextContent: free text between and around recognized tags
//   - ToolUse: a recognized tool invocation with ordered parameters
//
// A block's Partial flag is true while the underlying text may still be
// extended by further streamed tokens. A dispatcher acts on a ToolUse once
// Partial turns false, even while the rest of the message is still
// generating.
//
// # Layers
//
//   - Vocabulary: the closed set of tool names, each declaring its
//     parameter names and which parameter values are opaque (never parsed
//     as markup: file contents, shell commands, regexes, diff bodies)
//   - Parser: pure one-shot normalization of a message, safe to call
//     concurrently and repeatedly against growing prefixes
//   - Session: stateful wrapper for one in-flight streamed message, with
//     stable ToolUse IDs across feeds
//   - Registry: handler lookup and dispatch for completed tool uses
//
// # Usage
//
//	vocab := assistant.MustNewVocabulary([]assistant.ToolSpec{
//	    {Name: "read_file", Params: []string{"path"}},
//	    {Name: "write_to_file", Params: []string{"path", "content"}, Opaque: []string{"content"}},
//	})
//	p := assistant.MustNewParser(vocab)
//	blocks := p.Parse(message)
//
// Malformed input never raises an error; it degrades to literal text. Every
// input string, including the empty one, yields a well-defined result.
// Configuration mistakes (an empty vocabulary, an invalid tool name) are
// programmer errors and fail at construction time, never per-message.
package assistant
