package assistant

import (
	"reflect"
	"strings"
	"testing"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := NewVocabulary([]ToolSpec{
		{Name: "read_file", Params: []string{"path"}},
		{Name: "write_to_file", Params: []string{"path", "content"}, Opaque: []string{"content"}},
		{Name: "execute_command", Params: []string{"command"}, Opaque: []string{"command"}},
		{Name: "search_files", Params: []string{"path", "regex"}, Opaque: []string{"regex"}},
		{Name: "use_mcp_tool", Params: []string{"server_name", "arguments"}},
	})
	if err != nil {
		t.Fatalf("NewVocabulary error: %v", err)
	}
	return v
}

func testParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(testVocab(t))
	if err != nil {
		t.Fatalf("NewParser error: %v", err)
	}
	return p
}

func toolAt(t *testing.T, blocks []ContentBlock, i int) *ToolUse {
	t.Helper()
	if i >= len(blocks) {
		t.Fatalf("block %d out of range (len %d)", i, len(blocks))
	}
	use, ok := blocks[i].(*ToolUse)
	if !ok {
		t.Fatalf("block %d is %T, want *ToolUse", i, blocks[i])
	}
	return use
}

func textAt(t *testing.T, blocks []ContentBlock, i int) *TextContent {
	t.Helper()
	if i >= len(blocks) {
		t.Fatalf("block %d out of range (len %d)", i, len(blocks))
	}
	text, ok := blocks[i].(*TextContent)
	if !ok {
		t.Fatalf("block %d is %T, want *TextContent", i, blocks[i])
	}
	return text
}

func TestParse_CompleteToolUse(t *testing.T) {
	blocks := testParser(t).Parse(`<read_file><path>src/file.ts</path></read_file>`)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	use := toolAt(t, blocks, 0)
	if use.Name != "read_file" {
		t.Errorf("name = %q", use.Name)
	}
	if got := use.ParamValue("path"); got != "src/file.ts" {
		t.Errorf("path = %q", got)
	}
	if use.Partial {
		t.Error("Partial = true, want false")
	}
}

func TestParse_UnterminatedToolUse(t *testing.T) {
	blocks := testParser(t).Parse(`<read_file><path>src/file.ts</path>`)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	use := toolAt(t, blocks, 0)
	if got := use.ParamValue("path"); got != "src/file.ts" {
		t.Errorf("path = %q", got)
	}
	if !use.Partial {
		t.Error("Partial = false, want true")
	}
}

func TestParse_TextAroundToolUse(t *testing.T) {
	blocks := testParser(t).Parse(`Here: <read_file><path>a</path></read_file> done`)
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	lead := textAt(t, blocks, 0)
	if lead.Content != "Here:" || lead.Partial {
		t.Errorf("lead = %+v", lead)
	}
	use := toolAt(t, blocks, 1)
	if use.Name != "read_file" || use.Partial {
		t.Errorf("tool = %+v", use)
	}
	tail := textAt(t, blocks, 2)
	if tail.Content != "done" || !tail.Partial {
		t.Errorf("tail = %+v", tail)
	}
}

func TestParse_OpaqueParamCDATA(t *testing.T) {
	blocks := testParser(t).Parse(
		`<write_to_file><path>index.html</path><content><![CDATA[<div>x</div>]]></content></write_to_file>`)
	use := toolAt(t, blocks, 0)
	if got := use.ParamValue("content"); got != "<div>x</div>" {
		t.Errorf("content = %q, want payload verbatim with markers stripped", got)
	}
	if use.Partial {
		t.Error("Partial = true, want false")
	}
}

func TestParse_OpaqueParamKeepsMarkup(t *testing.T) {
	blocks := testParser(t).Parse(
		"<execute_command><command>grep '</read_file>' *.log</command></execute_command>")
	use := toolAt(t, blocks, 0)
	if got := use.ParamValue("command"); got != "grep '</read_file>' *.log" {
		t.Errorf("command = %q", got)
	}
}

func TestParse_Empty(t *testing.T) {
	blocks := testParser(t).Parse("")
	if blocks == nil {
		t.Fatal("blocks = nil, want empty slice")
	}
	if len(blocks) != 0 {
		t.Errorf("blocks = %d, want 0", len(blocks))
	}
}

func TestParse_UnknownTagStaysText(t *testing.T) {
	const msg = `<not_a_tool>x</not_a_tool>`
	blocks := testParser(t).Parse(msg)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	text := textAt(t, blocks, 0)
	if text.Content != msg {
		t.Errorf("content = %q, want input unchanged", text.Content)
	}
}

func TestParse_ThinkingMergedIntoText(t *testing.T) {
	blocks := testParser(t).Parse(
		`<thinking>weighing options</thinking>Let me read it. <read_file><path>a</path></read_file>`)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	text := textAt(t, blocks, 0)
	want := "<thinking>weighing options</thinking>Let me read it."
	if text.Content != want {
		t.Errorf("content = %q, want %q", text.Content, want)
	}
	if use := toolAt(t, blocks, 1); use.Partial {
		t.Error("tool Partial = true, want false")
	}
}

func TestParse_ToolCloseInsideOpaqueContent(t *testing.T) {
	// The tool's closing-tag text appears inside the still-open opaque
	// parameter; the invocation must stay partial.
	blocks := testParser(t).Parse(
		`<write_to_file><path>a</path><content>abc</write_to_file>`)
	use := toolAt(t, blocks, 0)
	if !use.Partial {
		t.Error("Partial = false, want true")
	}
	if got := use.ParamValue("content"); got != "abc</write_to_file>" {
		t.Errorf("content = %q", got)
	}
}

func TestParse_StructuredParam(t *testing.T) {
	blocks := testParser(t).Parse(
		`<use_mcp_tool><server_name>db</server_name><arguments><query>select 1</query><limit>10</limit></arguments></use_mcp_tool>`)
	use := toolAt(t, blocks, 0)
	arg, ok := use.Param("arguments")
	if !ok {
		t.Fatal("arguments param missing")
	}
	if arg.IsLeaf() {
		t.Fatal("arguments should be structured")
	}
	if len(arg.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(arg.Children))
	}
	if arg.Children[0].Name != "query" || arg.Children[0].Value != "select 1" {
		t.Errorf("child 0 = %+v", arg.Children[0])
	}
	if arg.Children[1].Name != "limit" || arg.Children[1].Value != "10" {
		t.Errorf("child 1 = %+v", arg.Children[1])
	}
}

func TestParse_ParamOrderPreserved(t *testing.T) {
	blocks := testParser(t).Parse(
		`<write_to_file><path>a</path><content>b</content></write_to_file>`)
	use := toolAt(t, blocks, 0)
	if len(use.Params) != 2 || use.Params[0].Name != "path" || use.Params[1].Name != "content" {
		t.Errorf("params = %+v", use.Params)
	}
}

func TestParse_IdempotentFlush(t *testing.T) {
	const msg = `pre <read_file><path>a</path></read_file>`
	p := testParser(t)
	want := p.Parse(msg)

	s := NewSession(p)
	s.Feed(msg)
	s.Finish()
	got := s.Finish()

	if len(got) != len(want) {
		t.Fatalf("blocks = %d, want %d", len(got), len(want))
	}
	for i := range want {
		stripID(got[i])
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("block %d: %+v, want %+v", i, got[i], want[i])
		}
	}
}

func stripID(b ContentBlock) {
	if use, ok := b.(*ToolUse); ok {
		use.ID = ""
	}
}

func TestParse_MonotonicPrefixStability(t *testing.T) {
	const msg = "Okay. <thinking>hm</thinking> First:\n" +
		"<read_file><path>main.go</path></read_file>\n" +
		"then <write_to_file><path>out.txt</path><content>data <b>here</b></content></write_to_file> done"
	p := testParser(t)
	full := p.Parse(msg)

	for n := 0; n <= len(msg); n++ {
		prefix := p.Parse(msg[:n])
		if len(prefix) > len(full) {
			t.Fatalf("prefix %d produced more blocks than the full parse", n)
		}
		for i := 0; i < len(prefix)-1; i++ {
			if !reflect.DeepEqual(prefix[i], full[i]) {
				t.Fatalf("prefix %d block %d: %+v, want %+v", n, i, prefix[i], full[i])
			}
		}
	}
}

func TestParse_RoundTripPreservation(t *testing.T) {
	messages := []string{
		`<read_file><path>src/file.ts</path></read_file>`,
		`Here: <read_file><path>a</path></read_file> done`,
		`<not_a_tool>x</not_a_tool>`,
		`plain narrative, value < 100`,
		`<thinking>let me see</thinking>sure`,
	}
	p := testParser(t)
	for _, msg := range messages {
		got := squash(Reconstruct(p.Parse(msg)))
		if want := squash(msg); got != want {
			t.Errorf("round trip of %q: got %q", msg, got)
		}
	}
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestParse_TrailingWhitespaceAfterTool(t *testing.T) {
	blocks := testParser(t).Parse("<read_file><path>a</path></read_file>\n  ")
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (whitespace-only text dropped)", len(blocks))
	}
	if use := toolAt(t, blocks, 0); use.Partial {
		t.Error("Partial = true, want false despite trailing whitespace")
	}
}

func TestParse_TrailingTextAlwaysPartial(t *testing.T) {
	blocks := testParser(t).Parse("just narrative, no terminator")
	text := textAt(t, blocks, 0)
	if !text.Partial {
		t.Error("trailing text must be partial: models end turns without a terminator")
	}
}

func TestParse_NoToolCloseMeansPartial(t *testing.T) {
	// All params closed but the tool tag itself still open.
	blocks := testParser(t).Parse(`<read_file><path>a</path>`)
	if use := toolAt(t, blocks, 0); !use.Partial {
		t.Error("Partial = false, want true")
	}
}

func TestNewParser_Config(t *testing.T) {
	if _, err := NewParser(nil); err == nil {
		t.Error("NewParser(nil) should fail")
	}
	if _, err := NewVocabulary(nil); err == nil {
		t.Error("empty vocabulary should fail")
	}
	if _, err := NewVocabulary([]ToolSpec{{Name: "thinking"}}); err == nil {
		t.Error("reserved tool name should fail")
	}
	if _, err := NewVocabulary([]ToolSpec{{Name: "a.b"}}); err == nil {
		t.Error("dotted tool name should fail")
	}
	if _, err := NewVocabulary([]ToolSpec{{Name: "t", Opaque: []string{"x"}}}); err == nil {
		t.Error("undeclared opaque parameter should fail")
	}
	if _, err := NewVocabulary([]ToolSpec{{Name: "t"}, {Name: "t"}}); err == nil {
		t.Error("duplicate tool should fail")
	}
}
