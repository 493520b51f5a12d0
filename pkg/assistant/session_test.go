package assistant

import (
	"testing"
)

func TestSession_StableToolIDs(t *testing.T) {
	s := NewSession(testParser(t))

	blocks := s.Feed(`<read_file><path>src/`)
	use := toolAt(t, blocks, 0)
	if use.ID == "" {
		t.Fatal("partial tool use should already carry an ID")
	}
	if !use.Partial {
		t.Error("Partial = false, want true")
	}
	id := use.ID

	blocks = s.Feed(`main.go</path></read_file>`)
	use = toolAt(t, blocks, 0)
	if use.ID != id {
		t.Errorf("ID changed across feeds: %q -> %q", id, use.ID)
	}
	if use.Partial {
		t.Error("Partial = true after closing tag arrived")
	}
	if got := use.ParamValue("path"); got != "src/main.go" {
		t.Errorf("path = %q", got)
	}
}

func TestSession_DistinctToolIDs(t *testing.T) {
	s := NewSession(testParser(t))
	blocks := s.Feed(
		`<read_file><path>a</path></read_file><read_file><path>b</path></read_file>`)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	a, b := toolAt(t, blocks, 0), toolAt(t, blocks, 1)
	if a.ID == b.ID {
		t.Error("two invocations share one ID")
	}
}

func TestSession_TextTurnsIntoTool(t *testing.T) {
	s := NewSession(testParser(t))

	blocks := s.Feed("answer <read")
	if _, ok := blocks[len(blocks)-1].(*TextContent); !ok {
		t.Fatalf("last block is %T, want text while the tag is ambiguous", blocks[len(blocks)-1])
	}

	blocks = s.Feed("_file><path>a</path></read_file>")
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	use := toolAt(t, blocks, 1)
	if use.ID == "" || use.Partial {
		t.Errorf("tool = %+v", use)
	}
}

func TestSession_FinishMarksTrailingText(t *testing.T) {
	s := NewSession(testParser(t))
	s.Feed("all done here")
	blocks := s.Finish()
	text := textAt(t, blocks, 0)
	if !text.Partial {
		t.Error("trailing text stays partial even at finish")
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(testParser(t))
	s.Feed(`<read_file><path>a</path>`)
	s.Reset()
	blocks := s.Feed("fresh")
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if got := textAt(t, blocks, 0).Content; got != "fresh" {
		t.Errorf("content = %q (state from before Reset leaked)", got)
	}
}

func TestSession_Raw(t *testing.T) {
	s := NewSession(testParser(t))
	s.Feed("a")
	s.Feed("b")
	if got := s.Raw(); got != "ab" {
		t.Errorf("Raw = %q", got)
	}
}
