package assistant

import (
	"context"
	"errors"
	"testing"
)

type readFileArgs struct {
	Path string `json:"path"`
}

func TestNewHandler_SchemaFromArgs(t *testing.T) {
	h := MustNewHandler[readFileArgs]("read_file", "Read a file",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			return arg.Path, nil
		})
	if h.Params == nil {
		t.Fatal("Params schema is nil")
	}
	names := h.ParamNames()
	if len(names) != 1 || names[0] != "path" {
		t.Errorf("ParamNames = %v, want [path]", names)
	}
}

func TestNewHandler_InvalidName(t *testing.T) {
	_, err := NewHandler[readFileArgs]("bad.name", "",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			return nil, nil
		})
	if err == nil {
		t.Error("dotted handler name should fail")
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry()
	var got readFileArgs
	err := reg.Register(MustNewHandler[readFileArgs]("read_file", "Read a file",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			got = arg
			return "ok", nil
		}))
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	use := &ToolUse{
		Name:   "read_file",
		Params: []Param{{Name: "path", Value: "src/main.go"}},
	}
	result, err := reg.Dispatch(context.Background(), use)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v", result)
	}
	if got.Path != "src/main.go" {
		t.Errorf("decoded path = %q", got.Path)
	}
}

func TestRegistry_RefusesPartial(t *testing.T) {
	reg := NewRegistry()
	reg.Register(MustNewHandler[readFileArgs]("read_file", "",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			t.Error("handler invoked for partial tool use")
			return nil, nil
		}))

	use := &ToolUse{Name: "read_file", Partial: true}
	_, err := reg.Dispatch(context.Background(), use)
	if !errors.Is(err, ErrPartialToolUse) {
		t.Errorf("err = %v, want ErrPartialToolUse", err)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Dispatch(context.Background(), &ToolUse{Name: "nope"})
	if err == nil {
		t.Error("unknown tool should error")
	}
}

func TestRegistry_DuplicateHandler(t *testing.T) {
	reg := NewRegistry()
	h := MustNewHandler[readFileArgs]("read_file", "",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			return nil, nil
		})
	if err := reg.Register(h); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if err := reg.Register(h); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestRegistry_Vocabulary(t *testing.T) {
	reg := NewRegistry()
	reg.Register(MustNewHandler[readFileArgs]("read_file", "",
		func(ctx context.Context, use *ToolUse, arg readFileArgs) (any, error) {
			return nil, nil
		}))

	vocab, err := reg.Vocabulary(nil)
	if err != nil {
		t.Fatalf("Vocabulary error: %v", err)
	}
	spec, ok := vocab.Tool("read_file")
	if !ok {
		t.Fatal("read_file missing from derived vocabulary")
	}
	if len(spec.Params) != 1 || spec.Params[0] != "path" {
		t.Errorf("params = %v", spec.Params)
	}
}

func TestParamsJSON_Nested(t *testing.T) {
	use := &ToolUse{
		Name: "use_mcp_tool",
		Params: []Param{
			{Name: "server_name", Value: "db"},
			{Name: "arguments", Children: []Param{{Name: "query", Value: "select 1"}}},
		},
	}
	got, err := use.ParamsJSON()
	if err != nil {
		t.Fatalf("ParamsJSON error: %v", err)
	}
	want := `{"arguments":{"query":"select 1"},"server_name":"db"}`
	if got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}
