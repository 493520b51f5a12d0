package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrPartialToolUse is returned when a still-partial invocation is
// dispatched. Wait for Partial to turn false.
var ErrPartialToolUse = errors.New("assistant: tool use is still partial")

// InvokeFunc executes a tool call. T is the decoded argument type; the
// registry decodes the invocation's parameters into it before the call.
type InvokeFunc[T any] func(ctx context.Context, use *ToolUse, arg T) (any, error)

// Handler executes one tool. Build it with NewHandler so the parameter
// schema is derived from the argument type.
type Handler struct {
	Name        string
	Description string

	// Params describes the tool's parameters as a JSON schema, derived
	// from the handler's argument type.
	Params *jsonschema.Schema

	Invoke InvokeFunc[string]
}

// NewHandler builds a Handler whose parameters are the fields of Args.
// Parameter values arrive as strings; declare Args fields accordingly and
// convert inside the handler.
func NewHandler[Args any](name, description string, fn InvokeFunc[Args]) (*Handler, error) {
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("assistant: invalid tool name %q", name)
	}
	schema, err := jsonschema.For[Args](nil)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		Name:        name,
		Description: description,
		Params:      schema,
	}
	h.Invoke = func(ctx context.Context, use *ToolUse, arg string) (any, error) {
		var v Args
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			return nil, fmt.Errorf("assistant: decode %s args %q: %w", name, arg, err)
		}
		return fn(ctx, use, v)
	}
	return h, nil
}

// MustNewHandler is NewHandler that panics on configuration errors.
func MustNewHandler[Args any](name, description string, fn InvokeFunc[Args]) *Handler {
	h, err := NewHandler(name, description, fn)
	if err != nil {
		panic(err)
	}
	return h
}

// ParamNames returns the handler's parameter names in sorted order.
func (h *Handler) ParamNames() []string {
	if h.Params == nil {
		return nil
	}
	names := make([]string, 0, len(h.Params.Properties))
	for name := range h.Params.Properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Registry maps tool names to handlers and dispatches completed
// invocations.
type Registry struct {
	order    []string
	handlers map[string]*Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

// Register adds a handler. Duplicate names are configuration errors.
func (r *Registry) Register(h *Handler) error {
	if _, dup := r.handlers[h.Name]; dup {
		return fmt.Errorf("assistant: duplicate handler %q", h.Name)
	}
	r.order = append(r.order, h.Name)
	r.handlers[h.Name] = h
	return nil
}

// Handler returns the named handler and whether it exists.
func (r *Registry) Handler(name string) (*Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Dispatch looks up the invocation's handler and invokes it with the
// parameters rendered as a JSON object. A partial invocation is refused with
// ErrPartialToolUse; an unknown tool name is a host configuration mismatch
// and returns an error rather than degrading silently.
func (r *Registry) Dispatch(ctx context.Context, use *ToolUse) (any, error) {
	if use.Partial {
		slog.Warn("assistant/registry: refusing partial tool use", "tool", use.Name, "id", use.ID)
		return nil, ErrPartialToolUse
	}
	h, ok := r.handlers[use.Name]
	if !ok {
		return nil, fmt.Errorf("assistant: no handler for tool %q", use.Name)
	}
	arg, err := use.ParamsJSON()
	if err != nil {
		return nil, err
	}
	return h.Invoke(ctx, use, arg)
}

// Vocabulary derives the parser vocabulary from the registered handlers.
// opaque maps a tool name to the parameters whose values must never be
// parsed as markup.
func (r *Registry) Vocabulary(opaque map[string][]string) (*Vocabulary, error) {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, ToolSpec{
			Name:   name,
			Params: r.handlers[name].ParamNames(),
			Opaque: opaque[name],
		})
	}
	return NewVocabulary(specs)
}

// ParamsJSON renders the invocation's parameters as a JSON object: leaf
// values as strings, structured parameters as nested objects.
func (t *ToolUse) ParamsJSON() (string, error) {
	b, err := json.Marshal(paramsObject(t.Params))
	if err != nil {
		return "", fmt.Errorf("assistant: encode %s params: %w", t.Name, err)
	}
	return string(b), nil
}

func paramsObject(params []Param) map[string]any {
	obj := make(map[string]any, len(params))
	for _, p := range params {
		if p.IsLeaf() {
			obj[p.Name] = p.Value
		} else {
			obj[p.Name] = paramsObject(p.Children)
		}
	}
	return obj
}
