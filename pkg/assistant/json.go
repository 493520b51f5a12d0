package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON unmarshals JSON data into v, attempting to repair malformed
// JSON. If the initial unmarshal fails with a syntax error, it tries to
// repair the JSON using jsonrepair before retrying.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// DecodeParamJSON decodes the named leaf parameter's value as JSON into v.
// Some tools carry JSON payloads inside a parameter (an MCP tool's
// arguments, for example); models emit that JSON imperfectly often enough
// that malformed payloads are repaired before decoding.
func (t *ToolUse) DecodeParamJSON(name string, v any) error {
	p, ok := t.Param(name)
	if !ok {
		return fmt.Errorf("assistant: tool %s has no parameter %q", t.Name, name)
	}
	if !p.IsLeaf() {
		return fmt.Errorf("assistant: tool %s parameter %q is structured, not a JSON string", t.Name, name)
	}
	if err := unmarshalJSON([]byte(p.Value), v); err != nil {
		return fmt.Errorf("assistant: decode %s.%s: %w", t.Name, name, err)
	}
	return nil
}
