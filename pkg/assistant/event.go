package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// BlockType identifies the kind of a BlockEvent.
type BlockType string

// Block type constants.
const (
	BlockTypeText    BlockType = "text"
	BlockTypeToolUse BlockType = "tool_use"
)

var validBlockTypes = map[string]struct{}{
	string(BlockTypeText):    {},
	string(BlockTypeToolUse): {},
}

// IsValid returns true if the block type is valid.
func (t BlockType) IsValid() bool {
	_, ok := validBlockTypes[string(t)]
	return ok
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (t *BlockType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	bt := BlockType(s)
	if !bt.IsValid() {
		return fmt.Errorf("invalid block type: %q", s)
	}
	*t = bt
	return nil
}

// UnmarshalMsgpack implements msgpack.Unmarshaler with validation.
func (t *BlockType) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	bt := BlockType(s)
	if !bt.IsValid() {
		return fmt.Errorf("invalid block type: %q", s)
	}
	*t = bt
	return nil
}

// BlockEvent is the wire form of a ContentBlock, used by the CLI and the
// dev stream server. It flattens the block union into one tagged struct so
// consumers in any language can switch on Type.
type BlockEvent struct {
	Type    BlockType `json:"type" yaml:"type" msgpack:"type"`
	ID      string    `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Text    string    `json:"text,omitempty" yaml:"text,omitempty" msgpack:"text,omitempty"`
	Tool    string    `json:"tool,omitempty" yaml:"tool,omitempty" msgpack:"tool,omitempty"`
	Params  []Param   `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	Partial bool      `json:"partial" yaml:"partial" msgpack:"partial"`
}

// EventFromBlock converts one block to its wire form.
func EventFromBlock(b ContentBlock) BlockEvent {
	switch v := b.(type) {
	case *TextContent:
		return BlockEvent{
			Type:    BlockTypeText,
			Text:    v.Content,
			Partial: v.Partial,
		}
	case *ToolUse:
		return BlockEvent{
			Type:    BlockTypeToolUse,
			ID:      v.ID,
			Tool:    v.Name,
			Params:  v.Params,
			Partial: v.Partial,
		}
	}
	return BlockEvent{}
}

// EventsFromBlocks converts a block sequence to its wire form.
func EventsFromBlocks(blocks []ContentBlock) []BlockEvent {
	out := make([]BlockEvent, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, EventFromBlock(b))
	}
	return out
}
