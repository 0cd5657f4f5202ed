package translate

import (
	"encoding/json"
	"fmt"
)

// wireBlock mirrors the union of fields Anthropic uses across its four
// content-block kinds; DecodeContent narrows each into a ContentBlock.
type wireBlock struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Source *struct {
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	} `json:"source,omitempty"`

	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// DecodeContent parses an Anthropic message's `content` field, which is
// either a bare string (a single implicit text block) or an array of typed
// blocks, into the tagged-sum ContentBlock representation.
func DecodeContent(raw json.RawMessage) ([]ContentBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []ContentBlock{{Kind: BlockText, Text: asString}}, nil
	}

	var wire []wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("content is neither a string nor a block array: %w", err)
	}

	blocks := make([]ContentBlock, 0, len(wire))
	for _, w := range wire {
		switch w.Type {
		case "text":
			blocks = append(blocks, ContentBlock{Kind: BlockText, Text: w.Text})
		case "image":
			b := ContentBlock{Kind: BlockImage}
			if w.Source != nil {
				b.ImageMediaType = w.Source.MediaType
				b.ImageData = w.Source.Data
			}
			blocks = append(blocks, b)
		case "tool_use":
			blocks = append(blocks, ContentBlock{
				Kind:         BlockToolUse,
				ToolUseID:    w.ID,
				ToolUseName:  w.Name,
				ToolUseInput: w.Input,
			})
		case "tool_result":
			blocks = append(blocks, ContentBlock{
				Kind:              BlockToolResult,
				ToolResultID:      w.ToolUseID,
				ToolResultContent: w.Content,
				ToolResultIsError: w.IsError,
			})
		default:
			return nil, fmt.Errorf("unrecognized content block type %q", w.Type)
		}
	}
	return blocks, nil
}

// toolResultText renders a tool_result block's content as a plain string per
// the §4.4 rule: string as-is; array of text blocks joined by "\n"; other
// JSON values JSON-encoded; anything unparseable becomes an explicit
// error-shaped text.
func toolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var blocks []wireBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		allText := true
		texts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			if b.Type != "text" {
				allText = false
				break
			}
			texts = append(texts, b.Text)
		}
		if allText {
			out := ""
			for i, t := range texts {
				if i > 0 {
					out += "\n"
				}
				out += t
			}
			return out
		}
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err == nil {
		encoded, err := json.Marshal(generic)
		if err == nil {
			return string(encoded)
		}
	}
	return fmt.Sprintf(`{"error":"unserializable tool_result content"}`)
}
