package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// sseEvent renders one `event: <type>\ndata: <json>\n\n` frame.
func sseEvent(eventType string, payload interface{}) []byte {
	data, _ := json.Marshal(payload)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: %s\ndata: %s\n\n", eventType, data)
	return buf.Bytes()
}

type toolBlockState struct {
	blockIndex int
	id         string
	name       string
	opened     bool
}

// StreamTranslator converts a sequence of OpenAI SSE chunks into Anthropic
// SSE events (§4.4 "OpenAI streaming → Anthropic SSE"). One instance is used
// per upstream response; Feed is called once per parsed OpenAI chunk in
// arrival order, Finish is called once after the source ends.
type StreamTranslator struct {
	started        bool
	id             string
	model          string
	textBlockIndex int
	textOpened     bool
	nextBlockIndex int
	toolBlocks     map[int]*toolBlockState // keyed by toolCallKey (a hash of the tool call id)
	stopReason     string
	finished       bool
}

// NewStreamTranslator constructs a translator for one response stream.
func NewStreamTranslator() *StreamTranslator {
	return &StreamTranslator{
		textBlockIndex: 0,
		nextBlockIndex: 1,
		toolBlocks:     make(map[int]*toolBlockState),
	}
}

// Feed consumes one OpenAI stream chunk and returns the Anthropic SSE bytes
// it produces (possibly empty).
func (s *StreamTranslator) Feed(chunk *OpenAIStreamChunk) []byte {
	var out bytes.Buffer

	if !s.started {
		s.started = true
		s.id = "msg_" + chunk.ID
		s.model = chunk.Model
		out.Write(sseEvent("message_start", map[string]interface{}{
			"type": "message_start",
			"message": map[string]interface{}{
				"id":      s.id,
				"type":    "message",
				"role":    "assistant",
				"model":   s.model,
				"content": []interface{}{},
				"usage":   map[string]int{"input_tokens": 0, "output_tokens": 0},
			},
		}))
	}

	if len(chunk.Choices) == 0 {
		return out.Bytes()
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		if !s.textOpened {
			s.textOpened = true
			out.Write(sseEvent("content_block_start", map[string]interface{}{
				"type":  "content_block_start",
				"index": s.textBlockIndex,
				"content_block": map[string]interface{}{
					"type": "text",
					"text": "",
				},
			}))
		}
		out.Write(sseEvent("content_block_delta", map[string]interface{}{
			"type":  "content_block_delta",
			"index": s.textBlockIndex,
			"delta": map[string]string{"type": "text_delta", "text": choice.Delta.Content},
		}))
	}

	for _, tc := range choice.Delta.ToolCalls {
		key := toolCallKey(tc)
		state, ok := s.toolBlocks[key]
		if !ok {
			state = &toolBlockState{blockIndex: s.nextBlockIndex, id: tc.ID, name: tc.Function.Name}
			s.nextBlockIndex++
			s.toolBlocks[key] = state
		}
		if !state.opened {
			state.opened = true
			out.Write(sseEvent("content_block_start", map[string]interface{}{
				"type":  "content_block_start",
				"index": state.blockIndex,
				"content_block": map[string]interface{}{
					"type":  "tool_use",
					"id":    state.id,
					"name":  state.name,
					"input": map[string]interface{}{},
				},
			}))
		}
		if tc.Function.Arguments != "" {
			out.Write(sseEvent("content_block_delta", map[string]interface{}{
				"type":  "content_block_delta",
				"index": state.blockIndex,
				"delta": map[string]string{"type": "input_json_delta", "partial_json": tc.Function.Arguments},
			}))
		}
	}

	if choice.FinishReason != nil && *choice.FinishReason != "" {
		s.stopReason = normalizeFinishReason(*choice.FinishReason)
	}

	return out.Bytes()
}

// toolCallKey derives a stable map key since OpenAI tool call deltas don't
// carry an explicit .Index field in this wire shape; the key is derived from
// the id alone (the name is not used).
func toolCallKey(tc openAIToolCall) int {
	// The upstream always supplies a stable id once a tool call opens; hash
	// it into a small int space with a polynomial (base-31) hash. Collisions
	// only matter within one response (at most a handful of concurrent tool
	// calls).
	h := 0
	for _, c := range tc.ID {
		h = h*31 + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}

// Finish closes any still-open content blocks and emits the terminal
// message_delta/message_stop pair. Per the Open Question decision recorded
// in DESIGN.md: a clean EOF without a finish_reason still emits a synthetic
// message_stop (with stop_reason "end_turn") and a logged warning; callers
// distinguish abrupt disconnects by not invoking Finish at all.
func (s *StreamTranslator) Finish(usage *openAIUsage) []byte {
	if s.finished {
		return nil
	}
	s.finished = true

	var out bytes.Buffer
	if s.textOpened {
		out.Write(sseEvent("content_block_stop", map[string]interface{}{
			"type": "content_block_stop", "index": s.textBlockIndex,
		}))
	}
	// s.toolBlocks is keyed by a derived hash, not insertion order; map
	// iteration would emit stops for concurrent tool calls in an arbitrary
	// order, so sort by blockIndex (the order the blocks actually opened in).
	states := make([]*toolBlockState, 0, len(s.toolBlocks))
	for _, state := range s.toolBlocks {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].blockIndex < states[j].blockIndex })
	for _, state := range states {
		if state.opened {
			out.Write(sseEvent("content_block_stop", map[string]interface{}{
				"type": "content_block_stop", "index": state.blockIndex,
			}))
		}
	}

	stopReason := s.stopReason
	synthetic := stopReason == ""
	if synthetic {
		stopReason = "end_turn"
		slog.Warn("upstream stream ended without finish_reason; emitting synthetic message_stop", "message_id", s.id)
	}

	delta := map[string]interface{}{
		"type":  "message_delta",
		"delta": map[string]string{"stop_reason": stopReason},
	}
	if usage != nil {
		delta["usage"] = map[string]int{
			"input_tokens":  usage.PromptTokens,
			"output_tokens": usage.CompletionTokens,
		}
	}
	out.Write(sseEvent("message_delta", delta))
	out.Write(sseEvent("message_stop", map[string]string{"type": "message_stop"}))

	return out.Bytes()
}

// SawFinishReason reports whether an explicit finish_reason was observed,
// distinguishing a natural stop from the synthetic one Finish manufactures.
func (s *StreamTranslator) SawFinishReason() bool {
	return s.stopReason != ""
}
