// Package translate implements the Format Translator (§4.4): a bidirectional
// mapping between the Anthropic Messages wire schema (the fixed client
// contract) and the OpenAI chat-completions wire schema used by
// OpenAICompatible providers.
//
// Anthropic is always the canonical external format; this package only
// translates when the selected provider speaks OpenAI. Content blocks are
// modeled as a tagged sum (§9 REDESIGN FLAGS) rather than the teacher's flat
// struct-with-optional-fields, so the translator can exhaustively switch on
// block kind instead of probing which fields happen to be set.
package translate

import "encoding/json"

// ContentBlockKind tags the variant held by a ContentBlock.
type ContentBlockKind string

const (
	BlockText       ContentBlockKind = "text"
	BlockImage      ContentBlockKind = "image"
	BlockToolUse    ContentBlockKind = "tool_use"
	BlockToolResult ContentBlockKind = "tool_result"
)

// ContentBlock is the tagged-sum representation of one Anthropic content
// block. Exactly the fields relevant to Kind are populated; translators
// switch exhaustively over Kind and treat an unrecognized Kind as a hard
// validation error rather than silently dropping it.
type ContentBlock struct {
	Kind ContentBlockKind

	// BlockText
	Text string

	// BlockImage
	ImageMediaType string
	ImageData      string // base64 payload, no "data:" prefix

	// BlockToolUse
	ToolUseID    string
	ToolUseName  string
	ToolUseInput json.RawMessage

	// BlockToolResult
	ToolResultID      string
	ToolResultContent json.RawMessage // string, or array of content blocks, pre-serialization
	ToolResultIsError bool
}

// AnthropicMessage is one entry in the Anthropic `messages` array. Content is
// kept as raw JSON on the wire and decoded into []ContentBlock by
// DecodeContent, since Anthropic allows either a bare string or a block
// array for message content.
type AnthropicMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// AnthropicTool is a tool definition in Anthropic's `tools` array.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// AnthropicRequest is the inbound `POST /v1/messages` body, and also the
// shape produced when translating an OpenAI-bound request back for
// passthrough logging/fingerprinting.
type AnthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []AnthropicMessage `json:"messages"`
	System        json.RawMessage    `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   *float64           `json:"temperature,omitempty"`
	TopP          *float64           `json:"top_p,omitempty"`
	TopK          *int               `json:"top_k,omitempty"`
	Stream        bool               `json:"stream,omitempty"`
	Tools         []AnthropicTool    `json:"tools,omitempty"`
	ToolChoice    json.RawMessage    `json:"tool_choice,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`

	// Provider is the non-standard pinning field named in §6; it is
	// stripped before fingerprinting and before forwarding upstream.
	Provider string `json:"provider,omitempty"`
}

// AnthropicResponseBlock is one entry in a non-streaming response's
// `content` array.
type AnthropicResponseBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// AnthropicUsage mirrors Anthropic's usage block.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AnthropicResponse is the non-streaming `POST /v1/messages` success body.
type AnthropicResponse struct {
	ID           string                   `json:"id"`
	Type         string                   `json:"type"`
	Role         string                   `json:"role"`
	Content      []AnthropicResponseBlock `json:"content"`
	Model        string                   `json:"model"`
	StopReason   string                   `json:"stop_reason"`
	StopSequence string                   `json:"stop_sequence,omitempty"`
	Usage        AnthropicUsage           `json:"usage"`
}

// AnthropicErrorBody is the shape checked for when classifying a 2xx
// response that is, in fact, an Anthropic-style error (§4.2 "ApiError").
type AnthropicErrorBody struct {
	Type  string `json:"type"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// IsErrorBody reports whether body decodes as an Anthropic error envelope.
func IsErrorBody(body []byte) (msg string, kind string, ok bool) {
	var e AnthropicErrorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return "", "", false
	}
	if e.Type == "error" && e.Error != nil {
		return e.Error.Message, e.Error.Type, true
	}
	return "", "", false
}

// OpenAI chat-completions wire types.

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    *string          `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openAIFunctionCall `json:"function"`
}

type openAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAITool struct {
	Type     string             `json:"type"`
	Function openAIFunctionSpec `json:"function"`
}

type openAIFunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// OpenAIRequest is the outbound body sent to an OpenAICompatible provider.
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  interface{}     `json:"tool_choice,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// OpenAIResponse is a non-streaming chat-completions response.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIStreamDelta struct {
	Role      string           `json:"role,omitempty"`
	Content   string           `json:"content,omitempty"`
	ToolCalls []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIStreamChoice struct {
	Index        int               `json:"index"`
	Delta        openAIStreamDelta `json:"delta"`
	FinishReason *string           `json:"finish_reason"`
}

// OpenAIStreamChunk is one `data:` line of an OpenAI SSE stream.
type OpenAIStreamChunk struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []openAIStreamChoice `json:"choices"`
	Usage   *openAIUsage         `json:"usage,omitempty"`
}
