// Package dedup implements the Deduplication Index (§4.6): admitting
// concurrent requests sharing a fingerprint as one Primary execution and N
// Subscribers.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"provider-balancer/balancer/pkg/translate"
)

// Fingerprint computes the stable SHA-256 digest over the fields named in
// §6: model, messages, system, tools, tool_choice, temperature, top_p,
// top_k, max_tokens, stop_sequences, stream. The pinned `provider` field is
// excluded. Canonicalization re-marshals every JSON value through Go's map
// encoder, which sorts object keys, so permuting input key order never
// changes the digest (Testable Property 5).
func Fingerprint(req *translate.AnthropicRequest) (string, error) {
	canon := map[string]interface{}{
		"model":          req.Model,
		"max_tokens":     req.MaxTokens,
		"temperature":    req.Temperature,
		"top_p":          req.TopP,
		"top_k":          req.TopK,
		"stop_sequences": req.StopSequences,
		"stream":         req.Stream,
	}

	messages := make([]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		var content interface{}
		if len(m.Content) > 0 {
			_ = json.Unmarshal(m.Content, &content)
		}
		messages = append(messages, map[string]interface{}{
			"role":    m.Role,
			"content": content,
		})
	}
	canon["messages"] = messages

	if len(req.System) > 0 {
		var system interface{}
		_ = json.Unmarshal(req.System, &system)
		canon["system"] = system
	}

	if len(req.Tools) > 0 {
		tools := make([]interface{}, 0, len(req.Tools))
		for _, t := range req.Tools {
			var schema interface{}
			if len(t.InputSchema) > 0 {
				_ = json.Unmarshal(t.InputSchema, &schema)
			}
			tools = append(tools, map[string]interface{}{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": schema,
			})
		}
		canon["tools"] = tools
	}

	if len(req.ToolChoice) > 0 {
		var choice interface{}
		_ = json.Unmarshal(req.ToolChoice, &choice)
		canon["tool_choice"] = choice
	}

	encoded, err := canonicalJSON(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON marshals v with map keys sorted at every level and no
// insignificant whitespace. encoding/json already sorts map[string]any keys
// and omits whitespace by default, so this is a thin, explicitly-named
// wrapper documenting that guarantee rather than a from-scratch canonicalizer.
func canonicalJSON(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// normalize round-trips v through JSON so that nested structures (including
// ones built from json.RawMessage) become map[string]interface{}/[]interface{}
// with deterministic key ordering on the next Marshal.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return sortedCopy(out), nil
}

func sortedCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			out[k] = sortedCopy(t[k])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = sortedCopy(e)
		}
		return out
	default:
		return v
	}
}
