package broadcaster

import (
	"bytes"
	"encoding/json"
)

var errorEventPrefix = []byte("event: error")

// ScanForErrorEvent implements post_stream_check (§4.7): a textual scan of
// the recorded chunks for an `event: error` SSE frame. It returns the error
// message from the frame's `data:` payload when one exists.
func ScanForErrorEvent(chunks [][]byte) (found bool, message string) {
	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(c)
	}
	raw := buf.Bytes()

	idx := bytes.Index(raw, errorEventPrefix)
	if idx == -1 {
		return false, ""
	}

	rest := raw[idx:]
	dataIdx := bytes.Index(rest, []byte("data:"))
	if dataIdx == -1 {
		return true, "stream terminated with an error event"
	}
	line := rest[dataIdx+len("data:"):]
	if nl := bytes.IndexByte(line, '\n'); nl != -1 {
		line = line[:nl]
	}
	line = bytes.TrimSpace(line)

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(line, &payload); err == nil && payload.Error.Message != "" {
		return true, payload.Error.Message
	}
	return true, "stream terminated with an error event"
}
