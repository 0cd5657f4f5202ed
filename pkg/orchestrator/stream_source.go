package orchestrator

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"provider-balancer/balancer/pkg/translate"
)

// passthroughSource forwards an Anthropic-native upstream's SSE bytes
// verbatim — the provider already speaks the client's wire format, so the
// Broadcaster's buffer is exactly what was received (§4.4: translation
// only happens for OpenAICompatible providers).
type passthroughSource struct {
	r   io.Reader
	buf [4096]byte
}

func (s *passthroughSource) Next() ([]byte, error) {
	n, err := s.r.Read(s.buf[:])
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		return chunk, err
	}
	return nil, err
}

// translatingSource parses an OpenAI-compatible upstream's SSE stream line
// by line and feeds each `data:` payload through a StreamTranslator,
// yielding Anthropic-shaped SSE bytes instead of the raw upstream bytes.
type translatingSource struct {
	scanner    *bufio.Scanner
	translator *translate.StreamTranslator
	done       bool
}

func newTranslatingSource(r io.Reader, translator *translate.StreamTranslator) *translatingSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &translatingSource{scanner: scanner, translator: translator}
}

func (s *translatingSource) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if bytes.Equal(data, []byte("[DONE]")) {
			s.done = true
			return s.translator.Finish(nil), io.EOF
		}

		var chunk translate.OpenAIStreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			continue // skip malformed frames rather than aborting the whole stream
		}
		out := s.translator.Feed(&chunk)
		if len(out) > 0 {
			return out, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return s.translator.Finish(nil), io.EOF
}
