// Package broadcaster implements the Broadcaster (§4.7): for one upstream
// SSE stream, fans chunks out to N subscribers, replays buffered chunks to
// late joiners, and isolates slow/disconnected subscribers from the pump
// and from each other.
package broadcaster

import (
	"errors"
	"io"
	"sync"
)

// TerminalState is the Broadcaster's final resting state once the pump has
// stopped reading from the upstream source.
type TerminalState int

const (
	TerminalNone TerminalState = iota
	TerminalCompleted
	TerminalErrored
	TerminalAborted
)

// ChunkSource yields raw upstream byte chunks. Next returns io.EOF (with no
// further chunk) on a clean end; any other non-nil error is treated as an
// upstream failure.
type ChunkSource interface {
	Next() (chunk []byte, err error)
}

type subscriber struct {
	ch chan []byte
}

// Broadcaster owns the append-only chunk buffer and the live subscriber
// set for one upstream stream. A single mutex serializes buffer mutation
// and subscriber add/remove/fan-out; the pump goroutine is the sole
// appender, matching the concurrency discipline in §5.
type Broadcaster struct {
	RequestID    string
	ProviderName string

	defaultBound int

	mu          sync.Mutex
	chunks      [][]byte
	subscribers map[int]*subscriber
	nextSubID   int
	terminal    TerminalState
	terminalErr error
	done        chan struct{}
}

// New builds a Broadcaster not yet pumping. defaultBound is the per-
// subscriber outbound queue capacity beyond what's needed to replay the
// buffer seen so far (§5 backpressure).
func New(requestID, providerName string, defaultBound int) *Broadcaster {
	if defaultBound <= 0 {
		defaultBound = 256
	}
	return &Broadcaster{
		RequestID:    requestID,
		ProviderName: providerName,
		defaultBound: defaultBound,
		subscribers:  make(map[int]*subscriber),
		done:         make(chan struct{}),
	}
}

// Subscribe attaches a new subscriber and returns its id, a channel
// delivering a prefix-complete view (replay of buffered chunks, then live
// chunks, in order, no gaps), and the Broadcaster's terminal state at
// subscribe time (TerminalNone if still pumping). If the stream has already
// terminated, the channel carries only the replay and is then closed.
func (b *Broadcaster) Subscribe() (id int, ch <-chan []byte, terminal TerminalState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextSubID
	b.nextSubID++

	capacity := len(b.chunks) + b.defaultBound
	out := make(chan []byte, capacity)
	for _, c := range b.chunks {
		out <- c // always fits: capacity reserves room for the full replay
	}

	if b.terminal != TerminalNone {
		close(out)
		return id, out, b.terminal
	}

	b.subscribers[id] = &subscriber{ch: out}
	return id, out, TerminalNone
}

// Unsubscribe removes a subscriber without affecting the pump or any other
// subscriber — used on client disconnect detection.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

// SubscriberCount reports the number of currently attached subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Broadcaster) broadcast(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = append(b.chunks, chunk)
	for id, sub := range b.subscribers {
		select {
		case sub.ch <- chunk:
		default:
			// Subscriber fell behind its bound: evict without touching the
			// pump or any other subscriber.
			close(sub.ch)
			delete(b.subscribers, id)
		}
	}
}

func (b *Broadcaster) terminate(state TerminalState, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminal != TerminalNone {
		return
	}
	b.terminal = state
	b.terminalErr = err
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	close(b.done)
}

// Pump drives source to completion, appending each chunk to the buffer and
// fanning it out. It runs on its own goroutine; call it as `go b.Pump(src)`.
// Disconnecting the last subscriber never stops the pump — it keeps
// draining source so the Health Tracker observes the full outcome (§4.7).
func (b *Broadcaster) Pump(source ChunkSource) {
	for {
		chunk, err := source.Next()
		if len(chunk) > 0 {
			b.broadcast(chunk)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.terminate(TerminalCompleted, nil)
			} else {
				b.terminate(TerminalErrored, err)
			}
			return
		}
	}
}

// Abort forces an immediate terminal state without draining source further.
// Not used by the default orchestrator path (§5 says the default does not
// abort on last-subscriber-disconnect); exposed for an operator-configured
// deadline switch.
func (b *Broadcaster) Abort() {
	b.terminate(TerminalAborted, nil)
}

// Done is closed once the pump has reached a terminal state.
func (b *Broadcaster) Done() <-chan struct{} {
	return b.done
}

// Terminal returns the current terminal state and, if errored, the cause.
func (b *Broadcaster) Terminal() (TerminalState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terminal, b.terminalErr
}

// Chunks returns a snapshot copy of every chunk recorded so far, used by
// post-stream health classification.
func (b *Broadcaster) Chunks() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.chunks))
	copy(out, b.chunks)
	return out
}
