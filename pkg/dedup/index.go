package dedup

import (
	"context"
	"sync"
	"time"
)

// Mode distinguishes the two InFlightEntry shapes named in §3.
type Mode int

const (
	NonStreaming Mode = iota
	Streaming
)

// Outcome is the terminal result of a Primary's non-streaming attempt,
// delivered to every Subscriber awaiting the same fingerprint.
type Outcome struct {
	Body         []byte
	StatusCode   int
	ProviderUsed string
	Err          error
}

// StreamHandle is an opaque reference to the Broadcaster serving a
// Streaming entry. dedup never constructs or inspects it — the orchestrator
// attaches a *broadcaster.Broadcaster and subscribers type-assert it back.
type StreamHandle interface{}

// Role identifies which side of the dedup protocol an Admit call returned.
type Role int

const (
	RolePrimary Role = iota
	RoleSubscriberNonStreaming
	RoleSubscriberStreaming
)

// Admission is the result of Admit.
type Admission struct {
	Role Role

	// Handle is set when Role == RolePrimary; the caller must eventually
	// call Handle.Complete (non-streaming) or Handle.AttachStream then
	// Handle.Complete (streaming).
	Handle *Handle

	// Future is set when Role == RoleSubscriberNonStreaming.
	Future *Future

	// entry backs RoleSubscriberStreaming so the caller can wait for the
	// primary to attach its broadcaster.
	entry *entry
}

// WaitForStream blocks until the primary attaches its StreamHandle, or ctx
// is done. Only meaningful when Role == RoleSubscriberStreaming. If the
// primary fails before ever attaching a stream, streamReady is closed with
// no stream attached and the primary's error is returned instead.
func (a Admission) WaitForStream(ctx context.Context) (StreamHandle, error) {
	select {
	case <-a.entry.streamReady:
		if a.entry.stream == nil {
			return nil, a.entry.streamErr
		}
		return a.entry.stream, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type entry struct {
	mode   Mode
	future *Future

	stream      StreamHandle
	streamReady chan struct{}
	streamErr   error

	createdAt time.Time
}

// Future delivers a single Outcome to any number of waiters.
type Future struct {
	done   chan struct{}
	result Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks until the Future is completed or ctx is done.
func (f *Future) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (f *Future) complete(o Outcome) {
	f.result = o
	close(f.done)
}

// Handle is returned to the Primary caller so it can report its outcome.
type Handle struct {
	idx *Index
	fp  string
	e   *entry
}

// AttachStream publishes the Broadcaster for a Streaming entry so
// subscribers admitted after this point (and any already blocked in
// WaitForStream) can reach it.
func (h *Handle) AttachStream(s StreamHandle) {
	h.e.stream = s
	close(h.e.streamReady)
}

// Complete reports the Primary's terminal outcome and removes or retains
// the entry per §4.6's grace-window policy.
//
//   - Success: entry removed immediately.
//   - Non-streaming failure: removed immediately too. Every concurrent
//     duplicate is already a Subscriber blocked on the Future and receives
//     the same error the instant Complete runs; retaining the entry would
//     only help a duplicate that arrives *after* completion, letting it
//     attach to the cached error instead of becoming a fresh primary that
//     re-attempts — behavior §9 (Open Question 3) explicitly rejects.
//   - Streaming pump that ended in a classified stream error (§4.7): entry
//     retained for graceWindow. Unlike the non-streaming case, the
//     Broadcaster has already fanned out before the error is known, so a
//     late subscriber during the grace window needs the cached entry to
//     replay the preserved error chunks rather than starting a fresh
//     primary mid-stream.
//   - Caller decides retainForGrace per the above; it is not a free choice.
func (h *Handle) Complete(o Outcome, retainForGrace bool) {
	if h.e.future != nil {
		h.e.future.complete(o)
	}

	if h.e.mode == Streaming {
		select {
		case <-h.e.streamReady:
			// AttachStream already ran; subscribers already hold a handle.
		default:
			h.e.streamErr = o.Err
			close(h.e.streamReady)
		}
	}

	if !retainForGrace || h.idx.graceWindow <= 0 {
		h.idx.remove(h.fp, h.e)
		return
	}

	time.AfterFunc(h.idx.graceWindow, func() {
		h.idx.remove(h.fp, h.e)
	})
}

// Index is the Deduplication Index (§4.6). A single mutex guards the map;
// the critical section is limited to lookup/insert, never I/O.
type Index struct {
	mu          sync.Mutex
	entries     map[string]*entry
	graceWindow time.Duration
}

// NewIndex builds an Index. graceWindow is settings.deduplication's
// sse_error_cleanup_delay (§6).
func NewIndex(graceWindow time.Duration) *Index {
	return &Index{
		entries:     make(map[string]*entry),
		graceWindow: graceWindow,
	}
}

// Admit registers fingerprint fp for mode, or attaches to an existing
// in-flight entry. Concurrent Admit calls for the same fingerprint always
// produce exactly one RolePrimary and the rest Subscribers.
func (idx *Index) Admit(fp string, mode Mode) Admission {
	idx.mu.Lock()
	if e, ok := idx.entries[fp]; ok {
		idx.mu.Unlock()
		if e.mode == NonStreaming {
			return Admission{Role: RoleSubscriberNonStreaming, Future: e.future}
		}
		return Admission{Role: RoleSubscriberStreaming, entry: e}
	}

	e := &entry{mode: mode, createdAt: time.Now(), streamReady: make(chan struct{})}
	if mode == NonStreaming {
		e.future = newFuture()
	}
	idx.entries[fp] = e
	idx.mu.Unlock()

	return Admission{Role: RolePrimary, Handle: &Handle{idx: idx, fp: fp, e: e}}
}

func (idx *Index) remove(fp string, e *entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if current, ok := idx.entries[fp]; ok && current == e {
		delete(idx.entries, fp)
	}
}

// Size reports the number of in-flight entries, used by admin endpoints.
func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries)
}
