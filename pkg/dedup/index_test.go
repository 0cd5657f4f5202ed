package dedup

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdmitFirstIsPrimaryRestAreSubscribers(t *testing.T) {
	idx := NewIndex(time.Second)

	a1 := idx.Admit("fp1", NonStreaming)
	if a1.Role != RolePrimary {
		t.Fatalf("first admit role = %v, want Primary", a1.Role)
	}

	a2 := idx.Admit("fp1", NonStreaming)
	if a2.Role != RoleSubscriberNonStreaming {
		t.Fatalf("second admit role = %v, want SubscriberNonStreaming", a2.Role)
	}

	if idx.Size() != 1 {
		t.Fatalf("size = %d, want 1", idx.Size())
	}
}

func TestNonStreamingSubscriberSeesPrimaryOutcome(t *testing.T) {
	idx := NewIndex(0)
	primary := idx.Admit("fp", NonStreaming)
	sub := idx.Admit("fp", NonStreaming)

	done := make(chan Outcome, 1)
	go func() {
		o, err := sub.Future.Wait(context.Background())
		if err != nil {
			t.Error(err)
		}
		done <- o
	}()

	primary.Handle.Complete(Outcome{Body: []byte("ok"), StatusCode: 200, ProviderUsed: "p1"}, false)

	select {
	case o := <-done:
		if string(o.Body) != "ok" || o.ProviderUsed != "p1" {
			t.Fatalf("got %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never observed outcome")
	}

	if idx.Size() != 0 {
		t.Fatalf("entry not removed after successful completion: size=%d", idx.Size())
	}
}

// The Index honours retainForGrace whatever the entry's mode; the
// orchestrator itself only sets it after a stream ends in an SSE error.
func TestErrorRetainedForGraceWindowWhenRequested(t *testing.T) {
	idx := NewIndex(50 * time.Millisecond)
	primary := idx.Admit("fp", NonStreaming)
	primary.Handle.Complete(Outcome{Err: errors.New("boom")}, true)

	if idx.Size() != 1 {
		t.Fatalf("expected entry retained immediately after error, size=%d", idx.Size())
	}

	// With retainForGrace set, a duplicate admitted during the grace window
	// still observes the identical error via the same Future.
	dup := idx.Admit("fp", NonStreaming)
	if dup.Role != RoleSubscriberNonStreaming {
		t.Fatalf("expected subscriber during grace window, got %v", dup.Role)
	}
	o, err := dup.Future.Wait(context.Background())
	if err != nil || o.Err == nil {
		t.Fatalf("expected shared error outcome, got o=%+v err=%v", o, err)
	}

	time.Sleep(100 * time.Millisecond)
	if idx.Size() != 0 {
		t.Fatalf("entry still present after grace window elapsed: size=%d", idx.Size())
	}
}

func TestStreamingSubscriberWaitsForAttach(t *testing.T) {
	idx := NewIndex(time.Second)
	primary := idx.Admit("fp", Streaming)
	sub := idx.Admit("fp", Streaming)
	if sub.Role != RoleSubscriberStreaming {
		t.Fatalf("role = %v, want SubscriberStreaming", sub.Role)
	}

	type fakeHandle struct{ tag string }
	go primary.Handle.AttachStream(&fakeHandle{tag: "broadcaster"})

	h, err := sub.WaitForStream(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fh, ok := h.(*fakeHandle)
	if !ok || fh.tag != "broadcaster" {
		t.Fatalf("got %+v", h)
	}
}

func TestStreamingSubscriberSeesPrimaryFailureBeforeAttach(t *testing.T) {
	idx := NewIndex(time.Second)
	primary := idx.Admit("fp", Streaming)
	sub := idx.Admit("fp", Streaming)

	primary.Handle.Complete(Outcome{Err: errors.New("upstream unreachable")}, true)

	_, err := sub.WaitForStream(context.Background())
	if err == nil || err.Error() != "upstream unreachable" {
		t.Fatalf("got %v, want primary's error", err)
	}
}

func TestStreamingErrorRetainedForGraceWindow(t *testing.T) {
	idx := NewIndex(50 * time.Millisecond)
	primary := idx.Admit("fp", Streaming)
	primary.Handle.Complete(Outcome{Err: errors.New("stream error event")}, true)

	if idx.Size() != 1 {
		t.Fatalf("expected entry retained immediately after stream error, size=%d", idx.Size())
	}

	dup := idx.Admit("fp", Streaming)
	if dup.Role != RoleSubscriberStreaming {
		t.Fatalf("expected subscriber during grace window, got %v", dup.Role)
	}
	_, err := dup.WaitForStream(context.Background())
	if err == nil || err.Error() != "stream error event" {
		t.Fatalf("expected shared stream error, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if idx.Size() != 0 {
		t.Fatalf("entry still present after grace window elapsed: size=%d", idx.Size())
	}
}
