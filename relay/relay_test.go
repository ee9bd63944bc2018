package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/parley-hq/parley/core"
)

// fakeStream is a ChunkStream test double backed by a chunk slice. A
// non-nil err surfaces after the chunks are exhausted, mimicking an
// upstream failure mid-stream.
type fakeStream struct {
	chunks []string
	err    error

	idx    int
	text   string
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.idx >= len(s.chunks) {
		return false
	}
	s.text = s.chunks[s.idx]
	s.idx++
	return true
}

func (s *fakeStream) Text() string { return s.text }
func (s *fakeStream) Err() error   { return s.err }
func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collect(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestRun_OrderAndPersistence(t *testing.T) {
	hist := core.NewHistory("")
	if _, err := hist.Append(core.RoleUser, "hi"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	chunks := []string{"Hel", "lo", " world"}
	stream := &fakeStream{chunks: chunks}

	events, errc := Run(context.Background(), stream, hist, discardLogger())
	got := collect(events)

	select {
	case err := <-errc:
		t.Fatalf("unexpected relay error: %v", err)
	default:
	}

	if len(got) != len(chunks) {
		t.Fatalf("expected %d events, got %d", len(chunks), len(got))
	}
	for i, ev := range got {
		if ev.Chunk != chunks[i] {
			t.Errorf("event %d chunk = %q, want %q", i, ev.Chunk, chunks[i])
		}
		if ev.SessionID != hist.SessionID() {
			t.Errorf("event %d session id = %q, want %q", i, ev.SessionID, hist.SessionID())
		}
	}

	msgs := hist.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(msgs))
	}
	last := msgs[len(msgs)-1]
	if last.Role != core.RoleAssistant {
		t.Fatalf("last role = %q, want assistant", last.Role)
	}
	if want := strings.Join(chunks, ""); last.Content != want {
		t.Fatalf("persisted text = %q, want %q", last.Content, want)
	}
	if !stream.closed {
		t.Error("stream must be closed after exhaustion")
	}
}

func TestRun_EmptyStream(t *testing.T) {
	hist := core.NewHistory("")
	stream := &fakeStream{}

	events, errc := Run(context.Background(), stream, hist, discardLogger())
	if got := collect(events); len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}

	select {
	case err := <-errc:
		t.Fatalf("unexpected relay error: %v", err)
	default:
	}

	if hist.Len() != 0 {
		t.Fatal("an empty stream must not persist an assistant message")
	}
}

func TestRun_UpstreamFailureDiscardsPartial(t *testing.T) {
	hist := core.NewHistory("")
	upstreamErr := errors.New("connection reset")
	stream := &fakeStream{chunks: []string{"par", "tial"}, err: upstreamErr}

	events, errc := Run(context.Background(), stream, hist, discardLogger())
	got := collect(events)

	if len(got) != 2 {
		t.Fatalf("expected the two chunks that arrived, got %d events", len(got))
	}

	select {
	case err := <-errc:
		if !errors.Is(err, upstreamErr) {
			t.Fatalf("relay error = %v, want %v", err, upstreamErr)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an error on the error channel")
	}

	if hist.Len() != 0 {
		t.Fatal("partial text must not be persisted after an upstream failure")
	}
	if !stream.closed {
		t.Error("stream must be closed after a failure")
	}
}

func TestRun_ConsumerCancel(t *testing.T) {
	hist := core.NewHistory("")

	// Enough chunks that the producer must block on the bounded channel.
	chunks := make([]string, 100)
	for i := range chunks {
		chunks[i] = "x"
	}
	stream := &fakeStream{chunks: chunks}

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := Run(ctx, stream, hist, discardLogger())

	<-events // take one event, then walk away
	cancel()

	// Drain whatever was already buffered; the channel must close.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				if hist.Len() != 0 {
					t.Fatal("a cancelled relay must not persist an assistant message")
				}
				if !stream.closed {
					t.Error("stream must be closed after cancellation")
				}
				return
			}
		case <-deadline:
			t.Fatal("event channel did not close after cancellation")
		}
	}
}
