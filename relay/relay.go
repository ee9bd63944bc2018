// Package relay bridges a streaming completion into a framed event sequence
// for a live consumer while reconstructing the full text for history
// persistence. Forwarding and accumulation read the same ordered chunk
// sequence, so the events a client sees and the text that gets persisted
// can never diverge.
package relay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/parley-hq/parley/core"
	"github.com/parley-hq/parley/provider"
)

// Event is one framed increment delivered to the consumer. It carries the
// session id so a client that opened its first turn without one learns it
// from the first event.
type Event struct {
	Chunk     string `json:"chunk"`
	SessionID string `json:"session_id"`
}

// eventBuffer bounds the producer/consumer channel. A slow consumer applies
// backpressure to the upstream pull instead of buffering unboundedly.
const eventBuffer = 16

// Run starts the relay over stream and returns the event channel plus a
// one-shot error channel. A producer goroutine pulls chunks in arrival
// order, accumulates them, and forwards each non-empty chunk as an Event.
// The event channel is closed when the stream ends for any reason.
//
// On clean exhaustion with a non-empty accumulator, exactly one assistant
// message holding the concatenated text is appended to hist. An empty
// stream appends nothing.
//
// On upstream failure mid-stream the error is delivered on the error
// channel and the partial text is discarded; an incomplete answer is never
// persisted as if it were a full one. Cancelling ctx (consumer disconnect)
// stops the pull, closes the upstream stream, and likewise persists
// nothing further.
func Run(ctx context.Context, stream provider.ChunkStream, hist *core.History, log *slog.Logger) (<-chan Event, <-chan error) {
	events := make(chan Event, eventBuffer)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		defer stream.Close()

		var full strings.Builder
		for stream.Next() {
			chunk := stream.Text()
			full.WriteString(chunk)

			select {
			case events <- Event{Chunk: chunk, SessionID: hist.SessionID()}:
			case <-ctx.Done():
				log.Info("relay cancelled by consumer", "session_id", hist.SessionID())
				return
			}
		}

		if err := stream.Err(); err != nil {
			log.Warn("upstream stream failed, discarding partial text",
				"session_id", hist.SessionID(), "error", err)
			errc <- err
			return
		}
		if ctx.Err() != nil {
			return
		}

		if full.Len() > 0 {
			if _, err := hist.Append(core.RoleAssistant, full.String()); err != nil {
				errc <- err
			}
		}
	}()

	return events, errc
}
