// Package provider adapts conversation histories into requests against an
// upstream large-language-model service. It exposes blocking and streaming
// chat completions plus embeddings and audio transcription.
package provider

import (
	"context"

	"github.com/parley-hq/parley/core"
)

// ChunkStream is a lazy, single-pass, forward-only sequence of text
// fragments from a streaming completion. It is not restartable; a new
// stream means a new upstream request.
//
// Typical use:
//
//	for stream.Next() {
//	    use(stream.Text())
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Next never yields an empty fragment; empty upstream deltas are skipped.
// Close releases the underlying connection and must be called when the
// consumer stops before exhaustion.
type ChunkStream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Provider is the interface for LLM backends. Implementations must be safe
// for concurrent use.
type Provider interface {
	// Complete dispatches a blocking chat completion and returns the full
	// generated text.
	Complete(ctx context.Context, messages []core.Message, cfg Config) (string, error)

	// CompleteStream opens a streaming chat completion. The returned stream
	// terminates when the provider signals completion.
	CompleteStream(ctx context.Context, messages []core.Message, cfg Config) (ChunkStream, error)

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Transcribe converts the audio file at audioPath to text. language is
	// an optional ISO 639-1 code ("" lets the model detect it).
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}
