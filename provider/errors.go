package provider

import "errors"

var (
	// ErrInvalidConfig is returned when completion sampling parameters are
	// out of range. It fires at request construction, before any network call.
	ErrInvalidConfig = errors.New("invalid completion config")

	// ErrEmptyInput is returned by Embed for empty or whitespace-only text.
	ErrEmptyInput = errors.New("empty input")

	// ErrUpstream wraps transport or API failures from the model provider.
	ErrUpstream = errors.New("upstream provider error")

	// ErrTranscription wraps provider failures during audio transcription.
	ErrTranscription = errors.New("transcription failed")
)
