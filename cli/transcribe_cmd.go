package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/parley-hq/parley/provider"
)

// runTranscribe transcribes an audio file and prints the text to stdout.
func runTranscribe(args []string) int {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)

	var (
		language string
		baseURL  string
	)

	fs.StringVar(&language, "language", "", "ISO 639-1 language code (e.g., \"en\"); detected when empty")
	fs.StringVar(&baseURL, "base-url", "", "custom OpenAI-compatible API base URL")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: parley transcribe <audio-file> [flags]")
		return 2
	}
	audioPath := fs.Arg(0)

	if os.Getenv("OPENAI_API_KEY") == "" && baseURL == "" {
		fmt.Fprintln(os.Stderr, "error: OPENAI_API_KEY environment variable is required (or set --base-url for a local endpoint)")
		return 2
	}

	var opts []provider.OpenAIOption
	if baseURL != "" {
		opts = append(opts, provider.WithBaseURL(baseURL))
	}
	p := provider.NewOpenAI(opts...)

	text, err := p.Transcribe(context.Background(), audioPath, language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	fmt.Println(text)
	return 0
}
