// Package main is the entry point for the parley CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = success, 2 = usage or runtime error.
func run(args []string) int {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	if len(args) == 0 {
		usage()
		return 2
	}

	switch command := args[0]; command {
	case "serve":
		return runServe(args[1:])
	case "transcribe":
		return runTranscribe(args[1:])
	case "version":
		fmt.Printf("parley %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: parley <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve             Start the chat gateway HTTP server\n")
	fmt.Fprintf(os.Stderr, "  transcribe <file> Transcribe an audio file to text\n")
	fmt.Fprintf(os.Stderr, "  version           Print version and exit\n")
}
