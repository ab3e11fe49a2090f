package playclient

import (
	"os"
	"strings"
)

// ParseOrder splits a comma separated list of language codes.
func ParseOrder(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.ToLower(strings.TrimSpace(part)); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// ShowHelp prints usage information for the play tool.
func ShowHelp() {
	os.Stdout.WriteString(`BabelLM Play
============

Plays one round of the BabelLM quiz from the terminal.

Usage:
  go run ./cmd/play [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -question string
        Question id to play (default: the first listed question)
  -order string
        Comma separated language codes, best translation first (default: keep the dealt order)
  -timeout duration
        HTTP request timeout (default 30s)
  -copy
        Copy the share text to the clipboard on a perfect match
  -verbose
        Print every reveal frame
  -help
        Show this help message

Examples:
  # Play the first question as dealt
  go run ./cmd/play

  # Rank French above Spanish above German
  go run ./cmd/play -question q1 -order fr,es,de -copy
`)
}
