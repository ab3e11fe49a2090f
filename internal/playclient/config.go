package playclient

import (
	"io"
	"time"

	"github.com/okian/babellm/pkg/logger"
)

// Config holds configuration for a single played round.
type Config struct {
	BaseURL    string        // Base URL of the service
	QuestionID string        // Question to play; empty picks the first one
	Order      []string      // Desired ranking by language code, best first
	Timeout    time.Duration // HTTP request timeout
	Copy       bool          // Copy the share text to the clipboard on a perfect match
	Verbose    bool          // Print every reveal frame

	Out       io.Writer     // Report destination; defaults to os.Stdout
	Clipboard Clipboard     // Clipboard writer; defaults to the system clipboard
	Logger    logger.Logger // Defaults to the global logger
}

// Stats holds statistics about a played round.
type Stats struct {
	RoundID   string
	Moves     int
	Events    int
	Frames    int
	Bursts    int
	Exact     bool
	Copied    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
