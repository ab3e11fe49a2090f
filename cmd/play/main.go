package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/babellm/internal/playclient"
	"github.com/okian/babellm/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout     = 30 * time.Second
	defaultPlayTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		question = flag.String("question", "", "Question id to play (default: the first listed question)")
		order    = flag.String("order", "", "Comma separated language codes, best translation first")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		copyText = flag.Bool("copy", false, "Copy the share text to the clipboard on a perfect match")
		verbose  = flag.Bool("verbose", false, "Print every reveal frame")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playclient.ShowHelp()
		return
	}

	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	} else {
		_ = logger.SetLevelString("warn")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultPlayTimeout)
	defer cancel()

	config := &playclient.Config{
		BaseURL:    *baseURL,
		QuestionID: *question,
		Order:      playclient.ParseOrder(*order),
		Timeout:    *timeout,
		Copy:       *copyText,
		Verbose:    *verbose,
	}

	if _, err := playclient.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Play failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
