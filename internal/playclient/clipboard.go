package playclient

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility found")
	}
	return clipboard.WriteAll(text)
}

// copyShare writes text to cb, or to the system clipboard when cb is nil.
func copyShare(cb Clipboard, text string) error {
	if cb == nil {
		cb = systemClipboard{}
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboardWrite, err)
	}
	return nil
}
