package playclient

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/okian/babellm/internal/domain/types"
)

// readEvents parses a text/event-stream body and calls fn for every event
// until the end event, EOF or an error from fn.
func readEvents(r io.Reader, fn func(types.RevealEvent) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, sseEventPrefix):
			name = strings.TrimPrefix(line, sseEventPrefix)
		case strings.HasPrefix(line, sseDataPrefix):
			data += strings.TrimPrefix(line, sseDataPrefix)
		case line == "":
			if data == "" {
				continue
			}
			var ev types.RevealEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decode %q event: %w", name, err)
			}
			if ev.Type == "" {
				ev.Type = name
			}
			name, data = "", ""
			if err := fn(ev); err != nil {
				return err
			}
			if ev.Type == types.RevealEventEnd {
				return nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read reveal stream: %w", err)
	}
	return ErrStreamEnded
}
