// Package share builds the shareable summary of a finished round: a plain
// text block for the clipboard and a 1200x630 PNG card.
package share

import (
	"fmt"
	"strings"
)

const (
	header         = "💭 BabelLM Analysis"
	questionPrefix = "❓ Question: "
	footer         = "🌐 Try it at babellm.ai"

	inviteBody = "I discovered something fascinating about AI! 🤖 " +
		"When asked the same question in different languages, it can give completely different responses." +
		"\n\nCan you guess how the AI will respond? Try it at https://babel-lm.vercel.app"
)

// Entry is one language line of the summary.
type Entry struct {
	Name  string
	Text  string
	Score float64
}

// Line formats a single entry as "<name>: <text> (<score>/10)".
func Line(e Entry) string {
	return fmt.Sprintf("%s: %s (%.1f/10)", e.Name, e.Text, e.Score)
}

// Build returns the summary text for question and entries, in the given order.
func Build(question string, entries []Entry) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(questionPrefix)
	b.WriteString(question)
	b.WriteString("\n\n")
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Line(e))
	}
	b.WriteString("\n\n")
	b.WriteString(footer)
	return b.String()
}

// BuildInvite returns the invitation copied after a perfect match: the
// translations joined by spaces followed by a call to action.
func BuildInvite(texts []string) string {
	return strings.Join(texts, " ") + "\n\n" + inviteBody
}
