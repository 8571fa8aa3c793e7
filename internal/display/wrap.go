package display

import (
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the classic terminal width most MUD clients assume.
const DefaultWidth = 80

// Wrap word-wraps prose (room descriptions, help text) to DefaultWidth.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}
