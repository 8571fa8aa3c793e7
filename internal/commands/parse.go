package commands

import (
	"strings"

	"github.com/grovemud/grove/internal/world"
)

// Verb is the closed set of things a player can ask for. Parsing folds
// synonyms into these; dispatch is one exhaustive switch.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbLook
	VerbMove
	VerbSay
	VerbInventory
	VerbWho
	VerbHelp
	VerbQuit
)

// Command is one parsed input line.
type Command struct {
	Verb      Verb
	Direction world.Direction // set when Verb is VerbMove
	Args      []string
	Raw       string // the token as typed, for unknown-command notices
}

// Movement shorthand uses the WASD scheme: w is north, not west.
var synonyms = map[string]string{
	"l": "look",
	"i": "inventory",
	"h": "help",
	"q": "quit",
	"w": "north",
	"a": "west",
	"s": "south",
	"d": "east",
}

// Parse splits a raw line into a Command. The verb is matched
// case-insensitively; arguments keep the player's casing. A blank line
// parses to nil, which callers treat as a no-op.
func Parse(line string) *Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	raw := fields[0]
	verb := strings.ToLower(raw)
	if canonical, ok := synonyms[verb]; ok {
		verb = canonical
	}

	cmd := &Command{
		Args: fields[1:],
		Raw:  raw,
	}

	if dir, ok := world.ParseDirection(verb); ok {
		cmd.Verb = VerbMove
		cmd.Direction = dir
		return cmd
	}

	switch verb {
	case "look":
		cmd.Verb = VerbLook
	case "say":
		cmd.Verb = VerbSay
	case "inventory":
		cmd.Verb = VerbInventory
	case "who", "players":
		cmd.Verb = VerbWho
	case "help":
		cmd.Verb = VerbHelp
	case "quit":
		cmd.Verb = VerbQuit
	default:
		cmd.Verb = VerbUnknown
	}

	return cmd
}
