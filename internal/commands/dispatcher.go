package commands

import (
	"context"
	"fmt"

	"github.com/grovemud/grove/internal/world"
)

// Dispatcher executes parsed commands against the world on behalf of an
// authenticated, placed player. User-caused failures come back as
// *UserError for the session to display; anything else is a broken
// invariant and fatal to the session.
type Dispatcher struct {
	world *world.World
}

func NewDispatcher(w *world.World) *Dispatcher {
	return &Dispatcher{world: w}
}

// Execute runs one input line for the given session. Blank lines are a
// no-op. VerbQuit never reaches the world: the session loop intercepts
// it before calling here.
func (d *Dispatcher) Execute(ctx context.Context, sessionId, line string) error {
	cmd := Parse(line)
	if cmd == nil {
		return nil
	}

	if cmd.Verb == VerbUnknown {
		return NewUserError(fmt.Sprintf("Unknown command: %s. Type 'help' for a list of commands.", cmd.Raw))
	}

	p := d.world.GetPlayer(sessionId)
	if p == nil {
		return fmt.Errorf("session %s: %w", sessionId, world.ErrPlayerNotFound)
	}

	switch cmd.Verb {
	case VerbLook:
		return d.look(p)
	case VerbMove:
		return d.move(p, cmd.Direction)
	case VerbSay:
		return d.say(p, cmd.Args)
	case VerbInventory:
		return d.inventory(p)
	case VerbWho:
		return d.who(p)
	case VerbHelp:
		return d.help(p)
	case VerbQuit:
		return nil
	default:
		return fmt.Errorf("unhandled verb %d", cmd.Verb)
	}
}

func (d *Dispatcher) send(p *world.PlayerInfo, message string) error {
	err := d.world.SendTo(p.SessionId, message)
	if err != nil {
		return fmt.Errorf("sending to %s: %w", p.Name, err)
	}
	return nil
}
