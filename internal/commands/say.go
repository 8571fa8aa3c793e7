package commands

import (
	"fmt"
	"strings"

	"github.com/grovemud/grove/internal/world"
)

// say broadcasts to everyone else in the room exactly once and echoes
// back to the speaker separately.
func (d *Dispatcher) say(p *world.PlayerInfo, args []string) error {
	if len(args) == 0 {
		return NewUserError("Say what?")
	}

	message := strings.Join(args, " ")
	d.world.Broadcast(p.RoomId, fmt.Sprintf("%s says: %s", p.Name, message), p.SessionId)

	return d.send(p, fmt.Sprintf("You say: %s", message))
}
