package commands

import (
	"fmt"
	"strings"

	"github.com/grovemud/grove/internal/display"
	"github.com/grovemud/grove/internal/storage"
	"github.com/grovemud/grove/internal/world"
)

func (d *Dispatcher) look(p *world.PlayerInfo) error {
	return d.lookAt(p, p.RoomId)
}

// lookAt renders a room for the player: name, description, exits in
// canonical direction order, then any other occupants.
func (d *Dispatcher) lookAt(p *world.PlayerInfo, roomId storage.Identifier) error {
	name, description, ok := d.world.RoomInfo(roomId)
	if !ok {
		return fmt.Errorf("room %q: %w", roomId, world.ErrRoomNotFound)
	}

	lines := []string{
		fmt.Sprintf("You are in %s", name),
		display.Wrap(description),
		"Exits: " + exitList(d.world.Exits(roomId)),
	}

	if occupants := d.world.Occupants(roomId, p.SessionId); len(occupants) > 0 {
		lines = append(lines, "Players here: "+strings.Join(occupants, ", "))
	}

	return d.send(p, strings.Join(lines, "\n"))
}

func exitList(exits []world.Exit) string {
	if len(exits) == 0 {
		return "none"
	}
	names := make([]string, len(exits))
	for i, e := range exits {
		names[i] = e.Direction.String()
	}
	return strings.Join(names, ", ")
}
