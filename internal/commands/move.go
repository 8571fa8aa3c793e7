package commands

import (
	"fmt"

	"github.com/grovemud/grove/internal/world"
)

// move walks the player through an exit. The departure notice goes to
// the old room before the move and the arrival notice to the new room
// after it, both excluding the mover, who gets the destination's look
// output instead.
func (d *Dispatcher) move(p *world.PlayerInfo, dir world.Direction) error {
	dest, ok := d.world.Exit(p.RoomId, dir)
	if !ok {
		return NewUserError("There's no exit in that direction.")
	}

	d.world.Broadcast(p.RoomId, fmt.Sprintf("%s has left the room.", p.Name), p.SessionId)

	if err := d.world.MovePlayer(p.SessionId, dest); err != nil {
		return fmt.Errorf("moving %s %s: %w", p.Name, dir, err)
	}

	d.world.Broadcast(dest, fmt.Sprintf("%s has entered the room.", p.Name), p.SessionId)

	destName, _, _ := d.world.RoomInfo(dest)
	if err := d.send(p, fmt.Sprintf("You have moved to %s.", destName)); err != nil {
		return err
	}

	return d.lookAt(p, dest)
}
