package commands

import (
	"github.com/grovemud/grove/internal/world"
)

const helpText = `Available commands:
- look (l): Look around the room
- north (w), south (s), east (d), west (a), up, down: Move in a direction
- say <message>: Say something to everyone in the room
- inventory (i): Check your inventory
- who: See who is online
- help (h): Show this help message
- quit (q): Quit the game`

func (d *Dispatcher) help(p *world.PlayerInfo) error {
	return d.send(p, helpText)
}
