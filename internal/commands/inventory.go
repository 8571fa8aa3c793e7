package commands

import (
	"strings"

	"github.com/grovemud/grove/internal/world"
)

func (d *Dispatcher) inventory(p *world.PlayerInfo) error {
	if len(p.Inventory) == 0 {
		return d.send(p, "Your inventory is empty.")
	}

	lines := []string{"You are carrying:"}
	for _, item := range p.Inventory {
		lines = append(lines, "- "+item)
	}
	return d.send(p, strings.Join(lines, "\n"))
}
