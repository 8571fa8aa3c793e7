package commands

import (
	"strings"

	"github.com/grovemud/grove/internal/world"
)

func (d *Dispatcher) who(p *world.PlayerInfo) error {
	lines := []string{"Players online:"}
	for _, name := range d.world.PlayerNames() {
		lines = append(lines, "- "+name)
	}
	return d.send(p, strings.Join(lines, "\n"))
}
