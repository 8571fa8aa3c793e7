package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Room is the static definition of a location, loaded from an asset
// file. Exits map a direction name to the destination room id. Exits
// are one-way; world files usually define the reverse link but nothing
// enforces it.
type Room struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}

	for dir, dest := range r.Exits {
		if _, ok := ParseDirection(dir); !ok {
			el.Add(fmt.Errorf("exit %q: unknown direction", dir))
		}
		if dest == "" {
			el.Add(fmt.Errorf("exit %s: destination room id is required", dir))
		}
	}

	return el.Err()
}
