package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type WorldConfig struct {
	DefaultRoom string `json:"default_room"`
}

func (c *WorldConfig) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultRoom == "" {
		el.Add(fmt.Errorf("default_room is required"))
	}

	return el.Err()
}
