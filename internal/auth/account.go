package auth

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Account is the persisted record for one registered user: the bcrypt
// hash of their password plus the world state saved at last disconnect.
// The plain password never touches disk.
type Account struct {
	Name         string   `json:"name"`
	PasswordHash string   `json:"password_hash"`
	Room         string   `json:"room,omitempty"`
	Inventory    []string `json:"inventory,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (a *Account) Validate() error {
	el := errors.NewErrorList()

	if a.Name == "" {
		el.Add(fmt.Errorf("account name is required"))
	}
	if a.PasswordHash == "" {
		el.Add(fmt.Errorf("password_hash is required"))
	}

	return el.Err()
}
