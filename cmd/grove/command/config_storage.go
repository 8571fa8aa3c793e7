package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/grovemud/grove/internal/auth"
	"github.com/grovemud/grove/internal/storage"
	"github.com/grovemud/grove/internal/world"
)

type StorageConfig struct {
	Rooms    AssetConfig[*world.Room]   `json:"rooms"`
	Accounts AssetConfig[*auth.Account] `json:"accounts"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Accounts.Validate("accounts"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
