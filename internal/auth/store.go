package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/grovemud/grove/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
)

// Store owns password hashing and per-account world-state persistence.
// Accounts are keyed by lowercased username; the registered casing is
// kept in the record for display.
type Store struct {
	accounts storage.Storer[*Account]
}

func NewStore(accounts storage.Storer[*Account]) *Store {
	return &Store{accounts: accounts}
}

func key(username string) storage.Identifier {
	return storage.Identifier(strings.ToLower(username))
}

// Authenticate checks a username/password pair and returns the
// registered display name on success. Wrong username and wrong
// password are indistinguishable to the caller.
func (s *Store) Authenticate(username, password string) (string, error) {
	acct := s.accounts.Get(key(username))
	if acct == nil {
		return "", ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	return acct.Name, nil
}

// Register creates a new account. The username must be unused; the
// comparison ignores case so "Amy" and "amy" cannot coexist.
func (s *Store) Register(username, password string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if s.accounts.Get(key(username)) != nil {
		return ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	acct := &Account{
		Name:         username,
		PasswordHash: string(hash),
	}
	return s.accounts.Save(key(username), acct)
}

// LoadPlayerState returns the room and inventory saved at the user's
// last disconnect. A registered account that has never played reports
// ok=false and the caller places the player in the default room.
func (s *Store) LoadPlayerState(username string) (room storage.Identifier, inventory []string, ok bool) {
	acct := s.accounts.Get(key(username))
	if acct == nil || acct.Room == "" {
		return "", nil, false
	}
	return storage.Identifier(acct.Room), append([]string(nil), acct.Inventory...), true
}

// SavePlayerState persists the player's current room and inventory.
// The stored record is replaced, never mutated in place: other sessions
// may be reading the pointer the store handed them.
func (s *Store) SavePlayerState(username string, room storage.Identifier, inventory []string) error {
	acct := s.accounts.Get(key(username))
	if acct == nil {
		return ErrAccountNotFound
	}

	updated := &Account{
		Name:         acct.Name,
		PasswordHash: acct.PasswordHash,
		Room:         room.String(),
		Inventory:    append([]string(nil), inventory...),
	}
	return s.accounts.Save(key(username), updated)
}
