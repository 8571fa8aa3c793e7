package player

import (
	"errors"
	"strings"
	"unicode"

	"github.com/grovemud/grove/internal/auth"
)

// loginFlow drives the Authenticating state: a login/register menu that
// re-prompts without limit until a login succeeds or the transport
// fails. Registration never authenticates; it returns to the menu.
type loginFlow struct {
	accounts *auth.Store
}

func (f *loginFlow) Run(t *term) (string, error) {
	if err := t.WriteLine("Welcome to the MUD! Please log in or register."); err != nil {
		return "", err
	}

	for {
		choice, err := t.Prompt("Enter 'login' or 'register': ")
		if err != nil {
			return "", err
		}

		switch strings.ToLower(choice) {
		case "login":
			name, err := f.login(t)
			if err != nil {
				return "", err
			}
			if name != "" {
				return name, nil
			}
		case "register":
			if err := f.register(t); err != nil {
				return "", err
			}
		default:
			if err := t.WriteLine("Invalid choice. Please try again."); err != nil {
				return "", err
			}
		}
	}
}

// login runs one username/password attempt. A failed attempt reports
// the rejection and returns to the menu; only transport errors abort.
func (f *loginFlow) login(t *term) (string, error) {
	username, err := t.Prompt("Username: ")
	if err != nil {
		return "", err
	}
	password, err := t.Prompt("Password: ")
	if err != nil {
		return "", err
	}

	name, err := f.accounts.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "", t.WriteLine("Invalid username or password.")
		}
		return "", err
	}

	if err := t.WriteLine("Login successful!"); err != nil {
		return "", err
	}
	return name, nil
}

func (f *loginFlow) register(t *term) error {
	username, err := t.Prompt("Choose a username: ")
	if err != nil {
		return err
	}
	if !validUsername(username) {
		return t.WriteLine("Invalid username, please try another.")
	}

	password, err := t.Prompt("Choose a password: ")
	if err != nil {
		return err
	}
	if password == "" || strings.EqualFold(password, username) {
		return t.WriteLine("Illegal password, please try another.")
	}

	err = f.accounts.Register(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountExists) {
			return t.WriteLine("Username already exists. Please try again.")
		}
		return err
	}

	return t.WriteLine("Registration successful! You can now log in.")
}

func validUsername(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
