package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/grovemud/grove/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	fs, err := storage.NewFileStore[*Account](t.TempDir())
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}
	return NewStore(fs)
}

func TestRegister(t *testing.T) {
	tests := map[string]struct {
		username string
		password string
		existing string
		expErr   error
	}{
		"new account":       {username: "Amy", password: "hunter2"},
		"empty username":    {username: "", password: "hunter2", expErr: errors.New("username is required")},
		"empty password":    {username: "Amy", password: "", expErr: errors.New("password is required")},
		"duplicate":         {username: "Amy", password: "hunter2", existing: "Amy", expErr: ErrAccountExists},
		"duplicate by case": {username: "AMY", password: "hunter2", existing: "amy", expErr: ErrAccountExists},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			if tt.existing != "" {
				if err := s.Register(tt.existing, "pw"); err != nil {
					t.Fatalf("registering existing account: %v", err)
				}
			}

			err := s.Register(tt.username, tt.password)
			if tt.expErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.expErr) && err.Error() != tt.expErr.Error() {
				t.Errorf("got error %v, expected %v", err, tt.expErr)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	tests := map[string]struct {
		username string
		password string
		expName  string
		expErr   error
	}{
		"valid":               {username: "Amy", password: "hunter2", expName: "Amy"},
		"username case folds": {username: "aMy", password: "hunter2", expName: "Amy"},
		"wrong password":      {username: "Amy", password: "hunter3", expErr: ErrInvalidCredentials},
		"unknown user":        {username: "Bob", password: "hunter2", expErr: ErrInvalidCredentials},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			if err := s.Register("Amy", "hunter2"); err != nil {
				t.Fatalf("registering account: %v", err)
			}

			got, err := s.Authenticate(tt.username, tt.password)
			if !errors.Is(err, tt.expErr) {
				t.Fatalf("got error %v, expected %v", err, tt.expErr)
			}
			testutil.AssertEqual(t, "name", got, tt.expName)
		})
	}
}

func TestPlayerStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.Register("Amy", "hunter2"); err != nil {
		t.Fatalf("registering account: %v", err)
	}

	// A fresh account has no state to restore
	_, _, ok := s.LoadPlayerState("Amy")
	testutil.AssertEqual(t, "fresh account ok", ok, false)

	inv := []string{"rope", "lantern", "rope"}
	if err := s.SavePlayerState("Amy", "north-street", inv); err != nil {
		t.Fatalf("saving state: %v", err)
	}

	room, gotInv, ok := s.LoadPlayerState("amy")
	testutil.AssertEqual(t, "ok", ok, true)
	testutil.AssertEqual(t, "room", room, storage.Identifier("north-street"))
	testutil.AssertEqual(t, "inventory length", len(gotInv), len(inv))
	for i := range inv {
		testutil.AssertEqual(t, "inventory item", gotInv[i], inv[i])
	}
}

// A disconnecting session's save may overlap the same user's immediate
// reconnect loading state. Loads must see a complete snapshot, never a
// record mid-mutation.
func TestPlayerStateConcurrentSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	if err := s.Register("Amy", "hunter2"); err != nil {
		t.Fatalf("registering account: %v", err)
	}
	if err := s.SavePlayerState("Amy", "center", []string{"rope"}); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	rooms := map[storage.Identifier][]string{
		"center":       {"rope"},
		"north-street": {"rope", "lantern"},
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			room := storage.Identifier("center")
			if i%2 == 1 {
				room = "north-street"
			}
			if err := s.SavePlayerState("Amy", room, rooms[room]); err != nil {
				t.Errorf("saving state: %v", err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			room, inv, ok := s.LoadPlayerState("Amy")
			if !ok {
				t.Error("state disappeared during save")
				return
			}
			exp, known := rooms[room]
			if !known {
				t.Errorf("loaded unknown room %q", room)
				return
			}
			if len(inv) != len(exp) {
				t.Errorf("room %q loaded with %d items, expected %d", room, len(inv), len(exp))
				return
			}
		}
	}()

	wg.Wait()
}

func TestSavePlayerStateUnknownAccount(t *testing.T) {
	s := newTestStore(t)

	err := s.SavePlayerState("ghost", "center", nil)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got %v, expected ErrAccountNotFound", err)
	}
}
