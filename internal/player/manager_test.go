package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/grovemud/grove/internal/commands"
	"github.com/grovemud/grove/internal/messaging"
	"github.com/grovemud/grove/internal/storage"
	"github.com/grovemud/grove/internal/world"
)

type stubRoomStore map[storage.Identifier]*world.Room

func (s stubRoomStore) Save(id storage.Identifier, r *world.Room) error { s[id] = r; return nil }
func (s stubRoomStore) Get(id storage.Identifier) *world.Room           { return s[id] }
func (s stubRoomStore) GetAll() map[storage.Identifier]*world.Room      { return s }

// fakeBus is an in-memory Bus delivering synchronously to subscribers.
type fakeBus struct {
	mu       sync.Mutex
	handlers map[string][]func([]byte)
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: map[string][]func([]byte){}}
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	handlers := append(([]func([]byte))(nil), b.handlers[subject]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

func (b *fakeBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, subject)
	}, nil
}

// syncBuffer is a concurrency-safe output capture.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// scriptedConn feeds a fixed script, then either reports EOF or blocks
// until released, simulating an idle connection.
type scriptedConn struct {
	io.Reader
	out *syncBuffer

	blockAfter bool
	release    chan struct{}
}

func newScriptedConn(script string, blockAfter bool) *scriptedConn {
	return &scriptedConn{
		Reader:     strings.NewReader(script),
		out:        &syncBuffer{},
		blockAfter: blockAfter,
		release:    make(chan struct{}),
	}
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	if err == io.EOF && c.blockAfter {
		<-c.release
	}
	return n, err
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func newTestManager(t *testing.T) (*Manager, *world.World, *fakeBus, func(username, password string)) {
	t.Helper()

	rooms := stubRoomStore{
		"center": &world.Room{
			Name:        "Center",
			Description: "The middle of the village.",
			Exits:       map[string]string{"north": "north-street"},
		},
		"north-street": &world.Room{
			Name:        "North Street",
			Description: "A narrow street.",
			Exits:       map[string]string{"south": "center"},
		},
	}

	w, err := world.NewWorld(rooms, "center")
	if err != nil {
		t.Fatalf("building world: %v", err)
	}

	accounts := newTestAccounts(t)
	bus := newFakeBus()
	m := NewManager(w, commands.NewDispatcher(w), accounts, bus)

	register := func(username, password string) {
		if err := accounts.Register(username, password); err != nil {
			t.Fatalf("registering %s: %v", username, err)
		}
	}
	return m, w, bus, register
}

func TestRunSessionLoginPlayQuit(t *testing.T) {
	m, w, _, register := newTestManager(t)
	register("Amy", "hunter2")

	conn := newScriptedConn("login\nAmy\nhunter2\nquit\n", false)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := conn.out.String()
	for _, exp := range []string{
		"Login successful!",
		"Welcome back, Amy! You are in Center.",
		"Goodbye!",
	} {
		if !strings.Contains(out, exp) {
			t.Errorf("output %q does not contain %q", out, exp)
		}
	}

	testutil.AssertEqual(t, "players after quit", len(w.Players()), 0)

	// Quit persisted the player's position
	room, _, ok := m.accounts.LoadPlayerState("Amy")
	testutil.AssertEqual(t, "state saved", ok, true)
	testutil.AssertEqual(t, "saved room", room, storage.Identifier("center"))
}

func TestRunSessionRestoresPersistedRoom(t *testing.T) {
	m, w, _, register := newTestManager(t)
	register("Amy", "hunter2")
	if err := m.accounts.SavePlayerState("Amy", "north-street", []string{"rope"}); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	conn := newScriptedConn("login\nAmy\nhunter2\nquit\n", false)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(conn.out.String(), "Welcome back, Amy! You are in North Street.") {
		t.Errorf("output %q does not place Amy in her persisted room", conn.out.String())
	}
	testutil.AssertEqual(t, "players after quit", len(w.Players()), 0)
}

func TestRunSessionFallsBackToDefaultRoom(t *testing.T) {
	m, _, _, register := newTestManager(t)
	register("Amy", "hunter2")

	// Persisted room that no longer exists in the world assets
	if err := m.accounts.SavePlayerState("Amy", "demolished", nil); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	conn := newScriptedConn("login\nAmy\nhunter2\nquit\n", false)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(conn.out.String(), "Welcome back, Amy! You are in Center.") {
		t.Errorf("output %q does not fall back to the default room", conn.out.String())
	}
}

func TestRunSessionRejectsDuplicateCharacter(t *testing.T) {
	m, w, _, register := newTestManager(t)
	register("Amy", "hunter2")

	sink := messaging.NewPlayerSink(newFakeBus(), "other")
	if err := w.AddPlayer("other", "Amy", "center", nil, sink); err != nil {
		t.Fatalf("adding existing player: %v", err)
	}

	conn := newScriptedConn("login\nAmy\nhunter2\n", false)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(conn.out.String(), "That character is already playing.") {
		t.Errorf("output %q missing duplicate-character notice", conn.out.String())
	}
	testutil.AssertEqual(t, "players", len(w.Players()), 1)
}

func TestRunSessionDisconnectDuringLogin(t *testing.T) {
	m, w, _, _ := newTestManager(t)

	conn := newScriptedConn("login\nAmy\n", false)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "players", len(w.Players()), 0)
}

func TestRunSessionShutdown(t *testing.T) {
	m, w, _, register := newTestManager(t)
	register("Amy", "hunter2")

	conn := newScriptedConn("login\nAmy\nhunter2\n", true)
	defer close(conn.release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- m.RunSession(ctx, conn)
	}()

	// Wait until the session is registered, then pull the plug
	deadline := time.After(2 * time.Second)
	for len(w.Players()) == 0 {
		select {
		case <-deadline:
			t.Fatal("session never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down")
	}

	if !strings.Contains(conn.out.String(), shutdownNotice) {
		t.Errorf("output %q missing shutdown notice", conn.out.String())
	}
	testutil.AssertEqual(t, "players after shutdown", len(w.Players()), 0)

	_, _, ok := m.accounts.LoadPlayerState("Amy")
	testutil.AssertEqual(t, "state saved", ok, true)
}

// A publisher must never park in the enqueue callback, even when the
// session has stopped draining its channel.
func TestQueueMessageNeverBlocks(t *testing.T) {
	msgs := make(chan []byte, 2)
	enqueue := queueMessage(msgs, "session-1")

	for i := 0; i < 10; i++ {
		enqueue([]byte(fmt.Sprintf("line %d", i)))
	}

	testutil.AssertEqual(t, "queued", len(msgs), 2)
	testutil.AssertEqual(t, "first line kept", string(<-msgs), "line 0")
	testutil.AssertEqual(t, "second line kept", string(<-msgs), "line 1")
}

func TestEndSessionIsIdempotent(t *testing.T) {
	m, w, bus, register := newTestManager(t)
	register("Amy", "hunter2")

	sink := messaging.NewPlayerSink(bus, "session-1")
	if err := w.AddPlayer("session-1", "Amy", "center", nil, sink); err != nil {
		t.Fatalf("adding player: %v", err)
	}

	m.endSession("session-1", "Amy")
	testutil.AssertEqual(t, "players after first close", len(w.Players()), 0)

	// Second close observes nothing and must not disturb saved state
	m.endSession("session-1", "Amy")
	room, _, ok := m.accounts.LoadPlayerState("Amy")
	testutil.AssertEqual(t, "state saved", ok, true)
	testutil.AssertEqual(t, "saved room", room, storage.Identifier("center"))
}
