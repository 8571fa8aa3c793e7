package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/grovemud/grove/internal/auth"
	"github.com/grovemud/grove/internal/commands"
	"github.com/grovemud/grove/internal/messaging"
	"github.com/grovemud/grove/internal/world"
)

const shutdownNotice = "Server is shutting down. Your progress has been saved. Goodbye!"

// Manager owns the session lifecycle: it authenticates connections,
// registers players in the world, runs their command loops, and tears
// sessions down idempotently on quit, disconnect, or server shutdown.
type Manager struct {
	world      *world.World
	dispatcher *commands.Dispatcher
	accounts   *auth.Store
	bus        messaging.Bus
	login      *loginFlow

	wg sync.WaitGroup
}

func NewManager(w *world.World, d *commands.Dispatcher, accounts *auth.Store, bus messaging.Bus) *Manager {
	return &Manager{
		world:      w,
		dispatcher: d,
		accounts:   accounts,
		bus:        bus,
		login:      &loginFlow{accounts: accounts},
	}
}

// Start runs the manager as a worker. On shutdown it waits for the
// sessions to finish their own closing sequences, then sweeps anything
// still registered as a backstop.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	m.wg.Wait()

	for _, p := range m.world.Players() {
		m.endSession(p.SessionId, p.Name)
	}
	return nil
}

// RunSession drives one connection from raw transport to closed
// session: Authenticating, then Active, then Closing.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	m.wg.Add(1)
	defer m.wg.Done()

	t := newTerm(conn)

	name, err := m.login.Run(t)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Client went away mid-login, nothing to clean up.
			return nil
		}
		return fmt.Errorf("authenticating: %w", err)
	}

	sessionId := uuid.NewString()

	roomId, inventory, ok := m.accounts.LoadPlayerState(name)
	if !ok {
		roomId = m.world.DefaultRoom()
	}
	roomName, _, found := m.world.RoomInfo(roomId)
	if !found {
		// Persisted room no longer exists in the world assets.
		roomId = m.world.DefaultRoom()
		roomName, _, _ = m.world.RoomInfo(roomId)
	}

	msgs := make(chan []byte, 32)
	unsubscribe, err := m.bus.Subscribe(messaging.PlayerSubject(sessionId), queueMessage(msgs, sessionId))
	if err != nil {
		return fmt.Errorf("subscribing session %s: %w", sessionId, err)
	}
	defer unsubscribe()

	sink := messaging.NewPlayerSink(m.bus, sessionId)
	err = m.world.AddPlayer(sessionId, name, roomId, inventory, sink)
	if err != nil {
		if errors.Is(err, world.ErrPlayerExists) {
			return t.WriteLine("That character is already playing.")
		}
		return fmt.Errorf("registering player %s: %w", name, err)
	}
	defer m.endSession(sessionId, name)

	slog.InfoContext(ctx, "player connected", "player", name, "session", sessionId)

	if err := t.WriteLine(fmt.Sprintf("Welcome back, %s! You are in %s.", name, roomName)); err != nil {
		return err
	}
	m.world.Broadcast(roomId, fmt.Sprintf("%s has entered the room.", name), sessionId)

	// Show the player their room; the output arrives on the message
	// channel and is printed first thing in the play loop.
	if err := m.dispatcher.Execute(ctx, sessionId, "look"); err != nil {
		return fmt.Errorf("initial look: %w", err)
	}

	s := &session{
		id:         sessionId,
		name:       name,
		t:          t,
		dispatcher: m.dispatcher,
		msgs:       msgs,
	}

	err = s.play(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Server shutdown: persist first so the notice tells the truth.
			m.endSession(sessionId, name)
			_ = t.WriteLine("\n" + shutdownNotice)
			return nil
		}
		return err
	}
	return nil
}

// queueMessage enqueues one delivered line for the session's play loop.
// The send never blocks: once the session stops draining (teardown, or
// a burst outrunning the buffer) the line is dropped and logged, the
// same contract broadcast delivery has everywhere else.
func queueMessage(msgs chan<- []byte, sessionId string) func(data []byte) {
	return func(data []byte) {
		select {
		case msgs <- data:
		default:
			slog.Warn("dropping message for session", "session", sessionId)
		}
	}
}

// endSession is the Closing state: persist, deregister, done. Safe to
// call more than once; only the first call observes a registered player.
func (m *Manager) endSession(sessionId, name string) {
	p := m.world.GetPlayer(sessionId)
	if p == nil {
		return
	}

	// Best effort: a failed save never blocks the close sequence.
	if err := m.accounts.SavePlayerState(name, p.RoomId, p.Inventory); err != nil {
		slog.Warn("saving player state", "player", name, "error", err)
	}

	if err := m.world.RemovePlayer(sessionId); err != nil && !errors.Is(err, world.ErrPlayerNotFound) {
		slog.Warn("removing player", "player", name, "error", err)
	}

	slog.Info("player disconnected", "player", name, "session", sessionId)
}
