package command

import (
	"fmt"

	"github.com/pixil98/go-service"

	"github.com/grovemud/grove/internal/auth"
	"github.com/grovemud/grove/internal/commands"
	"github.com/grovemud/grove/internal/listener"
	"github.com/grovemud/grove/internal/player"
	"github.com/grovemud/grove/internal/storage"
	"github.com/grovemud/grove/internal/world"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load world and account assets
	roomStore, err := cfg.Storage.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	accountStore, err := cfg.Storage.Accounts.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating account store: %w", err)
	}

	// Build the room graph; a malformed graph aborts startup
	w, err := world.NewWorld(roomStore, storage.Identifier(cfg.World.DefaultRoom))
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	// Message bus carrying all player-bound output
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	accounts := auth.NewStore(accountStore)
	dispatcher := commands.NewDispatcher(w)
	playerManager := player.NewManager(w, dispatcher, accounts, natsServer)
	connManager := listener.NewConnectionManager(playerManager)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(connManager)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	return service.WorkerList{
		"nats":      natsServer,
		"players":   playerManager,
		"listeners": &listeners,
	}, nil
}
