package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/grovemud/grove/internal/player"
)

// ConnectionManager hands accepted connections to the session layer.
// Listeners call AcceptConnection once per connection and close the
// transport when it returns.
type ConnectionManager struct {
	pm *player.Manager
}

func NewConnectionManager(pm *player.Manager) *ConnectionManager {
	return &ConnectionManager{
		pm: pm,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.pm.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
