package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves the line protocol over telnet. It binds the
// first free port in its configured range and stops accepting when the
// context is canceled.
type TelnetListener struct {
	host      string
	startPort uint16
	maxPort   uint16
	cm        *ConnectionManager
}

func NewTelnetListener(host string, startPort, maxPort uint16, cm *ConnectionManager) *TelnetListener {
	if maxPort < startPort {
		maxPort = startPort
	}
	return &TelnetListener{
		host:      host,
		startPort: startPort,
		maxPort:   maxPort,
		cm:        cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// One cancelable context shared by all connections
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	handler := &telnetHandler{
		cFunc:       l.cm.AcceptConnection,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	for port := l.startPort; port <= l.maxPort; port++ {
		svr := telnet.NewServer(fmt.Sprintf("%s:%d", l.host, port), handler)

		// done signals that ListenAndServe returned for this port
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				// Shutdown requested - stop server and handler
				svr.Stop()
				handler.Stop()
			case <-done:
			}
		}()

		slog.InfoContext(ctx, "listening for telnet", "host", l.host, "port", port)

		err := svr.ListenAndServe()
		close(done)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				slog.WarnContext(ctx, "telnet port in use, probing next", "port", port)
				continue
			}
			return fmt.Errorf("serving telnet on port %d: %w", port, err)
		}
		return nil
	}

	return fmt.Errorf("no free telnet port between %d and %d", l.startPort, l.maxPort)
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cFunc       func(context.Context, io.ReadWriter)
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		err := conn.Close()
		if err != nil {
			slog.Warn("closing telnet connection", "error", err)
		}
	}()

	// Use the shared context so all connections are canceled together
	h.cFunc(h.connCtx, newCRLFReadWriter(conn))
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
