package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"golang.org/x/crypto/ssh"
)

// SshListener serves sessions over ssh without client auth, probing
// its port range the same way the telnet listener does.
type SshListener struct {
	host      string
	startPort uint16
	maxPort   uint16
	cm        *ConnectionManager
	hostKey   ssh.Signer
}

func NewSshListener(host string, startPort, maxPort uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	if maxPort < startPort {
		maxPort = startPort
	}
	return &SshListener{
		host:      host,
		startPort: startPort,
		maxPort:   maxPort,
		cm:        cm,
		hostKey:   hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	listener, port, err := l.listen()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "listening for ssh", "host", l.host, "port", port)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

// shellGate signals the first shell request on a channel. A client may
// send shell more than once; duplicates are acknowledged but must not
// re-close the channel.
type shellGate struct {
	ready chan struct{}
	once  sync.Once
}

func newShellGate() *shellGate {
	return &shellGate{ready: make(chan struct{})}
}

func (g *shellGate) open() {
	g.once.Do(func() { close(g.ready) })
}

func (l *SshListener) listen() (net.Listener, uint16, error) {
	for port := l.startPort; port <= l.maxPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", l.host, port))
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				continue
			}
			return nil, 0, fmt.Errorf("listening on port %d: %w", port, err)
		}
		return listener, port, nil
	}
	return nil, 0, fmt.Errorf("no free ssh port between %d and %d", l.startPort, l.maxPort)
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr())

	// Close the SSH connection when the context is cancelled.
	// This unblocks the channel iteration loop below so handleConnection can return.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		// Wait for the client to request a shell before starting the session.
		// SSH clients won't forward input until they receive the shell reply.
		gate := newShellGate()
		go func(in <-chan *ssh.Request) {
			for req := range in {
				switch req.Type {
				case "pty-req":
					// Reject PTY so the client keeps local echo and line buffering.
					req.Reply(false, nil)
				case "shell":
					req.Reply(true, nil)
					gate.open()
				default:
					req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-gate.ready:
		case <-ctx.Done():
			ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFReadWriter(ch))
		ch.Close()
	}
}
