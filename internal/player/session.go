package player

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/grovemud/grove/internal/commands"
)

// session is the Active state: one goroutine owning one authenticated,
// placed player's connection. Input is processed strictly in order; the
// only blocking points are the select below, which stays responsive to
// shutdown and to messages arriving on the player's subject.
type session struct {
	id   string
	name string

	t          *term
	dispatcher *commands.Dispatcher
	msgs       <-chan []byte
}

func (s *session) play(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	// Reader goroutine feeding lines into the select loop. It exits on
	// transport error/EOF, or when play returns and the listener closes
	// the connection.
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		for {
			line, err := s.t.ReadLine()
			if err != nil {
				inputErrChan <- err
				close(inputChan)
				return
			}
			select {
			case inputChan <- line:
			case <-done:
				return
			}
		}
	}()

	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-s.msgs:
			if err := s.t.WriteLine("\n" + string(msg)); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost; EOF is a normal disconnect.
				err := <-inputErrChan
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			if line == "" {
				if err := s.prompt(); err != nil {
					return err
				}
				continue
			}

			cmd := commands.Parse(line)
			if cmd != nil && cmd.Verb == commands.VerbQuit {
				_ = s.t.WriteLine("Goodbye!")
				return nil
			}

			err := s.dispatcher.Execute(ctx, s.id, line)
			if err != nil {
				var userErr *commands.UserError
				if !errors.As(err, &userErr) {
					// Broken invariant - fatal to this session only.
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := s.t.WriteLine(userErr.Message); err != nil {
					return err
				}
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *session) prompt() error {
	_, err := s.t.w.Write([]byte("> "))
	return err
}
