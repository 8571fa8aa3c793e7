package player

import (
	"bufio"
	"io"
	"strings"
)

// term wraps a connection with one shared line reader. The reader must
// be shared between the login flow and the command loop so type-ahead
// buffered during a prompt is not lost.
type term struct {
	w       io.Writer
	scanner *bufio.Scanner
}

func newTerm(rw io.ReadWriter) *term {
	return &term{
		w:       rw,
		scanner: bufio.NewScanner(rw),
	}
}

// ReadLine returns the next input line with surrounding space trimmed.
// A closed connection surfaces as io.EOF.
func (t *term) ReadLine() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.scanner.Text()), nil
}

// Prompt writes a prompt without a trailing newline and reads the reply.
func (t *term) Prompt(prompt string) (string, error) {
	if _, err := t.w.Write([]byte(prompt)); err != nil {
		return "", err
	}
	return t.ReadLine()
}

func (t *term) WriteLine(line string) error {
	_, err := t.w.Write([]byte(line + "\n"))
	return err
}
