package messaging

import "fmt"

// Bus is the pub/sub surface sessions and sinks consume. NatsServer
// implements it; tests swap in an in-memory bus.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// PlayerSubject returns the subject a session listens on.
func PlayerSubject(sessionId string) string {
	return fmt.Sprintf("player.%s", sessionId)
}

// PlayerSink delivers lines to one session by publishing on its
// subject. Publishing is safe from any goroutine, so a sink handed to
// the world satisfies the broadcast contract.
type PlayerSink struct {
	bus     Bus
	subject string
}

func NewPlayerSink(bus Bus, sessionId string) *PlayerSink {
	return &PlayerSink{
		bus:     bus,
		subject: PlayerSubject(sessionId),
	}
}

func (s *PlayerSink) Send(line string) error {
	return s.bus.Publish(s.subject, []byte(line))
}
