package commands

// UserError is a notice owed to the player: bad verb, bad direction,
// empty say. The session prints the message and keeps the connection;
// every other error class is fatal to the session.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
