package session

import "errors"

var (
	ErrInvalidConfig   = errors.New("session: invalid config")
	ErrAlreadyAttached = errors.New("session: already attached")
	ErrNotAttached     = errors.New("session: not attached")
	ErrClosed          = errors.New("session: closed")
	ErrNoReply         = errors.New("session: action has no reply")
	ErrNilAction       = errors.New("session: nil action")
)
