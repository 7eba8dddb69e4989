package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDiscriminant = errors.New("protocol: missing discriminant")
	ErrUnknownEvent        = errors.New("protocol: unknown event")
	ErrUnknownAction       = errors.New("protocol: unknown action")
	ErrNotObject           = errors.New("protocol: message is not a json object")
	ErrInvalidAction       = errors.New("protocol: invalid action")
)

// MergeError is the application-level failure reported by a merge event.
// It is a value carried on the event, not a transport failure.
type MergeError struct {
	Reason  string
	Message string
}

func (e *MergeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("protocol: merge failed: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: merge failed: %s (%s)", e.Reason, e.Message)
}

// DraftError is the application-level failure reported by a draft event.
type DraftError struct {
	Reason string
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("protocol: draft failed: %s", e.Reason)
}
