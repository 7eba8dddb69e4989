package session

import "github.com/danmuck/drawembed/internal/protocol/frame"

// Transport moves serialized messages between the host and one frame.
type Transport interface {
	// Post delivers one encoded action to the frame.
	Post(data []byte) error
	// Subscribe registers fn for every message observed on the host window.
	// Messages are delivered sequentially.
	Subscribe(fn func(frame.Message)) (unsubscribe func(), err error)
}
