package session

// Observer is notified of channel activity. Implementations must be safe for
// concurrent use by several channels.
type Observer interface {
	EventReceived(kind string)
	EventDropped(reason string)
	ActionSent(kind string, ok bool)
	Transition(from, to string)
}

type nopObserver struct{}

func (nopObserver) EventReceived(string)      {}
func (nopObserver) EventDropped(string)       {}
func (nopObserver) ActionSent(string, bool)   {}
func (nopObserver) Transition(string, string) {}

// drop reasons
const (
	DropClosed   = "closed"
	DropDetached = "detached"
	DropPayload  = "payload"
	DropOrigin   = "origin"
	DropSource   = "source"
	DropDecode   = "decode"
	DropState    = "state"
)
