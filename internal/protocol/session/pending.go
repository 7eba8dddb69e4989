package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/google/uuid"
)

// ReplyFunc receives the event answering a request. err is non-nil when the
// editor reported an application failure (merge or draft error) or the
// channel closed before a reply arrived.
type ReplyFunc func(reply protocol.Event, err error)

// PendingRequest tracks one action awaiting its reply event.
type PendingRequest struct {
	ID          string
	Kind        protocol.EventKind
	Action      protocol.Action
	ParentEvent string
	QueuedAt    time.Time

	seq   uint64
	reply ReplyFunc
}

// PendingRequests stores requests per reply kind in send order.
type PendingRequests struct {
	mu    sync.Mutex
	seq   uint64
	items map[protocol.EventKind][]PendingRequest
}

func NewPendingRequests() *PendingRequests {
	return &PendingRequests{
		items: make(map[protocol.EventKind][]PendingRequest),
	}
}

// Add registers a request and returns it with its assigned id.
func (p *PendingRequests) Add(kind protocol.EventKind, action protocol.Action, reply ReplyFunc, at time.Time) PendingRequest {
	item := PendingRequest{
		ID:          uuid.NewString(),
		Kind:        kind,
		Action:      action,
		ParentEvent: strings.TrimSpace(protocol.ParentEventOfAction(action)),
		QueuedAt:    at,
		reply:       reply,
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	item.seq = p.seq
	p.items[kind] = append(p.items[kind], item)
	return item
}

// Resolve removes the request ev answers. A reply echoing a parent event
// prefers the request that set it; otherwise the oldest of the kind wins.
func (p *PendingRequests) Resolve(ev protocol.Event) (PendingRequest, bool) {
	kind := ev.EventKind()
	parent := strings.TrimSpace(protocol.ParentEventOf(ev))

	p.mu.Lock()
	defer p.mu.Unlock()
	queue := p.items[kind]
	if len(queue) == 0 {
		return PendingRequest{}, false
	}
	idx := 0
	if parent != "" {
		for i, item := range queue {
			if item.ParentEvent == parent {
				idx = i
				break
			}
		}
	}
	item := queue[idx]
	queue = append(queue[:idx:idx], queue[idx+1:]...)
	if len(queue) == 0 {
		delete(p.items, kind)
	} else {
		p.items[kind] = queue
	}
	return item, true
}

func (p *PendingRequests) Remove(id string) bool {
	key := strings.TrimSpace(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	for kind, queue := range p.items {
		for i, item := range queue {
			if item.ID != key {
				continue
			}
			queue = append(queue[:i:i], queue[i+1:]...)
			if len(queue) == 0 {
				delete(p.items, kind)
			} else {
				p.items[kind] = queue
			}
			return true
		}
	}
	return false
}

// Drain removes and returns every request in the order they were added.
func (p *PendingRequests) Drain() []PendingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PendingRequest, 0)
	for _, queue := range p.items {
		out = append(out, queue...)
	}
	p.items = make(map[protocol.EventKind][]PendingRequest)
	sortPending(out)
	return out
}

func (p *PendingRequests) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, queue := range p.items {
		n += len(queue)
	}
	return n
}

// List returns a snapshot in the order requests were added.
func (p *PendingRequests) List() []PendingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PendingRequest, 0)
	for _, queue := range p.items {
		out = append(out, queue...)
	}
	sortPending(out)
	return out
}

func sortPending(items []PendingRequest) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].seq < items[j].seq
	})
}
