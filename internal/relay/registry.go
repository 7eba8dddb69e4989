package relay

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrUnknownSession = errors.New("relay: unknown session")
	ErrSessionInUse   = errors.New("relay: session already connected")
)

// SessionInfo is the /sessions view of one session.
type SessionInfo struct {
	ID       string    `json:"id"`
	State    string    `json:"state"`
	Origin   string    `json:"origin,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
	ClosedAt time.Time `json:"closed_at,omitempty"`
	Pending  int       `json:"pending"`
}

// Registry tracks session ids from issue (page served) to close. Closed
// sessions are kept in a bounded cache for inspection.
type Registry struct {
	mu     sync.Mutex
	ttl    time.Duration
	issued map[string]time.Time
	live   map[string]liveSession
	closed *lru.Cache[string, SessionInfo]
	now    func() time.Time
}

type liveSession struct {
	channel  *session.Channel
	issuedAt time.Time
}

func NewRegistry(closedCache int, ttl time.Duration) (*Registry, error) {
	closed, err := lru.New[string, SessionInfo](closedCache)
	if err != nil {
		return nil, err
	}
	return &Registry{
		ttl:    ttl,
		issued: make(map[string]time.Time),
		live:   make(map[string]liveSession),
		closed: closed,
		now:    time.Now,
	}, nil
}

// Issue reserves a fresh session id for one page load.
func (r *Registry) Issue() string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	r.issued[id] = r.now()
	return id
}

// Claim takes an issued id for one connection. Each id can be claimed once.
func (r *Registry) Claim(id string) error {
	key := strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	if _, ok := r.live[key]; ok {
		return ErrSessionInUse
	}
	issuedAt, ok := r.issued[key]
	if !ok {
		return ErrUnknownSession
	}
	delete(r.issued, key)
	r.live[key] = liveSession{issuedAt: issuedAt}
	return nil
}

// Bind attaches the channel serving a claimed id.
func (r *Registry) Bind(id string, ch *session.Channel) error {
	key := strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.live[key]
	if !ok {
		return ErrUnknownSession
	}
	live.channel = ch
	r.live[key] = live
	return nil
}

// Reserved reports whether id was issued and not yet claimed or expired.
func (r *Registry) Reserved(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	_, ok := r.issued[strings.TrimSpace(id)]
	return ok
}

// Release moves a live session to the closed cache.
func (r *Registry) Release(id string) {
	key := strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.live[key]
	if !ok {
		return
	}
	delete(r.live, key)
	info := describe(key, live)
	info.State = session.StateClosed.String()
	info.ClosedAt = r.now()
	r.closed.Add(key, info)
}

func (r *Registry) Get(id string) (*session.Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.live[strings.TrimSpace(id)]
	if !ok || live.channel == nil {
		return nil, false
	}
	return live.channel, true
}

// Live returns the number of connected sessions.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// List returns live sessions then recently closed ones, each by issue time.
func (r *Registry) List() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := make([]SessionInfo, 0, len(r.live))
	for id, s := range r.live {
		live = append(live, describe(id, s))
	}
	closed := r.closed.Values()
	sortInfo(live)
	sortInfo(closed)
	return append(live, closed...)
}

// Close detaches every live channel.
func (r *Registry) Close() {
	r.mu.Lock()
	channels := make([]*session.Channel, 0, len(r.live))
	for _, s := range r.live {
		if s.channel != nil {
			channels = append(channels, s.channel)
		}
	}
	r.mu.Unlock()
	for _, ch := range channels {
		ch.Detach()
	}
}

func (r *Registry) expireLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, at := range r.issued {
		if at.Before(cutoff) {
			delete(r.issued, id)
		}
	}
}

func describe(id string, s liveSession) SessionInfo {
	if s.channel == nil {
		return SessionInfo{ID: id, State: "connecting", IssuedAt: s.issuedAt}
	}
	return SessionInfo{
		ID:       id,
		State:    s.channel.State().String(),
		Origin:   s.channel.Origin(),
		IssuedAt: s.issuedAt,
		Pending:  len(s.channel.Pending()),
	}
}

func sortInfo(items []SessionInfo) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].IssuedAt.Equal(items[j].IssuedAt) {
			return items[i].IssuedAt.Before(items[j].IssuedAt)
		}
		return items[i].ID < items[j].ID
	})
}
