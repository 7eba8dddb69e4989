// Package frametest provides an in-memory frame transport for tests.
package frametest

import (
	"errors"
	"sync"

	"github.com/danmuck/drawembed/internal/protocol/frame"
)

var ErrPostFailed = errors.New("frametest: post failed")

// Transport records posted actions and delivers messages to its subscriber.
type Transport struct {
	mu           sync.Mutex
	posts        [][]byte
	listener     func(frame.Message)
	subscribes   int
	unsubscribes int
	failPosts    bool
}

func New() *Transport {
	return &Transport{}
}

func (t *Transport) Post(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failPosts {
		return ErrPostFailed
	}
	t.posts = append(t.posts, append([]byte(nil), data...))
	return nil
}

func (t *Transport) Subscribe(fn func(frame.Message)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listener = fn
	t.subscribes++
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.listener = nil
			t.unsubscribes++
		})
	}, nil
}

// Deliver hands msg to the current subscriber. It reports false when nobody
// is listening.
func (t *Transport) Deliver(msg frame.Message) bool {
	t.mu.Lock()
	fn := t.listener
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(msg)
	return true
}

// DeliverJSON delivers data as if sent by a frame from origin with source id.
func (t *Transport) DeliverJSON(origin, source, data string) bool {
	return t.Deliver(frame.Message{Origin: origin, Source: source, Data: []byte(data)})
}

// Posts returns a copy of every posted payload as text.
func (t *Transport) Posts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.posts))
	for _, p := range t.posts {
		out = append(out, string(p))
	}
	return out
}

func (t *Transport) Subscribed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listener != nil
}

func (t *Transport) Unsubscribes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsubscribes
}

// FailPosts makes every later Post return ErrPostFailed.
func (t *Transport) FailPosts(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failPosts = fail
}

func (t *Transport) Subscribes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subscribes
}
