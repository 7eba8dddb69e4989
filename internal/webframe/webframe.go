//go:build js && wasm

// Package webframe is the browser transport: window.postMessage to and from
// one editor iframe.
package webframe

import (
	"errors"
	"sync"
	"syscall/js"

	"github.com/danmuck/drawembed/internal/protocol/frame"
)

var ErrNoWindow = errors.New("webframe: frame has no content window")

// Transport posts to an iframe's content window and listens on the host
// window. Messages whose source is that content window carry the session id;
// all others carry an empty source and are dropped by the channel.
type Transport struct {
	iframe       js.Value
	targetOrigin string
	sessionID    string

	mu       sync.Mutex
	listener js.Func
	active   bool
}

func New(iframe js.Value, targetOrigin, sessionID string) *Transport {
	return &Transport{
		iframe:       iframe,
		targetOrigin: targetOrigin,
		sessionID:    sessionID,
	}
}

func (t *Transport) Post(data []byte) error {
	win := t.iframe.Get("contentWindow")
	if win.IsNull() || win.IsUndefined() {
		return ErrNoWindow
	}
	win.Call("postMessage", string(data), t.targetOrigin)
	return nil
}

func (t *Transport) Subscribe(fn func(frame.Message)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		t.removeLocked()
	}
	t.listener = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		fn(t.message(args[0]))
		return nil
	})
	t.active = true
	js.Global().Call("addEventListener", "message", t.listener)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.removeLocked()
		})
	}, nil
}

func (t *Transport) removeLocked() {
	if !t.active {
		return
	}
	js.Global().Call("removeEventListener", "message", t.listener)
	t.listener.Release()
	t.active = false
}

func (t *Transport) message(ev js.Value) frame.Message {
	msg := frame.Message{Origin: ev.Get("origin").String()}
	if ev.Get("source").Equal(t.iframe.Get("contentWindow")) {
		msg.Source = t.sessionID
	}
	data := ev.Get("data")
	switch data.Type() {
	case js.TypeString:
		msg.Data = []byte(data.String())
	case js.TypeObject:
		msg.Data = []byte(js.Global().Get("JSON").Call("stringify", data).String())
	}
	return msg
}
