package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// inbound is one frame message as forwarded by the page shim.
type inbound struct {
	Origin string `json:"origin"`
	Data   string `json:"data"`
}

// socketTransport is a session.Transport over one page WebSocket. Every
// message read from the socket is attributed to the socket's session.
type socketTransport struct {
	conn      *websocket.Conn
	sessionID string
	writeWait time.Duration
	logger    zerolog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	listener func(frame.Message)
}

func newSocketTransport(conn *websocket.Conn, sessionID string, writeWait time.Duration, logger zerolog.Logger) *socketTransport {
	return &socketTransport{
		conn:      conn,
		sessionID: sessionID,
		writeWait: writeWait,
		logger:    logger,
	}
}

func (t *socketTransport) Post(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *socketTransport) Subscribe(fn func(frame.Message)) (func(), error) {
	t.mu.Lock()
	t.listener = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.listener = nil
		t.mu.Unlock()
	}, nil
}

func (t *socketTransport) ping() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.PingMessage, nil)
}

func (t *socketTransport) closeNormal(reason string) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(t.writeWait))
}

// readLoop delivers inbound messages until the socket fails.
func (t *socketTransport) readLoop() error {
	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			return err
		}
		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			t.logger.Debug().Err(err).Msg("relay.readLoop malformed envelope")
			continue
		}
		t.mu.Lock()
		fn := t.listener
		t.mu.Unlock()
		if fn == nil {
			continue
		}
		fn(frame.Message{Origin: in.Origin, Source: t.sessionID, Data: []byte(in.Data)})
	}
}
