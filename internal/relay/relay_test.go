package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmbedURL = "https://embed.diagrams.net/?embed=1&proto=json"
	testOrigin   = "https://embed.diagrams.net"
)

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := DefaultConfig()
	cfg.EmbedURL = testEmbedURL
	cfg.Load = protocol.ActionLoad{XML: protocol.String("<mxfile/>")}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func issueSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var body struct {
		URL     string `json:"url"`
		Session string `json:"session"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/embed-url", &body))
	require.Equal(t, testEmbedURL, body.URL)
	require.NotEmpty(t, body.Session)
	return body.Session
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, origin, data string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(inbound{Origin: origin, Data: data}))
}

func readAction(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestHealthAndReady(t *testing.T) {
	testlog.Start(t)
	_, ts := newTestServer(t, nil)

	var health map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &health))
	assert.Equal(t, "ok", health["status"])

	var ready map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/ready", &ready))
	assert.Equal(t, testOrigin, ready["origin"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "drawembed_http_requests_total")
}

func TestPageEmbedsFrameAndSession(t *testing.T) {
	testlog.Start(t)
	srv, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := string(body)
	assert.Contains(t, page, `src="https://embed.diagrams.net/?embed=1&amp;proto=json"`)
	assert.Contains(t, page, "new WebSocket(url)")
	assert.Equal(t, 0, srv.Registry().Live())
}

func TestRelayLifecycle(t *testing.T) {
	testlog.Start(t)
	srv, ts := newTestServer(t, nil)
	id := issueSession(t, ts)
	conn := dial(t, ts, "session="+id)

	sendFrame(t, conn, "https://evil.example", `{"event":"init"}`)
	sendFrame(t, conn, testOrigin, `{"event":"init"}`)
	assert.Equal(t, `{"action":"load","xml":"<mxfile/>"}`, readAction(t, conn))

	sendFrame(t, conn, testOrigin, `{"event":"load","xml":"<mxfile/>","scale":1}`)
	sendFrame(t, conn, testOrigin, `{"event":"save","xml":"<mxfile>1</mxfile>"}`)
	assert.Equal(t, `{"action":"status","message":"Saved","modified":false}`, readAction(t, conn))

	ch, ok := srv.Registry().Get(id)
	require.True(t, ok)
	assert.Equal(t, "editing", ch.State().String())

	sendFrame(t, conn, testOrigin, `{"event":"exit","modified":false}`)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "err=%v", err)

	require.Eventually(t, func() bool {
		var body struct {
			Sessions []SessionInfo `json:"sessions"`
		}
		getJSON(t, ts.URL+"/sessions", &body)
		return len(body.Sessions) == 1 && body.Sessions[0].ID == id && body.Sessions[0].State == "closed"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSocketRejectsUnknownAndReusedSessions(t *testing.T) {
	testlog.Start(t)
	_, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	id := issueSession(t, ts)
	dial(t, ts, "session="+id)
	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session="+id, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTokenRequired(t *testing.T) {
	testlog.Start(t)
	_, ts := newTestServer(t, func(cfg *Config) { cfg.Token = "secret" })

	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/embed-url", nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/sessions", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", nil))

	var body struct {
		Session string `json:"session"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/embed-url?token=secret", &body))
	conn := dial(t, ts, "session="+body.Session+"&token=secret")
	sendFrame(t, conn, testOrigin, `{"event":"init"}`)
	assert.Contains(t, readAction(t, conn), `"action":"load"`)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{EmbedURL: testEmbedURL, SecurityMode: SecurityModeProduction})
	require.ErrorIs(t, err, ErrTLSRequired)

	_, err = New(Config{EmbedURL: testEmbedURL, ExportFormat: "bmp"})
	require.Error(t, err)

	srv, err := New(Config{EmbedURL: "https://drawio.example:8443/?embed=1"})
	require.NoError(t, err)
	assert.Equal(t, "https://drawio.example:8443", srv.Config().Origin)
}
