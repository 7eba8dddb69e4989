package relay

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/danmuck/drawembed/internal/testutil/tlstest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestServeListenerTLS(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, dir)
	certFile, keyFile := ca.IssueLocalhost(t, dir)

	cfg := DefaultConfig()
	cfg.EmbedURL = testEmbedURL
	cfg.Load = protocol.ActionLoad{XML: protocol.String("<mxfile/>")}
	cfg.SecurityMode = SecurityModeProduction
	cfg.Token = "secret"
	cfg.TLS = TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}
	srv, err := New(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	resp, err := ca.Client().Get("https://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeListener did not return after cancel")
	}
}
