package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/drawembed/internal/auth"
	"github.com/danmuck/drawembed/internal/observability"
	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	nodeName   = "relay"
	socketPath = "/ws"
)

// Server is the relay HTTP service.
type Server struct {
	cfg       Config
	router    *gin.Engine
	registry  *Registry
	validator auth.Validator
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
	started   time.Time
}

func New(cfg Config) (*Server, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateServerTransport(); err != nil {
		return nil, err
	}
	registry, err := NewRegistry(cfg.ClosedSessionCache, cfg.IssuedTTL)
	if err != nil {
		return nil, err
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, "/health", "/metrics", "/ready"))
	r.Use(observability.RequestMetricsMiddleware(nodeName))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:       cfg,
		router:    r,
		registry:  registry,
		validator: auth.ForToken(cfg.Token),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger:  observability.Component(nodeName),
		started: time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) Config() Config {
	return s.cfg
}

// Serve listens until ctx is done, then detaches every session and shuts the
// listener down.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("relay: listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled. Live sessions are
// closed before the HTTP server shuts down.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Bool("tls", s.cfg.TLS.Enabled).Msg("relay.Serve listening")
		if s.cfg.TLS.Enabled {
			errCh <- srv.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
			return
		}
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.registry.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": nodeName,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     true,
			"embed_url": s.cfg.EmbedURL,
			"origin":    s.cfg.Origin,
			"sessions":  s.registry.Live(),
		})
	})

	authed := s.router.Group("/", s.requireToken())
	authed.GET("/", s.handlePage)
	authed.GET("/embed-url", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"url":     s.cfg.EmbedURL,
			"session": s.registry.Issue(),
		})
	})
	authed.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": s.registry.List()})
	})
	authed.GET(socketPath, s.handleSocket)
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.validator.Validate(auth.TokenFromRequest(c.Request)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func (s *Server) handlePage(c *gin.Context) {
	var buf bytes.Buffer
	err := renderPage(&buf, pageData{
		Title:      "drawembed",
		EmbedURL:   s.cfg.EmbedURL,
		Origin:     s.cfg.Origin,
		Session:    s.registry.Issue(),
		Token:      auth.TokenFromRequest(c.Request),
		SocketPath: socketPath,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleSocket(c *gin.Context) {
	id := strings.TrimSpace(c.Query("session"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	if err := s.registry.Claim(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		s.registry.Release(id)
		observability.SetActiveSessions(s.registry.Live())
	}()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug().Err(err).Str("session", id).Msg("relay.handleSocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := s.logger.With().Str("session", id).Logger()
	transport := newSocketTransport(conn, id, s.cfg.WriteWait, logger)
	ch := session.NewChannel(session.Config{
		SessionID:     id,
		Origin:        s.cfg.Origin,
		Load:          s.cfg.Load,
		Configuration: s.cfg.Configuration,
		ExportFormat:  s.cfg.ExportFormat,
		Limits:        s.cfg.Limits,
		Logger:        &logger,
		Observer:      observability.SessionObserver{},
	}, transport, nil)
	if err := ch.SetHandler(s.cfg.NewHandler(ch)); err != nil {
		transport.closeNormal(err.Error())
		return
	}

	if err := s.registry.Bind(id, ch); err != nil {
		transport.closeNormal(err.Error())
		return
	}
	observability.SetActiveSessions(s.registry.Live())
	defer ch.Detach()

	if err := ch.Attach(); err != nil {
		logger.Warn().Err(err).Msg("relay.handleSocket attach failed")
		transport.closeNormal("attach failed")
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go s.keepAlive(ctx, ch, transport)

	if err := transport.readLoop(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug().Err(err).Msg("relay.handleSocket read ended")
	}
}

// keepAlive pings the page and closes the socket once the channel closes.
func (s *Server) keepAlive(ctx context.Context, ch *session.Channel, transport *socketTransport) {
	ticker := time.NewTicker(s.cfg.PingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch.Done():
			transport.closeNormal("session closed")
			return
		case <-ticker.C:
			if err := transport.ping(); err != nil {
				return
			}
		}
	}
}
