package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/danmuck/drawembed/internal/protocol/session"
)

type SecurityMode string

const (
	SecurityModeDevelopment SecurityMode = "development"
	SecurityModeProduction  SecurityMode = "production"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// HandlerFactory builds the event handler for a newly attached session.
type HandlerFactory func(ch *session.Channel) session.Handler

// Config defines one relay server.
type Config struct {
	Addr string
	// EmbedURL is the editor address the page loads into its frame.
	EmbedURL string
	// Origin is the expected frame origin. Empty derives it from EmbedURL.
	Origin        string
	Load          protocol.ActionLoad
	Configuration map[string]any
	// ExportFormat answers saves with an export; see session.Config.
	ExportFormat protocol.ExportFormat
	Token        string
	// CORSOrigins may call /embed-url and /sessions from other pages.
	CORSOrigins  []string
	SecurityMode SecurityMode
	TLS          TLSConfig
	// ClosedSessionCache bounds how many closed sessions /sessions reports.
	ClosedSessionCache int
	// IssuedTTL expires page-issued session ids that never connected.
	IssuedTTL  time.Duration
	Limits     frame.Limits
	PingEvery  time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	NewHandler HandlerFactory
}

func DefaultConfig() Config {
	return Config{
		Addr:               ":8088",
		SecurityMode:       SecurityModeDevelopment,
		ClosedSessionCache: 256,
		IssuedTTL:          5 * time.Minute,
		Limits:             frame.DefaultLimits(),
		PingEvery:          25 * time.Second,
		PongWait:           60 * time.Second,
		WriteWait:          10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig and derives the origin.
func (c Config) withDefaults() (Config, error) {
	def := DefaultConfig()
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = def.Addr
	}
	if c.ClosedSessionCache <= 0 {
		c.ClosedSessionCache = def.ClosedSessionCache
	}
	if c.IssuedTTL <= 0 {
		c.IssuedTTL = def.IssuedTTL
	}
	if c.Limits.MaxPayloadBytes == 0 {
		c.Limits = def.Limits
	}
	if c.PingEvery <= 0 {
		c.PingEvery = def.PingEvery
	}
	if c.PongWait <= 0 {
		c.PongWait = def.PongWait
	}
	if c.WriteWait <= 0 {
		c.WriteWait = def.WriteWait
	}
	if c.NewHandler == nil {
		c.NewHandler = DefaultHandler
	}
	if strings.TrimSpace(c.EmbedURL) == "" {
		return Config{}, fmt.Errorf("relay: embed url required")
	}
	if c.ExportFormat != "" && !c.ExportFormat.Valid() {
		return Config{}, fmt.Errorf("relay: export format %q", c.ExportFormat)
	}
	if strings.TrimSpace(c.Origin) == "" {
		origin, err := frame.Origin(c.EmbedURL)
		if err != nil {
			return Config{}, fmt.Errorf("relay: derive origin: %w", err)
		}
		c.Origin = origin
	}
	return c, nil
}
