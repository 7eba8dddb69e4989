package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/danmuck/drawembed/internal/protocol/embedurl"
	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/danmuck/drawembed/internal/relay"
)

// EmbedOptions returns the address builder input. A relative base_url is
// resolved against relay.document_url.
func (c Config) EmbedOptions() (embedurl.Options, error) {
	opts := embedurl.Options{
		BaseURL:    c.BaseURL,
		Parameters: c.Parameters,
		Configure:  c.Configure,
	}
	if doc := strings.TrimSpace(c.Relay.DocumentURL); doc != "" {
		u, err := url.Parse(doc)
		if err != nil {
			return embedurl.Options{}, fmt.Errorf("config: document_url: %w", err)
		}
		opts.Document = u
	}
	return opts, nil
}

// EmbedURL builds the editor address.
func (c Config) EmbedURL() (string, error) {
	opts, err := c.EmbedOptions()
	if err != nil {
		return "", err
	}
	return embedurl.Build(opts)
}

// FrameOrigin is relay.origin, or the origin of the embed address.
func (c Config) FrameOrigin() (string, error) {
	if origin := strings.TrimSpace(c.Relay.Origin); origin != "" {
		return origin, nil
	}
	embed, err := c.EmbedURL()
	if err != nil {
		return "", err
	}
	return frame.Origin(embed)
}

// SessionConfig returns the channel config for one frame.
func (c Config) SessionConfig() (session.Config, error) {
	origin, err := c.FrameOrigin()
	if err != nil {
		return session.Config{}, err
	}
	cfg := session.DefaultConfig(origin)
	cfg.Load = c.Load
	cfg.Configuration = c.Configuration
	cfg.ExportFormat = c.ExportFormat
	return cfg, nil
}

// RelayConfig maps the [relay] table and the embed settings to the relay
// server config.
func (c Config) RelayConfig() (relay.Config, error) {
	embed, err := c.EmbedURL()
	if err != nil {
		return relay.Config{}, err
	}
	origin, err := c.FrameOrigin()
	if err != nil {
		return relay.Config{}, err
	}
	out := relay.DefaultConfig()
	out.Addr = c.Relay.Addr
	out.EmbedURL = embed
	out.Origin = origin
	out.Load = c.Load
	out.Configuration = c.Configuration
	out.ExportFormat = c.ExportFormat
	out.Token = c.Relay.Token
	out.CORSOrigins = c.Relay.CORSOrigins
	out.SecurityMode = relay.NormalizeSecurityMode(relay.SecurityMode(c.Relay.SecurityMode))
	out.TLS = relay.TLSConfig{
		Enabled:  c.Relay.TLSCertFile != "" || c.Relay.TLSKeyFile != "",
		CertFile: c.Relay.TLSCertFile,
		KeyFile:  c.Relay.TLSKeyFile,
	}
	if c.Relay.ClosedSessionCache > 0 {
		out.ClosedSessionCache = c.Relay.ClosedSessionCache
	}
	return out, nil
}
