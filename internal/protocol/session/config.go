package session

import (
	"fmt"
	"strings"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danmuck/drawembed/internal/protocol/session"

// Config defines one channel. It is copied by NewChannel.
type Config struct {
	// SessionID is the opaque id the transport stamps on messages from the
	// attached frame. Empty generates one.
	SessionID string
	// Origin is the expected sender origin of every frame message.
	Origin string
	// Load is sent once, when the editor reports init.
	Load protocol.ActionLoad
	// Configuration answers the editor's configure event when set. The embed
	// address must carry configure=1 for the editor to ask.
	Configuration map[string]any
	// ExportFormat, when set, answers every save with an export in this
	// format. The handler's OnSave then receives the export data instead of
	// the raw save.
	ExportFormat protocol.ExportFormat
	Limits       frame.Limits
	Logger       *zerolog.Logger
	Tracer       trace.Tracer
	Observer     Observer
}

// DefaultConfig returns a config for origin with an empty diagram load.
func DefaultConfig(origin string) Config {
	return Config{
		Origin: origin,
		Load:   protocol.ActionLoad{XML: protocol.String("")},
		Limits: frame.DefaultLimits(),
	}
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.SessionID) == "" {
		c.SessionID = uuid.NewString()
	}
	if c.Limits.MaxPayloadBytes == 0 {
		c.Limits = frame.DefaultLimits()
	}
	if c.Logger == nil {
		l := log.Logger
		c.Logger = &l
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	return c
}

// Validate checks the fields a channel cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Origin) == "" {
		return fmt.Errorf("%w: origin required", ErrInvalidConfig)
	}
	if err := protocol.ValidateAction(c.Load); err != nil {
		return fmt.Errorf("%w: initial load: %v", ErrInvalidConfig, err)
	}
	if c.ExportFormat != "" && !c.ExportFormat.Valid() {
		return fmt.Errorf("%w: export format %q", ErrInvalidConfig, c.ExportFormat)
	}
	return nil
}
