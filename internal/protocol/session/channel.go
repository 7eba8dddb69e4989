package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Channel is the host end of one embedded editor frame. All state changes go
// through the transition table; handlers run outside the channel lock and may
// call Send or Request.
type Channel struct {
	cfg       Config
	transport Transport
	handler   Handler
	logger    zerolog.Logger
	pending   *PendingRequests

	mu          sync.Mutex
	state       State
	unsubscribe func()
	scale       float64

	ready     chan struct{}
	done      chan struct{}
	readyOnce sync.Once
	doneOnce  sync.Once
}

// NewChannel returns an unattached channel. A nil handler ignores events.
func NewChannel(cfg Config, transport Transport, handler Handler) *Channel {
	cfg = cfg.WithDefaults()
	if handler == nil {
		handler = HandlerFuncs{}
	}
	return &Channel{
		cfg:       cfg,
		transport: transport,
		handler:   handler,
		logger:    cfg.Logger.With().Str("session", cfg.SessionID).Logger(),
		pending:   NewPendingRequests(),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (c *Channel) ID() string {
	return c.cfg.SessionID
}

func (c *Channel) Origin() string {
	return c.cfg.Origin
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scale is the render scale reported by the last load event.
func (c *Channel) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Ready is closed once the editor reported init and the initial load went out.
func (c *Channel) Ready() <-chan struct{} {
	return c.ready
}

// Done is closed when the channel reaches closed.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Pending returns the requests still awaiting a reply.
func (c *Channel) Pending() []PendingRequest {
	return c.pending.List()
}

// SetHandler replaces the handler. It lets a handler that replies through
// the channel be built after the channel; it fails once attached.
func (c *Channel) SetHandler(handler Handler) error {
	if handler == nil {
		handler = HandlerFuncs{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUninitialized {
		return ErrAlreadyAttached
	}
	c.handler = handler
	return nil
}

// Attach subscribes to the transport and starts waiting for init.
func (c *Channel) Attach() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if c.transport == nil {
		return fmt.Errorf("%w: transport required", ErrInvalidConfig)
	}

	c.mu.Lock()
	switch c.state {
	case StateUninitialized:
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	default:
		c.mu.Unlock()
		return ErrAlreadyAttached
	}
	c.state = StateAwaitingInit
	c.mu.Unlock()
	c.transitioned(StateUninitialized, StateAwaitingInit)

	unsubscribe, err := c.transport.Subscribe(c.Receive)
	if err != nil {
		c.mu.Lock()
		c.state = StateUninitialized
		c.mu.Unlock()
		return fmt.Errorf("session: subscribe: %w", err)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		return ErrClosed
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	c.logger.Debug().Str("origin", c.cfg.Origin).Msg("session.Attach subscribed")
	return nil
}

// Detach forces the channel closed from any state, removing the listener
// and failing pending requests with ErrClosed. It is safe to call repeatedly.
func (c *Channel) Detach() {
	c.mu.Lock()
	from := c.state
	if from == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	c.transitioned(from, StateClosed)
	c.shutdown(unsubscribe)
	c.logger.Debug().Str("from", from.String()).Msg("session.Detach")
}

// Send encodes and posts one action. Actions sent before ready are delivered
// but the editor may not have installed its listener yet.
func (c *Channel) Send(action protocol.Action) error {
	if action == nil {
		return ErrNilAction
	}
	if err := c.sendable(action); err != nil {
		return err
	}
	return c.post(action)
}

// Request sends an action the editor answers and registers reply for the
// answering event. It returns the request id.
func (c *Channel) Request(action protocol.Action, reply ReplyFunc) (string, error) {
	if action == nil {
		return "", ErrNilAction
	}
	kind, ok := protocol.ExpectsReply(action)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoReply, action.ActionKind())
	}
	if err := c.sendable(action); err != nil {
		return "", err
	}
	if err := protocol.ValidateAction(action); err != nil {
		return "", err
	}
	req := c.pending.Add(kind, action, reply, time.Now())
	if err := c.post(action); err != nil {
		c.pending.Remove(req.ID)
		return "", err
	}
	return req.ID, nil
}

func (c *Channel) sendable(action protocol.Action) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	switch state {
	case StateUninitialized:
		return ErrNotAttached
	case StateClosed:
		return ErrClosed
	case StateAwaitingInit:
		c.logger.Debug().Str("action", string(action.ActionKind())).Msg("session.Send before ready")
	}
	return nil
}

func (c *Channel) post(action protocol.Action) error {
	kind := string(action.ActionKind())
	_, span := c.cfg.Tracer.Start(context.Background(), "session.Send",
		trace.WithAttributes(
			attribute.String("drawembed.session", c.cfg.SessionID),
			attribute.String("drawembed.action", kind),
		))
	defer span.End()

	data, err := protocol.EncodeAction(action)
	if err == nil {
		err = c.transport.Post(data)
	}
	c.cfg.Observer.ActionSent(kind, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("action", kind).Msg("session.Send failed")
		return err
	}
	c.logger.Debug().Str("action", kind).Int("bytes", len(data)).Msg("session.Send")
	return nil
}

// Receive is the single ingress point for frame messages. Messages from the
// wrong origin or source, undecodable messages and events the current state
// does not accept are dropped without reaching the handler.
func (c *Channel) Receive(msg frame.Message) {
	_, span := c.cfg.Tracer.Start(context.Background(), "session.Receive",
		trace.WithAttributes(attribute.String("drawembed.session", c.cfg.SessionID)))
	defer span.End()

	if err := frame.Check(msg, c.cfg.Limits); err != nil {
		c.drop(span, DropPayload, err)
		return
	}
	switch c.State() {
	case StateClosed:
		c.drop(span, DropClosed, nil)
		return
	case StateUninitialized:
		c.drop(span, DropDetached, nil)
		return
	}
	if !frame.SameOrigin(c.cfg.Origin, msg.Origin) {
		c.drop(span, DropOrigin, fmt.Errorf("origin %q", msg.Origin))
		return
	}
	if msg.Source != c.cfg.SessionID {
		c.drop(span, DropSource, fmt.Errorf("source %q", msg.Source))
		return
	}
	ev, err := protocol.DecodeEvent(msg.Data)
	if err != nil {
		c.drop(span, DropDecode, err)
		return
	}
	kind := string(ev.EventKind())
	span.SetAttributes(attribute.String("drawembed.event", kind))

	c.mu.Lock()
	from := c.state
	t, ok := lookupTransition(&c.cfg, from, ev)
	if !ok {
		c.mu.Unlock()
		c.drop(span, DropState, fmt.Errorf("%s in %s", kind, from))
		return
	}
	c.state = t.to
	handler := c.handler
	var (
		outbound    protocol.Action
		resolved    PendingRequest
		hasResolved bool
		unsubscribe func()
	)
	switch t.effect {
	case effectSendLoad:
		outbound = c.cfg.Load
	case effectSendConfiguration:
		outbound = protocol.ActionConfigure{Config: c.cfg.Configuration}
	case effectRecordScale:
		if load, ok := ev.(protocol.EventLoad); ok {
			c.scale = load.Scale
		}
	case effectResolve:
		resolved, hasResolved = c.pending.Resolve(ev)
	case effectExportSave:
		if save, ok := ev.(protocol.EventSave); ok {
			outbound = protocol.ActionExport{
				Format:      c.cfg.ExportFormat,
				ParentEvent: protocol.String(protocol.ParentEventSave),
				Exit:        save.Exit,
			}
		}
	case effectClose:
		unsubscribe = c.unsubscribe
		c.unsubscribe = nil
	}
	c.mu.Unlock()

	c.cfg.Observer.EventReceived(kind)
	c.logger.Debug().Str("event", kind).Str("state", t.to.String()).Msg("session.Receive")
	if from != t.to {
		c.transitioned(from, t.to)
	}

	if outbound != nil {
		if err := c.post(outbound); err != nil {
			span.RecordError(err)
		}
	}
	if t.to == StateReady {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	if t.to == StateClosed {
		c.shutdown(unsubscribe)
	}
	if hasResolved && resolved.reply != nil {
		resolved.reply(ev, replyError(ev))
	}
	switch t.dispatch {
	case dispatchNone:
	case dispatchAsSave:
		protocol.VisitEvent(protocol.SaveFromExport(ev.(protocol.EventExport)), handler)
	default:
		protocol.VisitEvent(ev, handler)
	}
}

// shutdown runs once the state is closed.
func (c *Channel) shutdown(unsubscribe func()) {
	if unsubscribe != nil {
		unsubscribe()
	}
	c.doneOnce.Do(func() { close(c.done) })
	for _, req := range c.pending.Drain() {
		if req.reply != nil {
			req.reply(nil, ErrClosed)
		}
	}
}

func (c *Channel) transitioned(from, to State) {
	c.cfg.Observer.Transition(from.String(), to.String())
	c.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("session.Transition")
}

func (c *Channel) drop(span trace.Span, reason string, err error) {
	c.cfg.Observer.EventDropped(reason)
	span.SetAttributes(attribute.String("drawembed.drop", reason))
	ev := c.logger.Debug().Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("session.Receive dropped")
}

// replyError extracts the application failure a reply event reports.
func replyError(ev protocol.Event) error {
	switch ev := ev.(type) {
	case protocol.EventMerge:
		return ev.Err()
	case protocol.EventDraft:
		return ev.Err()
	default:
		return nil
	}
}

// IsApplicationError reports whether err is a failure reported by the editor
// rather than by the channel.
func IsApplicationError(err error) bool {
	var merge *protocol.MergeError
	var draft *protocol.DraftError
	return errors.As(err, &merge) || errors.As(err, &draft)
}
