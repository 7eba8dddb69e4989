package session

import "github.com/danmuck/drawembed/internal/protocol"

// State is the channel lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingInit
	StateReady
	StateEditing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingInit:
		return "awaiting-init"
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// effect is the side effect of a transition, applied by the channel after
// the state change.
type effect int

const (
	effectNone effect = iota
	effectSendLoad
	effectSendConfiguration
	effectRecordScale
	effectResolve
	effectClose
	effectExportSave
)

// dispatch says how the accepted event reaches the handler.
type dispatch int

const (
	dispatchEvent dispatch = iota
	// dispatchNone withholds the event; a later reply stands in for it.
	dispatchNone
	// dispatchAsSave delivers an export reply as the save it answers.
	dispatchAsSave
)

type transition struct {
	to       State
	guard    func(cfg *Config, ev protocol.Event) bool
	effect   effect
	dispatch dispatch
}

type transitionKey struct {
	from State
	kind protocol.EventKind
}

// transitions lists every accepted (state, event) pair. Rows for one key are
// tried in order; the first passing guard wins. Pairs without a row are
// dropped.
var transitions = map[transitionKey][]transition{
	{StateAwaitingInit, protocol.EventKindInit}: {
		{to: StateReady, effect: effectSendLoad},
	},
	{StateAwaitingInit, protocol.EventKindConfigure}: {
		{to: StateAwaitingInit, guard: hasConfiguration, effect: effectSendConfiguration},
	},
	{StateReady, protocol.EventKindLoad}: {
		{to: StateEditing, effect: effectRecordScale},
	},
	{StateEditing, protocol.EventKindLoad}: {
		{to: StateEditing, effect: effectRecordScale},
	},
	{StateEditing, protocol.EventKindAutoSave}: {
		{to: StateEditing},
	},
	{StateEditing, protocol.EventKindSave}: {
		{to: StateEditing, guard: exportsOnSave, effect: effectExportSave, dispatch: dispatchNone},
		{to: StateClosed, guard: exits, effect: effectClose},
		{to: StateEditing},
	},
	{StateEditing, protocol.EventKindExit}: {
		{to: StateClosed, effect: effectClose},
	},
	{StateEditing, protocol.EventKindConfigure}: {
		{to: StateEditing},
	},
	{StateEditing, protocol.EventKindMerge}: {
		{to: StateEditing, effect: effectResolve},
	},
	{StateEditing, protocol.EventKindPrompt}: {
		{to: StateEditing, effect: effectResolve},
	},
	{StateEditing, protocol.EventKindTemplate}: {
		{to: StateEditing, effect: effectResolve},
	},
	{StateEditing, protocol.EventKindDraft}: {
		{to: StateEditing, effect: effectResolve},
	},
	{StateEditing, protocol.EventKindExport}: {
		{to: StateClosed, guard: savedExportExits, effect: effectClose, dispatch: dispatchAsSave},
		{to: StateEditing, guard: savedExport, dispatch: dispatchAsSave},
		{to: StateEditing, effect: effectResolve},
	},
}

func lookupTransition(cfg *Config, from State, ev protocol.Event) (transition, bool) {
	for _, t := range transitions[transitionKey{from: from, kind: ev.EventKind()}] {
		if t.guard == nil || t.guard(cfg, ev) {
			return t, true
		}
	}
	return transition{}, false
}

// Accepts reports whether an event of kind is valid in state s for some
// payload.
func Accepts(s State, kind protocol.EventKind) bool {
	return len(transitions[transitionKey{from: s, kind: kind}]) > 0
}

func hasConfiguration(cfg *Config, _ protocol.Event) bool {
	return cfg.Configuration != nil
}

func exits(_ *Config, ev protocol.Event) bool {
	return protocol.Terminal(ev)
}

func exportsOnSave(cfg *Config, _ protocol.Event) bool {
	return cfg.ExportFormat != ""
}

// savedExport matches the export the channel sent for a save.
func savedExport(cfg *Config, ev protocol.Event) bool {
	export, ok := ev.(protocol.EventExport)
	return ok && cfg.ExportFormat != "" &&
		protocol.StringValue(export.Message.ParentEvent) == protocol.ParentEventSave
}

func savedExportExits(cfg *Config, ev protocol.Event) bool {
	if !savedExport(cfg, ev) {
		return false
	}
	exit := ev.(protocol.EventExport).Message.Exit
	return exit != nil && *exit
}
