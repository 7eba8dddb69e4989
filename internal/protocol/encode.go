package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	eventKey  = "event"
	actionKey = "action"
)

// EncodeAction validates a and returns its wire form.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	if err := ValidateAction(a); err != nil {
		return nil, err
	}
	return marshal(a)
}

// EncodeEvent returns the wire form of e. The host never sends events; this
// exists for fakes and relays that stand in for the frame.
func EncodeEvent(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil event", ErrUnknownEvent)
	}
	return marshal(e)
}

// marshal encodes without HTML escaping; diagram xml stays readable on the wire.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// tagged marshals v and prepends the discriminant as the first key so the
// payload keeps its declared field order.
func tagged(key, kind string, v any) ([]byte, error) {
	body, err := marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, ErrNotObject
	}
	value, err := marshal(kind)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(key)+len(value)+4)
	out = append(out, '{', '"')
	out = append(out, key...)
	out = append(out, '"', ':')
	out = append(out, value...)
	if len(body) == 2 {
		return append(out, '}'), nil
	}
	out = append(out, ',')
	return append(out, body[1:]...), nil
}

func (e EventInit) MarshalJSON() ([]byte, error) {
	type wire EventInit
	return tagged(eventKey, string(EventKindInit), wire(e))
}

func (e EventLoad) MarshalJSON() ([]byte, error) {
	type wire EventLoad
	return tagged(eventKey, string(EventKindLoad), wire(e))
}

func (e EventAutoSave) MarshalJSON() ([]byte, error) {
	type wire EventAutoSave
	return tagged(eventKey, string(EventKindAutoSave), wire(e))
}

func (e EventSave) MarshalJSON() ([]byte, error) {
	type wire EventSave
	return tagged(eventKey, string(EventKindSave), wire(e))
}

func (e EventExit) MarshalJSON() ([]byte, error) {
	type wire EventExit
	return tagged(eventKey, string(EventKindExit), wire(e))
}

func (e EventConfigure) MarshalJSON() ([]byte, error) {
	type wire EventConfigure
	return tagged(eventKey, string(EventKindConfigure), wire(e))
}

func (e EventMerge) MarshalJSON() ([]byte, error) {
	type wire EventMerge
	return tagged(eventKey, string(EventKindMerge), wire(e))
}

func (e EventPrompt) MarshalJSON() ([]byte, error) {
	type wire EventPrompt
	return tagged(eventKey, string(EventKindPrompt), wire(e))
}

func (e EventTemplate) MarshalJSON() ([]byte, error) {
	type wire EventTemplate
	return tagged(eventKey, string(EventKindTemplate), wire(e))
}

func (e EventDraft) MarshalJSON() ([]byte, error) {
	type wire EventDraft
	return tagged(eventKey, string(EventKindDraft), wire(e))
}

func (e EventExport) MarshalJSON() ([]byte, error) {
	type wire EventExport
	return tagged(eventKey, string(EventKindExport), wire(e))
}

func (a ActionLoad) MarshalJSON() ([]byte, error) {
	type wire ActionLoad
	return tagged(actionKey, string(ActionKindLoad), wire(a))
}

func (a ActionMerge) MarshalJSON() ([]byte, error) {
	type wire ActionMerge
	return tagged(actionKey, string(ActionKindMerge), wire(a))
}

func (a ActionConfigure) MarshalJSON() ([]byte, error) {
	type wire ActionConfigure
	if a.Config == nil {
		a.Config = map[string]any{}
	}
	return tagged(actionKey, string(ActionKindConfigure), wire(a))
}

func (a ActionDialog) MarshalJSON() ([]byte, error) {
	type wire ActionDialog
	return tagged(actionKey, string(ActionKindDialog), wire(a))
}

func (a ActionPrompt) MarshalJSON() ([]byte, error) {
	type wire ActionPrompt
	return tagged(actionKey, string(ActionKindPrompt), wire(a))
}

func (a ActionTemplate) MarshalJSON() ([]byte, error) {
	type wire ActionTemplate
	return tagged(actionKey, string(ActionKindTemplate), wire(a))
}

func (a ActionLayout) MarshalJSON() ([]byte, error) {
	type wire ActionLayout
	if a.Layouts == nil {
		a.Layouts = []string{}
	}
	return tagged(actionKey, string(ActionKindLayout), wire(a))
}

func (a ActionDraft) MarshalJSON() ([]byte, error) {
	type wire ActionDraft
	return tagged(actionKey, string(ActionKindDraft), wire(a))
}

func (a ActionStatus) MarshalJSON() ([]byte, error) {
	type wire ActionStatus
	return tagged(actionKey, string(ActionKindStatus), wire(a))
}

func (a ActionSpinner) MarshalJSON() ([]byte, error) {
	type wire ActionSpinner
	return tagged(actionKey, string(ActionKindSpinner), wire(a))
}

func (a ActionExport) MarshalJSON() ([]byte, error) {
	type wire ActionExport
	return tagged(actionKey, string(ActionKindExport), wire(a))
}
