package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/danmuck/drawembed/internal/protocol/schema"
)

// DecodeEvent parses one frame->host message. It fails for anything that is
// not a JSON object carrying a recognized `event` discriminant and the
// fields that variant requires.
func DecodeEvent(data []byte) (Event, error) {
	fields, kind, err := splitMessage(data, eventKey)
	if err != nil {
		return nil, err
	}
	if !schema.Known(schema.SetEvent, kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	if err := schema.Validate(schema.SetEvent, kind, fields); err != nil {
		return nil, err
	}
	switch EventKind(kind) {
	case EventKindInit:
		return decodeEvent[EventInit](data)
	case EventKindLoad:
		return decodeEvent[EventLoad](data)
	case EventKindAutoSave:
		return decodeEvent[EventAutoSave](data)
	case EventKindSave:
		return decodeEvent[EventSave](data)
	case EventKindExit:
		return decodeEvent[EventExit](data)
	case EventKindConfigure:
		return decodeEvent[EventConfigure](data)
	case EventKindMerge:
		return decodeEvent[EventMerge](data)
	case EventKindPrompt:
		return decodeEvent[EventPrompt](data)
	case EventKindTemplate:
		return decodeEvent[EventTemplate](data)
	case EventKindDraft:
		return decodeEvent[EventDraft](data)
	case EventKindExport:
		return decodeEvent[EventExport](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
}

// DecodeAction parses one host->frame message.
func DecodeAction(data []byte) (Action, error) {
	fields, kind, err := splitMessage(data, actionKey)
	if err != nil {
		return nil, err
	}
	if !schema.Known(schema.SetAction, kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
	if err := schema.Validate(schema.SetAction, kind, fields); err != nil {
		return nil, err
	}
	switch ActionKind(kind) {
	case ActionKindLoad:
		return decodeAction[ActionLoad](data)
	case ActionKindMerge:
		return decodeAction[ActionMerge](data)
	case ActionKindConfigure:
		return decodeAction[ActionConfigure](data)
	case ActionKindDialog:
		return decodeAction[ActionDialog](data)
	case ActionKindPrompt:
		return decodeAction[ActionPrompt](data)
	case ActionKindTemplate:
		return decodeAction[ActionTemplate](data)
	case ActionKindLayout:
		return decodeAction[ActionLayout](data)
	case ActionKindDraft:
		return decodeAction[ActionDraft](data)
	case ActionKindStatus:
		return decodeAction[ActionStatus](data)
	case ActionKindSpinner:
		return decodeAction[ActionSpinner](data)
	case ActionKindExport:
		return decodeAction[ActionExport](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// PeekEventKind returns the event discriminant without decoding the payload.
func PeekEventKind(data []byte) (EventKind, error) {
	_, kind, err := splitMessage(data, eventKey)
	if err != nil {
		return "", err
	}
	return EventKind(kind), nil
}

func splitMessage(data []byte, key string) (map[string]json.RawMessage, string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if fields == nil {
		return nil, "", ErrNotObject
	}
	raw, ok := fields[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrMissingDiscriminant, key)
	}
	var kind string
	if err := json.Unmarshal(raw, &kind); err != nil || kind == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrMissingDiscriminant, key)
	}
	return fields, kind, nil
}

func decodeEvent[T Event](data []byte) (Event, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("protocol: decode event: %w", err)
	}
	return out, nil
}

func decodeAction[T Action](data []byte) (Action, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("protocol: decode action: %w", err)
	}
	return out, nil
}
