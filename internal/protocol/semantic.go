package protocol

import (
	"fmt"
	"strings"
)

// ValidateAction checks constraints the JSON shape alone cannot express.
func ValidateAction(a Action) error {
	switch a := a.(type) {
	case ActionLoad:
		sources := 0
		if a.XML != nil {
			sources++
		}
		if a.XMLPNG != nil {
			sources++
		}
		if a.Descriptor != nil {
			sources++
			if a.Descriptor.Format != DescriptorFormatCSV {
				return fmt.Errorf("%w: load descriptor format %q", ErrInvalidAction, a.Descriptor.Format)
			}
		}
		if sources > 1 {
			return fmt.Errorf("%w: load takes one of xml, xmlpng or descriptor", ErrInvalidAction)
		}
	case ActionExport:
		if !a.Format.Valid() {
			return fmt.Errorf("%w: export format %q", ErrInvalidAction, a.Format)
		}
		if a.Scale != nil && *a.Scale <= 0 {
			return fmt.Errorf("%w: export scale must be positive", ErrInvalidAction)
		}
	case ActionLayout:
		for i, layout := range a.Layouts {
			if strings.TrimSpace(layout) == "" {
				return fmt.Errorf("%w: layouts[%d] is empty", ErrInvalidAction, i)
			}
		}
	case ActionDraft:
		if strings.TrimSpace(a.EditKey) == "" || strings.TrimSpace(a.DiscardKey) == "" {
			return fmt.Errorf("%w: draft requires editKey and discardKey", ErrInvalidAction)
		}
	}
	return nil
}

// ExpectsReply returns the event kind the editor answers a with, if any.
// Template only replies when callback is set.
func ExpectsReply(a Action) (EventKind, bool) {
	switch a := a.(type) {
	case ActionMerge:
		return EventKindMerge, true
	case ActionPrompt:
		return EventKindPrompt, true
	case ActionTemplate:
		return EventKindTemplate, BoolValue(a.Callback)
	case ActionDraft:
		return EventKindDraft, true
	case ActionExport:
		return EventKindExport, true
	default:
		return "", false
	}
}

// IsReply reports whether e can answer a host request.
func IsReply(e Event) bool {
	switch e.(type) {
	case EventMerge, EventPrompt, EventTemplate, EventDraft, EventExport:
		return true
	default:
		return false
	}
}

// ParentEventOf returns the back-reference a reply carries to the request
// that triggered it, if any.
func ParentEventOf(e Event) string {
	switch e := e.(type) {
	case EventExport:
		return StringValue(e.Message.ParentEvent)
	case EventSave:
		return StringValue(e.ParentEvent)
	case EventExit:
		return StringValue(e.ParentEvent)
	default:
		return ""
	}
}

// ParentEventOfAction returns the back-reference an action asks the editor
// to echo, if any.
func ParentEventOfAction(a Action) string {
	if a, ok := a.(ActionExport); ok {
		return StringValue(a.ParentEvent)
	}
	return ""
}

// Terminal reports whether e ends the editing session.
func Terminal(e Event) bool {
	switch e := e.(type) {
	case EventExit:
		return true
	case EventSave:
		return e.Exits()
	default:
		return false
	}
}
