package protocol

import "encoding/json"

// Event is one frame->host message. The set of implementations is closed.
type Event interface {
	EventKind() EventKind
	accept(v EventVisitor)
}

// EventVisitor has one method per event variant. Implementations must
// handle every variant; a new variant adds a method here.
type EventVisitor interface {
	OnInit(EventInit)
	OnLoad(EventLoad)
	OnAutoSave(EventAutoSave)
	OnSave(EventSave)
	OnExit(EventExit)
	OnConfigure(EventConfigure)
	OnMerge(EventMerge)
	OnPrompt(EventPrompt)
	OnTemplate(EventTemplate)
	OnDraft(EventDraft)
	OnExport(EventExport)
}

// VisitEvent routes e to the visitor method matching its variant.
func VisitEvent(e Event, v EventVisitor) {
	if e == nil || v == nil {
		return
	}
	e.accept(v)
}

// EventInit signals the editor is ready to receive a load action.
type EventInit struct{}

// EventLoad reports the diagram has been loaded and displayed.
type EventLoad struct {
	XML   string  `json:"xml"`
	Scale float64 `json:"scale"`
}

// EventAutoSave is emitted on every change when the load action enabled autosave.
type EventAutoSave struct {
	Bounds      PagePosition `json:"bounds"`
	CurrentPage int          `json:"currentPage"`
	Page        PagePosition `json:"page"`
	PageVisible bool         `json:"pageVisible"`
	Scale       float64      `json:"scale"`
	Translate   Point        `json:"translate"`
	XML         string       `json:"xml"`
}

// EventSave is emitted when the user saves. Exit is set for save-and-exit.
type EventSave struct {
	Exit *bool  `json:"exit,omitempty"`
	XML  string `json:"xml"`
	// ParentEvent is set when the save was triggered by anything other than
	// the save button.
	ParentEvent *string `json:"parentEvent,omitempty"`
}

// Exits reports whether the save also ends the session.
func (e EventSave) Exits() bool {
	return e.Exit != nil && *e.Exit
}

const (
	// ParentEventSave tags an export requested on behalf of a save.
	ParentEventSave = "save"
	// ParentEventExport marks a save whose XML carries exported data.
	ParentEventExport = "export"
)

// SaveFromExport turns an export answering a save into the save payload. XML
// holds the export data in the requested format.
func SaveFromExport(e EventExport) EventSave {
	return EventSave{
		Exit:        e.Message.Exit,
		XML:         e.Data,
		ParentEvent: String(ParentEventExport),
	}
}

// EventExit is emitted when the user leaves the editor.
type EventExit struct {
	Modified    bool    `json:"modified"`
	ParentEvent *string `json:"parentEvent,omitempty"`
}

// EventConfigure asks the host for editor configuration.
type EventConfigure struct{}

// EventMerge replies to a merge action. A non-empty Error is a failed merge.
type EventMerge struct {
	Error string `json:"error"`
	// Message echoes the merge request. The hosted editor sends either a
	// string or the original action object, so it is kept raw.
	Message json.RawMessage `json:"message,omitempty"`
}

// Err returns a *MergeError when the editor reported a failure.
func (e EventMerge) Err() error {
	if e.Error == "" {
		return nil
	}
	return &MergeError{Reason: e.Error, Message: e.MessageText()}
}

// MessageText returns Message as text, unquoting it when it is a JSON string.
func (e EventMerge) MessageText() string {
	if len(e.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	return string(e.Message)
}

// EventPrompt replies to a prompt action with the entered value.
type EventPrompt struct {
	Value   string       `json:"value"`
	Message ActionPrompt `json:"message"`
}

// EventTemplate replies to a template action with callback enabled.
type EventTemplate struct {
	XML     string         `json:"xml"`
	Name    string         `json:"name"`
	Message ActionTemplate `json:"message"`
	Libs    *string        `json:"libs,omitempty"`
	BuiltIn *bool          `json:"builtIn,omitempty"`
	Blank   *bool          `json:"blank,omitempty"`
}

// EventDraft replies to a draft action.
type EventDraft struct {
	Error   *string     `json:"error,omitempty"`
	Result  *string     `json:"result,omitempty"`
	Message ActionDraft `json:"message"`
}

// Err returns a *DraftError when the editor reported a failure.
func (e EventDraft) Err() error {
	if e.Error == nil || *e.Error == "" {
		return nil
	}
	return &DraftError{Reason: *e.Error}
}

// EventExport replies to an export action with the encoded output.
type EventExport struct {
	Format  ExportFormat `json:"format"`
	Message ActionExport `json:"message"`
	Data    string       `json:"data"`
	XML     string       `json:"xml"`
}

func (EventInit) EventKind() EventKind      { return EventKindInit }
func (EventLoad) EventKind() EventKind      { return EventKindLoad }
func (EventAutoSave) EventKind() EventKind  { return EventKindAutoSave }
func (EventSave) EventKind() EventKind      { return EventKindSave }
func (EventExit) EventKind() EventKind      { return EventKindExit }
func (EventConfigure) EventKind() EventKind { return EventKindConfigure }
func (EventMerge) EventKind() EventKind     { return EventKindMerge }
func (EventPrompt) EventKind() EventKind    { return EventKindPrompt }
func (EventTemplate) EventKind() EventKind  { return EventKindTemplate }
func (EventDraft) EventKind() EventKind     { return EventKindDraft }
func (EventExport) EventKind() EventKind    { return EventKindExport }

func (e EventInit) accept(v EventVisitor)      { v.OnInit(e) }
func (e EventLoad) accept(v EventVisitor)      { v.OnLoad(e) }
func (e EventAutoSave) accept(v EventVisitor)  { v.OnAutoSave(e) }
func (e EventSave) accept(v EventVisitor)      { v.OnSave(e) }
func (e EventExit) accept(v EventVisitor)      { v.OnExit(e) }
func (e EventConfigure) accept(v EventVisitor) { v.OnConfigure(e) }
func (e EventMerge) accept(v EventVisitor)     { v.OnMerge(e) }
func (e EventPrompt) accept(v EventVisitor)    { v.OnPrompt(e) }
func (e EventTemplate) accept(v EventVisitor)  { v.OnTemplate(e) }
func (e EventDraft) accept(v EventVisitor)     { v.OnDraft(e) }
func (e EventExport) accept(v EventVisitor)    { v.OnExport(e) }
