package protocol

// EventKind is the `event` discriminant of a frame->host message.
type EventKind string

const (
	EventKindInit      EventKind = "init"
	EventKindLoad      EventKind = "load"
	EventKindAutoSave  EventKind = "autosave"
	EventKindSave      EventKind = "save"
	EventKindExit      EventKind = "exit"
	EventKindConfigure EventKind = "configure"
	EventKindMerge     EventKind = "merge"
	EventKindPrompt    EventKind = "prompt"
	EventKindTemplate  EventKind = "template"
	EventKindDraft     EventKind = "draft"
	EventKindExport    EventKind = "export"
)

// EventKinds lists every event discriminant in catalog order.
func EventKinds() []EventKind {
	return []EventKind{
		EventKindInit,
		EventKindLoad,
		EventKindAutoSave,
		EventKindSave,
		EventKindExit,
		EventKindConfigure,
		EventKindMerge,
		EventKindPrompt,
		EventKindTemplate,
		EventKindDraft,
		EventKindExport,
	}
}

// ActionKind is the `action` discriminant of a host->frame message.
type ActionKind string

const (
	ActionKindLoad      ActionKind = "load"
	ActionKindMerge     ActionKind = "merge"
	ActionKindConfigure ActionKind = "configure"
	ActionKindDialog    ActionKind = "dialog"
	ActionKindPrompt    ActionKind = "prompt"
	ActionKindTemplate  ActionKind = "template"
	ActionKindLayout    ActionKind = "layout"
	ActionKindDraft     ActionKind = "draft"
	ActionKindStatus    ActionKind = "status"
	ActionKindSpinner   ActionKind = "spinner"
	ActionKindExport    ActionKind = "export"
)

// ActionKinds lists every action discriminant in catalog order.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionKindLoad,
		ActionKindMerge,
		ActionKindConfigure,
		ActionKindDialog,
		ActionKindPrompt,
		ActionKindTemplate,
		ActionKindLayout,
		ActionKindDraft,
		ActionKindStatus,
		ActionKindSpinner,
		ActionKindExport,
	}
}

// ExportFormat is an output format accepted by the export action.
type ExportFormat string

const (
	ExportHTML   ExportFormat = "html"
	ExportHTML2  ExportFormat = "html2"
	ExportSVG    ExportFormat = "svg"
	ExportXMLSVG ExportFormat = "xmlsvg"
	ExportPNG    ExportFormat = "png"
	ExportXMLPNG ExportFormat = "xmlpng"
)

func (f ExportFormat) Valid() bool {
	switch f {
	case ExportHTML, ExportHTML2, ExportSVG, ExportXMLSVG, ExportPNG, ExportXMLPNG:
		return true
	default:
		return false
	}
}

// PagePosition is a rectangle in diagram coordinates.
type PagePosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a 2D translation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
