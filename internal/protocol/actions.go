package protocol

// Action is one host->frame message. The set of implementations is closed.
type Action interface {
	ActionKind() ActionKind
	isAction()
}

// CSVDescriptor carries CSV data for the load action.
type CSVDescriptor struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

// DescriptorFormatCSV is the only descriptor format the editor accepts.
const DescriptorFormatCSV = "csv"

// ActionLoad loads diagram content into the editor.
type ActionLoad struct {
	XML        *string        `json:"xml,omitempty"`
	XMLPNG     *string        `json:"xmlpng,omitempty"`
	Descriptor *CSVDescriptor `json:"descriptor,omitempty"`
	Autosave   *bool          `json:"autosave,omitempty"`

	Title       *string `json:"title,omitempty"`
	SaveAndExit *bool   `json:"saveAndExit,omitempty"`
	NoSaveBtn   *bool   `json:"noSaveBtn,omitempty"`
	NoExitBtn   *bool   `json:"noExitBtn,omitempty"`
}

// ActionMerge merges xml into the current diagram.
type ActionMerge struct {
	XML string `json:"xml"`
}

// ActionConfigure answers a configure event.
type ActionConfigure struct {
	Config map[string]any `json:"config"`
}

type ActionDialog struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Button   string `json:"button"`
	Modified *bool  `json:"modified,omitempty"`
}

type ActionPrompt struct {
	Title        string `json:"title"`
	OK           string `json:"ok"`
	DefaultValue string `json:"defaultValue"`
}

type ActionTemplate struct {
	// Callback makes the editor reply with a template event instead of
	// applying the template itself.
	Callback *bool `json:"callback,omitempty"`
}

type ActionLayout struct {
	Layouts []string `json:"layouts"`
}

type ActionDraft struct {
	XML        string `json:"xml"`
	Name       string `json:"name"`
	EditKey    string `json:"editKey"`
	DiscardKey string `json:"discardKey"`
	Ignore     bool   `json:"ignore"`
}

type ActionStatus struct {
	Message  string `json:"message"`
	Modified *bool  `json:"modified,omitempty"`
}

type ActionSpinner struct {
	Message string `json:"message"`
	Show    bool   `json:"show"`
	Enabled bool   `json:"enabled"`
}

// ActionExport requests an export; the editor replies with an export event.
type ActionExport struct {
	Format      ExportFormat `json:"format"`
	Data        *string      `json:"data,omitempty"`
	Message     *string      `json:"message,omitempty"`
	XML         *string      `json:"xml,omitempty"`
	ParentEvent *string      `json:"parentEvent,omitempty"`
	// Exit is echoed back in the reply's message. A save that exits and is
	// answered with an export uses it to close after the export arrives.
	Exit *bool `json:"exit,omitempty"`
	// Spin shows a spinner while the image is generated.
	Spin  *bool    `json:"spin,omitempty"`
	Scale *float64 `json:"scale,omitempty"`
	// LayerIDs are the visible layers.
	LayerIDs    []string `json:"layerIds,omitempty"`
	PageID      *string  `json:"pageId,omitempty"`
	CurrentPage *bool    `json:"currentPage,omitempty"`
	// Width and Border are pixel values.
	Width       *string `json:"width,omitempty"`
	Border      *string `json:"border,omitempty"`
	Shadow      *bool   `json:"shadow,omitempty"`
	Grid        *bool   `json:"grid,omitempty"`
	KeepTheme   *bool   `json:"keepTheme,omitempty"`
	Transparent *bool   `json:"transparent,omitempty"`
	Background  *string `json:"background,omitempty"`
}

func (ActionLoad) ActionKind() ActionKind      { return ActionKindLoad }
func (ActionMerge) ActionKind() ActionKind     { return ActionKindMerge }
func (ActionConfigure) ActionKind() ActionKind { return ActionKindConfigure }
func (ActionDialog) ActionKind() ActionKind    { return ActionKindDialog }
func (ActionPrompt) ActionKind() ActionKind    { return ActionKindPrompt }
func (ActionTemplate) ActionKind() ActionKind  { return ActionKindTemplate }
func (ActionLayout) ActionKind() ActionKind    { return ActionKindLayout }
func (ActionDraft) ActionKind() ActionKind     { return ActionKindDraft }
func (ActionStatus) ActionKind() ActionKind    { return ActionKindStatus }
func (ActionSpinner) ActionKind() ActionKind   { return ActionKindSpinner }
func (ActionExport) ActionKind() ActionKind    { return ActionKindExport }

func (ActionLoad) isAction()      {}
func (ActionMerge) isAction()     {}
func (ActionConfigure) isAction() {}
func (ActionDialog) isAction()    {}
func (ActionPrompt) isAction()    {}
func (ActionTemplate) isAction()  {}
func (ActionLayout) isAction()    {}
func (ActionDraft) isAction()     {}
func (ActionStatus) isAction()    {}
func (ActionSpinner) isAction()   {}
func (ActionExport) isAction()    {}
