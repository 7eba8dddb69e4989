package session

import "github.com/danmuck/drawembed/internal/protocol"

// Handler receives accepted events, one method per event kind.
type Handler = protocol.EventVisitor

// HandlerFuncs adapts optional funcs to Handler. Nil funcs ignore the event.
type HandlerFuncs struct {
	Init      func(protocol.EventInit)
	Load      func(protocol.EventLoad)
	AutoSave  func(protocol.EventAutoSave)
	Save      func(protocol.EventSave)
	Exit      func(protocol.EventExit)
	Configure func(protocol.EventConfigure)
	Merge     func(protocol.EventMerge)
	Prompt    func(protocol.EventPrompt)
	Template  func(protocol.EventTemplate)
	Draft     func(protocol.EventDraft)
	Export    func(protocol.EventExport)
}

var _ Handler = HandlerFuncs{}

func (h HandlerFuncs) OnInit(ev protocol.EventInit) {
	if h.Init != nil {
		h.Init(ev)
	}
}

func (h HandlerFuncs) OnLoad(ev protocol.EventLoad) {
	if h.Load != nil {
		h.Load(ev)
	}
}

func (h HandlerFuncs) OnAutoSave(ev protocol.EventAutoSave) {
	if h.AutoSave != nil {
		h.AutoSave(ev)
	}
}

func (h HandlerFuncs) OnSave(ev protocol.EventSave) {
	if h.Save != nil {
		h.Save(ev)
	}
}

func (h HandlerFuncs) OnExit(ev protocol.EventExit) {
	if h.Exit != nil {
		h.Exit(ev)
	}
}

func (h HandlerFuncs) OnConfigure(ev protocol.EventConfigure) {
	if h.Configure != nil {
		h.Configure(ev)
	}
}

func (h HandlerFuncs) OnMerge(ev protocol.EventMerge) {
	if h.Merge != nil {
		h.Merge(ev)
	}
}

func (h HandlerFuncs) OnPrompt(ev protocol.EventPrompt) {
	if h.Prompt != nil {
		h.Prompt(ev)
	}
}

func (h HandlerFuncs) OnTemplate(ev protocol.EventTemplate) {
	if h.Template != nil {
		h.Template(ev)
	}
}

func (h HandlerFuncs) OnDraft(ev protocol.EventDraft) {
	if h.Draft != nil {
		h.Draft(ev)
	}
}

func (h HandlerFuncs) OnExport(ev protocol.EventExport) {
	if h.Export != nil {
		h.Export(ev)
	}
}
