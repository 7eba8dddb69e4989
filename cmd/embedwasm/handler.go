//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/danmuck/drawembed/internal/protocol"
)

// jsHandler forwards each event to handlers[kind] as a parsed object.
type jsHandler struct {
	handlers js.Value
}

func (h jsHandler) emit(ev protocol.Event) {
	if h.handlers.Type() != js.TypeObject {
		return
	}
	fn := h.handlers.Get(string(ev.EventKind()))
	if fn.Type() != js.TypeFunction {
		return
	}
	fn.Invoke(eventValue(ev))
}

func (h jsHandler) OnInit(ev protocol.EventInit)           { h.emit(ev) }
func (h jsHandler) OnLoad(ev protocol.EventLoad)           { h.emit(ev) }
func (h jsHandler) OnAutoSave(ev protocol.EventAutoSave)   { h.emit(ev) }
func (h jsHandler) OnSave(ev protocol.EventSave)           { h.emit(ev) }
func (h jsHandler) OnExit(ev protocol.EventExit)           { h.emit(ev) }
func (h jsHandler) OnConfigure(ev protocol.EventConfigure) { h.emit(ev) }
func (h jsHandler) OnMerge(ev protocol.EventMerge)         { h.emit(ev) }
func (h jsHandler) OnPrompt(ev protocol.EventPrompt)       { h.emit(ev) }
func (h jsHandler) OnTemplate(ev protocol.EventTemplate)   { h.emit(ev) }
func (h jsHandler) OnDraft(ev protocol.EventDraft)         { h.emit(ev) }
func (h jsHandler) OnExport(ev protocol.EventExport)       { h.emit(ev) }
