package session

import (
	"testing"
	"time"

	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/testutil/testlog"
)

func TestPendingRequestsLifecycle(t *testing.T) {
	testlog.Start(t)
	p := NewPendingRequests()
	now := time.Unix(1700000000, 0)

	first := p.Add(protocol.EventKindPrompt, protocol.ActionPrompt{Title: "a"}, nil, now)
	second := p.Add(protocol.EventKindPrompt, protocol.ActionPrompt{Title: "b"}, nil, now.Add(time.Second))
	draft := p.Add(protocol.EventKindDraft, protocol.ActionDraft{EditKey: "e", DiscardKey: "d"}, nil, now.Add(2*time.Second))
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("request ids not unique: %q %q", first.ID, second.ID)
	}
	if p.Len() != 3 {
		t.Fatalf("len=%d want 3", p.Len())
	}

	list := p.List()
	if list[0].ID != first.ID || list[2].ID != draft.ID {
		t.Fatalf("list not ordered by queue time")
	}

	got, ok := p.Resolve(protocol.EventPrompt{Value: "x"})
	if !ok || got.ID != first.ID {
		t.Fatalf("resolve=%v,%v want oldest prompt", got.ID, ok)
	}
	if !p.Remove(draft.ID) || p.Remove(draft.ID) {
		t.Fatalf("remove not idempotent")
	}
	if _, ok := p.Resolve(protocol.EventDraft{}); ok {
		t.Fatalf("resolved removed draft")
	}
	if drained := p.Drain(); len(drained) != 1 || drained[0].ID != second.ID {
		t.Fatalf("drain=%v", drained)
	}
	if p.Len() != 0 {
		t.Fatalf("not empty after drain")
	}
}

func TestPendingRequestsDrainInAddOrder(t *testing.T) {
	testlog.Start(t)
	p := NewPendingRequests()
	now := time.Unix(1700000000, 0)

	var want []string
	for i := 0; i < 16; i++ {
		kind, action := protocol.EventKindPrompt, protocol.Action(protocol.ActionPrompt{Title: "p"})
		if i%2 == 1 {
			kind, action = protocol.EventKindExport, protocol.ActionExport{Format: protocol.ExportPNG}
		}
		want = append(want, p.Add(kind, action, nil, now).ID)
	}
	for i, item := range p.List() {
		if item.ID != want[i] {
			t.Fatalf("list[%d]=%s want %s", i, item.ID, want[i])
		}
	}
	for i, item := range p.Drain() {
		if item.ID != want[i] {
			t.Fatalf("drain[%d]=%s want %s", i, item.ID, want[i])
		}
	}
}

func TestPendingRequestsParentEvent(t *testing.T) {
	testlog.Start(t)
	p := NewPendingRequests()
	now := time.Unix(1700000000, 0)
	p.Add(protocol.EventKindExport, protocol.ActionExport{Format: protocol.ExportPNG}, nil, now)
	tagged := p.Add(protocol.EventKindExport, protocol.ActionExport{Format: protocol.ExportPNG, ParentEvent: protocol.String(" save ")}, nil, now.Add(time.Second))
	if tagged.ParentEvent != "save" {
		t.Fatalf("parent event not normalized: %q", tagged.ParentEvent)
	}

	got, ok := p.Resolve(protocol.EventExport{Message: protocol.ActionExport{ParentEvent: protocol.String("save")}})
	if !ok || got.ID != tagged.ID {
		t.Fatalf("parent event reply resolved %q want %q", got.ID, tagged.ID)
	}
}
