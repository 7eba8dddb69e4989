package frame

import (
	"errors"
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
)

func TestOriginNormalizesDefaultPorts(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"https://embed.diagrams.net/?embed=1&proto=json": "https://embed.diagrams.net",
		"https://Example.COM:443/editor":                 "https://example.com",
		"http://localhost:8080/drawio/index.html":        "http://localhost:8080",
		"http://[::1]:9000/x":                            "http://[::1]:9000",
	}
	for in, want := range cases {
		got, err := Origin(in)
		if err != nil {
			t.Fatalf("origin %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("origin %q got=%q want=%q", in, got, want)
		}
	}
}

func TestOriginRejectsRelative(t *testing.T) {
	testlog.Start(t)
	if _, err := Origin("my/editor"); !errors.Is(err, ErrInvalidOrigin) {
		t.Fatalf("expected ErrInvalidOrigin, got %v", err)
	}
}

func TestCheckLimits(t *testing.T) {
	testlog.Start(t)
	limits := Limits{MaxPayloadBytes: 4}
	if err := Check(Message{Data: []byte(`{}`)}, limits); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := Check(Message{}, limits); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if err := Check(Message{Data: []byte(`{"a":1}`)}, limits); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestSameOrigin(t *testing.T) {
	testlog.Start(t)
	if !SameOrigin("https://embed.diagrams.net", "https://EMBED.diagrams.net/") {
		t.Fatalf("expected same origin")
	}
	if SameOrigin("", "") {
		t.Fatalf("empty expected origin must not match")
	}
	if SameOrigin("https://embed.diagrams.net", "https://evil.example") {
		t.Fatalf("different origins matched")
	}
}
