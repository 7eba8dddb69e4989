package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
)

func TestRunURLWithFlags(t *testing.T) {
	testlog.Start(t)
	t.Setenv(envConfig, "")
	var out bytes.Buffer
	err := run(context.Background(), []string{"url", "--base", "https://example.com/editor", "--configure", "-p", "ui=dark", "--param", "spin=1", "--param", "grid=false"}, nil, &out)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	want := "https://example.com/editor?embed=1&proto=json&configure=1&ui=dark&spin=1&grid=0\n"
	if out.String() != want {
		t.Fatalf("url output:\n got=%q\nwant=%q", out.String(), want)
	}
}

func TestRunURLFromConfigEnv(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "drawembed.toml")
	if err := os.WriteFile(path, []byte("[parameters]\nlang = \"fr\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envConfig, path)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"url"}, nil, &out); err != nil {
		t.Fatalf("url: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "https://embed.diagrams.net/?embed=1&proto=json&lang=fr" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestRunCheck(t *testing.T) {
	testlog.Start(t)
	t.Setenv(envConfig, "")
	var out bytes.Buffer
	if err := run(context.Background(), []string{"check"}, nil, &out); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ok embed_url=https://embed.diagrams.net/?embed=1&proto=json") {
		t.Fatalf("unexpected check output %q", out.String())
	}
}

func TestRunDecode(t *testing.T) {
	testlog.Start(t)
	in := strings.NewReader(strings.Join([]string{
		`{"event":"init"}`,
		`{"event":"save","xml":"<mxfile/>","exit":true}`,
		``,
		`{"action":"export","format":"png"}`,
		`{"action":"status","message":"ok"}`,
	}, "\n"))
	var out bytes.Buffer
	if err := run(context.Background(), []string{"decode"}, in, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "1: event init\n2: event save (terminal)\n4: action export (reply export)\n5: action status\n"
	if out.String() != want {
		t.Fatalf("decode output:\n got=%q\nwant=%q", out.String(), want)
	}

	out.Reset()
	err := run(context.Background(), []string{"decode"}, strings.NewReader(`{"event":"bogus"}`), &out)
	if err == nil || !strings.HasPrefix(out.String(), "1: invalid event") {
		t.Fatalf("bogus event err=%v out=%q", err, out.String())
	}
}

func TestRunUsage(t *testing.T) {
	testlog.Start(t)
	if err := run(context.Background(), nil, nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("empty args err=%v", err)
	}
	if err := run(context.Background(), []string{"launch"}, nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("unknown command err=%v", err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{"url", "--param", "novalue"}, nil, &out)
	if err == nil || !strings.Contains(err.Error(), "not key=value") {
		t.Fatalf("bad param err=%v", err)
	}
}

func TestRunURLConfigFlag(t *testing.T) {
	testlog.Start(t)
	t.Setenv(envConfig, "")
	path := filepath.Join(t.TempDir(), "drawembed.toml")
	if err := os.WriteFile(path, []byte("base_url = \"https://draw.example\"\nconfigure = true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), []string{"url", "--config", path}, nil, &out); err != nil {
		t.Fatalf("url: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "https://draw.example/?embed=1&proto=json&configure=1" {
		t.Fatalf("unexpected url %q", got)
	}
}
