package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/rs/zerolog/log"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: "abc", wantErr: ErrUnauthorized},
		{name: "mismatched token denied", stored: "abc", input: "xyz", wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: "abc", wantErr: nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			log.Debug().Str("stored", tc.stored).Str("input", tc.input).Msg("auth/static-token")
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFuncValidator(t *testing.T) {
	testlog.Start(t)
	validator := FuncValidator(func(token string) error {
		if token != "ok" {
			return ErrUnauthorized
		}
		return nil
	})

	if err := validator.Validate("bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bad token, got %v", err)
	}
	if err := validator.Validate("ok"); err != nil {
		t.Fatalf("expected success for ok token, got %v", err)
	}
}

func TestForToken(t *testing.T) {
	testlog.Start(t)
	if err := ForToken("  ").Validate(""); err != nil {
		t.Fatalf("empty configured token should allow all, got %v", err)
	}
	v := ForToken("secret")
	if err := v.Validate(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("missing token accepted: %v", err)
	}
	if err := v.Validate("secret"); err != nil {
		t.Fatalf("matching token rejected: %v", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	testlog.Start(t)
	r := httptest.NewRequest("GET", "/ws?session=a&token=query", nil)
	if got := TokenFromRequest(r); got != "query" {
		t.Fatalf("query token=%q", got)
	}
	r.Header.Set("Authorization", "Bearer header")
	if got := TokenFromRequest(r); got != "header" {
		t.Fatalf("bearer token=%q", got)
	}
	r.Header.Set("Authorization", "Basic abc")
	if got := TokenFromRequest(r); got != "query" {
		t.Fatalf("non-bearer header should fall back, got %q", got)
	}
}
