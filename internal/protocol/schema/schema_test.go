package schema

import (
	"encoding/json"
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
)

func fieldsOf(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return out
}

func TestValidateLoadRequiredFields(t *testing.T) {
	testlog.Start(t)
	fields := fieldsOf(t, `{"event":"load","xml":"<mxfile/>","scale":1}`)
	if err := Validate(SetEvent, "load", fields); err != nil {
		t.Fatalf("validate load: %v", err)
	}
}

func TestValidateUnknownFieldsIgnored(t *testing.T) {
	testlog.Start(t)
	fields := fieldsOf(t, `{"event":"save","xml":"<mxfile/>","extra":[1,2,3]}`)
	if err := Validate(SetEvent, "save", fields); err != nil {
		t.Fatalf("validate with unknown field: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	err := Validate(SetEvent, "load", fieldsOf(t, `{"event":"load","scale":1}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Field != "xml" || ve.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	testlog.Start(t)
	err := Validate(SetEvent, "save", fieldsOf(t, `{"event":"save","xml":"x","exit":"yes"}`))
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if ve.Field != "exit" || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateNullOptionalIsAbsent(t *testing.T) {
	testlog.Start(t)
	if err := Validate(SetEvent, "merge", fieldsOf(t, `{"event":"merge","error":null}`)); err != nil {
		t.Fatalf("null optional should pass: %v", err)
	}
	if err := Validate(SetEvent, "load", fieldsOf(t, `{"event":"load","xml":null,"scale":1}`)); err == nil {
		t.Fatalf("null required field should fail")
	}
}

func TestValidateUnknownDiscriminant(t *testing.T) {
	testlog.Start(t)
	if Known(SetEvent, "resize") {
		t.Fatalf("resize is not an event")
	}
	err := Validate(SetEvent, "resize", map[string]json.RawMessage{})
	ve, ok := err.(ValidationError)
	if !ok || ve.Reason != "unknown discriminant" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventAndActionSetsAreSeparate(t *testing.T) {
	testlog.Start(t)
	if Known(SetAction, "init") {
		t.Fatalf("init is not an action")
	}
	if !Known(SetAction, "spinner") || Known(SetEvent, "spinner") {
		t.Fatalf("spinner must be action-only")
	}
}
