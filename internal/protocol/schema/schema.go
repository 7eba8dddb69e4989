package schema

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Set names a discriminated message family.
type Set string

const (
	SetEvent  Set = "event"
	SetAction Set = "action"
)

// Type is the JSON kind a field must decode as.
type Type uint8

const (
	TypeString Type = iota + 1
	TypeNumber
	TypeBool
	TypeObject
	TypeArray
	TypeAny
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeAny:
		return "any"
	default:
		return "unknown"
	}
}

type Requirement struct {
	Field    string
	Type     Type
	Required bool
}

type ValidationError struct {
	Set    Set
	Kind   string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s=%q: %s", e.Set, e.Kind, e.Reason)
	}
	return fmt.Sprintf("schema: %s=%q field=%s: %s", e.Set, e.Kind, e.Field, e.Reason)
}

func req(field string, t Type) Requirement { return Requirement{Field: field, Type: t, Required: true} }
func opt(field string, t Type) Requirement { return Requirement{Field: field, Type: t} }

var requirements = map[Set]map[string][]Requirement{
	SetEvent: {
		"init": {},
		"load": {
			req("xml", TypeString),
			req("scale", TypeNumber),
		},
		"autosave": {
			req("xml", TypeString),
			opt("bounds", TypeObject),
			opt("currentPage", TypeNumber),
			opt("page", TypeObject),
			opt("pageVisible", TypeBool),
			opt("scale", TypeNumber),
			opt("translate", TypeObject),
		},
		"save": {
			req("xml", TypeString),
			opt("exit", TypeBool),
			opt("parentEvent", TypeString),
		},
		"exit": {
			opt("modified", TypeBool),
			opt("parentEvent", TypeString),
		},
		"configure": {},
		"merge": {
			opt("error", TypeString),
			opt("message", TypeAny),
		},
		"prompt": {
			req("value", TypeString),
			opt("message", TypeObject),
		},
		"template": {
			req("xml", TypeString),
			req("name", TypeString),
			opt("message", TypeObject),
			opt("libs", TypeString),
			opt("builtIn", TypeBool),
			opt("blank", TypeBool),
		},
		"draft": {
			opt("error", TypeString),
			opt("result", TypeString),
			opt("message", TypeObject),
		},
		"export": {
			req("format", TypeString),
			req("data", TypeString),
			opt("xml", TypeString),
			opt("message", TypeObject),
		},
	},
	SetAction: {
		"load": {
			opt("xml", TypeString),
			opt("xmlpng", TypeString),
			opt("descriptor", TypeObject),
			opt("autosave", TypeBool),
			opt("title", TypeString),
		},
		"merge":     {req("xml", TypeString)},
		"configure": {req("config", TypeObject)},
		"dialog": {
			req("title", TypeString),
			req("message", TypeString),
			req("button", TypeString),
			opt("modified", TypeBool),
		},
		"prompt": {
			req("title", TypeString),
			req("ok", TypeString),
			req("defaultValue", TypeString),
		},
		"template": {opt("callback", TypeBool)},
		"layout":   {req("layouts", TypeArray)},
		"draft": {
			req("xml", TypeString),
			req("name", TypeString),
			req("editKey", TypeString),
			req("discardKey", TypeString),
			req("ignore", TypeBool),
		},
		"status": {
			req("message", TypeString),
			opt("modified", TypeBool),
		},
		"spinner": {
			req("message", TypeString),
			req("show", TypeBool),
			req("enabled", TypeBool),
		},
		"export": {
			req("format", TypeString),
			opt("parentEvent", TypeString),
			opt("exit", TypeBool),
			opt("layerIds", TypeArray),
			opt("scale", TypeNumber),
		},
	},
}

// Known reports whether kind is a recognized discriminant in set.
func Known(set Set, kind string) bool {
	_, ok := requirements[set][kind]
	return ok
}

// Validate enforces required fields and field JSON kinds for one message.
// Unknown fields are ignored; a JSON null counts as absent.
func Validate(set Set, kind string, fields map[string]json.RawMessage) error {
	reqs, ok := requirements[set][kind]
	if !ok {
		log.Debug().Msgf("schema.Validate unknown %s=%q", set, kind)
		return ValidationError{Set: set, Kind: kind, Reason: "unknown discriminant"}
	}
	for _, r := range reqs {
		raw, found := fields[r.Field]
		if !found || isNull(raw) {
			if r.Required {
				log.Debug().Msgf("schema.Validate missing field %s=%q field=%s", set, kind, r.Field)
				return ValidationError{Set: set, Kind: kind, Field: r.Field, Reason: "missing required field"}
			}
			continue
		}
		if got := kindOf(raw); r.Type != TypeAny && got != r.Type {
			log.Debug().Msgf(
				"schema.Validate type mismatch %s=%q field=%s got=%s want=%s",
				set,
				kind,
				r.Field,
				got,
				r.Type,
			)
			return ValidationError{Set: set, Kind: kind, Field: r.Field, Reason: "type mismatch"}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 4 && string(raw) == "null"
}

func kindOf(raw json.RawMessage) Type {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return TypeString
		case '{':
			return TypeObject
		case '[':
			return TypeArray
		case 't', 'f':
			return TypeBool
		default:
			return TypeNumber
		}
	}
	return 0
}
