package embedurl

import (
	"fmt"
	"strconv"
)

// Theme is the editor UI theme.
type Theme string

const (
	ThemeMin     Theme = "min"
	ThemeAtlas   Theme = "atlas"
	ThemeKennedy Theme = "kennedy"
	ThemeDark    Theme = "dark"
	ThemeSketch  Theme = "sketch"
	ThemeSimple  Theme = "simple"
)

// Param is one query key/value pair.
type Param struct {
	Key   string
	Value string
}

// Parameters are the recognized editor URL options. A nil field is not set
// and is never sent; set booleans serialize as 1 or 0.
type Parameters struct {
	UI           *Theme
	Dark         *bool
	Spin         *bool
	Modified     *bool
	KeepModified *bool
	Libraries    *bool
	NoSaveBtn    *bool
	SaveAndExit  *bool
	NoExitBtn    *bool
	Lightbox     *bool
	Chrome       *bool
	// Target is the link policy in chromeless mode: auto, self, frame or blank.
	Target *string
	Edit   *string
	Grid   *bool
	Nav    *bool
	Layers *bool
	// LayerIDs is a space separated list of visible layer ids.
	LayerIDs *string
	Close    *bool
	Lang     *string

	// Extra holds options outside the recognized set.
	Extra []Param

	// order remembers Set and AddExtra calls. An entry with extra >= 0
	// points into Extra; otherwise it names a recognized key.
	order []setKey
}

type setKey struct {
	key   string
	extra int
}

// Values returns the set parameters in serialization order: keys assigned
// through Set or AddExtra in the order they were first assigned, then any
// remaining fields in declaration order, then the remaining Extra entries.
func (p Parameters) Values() []Param {
	declared := p.declared()
	out := make([]Param, 0, len(declared)+len(p.Extra))
	usedKey := make(map[string]bool, len(p.order))
	usedExtra := make(map[int]bool, len(p.order))
	for _, k := range p.order {
		if k.extra >= 0 {
			if k.extra < len(p.Extra) && !usedExtra[k.extra] {
				usedExtra[k.extra] = true
				out = append(out, p.Extra[k.extra])
			}
			continue
		}
		if usedKey[k.key] {
			continue
		}
		for _, v := range declared {
			if v.Key == k.key {
				usedKey[k.key] = true
				out = append(out, v)
				break
			}
		}
	}
	for _, v := range declared {
		if !usedKey[v.Key] {
			out = append(out, v)
		}
	}
	for i, v := range p.Extra {
		if !usedExtra[i] {
			out = append(out, v)
		}
	}
	return out
}

func (p Parameters) declared() []Param {
	out := make([]Param, 0, 8)
	if p.UI != nil {
		out = append(out, Param{Key: "ui", Value: string(*p.UI)})
	}
	out = appendBool(out, "dark", p.Dark)
	out = appendBool(out, "spin", p.Spin)
	out = appendBool(out, "modified", p.Modified)
	out = appendBool(out, "keepmodified", p.KeepModified)
	out = appendBool(out, "libraries", p.Libraries)
	out = appendBool(out, "noSaveBtn", p.NoSaveBtn)
	out = appendBool(out, "saveAndExit", p.SaveAndExit)
	out = appendBool(out, "noExitBtn", p.NoExitBtn)
	out = appendBool(out, "lightbox", p.Lightbox)
	out = appendBool(out, "chrome", p.Chrome)
	out = appendString(out, "target", p.Target)
	out = appendString(out, "edit", p.Edit)
	out = appendBool(out, "grid", p.Grid)
	out = appendBool(out, "nav", p.Nav)
	out = appendBool(out, "layers", p.Layers)
	out = appendString(out, "layer-ids", p.LayerIDs)
	out = appendBool(out, "close", p.Close)
	out = appendString(out, "lang", p.Lang)
	return out
}

// Set assigns a recognized option by its query key. Unrecognized keys are
// appended to Extra. It reports whether the key was recognized. A key keeps
// the position of its first assignment when set again.
func (p *Parameters) Set(key string, value any) bool {
	if !p.assign(key, value) {
		p.AddExtra(key, stringOf(value))
		return false
	}
	for _, k := range p.order {
		if k.extra < 0 && k.key == key {
			return true
		}
	}
	p.order = append(p.order, setKey{key: key, extra: -1})
	return true
}

// AddExtra appends an option outside the recognized set, keeping its
// position relative to other Set and AddExtra calls.
func (p *Parameters) AddExtra(key, value string) {
	p.Extra = append(p.Extra, Param{Key: key, Value: value})
	p.order = append(p.order, setKey{key: key, extra: len(p.Extra) - 1})
}

func (p *Parameters) assign(key string, value any) bool {
	switch key {
	case "ui":
		t := Theme(stringOf(value))
		p.UI = &t
	case "dark":
		p.Dark = boolOf(value)
	case "spin":
		p.Spin = boolOf(value)
	case "modified":
		p.Modified = boolOf(value)
	case "keepmodified":
		p.KeepModified = boolOf(value)
	case "libraries":
		p.Libraries = boolOf(value)
	case "noSaveBtn":
		p.NoSaveBtn = boolOf(value)
	case "saveAndExit":
		p.SaveAndExit = boolOf(value)
	case "noExitBtn":
		p.NoExitBtn = boolOf(value)
	case "lightbox":
		p.Lightbox = boolOf(value)
	case "chrome":
		p.Chrome = boolOf(value)
	case "target":
		p.Target = ptr(stringOf(value))
	case "edit":
		p.Edit = ptr(stringOf(value))
	case "grid":
		p.Grid = boolOf(value)
	case "nav":
		p.Nav = boolOf(value)
	case "layers":
		p.Layers = boolOf(value)
	case "layer-ids":
		p.LayerIDs = ptr(stringOf(value))
	case "close":
		p.Close = boolOf(value)
	case "lang":
		p.Lang = ptr(stringOf(value))
	default:
		return false
	}
	return true
}

func appendBool(out []Param, key string, v *bool) []Param {
	if v == nil {
		return out
	}
	if *v {
		return append(out, Param{Key: key, Value: "1"})
	}
	return append(out, Param{Key: key, Value: "0"})
}

func appendString(out []Param, key string, v *string) []Param {
	if v == nil {
		return out
	}
	return append(out, Param{Key: key, Value: *v})
}

func ptr[T any](v T) *T {
	return &v
}

func boolOf(value any) *bool {
	switch v := value.(type) {
	case bool:
		return &v
	case int64:
		return ptr(v != 0)
	case int:
		return ptr(v != 0)
	case float64:
		return ptr(v != 0)
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ptr(v != "" && v != "0")
		}
		return &b
	default:
		return ptr(value != nil)
	}
}

func stringOf(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
