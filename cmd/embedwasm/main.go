//go:build js && wasm

package main

import (
	"fmt"
	"net/url"
	"sync"
	"syscall/js"

	"github.com/danmuck/drawembed/internal/logging"
	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/embedurl"
	"github.com/danmuck/drawembed/internal/protocol/frame"
	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/danmuck/drawembed/internal/webframe"
	"github.com/rs/zerolog/log"
)

var (
	mu       sync.Mutex
	channels = make(map[string]*session.Channel)
)

func main() {
	logging.ConfigureRuntime()

	api := js.ValueOf(map[string]any{
		"version": "0.1.0",
		"url":     js.FuncOf(buildURL),
		"attach":  js.FuncOf(attach),
	})
	js.Global().Set("DrawEmbed", api)
	log.Info().Msg("embedwasm: DrawEmbed ready")

	select {}
}

// DrawEmbed.url(options) -> string
func buildURL(_ js.Value, args []js.Value) any {
	opts, err := embedOptions(arg(args, 0))
	if err != nil {
		return errorResult(err)
	}
	out, err := embedurl.Build(opts)
	if err != nil {
		return errorResult(err)
	}
	return out
}

// DrawEmbed.attach(iframe, options, handlers) -> { id, send, request, detach, state }
func attach(_ js.Value, args []js.Value) any {
	iframe := arg(args, 0)
	options := arg(args, 1)
	handlers := arg(args, 2)
	if iframe.IsUndefined() || iframe.IsNull() {
		return errorResult(fmt.Errorf("attach: iframe required"))
	}

	opts, err := embedOptions(options)
	if err != nil {
		return errorResult(err)
	}
	src, err := embedurl.Build(opts)
	if err != nil {
		return errorResult(err)
	}
	origin, err := frame.Origin(src)
	if err != nil {
		return errorResult(err)
	}

	cfg := session.DefaultConfig(origin)
	if cfg.Load, err = loadAction(options); err != nil {
		return errorResult(err)
	}
	if v := field(options, "exportFormat"); v.Type() == js.TypeString {
		cfg.ExportFormat = protocol.ExportFormat(v.String())
	}
	if conf := field(options, "configuration"); conf.Type() == js.TypeObject {
		cfg.Configuration = toMap(conf)
	} else if opts.Configure {
		cfg.Configuration = map[string]any{}
	}
	cfg = cfg.WithDefaults()

	transport := webframe.New(iframe, origin, cfg.SessionID)
	ch := session.NewChannel(cfg, transport, jsHandler{handlers: handlers})
	if err := ch.Attach(); err != nil {
		return errorResult(err)
	}
	iframe.Set("src", src)

	mu.Lock()
	channels[ch.ID()] = ch
	mu.Unlock()
	go func() {
		<-ch.Done()
		mu.Lock()
		delete(channels, ch.ID())
		mu.Unlock()
	}()

	return js.ValueOf(map[string]any{
		"id":  ch.ID(),
		"url": src,
		"send": js.FuncOf(func(_ js.Value, args []js.Value) any {
			action, err := decodeAction(arg(args, 0))
			if err != nil {
				return errorResult(err)
			}
			if err := ch.Send(action); err != nil {
				return errorResult(err)
			}
			return nil
		}),
		"request": js.FuncOf(func(_ js.Value, args []js.Value) any {
			action, err := decodeAction(arg(args, 0))
			if err != nil {
				return errorResult(err)
			}
			callback := arg(args, 1)
			id, err := ch.Request(action, func(reply protocol.Event, err error) {
				if callback.Type() != js.TypeFunction {
					return
				}
				callback.Invoke(eventValue(reply), errorValue(err))
			})
			if err != nil {
				return errorResult(err)
			}
			return id
		}),
		"detach": js.FuncOf(func(js.Value, []js.Value) any {
			ch.Detach()
			return nil
		}),
		"state": js.FuncOf(func(js.Value, []js.Value) any {
			return ch.State().String()
		}),
	})
}

func embedOptions(options js.Value) (embedurl.Options, error) {
	opts := embedurl.Options{}
	if options.Type() != js.TypeObject {
		return opts, nil
	}
	if v := field(options, "baseURL"); v.Type() == js.TypeString {
		opts.BaseURL = v.String()
	}
	if v := field(options, "configure"); v.Type() == js.TypeBoolean {
		opts.Configure = v.Bool()
	}
	if params := field(options, "parameters"); params.Type() == js.TypeObject {
		keys := js.Global().Get("Object").Call("keys", params)
		for i := 0; i < keys.Length(); i++ {
			key := keys.Index(i).String()
			opts.Parameters.Set(key, toGo(params.Get(key)))
		}
	}
	doc, err := url.Parse(js.Global().Get("location").Get("href").String())
	if err != nil {
		return opts, err
	}
	opts.Document = doc
	return opts, nil
}

// loadAction builds the initial load from options.xml or options.csv.
func loadAction(options js.Value) (protocol.ActionLoad, error) {
	load := protocol.ActionLoad{XML: protocol.String("")}
	if options.Type() != js.TypeObject {
		return load, nil
	}
	xml, csv := field(options, "xml"), field(options, "csv")
	switch {
	case xml.Type() == js.TypeString && csv.Type() == js.TypeString:
		return load, fmt.Errorf("attach: xml and csv are exclusive")
	case xml.Type() == js.TypeString:
		load.XML = protocol.String(xml.String())
	case csv.Type() == js.TypeString:
		load.XML = nil
		load.Descriptor = &protocol.CSVDescriptor{
			Format: protocol.DescriptorFormatCSV,
			Data:   csv.String(),
		}
	}
	if v := field(options, "autosave"); v.Type() == js.TypeBoolean {
		load.Autosave = protocol.Bool(v.Bool())
	}
	if v := field(options, "title"); v.Type() == js.TypeString {
		load.Title = protocol.String(v.String())
	}
	return load, nil
}

func decodeAction(v js.Value) (protocol.Action, error) {
	text := v
	if v.Type() == js.TypeObject {
		text = js.Global().Get("JSON").Call("stringify", v)
	}
	if text.Type() != js.TypeString {
		return nil, fmt.Errorf("action must be an object or json text")
	}
	return protocol.DecodeAction([]byte(text.String()))
}

func eventValue(ev protocol.Event) js.Value {
	if ev == nil {
		return js.Null()
	}
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func errorValue(err error) js.Value {
	if err == nil {
		return js.Null()
	}
	return js.Global().Get("Error").New(err.Error())
}

func errorResult(err error) any {
	log.Warn().Err(err).Msg("embedwasm")
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func arg(args []js.Value, i int) js.Value {
	if i < len(args) {
		return args[i]
	}
	return js.Undefined()
}

func field(v js.Value, name string) js.Value {
	if v.Type() != js.TypeObject {
		return js.Undefined()
	}
	return v.Get(name)
}

// toMap copies a plain object through JSON so nested values become Go maps,
// slices, strings, float64 and bool.
func toMap(v js.Value) map[string]any {
	out := map[string]any{}
	keys := js.Global().Get("Object").Call("keys", v)
	for i := 0; i < keys.Length(); i++ {
		key := keys.Index(i).String()
		out[key] = toGo(v.Get(key))
	}
	return out
}

func toGo(v js.Value) any {
	switch v.Type() {
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeNumber:
		return v.Float()
	case js.TypeString:
		return v.String()
	case js.TypeObject:
		if js.Global().Get("Array").Call("isArray", v).Bool() {
			out := make([]any, v.Length())
			for i := range out {
				out[i] = toGo(v.Index(i))
			}
			return out
		}
		return toMap(v)
	default:
		return nil
	}
}
