package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/embedurl"
)

var (
	ErrConflictingContent = errors.New("config: xml_file and csv_file are mutually exclusive")
	ErrInvalidParameter   = errors.New("config: invalid parameter")
)

// Config is the resolved embed and relay configuration.
type Config struct {
	BaseURL    string
	Configure  bool
	Parameters embedurl.Parameters
	// Load is sent when the editor reports init.
	Load protocol.ActionLoad
	// Configuration answers the editor's configure event.
	Configuration map[string]any
	// ExportFormat, when set, answers each save with an export.
	ExportFormat protocol.ExportFormat
	Relay        RelayConfig
}

// RelayConfig is the [relay] table.
type RelayConfig struct {
	Addr               string
	DocumentURL        string
	Origin             string
	Token              string
	CORSOrigins        []string
	SecurityMode       string
	TLSCertFile        string
	TLSKeyFile         string
	ClosedSessionCache int
}

// drawembed.toml key mapping.
type fileConfig struct {
	BaseURL       string         `toml:"base_url"`
	Configure     bool           `toml:"configure"`
	Autosave      bool           `toml:"autosave"`
	XMLFile       string         `toml:"xml_file"`
	CSVFile       string         `toml:"csv_file"`
	Title         string         `toml:"title"`
	ExportFormat  string         `toml:"export_format"`
	Parameters    map[string]any `toml:"parameters"`
	Extra         map[string]any `toml:"extra"`
	Configuration map[string]any `toml:"configuration"`
	Relay         relayFile      `toml:"relay"`
}

type relayFile struct {
	Addr               string   `toml:"addr"`
	DocumentURL        string   `toml:"document_url"`
	Origin             string   `toml:"origin"`
	Token              string   `toml:"token"`
	CORSOrigins        []string `toml:"cors_origins"`
	SecurityMode       string   `toml:"security_mode"`
	TLSCertFile        string   `toml:"tls_cert_file"`
	TLSKeyFile         string   `toml:"tls_key_file"`
	ClosedSessionCache int      `toml:"closed_session_cache"`
}

func Default() Config {
	return Config{
		BaseURL: embedurl.DefaultBaseURL,
		Load: protocol.ActionLoad{
			XML:      protocol.String(""),
			Autosave: protocol.Bool(true),
		},
		Relay: RelayConfig{
			Addr:               ":8088",
			DocumentURL:        "http://localhost:8088/",
			SecurityMode:       "development",
			ClosedSessionCache: 256,
		},
	}
}

// Load reads path over the defaults. Content files are resolved relative to
// the config file.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg, err := resolve(raw, meta, filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults. Content files are resolved
// relative to dir.
func Parse(data, dir string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	return resolve(raw, meta, dir)
}

func resolve(raw fileConfig, meta toml.MetaData, dir string) (Config, error) {
	cfg := Default()

	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("configure") {
		cfg.Configure = raw.Configure
	}
	if meta.IsDefined("autosave") {
		cfg.Load.Autosave = protocol.Bool(raw.Autosave)
	}
	if meta.IsDefined("export_format") {
		cfg.ExportFormat = protocol.ExportFormat(strings.TrimSpace(raw.ExportFormat))
	}
	if meta.IsDefined("title") {
		cfg.Load.Title = protocol.String(strings.TrimSpace(raw.Title))
	}
	if err := resolveContent(&cfg, raw, dir); err != nil {
		return Config{}, err
	}

	// Keys walk in file order, which becomes the query order.
	for _, key := range meta.Keys() {
		if len(key) != 2 {
			continue
		}
		switch key[0] {
		case "parameters":
			if err := setParameter(&cfg.Parameters, key[1], raw.Parameters[key[1]]); err != nil {
				return Config{}, err
			}
		case "extra":
			cfg.Parameters.AddExtra(key[1], fmt.Sprint(raw.Extra[key[1]]))
		}
	}

	if meta.IsDefined("configuration") {
		cfg.Configuration = raw.Configuration
		if cfg.Configuration == nil {
			cfg.Configuration = map[string]any{}
		}
	}
	if cfg.Configure && cfg.Configuration == nil {
		cfg.Configuration = map[string]any{}
	}

	if meta.IsDefined("relay", "addr") {
		cfg.Relay.Addr = strings.TrimSpace(raw.Relay.Addr)
	}
	if meta.IsDefined("relay", "document_url") {
		cfg.Relay.DocumentURL = strings.TrimSpace(raw.Relay.DocumentURL)
	}
	if meta.IsDefined("relay", "origin") {
		cfg.Relay.Origin = strings.TrimSpace(raw.Relay.Origin)
	}
	if meta.IsDefined("relay", "token") {
		cfg.Relay.Token = strings.TrimSpace(raw.Relay.Token)
	}
	if meta.IsDefined("relay", "cors_origins") {
		cfg.Relay.CORSOrigins = raw.Relay.CORSOrigins
	}
	if meta.IsDefined("relay", "security_mode") {
		cfg.Relay.SecurityMode = strings.TrimSpace(raw.Relay.SecurityMode)
	}
	if meta.IsDefined("relay", "tls_cert_file") {
		cfg.Relay.TLSCertFile = strings.TrimSpace(raw.Relay.TLSCertFile)
	}
	if meta.IsDefined("relay", "tls_key_file") {
		cfg.Relay.TLSKeyFile = strings.TrimSpace(raw.Relay.TLSKeyFile)
	}
	if meta.IsDefined("relay", "closed_session_cache") {
		cfg.Relay.ClosedSessionCache = raw.Relay.ClosedSessionCache
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveContent(cfg *Config, raw fileConfig, dir string) error {
	xmlFile := strings.TrimSpace(raw.XMLFile)
	csvFile := strings.TrimSpace(raw.CSVFile)
	if xmlFile != "" && csvFile != "" {
		return ErrConflictingContent
	}
	if xmlFile != "" {
		data, err := os.ReadFile(resolvePath(dir, xmlFile))
		if err != nil {
			return fmt.Errorf("config: read xml_file: %w", err)
		}
		cfg.Load.XML = protocol.String(string(data))
	}
	if csvFile != "" {
		data, err := os.ReadFile(resolvePath(dir, csvFile))
		if err != nil {
			return fmt.Errorf("config: read csv_file: %w", err)
		}
		cfg.Load.XML = nil
		cfg.Load.Descriptor = &protocol.CSVDescriptor{
			Format: protocol.DescriptorFormatCSV,
			Data:   string(data),
		}
	}
	return nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func setParameter(p *embedurl.Parameters, key string, value any) error {
	switch value.(type) {
	case bool, string, int64, float64:
	default:
		return fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidParameter, key, value)
	}
	p.Set(key, value)
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Relay.Addr) == "" {
		return fmt.Errorf("relay config missing addr")
	}
	if cfg.Relay.ClosedSessionCache < 0 {
		return fmt.Errorf("relay closed_session_cache must not be negative")
	}
	if err := protocol.ValidateAction(cfg.Load); err != nil {
		return fmt.Errorf("initial load invalid: %w", err)
	}
	if cfg.ExportFormat != "" && !cfg.ExportFormat.Valid() {
		return fmt.Errorf("%w: export_format %q", ErrInvalidParameter, cfg.ExportFormat)
	}
	return nil
}
