package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "embed":
		return embedTemplate, nil
	case "relay":
		return relayTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const embedTemplate = `base_url = "https://embed.diagrams.net"
configure = false

[parameters]
ui = "kennedy"
spin = true
libraries = true
saveAndExit = true
noExitBtn = false
`

const relayTemplate = `base_url = "https://embed.diagrams.net"
configure = true
autosave = true
xml_file = ""
title = "diagram.drawio"
# export_format = "xmlsvg"   # answer saves with an export (html, html2, svg, xmlsvg, png, xmlpng)

[parameters]
ui = "kennedy"
spin = true
modified = true
keepmodified = true
saveAndExit = true

[extra]

[configuration]
defaultFonts = ["Humor Sans", "Helvetica"]

[relay]
addr = ":8088"
document_url = "http://localhost:8088/"
origin = ""
token = ""
cors_origins = []
security_mode = "development"
tls_cert_file = ""
tls_key_file = ""
closed_session_cache = 256
`
