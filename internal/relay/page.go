package relay

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type pageData struct {
	Title      string
	EmbedURL   string
	Origin     string
	Session    string
	Token      string
	SocketPath string
}

func renderPage(w io.Writer, data pageData) error {
	return pageTemplate.Execute(w, data)
}
