// Package embedurl builds the address the editor frame is loaded from.
//
// The address carries the embed protocol markers and every configured
// option as a query parameter. Building is a pure string transform.
package embedurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the hosted editor used when no base address is given.
const DefaultBaseURL = "https://embed.diagrams.net"

var (
	ErrInvalidBaseURL = errors.New("embedurl: invalid base url")
	ErrNoDocument     = errors.New("embedurl: relative base url needs a document location")
)

// Options is the input to Build.
type Options struct {
	// BaseURL is absolute (http/https) or relative to Document. Empty selects
	// DefaultBaseURL.
	BaseURL    string
	Parameters Parameters
	// Configure makes the editor send a configure event before init.
	Configure bool
	// Document is the location of the embedding page.
	Document *url.URL
}

// Build returns the embed address for opts.
func Build(opts Options) (string, error) {
	base, err := resolveBase(opts.BaseURL, opts.Document)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, base)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	params := make([]Param, 0, 3+len(opts.Parameters.Extra)+8)
	params = append(params, Param{Key: "embed", Value: "1"}, Param{Key: "proto", Value: "json"})
	if opts.Configure {
		params = append(params, Param{Key: "configure", Value: "1"})
	}
	params = append(params, opts.Parameters.Values()...)

	u.RawQuery = Encode(params)
	u.ForceQuery = false
	return u.String(), nil
}

// MustBuild is Build for static inputs known to be valid.
func MustBuild(opts Options) string {
	out, err := Build(opts)
	if err != nil {
		panic(err)
	}
	return out
}

func resolveBase(base string, document *url.URL) (string, error) {
	if base == "" {
		return DefaultBaseURL, nil
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return base, nil
	}
	if document == nil {
		return "", fmt.Errorf("%w: %q", ErrNoDocument, base)
	}
	ref, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	return document.ResolveReference(ref).String(), nil
}

// Encode serializes params in order, escaping like URLSearchParams.
func Encode(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		escape(&b, p.Key)
		b.WriteByte('=')
		escape(&b, p.Value)
	}
	return b.String()
}

// escape writes s in application/x-www-form-urlencoded form. Unlike
// url.QueryEscape it leaves '*' alone and escapes '~'.
func escape(b *strings.Builder, s string) {
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
}
