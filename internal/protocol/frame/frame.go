package frame

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyPayload    = errors.New("frame: empty payload")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrInvalidOrigin   = errors.New("frame: invalid origin")
)

// Message is one structured message as observed on the host window.
type Message struct {
	// Origin is the sender origin reported by the browser (scheme://host[:port]).
	Origin string
	// Source is the session id the transport attributed the sender to. It is
	// empty when the sender is not a frame the transport attached.
	Source string
	Data   []byte
}

// Limits constrains inbound message memory use.
type Limits struct {
	MaxPayloadBytes int
}

// DefaultLimits allows full diagrams and png exports.
func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 32 * 1024 * 1024,
	}
}

// Check applies limits to one inbound message.
func Check(msg Message, limits Limits) error {
	if len(msg.Data) == 0 {
		return ErrEmptyPayload
	}
	if limits.MaxPayloadBytes > 0 && len(msg.Data) > limits.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(msg.Data), limits.MaxPayloadBytes)
	}
	return nil
}

// Origin derives the web origin of an absolute address, the value browsers
// report for messages sent by a frame loaded from it.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidOrigin, rawURL)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port == "" {
		return scheme + "://" + host, nil
	}
	return scheme + "://" + host + ":" + port, nil
}

// SameOrigin compares two origins after normalization. An empty expected
// origin never matches.
func SameOrigin(expected, got string) bool {
	if strings.TrimSpace(expected) == "" {
		return false
	}
	return strings.EqualFold(strings.TrimRight(expected, "/"), strings.TrimRight(got, "/"))
}
