// Package session owns the host side of one embedded editor frame.
//
// Ownership boundary:
// - the channel lifecycle (uninitialized, awaiting-init, ready, editing, closed)
// - the transition table every inbound event is checked against
// - origin and source filtering of inbound messages
// - handler dispatch and request/reply correlation
//
// The browser message plumbing sits behind Transport so the same channel runs
// over window.postMessage (webframe) or a WebSocket relay (relay).
package session
