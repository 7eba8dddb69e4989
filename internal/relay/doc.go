// Package relay hosts the embedding page and relays frame traffic into Go.
//
// The page embeds the editor frame and a small shim that forwards every
// message the frame posts to a per-session WebSocket. Each WebSocket backs
// one session.Channel, so the Go side sees the same ingress it would see in a
// browser. Actions the channel sends travel back over the socket and are
// posted into the frame by the shim.
package relay
