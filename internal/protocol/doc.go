// Package protocol owns the embed message contract.
//
// Ownership boundary:
// - event (frame->host) and action (host->frame) sum types
// - discriminant-tagged JSON encode/decode
// - semantic validation entry points
//
// Field names, discriminant values and optional-vs-required status are the
// wire contract with the hosted editor and must not drift.
package protocol
