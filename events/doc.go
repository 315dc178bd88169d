// Package events models the inbound half of the robot protocol: the typed
// event records a wave server reports, the bundle that carries them together
// with a wavelet snapshot, and the dispatcher that routes each record to a
// registered handler.
//
// A Bundle is decoded from one JSON-RPC request body. Its wavelet and blip
// snapshots are materialized into a wave.Wavelet mirror backed by a fresh
// operation queue, so handlers mutate the mirror and the queued operations
// become the request's reply. Events are dispatched strictly in bundle
// order; records whose type tag is unknown are skipped. A handler error
// aborts the remaining dispatch so a reply never carries operations derived
// from a half-processed bundle.
package events
