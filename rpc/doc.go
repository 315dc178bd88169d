// Package rpc speaks the wave active API: it serializes an operation
// queue's pending operations to JSON, signs the request URL, and POSTs the
// batch to an RPC gateway in one blocking exchange.
//
// The server answers with one JSON-RPC response per submitted operation,
// in submission order. Because every submission is led by the prepended
// capabilities notification, the response to the caller's first real
// operation sits at index 1 of the slice; FetchWavelet and NewWave depend
// on that offset.
//
// Transport is behind the Fetcher interface so tests can exchange the
// HTTP client for a scripted one.
package rpc
