// Package retry provides simple exponential backoff retry logic for transient failures.
//
// It is used around gateway submissions, where short network hiccups are
// common and a brief backoff usually clears them. Callers mark errors
// that must not be retried; everything else is assumed transient.
//
// All retry operations respect context cancellation and stop immediately
// when the context is cancelled, either during the operation or during a
// backoff delay.
package retry
