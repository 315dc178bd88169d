// Package errors provides standardized error handling patterns for waverobot.
//
// # Overview
//
// The errors package implements a five-class error taxonomy matched to the
// robot protocol's failure modes: Argument (structurally invalid caller
// value), State (operation before required setup), Auth (signature or
// body-hash validation failure), Transport (network or HTTP failure), and
// Remote (per-operation failure reported by the server).
//
// The classification integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Return standard error variables for known conditions:
//
//	if creds == nil {
//	    return errors.ErrNoCredentials
//	}
//
// Wrap errors with class and context:
//
//	if err := fetcher.Send(ctx, url, mime, body); err != nil {
//	    return errors.WrapTransport(err, "Client", "Submit", "operation submission")
//	}
//
// Check classification to decide how a failure surfaces:
//
//	if errors.IsAuth(err) {
//	    // log detail for operators, report generically to the far end
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing and debugging across the
// codebase. The Wrap family of functions applies the pattern while
// preserving classification through the chain.
//
// # Retry semantics
//
// None of the classes are retried by this layer. Argument, State, and Auth
// failures are terminal by definition; Transport failures surface as a
// single top-level error so callers can apply their own retry/backoff
// policy; Remote failures are carried inside an otherwise successful
// exchange and must be inspected per response.
package errors
