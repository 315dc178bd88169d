// Package metric provides Prometheus instrumentation for a robot: counts
// of events received and dispatched, inbound request outcomes, operation
// submissions to the active gateway, and authentication failures.
//
// All collectors live in a private Prometheus registry under the
// "waverobot" namespace, exposed through Handler for a /metrics endpoint.
// A nil *Set is safe everywhere metrics are recorded, so instrumentation
// can be switched off by simply not constructing one.
package metric
