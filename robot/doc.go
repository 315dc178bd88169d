// Package robot ties the framework together: one Robot value owns the
// event dispatcher, the capability registry, the OAuth validation of
// inbound requests, and the signed submission of operations to active
// gateways.
//
// A Robot serves four HTTP endpoints. The JSON-RPC endpoint receives event
// bundles, runs them through the bound handlers against a request-scoped
// wavelet mirror, and replies with the queued operations. The profile,
// capabilities.xml, and verify_token endpoints serve the robot's metadata
// to the wave server.
//
// The capability version hash is computed once, on first use, and frozen;
// binding handlers with capability declarations after the robot starts
// serving is rejected so the published hash never lies about the
// declarations behind it.
package robot
