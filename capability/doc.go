// Package capability tracks which events a robot declares interest in and
// derives the robot's capabilities version hash from those declarations.
//
// Registration is explicit: the robot layer calls Register when a handler
// is bound with declared contexts or a filter. Handlers bound without
// declarations are dispatched but add no registry entry, leaving the wave
// server's defaults in force.
//
// The version hash must agree across every instance of the same robot and
// across redeploys that do not change the declarations, because the wave
// server uses it to decide when to re-fetch capabilities.xml. The hash
// therefore folds registry entries in sorted key order using a fixed-width
// string hash, independent of registration order and process.
package capability
