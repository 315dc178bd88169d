// Package wave implements the in-memory document mirror and the operation
// queue that together model a robot's view of a remote wavelet.
//
// # Architecture
//
// A Wavelet is a mutable snapshot of remote state: participants, tags, data
// documents, and an id-keyed table of Blips organized as a tree via
// parent/child ids. Every semantic mutation on the mirror does two things:
// it updates the in-memory attributes synchronously, and it appends to the
// wavelet's OperationQueue exactly the operations a correct remote replay
// would require. The queue is an ordered log; submission is a read, not a
// drain, until the caller explicitly clears it.
//
// Blips do not hold a back-reference to their Wavelet. Each Blip carries its
// wave/wavelet ids, a reference to the wavelet's shared blip table for
// parent/child lookup, and the shared queue. This keeps ownership linear:
// the Wavelet owns the table, Blips index into it.
//
// # Queues, proxying, and joining
//
// Queues fork and join. ProxyFor returns a queue over the same underlying
// log that stamps a proxying identity on every future operation, so the
// remote side attributes mutations to robot+proxy@domain. SubmitWith merges
// two previously independent logs into one ordered log, used when a blind
// wavelet's operations must ride along with an event wavelet's submission.
//
// Every outbound submission is preceded by a capabilities-version
// notification operation; see OperationQueue.NotifyRobotInformation. This
// makes the first element of every RPC response sequence the notify
// acknowledgement, which is why callers consume fetch results at index 1.
//
// # Concurrency
//
// Wavelets, Blips, and OperationQueues are request-scoped. They are never
// shared across requests and never accessed by more than one logical flow
// at a time, so they perform no internal locking.
package wave
