// SPDX-License-Identifier: MPL-2.0

// Package wrapper supervises a single child process per invocation: it
// spawns the child with a resolved environment, drains both output streams
// concurrently, enforces an optional timeout with graceful-then-forced
// termination, fires lifecycle hooks, and guarantees the child never
// outlives the call on any exit path.
//
// Concurrency is scoped to one Run call: two reader goroutines (one per
// stream) plus a termination watcher. Output callbacks run on the reader
// goroutine that produced the line, in strict per-stream order; no ordering
// holds across the two streams.
package wrapper
