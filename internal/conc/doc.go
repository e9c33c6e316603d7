// Package conc implements the Tern concurrency runtime: a fixed-size worker
// pool executing queued closures, single-assignment futures with an explicit
// state machine, blocking FIFO channels, and lock-free atomic integers.
//
// Scheduling uses real OS-backed workers; there is no cooperative scheduler.
// Cancellation is cooperative and best-effort: it prevents a task from
// starting, but a running closure is never interrupted and must poll
// CancelRequested itself. Timeouts are computed as absolute deadlines at
// call time so repeated waits do not drift.
//
// Channel sends and future results are the only sanctioned points where
// ownership of a value subgraph moves between threads.
package conc
