// Package trace provides the tracing subsystem for the Tern runtime.
//
// Events record heap allocation traffic, pool scheduling decisions and
// channel activity so that hangs and leaks can be diagnosed without a
// debugger attached.
//
// # Architecture
//
// Several tracer implementations are provided:
//
//   - nop tracer: zero-overhead when tracing is disabled
//   - StreamTracer: immediate line-oriented write to an output
//   - RingTracer: circular buffer for post-mortem dumps
//
// # Levels
//
// Verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelError: only fault dumps
//   - LevelPhase: pool lifecycle boundaries
//   - LevelDetail: per-task and per-channel events
//   - LevelDebug: everything including heap alloc/free
//
// A RingTracer's contents can be serialized with Dump and read back with
// Load for offline inspection.
package trace
