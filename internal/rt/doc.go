// Package rt implements the Tern value model: tagged, reference-counted
// dynamic values, the Array and Hash containers that own them, closures with
// capture-by-reference cells, and the unwind machinery (throw/try plus the
// cleanup stack) that keeps reference counts balanced across non-local exits.
//
// Ownership rules:
//
//   - A refcount of zero frees the value exactly once; containers hold owning
//     references to their elements (insert increments or adopts, overwrite,
//     removal and destruction decrement).
//   - Refcounts are plain integers. A Value subgraph is owned by one thread
//     at a time; the only sanctioned cross-thread hand-off points are a
//     channel send and a future result. Concurrent Incref/Decref outside
//     those points is a caller bug, not something this package patches over.
//   - Weak references never keep a target alive; when the target dies every
//     registered weak holder is nulled before the storage is reclaimed.
package rt
