// Package medium provides the storage backends persisted items are written
// to.
//
// A medium is a flat string-to-string item store, the Go analogue of a
// browser storage area. Three implementations exist:
//
//   - Memory: process-local map, lost on exit. Exists for interface
//     symmetry and tests; memory-strategy keys bypass persistence entirely
//     and never reach a medium in production paths.
//   - SQLite at a durable path: survives host restarts and is shareable by
//     every process on the machine ("same storage origin").
//   - SQLite under the temp root: survives reloads of the same session and
//     disappears with the host's temp cleanup.
//
// Item identifiers are opaque to a medium; namespacing ("storageKey:key")
// is the gateway's concern.
package medium
