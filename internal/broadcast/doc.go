// Package broadcast moves change notifications between store instances
// that share a storage origin but not memory.
//
// The primary transport is a process-wide named bus: endpoints open a
// channel by name (the store's storage key) and receive every message
// published by other endpoints on the same channel, never their own.
// Messages are JSON round-tripped on delivery, so receivers get an
// isolated copy with JSON typing (numbers arrive as float64), the same
// shape they would have after crossing a real context boundary.
//
// When the bus is unavailable the Watcher provides the fallback signal: it
// monitors the durable-local medium's backing file and fires on foreign
// writes, at which point the owner re-reads the persisted aggregate and
// adopts it wholesale. The watcher cannot tell foreign writes from its
// own, so the owner is responsible for comparing the re-read blob against
// the last one it saw.
package broadcast
