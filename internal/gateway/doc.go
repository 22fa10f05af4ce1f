// Package gateway performs the actual reads and writes against storage
// media, applying per-key strategy resolution, obfuscation, and item
// namespacing.
//
// Two persistence modes coexist:
//
//   - Per-key: each key resolves to a strategy; the value is serialized
//     and stored as one item named "{storageKey}:{key}".
//   - Aggregate (legacy): the entire tree is serialized under the bare
//     storage key in the durable-local medium. Kept for compatibility with
//     deployed readers; it always reflects the in-memory tree at call time
//     and is not kept transactionally consistent with per-key items.
//
// Item identifiers are NFC-normalized so instances built on different
// hosts agree on names for non-ASCII keys.
//
// Every failure at this layer is logged and swallowed. The store's
// contract favors availability over strict correctness signaling: a failed
// persist is invisible to the caller by design.
package gateway
