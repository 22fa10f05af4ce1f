// Package pathstore implements the in-memory state tree shared by every
// shell loaded into the host application.
//
// The tree is a single nested mapping addressed by dot-delimited paths
// ("cart.items.count"). Values are JSON-like: maps, slices, scalars. A nil
// value is the absence sentinel - writing nil deletes the entry rather than
// storing a null, mirroring how the persisted JSON form treats null.
//
// There is no escaping mechanism for literal dots inside a segment. This is
// an accepted limitation of the addressing scheme, not a bug.
//
// Thread-safety: all methods are safe for concurrent use. Broadcast and
// watcher deliveries arrive on their own goroutines, so the tree is guarded
// by a sync.RWMutex even though each browsing-context analogue of this store
// is logically single-threaded.
package pathstore
