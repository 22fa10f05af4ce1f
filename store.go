// Package shellstore is a shared key/value state store for independently
// deployed application shells.
//
// Shells that cannot share code or memory still need one logical state
// tree: shellstore gives each context a coordinator over an in-memory
// dotted-path tree, per-key-prefix persistence strategies, subscriptions
// with ancestor fan-out, and best-effort synchronization with sibling
// contexts over a broadcast channel, falling back to watching the shared
// durable medium.
//
// The typical entry point is the process-wide shared instance:
//
//	shellstore.Init(shellstore.Options{StorageKey: "checkout", EnablePersistence: true})
//	shellstore.ConfigureStrategy("user.", shellstore.Strategy{Medium: shellstore.MediumLocal})
//	shellstore.Set("user.name", "ada", nil)
//	unsubscribe := shellstore.Subscribe("user", onUserChanged)
//
// Every operation is best-effort and non-throwing: misuse (operating
// before Init, double Init) and storage or sync failures are logged
// warnings, never panics or returned errors. A failed persist is
// invisible to the caller - that trade-off favors availability and is
// part of the contract.
package shellstore

import (
	"github.com/mfshell/shellstore/internal/coordinator"
	"github.com/mfshell/shellstore/internal/strategy"
	"github.com/mfshell/shellstore/internal/subs"
)

// Subscriber receives change notifications: the notified path, the new
// value at that path, and the old value. Ancestor notifications carry the
// ancestor's current value and the changed leaf's old value.
type Subscriber func(key string, newValue, oldValue any)

// Options configure a store at Init time and are fixed for the instance's
// lifetime.
type Options struct {
	// EnablePersistence turns on the legacy whole-tree aggregate blob,
	// persisted under StorageKey in the durable-local medium.
	EnablePersistence bool
	// EnableEncryption obfuscates the aggregate blob at rest.
	EnableEncryption bool
	// StorageKey namespaces persisted items and names the sync channel.
	// Defaults to "mf-shell-store". Interoperating instances must agree
	// on it.
	StorageKey string
}

// StorageMedium says where a key's value is durably stored.
type StorageMedium string

const (
	// MediumMemory keeps the value in the tree only.
	MediumMemory StorageMedium = "memory"
	// MediumLocal survives host restarts.
	MediumLocal StorageMedium = "local"
	// MediumSession survives reloads within a session, not restarts.
	MediumSession StorageMedium = "session"
)

// Strategy is the persistence policy for a key or key prefix.
type Strategy struct {
	Medium    StorageMedium
	Encrypted bool
}

// Store is one context's coordinator over the shared state tree. Most
// applications use the package-level functions, which operate on the
// process-wide shared instance; NewStore exists for embedders that need
// isolated instances (tests, multi-tenant hosts).
type Store struct {
	c *coordinator.Coordinator
}

// NewStore creates an uninitialized store with production collaborators:
// SQLite-backed media at the default paths and the process-wide broadcast
// bus.
func NewStore() *Store {
	return newStoreWith(coordinator.Deps{})
}

func newStoreWith(deps coordinator.Deps) *Store {
	return &Store{c: coordinator.New(deps)}
}

// Init activates the store. A second Init is a warned no-op.
func (s *Store) Init(opts Options) {
	s.c.Init(coordinator.Options{
		EnablePersistence: opts.EnablePersistence,
		EnableEncryption:  opts.EnableEncryption,
		StorageKey:        opts.StorageKey,
	})
}

// Get returns the value at key, or nil when absent. A tree miss falls
// back to per-key persistence and memoizes the hit.
func (s *Store) Get(key string) any {
	return s.c.Get(key)
}

// Set writes value at key and runs the full pipeline: persist, aggregate
// save, broadcast, notify. immediate, when non-nil, is called first and
// not re-invoked if also subscribed to key. A nil value deletes the key.
func (s *Store) Set(key string, value any, immediate Subscriber) {
	s.c.Set(key, value, toInternal(immediate))
}

// Subscribe registers cb for changes at key. The returned function
// removes exactly this registration.
func (s *Store) Subscribe(key string, cb Subscriber) (unsubscribe func()) {
	return s.c.Subscribe(key, toInternal(cb))
}

// Unsubscribe removes every registration of cb under key. Identity is the
// callback's code pointer; prefer the handle returned by Subscribe when
// the same function literal is registered more than once.
func (s *Store) Unsubscribe(key string, cb Subscriber) {
	s.c.Unsubscribe(key, toInternal(cb))
}

// ConfigureStrategy binds a persistence strategy to a key or key prefix.
// Resolution is longest-prefix by string length. Safe before Init.
func (s *Store) ConfigureStrategy(keyOrPrefix string, st Strategy) {
	med, err := strategy.ParseMedium(string(st.Medium))
	if err != nil {
		// Unknown media are a programming error but must not bring the
		// host down; the key simply stays unpersisted.
		logSharedWarn("configureStrategy: %v", err)
		return
	}
	s.c.ConfigureStrategy(keyOrPrefix, strategy.Strategy{Medium: med, Encrypted: st.Encrypted})
}

// ClearAppData wipes an application's footprint: its tree (when the key
// is our own), its persisted items in both durable media, and, via
// broadcast, its tree in sibling contexts.
func (s *Store) ClearAppData(appStorageKey string) {
	s.c.ClearAppData(appStorageKey)
}

// Clear resets the in-memory tree, leaving persisted items alone.
func (s *Store) Clear() {
	s.c.Clear()
}

// Destroy tears the store down: subscribers dropped, sync channel closed,
// aggregate blob removed. The store may be re-initialized and starts
// empty.
func (s *Store) Destroy() {
	s.c.Destroy()
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() map[string]any {
	return s.c.Snapshot()
}

// GetAs reads key from the store and asserts it to T. The second return
// is false when the key is absent or holds a different type. Values that
// arrived from a sibling context carry JSON typing (numbers are float64).
func GetAs[T any](s *Store, key string) (T, bool) {
	value, ok := s.Get(key).(T)
	return value, ok
}

func toInternal(cb Subscriber) subs.Subscriber {
	if cb == nil {
		return nil
	}
	return subs.Subscriber(cb)
}
