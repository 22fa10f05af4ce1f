// Package coordinator composes the state tree, strategy registry,
// persistence gateway, subscription registry, and sync transport into the
// store's public contract.
//
// Lifecycle: Uninitialized -> Initialized -> Destroyed. Init while
// initialized is a warned no-op; a destroyed coordinator accepts a fresh
// Init and comes back empty (the persisted aggregate is removed on
// Destroy). Operations invoked in the wrong state log a warning and do
// nothing - initialization-order bugs surface as warnings, never as
// panics or errors. The one exception is ConfigureStrategy, which is safe
// in any state so shells can register strategies while the host is still
// booting.
//
// Error policy throughout: best-effort, non-throwing. Failed persists and
// failed broadcasts are logged and swallowed; a failed persist is
// invisible to the caller. Callers who need stronger signaling should
// watch the log stream.
package coordinator
