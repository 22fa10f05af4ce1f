package coordinator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mfshell/shellstore/internal/broadcast"
	"github.com/mfshell/shellstore/internal/gateway"
	"github.com/mfshell/shellstore/internal/logging"
	"github.com/mfshell/shellstore/internal/medium"
	"github.com/mfshell/shellstore/internal/pathstore"
	"github.com/mfshell/shellstore/internal/strategy"
	"github.com/mfshell/shellstore/internal/subs"
)

// DefaultStorageKey names the store when Init is given none. It doubles as
// the aggregate item identifier and the sync channel name, so it must not
// change for deployed instances to keep finding each other.
const DefaultStorageKey = "mf-shell-store"

// State tracks the coordinator lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateDestroyed
)

// Options are fixed at Init time for the lifetime of the instance.
type Options struct {
	// EnablePersistence turns on the legacy whole-tree aggregate blob.
	EnablePersistence bool
	// EnableEncryption obfuscates the aggregate blob at rest.
	EnableEncryption bool
	// StorageKey namespaces persisted items and names the sync channel.
	// Empty means DefaultStorageKey.
	StorageKey string
}

// Deps lets embedders and tests substitute the coordinator's
// collaborators. Zero value means production defaults: SQLite media at the
// default paths, the process-wide broadcast bus, and the storage watcher
// as fallback when the bus is unavailable.
type Deps struct {
	// Local overrides the durable-local medium.
	Local medium.Medium
	// Session overrides the session-scoped medium.
	Session medium.Medium
	// Bus overrides the broadcast bus.
	Bus *broadcast.Bus
	// NoChannel simulates a host without the broadcast primitive: publish
	// becomes a no-op and the storage watcher carries sync instead.
	NoChannel bool
	// NoWatcher disables the storage-change fallback.
	NoWatcher bool
}

// Coordinator is one browsing context's store instance.
type Coordinator struct {
	mu    sync.Mutex
	state State
	opts  Options

	tree       *pathstore.Tree
	strategies *strategy.Registry
	subs       *subs.Registry

	gw       *gateway.Gateway
	local    medium.Medium
	session  medium.Medium
	ownMedia bool

	deps     Deps
	endpoint *broadcast.Endpoint
	watcher  *broadcast.Watcher

	// lastAggregateRaw is the aggregate payload this instance last wrote
	// or adopted. The storage watcher compares against it to ignore our
	// own writes.
	lastAggregateRaw string

	log *logrus.Entry
}

// New creates an uninitialized coordinator. Strategies may be configured
// immediately; everything else waits for Init.
func New(deps Deps) *Coordinator {
	return &Coordinator{
		tree:       pathstore.New(),
		strategies: strategy.NewRegistry(),
		subs:       subs.NewRegistry(),
		deps:       deps,
		log:        logging.NewLogger("coordinator"),
	}
}

// Init activates the coordinator: opens media, hydrates the tree from the
// persisted aggregate, and joins the sync channel. Calling Init on an
// already-initialized coordinator warns and does nothing; options cannot
// change mid-flight. A destroyed coordinator may be re-initialized and
// starts empty.
func (c *Coordinator) Init(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInitialized {
		c.log.Warn("init called on an initialized store; ignoring")
		return
	}

	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	c.opts = opts

	c.local, c.session, c.ownMedia = c.openMedia()
	c.gw = gateway.New(gateway.Options{
		StorageKey:        opts.StorageKey,
		EnablePersistence: opts.EnablePersistence,
		EnableEncryption:  opts.EnableEncryption,
	}, c.strategies, c.local, c.session)

	if tree, ok := c.gw.LoadAggregate(); ok {
		c.tree.Replace(tree)
	}
	if raw, ok := c.gw.RawAggregate(); ok {
		c.lastAggregateRaw = raw
	}

	if !c.deps.NoChannel {
		bus := c.deps.Bus
		if bus == nil {
			bus = broadcast.Default
		}
		c.endpoint = bus.Open(opts.StorageKey, c.handleMessage)
	} else {
		c.log.Debug("broadcast channel unavailable; sync falls back to storage watching")
	}

	if c.endpoint == nil && !c.deps.NoWatcher && opts.EnablePersistence {
		c.startWatcher()
	}

	c.state = StateInitialized
}

// Get returns the value at key, or nil when absent. A miss in the tree
// falls back to per-key persistence; a hit there is written back into the
// tree (lazy hydration, memoized) and re-saves the aggregate, so a Get can
// have the side effect of a storage write.
func (c *Coordinator) Get(key string) any {
	if !c.ready("get") {
		return nil
	}

	if value, ok := c.tree.Read(key); ok {
		return value
	}

	value, ok := c.gw.Load(key)
	if !ok {
		return nil
	}
	c.tree.Write(key, value)
	c.saveAggregate()
	return value
}

// Set writes value at key, persists it per strategy, re-saves the
// aggregate, announces the change to other contexts, and notifies local
// subscribers. immediate, when non-nil, is invoked first and is not
// re-invoked if it is also subscribed to key. A nil value deletes the key.
func (c *Coordinator) Set(key string, value any, immediate subs.Subscriber) {
	if !c.ready("set") {
		return
	}

	old := c.tree.Write(key, value)
	c.gw.Persist(key, value)
	c.saveAggregate()
	c.publish(broadcast.Message{Kind: broadcast.KindSet, Path: key, Value: value})
	c.subs.Notify(key, value, old, c.tree.Read, immediate)
}

// Subscribe registers cb for changes at exactly key (and as an ancestor of
// deeper changes). The returned handle removes this registration.
func (c *Coordinator) Subscribe(key string, cb subs.Subscriber) func() {
	if !c.ready("subscribe") {
		return func() {}
	}
	return c.subs.Subscribe(key, cb)
}

// Unsubscribe removes every registration of cb under key.
func (c *Coordinator) Unsubscribe(key string, cb subs.Subscriber) {
	if !c.ready("unsubscribe") {
		return
	}
	c.subs.Unsubscribe(key, cb)
}

// ConfigureStrategy registers a persistence strategy for a key or key
// prefix. Safe in any lifecycle state.
func (c *Coordinator) ConfigureStrategy(keyOrPrefix string, s strategy.Strategy) {
	c.strategies.Configure(keyOrPrefix, s)
}

// Strategies exposes the registry's registered prefixes for tooling.
func (c *Coordinator) Strategies() []string {
	return c.strategies.Prefixes()
}

// Clear resets the in-memory tree. Persisted items are untouched.
func (c *Coordinator) Clear() {
	if !c.ready("clear") {
		return
	}
	c.tree.Clear()
}

// ClearAppData wipes an application's footprint. When appStorageKey is
// this instance's own storage key the local tree is cleared and every
// subscribed path is notified with (key, nil, nil). Regardless of match,
// persisted items under appStorageKey are scanned out of both durable
// media and the clear is broadcast so sibling contexts drop their trees.
func (c *Coordinator) ClearAppData(appStorageKey string) {
	if !c.ready("clearAppData") {
		return
	}

	if appStorageKey == c.opts.StorageKey {
		c.tree.Clear()
		c.subs.NotifyAll(c.tree.Read, nil)
	}
	c.gw.ClearAppData(appStorageKey)
	c.publish(broadcast.Message{Kind: broadcast.KindClearApp, AppStorageKey: appStorageKey})
}

// Destroy wipes the tree, drops all subscribers, leaves the sync channel,
// stops the watcher, and removes the persisted aggregate. The coordinator
// may be re-initialized afterwards and starts fresh. Destroying an
// uninitialized or already-destroyed coordinator warns and does nothing.
func (c *Coordinator) Destroy() {
	if !c.teardown("destroy") {
		return
	}
	c.tree.Clear()
	c.subs.Clear()
	c.gw.RemoveAggregate()
	c.closeMedia()
}

// Close releases the coordinator's resources - sync channel, watcher,
// media - without wiping state: the tree stays persisted for the next
// process. Hosts call it at shutdown; Destroy is for logical teardown.
func (c *Coordinator) Close() {
	if !c.teardown("close") {
		return
	}
	c.closeMedia()
}

// teardown moves to Destroyed and detaches the sync plumbing. Returns
// false when there was nothing to tear down.
func (c *Coordinator) teardown(op string) bool {
	c.mu.Lock()
	if c.state != StateInitialized {
		c.mu.Unlock()
		c.log.Warnf("%s called on a store that is not initialized; ignoring", op)
		return false
	}
	c.state = StateDestroyed
	endpoint := c.endpoint
	watcher := c.watcher
	c.endpoint = nil
	c.watcher = nil
	c.lastAggregateRaw = ""
	c.mu.Unlock()

	if endpoint != nil {
		endpoint.Close()
	}
	if watcher != nil {
		watcher.Close()
	}
	return true
}

func (c *Coordinator) closeMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ownMedia {
		return
	}
	if err := c.local.Close(); err != nil {
		c.log.Warnf("close local medium: %v", err)
	}
	if err := c.session.Close(); err != nil {
		c.log.Warnf("close session medium: %v", err)
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Options returns the options fixed at Init.
func (c *Coordinator) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Snapshot returns a deep copy of the current tree.
func (c *Coordinator) Snapshot() map[string]any {
	return c.tree.Snapshot()
}

// ready reports whether the coordinator accepts operations, warning once
// per call when it does not.
func (c *Coordinator) ready(op string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateInitialized:
		return true
	case StateUninitialized:
		c.log.Warnf("%s called before init; ignoring", op)
	case StateDestroyed:
		c.log.Warnf("%s called on a destroyed store; ignoring", op)
	}
	return false
}

// openMedia returns the durable media, falling back to in-process maps
// when a backing database cannot be opened - the store stays available,
// persistence quietly degrades.
func (c *Coordinator) openMedia() (local, session medium.Medium, owned bool) {
	if c.deps.Local != nil || c.deps.Session != nil {
		local, session = c.deps.Local, c.deps.Session
		if local == nil {
			local = medium.NewMemory()
		}
		if session == nil {
			session = medium.NewMemory()
		}
		return local, session, false
	}

	localSQL, err := medium.OpenSQLite(medium.DefaultLocalPath())
	if err != nil {
		c.log.Warnf("durable-local medium unavailable, using memory: %v", err)
		return medium.NewMemory(), medium.NewMemory(), false
	}
	sessionSQL, err := medium.OpenSQLite(medium.DefaultSessionPath())
	if err != nil {
		c.log.Warnf("session medium unavailable, using memory: %v", err)
		localSQL.Close()
		return medium.NewMemory(), medium.NewMemory(), false
	}
	return localSQL, sessionSQL, true
}

// startWatcher wires the storage-change fallback over the durable-local
// database file. Only possible when the medium is file-backed.
func (c *Coordinator) startWatcher() {
	sq, ok := c.local.(*medium.SQLite)
	if !ok {
		return
	}
	w, err := broadcast.NewWatcher(sq.Path(), c.handleStorageChange)
	if err != nil {
		c.log.Warnf("storage watcher unavailable: %v", err)
		return
	}
	c.watcher = w
}

// saveAggregate re-persists the whole tree and remembers the written blob
// so the watcher can tell our writes from foreign ones.
func (c *Coordinator) saveAggregate() {
	c.gw.SaveAggregate(c.tree.Snapshot())
	if raw, ok := c.gw.RawAggregate(); ok {
		c.mu.Lock()
		c.lastAggregateRaw = raw
		c.mu.Unlock()
	}
}

func (c *Coordinator) publish(msg broadcast.Message) {
	c.mu.Lock()
	endpoint := c.endpoint
	c.mu.Unlock()
	if endpoint == nil {
		return
	}
	if err := endpoint.Publish(msg); err != nil {
		c.log.Warnf("broadcast failed: %v", err)
	}
}

// handleMessage applies a foreign change locally. Message-originated
// updates are not re-broadcast, which is what prevents echo loops.
func (c *Coordinator) handleMessage(msg broadcast.Message) {
	if c.State() != StateInitialized {
		return
	}

	switch msg.Kind {
	case broadcast.KindSet:
		old := c.tree.Write(msg.Path, msg.Value)
		c.saveAggregate()
		c.subs.Notify(msg.Path, msg.Value, old, c.tree.Read, nil)
	case broadcast.KindClearApp:
		// The sender already cleaned persisted storage; we only drop the
		// in-memory copy, and only when the clear is addressed to us.
		if msg.AppStorageKey != c.opts.StorageKey {
			return
		}
		c.tree.Clear()
		c.subs.NotifyAll(c.tree.Read, nil)
	default:
		c.log.Warnf("dropping sync message of unknown kind %q", msg.Kind)
	}
}

// handleStorageChange runs when a foreign process touched the durable
// medium. The whole tree is replaced from the decoded aggregate and every
// subscribed path is notified with its current value and no old value;
// no per-key diff is attempted.
func (c *Coordinator) handleStorageChange() {
	if c.State() != StateInitialized {
		return
	}

	raw, ok := c.gw.RawAggregate()
	if !ok {
		return
	}
	c.mu.Lock()
	seen := c.lastAggregateRaw
	c.mu.Unlock()
	if raw == seen {
		return
	}

	tree, ok := c.gw.LoadAggregate()
	if !ok {
		return
	}
	c.mu.Lock()
	c.lastAggregateRaw = raw
	c.mu.Unlock()

	c.tree.Replace(tree)
	c.subs.NotifyAll(c.tree.Read, nil)
}
