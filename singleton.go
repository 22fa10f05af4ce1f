package shellstore

import (
	"sync"

	"github.com/mfshell/shellstore/internal/logging"
)

// sharedSlotVersion names the compatibility generation of the shared
// instance's contract. Independently-deployed shells attach to the slot
// for the version they were built against; bump it only alongside a
// breaking change to the public contract.
const sharedSlotVersion = 1

var (
	sharedMu    sync.Mutex
	sharedSlots = make(map[int]*Store)
)

// Shared returns the process-wide store instance, constructing it on
// first use. Every caller in the process - whichever deployment unit it
// arrived in - gets the same instance, which is what makes the state tree
// logically single.
func Shared() *Store {
	return sharedAt(sharedSlotVersion)
}

func sharedAt(version int) *Store {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if s, ok := sharedSlots[version]; ok {
		return s
	}
	if len(sharedSlots) > 0 {
		// Another generation already lives here. That means mixed builds
		// are sharing a process; they will not see each other's state.
		logSharedWarn("shared store slot v%d created alongside another generation", version)
	}
	s := NewStore()
	sharedSlots[version] = s
	return s
}

// ResetShared discards the shared instance so the next Shared call
// constructs a fresh one. The old instance is destroyed first. Intended
// for host teardown and tests.
func ResetShared() {
	sharedMu.Lock()
	s := sharedSlots[sharedSlotVersion]
	delete(sharedSlots, sharedSlotVersion)
	sharedMu.Unlock()

	if s != nil {
		s.Destroy()
	}
}

// Init initializes the shared store. See Store.Init.
func Init(opts Options) { Shared().Init(opts) }

// Get reads from the shared store. See Store.Get.
func Get(key string) any { return Shared().Get(key) }

// Set writes to the shared store. See Store.Set.
func Set(key string, value any, immediate Subscriber) { Shared().Set(key, value, immediate) }

// Subscribe registers on the shared store. See Store.Subscribe.
func Subscribe(key string, cb Subscriber) (unsubscribe func()) {
	return Shared().Subscribe(key, cb)
}

// Unsubscribe removes cb from the shared store. See Store.Unsubscribe.
func Unsubscribe(key string, cb Subscriber) { Shared().Unsubscribe(key, cb) }

// ConfigureStrategy binds a strategy on the shared store.
func ConfigureStrategy(keyOrPrefix string, st Strategy) {
	Shared().ConfigureStrategy(keyOrPrefix, st)
}

// ClearAppData wipes an application's footprint via the shared store.
func ClearAppData(appStorageKey string) { Shared().ClearAppData(appStorageKey) }

// Clear resets the shared store's tree.
func Clear() { Shared().Clear() }

// Destroy tears down the shared store instance.
func Destroy() { Shared().Destroy() }

func logSharedWarn(format string, args ...any) {
	logging.NewLogger("shellstore").Warnf(format, args...)
}
