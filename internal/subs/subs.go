package subs

import (
	"reflect"
	"strings"
	"sync"

	"github.com/mfshell/shellstore/internal/logging"
)

// Subscriber receives change notifications. key is the path the
// notification is for (the changed path, or an ancestor of it).
type Subscriber func(key string, newValue, oldValue any)

// TreeReader resolves a path to its current value. Ancestor notifications
// use it to recompute composite values at delivery time.
type TreeReader func(path string) (any, bool)

type entry struct {
	id int64
	fn Subscriber
	// Code pointer of fn, for identity comparison.
	ptr uintptr
}

// Registry holds the subscriber sets. Thread-safe; callbacks are invoked
// outside the registry lock, so a callback may freely re-enter Subscribe,
// Unsubscribe, or the store itself.
type Registry struct {
	mu     sync.Mutex
	subs   map[string][]entry
	nextID int64
	log    logFunc
}

type logFunc func(path string, recovered any)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	logger := logging.NewLogger("subscriptions")
	return &Registry{
		subs: make(map[string][]entry),
		log: func(path string, recovered any) {
			logger.WithField("path", path).Warnf("subscriber panicked: %v", recovered)
		},
	}
}

// Subscribe registers cb under the exact path and returns a handle that
// removes exactly this registration. Unsubscribing twice is harmless.
func (r *Registry) Subscribe(path string, cb Subscriber) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.subs[path] = append(r.subs[path], entry{id: id, fn: cb, ptr: funcPtr(cb)})

	return func() {
		r.removeByID(path, id)
	}
}

// Unsubscribe removes every registration under path whose callback has the
// same identity as cb.
func (r *Registry) Unsubscribe(path string, cb Subscriber) {
	ptr := funcPtr(cb)

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.subs[path][:0]
	for _, e := range r.subs[path] {
		if e.ptr != ptr {
			kept = append(kept, e)
		}
	}
	r.prune(path, kept)
}

// Paths returns every path that currently has at least one subscriber.
// Coarse notifications (tree replacement, clear) iterate this.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.subs))
	for path := range r.subs {
		paths = append(paths, path)
	}
	return paths
}

// Clear drops every subscriber. Outstanding unsubscribe handles become
// no-ops.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string][]entry)
}

// Notify delivers a change at path to the immediate callback, the exact-
// path subscribers, and ancestor subscribers, in that order.
//
// The immediate callback (the one-shot callback passed to Set) runs first.
// Exact-path delivery skips any subscriber identical to it, so a callback
// that is both passed to Set and subscribed to the same key fires exactly
// once for the change. Ancestors are walked from the immediate parent up
// to, but not including, the root; each ancestor subscriber receives the
// ancestor's current value via read and the leaf's old value.
//
// Every invocation is isolated: a panicking callback is recovered and
// logged, and delivery continues.
func (r *Registry) Notify(path string, newValue, oldValue any, read TreeReader, immediate Subscriber) {
	var immediatePtr uintptr
	if immediate != nil {
		immediatePtr = funcPtr(immediate)
		r.invoke(immediate, path, newValue, oldValue)
	}

	for _, e := range r.snapshot(path) {
		if immediate != nil && e.ptr == immediatePtr {
			continue
		}
		r.invoke(e.fn, path, newValue, oldValue)
	}

	segments := strings.Split(path, ".")
	for i := len(segments) - 1; i > 0; i-- {
		ancestor := strings.Join(segments[:i], ".")
		entries := r.snapshot(ancestor)
		if len(entries) == 0 {
			continue
		}
		current, _ := read(ancestor)
		for _, e := range entries {
			r.invoke(e.fn, ancestor, current, oldValue)
		}
	}
}

// NotifyAll delivers (path, currentValue, oldValue) to every subscriber of
// every registered path. Used after wholesale tree replacement and clears,
// where per-key diffing would cost O(subscribers x keys).
func (r *Registry) NotifyAll(read TreeReader, oldValue any) {
	for _, path := range r.Paths() {
		current, _ := read(path)
		for _, e := range r.snapshot(path) {
			r.invoke(e.fn, path, current, oldValue)
		}
	}
}

func (r *Registry) invoke(fn Subscriber, key string, newValue, oldValue any) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.log(key, recovered)
		}
	}()
	fn(key, newValue, oldValue)
}

// snapshot copies the entry list for path so delivery can run unlocked.
func (r *Registry) snapshot(path string) []entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.subs[path]
	if len(entries) == 0 {
		return nil
	}
	out := make([]entry, len(entries))
	copy(out, entries)
	return out
}

func (r *Registry) removeByID(path string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.subs[path][:0]
	for _, e := range r.subs[path] {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	r.prune(path, kept)
}

// prune stores the kept entries, dropping the path's set entirely when it
// is empty. Caller must hold r.mu.
func (r *Registry) prune(path string, kept []entry) {
	if len(kept) == 0 {
		delete(r.subs, path)
		return
	}
	r.subs[path] = kept
}

func funcPtr(fn Subscriber) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
