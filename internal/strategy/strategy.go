// Package strategy maps key prefixes to persistence strategies.
//
// A strategy decides where a key's value is durably stored (memory only,
// durable-local, or session-scoped) and whether the stored form passes
// through the obfuscation codec. Resolution picks the longest registered
// prefix by string length - NOT by path-segment depth. A prefix "use"
// matches the key "user.name" even though "use" is not a full segment.
// That tie-break is observable behavior relied on by deployed callers and
// must not be "fixed" into segment-aware matching.
package strategy

import (
	"fmt"
	"strings"
	"sync"
)

// Medium identifies where a key's value is persisted. The set is closed:
// dispatch over it with a switch so new media break loudly at compile time.
type Medium int

const (
	// MediumMemory keeps values in the tree only. Memory-strategy keys
	// still participate in notification and cross-context sync but never
	// touch the persistence gateway.
	MediumMemory Medium = iota + 1
	// MediumLocal survives host restarts.
	MediumLocal
	// MediumSession survives reloads within a session, not restarts.
	MediumSession
)

// String returns the manifest spelling of the medium.
func (m Medium) String() string {
	switch m {
	case MediumMemory:
		return "memory"
	case MediumLocal:
		return "local"
	case MediumSession:
		return "session"
	default:
		return fmt.Sprintf("Medium(%d)", int(m))
	}
}

// ParseMedium converts a manifest spelling into a Medium.
func ParseMedium(s string) (Medium, error) {
	switch s {
	case "memory":
		return MediumMemory, nil
	case "local":
		return MediumLocal, nil
	case "session":
		return MediumSession, nil
	default:
		return 0, fmt.Errorf("unknown medium %q: must be one of memory, local, session", s)
	}
}

// Strategy is a persistence policy for a key or key prefix.
type Strategy struct {
	Medium    Medium
	Encrypted bool
}

// Registry accumulates prefix-to-strategy bindings. There is no removal
// API: the last Configure call for a given prefix wins, and prefixes only
// accumulate over the registry's lifetime.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Configure registers or overwrites the strategy for a key or key prefix.
// An exact key is just a prefix whose length equals the key's length, so it
// wins resolution over any shorter prefix.
func (r *Registry) Configure(keyOrPrefix string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[keyOrPrefix] = s
}

// Resolve returns the strategy whose prefix is the longest string prefix of
// key. The second return is false when no registered prefix matches.
func (r *Registry) Resolve(key string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    Strategy
		bestLen = -1
	)
	for prefix, s := range r.strategies {
		if strings.HasPrefix(key, prefix) && len(prefix) > bestLen {
			best = s
			bestLen = len(prefix)
		}
	}
	if bestLen < 0 {
		return Strategy{}, false
	}
	return best, true
}

// Prefixes returns the registered prefixes. Order is not guaranteed.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.strategies))
	for prefix := range r.strategies {
		out = append(out, prefix)
	}
	return out
}
