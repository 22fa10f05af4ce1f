package gateway

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/mfshell/shellstore/internal/codec"
	"github.com/mfshell/shellstore/internal/logging"
	"github.com/mfshell/shellstore/internal/medium"
	"github.com/mfshell/shellstore/internal/strategy"
)

// Options fixes the gateway's identity and aggregate behavior for the
// lifetime of a store instance.
type Options struct {
	// StorageKey namespaces every persisted item and names the aggregate
	// item. Load-bearing for interop with deployed instances.
	StorageKey string

	// EnablePersistence turns the legacy whole-tree aggregate mode on.
	EnablePersistence bool

	// EnableEncryption passes the aggregate blob through the obfuscation
	// codec. Per-key encryption is governed by each key's strategy, not by
	// this flag.
	EnableEncryption bool
}

// Gateway mediates between the store and its media.
type Gateway struct {
	opts       Options
	strategies *strategy.Registry
	local      medium.Medium
	session    medium.Medium
	obf        *codec.Obfuscator
	log        *logrus.Entry
}

// New creates a gateway over the given media. local and session must be
// non-nil; memory-strategy keys never reach a medium.
func New(opts Options, strategies *strategy.Registry, local, session medium.Medium) *Gateway {
	return &Gateway{
		opts:       opts,
		strategies: strategies,
		local:      local,
		session:    session,
		obf:        codec.New(),
		log:        logging.NewLogger("gateway"),
	}
}

// ItemID returns the namespaced, NFC-normalized item identifier for key.
func (g *Gateway) ItemID(key string) string {
	return norm.NFC.String(g.opts.StorageKey + ":" + key)
}

// AggregateID returns the aggregate item identifier for an app storage key.
func (g *Gateway) AggregateID(appStorageKey string) string {
	return norm.NFC.String(appStorageKey)
}

// Persist writes key's value to the medium its strategy selects. Keys with
// no strategy, or a memory strategy, are not persisted. A nil value removes
// the item instead of writing a tombstone. Failures are logged, swallowed.
func (g *Gateway) Persist(key string, value any) {
	s, m := g.resolve(key)
	if m == nil {
		return
	}

	id := g.ItemID(key)
	if value == nil {
		if err := m.RemoveItem(id); err != nil {
			g.log.WithField("item", id).Warnf("remove failed: %v", err)
		}
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		g.log.WithField("item", id).Warnf("serialize failed: %v", err)
		return
	}
	payload := string(data)
	if s.Encrypted {
		payload = g.obf.Encode(data)
	}
	if err := m.SetItem(id, payload); err != nil {
		g.log.WithField("item", id).Warnf("persist failed: %v", err)
	}
}

// Load is the inverse of Persist. The second return is false when the key
// has no persistable strategy, the medium has no such item, or the stored
// payload fails to decode - deserialization failure is logged and treated
// as "not found", never propagated.
func (g *Gateway) Load(key string) (any, bool) {
	s, m := g.resolve(key)
	if m == nil {
		return nil, false
	}

	id := g.ItemID(key)
	payload, ok, err := m.GetItem(id)
	if err != nil {
		g.log.WithField("item", id).Warnf("load failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	data := []byte(payload)
	if s.Encrypted {
		data, err = g.obf.Decode(payload)
		if err != nil {
			g.log.WithField("item", id).Warnf("decode failed, treating as missing: %v", err)
			return nil, false
		}
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		g.log.WithField("item", id).Warnf("deserialize failed, treating as missing: %v", err)
		return nil, false
	}
	return value, true
}

// SaveAggregate serializes the whole tree under the bare storage key in the
// durable-local medium. No-op unless aggregate persistence is enabled.
func (g *Gateway) SaveAggregate(tree map[string]any) {
	if !g.opts.EnablePersistence {
		return
	}

	data, err := json.Marshal(tree)
	if err != nil {
		g.log.Warnf("serialize aggregate failed: %v", err)
		return
	}
	payload := string(data)
	if g.opts.EnableEncryption {
		payload = g.obf.Encode(data)
	}
	if err := g.local.SetItem(g.AggregateID(g.opts.StorageKey), payload); err != nil {
		g.log.Warnf("persist aggregate failed: %v", err)
	}
}

// LoadAggregate reads the persisted whole-tree blob. The second return is
// false when aggregate persistence is disabled or no blob exists. A blob
// that fails to decode yields an empty tree, not an error.
func (g *Gateway) LoadAggregate() (map[string]any, bool) {
	if !g.opts.EnablePersistence {
		return nil, false
	}

	payload, ok := g.RawAggregate()
	if !ok {
		return nil, false
	}

	data := []byte(payload)
	if g.opts.EnableEncryption {
		decoded, err := g.obf.Decode(payload)
		if err != nil {
			g.log.Warnf("decode aggregate failed, starting empty: %v", err)
			return map[string]any{}, true
		}
		data = decoded
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		g.log.Warnf("deserialize aggregate failed, starting empty: %v", err)
		return map[string]any{}, true
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, true
}

// RawAggregate returns the stored aggregate payload verbatim. The sync
// fallback compares raw blobs to tell foreign writes from its own.
func (g *Gateway) RawAggregate() (string, bool) {
	payload, ok, err := g.local.GetItem(g.AggregateID(g.opts.StorageKey))
	if err != nil {
		g.log.Warnf("read aggregate failed: %v", err)
		return "", false
	}
	return payload, ok
}

// RemoveAggregate deletes this instance's aggregate item.
func (g *Gateway) RemoveAggregate() {
	id := g.AggregateID(g.opts.StorageKey)
	if err := g.local.RemoveItem(id); err != nil {
		g.log.WithField("item", id).Warnf("remove aggregate failed: %v", err)
	}
}

// ClearAppData removes the aggregate item for appStorageKey, then scans
// every item in both durable media and removes those namespaced under it.
// The scan is O(total stored items) across both media, unconditionally -
// items belonging to other storage keys are left untouched.
func (g *Gateway) ClearAppData(appStorageKey string) {
	aggregateID := g.AggregateID(appStorageKey)
	prefix := norm.NFC.String(appStorageKey + ":")

	for _, m := range []medium.Medium{g.local, g.session} {
		if err := m.RemoveItem(aggregateID); err != nil {
			g.log.WithField("item", aggregateID).Warnf("remove aggregate failed: %v", err)
		}

		keys, err := m.Keys()
		if err != nil {
			g.log.Warnf("scan medium failed: %v", err)
			continue
		}
		for _, id := range keys {
			if !strings.HasPrefix(id, prefix) {
				continue
			}
			if err := m.RemoveItem(id); err != nil {
				g.log.WithField("item", id).Warnf("remove failed: %v", err)
			}
		}
	}
}

// resolve returns the key's strategy and its target medium. A nil medium
// means the key is not persisted (no strategy, or memory medium).
func (g *Gateway) resolve(key string) (strategy.Strategy, medium.Medium) {
	s, ok := g.strategies.Resolve(key)
	if !ok {
		return strategy.Strategy{}, nil
	}
	switch s.Medium {
	case strategy.MediumMemory:
		return s, nil
	case strategy.MediumLocal:
		return s, g.local
	case strategy.MediumSession:
		return s, g.session
	default:
		g.log.Warnf("key %q resolved to unknown medium %v", key, s.Medium)
		return strategy.Strategy{}, nil
	}
}
