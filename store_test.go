package shellstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfshell/shellstore/internal/broadcast"
	"github.com/mfshell/shellstore/internal/coordinator"
	"github.com/mfshell/shellstore/internal/medium"
)

// newTestStore builds an isolated store: in-process media, private bus.
func newTestStore(t *testing.T) (*Store, *medium.Memory) {
	t.Helper()
	local := medium.NewMemory()
	s := newStoreWith(coordinator.Deps{
		Local:   local,
		Session: medium.NewMemory(),
		Bus:     broadcast.NewBus(),
	})
	return s, local
}

func TestStore_PublicSurface(t *testing.T) {
	s, local := newTestStore(t)
	s.ConfigureStrategy("user.", Strategy{Medium: MediumLocal})
	s.Init(Options{StorageKey: "app", EnablePersistence: true})

	var notified []string
	unsubscribe := s.Subscribe("user", func(key string, newValue, oldValue any) {
		notified = append(notified, key)
	})

	s.Set("user.name", "ada", nil)

	assert.Equal(t, "ada", s.Get("user.name"))
	assert.Equal(t, []string{"user"}, notified, "ancestor subscriber should fire")
	if _, ok, _ := local.GetItem("app:user.name"); !ok {
		t.Error("per-key persistence did not run")
	}
	if _, ok, _ := local.GetItem("app"); !ok {
		t.Error("aggregate persistence did not run")
	}

	unsubscribe()
	s.Set("user.name", "grace", nil)
	assert.Len(t, notified, 1, "unsubscribed callback still fired")

	s.Destroy()
	assert.Nil(t, s.Get("user.name"))
}

func TestStore_ImmediateCallback(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(Options{StorageKey: "app"})

	var calls int
	cb := func(key string, newValue, oldValue any) { calls++ }
	s.Subscribe("x", cb)

	s.Set("x", 1, cb)
	assert.Equal(t, 1, calls)
}

func TestStore_UnsubscribeByIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(Options{StorageKey: "app"})

	var calls int
	cb := func(key string, newValue, oldValue any) { calls++ }
	s.Subscribe("x", cb)
	s.Unsubscribe("x", cb)

	s.Set("x", 1, nil)
	assert.Zero(t, calls)
}

func TestStore_ConfigureStrategyUnknownMediumIsNoop(t *testing.T) {
	s, local := newTestStore(t)
	s.Init(Options{StorageKey: "app"})

	s.ConfigureStrategy("user.", Strategy{Medium: "cloud"})
	s.Set("user.name", "ada", nil)

	keys, _ := local.Keys()
	assert.Empty(t, keys, "unknown medium must leave the key unpersisted")
	assert.Equal(t, "ada", s.Get("user.name"), "the tree write still happens")
}

func TestGetAs(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(Options{StorageKey: "app"})
	s.Set("user.name", "ada", nil)
	s.Set("user.age", 37, nil)

	name, ok := GetAs[string](s, "user.name")
	require.True(t, ok)
	assert.Equal(t, "ada", name)

	_, ok = GetAs[int](s, "user.name")
	assert.False(t, ok, "wrong type must report absent")

	_, ok = GetAs[string](s, "user.missing")
	assert.False(t, ok)

	age, ok := GetAs[int](s, "user.age")
	require.True(t, ok)
	assert.Equal(t, 37, age)
}

func TestShared_SingletonIdentity(t *testing.T) {
	t.Cleanup(ResetShared)

	first := Shared()
	assert.Same(t, first, Shared(), "every loader must attach to the same instance")

	ResetShared()
	assert.NotSame(t, first, Shared(), "reset must yield a fresh instance")
}
