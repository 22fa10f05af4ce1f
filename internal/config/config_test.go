package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfshell/shellstore/internal/broadcast"
	"github.com/mfshell/shellstore/internal/coordinator"
	"github.com/mfshell/shellstore/internal/medium"
)

const validManifest = `
storage_key: checkout-shell
enable_persistence: true
enable_encryption: false
strategies:
  - prefix: "user."
    medium: local
  - prefix: "user.secret."
    medium: session
    encrypted: true
  - prefix: "volatile."
    medium: memory
`

func TestParse_ValidManifest(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "checkout-shell", m.StorageKey)
	assert.True(t, m.EnablePersistence)
	assert.False(t, m.EnableEncryption)
	require.Len(t, m.Strategies, 3)
	assert.Equal(t, StrategyDecl{Prefix: "user.secret.", Medium: "session", Encrypted: true}, m.Strategies[1])
}

func TestParse_EmptyManifest(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.StorageKey)
	assert.Empty(t, m.Strategies)
}

func TestParse_RejectsUnknownMedium(t *testing.T) {
	_, err := Parse([]byte(`
strategies:
  - prefix: "user."
    medium: durable
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid manifest")
}

func TestParse_RejectsMissingPrefix(t *testing.T) {
	_, err := Parse([]byte(`
strategies:
  - medium: local
`))
	assert.Error(t, err)
}

func TestParse_RejectsEmptyStorageKey(t *testing.T) {
	_, err := Parse([]byte(`storage_key: ""`))
	assert.Error(t, err)
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("strategies: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shellstore.yml")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "checkout-shell", m.StorageKey)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	local := medium.NewMemory()
	c := coordinator.New(coordinator.Deps{
		Local:   local,
		Session: medium.NewMemory(),
		Bus:     broadcast.NewBus(),
	})
	require.NoError(t, m.Apply(c))
	c.Init(m.Options())

	assert.Equal(t, "checkout-shell", c.Options().StorageKey)

	c.Set("user.name", "ada", nil)
	if _, ok, _ := local.GetItem("checkout-shell:user.name"); !ok {
		t.Error("manifest strategy for user. was not applied")
	}
}

func TestApply_UnknownMediumInDecl(t *testing.T) {
	m := &Manifest{Strategies: []StrategyDecl{{Prefix: "x.", Medium: "bogus"}}}
	c := coordinator.New(coordinator.Deps{Bus: broadcast.NewBus()})
	assert.Error(t, m.Apply(c))
}
