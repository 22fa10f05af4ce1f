package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI with args against an isolated data dir and
// returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("SHELLSTORE_DATA_DIR", t.TempDir())
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shellstore.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	isolate(t)
	_, err := runCommand(t, "get", "x", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSetGet_AcrossInvocations(t *testing.T) {
	isolate(t)
	manifest := writeManifest(t, `
storage_key: cli-test
strategies:
  - prefix: "user."
    medium: local
`)

	_, err := runCommand(t, "set", "user.name", `"ada"`, "-c", manifest)
	require.NoError(t, err)

	// A fresh invocation sees the value through per-key persistence.
	out, err := runCommand(t, "get", "user.name", "-c", manifest)
	require.NoError(t, err)
	assert.Equal(t, "ada\n", out)
}

func TestSet_JSONTyping(t *testing.T) {
	isolate(t)

	out, err := runCommand(t, "set", "cart.items", `["socks","mug"]`, "--storage-key", "cli-test", "--format", "json")
	require.NoError(t, err)

	var result struct {
		Key   string `json:"key"`
		Value []any  `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "cart.items", result.Key)
	assert.Equal(t, []any{"socks", "mug"}, result.Value)
}

func TestSet_RawSkipsJSONParsing(t *testing.T) {
	isolate(t)

	out, err := runCommand(t, "set", "x", "123", "--raw", "--storage-key", "cli-test")
	require.NoError(t, err)
	assert.Equal(t, "123\n", out, "raw mode stores the literal string")
}

func TestGet_AbsentKey(t *testing.T) {
	isolate(t)

	out, err := runCommand(t, "get", "no.such.key", "--storage-key", "cli-test")
	require.NoError(t, err)
	assert.Equal(t, "<absent>\n", out)
}

func TestDel_RemovesPersistedItem(t *testing.T) {
	isolate(t)
	manifest := writeManifest(t, `
storage_key: cli-test
strategies:
  - prefix: "user."
    medium: local
`)

	_, err := runCommand(t, "set", "user.name", `"ada"`, "-c", manifest)
	require.NoError(t, err)
	_, err = runCommand(t, "del", "user.name", "-c", manifest)
	require.NoError(t, err)

	out, err := runCommand(t, "get", "user.name", "-c", manifest)
	require.NoError(t, err)
	assert.Equal(t, "<absent>\n", out)
}

func TestClear_ScrubsOwnFootprint(t *testing.T) {
	isolate(t)
	manifest := writeManifest(t, `
storage_key: cli-test
enable_persistence: true
strategies:
  - prefix: "user."
    medium: local
`)

	_, err := runCommand(t, "set", "user.name", `"ada"`, "-c", manifest)
	require.NoError(t, err)

	out, err := runCommand(t, "clear", "-c", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "cleared cli-test")

	out, err = runCommand(t, "get", "user.name", "-c", manifest)
	require.NoError(t, err)
	assert.Equal(t, "<absent>\n", out)
}

func TestStrategies_ListsManifestPrefixes(t *testing.T) {
	isolate(t)
	manifest := writeManifest(t, `
storage_key: cli-test
strategies:
  - prefix: "user."
    medium: local
  - prefix: "draft."
    medium: session
`)

	out, err := runCommand(t, "strategies", "-c", manifest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"draft.", "user."}, lines)
}

func TestLoader_RejectsBadManifest(t *testing.T) {
	isolate(t)
	manifest := writeManifest(t, `
strategies:
  - prefix: "user."
    medium: warehouse
`)

	_, err := runCommand(t, "get", "x", "-c", manifest)
	assert.Error(t, err)
}
