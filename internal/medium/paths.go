package medium

import (
	"os"
	"path/filepath"
)

// DefaultLocalPath returns the durable-local database path. Every store
// instance on the machine shares it regardless of storage key - that shared
// origin is what makes aggregate-change watching and cross-app ClearAppData
// scans possible. SHELLSTORE_DATA_DIR relocates it.
func DefaultLocalPath() string {
	if dir := os.Getenv("SHELLSTORE_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "local.db")
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "shellstore", "local.db")
}

// DefaultSessionPath returns the session-scoped database path. Living under
// the temp root, it survives process reloads but not the host's temp
// cleanup, which is as close as this environment gets to session storage.
// SHELLSTORE_DATA_DIR relocates it alongside the durable database.
func DefaultSessionPath() string {
	if dir := os.Getenv("SHELLSTORE_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "session.db")
	}
	return filepath.Join(os.TempDir(), "shellstore", "session.db")
}
