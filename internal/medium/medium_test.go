package medium

import (
	"path/filepath"
	"sort"
	"testing"
)

// media returns one of each Medium implementation, backed by throwaway
// storage, so the shared behavior tests run against all of them.
func media(t *testing.T) map[string]Medium {
	t.Helper()

	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "items.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]Medium{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestMedium_SetGetRemove(t *testing.T) {
	for name, m := range media(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := m.GetItem("missing"); err != nil || ok {
				t.Fatalf("GetItem(missing) = ok=%v err=%v, want absent", ok, err)
			}

			if err := m.SetItem("app:user.name", `"ada"`); err != nil {
				t.Fatalf("SetItem failed: %v", err)
			}
			value, ok, err := m.GetItem("app:user.name")
			if err != nil || !ok {
				t.Fatalf("GetItem = ok=%v err=%v, want hit", ok, err)
			}
			if value != `"ada"` {
				t.Errorf("GetItem = %q, want %q", value, `"ada"`)
			}

			// Overwrite.
			if err := m.SetItem("app:user.name", `"grace"`); err != nil {
				t.Fatalf("SetItem overwrite failed: %v", err)
			}
			value, _, _ = m.GetItem("app:user.name")
			if value != `"grace"` {
				t.Errorf("GetItem after overwrite = %q, want %q", value, `"grace"`)
			}

			if err := m.RemoveItem("app:user.name"); err != nil {
				t.Fatalf("RemoveItem failed: %v", err)
			}
			if _, ok, _ := m.GetItem("app:user.name"); ok {
				t.Error("GetItem found item after RemoveItem")
			}

			// Removing again is idempotent.
			if err := m.RemoveItem("app:user.name"); err != nil {
				t.Errorf("second RemoveItem returned error: %v", err)
			}
		})
	}
}

func TestMedium_Keys(t *testing.T) {
	for name, m := range media(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"a:x", "a:y", "b:z"} {
				if err := m.SetItem(id, "1"); err != nil {
					t.Fatalf("SetItem(%q) failed: %v", id, err)
				}
			}

			keys, err := m.Keys()
			if err != nil {
				t.Fatalf("Keys() failed: %v", err)
			}
			sort.Strings(keys)
			want := []string{"a:x", "a:y", "b:z"}
			if len(keys) != len(want) {
				t.Fatalf("Keys() = %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
				}
			}
		})
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	sq, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	if err := sq.SetItem("app:k", "v"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	sq.Close()

	// Values survive a reopen - this is the durable-local property.
	sq2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer sq2.Close()

	value, ok, err := sq2.GetItem("app:k")
	if err != nil || !ok || value != "v" {
		t.Errorf("GetItem after reopen = %q ok=%v err=%v, want v", value, ok, err)
	}
}
