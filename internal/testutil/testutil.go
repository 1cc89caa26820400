// Package testutil provides shared test helpers for setting up post
// directories and journals.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/postmigrate/internal/journal"
	"github.com/starford/postmigrate/internal/storage"
)

// TestJournal creates a temporary SQLite journal that is automatically
// cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "postmigrate-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDirs creates temporary input and output directories with providers.
func TestDirs(t *testing.T) (in, out *storage.FS) {
	t.Helper()
	root := t.TempDir()
	in, err := storage.EnsureFS(filepath.Join(root, "_posts"))
	if err != nil {
		t.Fatal(err)
	}
	out, err = storage.EnsureFS(filepath.Join(root, "src", "content", "blog"))
	if err != nil {
		t.Fatal(err)
	}
	return in, out
}

// WritePost writes a legacy post into dir.
func WritePost(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
