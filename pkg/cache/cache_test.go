package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/procflow/procflow/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestCachePutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	writeFile(t, path, "a,b,c\n")

	c := New()
	table := &model.Table{Rows: []model.Row{{Activity: "x"}}}
	c.Put(path, table)

	got, ok := c.Get(path)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != table {
		t.Error("cache returned a different table")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 0 {
		t.Errorf("stats = (%d, %d), want (1, 0)", hits, misses)
	}
}

func TestCacheMissOnColdPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	writeFile(t, path, "a\n")

	c := New()
	if _, ok := c.Get(path); ok {
		t.Error("expected miss on empty cache")
	}

	_, misses := c.Stats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestCacheInvalidatedByFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	writeFile(t, path, "a\n")

	c := New()
	c.Put(path, &model.Table{})

	// Change size and bump mtime so the fingerprint moves
	writeFile(t, path, "a,b,longer\n")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(path); ok {
		t.Error("stale entry served after the file changed")
	}
}

func TestCacheInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	writeFile(t, path, "a\n")

	c := New()
	c.Put(path, &model.Table{})
	c.Invalidate(path)

	if _, ok := c.Get(path); ok {
		t.Error("entry survived Invalidate")
	}
}

func TestCacheMissingFile(t *testing.T) {
	c := New()
	if _, ok := c.Get(filepath.Join(t.TempDir(), "missing.csv")); ok {
		t.Error("hit for a nonexistent file")
	}
}

func TestFingerprintStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	writeFile(t, path, "a\n")

	a, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("fingerprint changed without a file change")
	}
}
