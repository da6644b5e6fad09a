package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDataDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "app.ddb")

	if err := ensureDataDir(dbPath); err != nil {
		t.Fatalf("ensureDataDir failed: %v", err)
	}

	info, err := os.Stat(filepath.Dir(dbPath))
	if err != nil {
		t.Fatalf("data directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("data path exists but is not a directory")
	}

	// A bare filename needs no directory and must not error
	if err := ensureDataDir("app.ddb"); err != nil {
		t.Errorf("bare filename should be a no-op: %v", err)
	}
}
