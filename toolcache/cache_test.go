package toolcache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_NoCacheFile(t *testing.T) {
	dir := t.TempDir()

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := cache.Get("flake8"); ok {
		t.Error("Get on empty cache returned an entry")
	}
}

func TestOpen_MalformedCacheFile(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, cacheFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed on malformed cache: %v", err)
	}
	if len(cache.entries) != 0 {
		t.Errorf("entries = %d, want 0 after malformed cache", len(cache.entries))
	}
}

func TestLookup_ProbesAndCaches(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "faketool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\necho faketool 1.0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	probes := 0
	look := func(name string) (string, error) {
		probes++
		return tool, nil
	}

	info, err := cache.Lookup("faketool", look)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !info.Available {
		t.Error("Available = false, want true")
	}
	if info.Path != tool {
		t.Errorf("Path = %q, want %q", info.Path, tool)
	}
	if probes != 1 {
		t.Fatalf("probes = %d, want 1", probes)
	}

	// Second lookup hits the fresh entry.
	if _, err := cache.Lookup("faketool", look); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if probes != 1 {
		t.Errorf("probes = %d after cached lookup, want 1", probes)
	}
}

func TestLookup_Unavailable(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info, err := cache.Lookup("nosuchtool", func(name string) (string, error) {
		return "", fmt.Errorf("not found")
	})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if info.Available {
		t.Error("Available = true for missing tool, want false")
	}
}

// A not-found entry must expire much sooner than a found one, so a tool
// installed after the first run is picked up without waiting a day.
func TestLookup_NegativeEntryExpires(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "faketool")

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	probes := 0
	look := func(string) (string, error) {
		probes++
		if _, err := os.Stat(tool); err != nil {
			return "", fmt.Errorf("not found")
		}
		return tool, nil
	}

	info, err := cache.Lookup("faketool", look)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if info.Available {
		t.Fatal("Available = true before the tool exists")
	}

	// Within the negative window the miss is served from cache.
	if _, err := cache.Lookup("faketool", look); err != nil {
		t.Fatal(err)
	}
	if probes != 1 {
		t.Fatalf("probes = %d inside negative window, want 1", probes)
	}

	// Install the tool and age the entry past the negative window.
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cache.entries["faketool"].LastCheck = cache.entries["faketool"].LastCheck.Add(-negativeFreshness - time.Second)

	info, err = cache.Lookup("faketool", look)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !info.Available {
		t.Error("Available = false after the tool was installed")
	}
	if probes != 2 {
		t.Errorf("probes = %d after negative window expired, want 2", probes)
	}
}

func TestLookup_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "faketool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := cache.Lookup("faketool", func(string) (string, error) { return tool, nil }); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	info, ok := reopened.Get("faketool")
	if !ok {
		t.Fatal("Get after reopen found nothing")
	}
	if info.Path != tool {
		t.Errorf("Path = %q after reopen, want %q", info.Path, tool)
	}
}

func TestLookup_ReprobesWhenBinaryChanges(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "faketool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	probes := 0
	look := func(string) (string, error) {
		probes++
		return tool, nil
	}

	if _, err := cache.Lookup("faketool", look); err != nil {
		t.Fatal(err)
	}

	// Removing the binary invalidates the entry despite freshness.
	if err := os.Remove(tool); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n# v2\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Force a distinct mtime; some filesystems have coarse resolution.
	old := cache.entries["faketool"]
	old.ModTime = old.ModTime.Add(-1e9)

	if _, err := cache.Lookup("faketool", look); err != nil {
		t.Fatal(err)
	}
	if probes != 2 {
		t.Errorf("probes = %d, want 2 after binary change", probes)
	}
}
