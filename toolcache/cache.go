// Package toolcache persists discovered lint tool locations per project so
// repeated gate runs skip PATH walks and version probes.
package toolcache

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	cacheDirName  = ".lintgate"
	cacheFileName = "tools.json"
	cacheVersion  = "1"

	// freshness is how long a cache entry is trusted before the tool is
	// probed again even if its binary looks unchanged.
	freshness = 24 * time.Hour

	// negativeFreshness bounds how long a not-found entry is trusted, so
	// the cache heals quickly after a tool gets installed.
	negativeFreshness = 5 * time.Minute
)

// Info describes one discovered tool.
type Info struct {
	Path      string    `json:"path,omitempty"`
	Version   string    `json:"version,omitempty"`
	Available bool      `json:"available"`
	Source    string    `json:"source,omitempty"` // "venv" or "system"
	LastCheck time.Time `json:"lastCheck"`
	ModTime   time.Time `json:"modTime,omitempty"`
}

// fileFormat is the on-disk shape of the cache.
type fileFormat struct {
	Version     string           `json:"version"`
	Hostname    string           `json:"hostname"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Tools       map[string]*Info `json:"tools"`
}

// Cache is a per-project tool cache backed by .lintgate/tools.json.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*Info
}

// Open loads or creates the cache for the given project directory. A cache
// written by a different host is discarded: tool paths do not travel.
func Open(projectDir string) (*Cache, error) {
	dir := filepath.Join(projectDir, cacheDirName)
	c := &Cache{
		path:    filepath.Join(dir, cacheFileName),
		entries: make(map[string]*Info),
	}

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tool cache %s: %w", c.path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		// A malformed cache is rebuilt, not fatal.
		return c, nil
	}

	hostname, _ := os.Hostname()
	if ff.Version == cacheVersion && ff.Hostname == hostname && ff.Tools != nil {
		c.entries = ff.Tools
	}

	return c, nil
}

// Path returns the on-disk location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// LookFunc resolves a tool name to an executable path.
type LookFunc func(name string) (string, error)

// Lookup returns cached info for a tool, re-probing via look when the entry
// is stale, the binary moved, or its modification time changed. look may
// return an error to record the tool as unavailable.
func (c *Cache) Lookup(name string, look LookFunc) (*Info, error) {
	c.mu.RLock()
	cached, ok := c.entries[name]
	c.mu.RUnlock()

	if ok && c.fresh(cached) {
		return cached, nil
	}

	info := probe(name, look)

	c.mu.Lock()
	c.entries[name] = info
	c.mu.Unlock()

	// Discovery succeeded; a failed save only costs the next run.
	_ = c.save()

	return info, nil
}

// Get returns the cached entry without probing.
func (c *Cache) Get(name string) (*Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.entries[name]
	return info, ok
}

func (c *Cache) fresh(info *Info) bool {
	if !info.Available {
		return time.Since(info.LastCheck) <= negativeFreshness
	}
	if time.Since(info.LastCheck) > freshness {
		return false
	}
	stat, err := os.Stat(info.Path)
	if err != nil {
		return false
	}
	return stat.ModTime().Equal(info.ModTime)
}

func probe(name string, look LookFunc) *Info {
	if look == nil {
		look = exec.LookPath
	}

	path, err := look(name)
	if err != nil {
		return &Info{Available: false, LastCheck: time.Now()}
	}

	info := &Info{
		Path:      path,
		Available: true,
		LastCheck: time.Now(),
	}
	if stat, err := os.Stat(path); err == nil {
		info.ModTime = stat.ModTime()
	}
	info.Version = toolVersion(path)

	return info
}

func (c *Cache) save() error {
	c.mu.RLock()
	hostname, _ := os.Hostname()
	ff := fileFormat{
		Version:     cacheVersion,
		Hostname:    hostname,
		LastUpdated: time.Now(),
		Tools:       c.entries,
	}
	data, err := json.MarshalIndent(ff, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling tool cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing tool cache: %w", err)
	}
	return nil
}

// toolVersion asks the tool for its version with the common flags. Lint
// tools disagree on which one they support.
func toolVersion(path string) string {
	for _, flag := range []string{"--version", "-V", "version"} {
		out, err := exec.Command(path, flag).Output() // #nosec G204 -- path came from tool discovery
		if err != nil {
			continue
		}
		line := strings.TrimSpace(string(out))
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if line != "" {
			return line
		}
	}
	return ""
}
