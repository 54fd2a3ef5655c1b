// Package assets resolves asset files from search directories and the
// shaders embedded in the binary.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed shaders
var builtin embed.FS

// ErrNotFound is returned when no layer holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager searches asset directories, most recently added first, and falls
// back to the embedded files. Names use forward slashes, e.g. "shaders/phong.vert".
// Manager implements fs.FS so loaders can read through it.
type Manager struct {
	dirs  []string
	cache *Cache
}

// NewManager creates a manager with only the embedded layer.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddDir adds a search directory. It must exist.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding asset dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding asset dir: %s is not a directory", dir)
	}
	m.dirs = append(m.dirs, dir)
	return nil
}

// Resolve returns the on-disk path of name. Absolute paths and paths
// relative to the working directory are accepted as-is when they exist.
// Embedded files have no disk path.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}
	for i := len(m.dirs) - 1; i >= 0; i-- {
		p := filepath.Join(m.dirs[i], filepath.FromSlash(name))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Open implements fs.FS.
func (m *Manager) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if p, err := m.Resolve(name); err == nil {
		return os.Open(p)
	}
	return builtin.Open(path.Clean(name))
}

// ReadFile reads name from the first layer that has it and caches the result.
func (m *Manager) ReadFile(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if filepath.IsAbs(name) {
		data, err = os.ReadFile(name)
	} else {
		data, err = m.readLayer(name)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	m.cache.Set(name, data)
	return data, nil
}

// readLayer reads through Open. fs.ReadFile would dispatch back to
// ReadFile since Manager implements fs.ReadFileFS.
func (m *Manager) readLayer(name string) ([]byte, error) {
	f, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Close drops cached data.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
// It is used from the render thread only.
type Cache struct {
	data map[string][]byte

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
