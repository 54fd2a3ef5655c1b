package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedShaders(t *testing.T) {
	m := NewManager()
	for _, name := range []string{
		"shaders/phong.vert",
		"shaders/phong.frag",
		"shaders/depth.vert",
		"shaders/depth.frag",
	} {
		data, err := m.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if !strings.HasPrefix(string(data), "#version 410 core") {
			t.Errorf("%s: missing version header", name)
		}
	}
}

func TestDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "shaders"), 0755); err != nil {
		t.Fatal(err)
	}
	custom := "#version 410 core\n// custom\n"
	if err := os.WriteFile(filepath.Join(dir, "shaders", "phong.vert"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}

	data, err := m.ReadFile("shaders/phong.vert")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != custom {
		t.Errorf("expected override from asset dir, got %q", data)
	}

	// Files absent from the dir still come from the embedded layer.
	if _, err := m.ReadFile("shaders/phong.frag"); err != nil {
		t.Errorf("embedded fallback: %v", err)
	}
}

func TestLaterDirWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	os.WriteFile(filepath.Join(first, "model.obj"), []byte("first"), 0644)
	os.WriteFile(filepath.Join(second, "model.obj"), []byte("second"), 0644)

	m := NewManager()
	m.AddDir(first)
	m.AddDir(second)

	p, err := m.Resolve("model.obj")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p != filepath.Join(second, "model.obj") {
		t.Errorf("Resolve = %s, want file from last added dir", p)
	}
}

func TestResolveMissing(t *testing.T) {
	m := NewManager()
	if _, err := m.Resolve("models/none.obj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.ReadFile("models/none.obj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDirRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	os.WriteFile(f, nil, 0644)

	m := NewManager()
	if err := m.AddDir(f); err == nil {
		t.Error("expected error adding a regular file as dir")
	}
	if err := m.AddDir("/nonexistent/assets"); err == nil {
		t.Error("expected error adding a missing dir")
	}
}

func TestCacheStats(t *testing.T) {
	m := NewManager()
	m.ReadFile("shaders/depth.vert")
	m.ReadFile("shaders/depth.vert")

	hits, misses := m.cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses; want 1, 1", hits, misses)
	}

	m.Close()
	if hits, misses := m.cache.Stats(); hits != 0 || misses != 0 {
		t.Error("Close should reset the cache")
	}
}

func TestReadFileAbsolute(t *testing.T) {
	p := filepath.Join(t.TempDir(), "diffuse.png")
	if err := os.WriteFile(p, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	data, err := m.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", p, err)
	}
	if string(data) != "png" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := m.ReadFile(filepath.Join(t.TempDir(), "gone.png")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFSReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "models"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "models", "dragon.obj"), []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	// Manager satisfies fs.ReadFileFS; fs.ReadFile must land in a layer.
	for _, name := range []string{"shaders/phong.vert", "models/dragon.obj"} {
		data, err := fs.ReadFile(m, name)
		if err != nil {
			t.Fatalf("fs.ReadFile(%s): %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s: empty", name)
		}
	}

	if _, err := fs.ReadFile(m, "shaders/missing.vert"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
