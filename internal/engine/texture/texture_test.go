package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/dragonview/internal/assets"
	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/engine/gpu/gputest"
)

type mapSource map[string][]byte

func (m mapSource) ReadFile(name string) ([]byte, error) {
	if data, ok := m[name]; ok {
		return data, nil
	}
	return nil, errors.New("not found")
}

// twoRowImage is 2x2: top row red, bottom row blue.
func twoRowImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, red)
	img.SetRGBA(0, 1, blue)
	img.SetRGBA(1, 1, blue)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFlippedRGBA(t *testing.T) {
	pixels, w, h := flippedRGBA(twoRowImage())
	if w != 2 || h != 2 {
		t.Fatalf("size %dx%d, want 2x2", w, h)
	}
	// First uploaded row is the bottom image row.
	if pixels[2] != 255 || pixels[0] != 0 {
		t.Errorf("first row should be blue, got %v", pixels[:4])
	}
	if pixels[8] != 255 || pixels[10] != 0 {
		t.Errorf("last row should be red, got %v", pixels[8:12])
	}
}

func TestLoadPNG(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	src := mapSource{"models/diffuse.png": encodePNG(t, twoRowImage())}

	tex, err := Load(ctx, src, "models/diffuse.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w, h := tex.Size(); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d", w, h)
	}

	img := dev.TexImages[tex.ID()]
	if img.InternalFormat != gpu.RGBA8 || img.Pixels != 16 {
		t.Errorf("unexpected storage %+v", img)
	}
	if dev.TexParams[tex.ID()][gpu.TextureWrapS] != gpu.Repeat {
		t.Error("expected repeat wrapping")
	}
	if dev.Count("GenerateMipmap") != 1 {
		t.Error("mipmaps not generated")
	}
	if dev.CurrentTexture2D() != 0 {
		t.Error("texture binding leaked")
	}
}

func TestLoadBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, twoRowImage()); err != nil {
		t.Fatal(err)
	}

	tex, err := Load(gpu.NewContext(gputest.New()), mapSource{"specular.bmp": buf.Bytes()}, "specular.bmp")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w, _ := tex.Size(); w != 2 {
		t.Errorf("width = %d, want 2", w)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := gpu.NewContext(gputest.New())
	src := mapSource{"broken.png": []byte("not an image")}

	if _, err := Load(ctx, src, "missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(ctx, src, "broken.png"); err == nil {
		t.Error("expected error for undecodable file")
	}
}

func TestLoadOrWhite(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	for _, name := range []string{"", "missing.jpg"} {
		tex := LoadOrWhite(ctx, mapSource{}, name)
		if w, h := tex.Size(); w != 1 || h != 1 {
			t.Errorf("%q: placeholder size %dx%d, want 1x1", name, w, h)
		}
		if tex.ID() == 0 {
			t.Errorf("%q: placeholder has no handle", name)
		}
	}
}

func TestBindAndDestroy(t *testing.T) {
	dev := gputest.New()
	tex := White(gpu.NewContext(dev))

	tex.Bind(1)
	if dev.BoundTexture(1) != tex.ID() {
		t.Error("texture not bound to unit 1")
	}

	tex.Destroy()
	tex.Destroy()
	if dev.Count("DeleteTexture") != 1 {
		t.Errorf("DeleteTexture called %d times", dev.Count("DeleteTexture"))
	}
}

func TestLoadThroughAssetManager(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "models"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "models", "diffuse.png"), encodePNG(t, twoRowImage()), 0644); err != nil {
		t.Fatal(err)
	}
	am := assets.NewManager()
	if err := am.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	dev := gputest.New()
	tex, err := Load(gpu.NewContext(dev), am, "models/diffuse.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w, h := tex.Size(); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	tex.Destroy()
	if dev.Live() != 0 {
		t.Errorf("%d objects leaked", dev.Live())
	}
}
