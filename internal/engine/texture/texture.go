// Package texture loads images into GPU textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Texture is a 2D RGBA texture. It owns the GPU handle until Destroy.
type Texture struct {
	ctx    *gpu.Context
	id     uint32
	width  int32
	height int32
}

// Source provides asset bytes by name.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// Decode decodes any registered image format, plus TGA by extension.
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// Load reads and decodes name from src and uploads it.
func Load(ctx *gpu.Context, src Source, name string) (*Texture, error) {
	data, err := src.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}
	img, err := Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", name, err)
	}

	t := FromImage(ctx, img)
	logger.Debug("texture loaded",
		zap.String("name", name),
		zap.Int32("width", t.width),
		zap.Int32("height", t.height),
	)
	return t, nil
}

// LoadOrWhite loads name, substituting a 1x1 white texture when the file is
// missing or unreadable so the model still renders.
func LoadOrWhite(ctx *gpu.Context, src Source, name string) *Texture {
	if name == "" {
		return White(ctx)
	}
	t, err := Load(ctx, src, name)
	if err != nil {
		logger.Warn("using placeholder texture", zap.String("name", name), zap.Error(err))
		return White(ctx)
	}
	return t
}

// White returns a 1x1 opaque white texture.
func White(ctx *gpu.Context) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{255, 255, 255, 255})
	return FromImage(ctx, img)
}

// FromImage uploads img with mipmaps and repeat wrapping. Rows are flipped
// so texture coordinate (0,0) addresses the bottom-left pixel.
func FromImage(ctx *gpu.Context, img image.Image) *Texture {
	pixels, w, h := flippedRGBA(img)

	t := &Texture{
		ctx:    ctx,
		width:  int32(w),
		height: int32(h),
	}

	prev := ctx.CurrentTexture2D()
	t.id = ctx.GenTexture()
	ctx.BindTexture(gpu.Texture2D, t.id)
	ctx.TexImage2D(gpu.Texture2D, 0, gpu.RGBA8, t.width, t.height, gpu.RGBA, gpu.UnsignedByte, pixels)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.LinearMipmapLinear)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Linear)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.Repeat)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.Repeat)
	ctx.GenerateMipmap(gpu.Texture2D)
	ctx.BindTexture(gpu.Texture2D, prev)

	return t
}

func flippedRGBA(img image.Image) ([]byte, int, int) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	w, h := b.Dx(), b.Dy()
	row := w * 4
	out := make([]byte, len(rgba.Pix))
	for y := 0; y < h; y++ {
		copy(out[(h-1-y)*row:(h-y)*row], rgba.Pix[y*rgba.Stride:y*rgba.Stride+row])
	}
	return out, w, h
}

// ID returns the texture handle.
func (t *Texture) ID() uint32 {
	return t.id
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int32) {
	return t.width, t.height
}

// Bind binds the texture to the given unit index (0 for TEXTURE0).
func (t *Texture) Bind(unit uint32) {
	t.ctx.ActiveTexture(gpu.Texture0 + unit)
	t.ctx.BindTexture(gpu.Texture2D, t.id)
}

// Destroy deletes the texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if t.id != 0 {
		t.ctx.DeleteTexture(t.id)
		t.id = 0
	}
}
