// Package capture writes framebuffer contents to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Capturer handles screenshot capture.
type Capturer struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a screenshot capturer writing prefix_<timestamp>.png files
// into outputDir.
func New(outputDir, prefix string) *Capturer {
	return &Capturer{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Filename generates a screenshot path without saving.
func (c *Capturer) Filename() string {
	timestamp := c.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", c.prefix, timestamp)
	if c.outputDir != "" {
		filename = filepath.Join(c.outputDir, filename)
	}
	return filename
}

// Save writes RGBA pixels read from the framebuffer to a timestamped PNG.
// The rows are flipped since OpenGL has its origin at the bottom-left.
func (c *Capturer) Save(pixels []byte, width, height int) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := c.Filename()
	if err := SaveTo(filename, pixels, width, height); err != nil {
		return "", err
	}
	return filename, nil
}

// SaveFramebuffer reads back the currently bound framebuffer and saves it.
func (c *Capturer) SaveFramebuffer(ctx *gpu.Context, width, height int) (string, error) {
	return c.Save(ctx.ReadPixels(0, 0, int32(width), int32(height)), width, height)
}

// SaveTo writes RGBA pixels to path as PNG, flipping the rows.
func SaveTo(path string, pixels []byte, width, height int) error {
	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Info("screenshot saved", zap.String("path", path))
	return nil
}

// FromPixels converts bottom-up RGBA rows into an image.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid screenshot size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}
