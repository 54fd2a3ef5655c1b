// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Render   RenderConfig   `yaml:"render"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Material MaterialConfig `yaml:"material"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds projection, animation and shadow settings.
type RenderConfig struct {
	ClearColor       [3]float32 `yaml:"clear_color"`
	FovY             float32    `yaml:"fov"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	DegreesPerSecond float32    `yaml:"degrees_per_second"`
	Shadows          bool       `yaml:"shadows"`
	ShadowMapSize    int        `yaml:"shadow_map_size"`
	ShadowBias       float32    `yaml:"shadow_bias"`
	ScreenshotDir    string     `yaml:"screenshot_dir"`
}

// CameraConfig holds the initial camera placement.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
}

// LightConfig holds the directional light angles in degrees.
type LightConfig struct {
	Azimuth   float32 `yaml:"azimuth"`
	Elevation float32 `yaml:"elevation"`
}

// MaterialConfig holds the Phong material coefficients.
type MaterialConfig struct {
	Kd    [3]float32 `yaml:"kd"`
	Ks    [3]float32 `yaml:"ks"`
	Ka    [3]float32 `yaml:"ka"`
	Alpha float32    `yaml:"alpha"` // specular exponent
}

// AssetsConfig holds asset locations. Dirs are searched in order,
// later entries winning, before the working directory.
type AssetsConfig struct {
	Dirs        []string `yaml:"dirs"`
	Model       string   `yaml:"model"`
	DiffuseMap  string   `yaml:"diffuse_map"`
	SpecularMap string   `yaml:"specular_map"`
	Normalize   bool     `yaml:"normalize"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "dragonview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor:       [3]float32{0.15, 0.15, 0.15},
			FovY:             45,
			Near:             0.1,
			Far:              500,
			DegreesPerSecond: 20,
			Shadows:          true,
			ShadowMapSize:    1024,
			ShadowBias:       0.005,
			ScreenshotDir:    "screenshots",
		},
		Camera: CameraConfig{
			Eye: [3]float32{0, 2, -12},
		},
		Light: LightConfig{
			Azimuth:   -30,
			Elevation: 50,
		},
		Material: MaterialConfig{
			Kd:    [3]float32{0.8, 0.8, 0.8},
			Ks:    [3]float32{0.5, 0.5, 0.5},
			Ka:    [3]float32{0.1, 0.1, 0.1},
			Alpha: 1,
		},
		Assets: AssetsConfig{
			Model:       "models/dragon.obj",
			DiffuseMap:  "models/dragon-diffuse.jpg",
			SpecularMap: "models/dragon-specular.jpg",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		errs = append(errs, fmt.Errorf("clip planes near=%g far=%g must satisfy 0 < near < far", c.Render.Near, c.Render.Far))
	}
	if c.Render.FovY <= 0 || c.Render.FovY >= 180 {
		errs = append(errs, fmt.Errorf("fov %g must be in (0, 180)", c.Render.FovY))
	}
	if c.Render.Shadows && c.Render.ShadowMapSize <= 0 {
		errs = append(errs, fmt.Errorf("shadow_map_size %d must be positive", c.Render.ShadowMapSize))
	}
	if c.Camera.Eye == c.Camera.Target {
		errs = append(errs, errors.New("camera eye and target must differ"))
	}
	if c.Assets.Model == "" {
		errs = append(errs, errors.New("assets.model is required"))
	}
	return errors.Join(errs...)
}
