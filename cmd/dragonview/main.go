// Package main is the entry point for the dragonview model viewer.
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/config"
	"github.com/Faultbox/dragonview/internal/engine/rendertarget"
	"github.com/Faultbox/dragonview/internal/logger"
	"github.com/Faultbox/dragonview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== dragonview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveConfigRequested() {
		if err := cfg.Save(); err != nil {
			logger.Fatal("failed to save config", zap.Error(err))
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		return
	}

	v, err := viewer.New(cfg, config.ScreenshotPath())
	if err != nil {
		var incomplete *rendertarget.IncompleteError
		if errors.As(err, &incomplete) {
			logger.Fatal("shadow framebuffer is not complete", zap.Uint32("status", incomplete.Status))
		}
		logger.Fatal("failed to start viewer", zap.Error(err))
	}

	runErr := v.Run()
	v.Close()
	if runErr != nil {
		logger.Fatal("viewer error", zap.Error(runErr))
	}

	logger.Info("viewer closed normally")
}
