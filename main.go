package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verist/scrollstitch/capture"
	"github.com/verist/scrollstitch/config"
	"github.com/verist/scrollstitch/debug"
	"github.com/verist/scrollstitch/domain/scroll"
	"github.com/verist/scrollstitch/export"
)

func main() {
	var (
		cfgPath   = flag.String("config", "scrollstitch.json", "path to config file")
		outPath   = flag.String("out", "scrollshot.png", "output image path")
		interval  = flag.Duration("interval", 400*time.Millisecond, "capture poll interval")
		duration  = flag.Duration("duration", 30*time.Second, "maximum capture duration")
		debugFlag = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}
	if cfg.Debug {
		debug.StartMemLogger(2*time.Second, logger)
		debug.StartGoroutineLogger(time.Second, logger)
	}

	source := capture.NewScreenSource()
	region := capture.Region{X: cfg.RegionX, Y: cfg.RegionY, Width: cfg.RegionW, Height: cfg.RegionH}
	if region.Empty() {
		region, err = source.Bounds()
		if err != nil {
			logger.Error("no capture surface", "error", err)
			os.Exit(1)
		}
	}

	session := scroll.NewSession(logger, cfg, source)
	session.SetRegion(region)
	if _, err := session.Start(); err != nil {
		logger.Error("start failed", "error", err)
		os.Exit(1)
	}
	logger.Info("capturing; scroll the content under the region", "region", region, "out", *outPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	deadline := time.After(*duration)

loop:
	for {
		select {
		case <-sig:
			break loop
		case <-deadline:
			break loop
		case <-ticker.C:
			progress, updated, err := session.Capture(scroll.DirNone, 0)
			switch {
			case errors.Is(err, scroll.ErrFrameWidthMismatch):
				logger.Error("capture surface changed, aborting", "error", err)
				session.Cancel()
				os.Exit(1)
			case err != nil:
				logger.Warn("capture cycle failed", "error", err)
			case updated:
				logger.Info("frame stitched",
					"frames", progress.FrameCount,
					"height", progress.TotalHeight)
			}
		}
	}

	final, err := session.Finish(nil, export.FileSink{Path: *outPath})
	if err != nil {
		logger.Error("finish failed", "error", err)
		os.Exit(1)
	}
	stats := session.Stats()
	logger.Info("saved",
		"path", *outPath,
		"width", final.Bounds().Dx(),
		"height", final.Bounds().Dy(),
		"cycles", stats.Cycles,
		"updates", stats.Updates,
		"noops", stats.NoOps,
		"avg_detect", stats.AvgDetect,
	)
}
