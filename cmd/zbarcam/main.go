// Command zbarcam runs the scanner against a local webcam and prints
// decoded symbols to stdout. It is the demo shell for the library.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	zbarcam "github.com/kivy-garden/garden.zbarcam"
	"github.com/kivy-garden/garden.zbarcam/camera"
	"github.com/kivy-garden/garden.zbarcam/zxing"
)

const version = "v1.0.0"

// config holds the demo's command-line configuration
type config struct {
	Device        string
	Resolution    camera.Resolution
	FPS           float64
	Types         []zbarcam.SymbolType
	StatsInterval time.Duration
	Debug         bool
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("zbarcam demo",
		"version", version,
		"device", cfg.Device,
		"resolution", cfg.Resolution.String(),
		"fps", cfg.FPS,
		"types", cfg.Types,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutdown signal received, stopping gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Scanner failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Scanner stopped gracefully")
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	cam, err := camera.NewWebcam(camera.Config{
		Device:     cfg.Device,
		Resolution: cfg.Resolution,
		TargetFPS:  cfg.FPS,
	})
	if err != nil {
		return fmt.Errorf("create webcam: %w", err)
	}

	scanner, err := zbarcam.New(zbarcam.Config{
		Source:       cam,
		Decoder:      zxing.New(),
		EnabledTypes: cfg.Types,
		Platform:     zbarcam.DetectPlatform(),
		OnSymbols: func(symbols []zbarcam.Symbol) {
			for _, sym := range symbols {
				fmt.Printf("%s\t%s\n", sym.Type, sym.Text())
			}
		},
	})
	if err != nil {
		return fmt.Errorf("create scanner: %w", err)
	}

	if err := scanner.Start(ctx); err != nil {
		return err
	}
	defer scanner.Stop()

	ticker := time.NewTicker(cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := scanner.Stats()
			camStats := cam.Stats()
			logger.Info("pipeline stats",
				"frames_received", stats.FramesReceived,
				"frames_dropped", stats.FramesDropped,
				"decodes", stats.Decodes,
				"decode_failures", stats.DecodeFailures,
				"last_decode_time", stats.LastDecodeTime,
				"camera_frames", camStats.FrameCount,
				"camera_dropped", camStats.FramesDropped,
			)
		}
	}
}

func parseFlags() (config, error) {
	var cfg config

	flag.StringVar(&cfg.Device, "device", "/dev/video0", "Video device path")
	resolutionStr := flag.String("resolution", "480p", "Capture resolution (480p, 720p, 1080p)")
	flag.Float64Var(&cfg.FPS, "fps", 15.0, "Target capture FPS")
	typesStr := flag.String("types", "QRCODE", "Comma-separated symbologies (QRCODE,EAN13,CODE128,...)")
	flag.DurationVar(&cfg.StatsInterval, "stats-interval", 10*time.Second, "Stats logging interval")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.Parse()

	switch *resolutionStr {
	case "480p":
		cfg.Resolution = camera.Res480p
	case "720p":
		cfg.Resolution = camera.Res720p
	case "1080p":
		cfg.Resolution = camera.Res1080p
	default:
		return cfg, fmt.Errorf("invalid resolution %q (must be 480p, 720p or 1080p)", *resolutionStr)
	}

	for _, t := range strings.Split(*typesStr, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		cfg.Types = append(cfg.Types, zbarcam.SymbolType(strings.ToUpper(t)))
	}
	if len(cfg.Types) == 0 {
		return cfg, fmt.Errorf("at least one symbology is required")
	}

	return cfg, nil
}
