package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/salvo/config"
	"github.com/pthm-cable/salvo/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats windows via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = config seed)")
	frames := flag.Int("frames", 0, "Frames to simulate (0 = config)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	maxFrames := cfg.Simulation.Frames
	if *frames > 0 {
		maxFrames = *frames
	}

	g, err := game.New(cfg, game.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to build range", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless simulation", "frames", maxFrames, "output_dir", *outputDir)
	for maxFrames <= 0 || int(g.Frame()) < maxFrames {
		g.Update()
	}

	slog.Info("simulation finished",
		"stats", g.Simulation().Stats(),
		"tracers", g.Tracers().Len(),
		"stops", g.Impacts().Count("stop"),
	)
	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}
