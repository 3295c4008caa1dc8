package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/murmurlabs/murmur-speech/internal/config"
	"github.com/murmurlabs/murmur-speech/internal/runtime"
	"github.com/murmurlabs/murmur-speech/internal/synthesis"
)

func main() {
	var (
		configPath  string
		checkConfig bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "murmur.yaml", "Path to configuration file")
	flag.BoolVar(&checkConfig, "check", false, "Validate configuration and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(synthesis.Version)
		return
	}

	// Bootstrap logger; replaced once the configured level is known.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if checkConfig {
		fmt.Printf("%s: ok (mode %s, voice %s, node %s)\n",
			configPath, cfg.Synthesis.Mode, cfg.Synthesis.Voice, cfg.Node.ID)
		return
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: runtime.ParseLogLevel(cfg.Telemetry.LogLevel),
	}))
	logger.Info("starting murmurd",
		slog.String("version", synthesis.Version),
		slog.String("config", configPath),
		slog.String("node_id", cfg.Node.ID),
		slog.String("synthesis_mode", cfg.Synthesis.Mode))

	rt := runtime.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Start(ctx); err != nil {
		logger.Error("runtime exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
