package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kofuk/dnssync/internal/cli"
	"github.com/kofuk/dnssync/internal/config"
	"github.com/kofuk/dnssync/internal/otel"
)

func main() {
	godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		slog.Error("Failed to load settings.", slog.Any("error", err))
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if settings.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})))

	shutdownTracer, err := otel.InitializeTracer(context.Background())
	if err != nil {
		slog.Error("Failed to initialize tracer.", slog.Any("error", err))
		os.Exit(1)
	}

	code := cli.Run(settings, os.Args[1:])

	if err := shutdownTracer(context.Background()); err != nil {
		slog.Error("Failed to shut down tracer.", slog.Any("error", err))
	}

	os.Exit(code)
}
