package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"postsapi/config"
	"postsapi/internal/app"
	"postsapi/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		Output:     os.Stdout,
		TimeFormat: "15:04:05",
	})
	if err != nil {
		slog.Error("error creating logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("bad config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Error("error creating app", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("app stopped", "error", err)
		os.Exit(1)
	}
}
