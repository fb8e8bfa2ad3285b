package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/CryptoBia/Infinex/internal/app"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Pprof server, localhost only.
	go func() {
		slog.Info("pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("pprof server failed", slog.Any("error", err))
		}
	}()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.StartEngine(ctx); err != nil {
		slog.Error("engine startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.InfoContext(ctx, "engine started", slog.Int("pairs", len(bootstrap.Config.Pairs)))

	if err := bootstrap.ConnectRelay(ctx); err != nil {
		slog.Error("relay startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	bootstrap.StartFeed(ctx)

	slog.InfoContext(ctx, "dexnode fully operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	slog.InfoContext(ctx, "shutting down gracefully...")
}
