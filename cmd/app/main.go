package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huyhieublock/tradding/internal/app"
	"github.com/huyhieublock/tradding/internal/chart"
	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra/orderly"
	"github.com/huyhieublock/tradding/internal/screen"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync
	go bootstrap.SyncAssets(ctx)

	// 5. Market Data Gateways (Orderly REST + WS)
	restClient := orderly.NewClient(cfg)
	feed := orderly.NewWorker(cfg)
	if err := feed.Connect(ctx); err != nil {
		slog.Error("Failed to start Orderly feed", slog.Any("error", err))
		os.Exit(1)
	}
	defer feed.Disconnect()
	slog.InfoContext(ctx, "✅ Orderly feed worker started")

	// 6. Screen Controller (The Hotpath Loop)
	defaults := domain.Selection{
		Symbol:     cfg.UI.DefaultSymbol,
		Resolution: domain.Resolution(cfg.UI.DefaultResolution),
	}
	initial := bootstrap.Storage.LastSelection(defaults)

	render := newRenderer(time.Second)
	controller := screen.NewController(screen.Config{
		Surface:    newLogSurface(),
		Loader:     chart.NewLoader(restClient, cfg.UI.WindowBars),
		Feed:       feed,
		Initial:    initial,
		RowCount:   cfg.UI.DepthRows,
		Prefs:      bootstrap.Storage,
		OnDepth:    render.OnDepth,
		OnOverview: render.OnOverview,
	})

	go controller.Run(ctx)
	slog.InfoContext(ctx, "✅ Screen controller started",
		slog.String("symbol", initial.Symbol),
		slog.String("resolution", initial.Resolution.String()))

	slog.InfoContext(ctx, "✨ Tradding fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
