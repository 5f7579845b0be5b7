package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
	"github.com/huyhieublock/tradding/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Downloader *infra.IconDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, Dir, etc.)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Tradding...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Initialize Icon Downloader
	downloader, err := infra.NewIconDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Icon downloader ready")

	return nil
}

// SyncAssets registers the configured markets and fetches their base token
// icons in the background.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, symbol := range b.Config.API.Symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			// 1. Upsert to DB
			info := &domain.SymbolInfo{
				Symbol:       sym,
				BaseToken:    domain.BaseToken(sym),
				Name:         sym, // Default to symbol until dynamic lookup
				IsActive:     true,
				UpdatedAt:    time.Now(),
				LastSyncedAt: time.Time{}, // Force sync if needed
			}

			// Check if exists to preserve IsFavorite
			if existing, _ := b.Storage.GetSymbol(sym); existing != nil {
				info.IsFavorite = existing.IsFavorite
				info.IconPath = existing.IconPath
				info.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertSymbol(info); err != nil {
				slog.Error("Failed to upsert symbol", slog.String("symbol", sym), slog.Any("error", err))
			}

			// 2. Download Icon (if missing)
			path, err := b.Downloader.DownloadIcon(sym)
			if err != nil {
				slog.Warn("Failed to download icon", slog.String("symbol", sym), slog.Any("error", err))
			} else if path != "" {
				// Update path in DB
				info.IconPath = path
				info.LastSyncedAt = time.Now()
				b.Storage.UpsertSymbol(info)
			}
		}(symbol)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}
