package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/huyhieublock/tradding/internal/chart"
	"github.com/huyhieublock/tradding/internal/depth"
	"github.com/huyhieublock/tradding/internal/domain"
)

// logSurface is a headless chart surface. A desktop build would hand the
// controller a real chart widget instead; the contract is identical.
type logSurface struct {
	logger *slog.Logger
}

func newLogSurface() *logSurface {
	return &logSurface{logger: slog.Default().With("module", "chart_surface")}
}

func (s *logSurface) ReplaceAll(bars []domain.Candle) {
	if len(bars) == 0 {
		s.logger.Info("Chart reloaded empty")
		return
	}
	first, last := bars[0], bars[len(bars)-1]
	s.logger.Info("Chart reloaded",
		slog.Int("bars", len(bars)),
		slog.Int64("from", first.Time),
		slog.Int64("to", last.Time),
		slog.String("last_close", last.Close.String()))
}

func (s *logSurface) UpdateLast(c domain.Candle) {
	s.logger.Debug("Bar updated",
		slog.Int64("time", c.Time),
		slog.String("close", c.Close.String()),
		slog.String("high", c.High.String()),
		slog.String("low", c.Low.String()))
}

func (s *logSurface) FitContent() {
	s.logger.Debug("Viewport fit to content")
}

func (s *logSurface) Clear() {
	s.logger.Debug("Chart cleared")
}

// renderer throttles the high-frequency depth and overview streams down to
// a periodic status line.
type renderer struct {
	logger   *slog.Logger
	interval time.Duration

	mu            sync.Mutex
	lastDepthLog  time.Time
	lastTickerLog time.Time
}

func newRenderer(interval time.Duration) *renderer {
	return &renderer{
		logger:   slog.Default().With("module", "render"),
		interval: interval,
	}
}

func (r *renderer) OnDepth(v depth.View) {
	r.mu.Lock()
	due := time.Since(r.lastDepthLog) >= r.interval
	if due {
		r.lastDepthLog = time.Now()
	}
	r.mu.Unlock()
	if !due {
		return
	}

	attrs := []any{
		slog.Int("asks", len(v.Asks)),
		slog.Int("bids", len(v.Bids)),
		slog.String("max_volume", v.MaxVolume.String()),
	}
	if v.MarkPrice != nil {
		attrs = append(attrs, slog.String("mark_price", v.MarkPrice.String()))
	}
	// Best ask sits at the bottom of the ask block, best bid at the top.
	if len(v.Asks) > 0 {
		attrs = append(attrs, slog.String("best_ask", v.Asks[len(v.Asks)-1].Price.String()))
	}
	if len(v.Bids) > 0 {
		attrs = append(attrs, slog.String("best_bid", v.Bids[0].Price.String()))
	}
	r.logger.Info("📊 Depth", attrs...)
}

func (r *renderer) OnOverview(t domain.Ticker) {
	r.mu.Lock()
	due := time.Since(r.lastTickerLog) >= r.interval
	if due {
		r.lastTickerLog = time.Now()
	}
	r.mu.Unlock()
	if !due {
		return
	}

	attrs := []any{slog.String("symbol", t.Symbol)}
	if t.MarkPrice != nil {
		attrs = append(attrs, slog.String("mark_price", t.MarkPrice.String()))
	}
	if t.Change24h != nil {
		attrs = append(attrs, slog.String("change_24h", t.Change24h.String()))
	}
	if t.Volume24h != nil {
		attrs = append(attrs, slog.String("volume_24h", t.Volume24h.String()))
	}
	r.logger.Info("💹 Ticker", attrs...)
}

var _ chart.Surface = (*logSurface)(nil)
