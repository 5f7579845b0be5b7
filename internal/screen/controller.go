// Package screen orchestrates the live trading screen: it owns the active
// (symbol, resolution) selection and reconciles the periodic history fetch
// with the continuous push feed into one consistent rendered view.
package screen

import (
	"context"
	"log/slog"
	"sync"

	"github.com/huyhieublock/tradding/internal/chart"
	"github.com/huyhieublock/tradding/internal/depth"
	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
)

// State is the controller lifecycle state for the current selection.
type State int

const (
	StateIdle    State = iota // no selection applied yet
	StateLoading              // history fetch outstanding
	StateLive                 // history resolved (possibly degraded to live-only)
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	default:
		return "idle"
	}
}

// Prefs persists screen state across sessions (last viewed symbol and
// resolution). Optional.
type Prefs interface {
	SavePref(key, value string) error
}

// Config wires a Controller.
type Config struct {
	Surface chart.Surface
	Loader  *chart.Loader
	Feed    Feed
	Initial domain.Selection

	RowCount   int                 // depth panel rows per side; DefaultRowCount when 0
	Prefs      Prefs               // optional
	OnDepth    func(depth.View)    // depth panel sink, optional
	OnOverview func(domain.Ticker) // market overview panel sink, optional
}

// Controller is the single-threaded event processor for one screen.
//
// One goroutine (Run) interleaves feed events, history-load completions and
// selection commands in arrival order. Every invocation of the history
// loader carries a generation token; a response for a superseded selection
// is discarded unapplied. All writes to the candle series and the active
// selection happen on the Run goroutine, so neither needs a lock beyond the
// small mirror kept for external reads.
type Controller struct {
	cfg    Config
	series *chart.Series
	merger *chart.Merger
	logger *slog.Logger

	inbox chan any
	done  chan struct{}
	wg    sync.WaitGroup

	// Loop-owned state. Touched only from Run.
	sel      domain.Selection
	gen      uint64
	state    State
	sub      Subscription
	tickSeen bool
	ticker   domain.Ticker
	book     *domain.OrderBookSnapshot

	// External-read mirror (e.g. UI status line).
	mu        sync.RWMutex
	viewSel   domain.Selection
	viewState State
}

type setSymbolMsg struct{ symbol string }
type setResolutionMsg struct{ resolution domain.Resolution }
type feedMsg struct{ ev FeedEvent }
type loadResultMsg struct {
	gen  uint64
	bars []domain.Candle
	err  error
}

// NewController creates a controller; call Run to start processing.
func NewController(cfg Config) *Controller {
	if cfg.RowCount <= 0 {
		cfg.RowCount = depth.DefaultRowCount
	}
	series := chart.NewSeries(cfg.Surface)
	return &Controller{
		cfg:    cfg,
		series: series,
		merger: chart.NewMerger(series),
		logger: slog.Default().With("module", "screen"),
		inbox:  make(chan any, 256),
		done:   make(chan struct{}),
	}
}

// SetSymbol switches the screen to a new symbol. Safe from any goroutine.
func (c *Controller) SetSymbol(symbol string) {
	c.post(setSymbolMsg{symbol: symbol})
}

// SetResolution switches the chart bucket width. Safe from any goroutine.
func (c *Controller) SetResolution(r domain.Resolution) {
	c.post(setResolutionMsg{resolution: r})
}

// Selection returns the active selection and state for external reads.
func (c *Controller) Selection() (domain.Selection, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewSel, c.viewState
}

// Series exposes the candle store for dependent read-only panels.
func (c *Controller) Series() *chart.Series {
	return c.series
}

func (c *Controller) post(msg any) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

// Run processes events until ctx is cancelled. It MUST be run in exactly
// one goroutine; all merge and projection work happens inline here.
func (c *Controller) Run(ctx context.Context) {
	c.logger.Info("Screen controller started", slog.String("selection", c.cfg.Initial.Key()))
	c.applySelection(ctx, c.cfg.Initial)

	defer func() {
		c.teardown()
		close(c.done)
		c.wg.Wait()
		c.logger.Info("Screen controller stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.inbox:
			switch m := msg.(type) {
			case setSymbolMsg:
				next := domain.Selection{Symbol: m.symbol, Resolution: c.sel.Resolution}
				c.reselect(ctx, next)
			case setResolutionMsg:
				next := domain.Selection{Symbol: c.sel.Symbol, Resolution: m.resolution}
				c.reselect(ctx, next)
			case feedMsg:
				c.handleFeed(m.ev)
			case loadResultMsg:
				c.handleLoadResult(m)
			}
		}
	}
}

func (c *Controller) reselect(ctx context.Context, next domain.Selection) {
	if next == c.sel {
		return
	}
	c.logger.Info("Selection changed",
		slog.String("from", c.sel.Key()),
		slog.String("to", next.Key()))
	c.applySelection(ctx, next)
}

// applySelection supersedes the current generation and re-initializes every
// dependent component for the new (symbol, resolution) pair.
func (c *Controller) applySelection(ctx context.Context, next domain.Selection) {
	// Incrementing the generation makes any in-flight load a no-op on
	// arrival; there is no hard cancellation of the fetch itself.
	c.gen++
	gen := c.gen

	resubscribe := c.sub == nil || next.Symbol != c.sel.Symbol
	if resubscribe && c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}

	c.sel = next
	c.state = StateLoading
	c.tickSeen = false
	c.ticker = domain.Ticker{}
	c.book = nil
	c.series.Reset()
	c.publishView()
	c.savePrefs(next)

	if resubscribe {
		sub, err := c.cfg.Feed.Subscribe(next.Symbol)
		if err != nil {
			// Degraded: the screen stays on its loading indicator until
			// the next selection change re-subscribes.
			c.logger.Warn("Feed subscription failed",
				slog.String("symbol", next.Symbol),
				slog.Any("error", err))
		} else {
			c.sub = sub
			c.forward(ctx, sub)
		}
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bars, err := c.cfg.Loader.Load(ctx, next)
		select {
		case c.inbox <- loadResultMsg{gen: gen, bars: bars, err: err}:
		case <-ctx.Done():
		}
	}()
}

// forward pumps a subscription's events into the inbox until the
// subscription is cancelled.
func (c *Controller) forward(ctx context.Context, sub Subscription) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for ev := range sub.Events() {
			select {
			case c.inbox <- feedMsg{ev: ev}:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *Controller) handleLoadResult(m loadResultMsg) {
	if m.gen != c.gen {
		infra.GlobalMetrics.RecordStaleDiscard()
		c.logger.Debug("Discarding stale history result",
			slog.Uint64("generation", m.gen),
			slog.Uint64("current", c.gen))
		return
	}

	if m.err != nil {
		// Non-fatal: the chart keeps whatever live-merged data it has.
		// Retried on the next explicit selection change only.
		infra.GlobalMetrics.RecordError()
		c.logger.Warn("History load failed",
			slog.String("selection", c.sel.Key()),
			slog.Any("error", m.err))
	} else {
		infra.GlobalMetrics.RecordHistoryLoad()
		c.series.SetData(m.bars)
		// Fit only while the user is not already watching live updates,
		// so the zoom never fights a chart in use.
		if !c.tickSeen {
			c.series.FitContent()
		}
		c.logger.Info("History loaded",
			slog.String("selection", c.sel.Key()),
			slog.Int("bars", len(m.bars)))
	}

	c.state = StateLive
	c.publishView()
}

func (c *Controller) handleFeed(ev FeedEvent) {
	if ev.Symbol != c.sel.Symbol {
		// Late event from a superseded subscription.
		infra.GlobalMetrics.RecordStaleDiscard()
		return
	}
	infra.GlobalMetrics.RecordFeedEvent()

	if ev.Ticker != nil {
		c.ticker = *ev.Ticker
		if c.ticker.HasMark() {
			c.tickSeen = true
		}
		c.merger.OnTick(c.ticker)
		if c.cfg.OnOverview != nil {
			c.cfg.OnOverview(c.ticker)
		}
		// Re-project with the fresher mark price.
		if c.book != nil && c.cfg.OnDepth != nil {
			c.cfg.OnDepth(depth.Project(*c.book, c.ticker, c.cfg.RowCount))
		}
	}

	if ev.Book != nil {
		c.book = ev.Book
		if c.cfg.OnDepth != nil {
			c.cfg.OnDepth(depth.Project(*c.book, c.ticker, c.cfg.RowCount))
		}
	}
}

func (c *Controller) teardown() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	// Invalidate the generation so any outstanding load is a no-op even if
	// a result were to slip in during shutdown.
	c.gen++
	c.state = StateIdle
	c.publishView()
}

func (c *Controller) publishView() {
	c.mu.Lock()
	c.viewSel = c.sel
	c.viewState = c.state
	c.mu.Unlock()
}

func (c *Controller) savePrefs(sel domain.Selection) {
	if c.cfg.Prefs == nil {
		return
	}
	if err := c.cfg.Prefs.SavePref(domain.PrefLastSymbol, sel.Symbol); err != nil {
		c.logger.Warn("Failed to persist last symbol", slog.Any("error", err))
	}
	if err := c.cfg.Prefs.SavePref(domain.PrefLastResolution, sel.Resolution.String()); err != nil {
		c.logger.Warn("Failed to persist last resolution", slog.Any("error", err))
	}
}
