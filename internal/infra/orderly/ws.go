package orderly

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
	"github.com/huyhieublock/tradding/internal/screen"
)

const (
	pingInterval = 15 * time.Second
	readTimeout  = 60 * time.Second
	baseDelay    = 3 * time.Second

	// subBuffer sizes each subscription's event channel. When a consumer
	// falls behind, new frames are dropped rather than blocking the read
	// loop; the next snapshot supersedes the lost one anyway.
	subBuffer = 64
)

// Worker maintains the persistent market data connection and fans incoming
// ticker/mark-price/orderbook frames out to per-symbol subscriptions.
// It implements screen.Feed.
type Worker struct {
	wsURL     string
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *slog.Logger

	subMu     sync.Mutex
	subs      map[string]map[uint64]*subscription // symbol -> id -> sub
	nextSubID uint64

	// Merged per-symbol ticker state. The @ticker and @markprice topics
	// deliver partial views; subscribers always receive the union.
	// Touched only from the read loop.
	tickers map[string]domain.Ticker
}

// NewWorker factory
func NewWorker(cfg *infra.Config) *Worker {
	return &Worker{
		wsURL:   cfg.API.Orderly.WSURL,
		logger:  slog.Default().With("module", "orderly_ws"),
		subs:    make(map[string]map[uint64]*subscription),
		tickers: make(map[string]domain.Ticker),
	}
}

// subscription is one cancellable per-symbol feed subscription.
type subscription struct {
	w      *Worker
	symbol string
	id     uint64
	ch     chan screen.FeedEvent
	once   sync.Once
}

func (s *subscription) Events() <-chan screen.FeedEvent { return s.ch }

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.w.drop(s) })
}

// Subscribe registers a consumer for one symbol's ticker, mark price and
// order book pushes. The wire subscription is established on the first
// consumer and torn down with the last.
func (w *Worker) Subscribe(symbol string) (screen.Subscription, error) {
	if symbol == "" {
		return nil, domain.ErrInvalidSymbol
	}

	w.subMu.Lock()
	w.nextSubID++
	sub := &subscription{
		w:      w,
		symbol: symbol,
		id:     w.nextSubID,
		ch:     make(chan screen.FeedEvent, subBuffer),
	}
	bySymbol, exists := w.subs[symbol]
	if !exists {
		bySymbol = make(map[uint64]*subscription)
		w.subs[symbol] = bySymbol
	}
	first := len(bySymbol) == 0
	bySymbol[sub.id] = sub
	w.subMu.Unlock()

	if first {
		if err := w.sendTopicOps("subscribe", symbol); err != nil {
			// Not fatal: the connection loop re-subscribes everything on
			// the next (re)connect.
			w.logger.Warn("Subscribe op not sent, deferred to reconnect",
				slog.String("symbol", symbol), slog.Any("error", err))
		}
	}
	return sub, nil
}

func (w *Worker) drop(sub *subscription) {
	w.subMu.Lock()
	bySymbol := w.subs[sub.symbol]
	delete(bySymbol, sub.id)
	last := len(bySymbol) == 0
	if last {
		delete(w.subs, sub.symbol)
	}
	w.subMu.Unlock()

	close(sub.ch)

	if last {
		if err := w.sendTopicOps("unsubscribe", sub.symbol); err != nil {
			w.logger.Debug("Unsubscribe op not sent",
				slog.String("symbol", sub.symbol), slog.Any("error", err))
		}
	}
}

func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(2)
	go w.connectionLoop(ctx)
	go w.pingLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			infra.GlobalMetrics.RecordError()
			w.logger.Warn("Orderly connection failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(baseDelay):
			}
		} else {
			w.readLoop(ctx)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return domain.NewNetworkError("connect", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	infra.GlobalMetrics.IncrementConnections()

	if err := w.resubscribeAll(); err != nil {
		w.closeConnection()
		return err
	}

	w.logger.Info("Orderly feed connected")
	return nil
}

// resubscribeAll re-establishes the wire topics for every active symbol
// after a (re)connect.
func (w *Worker) resubscribeAll() error {
	w.subMu.Lock()
	symbols := make([]string, 0, len(w.subs))
	for sym := range w.subs {
		symbols = append(symbols, sym)
	}
	w.subMu.Unlock()

	for _, sym := range symbols {
		if err := w.sendTopicOps("subscribe", sym); err != nil {
			return err
		}
	}
	return nil
}

// sendTopicOps sends one op per topic the screen consumes for a symbol.
func (w *Worker) sendTopicOps(event, symbol string) error {
	for _, channel := range []string{"ticker", "markprice", "orderbook"} {
		op := wsOp{
			ID:    "sub-" + symbol + "-" + channel,
			Event: event,
			Topic: symbol + "@" + channel,
		}
		b, _ := json.Marshal(op)
		if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) pingLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A miss while disconnected is fine, the next connect restores it.
			b, _ := json.Marshal(wsOp{Event: "ping"})
			w.threadSafeWrite(websocket.TextMessage, b)
		}
	}
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.closeConnection()
			return
		default:
		}
		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		w.logger.Debug("Unparseable frame", slog.Any("error", err))
		return
	}

	// Server-initiated keepalive.
	if env.Event == "ping" {
		b, _ := json.Marshal(wsOp{Event: "pong"})
		w.threadSafeWrite(websocket.TextMessage, b)
		return
	}
	if env.Topic == "" || env.Data == nil {
		return
	}

	symbol, channel, ok := splitTopic(env.Topic)
	if !ok {
		return
	}

	switch channel {
	case "ticker":
		w.handleTicker(symbol, env.Data)
	case "markprice":
		w.handleMarkPrice(symbol, env.Data)
	case "orderbook":
		w.handleOrderbook(symbol, env.Data)
	}
}

func splitTopic(topic string) (symbol, channel string, ok bool) {
	i := strings.LastIndex(topic, "@")
	if i <= 0 || i == len(topic)-1 {
		return "", "", false
	}
	return topic[:i], topic[i+1:], true
}

func (w *Worker) handleTicker(symbol string, data json.RawMessage) {
	var td tickerData
	if err := json.Unmarshal(data, &td); err != nil {
		w.logger.Debug("Bad ticker payload", slog.String("symbol", symbol), slog.Any("error", err))
		return
	}

	tk := w.tickers[symbol]
	tk.Symbol = symbol
	tk.Open24h = toDecimalPtr(td.Open)
	tk.Volume24h = toDecimalPtr(td.Amount)
	tk.Change24h = changeRatio(td.Open, td.Close)
	w.tickers[symbol] = tk

	w.dispatch(symbol, screen.FeedEvent{Symbol: symbol, Ticker: &tk})
}

func (w *Worker) handleMarkPrice(symbol string, data json.RawMessage) {
	var md markPriceData
	if err := json.Unmarshal(data, &md); err != nil {
		w.logger.Debug("Bad markprice payload", slog.String("symbol", symbol), slog.Any("error", err))
		return
	}

	tk := w.tickers[symbol]
	tk.Symbol = symbol
	tk.MarkPrice = toDecimalPtr(md.Price)
	w.tickers[symbol] = tk

	w.dispatch(symbol, screen.FeedEvent{Symbol: symbol, Ticker: &tk})
}

func (w *Worker) handleOrderbook(symbol string, data json.RawMessage) {
	var od orderbookData
	if err := json.Unmarshal(data, &od); err != nil {
		w.logger.Debug("Bad orderbook payload", slog.String("symbol", symbol), slog.Any("error", err))
		return
	}

	snap := &domain.OrderBookSnapshot{
		Symbol:    symbol,
		Asks:      parseLevels(od.Asks),
		Bids:      parseLevels(od.Bids),
		MarkPrice: toDecimalPtr(od.MarkPrice),
	}
	w.dispatch(symbol, screen.FeedEvent{Symbol: symbol, Book: snap})
}

// parseLevels converts wire [price, quantity] pairs. Unparseable pairs are
// dropped level-by-level, never failing the snapshot.
func parseLevels(pairs [][]json.Number) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			infra.GlobalMetrics.RecordMalformedLevel()
			continue
		}
		price, errP := toDecimal(p[0])
		qty, errQ := toDecimal(p[1])
		if errP != nil || errQ != nil {
			infra.GlobalMetrics.RecordMalformedLevel()
			continue
		}
		out = append(out, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return out
}

// changeRatio computes the 24h change as (last-open)/open.
func changeRatio(open, last json.Number) *decimal.Decimal {
	o, errO := toDecimal(open)
	c, errC := toDecimal(last)
	if errO != nil || errC != nil || o.IsZero() {
		return nil
	}
	r := c.Sub(o).Div(o)
	return &r
}

func (w *Worker) dispatch(symbol string, ev screen.FeedEvent) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, sub := range w.subs[symbol] {
		select {
		case sub.ch <- ev:
		default:
			// Consumer behind; drop in favor of fresher data.
		}
	}
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
		infra.GlobalMetrics.DecrementConnections()
	}
	w.connected = false
}

func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
