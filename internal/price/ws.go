package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const readWindow = 90 * time.Second

// Tick is one Binance 24h mini ticker update.
type Tick struct {
	Symbol string // base ticker, e.g. ETH
	Close  decimal.Decimal
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	At     time.Time
}

// Change is the move since the 24h open, in percent.
func (t Tick) Change() decimal.Decimal {
	if t.Open.IsZero() {
		return decimal.Zero
	}
	return t.Close.Sub(t.Open).Div(t.Open).Mul(decimal.NewFromInt(100))
}

// Watcher streams Binance <t>usdt@miniTicker updates over one combined stream.
type Watcher struct {
	URL    string
	Dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	err  error
}

func NewWatcher(streamURL string) *Watcher {
	return &Watcher{
		URL: strings.TrimRight(streamURL, "/"),
		Dialer: &websocket.Dialer{
			HandshakeTimeout:  15 * time.Second,
			EnableCompression: true,
		},
	}
}

func streamName(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol)) + "usdt@miniTicker"
}

func (w *Watcher) connect(ctx context.Context, symbols []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return nil
	}
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, streamName(s))
	}
	u, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("stream url: %w", err)
	}
	q := u.Query()
	q.Set("streams", strings.Join(names, "/"))
	u.RawQuery = q.Encode()

	c, _, err := w.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	w.conn = c

	// Binance пингует сам; отвечаем PONG и двигаем дедлайн.
	_ = c.SetReadDeadline(time.Now().Add(readWindow))
	c.SetPingHandler(func(data string) error {
		_ = c.SetReadDeadline(time.Now().Add(readWindow))
		return c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		err := w.conn.Close()
		w.conn = nil
		return err
	}
	return nil
}

// Err reports why the tick channel closed; nil after a context cancel.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

type combined struct {
	Stream string `json:"stream"`
	Data   struct {
		Event     string `json:"e"`
		EventTime int64  `json:"E"`
		Symbol    string `json:"s"`
		Close     string `json:"c"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
	} `json:"data"`
}

// Subscribe opens the stream and emits ticks until ctx ends or the
// connection drops.
func (w *Watcher) Subscribe(ctx context.Context, symbols []string) (<-chan Tick, error) {
	if len(symbols) == 0 {
		return nil, errors.New("no symbols to watch")
	}
	if err := w.connect(ctx, symbols); err != nil {
		return nil, err
	}
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	out := make(chan Tick, 256)

	// ReadMessage не смотрит на ctx, поэтому закрываем соединение при отмене.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = w.Close()
		case <-stop:
		}
	}()

	go func() {
		defer close(out)
		defer close(stop)
		defer w.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					w.mu.Lock()
					w.err = err
					w.mu.Unlock()
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(readWindow))

			var m combined
			if json.Unmarshal(data, &m) != nil || m.Data.Event != "24hrMiniTicker" {
				continue
			}
			tick, ok := parseTick(m)
			if !ok {
				continue
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func parseTick(m combined) (Tick, bool) {
	cl, err := decimal.NewFromString(m.Data.Close)
	if err != nil {
		return Tick{}, false
	}
	t := Tick{
		Symbol: strings.TrimSuffix(strings.ToUpper(m.Data.Symbol), "USDT"),
		Close:  cl,
		At:     time.Now(),
	}
	t.Open, _ = decimal.NewFromString(m.Data.Open)
	t.High, _ = decimal.NewFromString(m.Data.High)
	t.Low, _ = decimal.NewFromString(m.Data.Low)
	if m.Data.EventTime > 0 {
		t.At = time.UnixMilli(m.Data.EventTime)
	}
	return t, true
}
