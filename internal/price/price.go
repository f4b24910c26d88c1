package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	imetrics "github.com/you/chamber/internal/metrics"
)

// Quote is a USD spot price.
type Quote struct {
	Symbol   string
	USD      decimal.Decimal
	Provider string
	At       time.Time
}

// Provider answers spot prices for one ticker symbol.
type Provider interface {
	Name() string
	Spot(ctx context.Context, symbol string) (Quote, error)
}

type Coinbase struct {
	baseURL string
	http    *http.Client
}

func NewCoinbase(baseURL string, hc *http.Client) *Coinbase {
	if hc == nil {
		hc = &http.Client{Timeout: 6 * time.Second}
	}
	return &Coinbase{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Coinbase) Name() string { return "coinbase" }

func (c *Coinbase) Spot(ctx context.Context, symbol string) (Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	var resp struct {
		Data struct {
			Base     string `json:"base"`
			Currency string `json:"currency"`
			Amount   string `json:"amount"`
		} `json:"data"`
	}
	endpoint := c.baseURL + "/prices/" + url.PathEscape(sym+"-USD") + "/spot"
	if err := getJSON(ctx, c.http, endpoint, &resp); err != nil {
		return Quote{}, fmt.Errorf("coinbase %s: %w", sym, err)
	}
	px, err := decimal.NewFromString(resp.Data.Amount)
	if err != nil {
		return Quote{}, fmt.Errorf("coinbase %s: bad amount %q", sym, resp.Data.Amount)
	}
	return Quote{Symbol: sym, USD: px, Provider: c.Name(), At: time.Now()}, nil
}

type Binance struct {
	baseURL string
	http    *http.Client
}

func NewBinance(baseURL string, hc *http.Client) *Binance {
	if hc == nil {
		hc = &http.Client{Timeout: 6 * time.Second}
	}
	return &Binance{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (b *Binance) Name() string { return "binance" }

// Spot reads the {T}USDT ticker; USDT is taken at par with USD.
func (b *Binance) Spot(ctx context.Context, symbol string) (Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	endpoint := b.baseURL + "/ticker/price?symbol=" + url.QueryEscape(sym+"USDT")
	if err := getJSON(ctx, b.http, endpoint, &resp); err != nil {
		return Quote{}, fmt.Errorf("binance %s: %w", sym, err)
	}
	px, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return Quote{}, fmt.Errorf("binance %s: bad price %q", sym, resp.Price)
	}
	return Quote{Symbol: sym, USD: px, Provider: b.Name(), At: time.Now()}, nil
}

func getJSON(ctx context.Context, hc *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Result is one ticker's outcome in a batch.
type Result struct {
	Quote Quote
	Err   error
}

// Fetcher runs batches of spot lookups under a shared rate limit.
type Fetcher struct {
	p       Provider
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewFetcher(p Provider, perSecond float64, log *zap.Logger) *Fetcher {
	if perSecond <= 0 {
		perSecond = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{p: p, limiter: rate.NewLimiter(rate.Limit(perSecond), 1), log: log}
}

// Spots looks up every symbol concurrently. Results keep the input order;
// one failing ticker does not fail the others.
func (f *Fetcher) Spots(ctx context.Context, symbols []string) []Result {
	out := make([]Result, len(symbols))
	var wg sync.WaitGroup
	for i, s := range symbols {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			if err := f.limiter.Wait(ctx); err != nil {
				out[i] = Result{Quote: Quote{Symbol: strings.ToUpper(s)}, Err: err}
				return
			}
			q, err := f.p.Spot(ctx, s)
			if err != nil {
				f.log.Warn("spot price failed", zap.String("symbol", s), zap.String("provider", f.p.Name()), zap.Error(err))
				out[i] = Result{Quote: Quote{Symbol: strings.ToUpper(s)}, Err: err}
				return
			}
			f.Observe(q)
			out[i] = Result{Quote: q}
		}(i, s)
	}
	wg.Wait()
	return out
}

// Observe records q in the spot price gauge.
func (f *Fetcher) Observe(q Quote) {
	v, _ := q.USD.Float64()
	imetrics.SpotPrice.WithLabelValues(q.Symbol, q.Provider).Set(v)
}

// ProviderFor maps a provider name to its client.
func ProviderFor(name, coinbaseURL, binanceURL string, hc *http.Client) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "coinbase":
		return NewCoinbase(coinbaseURL, hc), nil
	case "binance":
		return NewBinance(binanceURL, hc), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", name)
	}
}
