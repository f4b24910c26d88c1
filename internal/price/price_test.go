package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCoinbaseSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/ETH-USD/spot", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"base":"ETH","currency":"USD","amount":"3120.455"}}`)
	}))
	defer srv.Close()

	q, err := NewCoinbase(srv.URL+"/v2", srv.Client()).Spot(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, "ETH", q.Symbol)
	assert.Equal(t, "3120.455", q.USD.String())
	assert.Equal(t, "coinbase", q.Provider)
}

func TestBinanceSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		_, _ = io.WriteString(w, `{"symbol":"BTCUSDT","price":"65000.01000000"}`)
	}))
	defer srv.Close()

	q, err := NewBinance(srv.URL+"/api/v3", srv.Client()).Spot(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "65000.01", q.USD.String())
}

func TestSpotErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "NOPE") {
			http.Error(w, `{"errors":[{"id":"not_found"}]}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"amount":"n/a"}}`)
	}))
	defer srv.Close()

	c := NewCoinbase(srv.URL, srv.Client())
	_, err := c.Spot(context.Background(), "NOPE")
	assert.ErrorContains(t, err, "http 404")
	_, err = c.Spot(context.Background(), "ETH")
	assert.ErrorContains(t, err, "bad amount")
}

type stubProvider struct {
	prices map[string]string
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Spot(_ context.Context, symbol string) (Quote, error) {
	p, ok := s.prices[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("no price for %s", symbol)
	}
	return Quote{Symbol: symbol, USD: mustDec(p), Provider: "stub"}, nil
}

func TestFetcherKeepsOrderAndIsolatesFailures(t *testing.T) {
	f := NewFetcher(stubProvider{prices: map[string]string{"ETH": "3000", "BTC": "65000"}}, 1000, zap.NewNop())

	res := f.Spots(context.Background(), []string{"BTC", "DOGE", "ETH"})
	require.Len(t, res, 3)
	assert.Equal(t, "65000", res[0].Quote.USD.String())
	assert.Error(t, res[1].Err)
	assert.Equal(t, "DOGE", res[1].Quote.Symbol)
	assert.Equal(t, "3000", res[2].Quote.USD.String())
}

func TestFetcherIsRateLimited(t *testing.T) {
	f := NewFetcher(stubProvider{prices: map[string]string{"A": "1", "B": "1", "C": "1"}}, 20, nil)

	start := time.Now()
	res := f.Spots(context.Background(), []string{"A", "B", "C"})
	for _, r := range res {
		require.NoError(t, r.Err)
	}
	// burst of one, then 50ms per token
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestProviderFor(t *testing.T) {
	p, err := ProviderFor("", "http://cb", "http://bn", nil)
	require.NoError(t, err)
	assert.Equal(t, "coinbase", p.Name())
	p, err = ProviderFor("Binance", "http://cb", "http://bn", nil)
	require.NoError(t, err)
	assert.Equal(t, "binance", p.Name())
	_, err = ProviderFor("kraken", "", "", nil)
	assert.Error(t, err)
}
