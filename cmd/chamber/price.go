package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/you/chamber/internal/metrics"
	"github.com/you/chamber/internal/price"
)

func (a *app) price(ctx context.Context, args []string) error {
	fs := a.flagSet("price")
	source := fs.String("source", a.cfg.Price.Source, "coinbase|binance")
	tickerList := fs.String("tickers", "", "comma-separated tickers")
	watch := fs.Bool("watch", false, "stream live prices from Binance until interrupted")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics while watching, e.g. :9108")
	if err := parse(fs, args); err != nil {
		return err
	}

	symbols := splitTickers(*tickerList, fs.Args())
	if len(symbols) == 0 {
		fmt.Fprintln(a.errw, "price: no tickers given")
		return errUsage
	}

	if *watch {
		return a.watch(ctx, symbols, *metricsAddr)
	}

	p, err := price.ProviderFor(*source, a.cfg.Price.CoinbaseURL, a.cfg.Price.BinanceURL, nil)
	if err != nil {
		return err
	}
	results := price.NewFetcher(p, a.cfg.Price.RequestsPerSecond, a.log).Spots(ctx, symbols)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(tw, "%s\terror: %v\t\n", r.Quote.Symbol, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t$%s\t\n", r.Quote.Symbol, r.Quote.USD.String())
	}
	_ = tw.Flush()
	if failed == len(results) {
		return fmt.Errorf("no prices from %s", p.Name())
	}
	return nil
}

func (a *app) watch(ctx context.Context, symbols []string, metricsAddr string) error {
	metrics.Serve(ctx, metricsAddr, a.log)

	w := price.NewWatcher(a.cfg.Price.BinanceWsURL)
	ticks, err := w.Subscribe(ctx, symbols)
	if err != nil {
		return fmt.Errorf("binance stream: %w", err)
	}
	a.log.Info("watching prices", zap.Strings("symbols", symbols))

	f := price.NewFetcher(nil, 0, a.log)
	for t := range ticks {
		f.Observe(price.Quote{Symbol: t.Symbol, USD: t.Close, Provider: "binance-ws", At: t.At})
		fmt.Fprintf(a.out, "%s  %-6s $%s  (%s%% 24h)\n",
			t.At.Format("15:04:05"), t.Symbol, t.Close.String(), t.Change().StringFixed(2))
	}
	if err := w.Err(); err != nil {
		return fmt.Errorf("binance stream: %w", err)
	}
	return nil
}

func splitTickers(list string, rest []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range strings.Split(list, ",") {
		add(s)
	}
	for _, s := range rest {
		for _, p := range strings.Split(s, ",") {
			add(p)
		}
	}
	return out
}
