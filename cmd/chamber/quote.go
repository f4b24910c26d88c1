package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/you/chamber/internal/aggregator"
	"github.com/you/chamber/internal/tokens"
)

func (a *app) quote(ctx context.Context, args []string) error {
	fs := a.flagSet("quote")
	var tf tradeFlags
	tf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := tf.validate(); err != nil {
		return err
	}

	network, err := a.network(ctx, tf.network)
	if err != nil {
		return err
	}
	agg, _, err := a.aggregator(ctx)
	if err != nil {
		return err
	}
	res, err := agg.FetchQuotes(ctx, aggregator.Request{
		Sell: tf.sell, Buy: tf.buy, Amount: tf.amount, ChainID: network.ChainID,
	})
	if err != nil {
		return err
	}
	printQuotes(a.out, res)
	return nil
}

func printQuotes(w io.Writer, res *aggregator.Result) {
	fmt.Fprintf(w, "%s %s -> %s on %s\n\n",
		tokens.FormatUnits(res.Amount, res.Sell.Decimals), res.Sell.Symbol, res.Buy.Symbol, res.Network.Name)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSOURCE\tOUTPUT\t")
	for i, q := range res.Quotes {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t\n", i+1, q.Source, tokens.FormatUnits(q.ExpectedOutput, res.Buy.Decimals), res.Buy.Symbol)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(tw, "-\t%s\tfailed: %v\t\n", f.Source, f.Err)
	}
	_ = tw.Flush()
}
