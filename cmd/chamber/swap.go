package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/you/chamber/internal/aggregator"
	"github.com/you/chamber/internal/store"
	"github.com/you/chamber/internal/swap"
	"github.com/you/chamber/internal/wallet"
)

func (a *app) swap(ctx context.Context, args []string) error {
	fs := a.flagSet("swap")
	var tf tradeFlags
	tf.register(fs)
	yes := fs.Bool("yes", false, "confirm the best quote without prompting")
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
	pk, err := a.store.Get(ctx, store.KeyPrivateKey)
	if err != nil {
		return fmt.Errorf("signer: %w (set it with: chamber config set -k PRIVATE_KEY)", err)
	}
	w, err := wallet.New(ctx, network, pk, a.log)
	if err != nil {
		return err
	}
	w.SetReceiptTimeout(a.cfg.ReceiptTimeout())

	agg, srcs, err := a.aggregator(ctx)
	if err != nil {
		return err
	}

	confirm := newPrompter(a.in, a.out, *yes)
	exec := swap.NewExecutor(agg, srcs, w, confirm, network, a.log)
	res, err := exec.Execute(ctx, aggregator.Request{Sell: tf.sell, Buy: tf.buy, Amount: tf.amount})
	if err != nil {
		return err
	}

	switch res.State {
	case swap.Aborted:
		fmt.Fprintln(a.out, "swap aborted")
	case swap.Done:
		fmt.Fprintf(a.out, "swap submitted via %s\n%s\n", res.Quote.Source, network.TxURL(res.TxHash.Hex()))
	default:
		a.log.Warn("swap ended in unexpected state", zap.String("state", string(res.State)))
		return errors.New("swap did not complete")
	}
	return nil
}
