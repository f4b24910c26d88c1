package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/you/chamber/internal/multicall"
	"github.com/you/chamber/internal/store"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

func (a *app) balance(ctx context.Context, args []string) error {
	fs := a.flagSet("balance")
	netFlag := fs.String("n", "", "network name or chain id")
	addrFlag := fs.String("address", "", "account to inspect (default: configured signer)")
	if err := parse(fs, args); err != nil {
		return err
	}

	owner, err := a.owner(ctx, *addrFlag)
	if err != nil {
		return err
	}
	network, err := a.network(ctx, *netFlag)
	if err != nil {
		return err
	}
	reg, err := a.tokenRegistry()
	if err != nil {
		return err
	}
	list := reg.List(network.ChainID)
	if len(list) == 0 {
		return fmt.Errorf("no known tokens on %s", network.Name)
	}

	ec, err := ethclient.DialContext(ctx, network.NodeURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", network.Name, err)
	}
	defer ec.Close()

	mc, err := multicall.New(ec, multicall.Multicall3)
	if err != nil {
		return err
	}
	block, balances, err := mc.Balances(ctx, owner, list)
	if err != nil {
		return err
	}
	a.log.Debug("balances read", zap.String("owner", owner.Hex()), zap.String("block", block.String()), zap.Int("tokens", len(balances)))

	fmt.Fprintf(a.out, "%s on %s (block %s)\n", owner.Hex(), network.Name, block.String())
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t\n", b.Token.Symbol, tokens.FormatUnits(b.Amount, b.Token.Decimals))
	}
	return tw.Flush()
}

// owner picks -address, then the SIGNER store key, then the address of PRIVATE_KEY.
func (a *app) owner(ctx context.Context, flagValue string) (common.Address, error) {
	if flagValue != "" {
		return parseAddress(flagValue)
	}
	signer, err := a.optional(ctx, store.KeySigner)
	if err != nil {
		return common.Address{}, err
	}
	if signer != "" {
		return parseAddress(signer)
	}

	pk, err := a.store.Get(ctx, store.KeyPrivateKey)
	if errors.Is(err, types.ErrConfigKeyNotFound) {
		return common.Address{}, fmt.Errorf("no account: pass -address or set %s", store.KeySigner)
	}
	if err != nil {
		return common.Address{}, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(pk), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("bad %s: %w", store.KeyPrivateKey, err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func parseAddress(s string) (common.Address, error) {
	if err := tokens.ValidateAddress(s); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(s), nil
}
