package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/you/chamber/internal/aggregator"
	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/dex/cowswap"
	"github.com/you/chamber/internal/dex/oneinch"
	"github.com/you/chamber/internal/dex/openocean"
	"github.com/you/chamber/internal/dex/paraswap"
	"github.com/you/chamber/internal/dex/zerox"
	"github.com/you/chamber/internal/networks"
	"github.com/you/chamber/internal/store"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

var errUsage = errors.New("usage")

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errw)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// optional reads key from the store; a missing key is not an error.
func (a *app) optional(ctx context.Context, key string) (string, error) {
	v, err := a.store.Get(ctx, key)
	if errors.Is(err, types.ErrConfigKeyNotFound) {
		return "", nil
	}
	return v, err
}

// network resolves -n, then the NETWORK store key, then the config default.
// A <NAME>_RPC_URL or RPC_URL store key overrides the node URL.
func (a *app) network(ctx context.Context, flagValue string) (types.Network, error) {
	name := strings.TrimSpace(flagValue)
	if name == "" {
		v, err := a.optional(ctx, store.KeyNetwork)
		if err != nil {
			return types.Network{}, err
		}
		name = v
	}
	if name == "" {
		name = a.cfg.Network
	}
	n, err := networks.Resolve(name)
	if err != nil {
		names := make([]string, 0, 8)
		for _, k := range networks.All() {
			names = append(names, k.Name)
		}
		return types.Network{}, fmt.Errorf("%w (supported: %s)", err, strings.Join(names, ", "))
	}

	rpc, err := store.First(ctx, a.store, store.RPCKey(n.Name), store.KeyRPCURL)
	switch {
	case err == nil:
		n.NodeURL = rpc
	case !errors.Is(err, types.ErrConfigKeyNotFound):
		return types.Network{}, err
	}
	return n, nil
}

func (a *app) tokenRegistry() (*tokens.Registry, error) {
	reg := tokens.NewRegistry()
	for _, t := range a.cfg.Tokens {
		if err := reg.AddCustom(t.ChainID, t.Symbol, t.Address, t.Decimals); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// sources builds every liquidity source client. Store API keys win over config ones.
func (a *app) sources(ctx context.Context) (*core.Registry, error) {
	sc := a.cfg.Sources
	zxKey, err := a.optional(ctx, store.KeyZeroXAPIKey)
	if err != nil {
		return nil, err
	}
	if zxKey == "" {
		zxKey = sc.ZeroX.APIKey
	}
	oiKey, err := a.optional(ctx, store.KeyOneInchAPIKey)
	if err != nil {
		return nil, err
	}
	if oiKey == "" {
		oiKey = sc.OneInch.APIKey
	}

	hc := &http.Client{}
	slip := a.cfg.Swap.SlippagePct
	return core.NewRegistry(
		zerox.New(sc.ZeroX.BaseURL, zxKey, hc),
		oneinch.New(sc.OneInch.BaseURL, oiKey, slip, hc),
		paraswap.New(sc.Paraswap.BaseURL, slip, hc),
		openocean.New(sc.OpenOcean.BaseURL, slip, a.cfg.Swap.GasPriceGwei, hc),
		cowswap.New(sc.CowSwap.BaseURL, hc),
	), nil
}

func (a *app) enabledSources() ([]types.LiquiditySource, error) {
	out := make([]types.LiquiditySource, 0, len(a.cfg.Sources.Enabled))
	for _, name := range a.cfg.Sources.Enabled {
		id, ok := types.ParseSource(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q in sources.enabled", types.ErrUnsupportedLiquiditySource, name)
		}
		out = append(out, id)
	}
	return out, nil
}

func (a *app) aggregator(ctx context.Context) (*aggregator.Aggregator, *core.Registry, error) {
	reg, err := a.tokenRegistry()
	if err != nil {
		return nil, nil, err
	}
	srcs, err := a.sources(ctx)
	if err != nil {
		return nil, nil, err
	}
	enabled, err := a.enabledSources()
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("liquidity sources", zap.Strings("enabled", a.cfg.Sources.Enabled), zap.Duration("timeout", a.cfg.SourceTimeout()))
	return aggregator.New(reg, srcs, enabled, a.cfg.SourceTimeout(), a.log), srcs, nil
}

// tradeFlags are shared by quote and swap.
type tradeFlags struct {
	sell, buy, amount, network string
}

func (t *tradeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&t.sell, "s", "", "token to sell (symbol)")
	fs.StringVar(&t.buy, "b", "", "token to buy (symbol)")
	fs.StringVar(&t.amount, "a", "", "amount to sell, in whole tokens")
	fs.StringVar(&t.network, "n", "", "network name or chain id")
}

func (t *tradeFlags) validate() error {
	var missing []string
	if t.sell == "" {
		missing = append(missing, "-s")
	}
	if t.buy == "" {
		missing = append(missing, "-b")
	}
	if t.amount == "" {
		missing = append(missing, "-a")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}
