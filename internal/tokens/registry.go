package tokens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/types"
)

const (
	ChainMainnet   int64 = 1
	ChainBSC       int64 = 56
	ChainPolygon   int64 = 137
	ChainArbitrum  int64 = 42161
	ChainLocalhost int64 = 31337
)

type entry struct {
	symbol   string
	address  string
	decimals uint8
}

var mainnet = []entry{
	{"ETH", types.NativeAddress.Hex(), 18},
	{"WETH", "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", 18},
	{"DAI", "0x6b175474e89094c44da98b954eedeac495271d0f", 18},
	{"USDC", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 6},
	{"USDT", "0xdac17f958d2ee523a2206206994597c13d831ec7", 6},
	{"WBTC", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", 8},
}

var builtin = map[int64][]entry{
	ChainMainnet:   mainnet,
	ChainLocalhost: mainnet, // mainnet fork
	ChainArbitrum: {
		{"ETH", types.NativeAddress.Hex(), 18},
		{"WETH", "0x82af49447d8a07e3bd95bd0d56f35241523fbab1", 18},
		{"USDC", "0xaf88d065e77c8cc2239327c5edb3a432268e5831", 6},
		{"USDT", "0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9", 6},
		{"DAI", "0xda10009cbd5d07dd0cecc66161fc93d7c9000da1", 18},
		{"ARB", "0x912ce59144191c1204e64559fe8253a0e49e6548", 18},
	},
	ChainPolygon: {
		{"MATIC", types.NativeAddress.Hex(), 18},
		{"WMATIC", "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270", 18},
		{"USDC", "0x2791bca1f2de4661ed88a30c99a7a9449aa84174", 6},
		{"USDT", "0xc2132d05d31c914a87c6611c10748aeb04b58e8f", 6},
		{"DAI", "0x8f3cf7ad23cd3cadbd9735aff958023239c6a063", 18},
	},
	ChainBSC: {
		{"BNB", types.NativeAddress.Hex(), 18},
		{"WBNB", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", 18},
		{"USDT", "0x55d398326f99059ff775485246999027b3197955", 18},
		{"USDC", "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", 18},
	},
}

// Registry maps (symbol, chain) to token metadata. Symbols match case-insensitively.
type Registry struct {
	byChain map[int64]map[string]types.Token
}

// NewRegistry returns a registry seeded with the built-in tables.
func NewRegistry() *Registry {
	r := &Registry{byChain: make(map[int64]map[string]types.Token, len(builtin))}
	for chainID, list := range builtin {
		for _, e := range list {
			r.put(types.Token{
				Symbol:   e.symbol,
				Address:  common.HexToAddress(e.address),
				Decimals: e.decimals,
				ChainID:  chainID,
			})
		}
	}
	return r
}

func (r *Registry) put(t types.Token) {
	m := r.byChain[t.ChainID]
	if m == nil {
		m = make(map[string]types.Token)
		r.byChain[t.ChainID] = m
	}
	m[strings.ToUpper(t.Symbol)] = t
}

// AddCustom registers a user-defined token. Mixed-case addresses must carry a valid checksum.
func (r *Registry) AddCustom(chainID int64, symbol, address string, decimals uint8) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return fmt.Errorf("custom token: empty symbol")
	}
	if err := ValidateAddress(address); err != nil {
		return fmt.Errorf("custom token %s: %w", symbol, err)
	}
	r.put(types.Token{
		Symbol:   strings.ToUpper(symbol),
		Address:  common.HexToAddress(address),
		Decimals: decimals,
		ChainID:  chainID,
	})
	return nil
}

func (r *Registry) Lookup(symbol string, chainID int64) (types.Token, error) {
	t, ok := r.byChain[chainID][strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return types.Token{}, fmt.Errorf("%w: %s on chain %d", types.ErrUnsupportedToken, symbol, chainID)
	}
	return t, nil
}

// LookupPair resolves both sides in one pass and reports every missing symbol.
func (r *Registry) LookupPair(sell, buy string, chainID int64) (types.Token, types.Token, error) {
	tokens := r.byChain[chainID]
	sellTok, sellOK := tokens[strings.ToUpper(strings.TrimSpace(sell))]
	buyTok, buyOK := tokens[strings.ToUpper(strings.TrimSpace(buy))]

	var missing []string
	if !sellOK {
		missing = append(missing, sell)
	}
	if !buyOK {
		missing = append(missing, buy)
	}
	if len(missing) > 0 {
		return types.Token{}, types.Token{}, fmt.Errorf("%w: %s -> %s on chain %d (unknown: %s)",
			types.ErrUnsupportedTradePair, sell, buy, chainID, strings.Join(missing, ", "))
	}
	if sellTok.Address == buyTok.Address {
		return types.Token{}, types.Token{}, fmt.Errorf("%w: %s -> %s is the same token",
			types.ErrUnsupportedTradePair, sell, buy)
	}
	return sellTok, buyTok, nil
}

// List returns the chain's tokens sorted by symbol, native asset first.
func (r *Registry) List(chainID int64) []types.Token {
	out := make([]types.Token, 0, len(r.byChain[chainID]))
	for _, t := range r.byChain[chainID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsNative() != out[j].IsNative() {
			return out[i].IsNative()
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
