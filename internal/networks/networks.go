package networks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/you/chamber/internal/types"
)

var table = map[int64]types.Network{
	1: {
		ChainID: 1, Name: "mainnet", NativeSymbol: "ETH",
		NodeURL: "https://eth.llamarpc.com", ScannerURL: "https://etherscan.io",
	},
	56: {
		ChainID: 56, Name: "bsc", NativeSymbol: "BNB",
		NodeURL: "https://bsc-dataseed.binance.org", ScannerURL: "https://bscscan.com",
	},
	137: {
		ChainID: 137, Name: "polygon", NativeSymbol: "MATIC",
		NodeURL: "https://polygon-rpc.com", ScannerURL: "https://polygonscan.com",
	},
	42161: {
		ChainID: 42161, Name: "arbitrum", NativeSymbol: "ETH",
		NodeURL: "https://arb1.arbitrum.io/rpc", ScannerURL: "https://arbiscan.io",
	},
	31337: {
		ChainID: 31337, Name: "localhost", NativeSymbol: "ETH",
		NodeURL: "http://127.0.0.1:8545",
	},
}

var aliases = map[string]int64{
	"ethereum": 1,
	"eth":      1,
	"bnb":      56,
	"matic":    137,
	"arb":      42161,
	"local":    31337,
}

func Lookup(chainID int64) (types.Network, error) {
	n, ok := table[chainID]
	if !ok {
		return types.Network{}, fmt.Errorf("%w: chain id %d", types.ErrUnsupportedNetwork, chainID)
	}
	return n, nil
}

// Resolve accepts a chain id ("42161") or a name ("arbitrum").
func Resolve(nameOrID string) (types.Network, error) {
	s := strings.ToLower(strings.TrimSpace(nameOrID))
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Lookup(id)
	}
	if id, ok := aliases[s]; ok {
		return Lookup(id)
	}
	for _, n := range table {
		if n.Name == s {
			return n, nil
		}
	}
	return types.Network{}, fmt.Errorf("%w: %q", types.ErrUnsupportedNetwork, nameOrID)
}

func All() []types.Network {
	out := make([]types.Network, 0, len(table))
	for _, n := range table {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}
