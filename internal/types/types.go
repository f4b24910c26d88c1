package types

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAddress is the sentinel address liquidity sources use for a chain's native asset.
var NativeAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

type LiquiditySource int

// Declaration order is the source priority used to break ranking ties.
const (
	ZeroX LiquiditySource = iota
	OneInch
	Paraswap
	OpenOcean
	CowSwap
)

var AllSources = []LiquiditySource{ZeroX, OneInch, Paraswap, OpenOcean, CowSwap}

var sourceNames = map[LiquiditySource]string{
	ZeroX:     "0x",
	OneInch:   "1inch",
	Paraswap:  "paraswap",
	OpenOcean: "openocean",
	CowSwap:   "cowswap",
}

func (s LiquiditySource) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseSource accepts the display name ("1inch") or the enum-style name ("ONE_INCH").
func ParseSource(name string) (LiquiditySource, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", "", "-", "").Replace(n)
	switch n {
	case "0x", "zerox":
		return ZeroX, true
	case "1inch", "oneinch":
		return OneInch, true
	case "paraswap":
		return Paraswap, true
	case "openocean":
		return OpenOcean, true
	case "cowswap", "cow":
		return CowSwap, true
	}
	return 0, false
}

type Token struct {
	Symbol   string         `yaml:"symbol" json:"symbol"`
	Address  common.Address `yaml:"-" json:"address"`
	Decimals uint8          `yaml:"decimals" json:"decimals"`
	ChainID  int64          `yaml:"-" json:"chainId"`
}

func (t Token) IsNative() bool { return t.Address == NativeAddress }

type Network struct {
	ChainID      int64
	Name         string
	NodeURL      string
	ScannerURL   string
	NativeSymbol string
}

// TxURL links a transaction hash on the network's block explorer.
func (n Network) TxURL(hash string) string {
	if n.ScannerURL == "" {
		return hash
	}
	return strings.TrimRight(n.ScannerURL, "/") + "/tx/" + hash
}

// Quote is one source's offer for a trade. Amounts are in smallest units.
type Quote struct {
	SellToken      Token
	BuyToken       Token
	SellAmount     *big.Int
	Source         LiquiditySource
	ExpectedOutput *big.Int
	Raw            json.RawMessage
	ChainID        int64
}

// TransactionRequest is an unsigned call. GasLimit 0 means estimate on submit,
// nil GasPrice means dynamic fees on submit.
type TransactionRequest struct {
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}
