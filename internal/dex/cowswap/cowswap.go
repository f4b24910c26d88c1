package cowswap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/types"
)

// VaultRelayer pulls sell tokens for settled CoW orders.
var VaultRelayer = common.HexToAddress("0xC92E8bdf79f0507f65a392b0ab4667716BFE0110")

var networkPaths = map[int64]string{
	1:     "mainnet",
	100:   "xdai",
	42161: "arbitrum_one",
}

// Client quotes against the CoW Protocol order book. Orders settle off-chain
// through batch auctions, so there is no transaction to build.
type Client struct {
	c *core.Client
}

func New(baseURL string, hc *http.Client) *Client {
	return &Client{c: core.NewClient(types.CowSwap, baseURL, hc)}
}

func (c *Client) ID() types.LiquiditySource { return types.CowSwap }

func (c *Client) QuoteOnly() bool { return true }

type quoteBody struct {
	SellToken           string `json:"sellToken"`
	BuyToken            string `json:"buyToken"`
	From                string `json:"from"`
	Receiver            string `json:"receiver"`
	Kind                string `json:"kind"`
	SellAmountBeforeFee string `json:"sellAmountBeforeFee"`
	PartiallyFillable   bool   `json:"partiallyFillable"`
}

func (c *Client) FetchQuote(ctx context.Context, req core.QuoteRequest) (json.RawMessage, error) {
	network, ok := networkPaths[req.Network.ChainID]
	if !ok {
		return nil, fmt.Errorf("%w: cowswap has no chain %d", types.ErrUnsupportedNetwork, req.Network.ChainID)
	}
	if req.Sell.IsNative() {
		return nil, fmt.Errorf("%w: cowswap cannot sell native %s, wrap it first", types.ErrUnsupportedToken, req.Sell.Symbol)
	}
	from := req.Taker.Hex()
	body := quoteBody{
		SellToken:           req.Sell.Address.Hex(),
		BuyToken:            req.Buy.Address.Hex(),
		From:                from,
		Receiver:            from,
		Kind:                "sell",
		SellAmountBeforeFee: req.Amount.String(),
	}
	return c.c.PostJSON(ctx, "/"+network+"/api/v1/quote", body)
}

func (c *Client) BuildTransaction(_ context.Context, q types.Quote, _ common.Address, _ types.Network) (types.TransactionRequest, error) {
	if err := core.CheckSource(q, types.CowSwap); err != nil {
		return types.TransactionRequest{}, err
	}
	return types.TransactionRequest{}, fmt.Errorf("%w: cowswap orders settle off-chain", types.ErrUnsupportedLiquiditySource)
}

func (c *Client) Spender(types.Quote) common.Address { return VaultRelayer }
