package oneinch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/types"
)

// Router is the 1inch v5 aggregation router.
var Router = common.HexToAddress("0x1111111254EEB25477B68fb85Ed929f73A960582")

type Client struct {
	c        *core.Client
	slippage float64
}

func New(baseURL, apiKey string, slippagePct float64, hc *http.Client) *Client {
	c := core.NewClient(types.OneInch, baseURL, hc)
	if apiKey != "" {
		c.Headers.Set("Authorization", "Bearer "+apiKey)
	}
	if slippagePct <= 0 {
		slippagePct = 1
	}
	return &Client{c: c, slippage: slippagePct}
}

func (o *Client) ID() types.LiquiditySource { return types.OneInch }

func (o *Client) FetchQuote(ctx context.Context, req core.QuoteRequest) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("fromTokenAddress", req.Sell.Address.Hex())
	q.Set("toTokenAddress", req.Buy.Address.Hex())
	q.Set("amount", req.Amount.String())
	return o.c.Get(ctx, chainPath(req.Network.ChainID, "/quote"), q)
}

func (o *Client) BuildTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error) {
	if err := core.CheckSource(q, types.OneInch); err != nil {
		return types.TransactionRequest{}, err
	}
	v := url.Values{}
	v.Set("fromTokenAddress", q.SellToken.Address.Hex())
	v.Set("toTokenAddress", q.BuyToken.Address.Hex())
	v.Set("amount", q.SellAmount.String())
	v.Set("fromAddress", signer.Hex())
	v.Set("slippage", core.DecimalString(o.slippage))

	body, err := o.c.Get(ctx, chainPath(network.ChainID, "/swap"), v)
	if err != nil {
		return types.TransactionRequest{}, err
	}
	doc, err := core.DecodeJSON(body)
	if err != nil {
		return types.TransactionRequest{}, core.Malformed(types.OneInch, "swap", err)
	}
	txObj, ok := core.Lookup(doc, "tx")
	if !ok {
		return types.TransactionRequest{}, core.Malformed(types.OneInch, "tx", fmt.Errorf("field missing"))
	}
	return core.TransactionFrom(types.OneInch, txObj, core.DefaultTxFields)
}

func (o *Client) Spender(types.Quote) common.Address { return Router }

// Allowance asks the 1inch API for the router allowance. The answer is in
// smallest units of token.
func (o *Client) Allowance(ctx context.Context, token types.Token, owner common.Address, network types.Network) (*big.Int, error) {
	v := url.Values{}
	v.Set("tokenAddress", token.Address.Hex())
	v.Set("walletAddress", owner.Hex())
	body, err := o.c.Get(ctx, chainPath(network.ChainID, "/approve/allowance"), v)
	if err != nil {
		return nil, err
	}
	doc, err := core.DecodeJSON(body)
	if err != nil {
		return nil, core.Malformed(types.OneInch, "allowance", err)
	}
	raw, _ := core.Lookup(doc, "allowance")
	n, err := core.ParseAmount(raw, 0)
	if err != nil {
		return nil, core.Malformed(types.OneInch, "allowance", err)
	}
	return n, nil
}

func chainPath(chainID int64, p string) string {
	return fmt.Sprintf("/%d%s", chainID, p)
}
