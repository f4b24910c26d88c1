package openocean

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

// ExchangeV2 is the OpenOcean router.
var ExchangeV2 = common.HexToAddress("0x6352a56caadC4F1E25CD6c75970Fa768A3304e64")

var chainSlugs = map[int64]string{
	1:     "eth",
	56:    "bsc",
	137:   "polygon",
	42161: "arbitrum",
}

var txFields = core.TxFields{
	To: "to", Data: "data", Value: "value", Gas: "estimatedGas", GasPrice: "gasPrice",
}

type Client struct {
	c            *core.Client
	slippage     float64
	gasPriceGwei float64
}

// New builds an OpenOcean v3 client. OpenOcean takes amounts in whole tokens
// and the gas price in gwei.
func New(baseURL string, slippagePct, gasPriceGwei float64, hc *http.Client) *Client {
	if slippagePct <= 0 {
		slippagePct = 1
	}
	if gasPriceGwei <= 0 {
		gasPriceGwei = 5
	}
	return &Client{c: core.NewClient(types.OpenOcean, baseURL, hc), slippage: slippagePct, gasPriceGwei: gasPriceGwei}
}

func (o *Client) ID() types.LiquiditySource { return types.OpenOcean }

func (o *Client) FetchQuote(ctx context.Context, req core.QuoteRequest) (json.RawMessage, error) {
	slug, err := chainSlug(req.Network.ChainID)
	if err != nil {
		return nil, err
	}
	body, err := o.c.Get(ctx, "/"+slug+"/quote", o.params(req.Sell, req.Buy, tokens.FormatUnits(req.Amount, req.Sell.Decimals)))
	if err != nil {
		return nil, err
	}
	if err := checkCode(body); err != nil {
		return nil, err
	}
	return body, nil
}

func (o *Client) BuildTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error) {
	if err := core.CheckSource(q, types.OpenOcean); err != nil {
		return types.TransactionRequest{}, err
	}
	slug, err := chainSlug(network.ChainID)
	if err != nil {
		return types.TransactionRequest{}, err
	}
	v := o.params(q.SellToken, q.BuyToken, tokens.FormatUnits(q.SellAmount, q.SellToken.Decimals))
	v.Set("account", signer.Hex())

	body, err := o.c.Get(ctx, "/"+slug+"/swap_quote", v)
	if err != nil {
		return types.TransactionRequest{}, err
	}
	if err := checkCode(body); err != nil {
		return types.TransactionRequest{}, err
	}
	doc, err := core.DecodeJSON(body)
	if err != nil {
		return types.TransactionRequest{}, core.Malformed(types.OpenOcean, "swap_quote", err)
	}
	data, ok := core.Lookup(doc, "data")
	if !ok {
		return types.TransactionRequest{}, core.Malformed(types.OpenOcean, "data", fmt.Errorf("field missing"))
	}
	return core.TransactionFrom(types.OpenOcean, data, txFields)
}

func (o *Client) Spender(types.Quote) common.Address { return ExchangeV2 }

func (o *Client) params(sell, buy types.Token, amount string) url.Values {
	v := url.Values{}
	v.Set("inTokenAddress", sell.Address.Hex())
	v.Set("outTokenAddress", buy.Address.Hex())
	v.Set("amount", amount)
	v.Set("gasPrice", core.DecimalString(o.gasPriceGwei))
	v.Set("slippage", core.DecimalString(o.slippage))
	return v
}

func chainSlug(chainID int64) (string, error) {
	slug, ok := chainSlugs[chainID]
	if !ok {
		return "", fmt.Errorf("%w: openocean has no chain %d", types.ErrUnsupportedNetwork, chainID)
	}
	return slug, nil
}

// checkCode rejects answers whose envelope code is not 200; OpenOcean
// reports failures with HTTP 200.
func checkCode(body []byte) error {
	var env struct {
		Code    json.Number `json:"code"`
		Message string      `json:"message"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return core.Malformed(types.OpenOcean, "body", err)
	}
	if env.Code == "" || env.Code == "200" {
		return nil
	}
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	return fmt.Errorf("openocean code %s: %s", env.Code, msg)
}
