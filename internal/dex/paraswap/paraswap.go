package paraswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/types"
)

// TokenTransferProxy is the Paraswap v5 spender.
var TokenTransferProxy = common.HexToAddress("0x216B4B4Ba9F3e719726886d34a177484278Bfcae")

// txFields reads /transactions answers: value may come back in ether and
// gasPrice in gwei when they carry a decimal point.
var txFields = core.TxFields{
	To: "to", Data: "data", Value: "value", Gas: "gas", GasPrice: "gasPrice",
	ValueUnit: core.EtherDecimals, GasPriceUnit: core.GweiDecimals,
}

type Client struct {
	c        *core.Client
	slippage float64
}

func New(baseURL string, slippagePct float64, hc *http.Client) *Client {
	if slippagePct <= 0 {
		slippagePct = 1
	}
	return &Client{c: core.NewClient(types.Paraswap, baseURL, hc), slippage: slippagePct}
}

func (p *Client) ID() types.LiquiditySource { return types.Paraswap }

func (p *Client) FetchQuote(ctx context.Context, req core.QuoteRequest) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("srcToken", req.Sell.Address.Hex())
	q.Set("destToken", req.Buy.Address.Hex())
	q.Set("amount", req.Amount.String())
	q.Set("side", "SELL")
	q.Set("network", strconv.FormatInt(req.Network.ChainID, 10))
	q.Set("srcDecimals", strconv.Itoa(int(req.Sell.Decimals)))
	q.Set("destDecimals", strconv.Itoa(int(req.Buy.Decimals)))
	return p.c.Get(ctx, "/prices", q)
}

type txBody struct {
	SrcToken     string          `json:"srcToken"`
	DestToken    string          `json:"destToken"`
	SrcAmount    string          `json:"srcAmount"`
	DestAmount   string          `json:"destAmount"`
	SrcDecimals  int             `json:"srcDecimals"`
	DestDecimals int             `json:"destDecimals"`
	PriceRoute   json.RawMessage `json:"priceRoute"`
	UserAddress  string          `json:"userAddress"`
}

func (p *Client) BuildTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error) {
	if err := core.CheckSource(q, types.Paraswap); err != nil {
		return types.TransactionRequest{}, err
	}
	var envelope struct {
		PriceRoute json.RawMessage `json:"priceRoute"`
	}
	if err := json.Unmarshal(q.Raw, &envelope); err != nil || len(envelope.PriceRoute) == 0 {
		return types.TransactionRequest{}, core.Malformed(types.Paraswap, "priceRoute", fmt.Errorf("missing from quote"))
	}

	body := txBody{
		SrcToken:     q.SellToken.Address.Hex(),
		DestToken:    q.BuyToken.Address.Hex(),
		SrcAmount:    q.SellAmount.String(),
		DestAmount:   MinOut(q.ExpectedOutput, p.slippage).String(),
		SrcDecimals:  int(q.SellToken.Decimals),
		DestDecimals: int(q.BuyToken.Decimals),
		PriceRoute:   envelope.PriceRoute,
		UserAddress:  signer.Hex(),
	}
	resp, err := p.c.PostJSON(ctx, fmt.Sprintf("/transactions/%d", network.ChainID), body)
	if err != nil {
		return types.TransactionRequest{}, err
	}
	doc, err := core.DecodeJSON(resp)
	if err != nil {
		return types.TransactionRequest{}, core.Malformed(types.Paraswap, "transactions", err)
	}
	return core.TransactionFrom(types.Paraswap, doc, txFields)
}

func (p *Client) Spender(types.Quote) common.Address { return TokenTransferProxy }

// MinOut is out reduced by slippagePct percent, rounded down.
func MinOut(out *big.Int, slippagePct float64) *big.Int {
	if out == nil {
		return new(big.Int)
	}
	keep := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(slippagePct)).Div(decimal.NewFromInt(100))
	if keep.Sign() <= 0 {
		return new(big.Int)
	}
	return decimal.NewFromBigInt(out, 0).Mul(keep).Floor().BigInt()
}
