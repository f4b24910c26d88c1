package zerox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/dex/core"
	"github.com/you/chamber/internal/types"
)

// ExchangeProxy is the 0x router on mainnet and most EVM chains.
var ExchangeProxy = common.HexToAddress("0xDef1C0ded9bec7F1a1670819833240f027b25EfF")

type Client struct {
	c *core.Client
}

// New builds a 0x client. The quote answer is already executable, so building
// a transaction needs no second call.
func New(baseURL, apiKey string, hc *http.Client) *Client {
	c := core.NewClient(types.ZeroX, baseURL, hc)
	if apiKey != "" {
		c.Headers.Set("0x-api-key", apiKey)
	}
	return &Client{c: c}
}

func (z *Client) ID() types.LiquiditySource { return types.ZeroX }

func (z *Client) FetchQuote(ctx context.Context, req core.QuoteRequest) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("sellToken", req.Sell.Address.Hex())
	q.Set("buyToken", req.Buy.Address.Hex())
	q.Set("sellAmount", req.Amount.String())
	if req.Taker != (common.Address{}) {
		// 0x validates against the taker's current allowance otherwise, and
		// approval happens after quoting.
		q.Set("takerAddress", req.Taker.Hex())
		q.Set("skipValidation", "true")
	}
	body, err := z.c.Get(ctx, "/quote", q)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (z *Client) BuildTransaction(_ context.Context, q types.Quote, _ common.Address, _ types.Network) (types.TransactionRequest, error) {
	if err := core.CheckSource(q, types.ZeroX); err != nil {
		return types.TransactionRequest{}, err
	}
	doc, err := core.DecodeJSON(q.Raw)
	if err != nil {
		return types.TransactionRequest{}, core.Malformed(types.ZeroX, "quote", err)
	}
	return core.TransactionFrom(types.ZeroX, doc, core.DefaultTxFields)
}

// Spender prefers the allowanceTarget the quote names.
func (z *Client) Spender(q types.Quote) common.Address {
	doc, err := core.DecodeJSON(q.Raw)
	if err != nil {
		return ExchangeProxy
	}
	if v, ok := core.Lookup(doc, "allowanceTarget"); ok {
		if s, ok := v.(string); ok && common.IsHexAddress(s) {
			if a := common.HexToAddress(s); a != (common.Address{}) {
				return a
			}
		}
	}
	return ExchangeProxy
}
