package core

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/types"
)

type QuoteRequest struct {
	Sell    types.Token
	Buy     types.Token
	Amount  *big.Int // smallest units of Sell
	Network types.Network
	// Taker is optional; some sources return tighter quotes when it is known.
	Taker common.Address
}

// Source is one liquidity source: a cheap price call, then a parameterized build call.
type Source interface {
	ID() types.LiquiditySource
	FetchQuote(ctx context.Context, req QuoteRequest) (json.RawMessage, error)
	BuildTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error)
	// Spender is the router the sell token must be approved for.
	Spender(q types.Quote) common.Address
}

// AllowanceReader is implemented by sources exposing an allowance endpoint.
type AllowanceReader interface {
	Allowance(ctx context.Context, token types.Token, owner common.Address, network types.Network) (*big.Int, error)
}

// QuoteOnly marks sources whose orders cannot be submitted as a plain transaction.
type QuoteOnly interface {
	QuoteOnly() bool
}

func IsQuoteOnly(s Source) bool {
	q, ok := s.(QuoteOnly)
	return ok && q.QuoteOnly()
}

// CheckSource guards a builder against quotes produced by another source.
func CheckSource(q types.Quote, want types.LiquiditySource) error {
	if q.Source != want {
		return unsupported(q.Source, "quote built by "+want.String())
	}
	return nil
}
