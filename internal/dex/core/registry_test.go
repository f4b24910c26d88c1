package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/chamber/internal/types"
)

type stubSource struct {
	id  types.LiquiditySource
	tx  types.TransactionRequest
	err error
}

func (s stubSource) ID() types.LiquiditySource { return s.id }

func (s stubSource) FetchQuote(context.Context, QuoteRequest) (json.RawMessage, error) {
	return nil, nil
}

func (s stubSource) BuildTransaction(_ context.Context, q types.Quote, _ common.Address, _ types.Network) (types.TransactionRequest, error) {
	if err := CheckSource(q, s.id); err != nil {
		return types.TransactionRequest{}, err
	}
	return s.tx, s.err
}

func (s stubSource) Spender(types.Quote) common.Address { return common.Address{} }

type quoteOnlyStub struct{ stubSource }

func (quoteOnlyStub) QuoteOnly() bool { return true }

func TestRegistry_EnabledKeepsPriorityOrder(t *testing.T) {
	r := NewRegistry(stubSource{id: types.CowSwap}, stubSource{id: types.Paraswap}, stubSource{id: types.ZeroX})

	got := r.Enabled([]types.LiquiditySource{types.CowSwap, types.ZeroX, types.OneInch})
	require.Len(t, got, 2)
	assert.Equal(t, types.ZeroX, got[0].ID())
	assert.Equal(t, types.CowSwap, got[1].ID())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, types.Paraswap, all[1].ID())
}

func TestRegistry_BuildSwapTransaction(t *testing.T) {
	want := types.TransactionRequest{To: common.HexToAddress("0x01"), GasLimit: 21000}
	r := NewRegistry(stubSource{id: types.OneInch, tx: want}, stubSource{id: types.Paraswap, err: errors.New("boom")})

	tx, err := r.BuildSwapTransaction(context.Background(), types.Quote{Source: types.OneInch}, common.Address{}, types.Network{})
	require.NoError(t, err)
	assert.Equal(t, want, tx)

	_, err = r.BuildSwapTransaction(context.Background(), types.Quote{Source: types.Paraswap}, common.Address{}, types.Network{})
	assert.ErrorContains(t, err, "build paraswap transaction: boom")

	_, err = r.BuildSwapTransaction(context.Background(), types.Quote{Source: types.OpenOcean}, common.Address{}, types.Network{})
	assert.ErrorIs(t, err, types.ErrUnsupportedLiquiditySource)
}

func TestCheckSource(t *testing.T) {
	assert.NoError(t, CheckSource(types.Quote{Source: types.ZeroX}, types.ZeroX))
	assert.ErrorIs(t, CheckSource(types.Quote{Source: types.OneInch}, types.ZeroX), types.ErrUnsupportedLiquiditySource)
}

func TestIsQuoteOnly(t *testing.T) {
	assert.False(t, IsQuoteOnly(stubSource{id: types.ZeroX}))
	assert.True(t, IsQuoteOnly(quoteOnlyStub{stubSource{id: types.CowSwap}}))
}
