package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/chamber/internal/types"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	r := NewRegistry()

	tok, err := r.Lookup("usdc", ChainMainnet)
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)
	assert.Equal(t, ChainMainnet, tok.ChainID)

	_, err = r.Lookup("NOPE", ChainMainnet)
	assert.ErrorIs(t, err, types.ErrUnsupportedToken)

	_, err = r.Lookup("USDC", 999)
	assert.ErrorIs(t, err, types.ErrUnsupportedToken)
}

func TestLookupPair(t *testing.T) {
	r := NewRegistry()

	sell, buy, err := r.LookupPair("ETH", "DAI", ChainMainnet)
	require.NoError(t, err)
	assert.True(t, sell.IsNative())
	assert.Equal(t, "DAI", buy.Symbol)
	assert.Equal(t, uint8(18), buy.Decimals)

	_, _, err = r.LookupPair("ETH", "NOPE", ChainMainnet)
	assert.ErrorIs(t, err, types.ErrUnsupportedTradePair)
	assert.Contains(t, err.Error(), "NOPE")

	_, _, err = r.LookupPair("FOO", "BAR", ChainMainnet)
	require.ErrorIs(t, err, types.ErrUnsupportedTradePair)
	assert.Contains(t, err.Error(), "FOO, BAR")

	_, _, err = r.LookupPair("dai", "DAI", ChainMainnet)
	assert.ErrorIs(t, err, types.ErrUnsupportedTradePair)
}

func TestAddCustom(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.AddCustom(ChainMainnet, "uni", "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", 18))
	tok, err := r.Lookup("UNI", ChainMainnet)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), tok.Decimals)

	err = r.AddCustom(ChainMainnet, "BAD", "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", 18)
	assert.Error(t, err)

	assert.Error(t, r.AddCustom(ChainMainnet, " ", "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", 18))
}

func TestList_NativeFirst(t *testing.T) {
	list := NewRegistry().List(ChainMainnet)
	require.NotEmpty(t, list)
	assert.Equal(t, "ETH", list[0].Symbol)
	for i := 2; i < len(list); i++ {
		assert.Less(t, list[i-1].Symbol, list[i].Symbol)
	}
}
