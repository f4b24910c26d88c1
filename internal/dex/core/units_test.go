package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/chamber/internal/types"
)

func TestParseAmount(t *testing.T) {
	ok := []struct {
		in   any
		unit int32
		want string
	}{
		{"1000", 18, "1000"},
		{json.Number("42"), 0, "42"},
		{"0x2a", 0, "42"},
		{"1.5", EtherDecimals, "1500000000000000000"},
		{"12.5", GweiDecimals, "12500000000"},
		{" 7 ", 0, "7"},
		{json.Number("1e21"), EtherDecimals, "1000000000000000000000"},
		{json.Number("1.5e3"), EtherDecimals, "1500"},
		{"2e6", GweiDecimals, "2000000"},
	}
	for _, tc := range ok {
		got, err := ParseAmount(tc.in, tc.unit)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String())
	}

	bad := []any{nil, "", "-1", "-0.5", "abc", 1.5, true, "0.1234567891", json.Number("1.5"), json.Number("1e-3"), "1.5e-1"}
	for _, in := range bad {
		_, err := ParseAmount(in, GweiDecimals)
		assert.Error(t, err, "%v", in)
	}
}

func TestParseWeiAndGas(t *testing.T) {
	w, err := ParseWei(nil, EtherDecimals)
	require.NoError(t, err)
	assert.Zero(t, w.Sign())

	w, err = ParseWei("", EtherDecimals)
	require.NoError(t, err)
	assert.Zero(t, w.Sign())

	w, err = ParseWei("0.01", EtherDecimals)
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000", w.String())

	g, err := ParseGas(nil)
	require.NoError(t, err)
	assert.Zero(t, g)

	g, err = ParseGas(json.Number("210000"))
	require.NoError(t, err)
	assert.Equal(t, uint64(210000), g)

	_, err = ParseGas("100000000000000000000000")
	assert.Error(t, err)
}

func TestParseData(t *testing.T) {
	b, err := ParseData("0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	_, err = ParseData("")
	assert.Error(t, err)
	_, err = ParseData("deadbeef")
	assert.Error(t, err)
}

func TestDecimalString(t *testing.T) {
	assert.Equal(t, "5", DecimalString(5))
	assert.Equal(t, "0.1", DecimalString(0.1))
}

func TestTransactionFrom(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{
		"to":"0x1111111254eeb25477b68fb85ed929f73a960582",
		"data":"0x0102",
		"value":"0.5",
		"gas":"150000",
		"gasPrice":"30"
	}`))
	require.NoError(t, err)

	f := DefaultTxFields
	f.ValueUnit, f.GasPriceUnit = EtherDecimals, GweiDecimals
	tx, err := TransactionFrom(types.Paraswap, doc, f)
	require.NoError(t, err)
	assert.Equal(t, "0x1111111254EEB25477B68fb85Ed929f73A960582", tx.To.Hex())
	assert.Equal(t, []byte{1, 2}, tx.Data)
	assert.Equal(t, "500000000000000000", tx.Value.String())
	assert.Equal(t, uint64(150000), tx.GasLimit)
	assert.Equal(t, "30000000000", tx.GasPrice.String())
}

func TestTransactionFrom_Optional(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"to":"0x1111111254eeb25477b68fb85ed929f73a960582","data":"0x"}`))
	require.NoError(t, err)
	tx, err := TransactionFrom(types.ZeroX, doc, DefaultTxFields)
	require.NoError(t, err)
	assert.Zero(t, tx.Value.Sign())
	assert.Zero(t, tx.GasLimit)
	assert.Nil(t, tx.GasPrice)
	assert.Empty(t, tx.Data)
}

func TestTransactionFrom_BadAddress(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"to":"nope","data":"0x"}`))
	require.NoError(t, err)
	_, err = TransactionFrom(types.ZeroX, doc, DefaultTxFields)
	assert.ErrorIs(t, err, types.ErrMalformedUpstreamResponse)
}
