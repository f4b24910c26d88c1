package multicall

import (
	"context"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/chamber/internal/types"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	eth   = types.Token{Symbol: "ETH", Address: types.NativeAddress, Decimals: 18}
	dai   = types.Token{Symbol: "DAI", Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18}
	usdc  = types.Token{Symbol: "USDC", Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6}
)

// fakeMulticall answers aggregate calls the way Multicall3 would.
type fakeMulticall struct {
	t        *testing.T
	mc       *Client
	native   *big.Int
	balances map[common.Address]*big.Int
	calls    int
}

func (f *fakeMulticall) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	require.Equal(f.t, Multicall3, *msg.To)

	m, err := f.mc.abi.MethodById(msg.Data[:4])
	require.NoError(f.t, err)
	require.Equal(f.t, "aggregate", m.Name)
	args, err := m.Inputs.Unpack(msg.Data[4:])
	require.NoError(f.t, err)
	calls := *abi.ConvertType(args[0], new([]Call)).(*[]Call)

	ret := make([][]byte, len(calls))
	for i, c := range calls {
		sel := c.CallData[:4]
		switch {
		case c.Target == Multicall3:
			gm, err := f.mc.abi.MethodById(sel)
			require.NoError(f.t, err)
			require.Equal(f.t, "getEthBalance", gm.Name)
			ret[i], _ = gm.Outputs.Pack(f.native)
		default:
			bm, err := f.mc.erc20.MethodById(sel)
			require.NoError(f.t, err)
			in, err := bm.Inputs.Unpack(c.CallData[4:])
			require.NoError(f.t, err)
			require.Equal(f.t, owner, in[0])
			ret[i], _ = bm.Outputs.Pack(f.balances[c.Target])
		}
	}
	return m.Outputs.Pack(big.NewInt(19_000_000), ret)
}

func TestBalancesOneRoundTrip(t *testing.T) {
	fake := &fakeMulticall{
		t:      t,
		native: big.NewInt(2e18),
		balances: map[common.Address]*big.Int{
			dai.Address:  big.NewInt(5e17),
			usdc.Address: big.NewInt(1_250_000),
		},
	}
	mc, err := New(fake, Multicall3)
	require.NoError(t, err)
	fake.mc = mc

	block, bals, err := mc.Balances(context.Background(), owner, []types.Token{eth, dai, usdc})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "19000000", block.String())
	require.Len(t, bals, 3)
	assert.Equal(t, "2000000000000000000", bals[0].Amount.String())
	assert.Equal(t, "500000000000000000", bals[1].Amount.String())
	assert.Equal(t, "1250000", bals[2].Amount.String())
	assert.Equal(t, "USDC", bals[2].Token.Symbol)
}

func TestAggregateEmpty(t *testing.T) {
	fake := &fakeMulticall{t: t}
	mc, err := New(fake, Multicall3)
	require.NoError(t, err)
	fake.mc = mc

	_, res, err := mc.Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}
