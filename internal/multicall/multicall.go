package multicall

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/types"
)

// Multicall3 is deployed at the same address on every supported chain.
var Multicall3 = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

const multicallABI = `[
  {"inputs":[{"components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"}],"name":"calls","type":"tuple[]"}],
   "name":"aggregate","outputs":[{"name":"blockNumber","type":"uint256"},{"name":"returnData","type":"bytes[]"}],"stateMutability":"payable","type":"function"},
  {"inputs":[{"name":"addr","type":"address"}],"name":"getEthBalance","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const balanceOfABI = `[{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

// Caller is satisfied by *ethclient.Client.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
}

type Client struct {
	c     Caller
	addr  common.Address
	abi   abi.ABI
	erc20 abi.ABI
}

func New(c Caller, multicallAddr common.Address) (*Client, error) {
	parsedABI, err := abi.JSON(strings.NewReader(multicallABI))
	if err != nil {
		return nil, fmt.Errorf("bad abi: %w", err)
	}
	erc20, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("bad abi: %w", err)
	}
	return &Client{c: c, addr: multicallAddr, abi: parsedABI, erc20: erc20}, nil
}

type Call struct {
	Target   common.Address
	CallData []byte
}

type Result struct {
	Success bool
	Data    []byte
}

// Aggregate runs calls in one eth_call. Multicall3.aggregate reverts as a whole
// when any call reverts.
func (c *Client) Aggregate(ctx context.Context, calls []Call) (*big.Int, []Result, error) {
	payload, err := c.abi.Pack("aggregate", calls)
	if err != nil {
		return nil, nil, fmt.Errorf("pack aggregate: %w", err)
	}

	res, err := c.c.CallContract(ctx, ethereum.CallMsg{To: &c.addr, Data: payload}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("call aggregate: %w", err)
	}

	var aggRes struct {
		BlockNumber *big.Int
		ReturnData  [][]byte
	}
	if err := c.abi.UnpackIntoInterface(&aggRes, "aggregate", res); err != nil {
		return nil, nil, fmt.Errorf("unpack aggregate: %w", err)
	}
	if len(aggRes.ReturnData) != len(calls) {
		return nil, nil, fmt.Errorf("aggregate returned %d results for %d calls", len(aggRes.ReturnData), len(calls))
	}

	out := make([]Result, len(calls))
	for i, r := range aggRes.ReturnData {
		out[i] = Result{Success: len(r) > 0, Data: r}
	}
	return aggRes.BlockNumber, out, nil
}

type Balance struct {
	Token  types.Token
	Amount *big.Int
}

// Balances reads owner's balance of every token, native included, in one round trip.
func (c *Client) Balances(ctx context.Context, owner common.Address, tokens []types.Token) (*big.Int, []Balance, error) {
	calls := make([]Call, 0, len(tokens))
	for _, t := range tokens {
		var (
			data []byte
			err  error
		)
		target := t.Address
		if t.IsNative() {
			target = c.addr
			data, err = c.abi.Pack("getEthBalance", owner)
		} else {
			data, err = c.erc20.Pack("balanceOf", owner)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("pack %s balance: %w", t.Symbol, err)
		}
		calls = append(calls, Call{Target: target, CallData: data})
	}

	block, res, err := c.Aggregate(ctx, calls)
	if err != nil {
		return nil, nil, err
	}

	out := make([]Balance, len(tokens))
	for i, t := range tokens {
		if !res[i].Success {
			return nil, nil, fmt.Errorf("%s balance: empty return data", t.Symbol)
		}
		out[i] = Balance{Token: t, Amount: new(big.Int).SetBytes(res[i].Data)}
	}
	return block, out, nil
}
