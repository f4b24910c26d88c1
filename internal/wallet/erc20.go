package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/you/chamber/internal/types"
)

const erc20JSON = `[
  {"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"address","name":"spender","type":"address"}],"name":"allowance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"spender","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"approve","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// ERC20 is the token ABI subset used for balances and approvals.
var ERC20 = mustABI(erc20JSON)

func mustABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("bad abi: %v", err))
	}
	return a
}

// BalanceOf returns the signer's balance of token in smallest units.
func (w *Wallet) BalanceOf(ctx context.Context, token types.Token) (*big.Int, error) {
	if token.IsNative() {
		return w.NativeBalance(ctx)
	}
	return w.callUint(ctx, token.Address, "balanceOf", w.sender)
}

// Allowance reads the on-chain allowance of spender over the signer's token.
func (w *Wallet) Allowance(ctx context.Context, token types.Token, spender common.Address) (*big.Int, error) {
	return w.callUint(ctx, token.Address, "allowance", w.sender, spender)
}

// Approve submits approve(spender, amount) and waits for a successful receipt.
func (w *Wallet) Approve(ctx context.Context, token types.Token, spender common.Address, amount *big.Int) (common.Hash, error) {
	input, err := ERC20.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack approve: %w", err)
	}
	hash, err := w.SendTransaction(ctx, types.TransactionRequest{To: token.Address, Data: input})
	if err != nil {
		return common.Hash{}, err
	}
	rcpt, err := w.WaitReceipt(ctx, hash)
	if err != nil {
		return hash, err
	}
	if rcpt.Status != gethtypes.ReceiptStatusSuccessful {
		return hash, fmt.Errorf("approve %s reverted in block %v", hash.Hex(), rcpt.BlockNumber)
	}
	return hash, nil
}

func (w *Wallet) callUint(ctx context.Context, contract common.Address, method string, args ...any) (*big.Int, error) {
	input, err := ERC20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	res, err := w.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	outs, err := ERC20.Methods[method].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		if err == nil {
			err = fmt.Errorf("empty %s output", method)
		}
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	v, ok := outs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s type %T", method, outs[0])
	}
	return v, nil
}
