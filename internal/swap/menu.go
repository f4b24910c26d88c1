package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

// AllowanceOption is one entry of the allowance menu. A zero Amount cancels.
type AllowanceOption struct {
	Label  string
	Amount *big.Int
}

func (o AllowanceOption) Cancel() bool { return o.Amount == nil || o.Amount.Sign() == 0 }

var menuWholeTokens = []int64{1000, 10000, 100000}

// AllowanceMenu lists the increase choices for token: cancel, fixed
// whole-token amounts, and unlimited.
func AllowanceMenu(token types.Token) []AllowanceOption {
	out := []AllowanceOption{{Label: "cancel", Amount: new(big.Int)}}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(token.Decimals)), nil)
	for _, n := range menuWholeTokens {
		amt := new(big.Int).Mul(big.NewInt(n), unit)
		out = append(out, AllowanceOption{
			Label:  tokens.FormatUnits(amt, token.Decimals) + " " + token.Symbol,
			Amount: amt,
		})
	}
	out = append(out, AllowanceOption{Label: "unlimited", Amount: new(big.Int).Set(math.MaxBig256)})
	return out
}
