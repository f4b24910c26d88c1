package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/you/chamber/internal/aggregator"
	"github.com/you/chamber/internal/dex/core"
	imetrics "github.com/you/chamber/internal/metrics"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

type Quoter interface {
	FetchQuotes(ctx context.Context, req aggregator.Request) (*aggregator.Result, error)
}

// Sources resolves the source behind a quote and builds its transaction.
type Sources interface {
	Get(id types.LiquiditySource) (core.Source, bool)
	BuildSwapTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error)
}

type Wallet interface {
	Address() common.Address
	BalanceOf(ctx context.Context, token types.Token) (*big.Int, error)
	Allowance(ctx context.Context, token types.Token, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token types.Token, spender common.Address, amount *big.Int) (common.Hash, error)
	SendTransaction(ctx context.Context, tx types.TransactionRequest) (common.Hash, error)
}

// Confirmer is the operator. Implementations prompt on a terminal or answer
// from flags.
type Confirmer interface {
	ConfirmQuote(ctx context.Context, best types.Quote, res *aggregator.Result) (bool, error)
	ChooseAllowance(ctx context.Context, token types.Token, current, required *big.Int, menu []AllowanceOption) (AllowanceOption, error)
}

type Result struct {
	State     State
	Trace     []State
	Quote     types.Quote
	Spender   common.Address
	ApproveTx common.Hash
	TxHash    common.Hash
}

type Executor struct {
	quoter  Quoter
	sources Sources
	wallet  Wallet
	confirm Confirmer
	network types.Network
	log     *zap.Logger
}

func NewExecutor(quoter Quoter, sources Sources, wallet Wallet, confirm Confirmer, network types.Network, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{quoter: quoter, sources: sources, wallet: wallet, confirm: confirm, network: network, log: log}
}

type run struct {
	res *Result
	log *zap.Logger
}

func (r *run) enter(s State) {
	r.res.State = s
	r.res.Trace = append(r.res.Trace, s)
	r.log.Debug("swap state", zap.String("state", string(s)))
}

func (r *run) fail(err error) (*Result, error) {
	at := r.res.State
	r.enter(Failed)
	imetrics.SwapOutcomes.WithLabelValues(string(Failed)).Inc()
	return r.res, fmt.Errorf("%s: %w", at, err)
}

func (r *run) stop(s State) (*Result, error) {
	r.enter(s)
	imetrics.SwapOutcomes.WithLabelValues(string(s)).Inc()
	return r.res, nil
}

// Execute runs one swap from fresh quotes to a broadcast transaction. Each
// step either advances or ends the run; nothing is retried. An operator
// decline ends in ABORTED with a nil error.
func (e *Executor) Execute(ctx context.Context, req aggregator.Request) (*Result, error) {
	r := &run{res: &Result{}, log: e.log}
	signer := e.wallet.Address()

	r.enter(Quoting)
	req.ChainID = e.network.ChainID
	req.Taker = signer
	req.ExecutableOnly = true
	agg, err := e.quoter.FetchQuotes(ctx, req)
	if err != nil {
		return r.fail(err)
	}
	q := agg.Best()
	r.res.Quote = q
	r.log = r.log.With(zap.String("run", agg.RunID), zap.Stringer("source", q.Source))

	r.enter(Confirming)
	ok, err := e.confirm.ConfirmQuote(ctx, q, agg)
	if err != nil {
		return r.fail(err)
	}
	if !ok {
		r.log.Info("swap declined by operator")
		return r.stop(Aborted)
	}

	r.enter(CheckingBalance)
	bal, err := e.wallet.BalanceOf(ctx, q.SellToken)
	if err != nil {
		return r.fail(err)
	}
	if bal.Cmp(q.SellAmount) < 0 {
		return r.fail(fmt.Errorf("%w: have %s %s, need %s", types.ErrInsufficientBalance,
			tokens.FormatUnits(bal, q.SellToken.Decimals), q.SellToken.Symbol,
			tokens.FormatUnits(q.SellAmount, q.SellToken.Decimals)))
	}

	if !q.SellToken.IsNative() {
		src, found := e.sources.Get(q.Source)
		if !found {
			return r.fail(fmt.Errorf("%w: %s", types.ErrUnsupportedLiquiditySource, q.Source))
		}
		spender := src.Spender(q)
		r.res.Spender = spender

		r.enter(CheckingAllowance)
		current, err := e.allowance(ctx, src, q.SellToken, signer, spender)
		if err != nil {
			return r.fail(err)
		}
		r.log.Info("allowance",
			zap.String("spender", spender.Hex()),
			zap.String("current", tokens.FormatUnits(current, q.SellToken.Decimals)))

		if current.Cmp(q.SellAmount) < 0 {
			r.enter(IncreasingAllowance)
			choice, err := e.confirm.ChooseAllowance(ctx, q.SellToken, current, q.SellAmount, AllowanceMenu(q.SellToken))
			if err != nil {
				return r.fail(err)
			}
			if choice.Cancel() {
				r.log.Info("allowance increase cancelled by operator")
				return r.stop(Aborted)
			}
			if choice.Amount.Cmp(q.SellAmount) < 0 {
				return r.fail(fmt.Errorf("%w: chosen %s is below the sell amount", types.ErrAllowanceIncreaseFailed, choice.Label))
			}
			hash, err := e.wallet.Approve(ctx, q.SellToken, spender, choice.Amount)
			r.res.ApproveTx = hash
			if err != nil {
				return r.fail(fmt.Errorf("%w: %w", types.ErrAllowanceIncreaseFailed, err))
			}
			r.log.Info("allowance increased", zap.String("tx", hash.Hex()), zap.String("amount", choice.Label))
		}
	}

	r.enter(BuildingTx)
	tx, err := e.sources.BuildSwapTransaction(ctx, q, signer, e.network)
	if err != nil {
		return r.fail(err)
	}

	r.enter(Submitting)
	hash, err := e.wallet.SendTransaction(ctx, tx)
	if err != nil {
		return r.fail(fmt.Errorf("%w: %w", types.ErrSubmissionFailed, err))
	}
	r.res.TxHash = hash
	r.log.Info("swap submitted", zap.String("tx", hash.Hex()), zap.String("url", e.network.TxURL(hash.Hex())))
	return r.stop(Done)
}

// allowance prefers the source's own endpoint and falls back to an on-chain read.
func (e *Executor) allowance(ctx context.Context, src core.Source, token types.Token, owner, spender common.Address) (*big.Int, error) {
	if ar, ok := src.(core.AllowanceReader); ok {
		return ar.Allowance(ctx, token, owner, e.network)
	}
	return e.wallet.Allowance(ctx, token, spender)
}
