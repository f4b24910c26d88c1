package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/you/chamber/internal/dex/core"
	imetrics "github.com/you/chamber/internal/metrics"
	"github.com/you/chamber/internal/networks"
	"github.com/you/chamber/internal/tokens"
	"github.com/you/chamber/internal/types"
)

const DefaultTimeout = 8 * time.Second

type Request struct {
	Sell    string // symbol
	Buy     string // symbol
	Amount  string // human decimal in sell units
	ChainID int64
	Taker   common.Address
	// ExecutableOnly drops quote-only sources; set on the swap path.
	ExecutableOnly bool
}

type Failure struct {
	Source types.LiquiditySource
	Err    error
}

type Result struct {
	RunID    string
	Sell     types.Token
	Buy      types.Token
	Amount   *big.Int
	Network  types.Network
	Quotes   []types.Quote // best first
	Failures []Failure     // in source priority order
}

func (r *Result) Best() types.Quote { return r.Quotes[0] }

type Aggregator struct {
	tokens  *tokens.Registry
	sources *core.Registry
	enabled []types.LiquiditySource
	timeout time.Duration
	log     *zap.Logger
}

// New builds an aggregator over the enabled sources. An empty enabled list
// means every registered source.
func New(reg *tokens.Registry, sources *core.Registry, enabled []types.LiquiditySource, timeout time.Duration, log *zap.Logger) *Aggregator {
	if len(enabled) == 0 {
		enabled = types.AllSources
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{tokens: reg, sources: sources, enabled: enabled, timeout: timeout, log: log}
}

// FetchBestQuote returns the highest-output quote for selling amount of sell into buy.
func (a *Aggregator) FetchBestQuote(ctx context.Context, sell, buy, amount string, chainID int64) (types.Quote, error) {
	res, err := a.FetchQuotes(ctx, Request{Sell: sell, Buy: buy, Amount: amount, ChainID: chainID})
	if err != nil {
		return types.Quote{}, err
	}
	return res.Best(), nil
}

type slot struct {
	quote types.Quote
	err   error
	took  time.Duration
}

// FetchQuotes asks every enabled source concurrently and waits for all of
// them. Each source runs under its own timeout; one slow or failing source
// never cancels the others.
func (a *Aggregator) FetchQuotes(ctx context.Context, req Request) (*Result, error) {
	network, err := networks.Lookup(req.ChainID)
	if err != nil {
		return nil, err
	}
	sell, buy, err := a.tokens.LookupPair(req.Sell, req.Buy, req.ChainID)
	if err != nil {
		return nil, err
	}
	amount, err := tokens.ParseUnits(req.Amount, sell.Decimals)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", req.Amount, err)
	}

	var srcs []core.Source
	for _, s := range a.sources.Enabled(a.enabled) {
		if req.ExecutableOnly && core.IsQuoteOnly(s) {
			continue
		}
		srcs = append(srcs, s)
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%w: no liquidity sources enabled", types.ErrNoQuotesAvailable)
	}

	runID := uuid.NewString()
	log := a.log.With(zap.String("run", runID))
	log.Debug("fetching quotes",
		zap.String("sell", sell.Symbol), zap.String("buy", buy.Symbol),
		zap.String("amount", amount.String()), zap.Int64("chain", req.ChainID),
		zap.Int("sources", len(srcs)))

	qreq := core.QuoteRequest{Sell: sell, Buy: buy, Amount: amount, Network: network, Taker: req.Taker}
	slots := make([]slot, len(srcs))

	var wg sync.WaitGroup
	for i, s := range srcs {
		wg.Add(1)
		go func(i int, s core.Source) {
			defer wg.Done()
			slots[i] = a.fetchOne(ctx, s, qreq)
		}(i, s)
	}
	wg.Wait()

	res := &Result{RunID: runID, Sell: sell, Buy: buy, Amount: amount, Network: network}
	var errs []error
	for i, s := range srcs {
		id := s.ID()
		sl := slots[i]
		imetrics.QuoteLatency.WithLabelValues(id.String()).Observe(sl.took.Seconds())
		if sl.err != nil {
			imetrics.QuoteErrors.WithLabelValues(id.String()).Inc()
			log.Info("quote failed", zap.Stringer("source", id), zap.Duration("took", sl.took), zap.Error(sl.err))
			res.Failures = append(res.Failures, Failure{Source: id, Err: sl.err})
			errs = append(errs, fmt.Errorf("%s: %w", id, sl.err))
			continue
		}
		log.Info("quote",
			zap.Stringer("source", id),
			zap.String("out", tokens.FormatUnits(sl.quote.ExpectedOutput, buy.Decimals)),
			zap.Duration("took", sl.took))
		res.Quotes = append(res.Quotes, sl.quote)
	}

	if len(res.Quotes) == 0 {
		return nil, fmt.Errorf("%w: %w", types.ErrNoQuotesAvailable, errors.Join(errs...))
	}

	Rank(res.Quotes)
	best := res.Quotes[0]
	imetrics.BestQuotes.WithLabelValues(best.Source.String()).Inc()
	log.Info("best quote",
		zap.Stringer("source", best.Source),
		zap.String("out", tokens.FormatUnits(best.ExpectedOutput, buy.Decimals)),
		zap.Int("quotes", len(res.Quotes)), zap.Int("failures", len(res.Failures)))
	return res, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, s core.Source, req core.QuoteRequest) slot {
	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.FetchQuote(sctx, req)
	took := time.Since(start)
	if err != nil {
		if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", a.timeout, err)
		}
		return slot{err: err, took: took}
	}
	q, err := core.Normalize(s.ID(), raw, req.Sell, req.Buy, req.Amount)
	return slot{quote: q, err: err, took: took}
}

// Rank orders quotes by expected output, highest first. Equal outputs keep
// source priority order.
func Rank(qs []types.Quote) {
	sort.SliceStable(qs, func(i, j int) bool {
		if c := qs[i].ExpectedOutput.Cmp(qs[j].ExpectedOutput); c != 0 {
			return c > 0
		}
		return qs[i].Source < qs[j].Source
	})
}
