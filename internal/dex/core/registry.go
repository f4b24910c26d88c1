package core

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/types"
)

// Registry holds the enabled sources in priority order.
type Registry struct {
	sources map[types.LiquiditySource]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[types.LiquiditySource]Source, len(sources))}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Source) { r.sources[s.ID()] = s }

func (r *Registry) Get(id types.LiquiditySource) (Source, bool) {
	s, ok := r.sources[id]
	return s, ok
}

// Enabled returns the registered sources among ids, in source priority order.
func (r *Registry) Enabled(ids []types.LiquiditySource) []Source {
	want := make(map[types.LiquiditySource]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]Source, 0, len(ids))
	for _, id := range types.AllSources {
		if s, ok := r.sources[id]; ok && want[id] {
			out = append(out, s)
		}
	}
	return out
}

// All returns every registered source in priority order.
func (r *Registry) All() []Source {
	return r.Enabled(types.AllSources)
}

// BuildSwapTransaction dispatches to the source that produced the quote.
func (r *Registry) BuildSwapTransaction(ctx context.Context, q types.Quote, signer common.Address, network types.Network) (types.TransactionRequest, error) {
	s, ok := r.sources[q.Source]
	if !ok {
		return types.TransactionRequest{}, unsupported(q.Source, "not registered")
	}
	tx, err := s.BuildTransaction(ctx, q, signer, network)
	if err != nil {
		return types.TransactionRequest{}, fmt.Errorf("build %s transaction: %w", q.Source, err)
	}
	return tx, nil
}

func unsupported(s types.LiquiditySource, why string) error {
	return fmt.Errorf("%w: %s (%s)", types.ErrUnsupportedLiquiditySource, s, why)
}
