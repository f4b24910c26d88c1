package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/you/chamber/internal/types"
)

// outputPaths lists, per source, where the raw quote carries the buy amount.
// The first path present wins.
var outputPaths = map[types.LiquiditySource][][]string{
	types.ZeroX:     {{"buyAmount"}},
	types.OneInch:   {{"toTokenAmount"}, {"dstAmount"}},
	types.Paraswap:  {{"priceRoute", "destAmount"}},
	types.OpenOcean: {{"data", "outAmount"}},
	types.CowSwap:   {{"quote", "buyAmount"}},
}

// Normalize maps a source's raw quote into a Quote whose ExpectedOutput is in
// smallest units of buy. Integer strings are taken as smallest units, decimal
// strings as whole tokens.
func Normalize(source types.LiquiditySource, raw json.RawMessage, sell, buy types.Token, sellAmount *big.Int) (types.Quote, error) {
	paths, ok := outputPaths[source]
	if !ok {
		return types.Quote{}, unsupported(source, "no output mapping")
	}

	doc, err := DecodeJSON(raw)
	if err != nil {
		return types.Quote{}, Malformed(source, "body", err)
	}

	var (
		v     any
		found bool
		used  []string
	)
	for _, p := range paths {
		if v, found = Lookup(doc, p...); found {
			used = p
			break
		}
	}
	if !found {
		return types.Quote{}, Malformed(source, pathString(paths[0]), fmt.Errorf("field missing"))
	}

	out, err := ParseAmount(v, int32(buy.Decimals))
	if err != nil {
		return types.Quote{}, Malformed(source, pathString(used), err)
	}

	return types.Quote{
		SellToken:      sell,
		BuyToken:       buy,
		SellAmount:     new(big.Int).Set(sellAmount),
		Source:         source,
		ExpectedOutput: out,
		Raw:            append(json.RawMessage(nil), raw...),
		ChainID:        sell.ChainID,
	}, nil
}

// DecodeJSON decodes into generic maps, keeping numbers exact.
func DecodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Lookup walks nested objects.
func Lookup(doc any, path ...string) (any, bool) {
	cur := doc
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[k]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Malformed reports an unusable upstream field.
func Malformed(s types.LiquiditySource, field string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", types.ErrMalformedUpstreamResponse, s, field, err)
}

func pathString(p []string) string { return strings.Join(p, ".") }
