package core

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	GweiDecimals  = 9
	EtherDecimals = 18
)

// ParseAmount reads an integer amount given as a JSON string or number.
// Only a plain decimal string ("1.5") is whole units and is scaled by
// unitDecimals; numbers and exponent forms ("1e21") must be exact integers.
// Hex ("0x...") quantities are accepted as well.
func ParseAmount(v any, unitDecimals int32) (*big.Int, error) {
	var (
		s     string
		scale bool
	)
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing value")
	case string:
		s = strings.TrimSpace(t)
		scale = strings.Contains(s, ".") && !strings.ContainsAny(s, "eE")
	case json.Number:
		s = t.String()
	case float64:
		return nil, fmt.Errorf("float value %v loses precision", t)
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, fmt.Errorf("bad hex quantity %q: %w", s, err)
		}
		return n, nil
	}

	if n, ok := new(big.Int).SetString(s, 10); ok {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s", s)
		}
		return n, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if d.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", s)
	}
	if !scale {
		if !d.IsInteger() {
			return nil, fmt.Errorf("value %s is not an integer", s)
		}
		return d.BigInt(), nil
	}
	scaled := d.Shift(unitDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("value %s has more than %d fractional digits", s, unitDecimals)
	}
	return scaled.BigInt(), nil
}

// ParseWei reads a wei quantity; a decimal string is taken as gwei or ether per unitDecimals.
func ParseWei(v any, unitDecimals int32) (*big.Int, error) {
	if v == nil {
		return new(big.Int), nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return new(big.Int), nil
	}
	return ParseAmount(v, unitDecimals)
}

// ParseGas reads an optional gas limit; absent means estimate on submit.
func ParseGas(v any) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	n, err := ParseAmount(v, 0)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("gas %s overflows uint64", n)
	}
	return n.Uint64(), nil
}

// ParseData decodes 0x-prefixed calldata.
func ParseData(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil, fmt.Errorf("missing calldata")
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("bad calldata: %w", err)
	}
	return b, nil
}

// DecimalString renders a float for query parameters without exponent notation.
func DecimalString(f float64) string {
	return decimal.NewFromFloat(f).String()
}
