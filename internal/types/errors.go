package types

import "errors"

var (
	ErrUnsupportedToken           = errors.New("unsupported token")
	ErrUnsupportedTradePair       = errors.New("unsupported trade pair")
	ErrUnsupportedNetwork         = errors.New("unsupported network")
	ErrUnsupportedLiquiditySource = errors.New("unsupported liquidity source")
	ErrMalformedUpstreamResponse  = errors.New("malformed upstream response")
	ErrNoQuotesAvailable          = errors.New("no quotes available")
	ErrInsufficientBalance        = errors.New("insufficient balance")
	ErrAllowanceIncreaseFailed    = errors.New("allowance increase failed")
	ErrSubmissionFailed           = errors.New("submission failed")
	ErrConfigKeyNotFound          = errors.New("config key not found")
)
