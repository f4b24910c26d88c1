package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/you/chamber/internal/config"
	"github.com/you/chamber/internal/types"
)

// Keys read by the commands.
const (
	KeyPrivateKey    = "PRIVATE_KEY"
	KeySigner        = "SIGNER"
	KeyNetwork       = "NETWORK"
	KeyRPCURL        = "RPC_URL"
	KeyZeroXAPIKey   = "ZERO_X_API_KEY"
	KeyOneInchAPIKey = "ONE_INCH_API_KEY"
)

// Store is a flat string key-value store. Missing keys yield types.ErrConfigKeyNotFound.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	All(ctx context.Context) (map[string]string, error)
}

// Open picks the backend named in cfg.
func Open(cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "file":
		return NewFile(cfg.Store.Path), nil
	case "redis":
		r := cfg.Store.Redis
		return NewRedis(r.Addr, r.DB, r.Username, r.Password, r.Key), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NormalizeKey upper-cases keys so PRIVATE_KEY and private_key are one entry.
func NormalizeKey(key string) (string, error) {
	k := strings.ToUpper(strings.TrimSpace(key))
	if k == "" {
		return "", errors.New("empty key")
	}
	return k, nil
}

// RPCKey is the per-network RPC override key, e.g. ARBITRUM_RPC_URL.
func RPCKey(networkName string) string {
	return strings.ToUpper(networkName) + "_" + KeyRPCURL
}

// First returns the value of the first key present.
func First(ctx context.Context, s Store, keys ...string) (string, error) {
	for _, k := range keys {
		v, err := s.Get(ctx, k)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, types.ErrConfigKeyNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", types.ErrConfigKeyNotFound, strings.Join(keys, " or "))
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", types.ErrConfigKeyNotFound, key)
}
