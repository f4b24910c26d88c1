package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/you/chamber/internal/types"
)

// Backend is the subset of ethclient.Client the wallet needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error)
}

const (
	DefaultReceiptTimeout = 3 * time.Minute
	receiptPoll           = 2 * time.Second
)

// Wallet signs with one private key and talks to one node.
type Wallet struct {
	backend Backend
	pk      *ecdsa.PrivateKey
	sender  common.Address
	log     *zap.Logger

	receiptTimeout time.Duration
	pollInterval   time.Duration
}

// New dials network.NodeURL and loads the signer.
func New(ctx context.Context, network types.Network, privateKeyHex string, log *zap.Logger) (*Wallet, error) {
	ec, err := ethclient.DialContext(ctx, network.NodeURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", network.Name, err)
	}
	return NewWithBackend(ec, privateKeyHex, log)
}

func NewWithBackend(b Backend, privateKeyHex string, log *zap.Logger) (*Wallet, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("bad private key: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wallet{
		backend:        b,
		pk:             pk,
		sender:         crypto.PubkeyToAddress(pk.PublicKey),
		log:            log,
		receiptTimeout: DefaultReceiptTimeout,
		pollInterval:   receiptPoll,
	}, nil
}

func (w *Wallet) Address() common.Address { return w.sender }

// SetReceiptTimeout bounds how long Approve waits for its receipt.
func (w *Wallet) SetReceiptTimeout(d time.Duration) {
	if d > 0 {
		w.receiptTimeout = d
	}
}

// NativeBalance is the signer's balance of the chain's native asset.
func (w *Wallet) NativeBalance(ctx context.Context) (*big.Int, error) {
	bal, err := w.backend.BalanceAt(ctx, w.sender, nil)
	if err != nil {
		return nil, fmt.Errorf("native balance: %w", err)
	}
	return bal, nil
}

// SendTransaction signs and broadcasts req. A zero gas limit is estimated,
// a nil gas price selects EIP-1559 fees.
func (w *Wallet) SendTransaction(ctx context.Context, req types.TransactionRequest) (common.Hash, error) {
	signed, err := w.signTx(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	w.log.Info("transaction sent",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", req.To.Hex()),
		zap.Uint64("gas", signed.Gas()),
		zap.Uint64("nonce", signed.Nonce()))
	return signed.Hash(), nil
}

func (w *Wallet) signTx(ctx context.Context, req types.TransactionRequest) (*gethtypes.Transaction, error) {
	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	nonce, err := w.backend.PendingNonceAt(ctx, w.sender)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	to := req.To

	gas := req.GasLimit
	if gas == 0 {
		est, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{From: w.sender, To: &to, Value: value, Data: req.Data})
		if err != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
		gas = est + est/5
	}

	var tx *gethtypes.Transaction
	if req.GasPrice != nil {
		tx = gethtypes.NewTx(&gethtypes.LegacyTx{
			Nonce:    nonce,
			GasPrice: req.GasPrice,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     req.Data,
		})
	} else {
		gasTipCap, err := w.backend.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas tip cap: %w", err)
		}
		header, err := w.backend.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("get header: %w", err)
		}
		if header.BaseFee == nil {
			return nil, errors.New("node reports no base fee; set a gas price")
		}
		gasFeeCap := new(big.Int).Add(new(big.Int).Mul(header.BaseFee, big.NewInt(2)), gasTipCap)
		tx = gethtypes.NewTx(&gethtypes.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: gasTipCap,
			GasFeeCap: gasFeeCap,
			Gas:       gas,
			To:        &to,
			Value:     value,
			Data:      req.Data,
		})
	}

	signed, err := gethtypes.SignTx(tx, gethtypes.LatestSignerForChainID(chainID), w.pk)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// WaitReceipt polls until the transaction is mined or the receipt timeout passes.
func (w *Wallet) WaitReceipt(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, w.receiptTimeout)
	defer cancel()

	t := time.NewTicker(w.pollInterval)
	defer t.Stop()
	for {
		rcpt, err := w.backend.TransactionReceipt(ctx, hash)
		if err == nil && rcpt != nil {
			return rcpt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), ctx.Err())
		case <-t.C:
		}
	}
}
