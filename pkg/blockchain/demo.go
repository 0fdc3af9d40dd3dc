package blockchain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"stocky-api/pkg/metrics"

	"go.uber.org/zap"
)

// DemoWallet forwards to an inner wallet and answers with a fabricated
// transaction whenever the inner call fails or no inner wallet exists.
// Results produced that way carry Simulated=true.
type DemoWallet struct {
	inner Wallet
	log   *zap.Logger
}

// NewDemoWallet accepts a nil inner wallet, in which case every call is simulated
func NewDemoWallet(inner Wallet, log *zap.Logger) *DemoWallet {
	return &DemoWallet{inner: inner, log: log.Named("demo-wallet")}
}

func fakeTxHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}

func (w *DemoWallet) mask(method string, res *TxResult, err error) (*TxResult, error) {
	if err == nil && res != nil {
		return res, nil
	}
	if err != nil {
		w.log.Warn("on-chain call failed, returning simulated transaction", zap.String("method", method), zap.Error(err))
	}
	metrics.BlockchainCalls.WithLabelValues(method, "simulated").Inc()
	return &TxResult{Hash: fakeTxHash(), Simulated: true}, nil
}

func (w *DemoWallet) Deposit(ctx context.Context, orderRef [32]byte, seller string, amount *big.Int) (*TxResult, error) {
	if w.inner == nil {
		return w.mask("deposit", nil, nil)
	}
	res, err := w.inner.Deposit(ctx, orderRef, seller, amount)
	return w.mask("deposit", res, err)
}

func (w *DemoWallet) Release(ctx context.Context, orderRef [32]byte) (*TxResult, error) {
	if w.inner == nil {
		return w.mask("release", nil, nil)
	}
	res, err := w.inner.Release(ctx, orderRef)
	return w.mask("release", res, err)
}

func (w *DemoWallet) Refund(ctx context.Context, orderRef [32]byte) (*TxResult, error) {
	if w.inner == nil {
		return w.mask("refund", nil, nil)
	}
	res, err := w.inner.Refund(ctx, orderRef)
	return w.mask("refund", res, err)
}

func (w *DemoWallet) Mint(ctx context.Context, to string, grams *big.Int) (*TxResult, error) {
	if w.inner == nil {
		return w.mask("mint", nil, nil)
	}
	res, err := w.inner.Mint(ctx, to, grams)
	return w.mask("mint", res, err)
}

// CarbonBalance is never simulated; without an inner wallet there is nothing to read
func (w *DemoWallet) CarbonBalance(ctx context.Context, owner string) (*big.Int, error) {
	if w.inner == nil {
		return nil, ErrContractNotConfigured
	}
	return w.inner.CarbonBalance(ctx, owner)
}

func (w *DemoWallet) Status(ctx context.Context) *NetworkStatus {
	if w.inner == nil {
		return &NetworkStatus{Mode: "demo"}
	}
	status := w.inner.Status(ctx)
	status.Mode = "demo"
	return status
}
