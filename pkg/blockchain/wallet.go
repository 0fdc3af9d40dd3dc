package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"stocky-api/pkg/metrics"
)

var (
	ErrContractNotConfigured = errors.New("contract address not configured")
	ErrTxReverted            = errors.New("transaction reverted")
)

const (
	defaultReceiptPoll = 2 * time.Second
	defaultReceiptWait = time.Minute
)

// TxResult describes a submitted transaction. Simulated is true when the hash was fabricated.
type TxResult struct {
	Hash      string `json:"tx_hash"`
	Simulated bool   `json:"simulated"`
}

type NetworkStatus struct {
	Mode        string `json:"mode"`
	ChainID     uint64 `json:"chain_id,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	Connected   bool   `json:"connected"`
	Error       string `json:"error,omitempty"`
}

// Wallet performs the escrow and carbon-credit operations
type Wallet interface {
	Deposit(ctx context.Context, orderRef [32]byte, seller string, amount *big.Int) (*TxResult, error)
	Release(ctx context.Context, orderRef [32]byte) (*TxResult, error)
	Refund(ctx context.Context, orderRef [32]byte) (*TxResult, error)
	Mint(ctx context.Context, to string, grams *big.Int) (*TxResult, error)
	CarbonBalance(ctx context.Context, owner string) (*big.Int, error)
	Status(ctx context.Context) *NetworkStatus
}

// RPCWallet sends transactions from a node-managed operator account and
// waits for each one to be mined before reporting success.
type RPCWallet struct {
	client   *Client
	operator string
	escrow   string
	carbon   string

	receiptPoll time.Duration
	receiptWait time.Duration
}

func NewRPCWallet(client *Client, operator, escrowContract, carbonContract string) *RPCWallet {
	return &RPCWallet{
		client:      client,
		operator:    operator,
		escrow:      escrowContract,
		carbon:      carbonContract,
		receiptPoll: defaultReceiptPoll,
		receiptWait: defaultReceiptWait,
	}
}

func (w *RPCWallet) send(ctx context.Context, method, to, data string, value *big.Int) (*TxResult, error) {
	if to == "" {
		metrics.BlockchainCalls.WithLabelValues(method, "error").Inc()
		return nil, ErrContractNotConfigured
	}
	tx := TxRequest{From: w.operator, To: to, Data: data}
	if value != nil && value.Sign() > 0 {
		tx.Value = FormatQuantity(value)
	}

	hash, err := w.client.SendTransaction(ctx, tx)
	if err == nil {
		err = w.waitMined(ctx, hash)
	}
	if err != nil {
		metrics.BlockchainCalls.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	metrics.BlockchainCalls.WithLabelValues(method, "ok").Inc()
	return &TxResult{Hash: hash}, nil
}

// waitMined polls for the receipt of hash. A receipt with status 0x0 is
// ErrTxReverted; no receipt within receiptWait is a timeout error.
func (w *RPCWallet) waitMined(ctx context.Context, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, w.receiptWait)
	defer cancel()
	ticker := time.NewTicker(w.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := w.client.GetTransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt.Success:
			return nil
		case err == nil:
			return fmt.Errorf("%w: %s", ErrTxReverted, hash)
		case !errors.Is(err, ErrReceiptNotFound):
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for receipt %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Deposit locks amount in escrow for orderRef, payable to seller on release
func (w *RPCWallet) Deposit(ctx context.Context, orderRef [32]byte, seller string, amount *big.Int) (*TxResult, error) {
	sellerWord, err := EncodeAddress(seller)
	if err != nil {
		return nil, err
	}
	return w.send(ctx, "deposit", w.escrow, PackCall(SigDeposit, EncodeBytes32(orderRef), sellerWord), amount)
}

func (w *RPCWallet) Release(ctx context.Context, orderRef [32]byte) (*TxResult, error) {
	return w.send(ctx, "release", w.escrow, PackCall(SigRelease, EncodeBytes32(orderRef)), nil)
}

func (w *RPCWallet) Refund(ctx context.Context, orderRef [32]byte) (*TxResult, error) {
	return w.send(ctx, "refund", w.escrow, PackCall(SigRefund, EncodeBytes32(orderRef)), nil)
}

// Mint issues grams carbon-credit tokens to the given wallet
func (w *RPCWallet) Mint(ctx context.Context, to string, grams *big.Int) (*TxResult, error) {
	toWord, err := EncodeAddress(to)
	if err != nil {
		return nil, err
	}
	amountWord, err := EncodeUint256(grams)
	if err != nil {
		return nil, err
	}
	return w.send(ctx, "mint", w.carbon, PackCall(SigMint, toWord, amountWord), nil)
}

// CarbonBalance reads the token balance of owner from the carbon-credit contract
func (w *RPCWallet) CarbonBalance(ctx context.Context, owner string) (*big.Int, error) {
	if w.carbon == "" {
		return nil, ErrContractNotConfigured
	}
	ownerWord, err := EncodeAddress(owner)
	if err != nil {
		return nil, err
	}
	out, err := w.client.EthCall(ctx, w.carbon, PackCall(SigBalanceOf, ownerWord))
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return DecodeUint256(out)
}

func (w *RPCWallet) Status(ctx context.Context) *NetworkStatus {
	status := &NetworkStatus{Mode: "rpc"}
	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	block, err := w.client.BlockNumber(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.ChainID = chainID
	status.BlockNumber = block
	status.Connected = true
	return status
}
