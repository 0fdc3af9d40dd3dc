// Package blockchain talks JSON-RPC to an EVM node or the Hedera JSON-RPC relay.
package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrReceiptNotFound = errors.New("transaction receipt not found")

// RPCRequest is a JSON-RPC 2.0 request envelope
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// TxRequest mirrors the eth_sendTransaction parameter object
type TxRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
	Gas   string `json:"gas,omitempty"`
}

type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// Client provides EVM JSON-RPC functionality
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		rpcURL:     cfg.RPCURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Call makes an RPC call and returns the raw result
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(RPCRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc http status %d", resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func (c *Client) callQuantity(ctx context.Context, method string) (uint64, error) {
	result, err := c.Call(ctx, method, nil)
	if err != nil {
		return 0, err
	}
	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return 0, err
	}
	return ParseQuantity(hex)
}

// BlockNumber returns the latest block height
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.callQuantity(ctx, "eth_blockNumber")
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	return c.callQuantity(ctx, "eth_chainId")
}

// SendTransaction submits a transaction signed by the node-managed account tx.From
func (c *Client) SendTransaction(ctx context.Context, tx TxRequest) (string, error) {
	result, err := c.Call(ctx, "eth_sendTransaction", []interface{}{tx})
	if err != nil {
		return "", err
	}
	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// EthCall runs a read-only contract call against the latest block
func (c *Client) EthCall(ctx context.Context, to, data string) (string, error) {
	result, err := c.Call(ctx, "eth_call", []interface{}{map[string]string{"to": to, "data": data}, "latest"})
	if err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal(result, &out); err != nil {
		return "", err
	}
	return out, nil
}

// GetTransactionReceipt returns ErrReceiptNotFound while the transaction is pending
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	result, err := c.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	parsed := gjson.ParseBytes(result)
	if parsed.Type == gjson.Null || !parsed.Exists() {
		return nil, ErrReceiptNotFound
	}

	block, err := ParseQuantity(parsed.Get("blockNumber").String())
	if err != nil {
		return nil, fmt.Errorf("parse blockNumber: %w", err)
	}
	gas, _ := ParseQuantity(parsed.Get("gasUsed").String())

	return &Receipt{
		TxHash:      parsed.Get("transactionHash").String(),
		BlockNumber: block,
		GasUsed:     gas,
		Success:     parsed.Get("status").String() == "0x1",
	}, nil
}

// ParseQuantity decodes a 0x-prefixed hex quantity
func ParseQuantity(hex string) (uint64, error) {
	if !strings.HasPrefix(hex, "0x") {
		return 0, fmt.Errorf("invalid quantity %q", hex)
	}
	v, ok := new(big.Int).SetString(hex[2:], 16)
	if !ok || !v.IsUint64() {
		return 0, fmt.Errorf("invalid quantity %q", hex)
	}
	return v.Uint64(), nil
}

// FormatQuantity encodes v as a 0x-prefixed hex quantity
func FormatQuantity(v *big.Int) string {
	return "0x" + v.Text(16)
}
