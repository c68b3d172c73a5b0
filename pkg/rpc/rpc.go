// Package rpc talks to a single EVM JSON-RPC endpoint.
package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every call when Options.Timeout is zero.
var DefaultTimeout = 30 * time.Second

// Options tune a Client.
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
}

// Client is bound to one endpoint. It never retries.
type Client struct {
	endpoint string
	raw      *gethrpc.Client
	eth      *ethclient.Client
	timeout  time.Duration
	limiter  *rate.Limiter
}

// Dial connects to endpoint. HTTP(S) dials are lazy; WS dials connect here.
func Dial(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	raw, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, &models.NetworkError{Op: "dial " + endpoint, Err: err}
	}
	c := &Client{
		endpoint: endpoint,
		raw:      raw,
		eth:      ethclient.NewClient(raw),
		timeout:  opts.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// Endpoint returns the URL the client was dialed with.
func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Close() {
	c.raw.Close()
}

// begin applies the rate limit and the per-call timeout.
func (c *Client) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, &models.NetworkError{Op: op, Err: err}
		}
	}
	logging.Debugf("rpc %s %s", op, c.endpoint)
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	return cctx, cancel, nil
}

func netErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &models.NetworkError{Op: op, Err: err}
}

// NativeBalance returns the balance of addr in wei.
func (c *Client) NativeBalance(ctx context.Context, addr string) (*big.Int, error) {
	const op = "getNativeBalance"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()
	bal, err := c.eth.BalanceAt(ctx, common.HexToAddress(addr), nil)
	return bal, netErr(op, err)
}

// HasCode reports whether addr holds contract code.
func (c *Client) HasCode(ctx context.Context, addr string) (bool, error) {
	const op = "hasCode"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return false, err
	}
	defer cancel()
	code, err := c.eth.CodeAt(ctx, common.HexToAddress(addr), nil)
	if err != nil {
		return false, netErr(op, err)
	}
	return len(code) > 0, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	const op = "getCurrentBlockNumber"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return 0, err
	}
	defer cancel()
	n, err := c.eth.BlockNumber(ctx)
	return n, netErr(op, err)
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	const op = "chainId"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()
	id, err := c.eth.ChainID(ctx)
	return id, netErr(op, err)
}

// Ping measures the round trip of a block number request and reports the
// chain id.
func (c *Client) Ping(ctx context.Context) models.RPCLatencyData {
	res := models.RPCLatencyData{RPCURL: c.endpoint}
	start := time.Now()
	if _, err := c.BlockNumber(ctx); err != nil {
		res.Err = err
		return res
	}
	res.Latency = time.Since(start)
	id, err := c.ChainID(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.ChainID = id.Int64()
	return res
}

type rpcTransaction struct {
	Hash        common.Hash     `json:"hash"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"`
	Value       *hexutil.Big    `json:"value"`
	Nonce       hexutil.Uint64  `json:"nonce"`
	Gas         hexutil.Uint64  `json:"gas"`
	GasPrice    *hexutil.Big    `json:"gasPrice"`
	Input       hexutil.Bytes   `json:"input"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

// Transaction returns the transaction with the given hash, or nil when the
// node does not know it.
func (c *Client) Transaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	const op = "getTransaction"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var tx *rpcTransaction
	if err := c.raw.CallContext(ctx, &tx, "eth_getTransactionByHash", common.HexToHash(hash)); err != nil {
		return nil, netErr(op, err)
	}
	if tx == nil {
		return nil, nil
	}
	out := &models.ChainTransaction{
		Hash:  tx.Hash.Hex(),
		From:  tx.From.Hex(),
		Value: new(big.Int),
		Nonce: uint64(tx.Nonce),
		Gas:   uint64(tx.Gas),
		Input: tx.Input,
	}
	if tx.To != nil {
		out.To = tx.To.Hex()
	}
	if tx.Value != nil {
		out.Value = tx.Value.ToInt()
	}
	if tx.GasPrice != nil {
		out.GasPrice = tx.GasPrice.ToInt()
	}
	if tx.BlockNumber != nil {
		bn := uint64(*tx.BlockNumber)
		out.BlockNumber = &bn
	}
	return out, nil
}

type rpcReceipt struct {
	Status          hexutil.Uint64  `json:"status"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
}

// Receipt returns the receipt for hash, or nil while the transaction is
// unmined or unknown.
func (c *Client) Receipt(ctx context.Context, hash string) (*models.ChainReceipt, error) {
	const op = "getReceipt"
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var r *rpcReceipt
	if err := c.raw.CallContext(ctx, &r, "eth_getTransactionReceipt", common.HexToHash(hash)); err != nil {
		return nil, netErr(op, err)
	}
	if r == nil {
		return nil, nil
	}
	out := &models.ChainReceipt{
		Succeeded:   r.Status == 1,
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}
	if r.ContractAddress != nil {
		out.ContractAddress = r.ContractAddress.Hex()
	}
	return out, nil
}

type rpcBlock struct {
	Number    hexutil.Uint64 `json:"number"`
	Hash      common.Hash    `json:"hash"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
	BaseFee   *hexutil.Big   `json:"baseFeePerGas"`
}

func (c *Client) block(ctx context.Context, op, tag string) (*rpcBlock, error) {
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var b *rpcBlock
	if err := c.raw.CallContext(ctx, &b, "eth_getBlockByNumber", tag, false); err != nil {
		return nil, netErr(op, err)
	}
	return b, nil
}

// Block returns the header fields of block number, or nil if it does not
// exist yet.
func (c *Client) Block(ctx context.Context, number uint64) (*models.ChainBlock, error) {
	b, err := c.block(ctx, "getBlock", hexutil.EncodeUint64(number))
	if err != nil || b == nil {
		return nil, err
	}
	return &models.ChainBlock{
		Number:    uint64(b.Number),
		Hash:      b.Hash.Hex(),
		Timestamp: uint64(b.Timestamp),
	}, nil
}

// call runs a read-only contract call against the latest block.
func (c *Client) call(ctx context.Context, op string, to common.Address, data []byte) ([]byte, error) {
	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, netErr(op, err)
	}
	return out, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("rpc.Client(%s)", c.endpoint)
}
