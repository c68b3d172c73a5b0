// Package wallet holds the chain-facing core: balance aggregation, lookup
// resolution, transfer submission and status reconciliation.
package wallet

import (
	"context"
	"math/big"

	"evmwallet/pkg/models"
	"evmwallet/pkg/rpc"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the set of node operations the wallet needs. *rpc.Client
// implements it.
type Ledger interface {
	NativeBalance(ctx context.Context, addr string) (*big.Int, error)
	HasCode(ctx context.Context, addr string) (bool, error)
	TokenMetadata(ctx context.Context, contract string) (models.TokenMetadata, error)
	TokenBalance(ctx context.Context, contract, owner string) (*big.Int, error)
	Transaction(ctx context.Context, hash string) (*models.ChainTransaction, error)
	Receipt(ctx context.Context, hash string) (*models.ChainReceipt, error)
	Block(ctx context.Context, number uint64) (*models.ChainBlock, error)
	BlockNumber(ctx context.Context) (uint64, error)
	SubmitNativeTransfer(ctx context.Context, key models.PrivateKey, to, amount string) (common.Hash, error)
	SubmitTokenTransfer(ctx context.Context, key models.PrivateKey, contract, to, amount string, decimals uint8) (common.Hash, error)
	Ping(ctx context.Context) models.RPCLatencyData
	Close()
}

var _ Ledger = (*rpc.Client)(nil)

// Dialer opens a Ledger for an endpoint. Each operation dials fresh so a
// network change takes effect on the next call.
type Dialer func(ctx context.Context, endpoint string) (Ledger, error)

// RPCDialer dials real JSON-RPC endpoints.
func RPCDialer(opts rpc.Options) Dialer {
	return func(ctx context.Context, endpoint string) (Ledger, error) {
		c, err := rpc.Dial(ctx, endpoint, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
