package wallet

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"evmwallet/pkg/models"
	"evmwallet/pkg/rpc"
	"evmwallet/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Resolver answers free-form lookups for addresses and transactions.
type Resolver struct {
	dial Dialer
}

func NewResolver(dial Dialer) *Resolver {
	return &Resolver{dial: dial}
}

// Resolve classifies raw and runs the matching query. Malformed input is
// rejected before any network call.
func (r *Resolver) Resolve(ctx context.Context, raw string, network models.NetworkConfig, tokens []models.Token) (models.LookupResult, error) {
	kind, q, err := Classify(raw)
	if err != nil {
		return models.LookupResult{}, err
	}

	ledger, err := r.dial(ctx, network.EndpointURL)
	if err != nil {
		return models.LookupResult{}, err
	}
	defer ledger.Close()

	switch kind {
	case models.QueryAddress:
		res, err := lookupAddress(ctx, ledger, q, tokens)
		if err != nil {
			return models.LookupResult{}, err
		}
		return models.LookupResult{Kind: kind, Address: res}, nil
	default:
		res, err := lookupTransaction(ctx, ledger, q, tokens)
		if err != nil {
			return models.LookupResult{}, err
		}
		return models.LookupResult{Kind: kind, Transaction: res}, nil
	}
}

func lookupAddress(ctx context.Context, ledger Ledger, addr string, tokens []models.Token) (*models.AddressResult, error) {
	var (
		native     *big.Int
		isContract bool
		balances   map[string]models.TokenBalance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		native, err = ledger.NativeBalance(gctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		isContract, err = ledger.HasCode(gctx, addr)
		return err
	})
	g.Go(func() error {
		balances = tokenBalances(gctx, ledger, addr, tokens)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.AddressResult{
		Address:    common.HexToAddress(addr).Hex(),
		Native:     units.Native(native),
		IsContract: isContract,
		Tokens:     balances,
	}, nil
}

func lookupTransaction(ctx context.Context, ledger Ledger, hash string, tokens []models.Token) (*models.TransactionResult, error) {
	var (
		tx      *models.ChainTransaction
		receipt *models.ChainReceipt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tx, err = ledger.Transaction(gctx, hash)
		return err
	})
	g.Go(func() error {
		var err error
		receipt, err = ledger.Receipt(gctx, hash)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &models.NotFoundError{Kind: "transaction", ID: hash}
	}

	res := &models.TransactionResult{
		Hash:          tx.Hash,
		From:          tx.From,
		To:            tx.To,
		Value:         units.Native(tx.Value),
		Nonce:         tx.Nonce,
		Gas:           tx.Gas,
		GasPrice:      tx.GasPrice,
		BlockNumber:   tx.BlockNumber,
		Status:        models.StatusPending,
		Receipt:       receipt,
		Timestamp:     models.None[time.Time]("transaction not mined"),
		Confirmations: models.None[uint64]("transaction not mined"),
		TokenTransfer: decodeTokenTransfer(tx, tokens),
	}
	if receipt != nil {
		res.Status = receipt.Status()
	}
	if tx.Mined() {
		res.Timestamp, res.Confirmations = enrich(ctx, ledger, *tx.BlockNumber)
	}
	return res, nil
}

// enrich fetches the block timestamp and chain height concurrently. Either
// may fail independently; the failure is reported as the unset reason.
func enrich(ctx context.Context, ledger Ledger, blockNumber uint64) (models.Optional[time.Time], models.Optional[uint64]) {
	var (
		wg        sync.WaitGroup
		block     *models.ChainBlock
		blockErr  error
		height    uint64
		heightErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		block, blockErr = ledger.Block(ctx, blockNumber)
	}()
	go func() {
		defer wg.Done()
		height, heightErr = ledger.BlockNumber(ctx)
	}()
	wg.Wait()

	ts := models.None[time.Time]("block not found")
	switch {
	case blockErr != nil:
		ts = models.None[time.Time](blockErr.Error())
	case block != nil:
		ts = models.Some(block.Time())
	}

	var confs models.Optional[uint64]
	switch {
	case heightErr != nil:
		confs = models.None[uint64](heightErr.Error())
	case height < blockNumber:
		confs = models.None[uint64]("node is behind the transaction's block")
	default:
		confs = models.Some(height - blockNumber + 1)
	}
	return ts, confs
}

// decodeTokenTransfer recognizes a transfer call on a watched token.
func decodeTokenTransfer(tx *models.ChainTransaction, tokens []models.Token) *models.TokenTransfer {
	if tx.To == "" {
		return nil
	}
	for _, t := range tokens {
		if !strings.EqualFold(t.ContractAddress, tx.To) {
			continue
		}
		to, amount, ok := rpc.DecodeTransfer(tx.Input)
		if !ok {
			return nil
		}
		return &models.TokenTransfer{
			TokenID:   t.ID,
			Symbol:    t.Symbol,
			Recipient: to.Hex(),
			Amount:    units.NewAmount(amount, t.Decimals),
		}
	}
	return nil
}
