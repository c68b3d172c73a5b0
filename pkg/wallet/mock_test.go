package wallet

import (
	"context"
	"math/big"
	"testing"

	"evmwallet/pkg/models"
	"evmwallet/pkg/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

const (
	keyA     = models.PrivateKey("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	addrA    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	addrB    = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	tokenT   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	tokenU   = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	endpoint = "http://node.test"
	txHash   = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) NativeBalance(ctx context.Context, addr string) (*big.Int, error) {
	args := m.Called(addr)
	bal, _ := args.Get(0).(*big.Int)
	return bal, args.Error(1)
}

func (m *MockLedger) HasCode(ctx context.Context, addr string) (bool, error) {
	args := m.Called(addr)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) TokenMetadata(ctx context.Context, contract string) (models.TokenMetadata, error) {
	args := m.Called(contract)
	return args.Get(0).(models.TokenMetadata), args.Error(1)
}

func (m *MockLedger) TokenBalance(ctx context.Context, contract, owner string) (*big.Int, error) {
	args := m.Called(contract, owner)
	bal, _ := args.Get(0).(*big.Int)
	return bal, args.Error(1)
}

func (m *MockLedger) Transaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	args := m.Called(hash)
	tx, _ := args.Get(0).(*models.ChainTransaction)
	return tx, args.Error(1)
}

func (m *MockLedger) Receipt(ctx context.Context, hash string) (*models.ChainReceipt, error) {
	args := m.Called(hash)
	r, _ := args.Get(0).(*models.ChainReceipt)
	return r, args.Error(1)
}

func (m *MockLedger) Block(ctx context.Context, number uint64) (*models.ChainBlock, error) {
	args := m.Called(number)
	b, _ := args.Get(0).(*models.ChainBlock)
	return b, args.Error(1)
}

func (m *MockLedger) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLedger) SubmitNativeTransfer(ctx context.Context, key models.PrivateKey, to, amount string) (common.Hash, error) {
	args := m.Called(key, to, amount)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *MockLedger) SubmitTokenTransfer(ctx context.Context, key models.PrivateKey, contract, to, amount string, decimals uint8) (common.Hash, error) {
	args := m.Called(key, contract, to, amount, decimals)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *MockLedger) Ping(ctx context.Context) models.RPCLatencyData {
	args := m.Called()
	return args.Get(0).(models.RPCLatencyData)
}

func (m *MockLedger) Close() {}

// dialerFor returns a Dialer that hands out ledger and counts dials.
func dialerFor(ledger Ledger, dials *int) Dialer {
	return func(ctx context.Context, url string) (Ledger, error) {
		if dials != nil {
			*dials++
		}
		return ledger, nil
	}
}

// noDial fails the test if the network is touched.
func noDial(t *testing.T) Dialer {
	return func(ctx context.Context, url string) (Ledger, error) {
		t.Fatalf("unexpected dial to %s", url)
		return nil, nil
	}
}

func failingDial(err error) Dialer {
	return func(ctx context.Context, url string) (Ledger, error) {
		return nil, err
	}
}

func newStore() *store.Store {
	return store.New(store.NewMemoryKV())
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
