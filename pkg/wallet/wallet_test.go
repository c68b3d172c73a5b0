package wallet

import (
	"context"
	"math/big"
	"testing"
	"time"

	"evmwallet/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddAccount_DerivesAddress(t *testing.T) {
	w := New(newStore(), noDial(t))

	a, err := w.AddAccount("", keyA[2:])
	require.NoError(t, err)
	assert.Equal(t, addrA, a.Address)
	assert.Equal(t, "Account 1", a.Name)
	assert.Equal(t, keyA, a.PrivateKey)

	_, err = w.AddAccount("again", keyA)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = w.AddAccount("bad", "0x1234")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Len(t, w.State().Accounts, 1)
}

func TestCreateAccount(t *testing.T) {
	w := New(newStore(), noDial(t))
	a, err := w.CreateAccount("Fresh")
	require.NoError(t, err)
	assert.True(t, IsAddress(a.Address))

	b, err := w.CreateAccount("")
	require.NoError(t, err)
	assert.NotEqual(t, a.Address, b.Address)
	assert.Equal(t, "Account 2", b.Name)
	assert.Equal(t, a.ID, *w.State().ActiveAccountID)
}

func TestImportToken(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("TokenMetadata", tokenT).Return(models.TokenMetadata{Name: "Token", Symbol: "TKN", Decimals: 6}, nil)
	w := New(newStore(), dialerFor(ledger, nil))

	tok, err := w.ImportToken(context.Background(), tokenT)
	require.NoError(t, err)
	assert.Equal(t, "TKN", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)
	assert.NotEmpty(t, tok.ID)

	_, err = w.ImportToken(context.Background(), tokenT)
	assert.ErrorIs(t, err, models.ErrDuplicateToken)

	_, err = w.ImportToken(context.Background(), "0xnope")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTestNetwork(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Ping").Return(models.RPCLatencyData{RPCURL: endpoint, ChainID: 31337, Latency: 12 * time.Millisecond})
	ledger.On("BlockNumber").Return(uint64(7), nil)
	w := New(newStore(), dialerFor(ledger, nil))

	r := w.TestNetwork(context.Background(), testNet)
	assert.Equal(t, "ok", r.Status)
	assert.Equal(t, int64(31337), r.ChainID)
	assert.Equal(t, uint64(7), r.Height)

	r = New(newStore(), failingDial(assert.AnError)).TestNetwork(context.Background(), testNet)
	assert.Equal(t, "error", r.Status)
	assert.NotEmpty(t, r.Error)
}

func TestRefreshActive_DiscardsAfterSwitch(t *testing.T) {
	st := newStore()
	w := New(st, nil)
	a, err := w.AddAccount("A", keyA)
	require.NoError(t, err)
	b, err := w.CreateAccount("B")
	require.NoError(t, err)

	ledger := new(MockLedger)
	ledger.On("NativeBalance", a.Address).Run(func(mock.Arguments) {
		// Switch accounts while the refresh for A is in flight.
		assert.NoError(t, w.SetActiveAccount(b.ID))
	}).Return(big.NewInt(1), nil)
	w.Aggregator = NewAggregator(dialerFor(ledger, nil))

	report, applied, err := w.RefreshActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.ID, report.AccountID)
	assert.False(t, applied)
	_, ok := w.Book.Latest(w.State())
	assert.False(t, ok)
}

func TestEndToEnd(t *testing.T) {
	ledger := new(MockLedger)
	dials := 0
	w := New(newStore(), dialerFor(ledger, &dials))

	require.Empty(t, w.State().Accounts)

	a, err := w.AddAccount("A", keyA)
	require.NoError(t, err)
	require.Equal(t, a.ID, *w.State().ActiveAccountID)

	tok, err := w.AddToken(models.Token{ContractAddress: tokenT, Symbol: "TKN", Name: "Token", Decimals: 18})
	require.NoError(t, err)

	ledger.On("NativeBalance", addrA).Return(eth(10), nil)
	ledger.On("TokenBalance", tokenT, addrA).Return(eth(50), nil)
	report, applied, err := w.RefreshActive(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, a.ID, report.AccountID)
	assert.Equal(t, "10", report.Native.String())
	assert.Equal(t, "50", report.Tokens[tok.ID].Amount.String())

	ledger.On("SubmitTokenTransfer", keyA, tokenT, addrB, "1", uint8(18)).Return(common.HexToHash(txHash), nil)
	_, err = w.Store.AddTransaction(models.TransactionRecord{ID: "older", Hash: "0x01", From: addrA, Status: models.StatusSuccess})
	require.NoError(t, err)

	rec, err := w.Send(context.Background(), addrB, "1", tok.ID)
	require.NoError(t, err)
	assert.Equal(t, addrA, rec.From)
	assert.Equal(t, addrB, rec.To)
	assert.Equal(t, "1", rec.Value)
	assert.Equal(t, "TKN", rec.TokenSymbol)
	assert.Equal(t, models.StatusPending, rec.Status)

	txs := w.State().Transactions
	require.Len(t, txs, 2)
	assert.Equal(t, rec, txs[0])
	assert.Len(t, w.History(), 2)
	assert.Equal(t, 2, dials)
}

func TestResolveAsset(t *testing.T) {
	m := models.WalletModel{Tokens: []models.Token{
		{ID: "t1", Symbol: "USDC"},
		{ID: "t2", Symbol: "DAI"},
	}}
	assert.Equal(t, models.NativeAsset, ResolveAsset(m, ""))
	assert.Equal(t, models.NativeAsset, ResolveAsset(m, "eth"))
	assert.Equal(t, models.NativeAsset, ResolveAsset(m, "Native"))
	assert.Equal(t, "t1", ResolveAsset(m, "usdc"))
	assert.Equal(t, "t2", ResolveAsset(m, "t2"))
	assert.Equal(t, "XYZ", ResolveAsset(m, " XYZ "))
}
