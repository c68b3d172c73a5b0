package wallet

import (
	"context"
	"testing"

	"evmwallet/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	st := newStore()
	for _, rec := range []models.TransactionRecord{
		{ID: "1", Hash: "0x01", Status: models.StatusPending},
		{ID: "2", Hash: "0x02", Status: models.StatusPending},
		{ID: "3", Hash: "0x03", Status: models.StatusPending},
		{ID: "4", Hash: "0x04", Status: models.StatusSuccess},
	} {
		_, err := st.AddTransaction(rec)
		require.NoError(t, err)
	}

	ledger := new(MockLedger)
	ledger.On("Receipt", "0x01").Return(&models.ChainReceipt{Succeeded: true}, nil)
	ledger.On("Receipt", "0x02").Return(&models.ChainReceipt{Succeeded: false}, nil)
	ledger.On("Receipt", "0x03").Return(nil, nil)

	changed, err := NewReconciler(dialerFor(ledger, nil), st).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Len(t, changed, 2)

	status := map[string]models.TxStatus{}
	for _, rec := range st.Load().Transactions {
		status[rec.ID] = rec.Status
	}
	assert.Equal(t, map[string]models.TxStatus{
		"1": models.StatusSuccess,
		"2": models.StatusFailed,
		"3": models.StatusPending,
		"4": models.StatusSuccess,
	}, status)
	ledger.AssertNotCalled(t, "Receipt", "0x04")
}

func TestReconcile_NothingPending(t *testing.T) {
	changed, err := NewReconciler(noDial(t), newStore()).Reconcile(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, changed)
}

func TestReconcile_ReceiptErrorsAreJoined(t *testing.T) {
	st := newStore()
	_, _ = st.AddTransaction(models.TransactionRecord{ID: "1", Hash: "0x01", Status: models.StatusPending})
	_, _ = st.AddTransaction(models.TransactionRecord{ID: "2", Hash: "0x02", Status: models.StatusPending})

	ledger := new(MockLedger)
	ledger.On("Receipt", "0x01").Return(nil, &models.NetworkError{Op: "getReceipt", Err: assert.AnError})
	ledger.On("Receipt", "0x02").Return(&models.ChainReceipt{Succeeded: true}, nil)

	changed, err := NewReconciler(dialerFor(ledger, nil), st).Reconcile(context.Background())
	assert.ErrorIs(t, err, models.ErrNetwork)
	require.Len(t, changed, 1)
	assert.Equal(t, "2", changed[0].ID)
}
