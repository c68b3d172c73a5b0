package wallet

import (
	"context"
	"errors"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/store"
)

// Reconciler moves pending records to success or failed once their receipt
// appears. Records without a receipt stay pending.
type Reconciler struct {
	dial  Dialer
	store *store.Store
}

func NewReconciler(dial Dialer, st *store.Store) *Reconciler {
	return &Reconciler{dial: dial, store: st}
}

// Reconcile checks every pending record and returns the ones that changed.
// Per-record receipt failures are logged and joined into the error; the
// remaining records are still processed.
func (r *Reconciler) Reconcile(ctx context.Context) ([]models.TransactionRecord, error) {
	m := r.store.Load()
	var pending []models.TransactionRecord
	for _, rec := range m.Transactions {
		if rec.Status == models.StatusPending {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ledger, err := r.dial(ctx, m.Network.EndpointURL)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	var (
		changed []models.TransactionRecord
		errs    []error
	)
	for _, rec := range pending {
		receipt, err := ledger.Receipt(ctx, rec.Hash)
		if err != nil {
			logging.With("hash", rec.Hash).Warn("receipt lookup failed", "err", err)
			errs = append(errs, err)
			continue
		}
		if receipt == nil {
			continue
		}
		status := receipt.Status()
		if _, err := r.store.UpdateTransactionStatus(rec.ID, status); err != nil {
			// Cleared while we were waiting on the node.
			if errors.Is(err, models.ErrRecordNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		rec.Status = status
		changed = append(changed, rec)
		logging.With("hash", rec.Hash, "status", status).Info("transaction reconciled")
	}
	return changed, errors.Join(errs...)
}
