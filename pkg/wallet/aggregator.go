package wallet

import (
	"context"
	"math/big"
	"sync"
	"time"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/units"
)

// Aggregator computes balance reports for an account.
type Aggregator struct {
	dial Dialer
	now  func() time.Time
}

func NewAggregator(dial Dialer) *Aggregator {
	return &Aggregator{dial: dial, now: time.Now}
}

// Refresh fetches the native balance and every token balance of account
// concurrently. A failed native read fails the refresh; a failed token read
// only marks that token. A nil account yields an empty report without
// touching the network.
func (a *Aggregator) Refresh(ctx context.Context, account *models.Account, tokens []models.Token, network models.NetworkConfig) (models.BalanceReport, error) {
	report := models.BalanceReport{
		Selection: models.Selection{Endpoint: network.EndpointURL},
		Native:    units.Native(nil),
		Tokens:    map[string]models.TokenBalance{},
	}
	if account == nil {
		return report, nil
	}
	report.AccountID = account.ID
	report.Address = account.Address

	ledger, err := a.dial(ctx, network.EndpointURL)
	if err != nil {
		return report, err
	}
	defer ledger.Close()

	var (
		wg        sync.WaitGroup
		native    *big.Int
		nativeErr error
		balances  map[string]models.TokenBalance
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		native, nativeErr = ledger.NativeBalance(ctx, account.Address)
	}()
	go func() {
		defer wg.Done()
		balances = tokenBalances(ctx, ledger, account.Address, tokens)
	}()
	wg.Wait()

	if nativeErr != nil {
		return report, nativeErr
	}
	report.Native = units.Native(native)
	report.Tokens = balances
	report.FetchedAt = a.now()
	return report, nil
}

// tokenBalances reads owner's balance of every token in parallel. Failures
// are recorded per token and never abort the batch.
func tokenBalances(ctx context.Context, ledger Ledger, owner string, tokens []models.Token) map[string]models.TokenBalance {
	results := make([]models.TokenBalance, len(tokens))
	var wg sync.WaitGroup
	for i, t := range tokens {
		wg.Add(1)
		go func(i int, t models.Token) {
			defer wg.Done()
			tb := models.TokenBalance{TokenID: t.ID, Symbol: t.Symbol}
			bal, err := ledger.TokenBalance(ctx, t.ContractAddress, owner)
			if err != nil {
				logging.With("token", t.Symbol, "contract", t.ContractAddress).Warn("token balance failed", "err", err)
				tb.Amount = units.NewAmount(nil, t.Decimals)
				tb.Failed = true
				tb.Error = err.Error()
			} else {
				tb.Amount = units.NewAmount(bal, t.Decimals)
			}
			results[i] = tb
		}(i, t)
	}
	wg.Wait()

	out := make(map[string]models.TokenBalance, len(results))
	for _, tb := range results {
		out[tb.TokenID] = tb
	}
	return out
}

// BalanceBook keeps the latest report that still matches the current
// selection. Reports requested for a different account or endpoint are
// dropped.
type BalanceBook struct {
	mu      sync.RWMutex
	current *models.BalanceReport
}

// CurrentSelection is the account and endpoint the model is showing.
func CurrentSelection(m models.WalletModel) models.Selection {
	sel := models.Selection{Endpoint: m.Network.EndpointURL}
	if m.ActiveAccountID != nil {
		sel.AccountID = *m.ActiveAccountID
	}
	return sel
}

// Apply stores report if it was requested for the model's current
// selection and is not older than the stored one. It reports whether it did.
func (b *BalanceBook) Apply(report models.BalanceReport, m models.WalletModel) bool {
	sel := CurrentSelection(m)
	b.mu.Lock()
	defer b.mu.Unlock()
	if report.Selection != sel {
		logging.Debugf("discarding stale balance report for %s@%s", report.AccountID, report.Endpoint)
		return false
	}
	if b.current != nil && b.current.Selection == sel && report.FetchedAt.Before(b.current.FetchedAt) {
		logging.Debugf("discarding out-of-order balance report for %s@%s", report.AccountID, report.Endpoint)
		return false
	}
	b.current = &report
	return true
}

// Latest returns the stored report if it matches the model's current
// selection.
func (b *BalanceBook) Latest(m models.WalletModel) (models.BalanceReport, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil || b.current.Selection != CurrentSelection(m) {
		return models.BalanceReport{}, false
	}
	return *b.current, true
}
