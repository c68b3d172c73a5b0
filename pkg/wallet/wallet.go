package wallet

import (
	"context"
	"fmt"
	"strings"

	"evmwallet/pkg/keys"
	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Wallet is the surface the CLI, TUI and HTTP server call into.
type Wallet struct {
	Store      *store.Store
	Aggregator *Aggregator
	Resolver   *Resolver
	Submitter  *Submitter
	Reconciler *Reconciler
	Book       *BalanceBook

	dial Dialer
}

func New(st *store.Store, dial Dialer) *Wallet {
	return &Wallet{
		Store:      st,
		Aggregator: NewAggregator(dial),
		Resolver:   NewResolver(dial),
		Submitter:  NewSubmitter(dial, st),
		Reconciler: NewReconciler(dial, st),
		Book:       &BalanceBook{},
		dial:       dial,
	}
}

// State returns the current persisted model.
func (w *Wallet) State() models.WalletModel {
	return w.Store.Load()
}

// AddAccount imports an existing private key.
func (w *Wallet) AddAccount(name string, key models.PrivateKey) (models.Account, error) {
	normalized, err := keys.Normalize(key)
	if err != nil {
		return models.Account{}, err
	}
	addr, err := keys.DeriveAddress(normalized)
	if err != nil {
		return models.Account{}, err
	}
	return w.addAccount(name, normalized, addr)
}

// CreateAccount generates a fresh key and stores it.
func (w *Wallet) CreateAccount(name string) (models.Account, error) {
	key, addr, err := keys.Generate()
	if err != nil {
		return models.Account{}, err
	}
	return w.addAccount(name, key, addr)
}

func (w *Wallet) addAccount(name string, key models.PrivateKey, addr common.Address) (models.Account, error) {
	var acct models.Account
	_, err := w.Store.Mutate(func(m *models.WalletModel) error {
		for _, a := range m.Accounts {
			if strings.EqualFold(a.Address, addr.Hex()) {
				return &models.ValidationError{Field: "private key", Reason: "account " + a.Name + " already uses this key"}
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Account %d", len(m.Accounts)+1)
		}
		acct = models.Account{ID: uuid.NewString(), Name: name, PrivateKey: key, Address: addr.Hex()}
		m.Accounts = append(m.Accounts, acct)
		if m.ActiveAccountID == nil {
			id := acct.ID
			m.ActiveAccountID = &id
		}
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	logging.With("account", acct.Name, "address", acct.Address).Info("account added")
	return acct, nil
}

func (w *Wallet) DeleteAccount(id string) error {
	_, err := w.Store.DeleteAccount(id)
	return err
}

func (w *Wallet) SetActiveAccount(id string) error {
	_, err := w.Store.SetActiveAccount(id)
	return err
}

func (w *Wallet) RenameAccount(id, name string) error {
	_, err := w.Store.RenameAccount(id, name)
	return err
}

// ImportToken reads the token's metadata from the current network and
// starts watching it.
func (w *Wallet) ImportToken(ctx context.Context, contract string) (models.Token, error) {
	contract = strings.TrimSpace(contract)
	if !IsAddress(contract) {
		return models.Token{}, &models.ValidationError{Field: "contract address", Reason: "expected a 0x-prefixed 20-byte hex address"}
	}
	network := w.Store.Load().Network
	ledger, err := w.dial(ctx, network.EndpointURL)
	if err != nil {
		return models.Token{}, err
	}
	defer ledger.Close()

	meta, err := ledger.TokenMetadata(ctx, contract)
	if err != nil {
		return models.Token{}, err
	}
	return w.AddToken(models.Token{
		ContractAddress: common.HexToAddress(contract).Hex(),
		Symbol:          meta.Symbol,
		Name:            meta.Name,
		Decimals:        meta.Decimals,
	})
}

// AddToken registers a token whose metadata is already known.
func (w *Wallet) AddToken(t models.Token) (models.Token, error) {
	if !IsAddress(t.ContractAddress) {
		return models.Token{}, &models.ValidationError{Field: "contract address", Reason: "expected a 0x-prefixed 20-byte hex address"}
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return models.Token{}, &models.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := w.Store.AddToken(t); err != nil {
		return models.Token{}, err
	}
	return t, nil
}

func (w *Wallet) DeleteToken(id string) error {
	_, err := w.Store.DeleteToken(id)
	return err
}

// SetNetwork switches the endpoint. Reports already in flight for the old
// endpoint will be discarded by the balance book.
func (w *Wallet) SetNetwork(n models.NetworkConfig) error {
	_, err := w.Store.UpdateNetwork(n)
	return err
}

func (w *Wallet) ClearTransactions() error {
	_, err := w.Store.ClearTransactions()
	return err
}

// RefreshActive refreshes the active account and records the report in the
// balance book if the selection has not changed meanwhile. The bool reports
// whether the result was applied.
func (w *Wallet) RefreshActive(ctx context.Context) (models.BalanceReport, bool, error) {
	m := w.Store.Load()
	var account *models.Account
	if a, ok := m.ActiveAccount(); ok {
		account = &a
	}
	report, err := w.Aggregator.Refresh(ctx, account, m.Tokens, m.Network)
	if err != nil {
		return report, false, err
	}
	return report, w.Book.Apply(report, w.Store.Load()), nil
}

// Lookup resolves an address or transaction hash against the current network.
func (w *Wallet) Lookup(ctx context.Context, query string) (models.LookupResult, error) {
	m := w.Store.Load()
	return w.Resolver.Resolve(ctx, query, m.Network, m.Tokens)
}

// Send transfers from the active account. asset is models.NativeAsset or a
// token id.
func (w *Wallet) Send(ctx context.Context, to, amount, asset string) (models.TransactionRecord, error) {
	m := w.Store.Load()
	req := models.SendRequest{Recipient: to, Amount: amount, Asset: asset}
	if a, ok := m.ActiveAccount(); ok {
		req.Account = &a
	}
	return w.Submitter.Send(ctx, req, m.Tokens, m.Network)
}

// Reconcile updates pending transaction records from their receipts.
func (w *Wallet) Reconcile(ctx context.Context) ([]models.TransactionRecord, error) {
	return w.Reconciler.Reconcile(ctx)
}

// History returns records sent from the active account, newest first.
func (w *Wallet) History() []models.TransactionRecord {
	m := w.Store.Load()
	a, ok := m.ActiveAccount()
	if !ok {
		return nil
	}
	return m.TransactionsFrom(a.Address)
}

// TestNetwork dials n and reports chain id, height and latency.
func (w *Wallet) TestNetwork(ctx context.Context, n models.NetworkConfig) models.NetworkReport {
	report := models.NetworkReport{Network: n, Status: "error"}
	ledger, err := w.dial(ctx, n.EndpointURL)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	defer ledger.Close()

	ping := ledger.Ping(ctx)
	if ping.Err != nil {
		report.Error = ping.Err.Error()
		return report
	}
	height, err := ledger.BlockNumber(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Status = "ok"
	report.ChainID = ping.ChainID
	report.Latency = ping.Latency.String()
	report.Height = height
	return report
}

// NativeSymbol labels the base currency. The network config does not carry
// one.
const NativeSymbol = "ETH"

// ResolveAsset maps user input (native, the native symbol, a token symbol or
// a token id) to an asset selector for Send. Unknown input is returned as-is
// so Send reports it.
func ResolveAsset(m models.WalletModel, input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, models.NativeAsset) || strings.EqualFold(input, NativeSymbol) {
		return models.NativeAsset
	}
	for _, t := range m.Tokens {
		if strings.EqualFold(t.Symbol, input) || t.ID == input {
			return t.ID
		}
	}
	return input
}
