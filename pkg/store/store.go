package store

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
)

// StateKey is the KV key the wallet document is stored under.
const StateKey = "wallet-state"

// Store owns the persisted WalletModel. Every read-modify-write goes through
// Mutate and is serialized by mu.
type Store struct {
	kv KV
	mu sync.Mutex
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

// Load returns the persisted model, or the default model when nothing is
// stored or the stored document cannot be parsed.
func (s *Store) Load() models.WalletModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() models.WalletModel {
	data, err := s.kv.Get(StateKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logging.With("component", "store").Warn("failed to read state, using defaults", "err", err)
		}
		return models.DefaultModel()
	}

	m := models.DefaultModel()
	if err := json.Unmarshal(data, &m); err != nil {
		logging.With("component", "store").Warn("stored state is corrupt, using defaults", "err", err)
		return models.DefaultModel()
	}
	normalize(&m)
	return m
}

// normalize repairs the loaded document so the model invariants hold.
func normalize(m *models.WalletModel) {
	if m.Accounts == nil {
		m.Accounts = []models.Account{}
	}
	if m.Tokens == nil {
		m.Tokens = []models.Token{}
	}
	if m.Transactions == nil {
		m.Transactions = []models.TransactionRecord{}
	}
	if m.Network.EndpointURL == "" {
		m.Network = models.DefaultNetwork
	}
	if m.ActiveAccountID != nil {
		if _, ok := m.Account(*m.ActiveAccountID); !ok {
			m.ActiveAccountID = nil
			if len(m.Accounts) > 0 {
				id := m.Accounts[0].ID
				m.ActiveAccountID = &id
			}
		}
	}
}

// Mutate loads the model, applies fn and persists the result. When fn fails
// nothing is written and the error is returned unchanged. A failed write is
// logged; the mutated model is still returned.
func (s *Store) Mutate(fn func(*models.WalletModel) error) (models.WalletModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	next := m.Clone()
	if err := fn(&next); err != nil {
		return m, err
	}
	s.persist(next)
	return next, nil
}

func (s *Store) persist(m models.WalletModel) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		logging.Errorf("failed to encode state: %v", err)
		return
	}
	if err := s.kv.Set(StateKey, data); err != nil {
		logging.With("component", "store").Error("failed to persist state", "err", err)
	}
}

// AddAccount appends a, making it active when no account is active.
func (s *Store) AddAccount(a models.Account) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		if a.ID == "" {
			return &models.ValidationError{Field: "account id", Reason: "must not be empty"}
		}
		if _, ok := m.Account(a.ID); ok {
			return models.ErrDuplicateID
		}
		m.Accounts = append(m.Accounts, a)
		if m.ActiveAccountID == nil {
			id := a.ID
			m.ActiveAccountID = &id
		}
		return nil
	})
}

// DeleteAccount removes an account. The last account cannot be removed.
// Removing the active account activates the first remaining one.
func (s *Store) DeleteAccount(id string) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		idx := -1
		for i, a := range m.Accounts {
			if a.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.ErrAccountNotFound
		}
		if len(m.Accounts) == 1 {
			return models.ErrLastAccount
		}
		m.Accounts = append(m.Accounts[:idx], m.Accounts[idx+1:]...)
		if m.ActiveAccountID != nil && *m.ActiveAccountID == id {
			m.ActiveAccountID = nil
			if len(m.Accounts) > 0 {
				next := m.Accounts[0].ID
				m.ActiveAccountID = &next
			}
		}
		return nil
	})
}

func (s *Store) SetActiveAccount(id string) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		if _, ok := m.Account(id); !ok {
			return models.ErrAccountNotFound
		}
		m.ActiveAccountID = &id
		return nil
	})
}

func (s *Store) RenameAccount(id, name string) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return &models.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		for i := range m.Accounts {
			if m.Accounts[i].ID == id {
				m.Accounts[i].Name = name
				return nil
			}
		}
		return models.ErrAccountNotFound
	})
}

// AddToken registers a watched token. Contract addresses are compared
// case-insensitively.
func (s *Store) AddToken(t models.Token) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		if t.ID == "" {
			return &models.ValidationError{Field: "token id", Reason: "must not be empty"}
		}
		for _, existing := range m.Tokens {
			if existing.ID == t.ID {
				return models.ErrDuplicateID
			}
			if strings.EqualFold(existing.ContractAddress, t.ContractAddress) {
				return models.ErrDuplicateToken
			}
		}
		m.Tokens = append(m.Tokens, t)
		return nil
	})
}

func (s *Store) DeleteToken(id string) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		for i, t := range m.Tokens {
			if t.ID == id {
				m.Tokens = append(m.Tokens[:i], m.Tokens[i+1:]...)
				return nil
			}
		}
		return models.ErrTokenNotFound
	})
}

// AddTransaction prepends rec so the log stays newest first.
func (s *Store) AddTransaction(rec models.TransactionRecord) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		if rec.ID == "" {
			return &models.ValidationError{Field: "transaction id", Reason: "must not be empty"}
		}
		for _, existing := range m.Transactions {
			if existing.ID == rec.ID {
				return models.ErrDuplicateID
			}
		}
		m.Transactions = append([]models.TransactionRecord{rec}, m.Transactions...)
		return nil
	})
}

// UpdateTransactionStatus changes the status of one record. It is the only
// field of a record that may change after creation.
func (s *Store) UpdateTransactionStatus(id string, status models.TxStatus) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		switch status {
		case models.StatusPending, models.StatusSuccess, models.StatusFailed:
		default:
			return &models.ValidationError{Field: "status", Reason: "unknown status " + string(status)}
		}
		for i := range m.Transactions {
			if m.Transactions[i].ID == id {
				m.Transactions[i].Status = status
				return nil
			}
		}
		return models.ErrRecordNotFound
	})
}

func (s *Store) ClearTransactions() (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		m.Transactions = []models.TransactionRecord{}
		return nil
	})
}

// UpdateNetwork replaces the network wholesale.
func (s *Store) UpdateNetwork(n models.NetworkConfig) (models.WalletModel, error) {
	return s.Mutate(func(m *models.WalletModel) error {
		n.Name = strings.TrimSpace(n.Name)
		n.EndpointURL = strings.TrimSpace(n.EndpointURL)
		if n.Name == "" {
			return &models.ValidationError{Field: "network name", Reason: "must not be empty"}
		}
		if n.EndpointURL == "" {
			return &models.ValidationError{Field: "endpoint url", Reason: "must not be empty"}
		}
		m.Network = n
		return nil
	})
}
