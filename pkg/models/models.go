package models

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus string

const (
	StatusPending TxStatus = "pending"
	StatusSuccess TxStatus = "success"
	StatusFailed  TxStatus = "failed"
)

// NativeAsset selects the network's base currency in a send request.
const NativeAsset = "native"

// PrivateKey is a hex-encoded secp256k1 key. It is persisted as-is but never
// printed through the fmt family.
type PrivateKey string

func (k PrivateKey) String() string { return "[REDACTED]" }

// Format implements fmt.Formatter so %v, %s, %q and %#v all redact.
func (k PrivateKey) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, "[REDACTED]")
}

// Reveal returns the raw key material.
func (k PrivateKey) Reveal() string { return string(k) }

// Account holds a private key and the address derived from it.
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PrivateKey PrivateKey `json:"privateKey"`
	Address    string     `json:"address"`
}

// Token is a watched ERC-20 contract.
type Token struct {
	ID              string `json:"id"`
	ContractAddress string `json:"address"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        uint8  `json:"decimals"`
}

// TransactionRecord is the local log entry written when a transfer is submitted.
type TransactionRecord struct {
	ID          string   `json:"id"`
	Hash        string   `json:"hash"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Value       string   `json:"value"`
	TokenSymbol string   `json:"token,omitempty"`
	Timestamp   int64    `json:"timestamp"` // Unix milliseconds
	Status      TxStatus `json:"status"`
}

// Time returns the record timestamp as a time.Time.
func (r TransactionRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Asset returns the token symbol, or fallback for native transfers.
func (r TransactionRecord) Asset(fallback string) string {
	if r.TokenSymbol == "" {
		return fallback
	}
	return r.TokenSymbol
}

// NetworkConfig names the single remote endpoint the wallet talks to.
type NetworkConfig struct {
	Name        string `json:"name"`
	EndpointURL string `json:"url"`
}

// WalletModel is the aggregate persisted as one document.
type WalletModel struct {
	Accounts        []Account           `json:"accounts"`
	ActiveAccountID *string             `json:"activeAccountId"`
	Tokens          []Token             `json:"tokens"`
	Transactions    []TransactionRecord `json:"transactions"`
	Network         NetworkConfig       `json:"rpcNetwork"`
}

// PresetNetworks are the endpoints offered in the network picker.
var PresetNetworks = []NetworkConfig{
	{Name: "Keeway", EndpointURL: "https://rpc.keeway.io"},
	{Name: "Ganache", EndpointURL: "http://localhost:8545"},
	{Name: "Hardhat", EndpointURL: "http://localhost:8545"},
	{Name: "Ethereum Mainnet", EndpointURL: "https://mainnet.infura.io/v3/YOUR_PROJECT_ID"},
	{Name: "Sepolia Testnet", EndpointURL: "https://sepolia.infura.io/v3/YOUR_PROJECT_ID"},
}

// DefaultNetwork is used when nothing has been persisted yet.
var DefaultNetwork = NetworkConfig{Name: "Ganache", EndpointURL: "http://localhost:8545"}

// DefaultModel returns a fresh model with empty collections.
func DefaultModel() WalletModel {
	return WalletModel{
		Accounts:     []Account{},
		Tokens:       []Token{},
		Transactions: []TransactionRecord{},
		Network:      DefaultNetwork,
	}
}

// FindPreset looks a preset up by case-insensitive name.
func FindPreset(name string) (NetworkConfig, bool) {
	for _, n := range PresetNetworks {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return NetworkConfig{}, false
}

// ActiveAccount returns the active account, if any.
func (m WalletModel) ActiveAccount() (Account, bool) {
	if m.ActiveAccountID == nil {
		return Account{}, false
	}
	return m.Account(*m.ActiveAccountID)
}

// Account finds an account by id.
func (m WalletModel) Account(id string) (Account, bool) {
	for _, a := range m.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Token finds a watched token by id.
func (m WalletModel) Token(id string) (Token, bool) {
	for _, t := range m.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}

// TransactionsFrom returns the records sent from address, newest first.
func (m WalletModel) TransactionsFrom(address string) []TransactionRecord {
	var out []TransactionRecord
	for _, tx := range m.Transactions {
		if strings.EqualFold(tx.From, address) {
			out = append(out, tx)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (m WalletModel) Clone() WalletModel {
	c := WalletModel{
		Accounts:     append([]Account{}, m.Accounts...),
		Tokens:       append([]Token{}, m.Tokens...),
		Transactions: append([]TransactionRecord{}, m.Transactions...),
		Network:      m.Network,
	}
	if m.ActiveAccountID != nil {
		id := *m.ActiveAccountID
		c.ActiveAccountID = &id
	}
	return c
}

// PublicAccount is an Account without key material.
type PublicAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PublicModel is the WalletModel as exposed over the API.
type PublicModel struct {
	Accounts        []PublicAccount     `json:"accounts"`
	ActiveAccountID *string             `json:"activeAccountId"`
	Tokens          []Token             `json:"tokens"`
	Transactions    []TransactionRecord `json:"transactions"`
	Network         NetworkConfig       `json:"rpcNetwork"`
}

// Public strips private keys from the model.
func (m WalletModel) Public() PublicModel {
	accounts := make([]PublicAccount, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		accounts = append(accounts, PublicAccount{ID: a.ID, Name: a.Name, Address: a.Address})
	}
	c := m.Clone()
	return PublicModel{
		Accounts:        accounts,
		ActiveAccountID: c.ActiveAccountID,
		Tokens:          c.Tokens,
		Transactions:    c.Transactions,
		Network:         c.Network,
	}
}

// RPCLatencyData contains the result of a latency check.
type RPCLatencyData struct {
	RPCURL  string        `json:"rpc_url"`
	ChainID int64         `json:"chain_id,omitempty"`
	Latency time.Duration `json:"latency"`
	Err     error         `json:"-"`
}

// TokenMetadata is what an ERC-20 contract reports about itself.
type TokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// NetworkReport is the output of a network diagnostics run.
type NetworkReport struct {
	Network NetworkConfig `json:"network"`
	Status  string        `json:"status"` // "ok" or "error"
	ChainID int64         `json:"chain_id,omitempty"`
	Latency string        `json:"latency,omitempty"`
	Height  uint64        `json:"block_number,omitempty"`
	Error   string        `json:"error,omitempty"`
}
