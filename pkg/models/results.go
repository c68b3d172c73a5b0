package models

import (
	"math/big"
	"time"

	"evmwallet/pkg/units"
)

// Selection identifies which account on which endpoint a result belongs to.
type Selection struct {
	AccountID string `json:"accountId"`
	Endpoint  string `json:"endpoint"`
}

// TokenBalance is one arm of a balance fan-out. Failed arms carry the error
// text and a zero amount.
type TokenBalance struct {
	TokenID string       `json:"tokenId"`
	Symbol  string       `json:"symbol"`
	Amount  units.Amount `json:"amount"`
	Failed  bool         `json:"failed"`
	Error   string       `json:"error,omitempty"`
}

// BalanceReport is the result of one refresh. Tokens is keyed by token id.
type BalanceReport struct {
	Selection
	Address   string                  `json:"address"`
	Native    units.Amount            `json:"native"`
	Tokens    map[string]TokenBalance `json:"tokens"`
	FetchedAt time.Time               `json:"fetchedAt"`
}

// Empty reports whether the refresh ran without an account.
func (r BalanceReport) Empty() bool {
	return r.AccountID == ""
}

// QueryKind is the outcome of classifying lookup input.
type QueryKind string

const (
	QueryAddress     QueryKind = "address"
	QueryTransaction QueryKind = "transaction"
)

// LookupResult is a tagged variant: exactly one of Address or Transaction is
// set, matching Kind.
type LookupResult struct {
	Kind        QueryKind          `json:"kind"`
	Address     *AddressResult     `json:"address,omitempty"`
	Transaction *TransactionResult `json:"transaction,omitempty"`
}

// AddressResult describes an arbitrary address on chain.
type AddressResult struct {
	Address    string                  `json:"address"`
	Native     units.Amount            `json:"native"`
	IsContract bool                    `json:"isContract"`
	Tokens     map[string]TokenBalance `json:"tokens"`
}

// TokenTransfer is a decoded ERC-20 transfer call.
type TokenTransfer struct {
	TokenID   string       `json:"tokenId"`
	Symbol    string       `json:"symbol"`
	Recipient string       `json:"recipient"`
	Amount    units.Amount `json:"amount"`
}

// TransactionResult describes a transaction with optional receipt and timing.
type TransactionResult struct {
	Hash          string              `json:"hash"`
	From          string              `json:"from"`
	To            string              `json:"to,omitempty"` // empty for contract creation
	Value         units.Amount        `json:"value"`
	Nonce         uint64              `json:"nonce"`
	Gas           uint64              `json:"gas"`
	GasPrice      *big.Int            `json:"gasPrice,omitempty"`
	BlockNumber   *uint64             `json:"blockNumber"`
	Status        TxStatus            `json:"status"`
	Receipt       *ChainReceipt       `json:"receipt,omitempty"`
	Timestamp     Optional[time.Time] `json:"timestamp"`
	Confirmations Optional[uint64]    `json:"confirmations"`
	TokenTransfer *TokenTransfer      `json:"tokenTransfer,omitempty"`
}

// ChainTransaction is a transaction as reported by the node.
type ChainTransaction struct {
	Hash        string
	From        string
	To          string
	Value       *big.Int
	Nonce       uint64
	Gas         uint64
	GasPrice    *big.Int
	Input       []byte
	BlockNumber *uint64
}

// Mined reports whether the node placed the transaction in a block.
func (t ChainTransaction) Mined() bool {
	return t.BlockNumber != nil
}

// ChainReceipt is the post-execution record of a mined transaction.
type ChainReceipt struct {
	Succeeded       bool   `json:"succeeded"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         uint64 `json:"gasUsed"`
	ContractAddress string `json:"contractAddress,omitempty"`
}

// Status maps the receipt outcome onto the record status.
func (r ChainReceipt) Status() TxStatus {
	if r.Succeeded {
		return StatusSuccess
	}
	return StatusFailed
}

// ChainBlock is the subset of a block header the wallet needs.
type ChainBlock struct {
	Number    uint64
	Hash      string
	Timestamp uint64
}

// Time returns the block timestamp.
func (b ChainBlock) Time() time.Time {
	return time.Unix(int64(b.Timestamp), 0).UTC()
}

// SendRequest is a user's transfer intent. Asset is NativeAsset or a token id.
type SendRequest struct {
	Account   *Account
	Recipient string
	Amount    string
	Asset     string
}
