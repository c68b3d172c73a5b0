package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateKeyRedaction(t *testing.T) {
	k := PrivateKey("0xdeadbeef")
	for _, verb := range []string{"%v", "%s", "%q", "%#v", "%+v"} {
		assert.Equal(t, "[REDACTED]", fmt.Sprintf(verb, k), verb)
	}
	acc := Account{ID: "1", PrivateKey: k}
	assert.NotContains(t, fmt.Sprintf("%+v", acc), "deadbeef")
	assert.Equal(t, "0xdeadbeef", k.Reveal())
}

func TestPrivateKeyPersistsRaw(t *testing.T) {
	data, err := json.Marshal(Account{ID: "1", PrivateKey: "0xabc"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"privateKey":"0xabc"`)
}

func TestDefaultModel(t *testing.T) {
	m := DefaultModel()
	assert.Empty(t, m.Accounts)
	assert.NotNil(t, m.Accounts)
	assert.Nil(t, m.ActiveAccountID)
	assert.Equal(t, "Ganache", m.Network.Name)
	assert.Equal(t, "http://localhost:8545", m.Network.EndpointURL)
}

func TestPublicStripsKeys(t *testing.T) {
	id := "a"
	m := DefaultModel()
	m.Accounts = append(m.Accounts, Account{ID: id, Name: "A", PrivateKey: "0xsecret", Address: "0x1"})
	m.ActiveAccountID = &id

	data, err := json.Marshal(m.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "0xsecret")
	assert.Contains(t, string(data), `"activeAccountId":"a"`)
}

func TestCloneDoesNotAlias(t *testing.T) {
	id := "a"
	m := DefaultModel()
	m.Accounts = []Account{{ID: id}}
	m.ActiveAccountID = &id

	c := m.Clone()
	c.Accounts[0].Name = "changed"
	*c.ActiveAccountID = "b"

	assert.Equal(t, "", m.Accounts[0].Name)
	assert.Equal(t, "a", *m.ActiveAccountID)
}

func TestTransactionsFrom(t *testing.T) {
	m := DefaultModel()
	m.Transactions = []TransactionRecord{
		{ID: "1", From: "0xAbC"},
		{ID: "2", From: "0xdef"},
		{ID: "3", From: "0xabc"},
	}
	txs := m.TransactionsFrom("0xABC")
	require.Len(t, txs, 2)
	assert.Equal(t, "1", txs[0].ID)
	assert.Equal(t, "3", txs[1].ID)
}

func TestFindPreset(t *testing.T) {
	n, ok := FindPreset("sepolia testnet")
	assert.True(t, ok)
	assert.Equal(t, "Sepolia Testnet", n.Name)

	_, ok = FindPreset("nope")
	assert.False(t, ok)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&ValidationError{Field: "amount", Reason: "must be positive"}, ErrValidation},
		{&InvalidInputError{Input: "xyz"}, ErrInvalidInput},
		{&InvalidInputError{Input: "xyz"}, ErrValidation},
		{&NotFoundError{Kind: "transaction", ID: "0x1"}, ErrNotFound},
		{&NetworkError{Op: "eth_getBalance", Err: errors.New("boom")}, ErrNetwork},
		{&UnknownAssetError{Asset: "t1"}, ErrUnknownAsset},
		{&SubmissionError{Err: errors.New("nonce too low")}, ErrSubmission},
		{ErrLastAccount, ErrValidation},
		{fmt.Errorf("wrapped: %w", &NetworkError{Op: "x", Err: errors.New("y")}), ErrNetwork},
	}
	for _, tt := range tests {
		assert.True(t, errors.Is(tt.err, tt.sentinel), "%v should match %v", tt.err, tt.sentinel)
	}

	assert.False(t, errors.Is(&NetworkError{Op: "x", Err: errors.New("y")}, ErrValidation))

	inner := errors.New("root cause")
	assert.ErrorIs(t, &SubmissionError{Err: &NetworkError{Op: "send", Err: inner}}, inner)
}

func TestOptionalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Optional[uint64] `json:"a"`
		B Optional[uint64] `json:"b"`
	}{A: Some[uint64](7), B: None[uint64]("node unreachable")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":null}`, string(data))

	var back struct {
		A Optional[uint64] `json:"a"`
		B Optional[uint64] `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.A.Get()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)
	assert.False(t, back.B.Valid)
}

func TestChainBlockTime(t *testing.T) {
	b := ChainBlock{Timestamp: 1600000000}
	assert.Equal(t, time.Date(2020, 9, 13, 12, 26, 40, 0, time.UTC), b.Time())
}
