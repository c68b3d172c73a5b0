package wallet

import (
	"context"
	"strings"
	"time"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/store"
	"evmwallet/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Submitter validates and broadcasts transfers and logs them as pending.
type Submitter struct {
	dial  Dialer
	store *store.Store
	now   func() time.Time
	newID func() string
}

func NewSubmitter(dial Dialer, st *store.Store) *Submitter {
	return &Submitter{dial: dial, store: st, now: time.Now, newID: uuid.NewString}
}

// Send validates req, submits it and prepends a pending record. Validation
// failures never reach the network. A rejected submission leaves state
// untouched.
func (s *Submitter) Send(ctx context.Context, req models.SendRequest, tokens []models.Token, network models.NetworkConfig) (models.TransactionRecord, error) {
	if req.Account == nil {
		return models.TransactionRecord{}, &models.ValidationError{Field: "account", Reason: "no account selected"}
	}
	recipient := strings.TrimSpace(req.Recipient)
	if !IsAddress(recipient) {
		return models.TransactionRecord{}, &models.ValidationError{Field: "recipient", Reason: "expected a 0x-prefixed 20-byte hex address"}
	}

	amount := strings.TrimSpace(req.Amount)
	d, err := units.ParseDecimal(amount)
	if err != nil {
		return models.TransactionRecord{}, &models.ValidationError{Field: "amount", Reason: err.Error()}
	}
	if d.Sign() <= 0 {
		return models.TransactionRecord{}, &models.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	var token *models.Token
	decimals := units.NativeDecimals
	if req.Asset != "" && req.Asset != models.NativeAsset {
		for i := range tokens {
			if tokens[i].ID == req.Asset {
				token = &tokens[i]
				break
			}
		}
		if token == nil {
			return models.TransactionRecord{}, &models.UnknownAssetError{Asset: req.Asset}
		}
		decimals = token.Decimals
	}

	// Precision and range depend on the asset.
	if _, err := units.ParseUnits(amount, decimals); err != nil {
		return models.TransactionRecord{}, &models.ValidationError{Field: "amount", Reason: err.Error()}
	}

	ledger, err := s.dial(ctx, network.EndpointURL)
	if err != nil {
		return models.TransactionRecord{}, &models.SubmissionError{Err: err}
	}
	defer ledger.Close()

	var hash common.Hash
	if token == nil {
		hash, err = ledger.SubmitNativeTransfer(ctx, req.Account.PrivateKey, recipient, amount)
	} else {
		hash, err = ledger.SubmitTokenTransfer(ctx, req.Account.PrivateKey, token.ContractAddress, recipient, amount, token.Decimals)
	}
	if err != nil {
		return models.TransactionRecord{}, &models.SubmissionError{Err: err}
	}

	rec := models.TransactionRecord{
		ID:        s.newID(),
		Hash:      hash.Hex(),
		From:      req.Account.Address,
		To:        recipient,
		Value:     amount,
		Timestamp: s.now().UnixMilli(),
		Status:    models.StatusPending,
	}
	if token != nil {
		rec.TokenSymbol = token.Symbol
	}
	if _, err := s.store.AddTransaction(rec); err != nil {
		logging.With("hash", rec.Hash).Error("broadcast transaction could not be logged", "err", err)
	}
	return rec, nil
}
