package models

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every typed error below matches exactly one of
// them (InvalidInputError matches both ErrInvalidInput and ErrValidation).
var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("input is neither an address nor a transaction hash")
	ErrNotFound     = errors.New("not found")
	ErrNetwork      = errors.New("network error")
	ErrUnknownAsset = errors.New("unknown asset")
	ErrSubmission   = errors.New("submission failed")
)

// Store invariant violations. They are validation errors: rejected locally,
// before any mutation.
var (
	ErrLastAccount     = fmt.Errorf("%w: cannot delete the last account", ErrValidation)
	ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrValidation)
	ErrTokenNotFound   = fmt.Errorf("%w: token not found", ErrValidation)
	ErrDuplicateID     = fmt.Errorf("%w: duplicate id", ErrValidation)
	ErrDuplicateToken  = fmt.Errorf("%w: token contract already watched", ErrValidation)
	ErrRecordNotFound  = fmt.Errorf("%w: transaction record not found", ErrValidation)
	ErrNoActiveAccount = fmt.Errorf("%w: no active account", ErrValidation)
)

// ValidationError reports a malformed field. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidInputError is returned by lookup classification.
type InvalidInputError struct {
	Input string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid query %q: expected a 0x-prefixed address or transaction hash", e.Input)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrValidation
}

// NotFoundError reports an entity absent on chain.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NetworkError wraps a failed ledger call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// UnknownAssetError reports an asset selector missing from the token registry.
type UnknownAssetError struct {
	Asset string
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("unknown asset %q", e.Asset)
}

func (e *UnknownAssetError) Is(target error) bool { return target == ErrUnknownAsset }

// SubmissionError reports a rejected write.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }
