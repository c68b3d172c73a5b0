// Package keys derives addresses from secp256k1 private keys.
package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"evmwallet/pkg/models"
)

// Parse decodes a hex private key, with or without 0x prefix.
func Parse(key models.PrivateKey) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(key.Reveal())
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(raw) != 64 {
		return nil, &models.ValidationError{Field: "private key", Reason: "expected 32 bytes of hex"}
	}
	pk, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, &models.ValidationError{Field: "private key", Reason: err.Error()}
	}
	return pk, nil
}

// DeriveAddress returns the checksummed address controlled by key.
func DeriveAddress(key models.PrivateKey) (common.Address, error) {
	pk, err := Parse(key)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(pk.PublicKey), nil
}

// Normalize returns the key in canonical 0x-prefixed lowercase form.
func Normalize(key models.PrivateKey) (models.PrivateKey, error) {
	pk, err := Parse(key)
	if err != nil {
		return "", err
	}
	return models.PrivateKey("0x" + hex.EncodeToString(crypto.FromECDSA(pk))), nil
}

// Generate creates a fresh random key.
func Generate() (models.PrivateKey, common.Address, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return "", common.Address{}, fmt.Errorf("failed to generate key: %w", err)
	}
	b := crypto.FromECDSA(pk)
	defer clear(b)
	return models.PrivateKey("0x" + hex.EncodeToString(b)), crypto.PubkeyToAddress(pk.PublicKey), nil
}
