package wallet

import (
	"regexp"
	"strings"

	"evmwallet/pkg/models"
)

var (
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hashPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

type classifier struct {
	kind  models.QueryKind
	match func(string) bool
}

// Checked in order; the first match wins.
var classifiers = []classifier{
	{models.QueryAddress, addressPattern.MatchString},
	{models.QueryTransaction, hashPattern.MatchString},
}

// Classify decides whether raw is an address or a transaction hash. It
// returns the trimmed input alongside the kind.
func Classify(raw string) (models.QueryKind, string, error) {
	q := strings.TrimSpace(raw)
	for _, c := range classifiers {
		if c.match(q) {
			return c.kind, q, nil
		}
	}
	return "", q, &models.InvalidInputError{Input: q}
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(strings.TrimSpace(s))
}
