package wallet

import (
	"strings"
	"testing"

	"evmwallet/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.QueryKind
		err   bool
	}{
		{"address", addrA, models.QueryAddress, false},
		{"address lowercase padded", "  " + strings.ToLower(addrB) + "\n", models.QueryAddress, false},
		{"transaction hash", txHash, models.QueryTransaction, false},
		{"upper-case hex hash", "0x" + strings.ToUpper(txHash[2:]), models.QueryTransaction, false},
		{"missing prefix", addrA[2:], "", true},
		{"41 hex chars", addrA + "0", "", true},
		{"63 hex chars", txHash[:65], "", true},
		{"non-hex", "0x" + strings.Repeat("g", 40), "", true},
		{"empty", "", "", true},
		{"ens name", "vitalik.eth", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, q, err := Classify(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, models.ErrInvalidInput)
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, strings.TrimSpace(tt.input), q)
		})
	}
}
