package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmwallet/pkg/models"
)

// Well-known development keys (Hardhat/Anvil account #0 and #1).
const (
	hardhatKey0  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	hardhatKey1  = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	hardhatAddr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestDeriveAddress(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{hardhatKey0, hardhatAddr0},
		{hardhatKey1, hardhatAddr1},
		{"  " + hardhatKey0 + "\n", hardhatAddr0},
	}
	for _, tt := range tests {
		addr, err := DeriveAddress(models.PrivateKey(tt.key))
		require.NoError(t, err)
		assert.Equal(t, tt.want, addr.Hex())
	}
}

func TestDeriveAddressIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		key, addr, err := Generate()
		require.NoError(t, err)
		for j := 0; j < 3; j++ {
			again, err := DeriveAddress(key)
			require.NoError(t, err)
			assert.Equal(t, addr, again)
		}
	}
}

func TestDeriveAddressRejectsMalformed(t *testing.T) {
	for _, k := range []string{"", "0x1234", "not-a-key", "0x" + "zz" + hardhatKey1[2:]} {
		_, err := DeriveAddress(models.PrivateKey(k))
		assert.ErrorIs(t, err, models.ErrValidation, k)
	}
}

func TestNormalize(t *testing.T) {
	k, err := Normalize(models.PrivateKey(hardhatKey1))
	require.NoError(t, err)
	assert.Equal(t, "0x"+hardhatKey1, k.Reveal())
}
