package units

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		input    string
		decimals uint8
		expected string
		err      error
	}{
		{"1", 18, "1000000000000000000", nil},
		{"0.5", 18, "500000000000000000", nil},
		{"1.25", 6, "1250000", nil},
		{" 42 ", 0, "42", nil},
		{"0", 18, "0", nil},
		{"-1", 18, "-1000000000000000000", nil},
		{"123456789.123456789123456789", 18, "123456789123456789123456789", nil},
		{"0.0000001", 6, "", ErrTooPrecise},
		{"1.5", 0, "", ErrTooPrecise},
		{"abc", 18, "", ErrMalformedAmount},
		{"", 18, "", ErrMalformedAmount},
		{"1e20000000", 18, "", ErrMalformedAmount},
		{"2E3", 0, "", ErrMalformedAmount},
		{"0x10", 0, "", ErrMalformedAmount},
		{"1.", 18, "", ErrMalformedAmount},
		{strings.Repeat("9", 400), 0, "", ErrMalformedAmount},
		// 2^256 - 1 is the largest value that fits.
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", 0,
			"115792089237316195423570985008687907853269984665640564039457584007913129639935", nil},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639936", 0, "", ErrOutOfRange},
		{"2" + strings.Repeat("0", 59), 18, "", ErrOutOfRange},
	}

	for _, tt := range tests {
		got, err := ParseUnits(tt.input, tt.decimals)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got.String(), tt.input)
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		input    string
		decimals uint8
		expected string
	}{
		{"2500000000000000000", 18, "2.5"},
		{"500000000", 6, "500"},
		{"1", 18, "0.000000000000000001"},
		{"0", 18, "0"},
		{"1234", 0, "1234"},
	}
	for _, tt := range tests {
		v, _ := new(big.Int).SetString(tt.input, 10)
		assert.Equal(t, tt.expected, FormatUnits(v, tt.decimals))
	}
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestParseFormatPreservesPrecision(t *testing.T) {
	in := "98765432109876543210.000000000000000001"
	v, err := ParseUnits(in, 18)
	require.NoError(t, err)
	assert.Equal(t, in, FormatUnits(v, 18))
}

func TestAmountJSON(t *testing.T) {
	a := NewAmount(big.NewInt(1500000), 6)
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"1500000","decimals":6,"formatted":"1.5"}`, string(data))

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, back.Value.Cmp(a.Value))
	assert.Equal(t, a.Decimals, back.Decimals)
}

func TestAmountZero(t *testing.T) {
	assert.True(t, Amount{}.IsZero())
	assert.Equal(t, "0", Amount{}.String())
	assert.False(t, Native(big.NewInt(1)).IsZero())
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 1.50 ")
	require.NoError(t, err)
	assert.Equal(t, "1.5", d.String())

	_, err = ParseDecimal("1e3")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}
