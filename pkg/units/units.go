// Package units converts between human decimal strings and base-unit integers.
// All arithmetic is exact; floats never touch an amount.
package units

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the precision of the native currency (wei per ether).
const NativeDecimals uint8 = 18

// MaxBits is the width of an EVM word. Base-unit values must fit in it.
const MaxBits = 256

// maxAmountLen covers a 78-digit uint256 plus 255 fractional digits.
const maxAmountLen = 340

var (
	ErrMalformedAmount = errors.New("amount is not a decimal number")
	ErrTooPrecise      = errors.New("amount has more fractional digits than the asset supports")
	ErrOutOfRange      = errors.New("amount does not fit in 256 bits")
)

// Plain decimal notation only; exponents are rejected.
var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseDecimal validates s as a plain decimal number and returns it.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen || !decimalPattern.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d, nil
}

// ParseUnits turns a decimal string such as "1.25" into base units for an
// asset with the given decimals. The sign is preserved; callers decide whether
// zero or negative values are acceptable. The magnitude must fit in MaxBits.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %q (max %d)", ErrTooPrecise, strings.TrimSpace(s), decimals)
	}
	v := shifted.BigInt()
	if v.BitLen() > MaxBits {
		return nil, fmt.Errorf("%w: %q", ErrOutOfRange, strings.TrimSpace(s))
	}
	return v, nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// Amount is an integer quantity of base units together with the precision
// needed to display it.
type Amount struct {
	Value    *big.Int
	Decimals uint8
}

func NewAmount(v *big.Int, decimals uint8) Amount {
	if v == nil {
		v = new(big.Int)
	}
	return Amount{Value: v, Decimals: decimals}
}

// Native wraps a wei value.
func Native(wei *big.Int) Amount {
	return NewAmount(wei, NativeDecimals)
}

func (a Amount) String() string {
	return FormatUnits(a.Value, a.Decimals)
}

// IsZero reports whether the amount is unset or zero.
func (a Amount) IsZero() bool {
	return a.Value == nil || a.Value.Sign() == 0
}

type amountJSON struct {
	Value     string `json:"value"`
	Decimals  uint8  `json:"decimals"`
	Formatted string `json:"formatted"`
}

func (a Amount) MarshalJSON() ([]byte, error) {
	v := a.Value
	if v == nil {
		v = new(big.Int)
	}
	return json.Marshal(amountJSON{Value: v.String(), Decimals: a.Decimals, Formatted: a.String()})
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, ok := new(big.Int).SetString(raw.Value, 10)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedAmount, raw.Value)
	}
	a.Value = v
	a.Decimals = raw.Decimals
	return nil
}
