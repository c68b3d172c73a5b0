package utils

import (
	"strings"

	"evmwallet/pkg/units"

	"github.com/shopspring/decimal"
)

// DisplayDecimals is the default number of fractional digits shown for
// balances.
const DisplayDecimals = 4

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

// FormatAmount rounds a to at most decimals fractional digits, drops
// trailing zeros and inserts thousands separators.
func FormatAmount(a units.Amount, decimals int) string {
	if a.Value == nil {
		return "0"
	}
	d := decimal.NewFromBigInt(a.Value, -int32(a.Decimals)).Round(int32(decimals))
	return AddCommas(d.String())
}

// AmountToFloat64 is for charts only; it loses precision.
func AmountToFloat64(a units.Amount) float64 {
	if a.Value == nil {
		return 0
	}
	return decimal.NewFromBigInt(a.Value, -int32(a.Decimals)).InexactFloat64()
}
