package tui

import (
	"evmwallet/pkg/units"
	"evmwallet/pkg/utils"
)

func (m model) displayAmount(a units.Amount) string {
	if m.privacyMode {
		return "****"
	}
	return utils.FormatAmount(a, m.decimals)
}

func (m model) maskString(s string) string {
	if m.privacyMode {
		return "****"
	}
	return s
}

func (m model) maskAddress(addr string) string {
	if m.privacyMode {
		return "0x**...**"
	}
	return addr
}
