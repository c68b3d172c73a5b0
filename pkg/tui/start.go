package tui

import (
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal UI until the user quits.
func Start(wl *wallet.Wallet, w *watcher.Watcher, displayDecimals int, version string) error {
	Version = version
	m := initialModel(wl, w, displayDecimals)
	defer w.Unsubscribe(m.sub)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
