package tui

import (
	"context"
	"sort"
	"strings"
	"time"

	"evmwallet/pkg/models"
	"evmwallet/pkg/utils"
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// opTimeout bounds the network calls started from the UI.
const opTimeout = 60 * time.Second

// filterTransactions returns the records touching address. "out" keeps
// records sent from address, "in" keeps records sent to it from another
// local account.
func filterTransactions(txs []models.TransactionRecord, address, filter string) []models.TransactionRecord {
	var out []models.TransactionRecord
	for _, tx := range txs {
		isFrom := strings.EqualFold(tx.From, address)
		isTo := strings.EqualFold(tx.To, address)
		switch filter {
		case "out":
			if isFrom {
				out = append(out, tx)
			}
		case "in":
			if isTo && !isFrom {
				out = append(out, tx)
			}
		default:
			if isFrom || isTo {
				out = append(out, tx)
			}
		}
	}
	return out
}

func nextFilter(f string) string {
	switch f {
	case "all":
		return "out"
	case "out":
		return "in"
	default:
		return "all"
	}
}

// cycleAccount returns the id of the account dir steps away from the active
// one, wrapping around.
func cycleAccount(state models.WalletModel, dir int) (string, bool) {
	n := len(state.Accounts)
	if n == 0 {
		return "", false
	}
	idx := 0
	if state.ActiveAccountID != nil {
		for i, a := range state.Accounts {
			if a.ID == *state.ActiveAccountID {
				idx = i
				break
			}
		}
	}
	idx = ((idx+dir)%n + n) % n
	return state.Accounts[idx].ID, true
}

// applyReport records report if it belongs to the current selection. The
// sparkline restarts whenever the selection changes.
func (m *model) applyReport(report models.BalanceReport) bool {
	sel := wallet.CurrentSelection(m.state)
	if report.Selection != sel {
		return false
	}
	if m.historySel != sel {
		m.history = nil
		m.historySel = sel
	}
	m.report = &report
	m.refreshErr = nil
	m.history = append(m.history, utils.AmountToFloat64(report.Native))
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	return true
}

// currentReport returns the report only while it still matches the
// selection.
func (m model) currentReport() *models.BalanceReport {
	if m.report == nil || m.report.Selection != wallet.CurrentSelection(m.state) {
		return nil
	}
	return m.report
}

type tokenRow struct {
	symbol  string
	balance string
	failed  bool
}

// tokenRows orders token balances by the registry order.
func (m model) tokenRows(report *models.BalanceReport) []tokenRow {
	var rows []tokenRow
	for _, t := range m.state.Tokens {
		row := tokenRow{symbol: t.Symbol, balance: "…"}
		if report != nil {
			if tb, ok := report.Tokens[t.ID]; ok {
				row.failed = tb.Failed
				row.balance = utils.FormatAmount(tb.Amount, m.decimals)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sortedPresets() []models.NetworkConfig {
	presets := append([]models.NetworkConfig{}, models.PresetNetworks...)
	sort.SliceStable(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets
}

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func lookupCmd(wl *wallet.Wallet, q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := wl.Lookup(ctx, q)
		return lookupResultMsg{res: res, err: err}
	}
}

func sendCmd(wl *wallet.Wallet, to, amount, asset string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		rec, err := wl.Send(ctx, to, amount, asset)
		return sendResultMsg{rec: rec, err: err}
	}
}

func importTokenCmd(wl *wallet.Wallet, contract string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		tok, err := wl.ImportToken(ctx, contract)
		if err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: "Watching " + tok.Symbol}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
