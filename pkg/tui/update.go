package tui

import (
	"fmt"
	"strings"
	"time"

	"evmwallet/pkg/models"
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case watcher.Event:
		cmds = append(cmds, listenForWatcher(m.sub))
		m.state = m.wallet.State()

		switch msg.Type {
		case watcher.EventBalancesUpdated:
			if report, ok := msg.Data.(models.BalanceReport); ok && m.applyReport(report) {
				m.loading = false
				m.lastUpdate = time.Now()
			}
		case watcher.EventRefreshFailed:
			m.loading = false
			m.refreshErr = fmt.Errorf("%v", msg.Data)
		case watcher.EventTransactionsUpdated:
			if changed, ok := msg.Data.([]models.TransactionRecord); ok {
				m.statusMessage = fmt.Sprintf("%d transaction(s) confirmed", len(changed))
				cmds = append(cmds, clearStatusAfter(3*time.Second))
			}
		}

	case lookupResultMsg:
		m.busy = false
		if msg.err != nil {
			m.lookupErr = msg.err
			m.lookupResult = nil
		} else {
			m.lookupErr = nil
			res := msg.res
			m.lookupResult = &res
		}

	case sendResultMsg:
		m.busy = false
		if msg.err != nil {
			m.statusMessage = "Send failed: " + msg.err.Error()
		} else {
			m.state = m.wallet.State()
			m.statusMessage = "Submitted " + msg.rec.Hash
			m.screen = screenMain
			m.resetInputs()
			m.watcher.Trigger()
		}
		cmds = append(cmds, clearStatusAfter(5*time.Second))

	case opResultMsg:
		m.busy = false
		m.state = m.wallet.State()
		if msg.err != nil {
			m.statusMessage = "Error: " + msg.err.Error()
		} else {
			m.statusMessage = msg.status
			m.screen = screenMain
			m.resetInputs()
			m.watcher.Trigger()
		}
		cmds = append(cmds, clearStatusAfter(3*time.Second))

	case clearStatusMsg:
		m.statusMessage = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.screen {
		case screenMain:
			m, cmd = m.updateMain(msg)
		case screenHistory:
			m, cmd = m.updateHistory(msg)
		case screenNetwork:
			m, cmd = m.updateNetwork(msg)
		case screenConfirmDelete:
			m, cmd = m.updateConfirmDelete(msg)
		case screenHelp:
			m.screen = screenMain
		default:
			m, cmd = m.updateForm(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateMain(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		dir := 1
		if msg.String() == "shift+tab" {
			dir = -1
		}
		if id, ok := cycleAccount(m.state, dir); ok {
			if err := m.wallet.SetActiveAccount(id); err != nil {
				m.statusMessage = err.Error()
				break
			}
			m.state = m.wallet.State()
			m.loading = true
			m.watcher.Trigger()
		}
	case "r":
		m.loading = true
		m.watcher.Trigger()
	case "c":
		if a, ok := m.state.ActiveAccount(); ok {
			if err := clipboard.WriteAll(a.Address); err != nil {
				m.statusMessage = "Failed to copy to clipboard"
			} else {
				m.statusMessage = "Address copied to clipboard!"
			}
			return m, clearStatusAfter(2 * time.Second)
		}
	case "p":
		m.privacyMode = !m.privacyMode
	case "h":
		m.screen = screenHistory
		m.txListIdx = 0
	case "l":
		m.screen = screenLookup
		return m, m.lookupInput.Focus()
	case "s":
		m.screen = screenSend
		m.sendFocus = 0
		return m, m.sendInputs[0].Focus()
	case "a":
		m.screen = screenAddAccount
		m.accountFocus = 0
		return m, m.accountInputs[0].Focus()
	case "n":
		a, err := m.wallet.CreateAccount("")
		if err != nil {
			m.statusMessage = "Error: " + err.Error()
		} else {
			m.state = m.wallet.State()
			m.statusMessage = "Created " + a.Name
		}
		return m, clearStatusAfter(3 * time.Second)
	case "t":
		m.screen = screenAddToken
		return m, m.tokenInput.Focus()
	case "w":
		m.screen = screenNetwork
		m.networkIdx = 0
	case "d":
		if _, ok := m.state.ActiveAccount(); ok {
			m.screen = screenConfirmDelete
		}
	case "?":
		m.screen = screenHelp
	}
	return m, nil
}

func (m model) updateHistory(msg tea.KeyMsg) (model, tea.Cmd) {
	a, _ := m.state.ActiveAccount()
	txs := filterTransactions(m.state.Transactions, a.Address, m.txFilter)
	switch msg.String() {
	case "esc", "h", "q":
		m.screen = screenMain
	case "f":
		m.txFilter = nextFilter(m.txFilter)
		m.txListIdx = 0
	case "up", "k":
		if m.txListIdx > 0 {
			m.txListIdx--
		}
	case "down", "j":
		if m.txListIdx < len(txs)-1 {
			m.txListIdx++
		}
	case "c":
		if m.txListIdx < len(txs) {
			if err := clipboard.WriteAll(txs[m.txListIdx].Hash); err == nil {
				m.statusMessage = "Hash copied to clipboard!"
				return m, clearStatusAfter(2 * time.Second)
			}
		}
	case "enter":
		if m.txListIdx < len(txs) {
			m.screen = screenLookup
			m.lookupInput.SetValue(txs[m.txListIdx].Hash)
			m.busy = true
			return m, lookupCmd(m.wallet, txs[m.txListIdx].Hash)
		}
	}
	return m, nil
}

func (m model) updateNetwork(msg tea.KeyMsg) (model, tea.Cmd) {
	presets := sortedPresets()
	switch msg.String() {
	case "esc", "q":
		m.screen = screenMain
	case "up", "k":
		if m.networkIdx > 0 {
			m.networkIdx--
		}
	case "down", "j":
		if m.networkIdx < len(presets)-1 {
			m.networkIdx++
		}
	case "enter":
		n := presets[m.networkIdx]
		if err := m.wallet.SetNetwork(n); err != nil {
			m.statusMessage = "Error: " + err.Error()
			break
		}
		m.state = m.wallet.State()
		m.loading = true
		m.screen = screenMain
		m.statusMessage = "Switched to " + n.Name
		m.watcher.Trigger()
		return m, clearStatusAfter(3 * time.Second)
	}
	return m, nil
}

func (m model) updateConfirmDelete(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a, _ := m.state.ActiveAccount()
		if err := m.wallet.DeleteAccount(a.ID); err != nil {
			m.statusMessage = "Error: " + err.Error()
		} else {
			m.statusMessage = "Deleted " + a.Name
			m.watcher.Trigger()
		}
		m.state = m.wallet.State()
		m.screen = screenMain
		return m, clearStatusAfter(3 * time.Second)
	case "n", "N", "esc":
		m.screen = screenMain
	}
	return m, nil
}

// updateForm drives the text-input screens.
func (m model) updateForm(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.screen = screenMain
		m.resetInputs()
		return m, nil
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenLookup:
		m.lookupInput, cmd = m.lookupInput.Update(msg)
	case screenSend:
		m.sendInputs[m.sendFocus], cmd = m.sendInputs[m.sendFocus].Update(msg)
	case screenAddAccount:
		m.accountInputs[m.accountFocus], cmd = m.accountInputs[m.accountFocus].Update(msg)
	case screenAddToken:
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	}
	return m, cmd
}

func (m model) moveFocus(dir int) (model, tea.Cmd) {
	var inputs []textinput.Model
	var focus *int
	switch m.screen {
	case screenSend:
		inputs, focus = m.sendInputs, &m.sendFocus
	case screenAddAccount:
		inputs, focus = m.accountInputs, &m.accountFocus
	default:
		return m, nil
	}
	inputs[*focus].Blur()
	*focus = (*focus + dir + len(inputs)) % len(inputs)
	return m, inputs[*focus].Focus()
}

func (m model) submitForm() (model, tea.Cmd) {
	switch m.screen {
	case screenLookup:
		q := strings.TrimSpace(m.lookupInput.Value())
		if q == "" {
			return m, nil
		}
		m.busy = true
		return m, lookupCmd(m.wallet, q)
	case screenSend:
		if m.sendFocus < len(m.sendInputs)-1 {
			return m.moveFocus(1)
		}
		asset := wallet.ResolveAsset(m.state, m.sendInputs[2].Value())
		m.busy = true
		m.statusMessage = "Submitting..."
		return m, sendCmd(m.wallet, m.sendInputs[0].Value(), m.sendInputs[1].Value(), asset)
	case screenAddAccount:
		if m.accountFocus < len(m.accountInputs)-1 {
			return m.moveFocus(1)
		}
		a, err := m.wallet.AddAccount(m.accountInputs[0].Value(), models.PrivateKey(m.accountInputs[1].Value()))
		m.accountInputs[1].SetValue("")
		if err != nil {
			m.statusMessage = "Error: " + err.Error()
			return m, clearStatusAfter(3 * time.Second)
		}
		return m, func() tea.Msg { return opResultMsg{status: "Imported " + a.Name} }
	case screenAddToken:
		m.busy = true
		m.statusMessage = "Fetching token metadata..."
		return m, importTokenCmd(m.wallet, m.tokenInput.Value())
	}
	return m, nil
}

func (m *model) resetInputs() {
	m.lookupInput.Blur()
	for i := range m.sendInputs {
		m.sendInputs[i].SetValue("")
		m.sendInputs[i].Blur()
	}
	for i := range m.accountInputs {
		m.accountInputs[i].SetValue("")
		m.accountInputs[i].Blur()
	}
	m.tokenInput.SetValue("")
	m.tokenInput.Blur()
	m.sendFocus, m.accountFocus = 0, 0
}
