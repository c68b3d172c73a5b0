package tui

import (
	"fmt"
	"sort"
	"strings"

	"evmwallet/pkg/models"
	"evmwallet/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

func (m model) View() string {
	switch m.screen {
	case screenHelp:
		return m.viewHelp()
	case screenHistory:
		return m.viewHistory()
	case screenLookup:
		return m.viewLookup()
	case screenSend:
		var lines []string
		if a, ok := m.state.ActiveAccount(); ok {
			lines = append(lines, subtleStyle.Render("From: "+m.maskAddress(a.Address)), "")
		}
		for i, label := range []string{"To", "Amount", "Asset"} {
			lines = append(lines, fmt.Sprintf("%-12s %s", label, m.sendInputs[i].View()))
		}
		return m.viewForm("Send", lines, "Enter to next/submit • Tab to move • Esc to cancel")
	case screenAddAccount:
		var lines []string
		for i, label := range []string{"Name", "Private Key"} {
			lines = append(lines, fmt.Sprintf("%-12s %s", label, m.accountInputs[i].View()))
		}
		return m.viewForm("Import Account", lines, "Enter to next/save • Esc to cancel")
	case screenAddToken:
		line := fmt.Sprintf("%-12s %s", "Contract", m.tokenInput.View())
		return m.viewForm("Watch Token", []string{line}, "Enter to fetch metadata • Esc to cancel")
	case screenNetwork:
		return m.viewNetwork()
	case screenConfirmDelete:
		a, _ := m.state.ActiveAccount()
		return m.place(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("Confirm Delete"),
			"\n",
			fmt.Sprintf("Delete account %q (%s)?", a.Name, m.maskAddress(a.Address)),
			warnStyle.Render("The private key is removed from local storage."),
			"\n",
			subtleStyle.Render("(y) Yes • (n) No"),
		)), "")
	}
	return m.viewMain()
}

func (m model) place(content, footer string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer),
	)
}

func (m model) viewMain() string {
	active, ok := m.state.ActiveAccount()
	if !ok {
		content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("EVM Wallet"),
			"\n",
			"No accounts yet.",
			subtleStyle.Render("a: import a private key • n: create a new account"),
		))
		return m.place(content, m.footer())
	}

	report := m.currentReport()

	var body string
	switch {
	case report == nil && m.refreshErr != nil:
		body = fmt.Sprintf("%s\n%s", errStyle.Render("Error fetching balance:"), m.refreshErr.Error())
	case report == nil:
		body = m.spinner.View() + " Connecting to " + m.state.Network.Name + "..."
	default:
		body = m.viewBalances(report)
	}

	title := "EVM Wallet - " + m.state.Network.Name
	if n := len(m.state.Accounts); n > 1 {
		title = fmt.Sprintf("%s (%d/%d)", title, m.accountIndex(active.ID)+1, n)
	}

	addr := m.maskAddress(active.Address)
	if !m.privacyMode {
		addr = utils.ShortAddress(active.Address)
	}

	targetWidth := m.width - 4
	if targetWidth < 0 {
		targetWidth = 0
	}

	uiBlock := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(title),
		fmt.Sprintf("Account: %s (%s)", active.Name, addr),
		subtleStyle.Render("RPC: "+utils.TruncateString(m.state.Network.EndpointURL, 40)),
		"\n",
		body,
		"\n",
		m.viewRecent(active.Address),
	)
	content := boxStyle.Width(targetWidth).Align(lipgloss.Center).Render(uiBlock)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.topBar(),
		lipgloss.Place(m.width, max(m.height-1, 0), lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, content, "\n", m.footer())),
	)
}

func (m model) accountIndex(id string) int {
	for i, a := range m.state.Accounts {
		if a.ID == id {
			return i
		}
	}
	return 0
}

func (m model) viewBalances(report *models.BalanceReport) string {
	native := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Bold(true).
		Render(fmt.Sprintf("%s %s", m.displayAmount(report.Native), nativeSymbol))

	lines := []string{native}
	for _, row := range m.tokenRows(report) {
		if row.failed {
			lines = append(lines, errStyle.Render(fmt.Sprintf("%s unavailable", row.symbol)))
			continue
		}
		bal := row.balance
		if m.privacyMode {
			bal = "****"
		}
		lines = append(lines, fmt.Sprintf("%s %s", bal, row.symbol))
	}

	if len(m.history) > 1 && !m.privacyMode {
		width := m.width - 20
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		lines = append(lines, "", asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(width),
			asciigraph.Precision(uint(m.decimals)),
			asciigraph.Caption(nativeSymbol+" balance"),
		))
	}
	return strings.Join(lines, "\n")
}

func (m model) viewRecent(address string) string {
	txs := filterTransactions(m.state.Transactions, address, "all")
	if len(txs) == 0 {
		return subtleStyle.Render("No transactions sent from this wallet yet")
	}
	headers := tableHeaderStyle.Render(fmt.Sprintf("%-12s %-12s %-14s %-8s", "HASH", "TO", "VALUE", "STATUS"))
	rows := ""
	for i, tx := range txs {
		if i >= 3 {
			break
		}
		rows += m.txRow(tx) + "\n"
	}
	return lipgloss.JoinVertical(lipgloss.Center, headers, rows)
}

func (m model) txRow(tx models.TransactionRecord) string {
	value := m.maskString(tx.Value + " " + tx.Asset(nativeSymbol))
	return fmt.Sprintf("%-12s %-12s %-14s %s",
		m.maskString(utils.TruncateString(tx.Hash, 10)),
		m.maskString(utils.TruncateString(tx.To, 10)),
		utils.TruncateString(value, 14),
		statusStyle(tx.Status).Render(string(tx.Status)),
	)
}

func statusStyle(s models.TxStatus) lipgloss.Style {
	switch s {
	case models.StatusSuccess:
		return infoStyle
	case models.StatusFailed:
		return errStyle
	}
	return warnStyle
}

func (m model) topBar() string {
	left := subtleStyle.Render(fmt.Sprintf(" %d account(s) • %d token(s)", len(m.state.Accounts), len(m.state.Tokens)))

	spinnerView := ""
	if m.loading {
		spinnerView = m.spinner.View() + " "
	}
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	privacy := ""
	if m.privacyMode {
		privacy = "🔒 "
	}
	right := subtleStyle.Render(fmt.Sprintf("%s%sLast updated: %s ", privacy, spinnerView, updated))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

func (m model) footer() string {
	line1 := "r:ref • s:send • l:lookup • h:hist • c:cpy • p:prv • ?:hlp • q:quit"
	if len(m.state.Accounts) > 1 {
		line1 = "Tab:cycle • " + line1
	}
	line2 := fmt.Sprintf("a:import • n:new • d:del • t:token • w:network • v%s", Version)

	var footer string
	if m.width > 0 {
		l1 := subtleStyle.Width(m.width).Align(lipgloss.Center).Render(line1)
		l2 := subtleStyle.Width(m.width).Align(lipgloss.Center).Render(line2)
		footer = lipgloss.JoinVertical(lipgloss.Center, l1, l2)
	} else {
		footer = subtleStyle.Render(line1 + "\n" + line2)
	}
	if m.statusMessage != "" {
		footer = lipgloss.JoinVertical(lipgloss.Center, infoStyle.Render(m.statusMessage), footer)
	}
	return footer
}

func (m model) viewForm(title string, lines []string, hint string) string {
	status := ""
	if m.busy {
		status = m.spinner.View() + " working..."
	} else if m.statusMessage != "" {
		status = warnStyle.Render(m.statusMessage)
	}

	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"\n",
		strings.Join(lines, "\n"),
		"\n",
		status,
	))
	return m.place(content, subtleStyle.Render(hint))
}

func (m model) viewHistory() string {
	a, _ := m.state.ActiveAccount()
	filterDisplay := "All"
	switch m.txFilter {
	case "in":
		filterDisplay = "Incoming"
	case "out":
		filterDisplay = "Outgoing"
	}
	header := titleStyle.Render(fmt.Sprintf("Transactions: %s (%s)", a.Name, filterDisplay))
	footer := subtleStyle.Render("f: filter • enter: look up • c: copy hash • q/esc: back")

	txs := filterTransactions(m.state.Transactions, a.Address, m.txFilter)
	if len(txs) == 0 {
		return m.place(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, header, "\n", "No transactions found.")), footer)
	}

	rows := ""
	for i, tx := range txs {
		cursor := "  "
		if i == m.txListIdx {
			cursor = "> "
		}
		rows += fmt.Sprintf("%s%s %s\n", cursor, tx.Time().Format("01-02 15:04"), m.txRow(tx))
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "\n", rows))
	if m.statusMessage != "" {
		footer = lipgloss.JoinVertical(lipgloss.Center, infoStyle.Render(m.statusMessage), footer)
	}
	return m.place(content, footer)
}

func (m model) viewLookup() string {
	lines := []string{m.lookupInput.View(), ""}
	switch {
	case m.busy:
		lines = append(lines, m.spinner.View()+" querying "+m.state.Network.Name+"...")
	case m.lookupErr != nil:
		lines = append(lines, errStyle.Render(m.lookupErr.Error()))
	case m.lookupResult != nil && m.lookupResult.Address != nil:
		lines = append(lines, m.addressLines(m.lookupResult.Address)...)
	case m.lookupResult != nil && m.lookupResult.Transaction != nil:
		lines = append(lines, m.transactionLines(m.lookupResult.Transaction)...)
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Lookup"),
		"\n",
		strings.Join(lines, "\n"),
	))
	return m.place(content, subtleStyle.Render("Enter to search • Esc to go back"))
}

func (m model) addressLines(r *models.AddressResult) []string {
	kind := "Account"
	if r.IsContract {
		kind = "Contract"
	}
	lines := []string{
		fmt.Sprintf("Address:   %s", r.Address),
		fmt.Sprintf("Type:      %s", kind),
		fmt.Sprintf("Balance:   %s %s", utils.FormatAmount(r.Native, m.decimals), nativeSymbol),
	}
	ids := make([]string, 0, len(r.Tokens))
	for id := range r.Tokens {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.Tokens[ids[i]].Symbol < r.Tokens[ids[j]].Symbol })
	for _, id := range ids {
		tb := r.Tokens[id]
		if tb.Failed {
			lines = append(lines, errStyle.Render(fmt.Sprintf("           %s unavailable", tb.Symbol)))
			continue
		}
		lines = append(lines, fmt.Sprintf("           %s %s", utils.FormatAmount(tb.Amount, m.decimals), tb.Symbol))
	}
	return lines
}

func (m model) transactionLines(r *models.TransactionResult) []string {
	to := r.To
	if to == "" {
		to = "(contract creation)"
	}
	block := "pending"
	if r.BlockNumber != nil {
		block = fmt.Sprintf("%d", *r.BlockNumber)
	}
	lines := []string{
		fmt.Sprintf("Hash:      %s", r.Hash),
		fmt.Sprintf("Status:    %s", statusStyle(r.Status).Render(string(r.Status))),
		fmt.Sprintf("Block:     %s", block),
		fmt.Sprintf("From:      %s", r.From),
		fmt.Sprintf("To:        %s", to),
		fmt.Sprintf("Value:     %s %s", utils.FormatAmount(r.Value, m.decimals), nativeSymbol),
		fmt.Sprintf("Nonce:     %d", r.Nonce),
		fmt.Sprintf("Gas Limit: %d", r.Gas),
	}
	if r.GasPrice != nil {
		lines = append(lines, fmt.Sprintf("Gas Price: %s wei", r.GasPrice))
	}
	if r.Receipt != nil {
		lines = append(lines, fmt.Sprintf("Gas Used:  %d", r.Receipt.GasUsed))
	}
	if ts, ok := r.Timestamp.Get(); ok {
		lines = append(lines, fmt.Sprintf("Time:      %s", ts.Local().Format("2006-01-02 15:04:05")))
	} else if r.Timestamp.Reason != "" {
		lines = append(lines, subtleStyle.Render("Time:      unavailable ("+r.Timestamp.Reason+")"))
	}
	if c, ok := r.Confirmations.Get(); ok {
		lines = append(lines, fmt.Sprintf("Confirms:  %d", c))
	}
	if tt := r.TokenTransfer; tt != nil {
		lines = append(lines, "", infoStyle.Render(fmt.Sprintf("Token transfer: %s %s to %s",
			utils.FormatAmount(tt.Amount, m.decimals), tt.Symbol, tt.Recipient)))
	}
	return lines
}

func (m model) viewNetwork() string {
	rows := ""
	for i, n := range sortedPresets() {
		cursor := "  "
		line := fmt.Sprintf("%-18s %s", n.Name, subtleStyle.Render(utils.TruncateString(n.EndpointURL, 40)))
		if i == m.networkIdx {
			cursor = "> "
			line = selectedStyle.Render(fmt.Sprintf("%-18s", n.Name)) + " " + subtleStyle.Render(utils.TruncateString(n.EndpointURL, 40))
		}
		rows += cursor + line + "\n"
	}
	current := fmt.Sprintf("Current: %s (%s)", m.state.Network.Name, m.state.Network.EndpointURL)
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Network"),
		subtleStyle.Render(current),
		"\n",
		rows,
	))
	return m.place(content, subtleStyle.Render("↑/↓: select • enter: switch • q/esc: back"))
}

func (m model) viewHelp() string {
	shortcuts := []string{
		"r: Refresh balances",
		"Tab / S-Tab: Next / previous account",
		"s: Send native or token transfer",
		"l: Look up address or transaction",
		"h: Transaction history",
		"c: Copy address",
		"p: Toggle privacy",
		"a: Import account from private key",
		"n: Create new account",
		"d: Delete active account",
		"t: Watch token",
		"w: Switch network",
		"q: Quit",
		"?: Toggle help",
	}
	header := titleStyle.Render("Help")
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "\n", strings.Join(shortcuts, "\n")))
	return m.place(content, subtleStyle.Render("Press any key to close"))
}
