package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"evmwallet/pkg/config"
	"evmwallet/pkg/models"
	"evmwallet/pkg/server"
	"evmwallet/pkg/tui"
	"evmwallet/pkg/utils"
	"evmwallet/pkg/wallet"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// --- account ---

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts and their private keys",
	}

	var key string
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Import an account from a hex private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				var err error
				if key, err = readSecret(cmd, "Private key: "); err != nil {
					return err
				}
			}
			acct, err := a.wallet.AddAccount(firstArg(args), models.PrivateKey(key))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", acct.Name, acct.Address)
			return nil
		},
	}
	add.Flags().StringVar(&key, "key", "", "private key (prompted for when omitted)")

	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Generate a new account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := a.wallet.CreateAccount(firstArg(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", acct.Name, acct.Address)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.wallet.State()
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), m.Public().Accounts)
			}
			if len(m.Accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts. Use 'account add' or 'account create'.")
				return nil
			}
			rows := make([][]string, 0, len(m.Accounts))
			for _, acct := range m.Accounts {
				active := ""
				if m.ActiveAccountID != nil && *m.ActiveAccountID == acct.ID {
					active = "*"
				}
				rows = append(rows, []string{active, acct.Name, acct.Address, acct.ID})
			}
			printTable(cmd.OutOrStdout(), []string{"", "NAME", "ADDRESS", "ID"}, rows)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <account>",
		Short: "Make an account active (by id, name or address)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := findAccount(a.wallet.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.wallet.SetActiveAccount(acct.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active account: %s (%s)\n", acct.Name, acct.Address)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <account> <new-name>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := findAccount(a.wallet.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.wallet.RenameAccount(acct.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", acct.Name, strings.TrimSpace(args[1]))
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account and its private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := findAccount(a.wallet.State(), args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete %s (%s)? The key cannot be recovered. [y/N] ", acct.Name, acct.Address)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := a.wallet.DeleteAccount(acct.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", acct.Name)
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	qr := &cobra.Command{
		Use:   "qr [account]",
		Short: "Print an account address as a QR code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.wallet.State()
			var acct models.Account
			if len(args) == 1 {
				var err error
				if acct, err = findAccount(m, args[0]); err != nil {
					return err
				}
			} else {
				var ok bool
				if acct, ok = m.ActiveAccount(); !ok {
					return models.ErrNoActiveAccount
				}
			}
			q, err := qrcode.New(acct.Address, qrcode.Medium)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), q.ToSmallString(false))
			fmt.Fprintln(cmd.OutOrStdout(), acct.Address)
			return nil
		},
	}

	cmd.AddCommand(add, create, list, use, rename, del, qr)
	return cmd
}

// --- token ---

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage watched ERC-20 tokens",
	}

	var symbol, name string
	var decimals uint8
	add := &cobra.Command{
		Use:   "add <contract>",
		Short: "Watch a token, reading its metadata from the network unless --symbol is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tok models.Token
			var err error
			if symbol != "" {
				tok, err = a.wallet.AddToken(models.Token{
					ContractAddress: strings.TrimSpace(args[0]),
					Symbol:          symbol,
					Name:            name,
					Decimals:        decimals,
				})
			} else {
				tok, err = a.wallet.ImportToken(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%s, %d decimals)\n", tok.Symbol, tok.ContractAddress, tok.Decimals)
			return nil
		},
	}
	add.Flags().StringVar(&symbol, "symbol", "", "token symbol (skips the metadata lookup)")
	add.Flags().StringVar(&name, "name", "", "token name, with --symbol")
	add.Flags().Uint8Var(&decimals, "decimals", 18, "token decimals, with --symbol")

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.wallet.State()
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), m.Tokens)
			}
			if len(m.Tokens) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tokens watched.")
				return nil
			}
			rows := make([][]string, 0, len(m.Tokens))
			for _, t := range m.Tokens {
				rows = append(rows, []string{t.Symbol, t.Name, strconv.Itoa(int(t.Decimals)), t.ContractAddress, t.ID})
			}
			printTable(cmd.OutOrStdout(), []string{"SYMBOL", "NAME", "DECIMALS", "CONTRACT", "ID"}, rows)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <token>",
		Short: "Stop watching a token (by id, symbol or contract)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := findToken(a.wallet.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.wallet.DeleteToken(tok.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", tok.Symbol)
			return nil
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}

// --- balance, lookup, send ---

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show balances of the active account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, _, err := a.wallet.RefreshActive(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			if report.Empty() {
				return models.ErrNoActiveAccount
			}
			out := cmd.OutOrStdout()
			dec := a.cfg.DisplayDecimals
			fmt.Fprintf(out, "%s on %s\n", report.Address, a.wallet.State().Network.Name)
			fmt.Fprintf(out, "  %s %s\n", utils.FormatAmount(report.Native, dec), wallet.NativeSymbol)
			for _, t := range a.wallet.State().Tokens {
				tb, ok := report.Tokens[t.ID]
				if !ok {
					continue
				}
				if tb.Failed {
					fmt.Fprintf(out, "  %s unavailable: %s\n", tb.Symbol, tb.Error)
					continue
				}
				fmt.Fprintf(out, "  %s %s\n", utils.FormatAmount(tb.Amount, dec), tb.Symbol)
			}
			return nil
		},
	}
}

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <address|tx-hash>",
		Short: "Look up an address or a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.wallet.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printLookup(cmd.OutOrStdout(), res, a.cfg.DisplayDecimals)
			return nil
		},
	}
}

func printLookup(out io.Writer, res models.LookupResult, dec int) {
	if r := res.Address; r != nil {
		kind := "account"
		if r.IsContract {
			kind = "contract"
		}
		fmt.Fprintf(out, "Address:  %s (%s)\n", r.Address, kind)
		fmt.Fprintf(out, "Balance:  %s %s\n", utils.FormatAmount(r.Native, dec), wallet.NativeSymbol)
		ids := make([]string, 0, len(r.Tokens))
		for id := range r.Tokens {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return r.Tokens[ids[i]].Symbol < r.Tokens[ids[j]].Symbol })
		for _, id := range ids {
			tb := r.Tokens[id]
			if tb.Failed {
				fmt.Fprintf(out, "          %s unavailable\n", tb.Symbol)
				continue
			}
			fmt.Fprintf(out, "          %s %s\n", utils.FormatAmount(tb.Amount, dec), tb.Symbol)
		}
		return
	}

	r := res.Transaction
	if r == nil {
		return
	}
	fmt.Fprintf(out, "Hash:     %s\n", r.Hash)
	fmt.Fprintf(out, "Status:   %s\n", r.Status)
	if r.BlockNumber != nil {
		fmt.Fprintf(out, "Block:    %d\n", *r.BlockNumber)
	}
	fmt.Fprintf(out, "From:     %s\n", r.From)
	to := r.To
	if to == "" {
		to = "(contract creation)"
	}
	fmt.Fprintf(out, "To:       %s\n", to)
	fmt.Fprintf(out, "Value:    %s %s\n", utils.FormatAmount(r.Value, dec), wallet.NativeSymbol)
	if ts, ok := r.Timestamp.Get(); ok {
		fmt.Fprintf(out, "Time:     %s\n", ts.Format("2006-01-02 15:04:05 MST"))
	}
	if c, ok := r.Confirmations.Get(); ok {
		fmt.Fprintf(out, "Confirms: %d\n", c)
	}
	if tt := r.TokenTransfer; tt != nil {
		fmt.Fprintf(out, "Transfer: %s %s to %s\n", utils.FormatAmount(tt.Amount, dec), tt.Symbol, tt.Recipient)
	}
}

func newSendCmd(a *app) *cobra.Command {
	var asset string
	cmd := &cobra.Command{
		Use:   "send <to> <amount>",
		Short: "Send native currency or a watched token from the active account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := wallet.ResolveAsset(a.wallet.State(), asset)
			rec, err := a.wallet.Send(cmd.Context(), args[0], args[1], selector)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s %s to %s\nHash: %s\n",
				rec.Value, rec.Asset(wallet.NativeSymbol), rec.To, rec.Hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&asset, "asset", models.NativeAsset, "native, or a token symbol or id")
	return cmd
}

// --- tx ---

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect the local transaction log",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions sent from the active account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txs := a.wallet.History()
			if all {
				txs = a.wallet.State().Transactions
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), txs)
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
				return nil
			}
			rows := make([][]string, 0, len(txs))
			for _, tx := range txs {
				rows = append(rows, []string{
					tx.Time().Format("2006-01-02 15:04"),
					utils.TruncateString(tx.Hash, 14),
					utils.ShortAddress(tx.To),
					tx.Value + " " + tx.Asset(wallet.NativeSymbol),
					string(tx.Status),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"TIME", "HASH", "TO", "VALUE", "STATUS"}, rows)
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include every account")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all transaction records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wallet.ClearTransactions(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Transaction log cleared.")
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Update pending records from their receipts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := a.wallet.Reconcile(cmd.Context())
			for _, rec := range changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", rec.Hash, rec.Status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s) updated\n", len(changed))
			return err
		},
	}

	cmd.AddCommand(list, clearCmd, syncCmd)
	return cmd
}

// --- network ---

func newNetworkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Show or change the RPC endpoint",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.wallet.State().Network
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", n.Name, n.EndpointURL)
			return nil
		},
	}

	var url string
	set := &cobra.Command{
		Use:   "set <preset|name>",
		Short: "Switch to a preset, or to a custom endpoint with --url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := models.NetworkConfig{Name: args[0], EndpointURL: url}
			if url == "" {
				preset, ok := models.FindPreset(args[0])
				if !ok {
					return fmt.Errorf("unknown preset %q; pass --url for a custom endpoint", args[0])
				}
				n = preset
			}
			if err := a.wallet.SetNetwork(n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Network set to %s (%s)\n", n.Name, n.EndpointURL)
			return nil
		},
	}
	set.Flags().StringVar(&url, "url", "", "custom JSON-RPC endpoint")

	presets := &cobra.Command{
		Use:         "presets",
		Short:       "List preset networks",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), models.PresetNetworks)
			}
			rows := make([][]string, 0, len(models.PresetNetworks))
			for _, n := range models.PresetNetworks {
				rows = append(rows, []string{n.Name, n.EndpointURL})
			}
			printTable(cmd.OutOrStdout(), []string{"NAME", "URL"}, rows)
			return nil
		},
	}

	var testURL string
	test := &cobra.Command{
		Use:   "test [preset]",
		Short: "Check that an endpoint answers and report its chain id and latency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.wallet.State().Network
			switch {
			case testURL != "":
				n = models.NetworkConfig{Name: "custom", EndpointURL: testURL}
			case len(args) == 1:
				preset, ok := models.FindPreset(args[0])
				if !ok {
					return fmt.Errorf("unknown preset %q", args[0])
				}
				n = preset
			}

			out := cmd.OutOrStdout()
			if !jsonOutput(cmd) {
				fmt.Fprintf(out, "Testing %s: %s ... ", n.Name, n.EndpointURL)
			}
			report := a.wallet.TestNetwork(cmd.Context(), n)
			if jsonOutput(cmd) {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else if report.Status == "ok" {
				fmt.Fprintf(out, "OK (ChainID: %d, block %d, %s)\n", report.ChainID, report.Height, report.Latency)
			} else {
				fmt.Fprintf(out, "Failed: %s\n", report.Error)
			}
			if report.Status != "ok" {
				return errors.New("network test failed")
			}
			return nil
		},
	}
	test.Flags().StringVar(&testURL, "url", "", "test this endpoint instead")

	cmd.AddCommand(show, set, presets, test)
	return cmd
}

// --- serve, tui ---

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket API without the TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := a.newWatcher()
			w.Start(ctx)
			defer w.Stop()

			srv := server.NewServer(a.wallet, w)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(a.cfg.ServerHost, a.cfg.ServerPort) }()

			fmt.Fprintf(cmd.OutOrStdout(), "Running in server mode on %s...\n", net.JoinHostPort(a.cfg.ServerHost, strconv.Itoa(a.cfg.ServerPort)))
			select {
			case <-ctx.Done():
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().String("server-host", "127.0.0.1", "interface the API server binds to")
	cmd.Flags().Int("server-port", 8080, "port for the API server")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tui",
		Short:       "Launch the interactive terminal UI (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"tui": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
	cmd.Flags().Int("display-decimals", 4, "fractional digits shown for balances")
	return cmd
}

func runTUI(ctx context.Context, a *app) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	w := a.newWatcher()
	w.Start(ctx)
	defer w.Stop()
	return tui.Start(a.wallet, w, a.cfg.DisplayDecimals, Version)
}

// --- config, version ---

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the effective configuration to the config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(a.cfg, a.cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", a.cfgPath)
			return nil
		},
	}
	restore := &cobra.Command{
		Use:         "restore",
		Short:       "Restore the most recent backup of the config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RestoreLastBackup(a.cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from backup\n", a.cfgPath)
			return nil
		},
	}
	cmd.AddCommand(initCmd, restore)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStore: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "evmwallet version %s\n", Version)
		},
	}
}

// --- helpers ---

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(out io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
}

// findAccount matches ref against id, then name and address case-insensitively.
func findAccount(m models.WalletModel, ref string) (models.Account, error) {
	ref = strings.TrimSpace(ref)
	if a, ok := m.Account(ref); ok {
		return a, nil
	}
	for _, a := range m.Accounts {
		if strings.EqualFold(a.Name, ref) || strings.EqualFold(a.Address, ref) {
			return a, nil
		}
	}
	return models.Account{}, fmt.Errorf("%w: %s", models.ErrAccountNotFound, ref)
}

func findToken(m models.WalletModel, ref string) (models.Token, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := m.Token(ref); ok {
		return t, nil
	}
	for _, t := range m.Tokens {
		if strings.EqualFold(t.Symbol, ref) || strings.EqualFold(t.ContractAddress, ref) {
			return t, nil
		}
	}
	return models.Token{}, fmt.Errorf("%w: %s", models.ErrTokenNotFound, ref)
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
