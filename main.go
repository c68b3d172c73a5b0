package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"evmwallet/pkg/config"
	"evmwallet/pkg/logging"
	"evmwallet/pkg/rpc"
	"evmwallet/pkg/store"
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	"github.com/spf13/cobra"
)

// Version should be set during build
var Version = "dev"

func main() {
	a := &app{}
	defer a.close()
	if err := newRootCmd(a).Execute(); err != nil {
		a.close()
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	cfgFile string
	cfgPath string
	cfg     config.Config

	// dial and kv are replaced in tests.
	dial wallet.Dialer
	kv   store.KV

	store   *store.Store
	wallet  *wallet.Wallet
	logFile *os.File
}

// Commands annotated with noStore run without opening the state store.
const noStore = "no-store"

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evmwallet",
		Short: "A terminal wallet for EVM chains.",
		Long: `evmwallet keeps private keys and a local transaction log, shows balances
for the active account, looks up addresses and transactions, and submits
native or ERC-20 transfers through a single JSON-RPC endpoint.

Running without a subcommand launches the interactive TUI.`,
		Version:       Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
	cmd.Annotations = map[string]string{"tui": "true"}

	f := cmd.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/"+config.ConfigFileName+")")
	f.String("data-dir", "", "directory holding wallet state")
	f.String("storage", "", "state backend: badger, file or memory")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("log-file", "", "write logs to this file instead of stderr")
	f.Float64("rpc-rate-limit", 0, "maximum RPC requests per second (0 = unlimited)")
	f.Bool("json", false, "print machine-readable JSON where supported")

	cmd.AddCommand(
		newAccountCmd(a),
		newTokenCmd(a),
		newBalanceCmd(a),
		newLookupCmd(a),
		newSendCmd(a),
		newTxCmd(a),
		newNetworkCmd(a),
		newServeCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves configuration, starts logging and opens the wallet.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := config.GetConfigPath(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error determining config path: %w", err)
	}
	a.cfgPath = path

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return fmt.Errorf("error loading config from %s: %w", path, err)
	}
	a.cfg = cfg

	if err := a.initLogging(cmd.Annotations["tui"] == "true"); err != nil {
		return err
	}
	logging.Debugf("config loaded from %s (storage=%s, data_dir=%s)", path, cfg.Storage, cfg.DataDir)

	if cmd.Annotations[noStore] == "true" {
		return nil
	}
	return a.openWallet()
}

// initLogging sends logs to log_file when set. The TUI owns the terminal, so
// it logs into the data directory by default.
func (a *app) initLogging(tui bool) error {
	path := a.cfg.LogFile
	if path == "" && tui {
		if a.cfg.Storage == config.StorageMemory {
			logging.Init(a.cfg.LogLevel, io.Discard)
			return nil
		}
		path = filepath.Join(a.cfg.DataDir, "evmwallet.log")
	}
	if path == "" {
		logging.Init(a.cfg.LogLevel, os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f
	logging.Init(a.cfg.LogLevel, f)
	return nil
}

func (a *app) openWallet() error {
	kv := a.kv
	if kv == nil {
		var err error
		if a.cfg.Storage != config.StorageMemory {
			if err := os.MkdirAll(a.cfg.DataDir, 0700); err != nil {
				return err
			}
		}
		kv, err = store.Open(a.cfg.Storage, a.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open %s storage: %w", a.cfg.Storage, err)
		}
	}
	dial := a.dial
	if dial == nil {
		dial = wallet.RPCDialer(rpc.Options{Timeout: a.cfg.RPCTimeout(), RateLimit: a.cfg.RPCRateLimit})
	}
	a.store = store.New(kv)
	a.wallet = wallet.New(a.store, dial)
	return nil
}

func (a *app) newWatcher() *watcher.Watcher {
	return watcher.NewWatcher(a.wallet, watcher.Options{
		Interval:  a.cfg.RefreshInterval(),
		Reconcile: a.cfg.ReconcilePending,
	})
}

// close releases the store and log file. It is safe to call more than once.
func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
		a.wallet = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
		logging.Init(a.cfg.LogLevel, os.Stderr)
	}
	return err
}
