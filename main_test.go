package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"evmwallet/pkg/config"
	"evmwallet/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hardhatKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	usdc        = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

// cli runs commands against one data directory so state carries over
// between invocations.
type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(c.dir, config.ConfigFileName),
		"--storage", "file",
		"--data-dir", filepath.Join(c.dir, "data"),
	}, args...))
	err := root.Execute()
	_ = a.close()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

// fakeNode answers the handful of eth_* calls the balance and network
// commands make.
func fakeNode(t *testing.T) *httptest.Server {
	results := map[string]string{
		"eth_chainId":     "0x7a69",
		"eth_blockNumber": "0x20",
		"eth_getBalance":  "0xde0b6b3a7640000",
		"eth_getCode":     "0x",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if res, ok := results[req.Method]; ok {
			resp["result"] = res
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersion(t *testing.T) {
	out := newCLI(t).mustRun("version")
	assert.Contains(t, out, "evmwallet version "+Version)
}

func TestAccountLifecycle(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("account", "add", "main", "--key", hardhatKey)
	assert.Contains(t, out, "Imported main ("+hardhatAddr+")")

	out = c.mustRun("account", "create", "spare")
	assert.Contains(t, out, "Created spare")

	out = c.mustRun("account", "list")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "spare")
	assert.NotContains(t, out, hardhatKey[2:], "keys must never be listed")

	c.mustRun("account", "use", "SPARE")
	c.mustRun("account", "rename", "spare", "savings")

	out = c.mustRun("--json", "account", "list")
	var accounts []models.PublicAccount
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, "savings", accounts[1].Name)

	out = c.mustRun("account", "delete", strings.ToLower(hardhatAddr), "--yes")
	assert.Contains(t, out, "Deleted main")

	_, err := c.run("", "account", "delete", "savings", "--yes")
	assert.ErrorIs(t, err, models.ErrLastAccount)

	_, err = c.run("", "account", "use", "nobody")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestAccountAdd_KeyFromStdin(t *testing.T) {
	c := newCLI(t)
	out, err := c.run(hardhatKey+"\n", "account", "add")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported Account 1 ("+hardhatAddr+")")

	_, err = c.run("not-a-key\n", "account", "add")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAccountDelete_NeedsConfirmation(t *testing.T) {
	c := newCLI(t)
	c.mustRun("account", "add", "a", "--key", hardhatKey)
	c.mustRun("account", "create", "b")

	out, err := c.run("n\n", "account", "delete", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = c.run("y\n", "account", "delete", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted a")
}

func TestAccountQR(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "account", "qr")
	assert.ErrorIs(t, err, models.ErrNoActiveAccount)

	c.mustRun("account", "add", "--key", hardhatKey)
	out := c.mustRun("account", "qr")
	assert.Contains(t, out, hardhatAddr)
	assert.Greater(t, strings.Count(out, "\n"), 10)
}

func TestTokenCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("token", "add", usdc, "--symbol", "USDC", "--decimals", "6")
	assert.Contains(t, out, "Watching USDC")

	_, err := c.run("", "token", "add", strings.ToLower(usdc), "--symbol", "USDC2")
	assert.ErrorIs(t, err, models.ErrDuplicateToken)

	_, err = c.run("", "token", "add", "0x1234", "--symbol", "BAD")
	assert.ErrorIs(t, err, models.ErrValidation)

	out = c.mustRun("token", "list")
	assert.Contains(t, out, "USDC")
	assert.Contains(t, out, usdc)

	c.mustRun("token", "delete", "usdc")
	out = c.mustRun("token", "list")
	assert.Contains(t, out, "No tokens watched.")

	_, err = c.run("", "token", "delete", "usdc")
	assert.ErrorIs(t, err, models.ErrTokenNotFound)
}

func TestNetworkCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("network", "presets")
	for _, n := range models.PresetNetworks {
		assert.Contains(t, out, n.Name)
	}

	out = c.mustRun("--json", "network", "show")
	var n models.NetworkConfig
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, models.DefaultNetwork, n)

	c.mustRun("network", "set", "sepolia testnet")
	out = c.mustRun("network", "show")
	assert.Contains(t, out, "Sepolia Testnet")

	_, err := c.run("", "network", "set", "atlantis")
	assert.Error(t, err)

	c.mustRun("network", "set", "mine", "--url", "http://127.0.0.1:9545")
	out = c.mustRun("network", "show")
	assert.Contains(t, out, "mine http://127.0.0.1:9545")
}

func TestBalanceAndNetworkTest(t *testing.T) {
	node := fakeNode(t)
	c := newCLI(t)
	c.mustRun("account", "add", "main", "--key", hardhatKey)
	c.mustRun("network", "set", "local", "--url", node.URL)

	out := c.mustRun("balance")
	assert.Contains(t, out, hardhatAddr+" on local")
	assert.Contains(t, out, "1 ETH")

	out = c.mustRun("--json", "network", "test")
	var report models.NetworkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, int64(31337), report.ChainID)
	assert.Equal(t, uint64(32), report.Height)

	out, err := c.run("", "network", "test", "--url", "http://127.0.0.1:1")
	assert.Error(t, err)
	assert.Contains(t, out, "Failed:")
}

func TestLookup_InvalidInput(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "lookup", "hello")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSend_ValidatesBeforeDialing(t *testing.T) {
	c := newCLI(t)
	// The default network is not reachable in tests; validation fails first.
	_, err := c.run("", "send", hardhatAddr, "1")
	assert.ErrorIs(t, err, models.ErrValidation)

	c.mustRun("account", "add", "--key", hardhatKey)
	_, err = c.run("", "send", "0x1234", "1")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = c.run("", "send", hardhatAddr, "1", "--asset", "DOGE")
	assert.ErrorIs(t, err, models.ErrUnknownAsset)

	_, err = c.run("", "send", hardhatAddr, "0")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTxCommands(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("tx", "list")
	assert.Contains(t, out, "No transactions.")

	out = c.mustRun("tx", "sync")
	assert.Contains(t, out, "0 record(s) updated")

	out = c.mustRun("tx", "clear")
	assert.Contains(t, out, "cleared")
}

func TestConfigInitAndRestore(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, config.ConfigFileName)

	out := c.mustRun("config", "init")
	assert.Contains(t, out, path)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.StorageFile, cfg.Storage)
	assert.Equal(t, filepath.Join(c.dir, "data"), cfg.DataDir)

	_, err = c.run("", "config", "restore")
	assert.Error(t, err, "no backup exists yet")

	c.mustRun("--log-level", "debug", "config", "init")
	c.mustRun("config", "restore")
	cfg, err = config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLogFile(t *testing.T) {
	c := newCLI(t)
	logPath := filepath.Join(c.dir, "logs", "wallet.log")
	c.mustRun("--log-file", logPath, "--log-level", "debug", "account", "list")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "config loaded from")
}
