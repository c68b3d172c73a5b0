package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage != StorageBadger {
		t.Errorf("Storage = %q, want %q", cfg.Storage, StorageBadger)
	}
	if cfg.RPCTimeout() != 30*time.Second {
		t.Errorf("RPCTimeout = %v", cfg.RPCTimeout())
	}
	if cfg.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval())
	}
	if !cfg.ReconcilePending {
		t.Error("ReconcilePending should default to true")
	}
	if cfg.ServerHost != "127.0.0.1" || cfg.ServerPort != 8080 || cfg.DisplayDecimals != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if strings.HasPrefix(cfg.DataDir, "~") {
		t.Errorf("DataDir not expanded: %s", cfg.DataDir)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{ "storage": `), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("Expected error loading malformed config, got nil")
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	data := `{"storage": "file", "server_port": 9000, "log_level": "warn", "display_decimals": 2}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EVMWALLET_SERVER_PORT", "9100")
	t.Setenv("EVMWALLET_RECONCILE_PENDING", "false")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("display-decimals", 4, "")
	if err := flags.Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage != StorageFile {
		t.Errorf("file value lost: Storage = %q", cfg.Storage)
	}
	if cfg.ServerPort != 9100 {
		t.Errorf("env should override file: ServerPort = %d", cfg.ServerPort)
	}
	if cfg.ReconcilePending {
		t.Error("env should disable ReconcilePending")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("changed flag should win: LogLevel = %q", cfg.LogLevel)
	}
	if cfg.DisplayDecimals != 2 {
		t.Errorf("unchanged flag should not override file: DisplayDecimals = %d", cfg.DisplayDecimals)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DataDir:                "/tmp/w",
			Storage:                StorageBadger,
			RPCTimeoutSeconds:      30,
			RefreshIntervalSeconds: 30,
			ServerHost:             "127.0.0.1",
			ServerPort:             8080,
			DisplayDecimals:        4,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"memory without data dir", func(c *Config) { c.Storage = StorageMemory; c.DataDir = "" }, false},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }, true},
		{"file without data dir", func(c *Config) { c.Storage = StorageFile; c.DataDir = " " }, true},
		{"zero timeout", func(c *Config) { c.RPCTimeoutSeconds = 0 }, true},
		{"negative rate", func(c *Config) { c.RPCRateLimit = -1 }, true},
		{"zero interval", func(c *Config) { c.RefreshIntervalSeconds = 0 }, true},
		{"empty host", func(c *Config) { c.ServerHost = "" }, true},
		{"port too high", func(c *Config) { c.ServerPort = 70000 }, true},
		{"too many decimals", func(c *Config) { c.DisplayDecimals = 19 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ServerPort = 9999
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ServerPort != 9999 {
		t.Errorf("ServerPort = %d, want 9999", loaded.ServerPort)
	}

	if err := RestoreLastBackup(path); err == nil {
		t.Error("expected error with no backups")
	}

	loaded.ServerPort = 7777
	if err := Save(loaded, path); err != nil {
		t.Fatal(err)
	}
	if err := RestoreLastBackup(path); err != nil {
		t.Fatalf("RestoreLastBackup failed: %v", err)
	}
	restored, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if restored.ServerPort != 9999 {
		t.Errorf("restored ServerPort = %d, want 9999", restored.ServerPort)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := Save(Config{Storage: "nope"}, path); err == nil {
		t.Error("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
}

func TestGetConfigPath(t *testing.T) {
	p, err := GetConfigPath("/custom/path.json")
	if err != nil || p != "/custom/path.json" {
		t.Errorf("GetConfigPath(custom) = %q, %v", p, err)
	}
	p, err = GetConfigPath("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != ConfigFileName {
		t.Errorf("default path %q does not end in %s", p, ConfigFileName)
	}
}
